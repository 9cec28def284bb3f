package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-relations/pkg/record"
)

// Entry is one attached record reference. Fields holds whatever the attach
// request submitted next to the id, typically title and type. It encodes as
// a flat JSON object: {"id": 7, "title": "Widget", "type": "product"}.
type Entry struct {
	ID     record.ID
	Fields map[string]string
}

// NewEntry builds an entry, dropping any "id" key from fields.
func NewEntry(id record.ID, fields map[string]string) Entry {
	entry := Entry{ID: id}
	for key, value := range fields {
		if key == "id" {
			continue
		}
		if entry.Fields == nil {
			entry.Fields = make(map[string]string, len(fields))
		}
		entry.Fields[key] = value
	}
	return entry
}

// Get returns a submitted field.
func (e Entry) Get(name string) string {
	return e.Fields[name]
}

// Type returns the submitted record type, if any.
func (e Entry) Type() string { return e.Fields["type"] }

func (e Entry) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	buf.WriteString(e.ID.String())
	for _, key := range keys {
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Fields[key])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("store: entry is not an object")
	}

	idValue, ok := raw["id"]
	if !ok {
		return fmt.Errorf("store: entry has no id")
	}
	id, err := record.ParseID(strings.TrimSpace(fmt.Sprint(idValue)))
	if err != nil {
		return fmt.Errorf("store: entry id: %w", err)
	}
	if id.IsZero() {
		return fmt.Errorf("store: entry has no id")
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		if key == "id" || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			fields[key] = v
		case json.Number, bool:
			fields[key] = fmt.Sprint(v)
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return err
			}
			fields[key] = string(encoded)
		}
	}
	if len(fields) == 0 {
		fields = nil
	}

	*e = Entry{ID: id, Fields: fields}
	return nil
}

// IDs returns the entry ids in list order.
func IDs(entries []Entry) []record.ID {
	out := make([]record.ID, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.ID)
	}
	return out
}
