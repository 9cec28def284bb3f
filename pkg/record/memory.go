package record

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store. Records keep insertion order and ids are
// allocated from a single sequence shared by all types.
type Memory struct {
	mu       sync.RWMutex
	records  map[ID]Record
	order    []ID
	next     ID
	untitled map[string]struct{}
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithRecords seeds the store. Seeded ids are kept; the id sequence resumes
// after the highest one.
func WithRecords(records ...Record) MemoryOption {
	return func(m *Memory) {
		for _, rec := range records {
			m.put(rec.Clone())
		}
	}
}

// WithUntitledTypes marks record types that do not support a title.
func WithUntitledTypes(types ...string) MemoryOption {
	return func(m *Memory) {
		for _, name := range types {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				m.untitled[trimmed] = struct{}{}
			}
		}
	}
}

// NewMemory constructs an empty in-memory store.
func NewMemory(options ...MemoryOption) *Memory {
	m := &Memory{
		records:  make(map[ID]Record),
		untitled: make(map[string]struct{}),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m
}

var (
	_ Store          = (*Memory)(nil)
	_ TitleSupporter = (*Memory)(nil)
)

func (m *Memory) put(rec Record) ID {
	if rec.ID.IsZero() {
		m.next++
		rec.ID = m.next
	}
	if rec.ID > m.next {
		m.next = rec.ID
	}
	if _, exists := m.records[rec.ID]; !exists {
		m.order = append(m.order, rec.ID)
	}
	m.records[rec.ID] = rec
	return rec.ID
}

// Find returns the record with the given id when it exists and matches
// typeName. An empty typeName matches any type.
func (m *Memory) Find(ctx context.Context, typeName string, id ID) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return Record{}, false, nil
	}
	if typeName != "" && rec.Type != typeName {
		return Record{}, false, nil
	}
	return rec.Clone(), true, nil
}

// Query returns matching records in insertion order.
func (m *Memory) Query(ctx context.Context, query Query) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	types := toSet(query.Types)
	ids := make(map[ID]struct{}, len(query.IDs))
	for _, id := range query.IDs {
		ids[id] = struct{}{}
	}

	var out []Record
	for _, id := range m.order {
		rec := m.records[id]
		if len(types) > 0 {
			if _, ok := types[rec.Type]; !ok {
				continue
			}
		}
		if len(query.IDs) > 0 {
			if _, ok := ids[rec.ID]; !ok {
				continue
			}
		}
		if !matchesCriteria(rec, query.Filter) {
			continue
		}
		out = append(out, rec.Clone())
	}
	return out, nil
}

// Create stores a new record from payload.
func (m *Memory) Create(ctx context.Context, payload Payload) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if strings.TrimSpace(payload.Type) == "" {
		return Record{}, NewStorageError("Invalid post type.")
	}

	rec := applyPayload(Record{}, payload)
	if rec.Title == "" && rec.Content == "" && !payload.AllowEmptyTitle {
		return Record{}, NewStorageError("Content, title, and excerpt are empty.")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.put(rec)
	return m.records[id].Clone(), nil
}

// Update merges payload into an existing record.
func (m *Memory) Update(ctx context.Context, id ID, payload Payload) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[id]
	if !ok {
		return Record{}, NewStorageError("Invalid post ID.")
	}
	if payload.Type != "" && payload.Type != existing.Type {
		return Record{}, NewStorageError(fmt.Sprintf("Record %s is not a %s.", id, payload.Type))
	}

	updated := applyPayload(existing.Clone(), payload)
	m.records[id] = updated
	return updated.Clone(), nil
}

// SupportsTitle reports false for types registered through WithUntitledTypes.
func (m *Memory) SupportsTitle(typeName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, untitled := m.untitled[typeName]
	return !untitled
}

func applyPayload(rec Record, payload Payload) Record {
	if payload.Type != "" {
		rec.Type = payload.Type
	}
	if payload.Status != "" {
		rec.Status = payload.Status
	}

	keys := make([]string, 0, len(payload.Fields))
	for key := range payload.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := payload.Fields[key]
		switch key {
		case "post_title", "title":
			rec.Title = value
		case "post_content", "content":
			rec.Content = value
		case "url", "permalink":
			rec.URL = value
		case "thumbnail":
			rec.Thumbnail = value
		case "ID", "id", "post_type", "type", "post_status", "status":
		default:
			if rec.Attributes == nil {
				rec.Attributes = make(map[string]any)
			}
			rec.Attributes[key] = value
		}
	}
	return rec
}

func matchesCriteria(rec Record, criteria Criteria) bool {
	for key, want := range criteria {
		got, ok := rec.Attr(key)
		if !ok {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		out[value] = struct{}{}
	}
	return out
}
