package record

import (
	"fmt"
	"strconv"
	"strings"
)

// ID identifies a record across every record type.
type ID int64

// ParseID converts a submitted identifier into an ID. Empty input yields the
// zero ID without an error so optional parameters stay optional.
func ParseID(raw string) (ID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("record: invalid id %q", raw)
	}
	if value < 0 {
		return 0, fmt.Errorf("record: invalid id %q", raw)
	}
	return ID(value), nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool {
	return id == 0
}

// Record is a stored entity as seen by the relation engine.
type Record struct {
	ID         ID             `json:"id"`
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Content    string         `json:"content,omitempty"`
	Status     string         `json:"status,omitempty"`
	URL        string         `json:"url,omitempty"`
	Thumbnail  string         `json:"thumbnail,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Attr resolves an attribute by name. Core columns answer to both their short
// name and the post_* alias (ID, post_title, post_content, post_type,
// post_status) so list configurations can name either.
func (r Record) Attr(name string) (any, bool) {
	switch strings.TrimSpace(name) {
	case "":
		return nil, false
	case "ID", "id":
		return r.ID, true
	case "post_title", "title":
		return r.Title, true
	case "post_content", "content":
		return r.Content, true
	case "post_type", "type":
		return r.Type, true
	case "post_status", "status":
		return r.Status, true
	case "url", "permalink":
		return r.URL, true
	}
	if r.Attributes == nil {
		return nil, false
	}
	value, ok := r.Attributes[name]
	return value, ok
}

// Clone returns a copy that does not share the attribute map.
func (r Record) Clone() Record {
	out := r
	if r.Attributes != nil {
		out.Attributes = make(map[string]any, len(r.Attributes))
		for key, value := range r.Attributes {
			out.Attributes[key] = value
		}
	}
	return out
}
