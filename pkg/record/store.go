package record

import (
	"context"
	"strings"
)

// Criteria is caller-supplied filter data passed through to the storage
// collaborator untouched. Keys are attribute names.
type Criteria map[string]any

// Merge returns a new Criteria holding c overlaid with each extra in order;
// later values win.
func (c Criteria) Merge(extras ...Criteria) Criteria {
	out := make(Criteria, len(c))
	for key, value := range c {
		out[key] = value
	}
	for _, extra := range extras {
		for key, value := range extra {
			out[key] = value
		}
	}
	return out
}

// Query selects records. Every populated field narrows the result; there is
// no upper bound on the number of returned records.
type Query struct {
	Types  []string
	IDs    []ID
	Filter Criteria
}

// Payload carries the fields of a create or update request.
type Payload struct {
	Type   string
	Status string
	Fields map[string]string
	// AllowEmptyTitle tells storage to accept a record without a title, used
	// for record types that do not support one.
	AllowEmptyTitle bool
}

// Store is the record storage collaborator.
type Store interface {
	Find(ctx context.Context, typeName string, id ID) (Record, bool, error)
	Query(ctx context.Context, query Query) ([]Record, error)
	Create(ctx context.Context, payload Payload) (Record, error)
	Update(ctx context.Context, id ID, payload Payload) (Record, error)
}

// TitleSupporter is implemented by stores that know which record types carry
// a title attribute.
type TitleSupporter interface {
	SupportsTitle(typeName string) bool
}

// StorageError reports a failed create or update as a list of messages.
type StorageError struct {
	Messages []string
}

// NewStorageError builds a StorageError from raw messages, trimming blanks
// and duplicates while preserving order.
func NewStorageError(messages ...string) *StorageError {
	return &StorageError{Messages: NormalizeMessages(messages)}
}

func (e *StorageError) Error() string {
	if e == nil || len(e.Messages) == 0 {
		return "record: storage failed"
	}
	return "record: " + strings.Join(e.Messages, "; ")
}

// NormalizeMessages trims whitespace and removes empty or duplicate messages
// while preserving order.
func NormalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
