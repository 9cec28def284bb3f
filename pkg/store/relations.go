package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-relations/pkg/record"
)

// RelationsOption configures Relations.
type RelationsOption func(*Relations)

// WithLogger sets the logger used to report malformed lists.
func WithLogger(logger *zap.Logger) RelationsOption {
	return func(r *Relations) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Relations reads and mutates relation lists stored in a MetaStore.
type Relations struct {
	meta   MetaStore
	logger *zap.Logger
}

// NewRelations wraps meta.
func NewRelations(meta MetaStore, opts ...RelationsOption) *Relations {
	r := &Relations{meta: meta, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ErrMalformedList is returned by Attach and Detach when the stored value is
// not valid JSON. The value is left untouched.
var ErrMalformedList = errors.New("store: relation list is malformed")

// List returns the relation list stored under key for primary. Absent,
// malformed or non-list values read as an empty list. Elements that do not
// decode to an entry are skipped.
func (r *Relations) List(ctx context.Context, primary record.ID, key string) ([]Entry, error) {
	raw, _, err := r.meta.Get(ctx, primary, key)
	if err != nil {
		return nil, fmt.Errorf("store: read %s for %s: %w", key, primary, err)
	}
	list, _ := r.decode(raw, primary, key)
	return list.entries, nil
}

// Attach upserts entry by id. An existing entry with the same id is replaced
// in place, otherwise entry is appended. The updated list is returned.
func (r *Relations) Attach(ctx context.Context, primary record.ID, key string, entry Entry) ([]Entry, error) {
	if entry.ID.IsZero() {
		return nil, errors.New("store: entry id is required")
	}
	return r.update(ctx, primary, key, func(list []Entry) []Entry {
		for idx := range list {
			if list[idx].ID == entry.ID {
				list[idx] = entry
				return list
			}
		}
		return append(list, entry)
	})
}

// Detach removes every entry with id. A missing id is not an error.
func (r *Relations) Detach(ctx context.Context, primary record.ID, key string, id record.ID) ([]Entry, error) {
	return r.update(ctx, primary, key, func(list []Entry) []Entry {
		kept := list[:0]
		for _, entry := range list {
			if entry.ID != id {
				kept = append(kept, entry)
			}
		}
		return kept
	})
}

// update applies fn to the decoded entries. Elements that could not be
// decoded are written back unchanged after the entries.
func (r *Relations) update(ctx context.Context, primary record.ID, key string, apply func([]Entry) []Entry) ([]Entry, error) {
	var result []Entry
	mutate := func(current []byte) ([]byte, error) {
		list, err := r.decode(current, primary, key)
		if err != nil {
			return nil, err
		}
		result = apply(list.entries)
		if result == nil {
			result = []Entry{}
		}
		return list.encode(result)
	}

	if mutator, ok := r.meta.(Mutator); ok {
		if err := mutator.Mutate(ctx, primary, key, mutate); err != nil {
			return nil, fmt.Errorf("store: update %s for %s: %w", key, primary, err)
		}
		return result, nil
	}

	current, _, err := r.meta.Get(ctx, primary, key)
	if err != nil {
		return nil, fmt.Errorf("store: read %s for %s: %w", key, primary, err)
	}
	next, err := mutate(current)
	if err != nil {
		return nil, fmt.Errorf("store: update %s for %s: %w", key, primary, err)
	}
	if err := r.meta.Set(ctx, primary, key, next); err != nil {
		return nil, fmt.Errorf("store: write %s for %s: %w", key, primary, err)
	}
	return result, nil
}

type storedList struct {
	entries []Entry
	invalid []json.RawMessage
}

func (l storedList) encode(entries []Entry) ([]byte, error) {
	out := make([]json.RawMessage, 0, len(entries)+len(l.invalid))
	for _, entry := range entries {
		encoded, err := json.Marshal(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, encoded)
	}
	out = append(out, l.invalid...)
	return json.Marshal(out)
}

// decode splits raw into entries and undecodable elements. Raw bytes that
// are not JSON return ErrMalformedList; JSON values that are not lists
// decode as an empty list.
func (r *Relations) decode(raw []byte, primary record.ID, key string) (storedList, error) {
	list := storedList{entries: []Entry{}}
	if len(bytes.TrimSpace(raw)) == 0 {
		return list, nil
	}
	if !json.Valid(raw) {
		r.logger.Warn("relation list is not JSON, reading as empty",
			zap.String("key", key),
			zap.Stringer("primary", primary),
		)
		return list, ErrMalformedList
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		r.logger.Warn("relation list is not a list, reading as empty",
			zap.String("key", key),
			zap.Stringer("primary", primary),
			zap.Error(err),
		)
		return list, nil
	}

	for idx, element := range elements {
		var entry Entry
		if err := json.Unmarshal(element, &entry); err != nil {
			r.logger.Warn("skipping malformed relation entry",
				zap.String("key", key),
				zap.Stringer("primary", primary),
				zap.Int("index", idx),
				zap.Error(err),
			)
			list.invalid = append(list.invalid, element)
			continue
		}
		list.entries = append(list.entries, entry)
	}
	return list, nil
}
