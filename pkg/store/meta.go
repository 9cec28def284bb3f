package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-relations/pkg/record"
)

// ErrConflict is returned when an optimistic update keeps losing to
// concurrent writers.
var ErrConflict = errors.New("store: too many concurrent updates")

// MetaStore stores opaque values per record and key.
type MetaStore interface {
	Get(ctx context.Context, id record.ID, key string) ([]byte, bool, error)
	Set(ctx context.Context, id record.ID, key string, value []byte) error
}

// MutateFunc computes the next value of a slot. current is nil when the slot
// is empty.
type MutateFunc func(current []byte) ([]byte, error)

// Mutator is implemented by stores that can apply a read-modify-write
// atomically.
type Mutator interface {
	Mutate(ctx context.Context, id record.ID, key string, fn MutateFunc) error
}
