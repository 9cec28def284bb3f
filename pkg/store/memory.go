package store

import (
	"context"
	"sync"

	"github.com/goliatone/go-relations/pkg/record"
)

type slotKey struct {
	id  record.ID
	key string
}

// Memory is a process local MetaStore.
type Memory struct {
	mu    sync.RWMutex
	slots map[slotKey][]byte
}

var (
	_ MetaStore = (*Memory)(nil)
	_ Mutator   = (*Memory)(nil)
)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{slots: make(map[slotKey][]byte)}
}

func (m *Memory) Get(_ context.Context, id record.ID, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.slots[slotKey{id, key}]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *Memory) Set(_ context.Context, id record.ID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slotKey{id, key}] = append([]byte(nil), value...)
	return nil
}

// Mutate holds the write lock for the whole read-modify-write.
func (m *Memory) Mutate(_ context.Context, id record.ID, key string, fn MutateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.slots[slotKey{id, key}]
	if ok {
		current = append([]byte(nil), current...)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	m.slots[slotKey{id, key}] = append([]byte(nil), next...)
	return nil
}
