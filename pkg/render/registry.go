package render

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores list formatters by name.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]Formatter
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
	}
}

// Register adds a formatter by its Name(). Duplicate names return an error.
func (r *Registry) Register(formatter Formatter) error {
	if formatter == nil {
		return fmt.Errorf("render: formatter is required")
	}
	name := formatter.Name()
	if name == "" {
		return fmt.Errorf("render: formatter name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[name]; exists {
		return fmt.Errorf("render: formatter %q already registered", name)
	}

	r.formatters[name] = formatter
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(formatters ...Formatter) {
	for _, formatter := range formatters {
		if err := r.Register(formatter); err != nil {
			panic(err)
		}
	}
}

// Get retrieves a formatter by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formatter, ok := r.formatters[name]
	if !ok {
		return nil, fmt.Errorf("render: formatter %q not found", name)
	}
	return formatter, nil
}

// List returns a sorted list of formatter names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a formatter is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.formatters[name]
	return ok
}
