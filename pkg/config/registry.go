// Package config holds per related type configuration for a relation. Each
// related type gets a stable slot when the registry is built; slot 0 is the
// default slot every lookup falls back to.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-relations/pkg/actions"
	"github.com/goliatone/go-relations/pkg/fields"
	"github.com/goliatone/go-relations/pkg/forms"
	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/render"
	"github.com/goliatone/go-relations/pkg/validation"
)

// Default names the fallback slot.
const Default = "default"

// ErrUnknownType is returned when configuring a type the registry was not
// built with.
var ErrUnknownType = errors.New("config: unknown type")

type table[T any] struct {
	values []T
	set    []bool
}

func newTable[T any](size int, fallback T) table[T] {
	t := table[T]{values: make([]T, size), set: make([]bool, size)}
	t.values[0] = fallback
	t.set[0] = true
	return t
}

func (t *table[T]) put(slot int, value T) {
	t.values[slot] = value
	t.set[slot] = true
}

func (t *table[T]) get(slot int) T {
	if slot > 0 && t.set[slot] {
		return t.values[slot]
	}
	return t.values[0]
}

// Registry stores the configuration components of every related type.
type Registry struct {
	mu    sync.RWMutex
	slots map[string]int
	types []string

	listFields      table[[]fields.Spec]
	postListFields  table[[]fields.Spec]
	listActions     table[[]actions.Spec]
	postListActions table[[]actions.Spec]
	formFields      table[[]forms.Field]
	formButtons     table[[]forms.Button]
	formHooks       table[[]forms.Hook]
	validation      table[validation.Rule]
	typeLabels      table[string]
	listFormat      table[render.Format]
	postListFormat  table[render.Format]
	listQuery       table[record.Criteria]
}

// NewRegistry builds a registry with one slot per type plus the default slot.
func NewRegistry(types ...string) (*Registry, error) {
	slots := make(map[string]int, len(types))
	ordered := make([]string, 0, len(types))
	for _, name := range types {
		name = strings.TrimSpace(name)
		if name == "" || name == Default {
			return nil, fmt.Errorf("config: invalid type name %q", name)
		}
		if _, exists := slots[name]; exists {
			return nil, fmt.Errorf("config: duplicate type %q", name)
		}
		slots[name] = len(ordered) + 1
		ordered = append(ordered, name)
	}

	size := len(ordered) + 1
	return &Registry{
		slots:           slots,
		types:           ordered,
		listFields:      newTable(size, []fields.Spec{fields.Attr("ID"), fields.Attr("post_title")}),
		postListFields:  newTable(size, []fields.Spec{fields.Attr("ID"), fields.Attr("post_title")}),
		listActions:     newTable(size, []actions.Spec{actions.Edit(), actions.Attach()}),
		postListActions: newTable(size, []actions.Spec{actions.EditInline(), actions.Detach()}),
		formFields:      newTable(size, []forms.Field{forms.TitleInput()}),
		formButtons:     newTable(size, []forms.Button{forms.Save(), forms.FullEdit()}),
		formHooks:       newTable[[]forms.Hook](size, nil),
		validation:      newTable(size, validation.Always()),
		typeLabels:      newTable(size, ""),
		listFormat:      newTable(size, render.Named(render.FormatTable)),
		postListFormat:  newTable(size, render.Named(render.FormatTable)),
		listQuery:       newTable[record.Criteria](size, nil),
	}, nil
}

// MustNewRegistry panics when NewRegistry fails.
func MustNewRegistry(types ...string) *Registry {
	registry, err := NewRegistry(types...)
	if err != nil {
		panic(err)
	}
	return registry
}

// Types returns the registered types in slot order.
func (r *Registry) Types() []string {
	return append([]string(nil), r.types...)
}

// Has reports whether typeName owns a slot.
func (r *Registry) Has(typeName string) bool {
	_, ok := r.slots[typeName]
	return ok
}

// slotFor resolves the slot used for writes.
func (r *Registry) slotFor(typeName string) (int, error) {
	if typeName == Default {
		return 0, nil
	}
	slot, ok := r.slots[typeName]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownType, typeName)
	}
	return slot, nil
}

// lookup resolves the slot used for reads. Unknown types read the default.
func (r *Registry) lookup(typeName string) int {
	return r.slots[typeName]
}

func set[T any](r *Registry, t *table[T], typeName string, value T) error {
	slot, err := r.slotFor(typeName)
	if err != nil {
		return err
	}
	r.mu.Lock()
	t.put(slot, value)
	r.mu.Unlock()
	return nil
}

func get[T any](r *Registry, t *table[T], typeName string) T {
	slot := r.lookup(typeName)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return t.get(slot)
}

// SetListFields sets the browse list fields of typeName and seeds its
// attached list fields with the same specs.
func (r *Registry) SetListFields(typeName string, specs ...fields.Spec) error {
	slot, err := r.slotFor(typeName)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listFields.put(slot, cloneSlice(specs))
	r.postListFields.put(slot, cloneSlice(specs))
	return nil
}

// SetPostListFields sets the attached list fields of typeName.
func (r *Registry) SetPostListFields(typeName string, specs ...fields.Spec) error {
	return set(r, &r.postListFields, typeName, cloneSlice(specs))
}

// SetListActions sets the browse list actions of typeName.
func (r *Registry) SetListActions(typeName string, specs ...actions.Spec) error {
	return set(r, &r.listActions, typeName, cloneSlice(specs))
}

// SetPostListActions sets the attached list actions of typeName.
func (r *Registry) SetPostListActions(typeName string, specs ...actions.Spec) error {
	return set(r, &r.postListActions, typeName, cloneSlice(specs))
}

// SetFormFields sets the edit form fields of typeName.
func (r *Registry) SetFormFields(typeName string, specs ...forms.Field) error {
	return set(r, &r.formFields, typeName, cloneSlice(specs))
}

// SetFormButtons sets the edit form buttons of typeName.
func (r *Registry) SetFormButtons(typeName string, specs ...forms.Button) error {
	return set(r, &r.formButtons, typeName, cloneSlice(specs))
}

// AddFormHook appends a form body hook for typeName.
func (r *Registry) AddFormHook(typeName string, hook forms.Hook) error {
	slot, err := r.slotFor(typeName)
	if err != nil {
		return err
	}
	if hook == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	hooks := cloneSlice(r.formHooks.values[slot])
	r.formHooks.put(slot, append(hooks, hook))
	return nil
}

// SetValidation sets the edit submission rule of typeName.
func (r *Registry) SetValidation(typeName string, rule validation.Rule) error {
	return set(r, &r.validation, typeName, rule)
}

// SetTypeLabel sets the display label of typeName.
func (r *Registry) SetTypeLabel(typeName, label string) error {
	if typeName == Default {
		return fmt.Errorf("config: type labels cannot be set on the %s slot", Default)
	}
	return set(r, &r.typeLabels, typeName, strings.TrimSpace(label))
}

// SetListFormat sets the browse list format of typeName.
func (r *Registry) SetListFormat(typeName string, format render.Format) error {
	return set(r, &r.listFormat, typeName, format)
}

// SetPostListFormat sets the attached list format of typeName.
func (r *Registry) SetPostListFormat(typeName string, format render.Format) error {
	return set(r, &r.postListFormat, typeName, format)
}

// SetListQuery sets the filter criteria merged into browse queries.
func (r *Registry) SetListQuery(typeName string, criteria record.Criteria) error {
	return set(r, &r.listQuery, typeName, criteria.Merge())
}

func (r *Registry) ListFields(typeName string) []fields.Spec {
	return cloneSlice(get(r, &r.listFields, typeName))
}

func (r *Registry) PostListFields(typeName string) []fields.Spec {
	return cloneSlice(get(r, &r.postListFields, typeName))
}

func (r *Registry) ListActions(typeName string) []actions.Spec {
	return cloneSlice(get(r, &r.listActions, typeName))
}

func (r *Registry) PostListActions(typeName string) []actions.Spec {
	return cloneSlice(get(r, &r.postListActions, typeName))
}

func (r *Registry) FormFields(typeName string) []forms.Field {
	return cloneSlice(get(r, &r.formFields, typeName))
}

func (r *Registry) FormButtons(typeName string) []forms.Button {
	return cloneSlice(get(r, &r.formButtons, typeName))
}

func (r *Registry) FormHooks(typeName string) []forms.Hook {
	return cloneSlice(get(r, &r.formHooks, typeName))
}

func (r *Registry) Validation(typeName string) validation.Rule {
	return get(r, &r.validation, typeName)
}

func (r *Registry) ListFormat(typeName string) render.Format {
	return get(r, &r.listFormat, typeName)
}

func (r *Registry) PostListFormat(typeName string) render.Format {
	return get(r, &r.postListFormat, typeName)
}

func (r *Registry) ListQuery(typeName string) record.Criteria {
	return get(r, &r.listQuery, typeName).Merge()
}

// TypeLabel returns the configured label of typeName, or its humanized name.
// Labels are per type; the default slot holds none.
func (r *Registry) TypeLabel(typeName string) string {
	if slot := r.lookup(typeName); slot > 0 {
		r.mu.RLock()
		label := r.typeLabels.values[slot]
		r.mu.RUnlock()
		if label != "" {
			return label
		}
	}
	return fields.Humanize(typeName)
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}
