package render

import (
	"context"
	"strings"

	"github.com/goliatone/go-relations/pkg/actions"
	"github.com/goliatone/go-relations/pkg/fields"
	"github.com/goliatone/go-relations/pkg/record"
)

const (
	// FormatTable renders records as a table with an Actions column.
	FormatTable = "table"
	// FormatListGroup renders records as a flat list of field lines.
	FormatListGroup = "listgroup"
)

// FormatFunc renders records directly, bypassing row and action resolution.
type FormatFunc func(ctx context.Context, records []record.Record) (string, error)

// Format selects how a record list is rendered: a named formatter looked up
// in a Registry or a custom function.
type Format struct {
	name   string
	custom FormatFunc
}

// Named selects a registered formatter.
func Named(name string) Format { return Format{name: strings.TrimSpace(name)} }

// Custom renders through fn.
func Custom(fn FormatFunc) Format { return Format{custom: fn} }

// Name returns the formatter name, empty for custom formats.
func (f Format) Name() string { return f.name }

// Func returns the custom function, nil for named formats.
func (f Format) Func() FormatFunc { return f.custom }

// IsCustom reports whether the format bypasses the registry.
func (f Format) IsCustom() bool { return f.custom != nil }

// IsZero reports whether the format was never set.
func (f Format) IsZero() bool { return f.name == "" && f.custom == nil }

func (f Format) String() string {
	if f.custom != nil {
		return "custom"
	}
	return f.name
}

// Item is one formatted record.
type Item struct {
	Record  record.Record
	Row     fields.Row
	Actions []actions.Control
}

// Page is the input of a Formatter.
type Page struct {
	Items []Item
	// Header toggles the table header. Mixed attached listings render
	// without one since their rows may carry different labels.
	Header bool
	// Instance is the relation instance id the list belongs to.
	Instance string
}

// Formatter renders a page of records into an HTML fragment.
type Formatter interface {
	Name() string
	Format(ctx context.Context, page Page) (string, error)
}
