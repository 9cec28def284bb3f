package forms

import (
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-relations/pkg/fields"
	"github.com/goliatone/go-relations/pkg/record"
)

// Env is the context a form renders in.
type Env struct {
	// Record is the record being edited; the zero record for a create form.
	Record record.Record
	// Type is the related type the form saves.
	Type string
	// FullEditURL links to the full edit page of Record, if any.
	FullEditURL string
	// Meta returns the stored metadata value for key.
	Meta func(key string) string
}

func (e Env) meta(key string) string {
	if e.Meta == nil {
		return ""
	}
	return e.Meta(key)
}

// FieldKind enumerates the field variants.
type FieldKind int

const (
	FieldTitle FieldKind = iota
	FieldInput
	FieldTextArea
	FieldMeta
	FieldCustom
)

// FieldFunc renders custom field markup.
type FieldFunc func(env Env) string

// Field describes one form field.
type Field struct {
	kind   FieldKind
	name   string
	label  string
	render FieldFunc
}

// TitleInput renders the post_title input labeled "Title".
func TitleInput() Field { return Field{kind: FieldTitle, name: "post_title", label: "Title"} }

// Input renders a single line input for a record attribute. An empty label
// is derived from the name.
func Input(name, label string) Field { return Field{kind: FieldInput, name: name, label: label} }

// TextArea renders a multi line input for a record attribute.
func TextArea(name, label string) Field {
	return Field{kind: FieldTextArea, name: name, label: label}
}

// MetaInput renders an input posted as meta[key].
func MetaInput(key, label string) Field { return Field{kind: FieldMeta, name: key, label: label} }

// CustomField delegates rendering to fn. Its output is inserted verbatim.
func CustomField(fn FieldFunc) Field { return Field{kind: FieldCustom, render: fn} }

// Kind reports the variant.
func (f Field) Kind() FieldKind { return f.kind }

// Name returns the bound attribute or metadata key.
func (f Field) Name() string { return f.name }

// MetaKey reports the metadata key of a meta field.
func (f Field) MetaKey() (string, bool) {
	if f.kind != FieldMeta {
		return "", false
	}
	return f.name, true
}

func (f Field) String() string {
	switch f.kind {
	case FieldTitle:
		return "post_title"
	case FieldInput:
		return "input:" + f.name
	case FieldTextArea:
		return "textarea:" + f.name
	case FieldMeta:
		return "meta:" + f.name
	default:
		return "custom"
	}
}

// ParseField maps a configuration name onto a Field.
func ParseField(name string) (Field, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "post_title" || trimmed == "title" {
		return TitleInput(), nil
	}
	directive, arg, ok := strings.Cut(trimmed, ":")
	if !ok {
		return Field{}, fmt.Errorf("forms: unknown field %q", name)
	}
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return Field{}, fmt.Errorf("forms: field %q requires a name", name)
	}
	switch directive {
	case "input":
		return Input(arg, ""), nil
	case "textarea":
		return TextArea(arg, ""), nil
	case "meta":
		return MetaInput(arg, ""), nil
	default:
		return Field{}, fmt.Errorf("forms: unknown field directive %q", directive)
	}
}

// ParseFields parses every name, stopping at the first error.
func ParseFields(names []string) ([]Field, error) {
	out := make([]Field, 0, len(names))
	for _, name := range names {
		field, err := ParseField(name)
		if err != nil {
			return nil, err
		}
		out = append(out, field)
	}
	return out, nil
}

// MetaKeys lists the metadata keys named by specs.
func MetaKeys(specs []Field) []string {
	var keys []string
	for _, spec := range specs {
		if key, ok := spec.MetaKey(); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// RenderFields renders specs in order.
func RenderFields(specs []Field, env Env) []string {
	out := make([]string, 0, len(specs))
	for _, spec := range specs {
		if markup := renderField(spec, env); markup != "" {
			out = append(out, markup)
		}
	}
	return out
}

func renderField(spec Field, env Env) string {
	switch spec.kind {
	case FieldCustom:
		if spec.render == nil {
			return ""
		}
		return spec.render(env)
	case FieldMeta:
		return buildFieldMarkup("meta["+spec.name+"]", "meta-"+spec.name, labelFor(spec), env.meta(spec.name), false)
	case FieldTextArea:
		return buildFieldMarkup(spec.name, spec.name, labelFor(spec), attrString(env.Record, spec.name), true)
	default:
		return buildFieldMarkup(spec.name, spec.name, labelFor(spec), attrString(env.Record, spec.name), false)
	}
}

func labelFor(spec Field) string {
	if strings.TrimSpace(spec.label) != "" {
		return spec.label
	}
	return fields.Humanize(spec.name)
}

func attrString(rec record.Record, name string) string {
	value, ok := rec.Attr(name)
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

func buildFieldMarkup(name, id, label, value string, multiline bool) string {
	var builder strings.Builder
	builder.Grow(len(value) + 192)

	controlID := "crud-" + id
	builder.WriteString(`<div class="form-group">` + "\n")
	builder.WriteString(`    <label for="`)
	builder.WriteString(html.EscapeString(controlID))
	builder.WriteString(`">`)
	builder.WriteString(html.EscapeString(label))
	builder.WriteString("</label>\n")

	if multiline {
		builder.WriteString(`    <textarea class="form-control" rows="4" id="`)
		builder.WriteString(html.EscapeString(controlID))
		builder.WriteString(`" name="`)
		builder.WriteString(html.EscapeString(name))
		builder.WriteString(`">`)
		builder.WriteString(html.EscapeString(value))
		builder.WriteString("</textarea>\n")
	} else {
		builder.WriteString(`    <input type="text" class="form-control" id="`)
		builder.WriteString(html.EscapeString(controlID))
		builder.WriteString(`" name="`)
		builder.WriteString(html.EscapeString(name))
		builder.WriteString(`" value="`)
		builder.WriteString(html.EscapeString(value))
		builder.WriteString(`">` + "\n")
	}

	builder.WriteString("</div>\n")
	return builder.String()
}
