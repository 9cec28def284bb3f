package actions

import (
	"html"
	"sort"
	"strings"
)

// Variant is the visual style of a control.
type Variant string

const (
	VariantDefault Variant = "default"
	VariantSuccess Variant = "success"
	VariantDanger  Variant = "danger"
	VariantLink    Variant = "link"
)

// Size is the optional size modifier of a control.
type Size string

const SizeXS Size = "xs"

// Control is a renderable button. Controls with an Href render as links,
// the rest as buttons driven by their data attributes.
type Control struct {
	Action  string
	Label   string
	Icon    string
	Title   string
	Href    string
	Variant Variant
	Size    Size
	Classes []string
	Data    map[string]string
}

// Payload returns the data attributes keyed without their data- prefix, for
// programmatic consumers.
func (c Control) Payload() map[string]string {
	out := make(map[string]string, len(c.Data))
	for key, value := range c.Data {
		out[key] = value
	}
	return out
}

// HTML renders the control. All attribute values are escaped; Label is
// treated as text.
func (c Control) HTML() string {
	var b strings.Builder
	b.Grow(160)

	tag := "button"
	if c.Href != "" {
		tag = "a"
	}

	b.WriteString("<")
	b.WriteString(tag)
	if tag == "button" {
		b.WriteString(` type="button"`)
	}
	writeAttr(&b, "class", c.classList())
	if c.Href != "" {
		writeAttr(&b, "href", c.Href)
	}
	if c.Title != "" {
		writeAttr(&b, "title", c.Title)
	}
	if c.Action != "" {
		writeAttr(&b, "data-action", c.Action)
	}

	keys := make([]string, 0, len(c.Data))
	for key := range c.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		writeAttr(&b, "data-"+key, c.Data[key])
	}
	b.WriteString(">")

	if c.Icon != "" {
		b.WriteString(`<i class="`)
		b.WriteString(html.EscapeString(c.Icon))
		b.WriteString(`"></i>`)
	}
	if c.Label != "" {
		if c.Icon != "" {
			b.WriteString(" ")
		}
		b.WriteString(html.EscapeString(c.Label))
	}

	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
	return b.String()
}

func (c Control) classList() string {
	variant := c.Variant
	if variant == "" {
		variant = VariantDefault
	}
	classes := []string{"btn", "btn-" + string(variant)}
	if c.Size != "" {
		classes = append(classes, "btn-"+string(c.Size))
	}
	for _, class := range c.Classes {
		if trimmed := strings.TrimSpace(class); trimmed != "" {
			classes = append(classes, trimmed)
		}
	}
	return strings.Join(classes, " ")
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteString(`"`)
}
