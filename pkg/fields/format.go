package fields

import (
	"fmt"
	"html"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/goliatone/go-relations/pkg/record"
)

const (
	// ExcerptWords caps the permalink excerpt length.
	ExcerptWords = 55
	// ThumbnailSize is the edge length of thumbnail images, in pixels.
	ThumbnailSize = 50
)

// Env carries the collaborators directive fields need.
type Env struct {
	// EditURL returns the edit-flow URL for a record.
	EditURL func(rec record.Record) string
	// TypeLabel returns the display label of a record type.
	TypeLabel func(typeName string) string
}

// Label resolves a type label, falling back to the type name.
func (e Env) Label(typeName string) string {
	if e.TypeLabel != nil {
		if label := e.TypeLabel(typeName); label != "" {
			return label
		}
	}
	return typeName
}

func (e Env) editURL(rec record.Record) string {
	if e.EditURL == nil {
		return ""
	}
	return e.EditURL(rec)
}

// Format builds the row for rec from specs in order.
func Format(rec record.Record, specs []Spec, env Env) Row {
	var row Row
	for _, spec := range specs {
		formatCell(&row, rec, spec, env)
	}
	return row
}

func formatCell(row *Row, rec record.Record, spec Spec, env Env) {
	switch spec.kind {
	case KindCustom:
		if spec.resolve == nil {
			return
		}
		cell := spec.resolve(rec)
		row.Set(cell.Label, cell.Value)
	case KindPermalinkExcerpt:
		row.Set("Title", permalink(rec)+"<p>"+Excerpt(rec.Content, ExcerptWords)+"</p>")
	case KindThumbnail:
		row.Set("Image", thumbnail(rec))
	case KindEditLink:
		value, _ := rec.Attr(spec.attr)
		row.Set(Humanize(spec.attr), editLink(rec, stringify(value), env))
	case KindCount:
		label := env.Label(spec.attr) + "(s)"
		value, _ := rec.Attr(spec.attr)
		row.Set(label, strconv.Itoa(count(value))+" "+html.EscapeString(label))
	case KindYesNo:
		value, _ := rec.Attr(spec.attr)
		if Truthy(value) {
			row.Set(Humanize(spec.attr), "<strong>Yes</strong>")
		} else {
			row.Set(Humanize(spec.attr), "No")
		}
	default:
		value, _ := rec.Attr(spec.attr)
		row.Set(Humanize(spec.attr), html.EscapeString(stringify(value)))
	}
}

// Humanize turns an attribute name into a column label: underscores become
// spaces and every word starts upper case. The remaining letters keep their
// case, so "ID" stays "ID".
func Humanize(name string) string {
	spaced := strings.ReplaceAll(name, "_", " ")
	return cases.Title(language.Und, cases.NoLower).String(spaced)
}

var (
	stripPolicyOnce sync.Once
	stripPolicy     *bluemonday.Policy
)

func stripper() *bluemonday.Policy {
	stripPolicyOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return stripPolicy
}

// Excerpt strips markup from content and truncates it to limit words,
// appending an ellipsis when words were dropped. The result is HTML-safe.
func Excerpt(content string, limit int) string {
	plain := strings.TrimSpace(stripper().Sanitize(content))
	if plain == "" {
		return ""
	}
	words := strings.Fields(plain)
	if limit <= 0 || len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ") + "&hellip;"
}

// Truthy reports whether value counts as "yes".
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		}
		return false
	case record.ID:
		return v != 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	}
	return false
}

func count(value any) int {
	if value == nil {
		return 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len()
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return 0
		}
	}
	return 1
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func permalink(rec record.Record) string {
	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(html.EscapeString(rec.URL))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(rec.Title))
	b.WriteString(`</a>`)
	return b.String()
}

func thumbnail(rec record.Record) string {
	src := strings.TrimSpace(rec.Thumbnail)
	if src == "" {
		return ""
	}
	size := strconv.Itoa(ThumbnailSize)
	var b strings.Builder
	b.WriteString(`<img class="img-thumbnail" src="`)
	b.WriteString(html.EscapeString(src))
	b.WriteString(`" width="`)
	b.WriteString(size)
	b.WriteString(`" height="`)
	b.WriteString(size)
	b.WriteString(`" alt="`)
	b.WriteString(html.EscapeString(rec.Title))
	b.WriteString(`">`)
	return b.String()
}

func editLink(rec record.Record, text string, env Env) string {
	var b strings.Builder
	b.WriteString(`<a class="btn btn-link thickbox" data-surface="embedded" href="`)
	b.WriteString(html.EscapeString(env.editURL(rec)))
	b.WriteString(`" title="`)
	b.WriteString(html.EscapeString("Edit " + env.Label(rec.Type)))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(text))
	b.WriteString(`</a>`)
	return b.String()
}
