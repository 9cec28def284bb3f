package fields

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-relations/pkg/record"
)

// Kind enumerates the field spec variants.
type Kind int

const (
	KindAttr Kind = iota
	KindPermalinkExcerpt
	KindThumbnail
	KindEditLink
	KindCount
	KindYesNo
	KindCustom
)

// Directive names accepted by Parse.
const (
	DirectivePermalinkExcerpt = "permalink_excerpt"
	DirectiveThumbnail        = "thumbnail"
	DirectiveEditLink         = "edit_link"
	DirectiveCount            = "count"
	DirectiveYesNo            = "yesno"
)

// Resolver computes a custom cell for a record.
type Resolver func(rec record.Record) Cell

// Spec describes one column of a row.
type Spec struct {
	kind    Kind
	attr    string
	resolve Resolver
}

// Attr renders the raw attribute under its humanized name.
func Attr(name string) Spec {
	return Spec{kind: KindAttr, attr: strings.TrimSpace(name)}
}

// PermalinkExcerpt renders a link to the record followed by a short excerpt.
func PermalinkExcerpt() Spec { return Spec{kind: KindPermalinkExcerpt} }

// Thumbnail renders the record image at a fixed small size.
func Thumbnail() Spec { return Spec{kind: KindThumbnail} }

// EditLink renders attr as a link opening the edit flow for the record.
func EditLink(attr string) Spec {
	return Spec{kind: KindEditLink, attr: strings.TrimSpace(attr)}
}

// Count renders the number of elements held by the attr collection.
func Count(attr string) Spec {
	return Spec{kind: KindCount, attr: strings.TrimSpace(attr)}
}

// YesNo renders attr as a bold Yes when truthy, No otherwise.
func YesNo(attr string) Spec {
	return Spec{kind: KindYesNo, attr: strings.TrimSpace(attr)}
}

// Custom delegates the cell to fn. A nil fn renders nothing.
func Custom(fn Resolver) Spec {
	return Spec{kind: KindCustom, resolve: fn}
}

// Kind reports the spec variant.
func (s Spec) Kind() Kind { return s.kind }

// Attribute returns the attribute the spec reads, if any.
func (s Spec) Attribute() string { return s.attr }

// String returns the configuration name of the spec.
func (s Spec) String() string {
	switch s.kind {
	case KindPermalinkExcerpt:
		return DirectivePermalinkExcerpt
	case KindThumbnail:
		return DirectiveThumbnail
	case KindEditLink:
		return DirectiveEditLink + ":" + s.attr
	case KindCount:
		return DirectiveCount + ":" + s.attr
	case KindYesNo:
		return DirectiveYesNo + ":" + s.attr
	case KindCustom:
		return "custom"
	default:
		return s.attr
	}
}

// Parse maps a configuration name onto a Spec. Directive names take the form
// "permalink_excerpt", "thumbnail" or "<directive>:<attr>"; the legacy names
// post_title_permalink, post_thumbnail, crud_edit_<attr>, count_<attr> and
// yes_no_<attr> are accepted as well. Anything else is an attribute.
func Parse(name string) (Spec, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Spec{}, fmt.Errorf("fields: empty field name")
	}

	if directive, attr, ok := strings.Cut(trimmed, ":"); ok {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			return Spec{}, fmt.Errorf("fields: directive %q requires an attribute", directive)
		}
		switch strings.TrimSpace(directive) {
		case DirectiveEditLink:
			return EditLink(attr), nil
		case DirectiveCount:
			return Count(attr), nil
		case DirectiveYesNo:
			return YesNo(attr), nil
		default:
			return Spec{}, fmt.Errorf("fields: unknown directive %q", directive)
		}
	}

	switch trimmed {
	case DirectivePermalinkExcerpt, "post_title_permalink":
		return PermalinkExcerpt(), nil
	case DirectiveThumbnail, "post_thumbnail":
		return Thumbnail(), nil
	}

	legacy := []struct {
		prefix string
		build  func(string) Spec
	}{
		{"crud_edit_", EditLink},
		{"count_", Count},
		{"yes_no_", YesNo},
	}
	for _, entry := range legacy {
		if attr, ok := strings.CutPrefix(trimmed, entry.prefix); ok && attr != "" {
			return entry.build(attr), nil
		}
	}

	return Attr(trimmed), nil
}

// ParseAll parses every name, stopping at the first error.
func ParseAll(names []string) ([]Spec, error) {
	out := make([]Spec, 0, len(names))
	for _, name := range names {
		spec, err := Parse(name)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

// Names builds attribute specs for each name. It is a shorthand for
// configuration code that only lists plain attributes.
func Names(names ...string) []Spec {
	out := make([]Spec, 0, len(names))
	for _, name := range names {
		out = append(out, Attr(name))
	}
	return out
}
