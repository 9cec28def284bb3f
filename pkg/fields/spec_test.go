package fields_test

import (
	"testing"

	"github.com/goliatone/go-relations/pkg/fields"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		kind fields.Kind
		attr string
	}{
		{"ID", fields.KindAttr, "ID"},
		{"permalink_excerpt", fields.KindPermalinkExcerpt, ""},
		{"post_title_permalink", fields.KindPermalinkExcerpt, ""},
		{"thumbnail", fields.KindThumbnail, ""},
		{"post_thumbnail", fields.KindThumbnail, ""},
		{"edit_link:post_title", fields.KindEditLink, "post_title"},
		{"crud_edit_post_title", fields.KindEditLink, "post_title"},
		{"count:lessons", fields.KindCount, "lessons"},
		{"count_lessons", fields.KindCount, "lessons"},
		{"yesno:featured", fields.KindYesNo, "featured"},
		{"yes_no_featured", fields.KindYesNo, "featured"},
	}
	for _, tc := range cases {
		spec, err := fields.Parse(tc.name)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.name, err)
		}
		if spec.Kind() != tc.kind || spec.Attribute() != tc.attr {
			t.Errorf("Parse(%q) = kind %v attr %q, want kind %v attr %q", tc.name, spec.Kind(), spec.Attribute(), tc.kind, tc.attr)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	for _, name := range []string{"", "count:", "bogus:attr"} {
		if _, err := fields.Parse(name); err == nil {
			t.Errorf("Parse(%q): expected error", name)
		}
	}
}

func TestSpec_StringRoundTrip(t *testing.T) {
	for _, name := range []string{"ID", "permalink_excerpt", "thumbnail", "edit_link:title", "count:lessons", "yesno:featured"} {
		spec, err := fields.Parse(name)
		if err != nil {
			t.Fatalf("Parse(%q): %v", name, err)
		}
		if got := spec.String(); got != name {
			t.Errorf("String() = %q, want %q", got, name)
		}
	}
}
