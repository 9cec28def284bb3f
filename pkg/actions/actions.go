// Package actions resolves the per-record controls of a relation list: edit
// (full navigation or the embedded surface), attach to the primary record,
// detach from it, or a caller supplied control.
package actions

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-relations/pkg/fields"
	"github.com/goliatone/go-relations/pkg/record"
)

// Kind enumerates the action spec variants.
type Kind int

const (
	KindEdit Kind = iota
	KindEditInline
	KindAttach
	KindDetach
	KindCustom
)

// Resolver builds a custom control for a record.
type Resolver func(rec record.Record) Control

// Spec describes one action.
type Spec struct {
	kind    Kind
	resolve Resolver
}

// Edit opens the edit flow with full navigation.
func Edit() Spec { return Spec{kind: KindEdit} }

// EditInline opens the edit flow in the embedded surface.
func EditInline() Spec { return Spec{kind: KindEditInline} }

// Attach adds the record to the primary record's relation list.
func Attach() Spec { return Spec{kind: KindAttach} }

// Detach removes the record from the primary record's relation list.
func Detach() Spec { return Spec{kind: KindDetach} }

// Custom delegates control construction to fn.
func Custom(fn Resolver) Spec { return Spec{kind: KindCustom, resolve: fn} }

// Kind reports the variant.
func (s Spec) Kind() Kind { return s.kind }

func (s Spec) String() string {
	switch s.kind {
	case KindEdit:
		return "edit"
	case KindEditInline:
		return "edit_inline"
	case KindAttach:
		return "attach"
	case KindDetach:
		return "detach"
	default:
		return "custom"
	}
}

// Parse maps a configuration name onto a Spec. The legacy names
// edit_related, edit_related_thickbox, add_to_post and remove_from_post are
// accepted as aliases.
func Parse(name string) (Spec, error) {
	switch strings.TrimSpace(name) {
	case "edit", "edit_related":
		return Edit(), nil
	case "edit_inline", "edit_related_thickbox":
		return EditInline(), nil
	case "attach", "add_to_post":
		return Attach(), nil
	case "detach", "remove_from_post":
		return Detach(), nil
	default:
		return Spec{}, fmt.Errorf("actions: unknown action %q", name)
	}
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

// Env carries relation context for action controls.
type Env struct {
	fields.Env
	// Instance is the relation instance id attached to attach/detach payloads.
	Instance string
	// Primary is the primary record type, used in control titles.
	Primary string
}

// Resolve builds the controls for rec in the configured order.
func Resolve(specs []Spec, rec record.Record, env Env) []Control {
	controls := make([]Control, 0, len(specs))
	for _, spec := range specs {
		switch spec.kind {
		case KindEdit, KindEditInline:
			controls = append(controls, editControl(rec, env, spec.kind == KindEditInline))
		case KindAttach:
			controls = append(controls, attachControl(rec, env))
		case KindDetach:
			controls = append(controls, detachControl(rec, env))
		case KindCustom:
			if spec.resolve != nil {
				controls = append(controls, spec.resolve(rec))
			}
		}
	}
	return controls
}

func editControl(rec record.Record, env Env, inline bool) Control {
	control := Control{
		Action:  "edit",
		Variant: VariantDefault,
		Icon:    "glyphicon glyphicon-pencil",
		Title:   "Edit " + env.Label(rec.Type),
		Href:    "",
		Data: map[string]string{
			"related-id":   rec.ID.String(),
			"related-type": rec.Type,
		},
	}
	if env.EditURL != nil {
		control.Href = env.EditURL(rec)
	}
	if inline {
		control.Action = "edit_inline"
		control.Classes = []string{"thickbox"}
		control.Data["surface"] = "embedded"
	}
	return control
}

func attachControl(rec record.Record, env Env) Control {
	return Control{
		Action:  "attach",
		Variant: VariantSuccess,
		Size:    SizeXS,
		Icon:    "glyphicon glyphicon-plus",
		Title:   "Add " + env.Label(rec.Type) + " to " + env.Primary,
		Data: map[string]string{
			"toggle":           "add-to-post",
			"related-id":       rec.ID.String(),
			"related-title":    rec.Title,
			"related-type":     rec.Type,
			"related-instance": env.Instance,
		},
	}
}

func detachControl(rec record.Record, env Env) Control {
	return Control{
		Action:  "detach",
		Variant: VariantDanger,
		Icon:    "glyphicon glyphicon-trash",
		Title:   "Remove " + env.Label(rec.Type) + " from " + env.Primary,
		Data: map[string]string{
			"toggle":           "remove-from-post",
			"related-id":       rec.ID.String(),
			"related-instance": env.Instance,
		},
	}
}
