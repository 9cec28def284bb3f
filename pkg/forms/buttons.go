package forms

import (
	"fmt"
	"html"
	"strings"
)

// ButtonKind enumerates the button variants.
type ButtonKind int

const (
	ButtonSave ButtonKind = iota
	ButtonFullEdit
	ButtonCustom
)

// ButtonFunc renders custom button markup.
type ButtonFunc func(env Env) string

// Button describes one form button.
type Button struct {
	kind   ButtonKind
	render ButtonFunc
}

// Save submits the form.
func Save() Button { return Button{kind: ButtonSave} }

// FullEdit links to the full edit page in the parent window.
func FullEdit() Button { return Button{kind: ButtonFullEdit} }

// CustomButton delegates rendering to fn.
func CustomButton(fn ButtonFunc) Button { return Button{kind: ButtonCustom, render: fn} }

// Kind reports the variant.
func (b Button) Kind() ButtonKind { return b.kind }

func (b Button) String() string {
	switch b.kind {
	case ButtonSave:
		return "save"
	case ButtonFullEdit:
		return "full_edit"
	default:
		return "custom"
	}
}

// ParseButton maps a configuration name onto a Button.
func ParseButton(name string) (Button, error) {
	switch strings.TrimSpace(name) {
	case "save":
		return Save(), nil
	case "full_edit":
		return FullEdit(), nil
	default:
		return Button{}, fmt.Errorf("forms: unknown button %q", name)
	}
}

// ParseButtons parses every name, stopping at the first error.
func ParseButtons(names []string) ([]Button, error) {
	out := make([]Button, 0, len(names))
	for _, name := range names {
		button, err := ParseButton(name)
		if err != nil {
			return nil, err
		}
		out = append(out, button)
	}
	return out, nil
}

// RenderButtons renders specs in order, skipping buttons with nothing to
// show.
func RenderButtons(specs []Button, env Env) []string {
	out := make([]string, 0, len(specs))
	for _, spec := range specs {
		var markup string
		switch spec.kind {
		case ButtonSave:
			markup = `<button type="submit" class="btn btn-success pull-right">Save</button>`
		case ButtonFullEdit:
			if env.FullEditURL != "" {
				markup = `<a class="btn btn-link pull-right" href="` + html.EscapeString(env.FullEditURL) + `" target="_parent">Go to full edit page</a>`
			}
		case ButtonCustom:
			if spec.render != nil {
				markup = spec.render(env)
			}
		}
		if markup != "" {
			out = append(out, markup)
		}
	}
	return out
}
