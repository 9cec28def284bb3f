package bootstrap

import (
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Class is a semantic element key whose CSS classes can be overridden.
type Class string

const (
	ClassTable         Class = "table"
	ClassActionsCell   Class = "table.actions"
	ClassListGroup     Class = "listgroup"
	ClassListGroupItem Class = "listgroup.item"
	ClassButtonGroup   Class = "btngroup"
	ClassNotice        Class = "notice"
	ClassForm          Class = "form"
	ClassDialog        Class = "dialog"
)

// ThemeTokenPrefix namespaces class overrides inside theme tokens, e.g. the
// token "relations.table" replaces the classes of ClassTable.
const ThemeTokenPrefix = "relations."

// DefaultClasses returns the Bootstrap 3 class set.
func DefaultClasses() map[Class]string {
	return map[Class]string{
		ClassTable:         "table table-striped",
		ClassActionsCell:   "text-right",
		ClassListGroup:     "list-group",
		ClassListGroupItem: "list-group-item",
		ClassButtonGroup:   "btn-group btn-group-xs pull-right",
		ClassNotice:        "alert",
		ClassForm:          "edit-related-form",
		ClassDialog:        "crud-dialog",
	}
}

func themeClasses(cfg *theme.RendererConfig) map[Class]string {
	if cfg == nil || len(cfg.Tokens) == 0 {
		return nil
	}
	out := make(map[Class]string)
	for token, value := range cfg.Tokens {
		name, ok := strings.CutPrefix(token, ThemeTokenPrefix)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		out[Class(name)] = strings.Join(strings.Fields(value), " ")
	}
	return out
}

func classContext(classes map[Class]string) map[string]any {
	out := make(map[string]any, len(classes))
	for key, value := range classes {
		out[strings.ReplaceAll(string(key), ".", "_")] = value
	}
	return out
}
