package bootstrap

import (
	"context"
	"sort"
	"strings"

	"github.com/goliatone/go-relations/pkg/render"
)

type tableFormatter struct {
	renderer *Renderer
}

func (tableFormatter) Name() string { return render.FormatTable }

// Format renders one row per item. The header comes from the first row's
// labels plus an Actions column.
func (f tableFormatter) Format(_ context.Context, page render.Page) (string, error) {
	rows := make([]map[string]any, 0, len(page.Items))
	for _, item := range page.Items {
		rows = append(rows, itemContext(item))
	}

	var header []string
	if page.Header && len(page.Items) > 0 {
		header = page.Items[0].Row.Labels()
	}

	return f.renderer.execute("table", map[string]any{
		"header":   header,
		"rows":     rows,
		"instance": page.Instance,
	})
}

type listGroupFormatter struct {
	renderer *Renderer
}

func (listGroupFormatter) Name() string { return render.FormatListGroup }

func (f listGroupFormatter) Format(_ context.Context, page render.Page) (string, error) {
	rows := make([]map[string]any, 0, len(page.Items))
	for _, item := range page.Items {
		rows = append(rows, itemContext(item))
	}
	return f.renderer.execute("listgroup", map[string]any{
		"rows":     rows,
		"instance": page.Instance,
	})
}

func itemContext(item render.Item) map[string]any {
	cells := make([]map[string]any, 0, item.Row.Len())
	for _, cell := range item.Row.Cells() {
		cells = append(cells, map[string]any{"label": cell.Label, "value": cell.Value})
	}
	controls := make([]string, 0, len(item.Actions))
	for _, control := range item.Actions {
		controls = append(controls, control.HTML())
	}
	return map[string]any{
		"id":       item.Record.ID.String(),
		"type":     item.Record.Type,
		"cells":    cells,
		"controls": controls,
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		if strings.HasPrefix(name, "--") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+vars[name])
	}
	return strings.Join(parts, "; ")
}
