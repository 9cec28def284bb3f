package crud

import (
	"context"
	"fmt"

	"github.com/goliatone/go-relations/pkg/actions"
	"github.com/goliatone/go-relations/pkg/fields"
	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/render"
)

// listing selects which configuration namespace a list renders with.
type listing int

const (
	browseListing listing = iota
	attachedListing
)

func (h *Handler) formatFor(kind listing, typeName string) render.Format {
	if kind == attachedListing {
		return h.config.PostListFormat(typeName)
	}
	return h.config.ListFormat(typeName)
}

func (h *Handler) specsFor(kind listing, typeName string) ([]fields.Spec, []actions.Spec) {
	if kind == attachedListing {
		return h.config.PostListFields(typeName), h.config.PostListActions(typeName)
	}
	return h.config.ListFields(typeName), h.config.ListActions(typeName)
}

// renderList formats records through format. Fields and actions are looked
// up per record type so mixed lists render each record with its own
// configuration.
func (h *Handler) renderList(ctx context.Context, kind listing, format render.Format, records []record.Record, header bool) (string, error) {
	if format.IsCustom() {
		return format.Func()(ctx, records)
	}

	name := format.Name()
	if name == "" {
		name = render.FormatTable
	}
	formatter, err := h.formats.Get(name)
	if err != nil {
		return "", fmt.Errorf("crud: resolve list format: %w", err)
	}

	fieldsEnv := h.fieldsEnv()
	actionsEnv := h.actionsEnv()

	page := render.Page{
		Items:    make([]render.Item, 0, len(records)),
		Header:   header,
		Instance: h.descriptor.InstanceID(),
	}
	for _, rec := range records {
		fieldSpecs, actionSpecs := h.specsFor(kind, rec.Type)
		page.Items = append(page.Items, render.Item{
			Record:  rec,
			Row:     fields.Format(rec, fieldSpecs, fieldsEnv),
			Actions: actions.Resolve(actionSpecs, rec, actionsEnv),
		})
	}

	out, err := formatter.Format(ctx, page)
	if err != nil {
		return "", fmt.Errorf("crud: render %s list: %w", name, err)
	}
	return out, nil
}
