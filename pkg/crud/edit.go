package crud

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-relations/pkg/forms"
	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/render"
	"github.com/goliatone/go-relations/pkg/validation"
)

// StatusPublish is forced onto every saved related record.
const StatusPublish = "publish"

// Submission keys that belong to the transport rather than the record.
const (
	FieldNonce     = "nonce"
	FieldAction    = "action"
	FieldRelatedID = "related_id"
)

// EditRequest drives the edit flow. A nil Values presents the form; a
// non-nil Values processes a submission.
type EditRequest struct {
	Type string
	// ID selects the record to edit. Zero creates a new record.
	ID record.ID
	// Values holds the submitted form, meta fields posted as meta[key].
	Values map[string]string
	// Embedded wraps the presented form in the dialog chrome.
	Embedded bool
}

// Submitted reports whether the request carries a submission.
func (r EditRequest) Submitted() bool { return r.Values != nil }

// EditResult is the outcome of the edit flow. HTML is set when the form was
// presented; Record when a submission was saved.
type EditResult struct {
	HTML    string
	Record  record.Record
	Created bool
}

// Edit presents the edit form or processes its submission.
func (h *Handler) Edit(ctx context.Context, req EditRequest) (EditResult, error) {
	if err := h.checkType(req.Type); err != nil {
		return EditResult{}, err
	}
	if req.Submitted() {
		return h.submit(ctx, req)
	}
	return h.present(ctx, req)
}

func (h *Handler) present(ctx context.Context, req EditRequest) (EditResult, error) {
	var rec record.Record
	if !req.ID.IsZero() {
		found, ok, err := h.records.Find(ctx, req.Type, req.ID)
		if err != nil {
			h.logger.Error("edit lookup failed", zap.String("type", req.Type), zap.Stringer("id", req.ID), zap.Error(err))
			return EditResult{}, storageError(err)
		}
		if ok {
			rec = found
		}
	}

	env := forms.Env{
		Record: rec,
		Type:   req.Type,
		Meta:   h.metaReader(ctx, rec.ID),
	}
	if h.fullEditURL != nil && !rec.ID.IsZero() {
		env.FullEditURL = h.fullEditURL(rec)
	}

	route := h.descriptor.EditRoute(req.Type)
	hidden := map[string]string{FieldAction: route}
	if !rec.ID.IsZero() {
		hidden[FieldRelatedID] = rec.ID.String()
	}
	if h.issuer != nil {
		nonce, err := h.issuer.Issue(ctx, h.descriptor.EditScope(req.Type))
		if err != nil {
			return EditResult{}, fmt.Errorf("crud: issue edit token: %w", err)
		}
		hidden = render.MergeHiddenFields(hidden, render.Nonce(nonce))
	}

	heading := "Edit " + h.config.TypeLabel(req.Type)
	out, err := h.views.Form(ctx, render.FormView{
		Heading:  heading,
		Action:   h.URL(route, url.Values{}),
		Instance: h.descriptor.InstanceID(),
		Hidden:   render.SortedHiddenFields(hidden),
		Fields:   forms.RenderFields(h.config.FormFields(req.Type), env),
		Hooks:    forms.RenderHooks(h.config.FormHooks(req.Type), env),
		Buttons:  forms.RenderButtons(h.config.FormButtons(req.Type), env),
	})
	if err != nil {
		return EditResult{}, fmt.Errorf("crud: render edit form: %w", err)
	}

	if req.Embedded && h.chrome != nil {
		out, err = h.chrome.Wrap(ctx, heading, out)
		if err != nil {
			return EditResult{}, fmt.Errorf("crud: wrap edit form: %w", err)
		}
	}
	return EditResult{HTML: out, Record: rec}, nil
}

func (h *Handler) metaReader(ctx context.Context, id record.ID) func(string) string {
	return func(key string) string {
		if id.IsZero() {
			return ""
		}
		value, ok, err := h.meta.Get(ctx, id, key)
		if err != nil || !ok {
			return ""
		}
		return string(value)
	}
}

func (h *Handler) submit(ctx context.Context, req EditRequest) (EditResult, error) {
	if err := h.verify(ctx, req.Values[FieldNonce], h.descriptor.EditScope(req.Type)); err != nil {
		return EditResult{}, err
	}

	values := stripTransport(req.Values)
	outcome := validation.Evaluate(h.config.Validation(req.Type), &validation.Context{
		Type:     req.Type,
		RecordID: req.ID,
		Values:   values,
	})
	if !outcome.Passed {
		h.logger.Warn("submission rejected",
			zap.String("type", req.Type),
			zap.Stringer("id", req.ID),
			zap.String("message", outcome.Message),
		)
		return EditResult{}, &ValidationError{Type: req.Type, Message: outcome.Message, Issues: outcome.Issues}
	}

	recordFields, meta := splitMeta(values)
	payload := record.Payload{
		Type:   req.Type,
		Status: StatusPublish,
		Fields: recordFields,
	}

	var (
		saved   record.Record
		err     error
		created = req.ID.IsZero()
	)
	if created {
		if supporter, ok := h.records.(record.TitleSupporter); ok && !supporter.SupportsTitle(req.Type) {
			payload.AllowEmptyTitle = true
		}
		saved, err = h.records.Create(ctx, payload)
	} else {
		saved, err = h.records.Update(ctx, req.ID, payload)
	}
	if err != nil {
		h.logger.Error("save related record failed", zap.String("type", req.Type), zap.Stringer("id", req.ID), zap.Error(err))
		return EditResult{}, storageError(err)
	}

	for _, key := range sortedKeys(meta) {
		if err := h.meta.Set(ctx, saved.ID, key, []byte(meta[key])); err != nil {
			h.logger.Error("save meta field failed", zap.Stringer("id", saved.ID), zap.String("key", key), zap.Error(err))
			return EditResult{}, storageError(err)
		}
	}

	h.logger.Debug("related record saved",
		zap.String("type", req.Type),
		zap.Stringer("id", saved.ID),
		zap.Bool("created", created),
	)
	return EditResult{Record: saved, Created: created}, nil
}

// stripTransport copies values without the keys consumed by the transport.
func stripTransport(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for key, value := range values {
		switch key {
		case FieldNonce, FieldAction, FieldRelatedID:
			continue
		}
		out[key] = value
	}
	return out
}

// splitMeta separates meta[key] values from record fields.
func splitMeta(values map[string]string) (map[string]string, map[string]string) {
	recordFields := make(map[string]string, len(values))
	meta := make(map[string]string)
	for key, value := range values {
		if name, ok := metaName(key); ok {
			meta[name] = value
			continue
		}
		recordFields[key] = value
	}
	return recordFields, meta
}

func metaName(key string) (string, bool) {
	inner, ok := strings.CutPrefix(key, "meta[")
	if !ok {
		return "", false
	}
	inner, ok = strings.CutSuffix(inner, "]")
	if !ok || strings.TrimSpace(inner) == "" {
		return "", false
	}
	return inner, true
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
