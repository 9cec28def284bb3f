package crud

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-relations/pkg/config"
	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/store"
)

// ListRequest asks for the records attached to a primary record.
type ListRequest struct {
	Primary record.ID
	Token   string
}

// ListResult is the attached listing. Empty lists carry no HTML.
type ListResult struct {
	HTML    string
	Entries []store.Entry
	Records []record.Record
}

// Empty reports whether nothing is attached.
func (r ListResult) Empty() bool { return len(r.Records) == 0 }

// AttachRequest adds a related record to a primary record.
type AttachRequest struct {
	Primary record.ID
	Token   string
	ID      record.ID
	Title   string
	// Type is required for mixed relations and defaults to the related type
	// of a single relation.
	Type string
}

// DetachRequest removes a related record from a primary record.
type DetachRequest struct {
	Primary record.ID
	Token   string
	ID      record.ID
}

// ListAttached renders the records referenced by the primary record's
// relation list in attach order. Mixed relations render without a table
// header and collapse repeated ids.
func (h *Handler) ListAttached(ctx context.Context, req ListRequest) (ListResult, error) {
	if err := h.verify(ctx, req.Token, h.descriptor.PrimaryScope()); err != nil {
		return ListResult{}, err
	}
	if req.Primary.IsZero() {
		return ListResult{}, fmt.Errorf("%w: primary id is required", ErrInvalidRequest)
	}

	entries, err := h.relations.List(ctx, req.Primary, h.descriptor.MetaKey())
	if err != nil {
		h.logger.Error("read relation list failed", zap.Stringer("primary", req.Primary), zap.Error(err))
		return ListResult{}, storageError(err)
	}

	ids := uniqueIDs(store.IDs(entries))
	if len(ids) == 0 {
		return ListResult{Entries: entries}, nil
	}

	found, err := h.records.Query(ctx, record.Query{
		Types: h.descriptor.Related(),
		IDs:   ids,
	})
	if err != nil {
		h.logger.Error("load attached records failed", zap.Stringer("primary", req.Primary), zap.Error(err))
		return ListResult{}, storageError(err)
	}
	records := orderByIDs(found, ids)
	if len(records) == 0 {
		return ListResult{Entries: entries}, nil
	}

	formatType := h.descriptor.Key()
	if h.descriptor.Mixed() {
		formatType = config.Default
	}
	out, err := h.renderList(ctx, attachedListing, h.formatFor(attachedListing, formatType), records, !h.descriptor.Mixed())
	if err != nil {
		return ListResult{}, err
	}

	h.logger.Debug("attached list rendered", zap.Stringer("primary", req.Primary), zap.Int("count", len(records)))
	return ListResult{HTML: out, Entries: entries, Records: records}, nil
}

// Attach upserts the related record into the primary record's relation list
// and returns the updated list.
func (h *Handler) Attach(ctx context.Context, req AttachRequest) ([]store.Entry, error) {
	if err := h.verify(ctx, req.Token, h.descriptor.PrimaryScope()); err != nil {
		return nil, err
	}
	if req.Primary.IsZero() || req.ID.IsZero() {
		return nil, fmt.Errorf("%w: primary and related ids are required", ErrInvalidRequest)
	}

	typeName := req.Type
	if typeName == "" && !h.descriptor.Mixed() {
		typeName = h.descriptor.Key()
	}
	if err := h.checkType(typeName); err != nil {
		return nil, err
	}

	entry := store.NewEntry(req.ID, map[string]string{
		"title": req.Title,
		"type":  typeName,
	})
	entries, err := h.relations.Attach(ctx, req.Primary, h.descriptor.MetaKey(), entry)
	if err != nil {
		h.logger.Error("attach failed", zap.Stringer("primary", req.Primary), zap.Stringer("related", req.ID), zap.Error(err))
		return nil, storageError(err)
	}

	h.logger.Debug("attached", zap.Stringer("primary", req.Primary), zap.Stringer("related", req.ID), zap.String("type", typeName))
	return entries, nil
}

// Detach removes the related record from the primary record's relation list
// and returns the updated list. Detaching an absent id succeeds.
func (h *Handler) Detach(ctx context.Context, req DetachRequest) ([]store.Entry, error) {
	if err := h.verify(ctx, req.Token, h.descriptor.PrimaryScope()); err != nil {
		return nil, err
	}
	if req.Primary.IsZero() || req.ID.IsZero() {
		return nil, fmt.Errorf("%w: primary and related ids are required", ErrInvalidRequest)
	}

	entries, err := h.relations.Detach(ctx, req.Primary, h.descriptor.MetaKey(), req.ID)
	if err != nil {
		h.logger.Error("detach failed", zap.Stringer("primary", req.Primary), zap.Stringer("related", req.ID), zap.Error(err))
		return nil, storageError(err)
	}

	h.logger.Debug("detached", zap.Stringer("primary", req.Primary), zap.Stringer("related", req.ID))
	return entries, nil
}

func uniqueIDs(ids []record.ID) []record.ID {
	seen := make(map[record.ID]struct{}, len(ids))
	out := make([]record.ID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// orderByIDs returns records in the order of ids, dropping ids with no
// matching record.
func orderByIDs(records []record.Record, ids []record.ID) []record.Record {
	byID := make(map[record.ID]record.Record, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}
	out := make([]record.Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
		}
	}
	return out
}
