package crud

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/render"
)

// BrowseRequest asks for the candidate records of a related type.
type BrowseRequest struct {
	Type string
	// Filter is merged over the type's configured list query.
	Filter record.Criteria
}

// Browse renders every record of the requested type. An empty result renders
// an informational notice.
func (h *Handler) Browse(ctx context.Context, req BrowseRequest) (string, error) {
	if err := h.checkType(req.Type); err != nil {
		return "", err
	}

	records, err := h.records.Query(ctx, record.Query{
		Types:  []string{req.Type},
		Filter: h.config.ListQuery(req.Type).Merge(req.Filter),
	})
	if err != nil {
		h.logger.Error("browse query failed", zap.String("type", req.Type), zap.Error(err))
		return "", storageError(err)
	}

	if len(records) == 0 {
		h.logger.Debug("browse found no records", zap.String("type", req.Type))
		return h.views.Notice(ctx, render.Notice{
			Level:   render.NoticeInfo,
			Message: fmt.Sprintf("No related records found (%s).", req.Type),
		})
	}

	out, err := h.renderList(ctx, browseListing, h.formatFor(browseListing, req.Type), records, true)
	if err != nil {
		return "", err
	}
	h.logger.Debug("browse rendered", zap.String("type", req.Type), zap.Int("count", len(records)))
	return out, nil
}
