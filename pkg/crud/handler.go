package crud

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-relations/pkg/actions"
	"github.com/goliatone/go-relations/pkg/config"
	"github.com/goliatone/go-relations/pkg/fields"
	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/relation"
	"github.com/goliatone/go-relations/pkg/render"
	"github.com/goliatone/go-relations/pkg/renderers/bootstrap"
	"github.com/goliatone/go-relations/pkg/store"
	"github.com/goliatone/go-relations/pkg/token"
)

// Handler serves the flows of one relation.
type Handler struct {
	descriptor relation.Descriptor
	config     *config.Registry

	records   record.Store
	meta      store.MetaStore
	relations *store.Relations
	verifier  token.Verifier
	issuer    token.Issuer

	formats *render.Registry
	views   render.Views
	chrome  render.Chrome

	logger      *zap.Logger
	basePath    string
	fullEditURL func(rec record.Record) string
}

// New binds descriptor to its collaborators. A record store and a token
// verifier are required; everything else has a default.
func New(descriptor relation.Descriptor, options ...Option) (*Handler, error) {
	if descriptor.Key() == "" {
		return nil, errors.New("crud: relation descriptor is required")
	}

	h := &Handler{
		descriptor: descriptor,
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}

	if h.records == nil {
		return nil, errors.New("crud: record store is required")
	}
	if h.verifier == nil {
		return nil, errors.New("crud: token verifier is required")
	}
	if h.meta == nil {
		h.meta = store.NewMemory()
	}
	if h.config == nil {
		registry, err := config.NewRegistry(descriptor.Related()...)
		if err != nil {
			return nil, fmt.Errorf("crud: build config registry: %w", err)
		}
		h.config = registry
	}
	if err := h.applyRenderDefaults(); err != nil {
		return nil, err
	}

	h.logger = h.logger.With(zap.String("relation", descriptor.String()))
	h.relations = store.NewRelations(h.meta, store.WithLogger(h.logger))
	return h, nil
}

func (h *Handler) applyRenderDefaults() error {
	if h.formats != nil && h.views != nil && h.chrome != nil {
		return nil
	}

	renderer, err := bootstrap.New()
	if err != nil {
		return fmt.Errorf("crud: build default renderer: %w", err)
	}
	if h.formats == nil {
		h.formats = render.NewRegistry()
		if err := renderer.Register(h.formats); err != nil {
			return fmt.Errorf("crud: register default formatters: %w", err)
		}
	}
	if h.views == nil {
		h.views = renderer
	}
	if h.chrome == nil {
		h.chrome = renderer
	}
	return nil
}

// Descriptor returns the bound relation.
func (h *Handler) Descriptor() relation.Descriptor { return h.descriptor }

// Config returns the configuration registry. Configure it before serving.
func (h *Handler) Config() *config.Registry { return h.config }

// Routes returns the dispatch table of the relation.
func (h *Handler) Routes() []relation.Route { return h.descriptor.Routes() }

// IssueToken mints a token for scope through the configured issuer.
func (h *Handler) IssueToken(ctx context.Context, scope string) (string, error) {
	if h.issuer == nil {
		return "", errors.New("crud: no token issuer configured")
	}
	return h.issuer.Issue(ctx, scope)
}

// URL builds the address of a route under the base path.
func (h *Handler) URL(route string, query url.Values) string {
	target := h.basePath + "/" + route
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target
}

func (h *Handler) editURL(rec record.Record) string {
	return h.URL(h.descriptor.EditRoute(rec.Type), url.Values{"related_id": {rec.ID.String()}})
}

func (h *Handler) fieldsEnv() fields.Env {
	return fields.Env{
		EditURL:   h.editURL,
		TypeLabel: h.config.TypeLabel,
	}
}

func (h *Handler) actionsEnv() actions.Env {
	return actions.Env{
		Env:      h.fieldsEnv(),
		Instance: h.descriptor.InstanceID(),
		Primary:  strings.ToLower(h.config.TypeLabel(h.descriptor.Primary())),
	}
}

func (h *Handler) checkType(typeName string) error {
	if !h.descriptor.Has(typeName) {
		return fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return nil
}

func (h *Handler) verify(ctx context.Context, raw, scope string) error {
	if err := h.verifier.Verify(ctx, raw, scope); err != nil {
		h.logger.Warn("token rejected", zap.String("scope", scope), zap.Error(err))
		return &IntegrityError{Scope: scope, Err: err}
	}
	return nil
}

func storageError(err error) *StorageError {
	var storeErr *record.StorageError
	if errors.As(err, &storeErr) {
		return &StorageError{Messages: append([]string(nil), storeErr.Messages...), Err: err}
	}
	return &StorageError{Messages: record.NormalizeMessages([]string{err.Error()}), Err: err}
}
