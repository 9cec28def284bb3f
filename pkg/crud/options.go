package crud

import (
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-relations/pkg/config"
	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/render"
	"github.com/goliatone/go-relations/pkg/store"
	"github.com/goliatone/go-relations/pkg/token"
)

// Option customises a Handler.
type Option func(*Handler)

// WithRecords sets the record storage collaborator. Required.
func WithRecords(records record.Store) Option {
	return func(h *Handler) {
		h.records = records
	}
}

// WithMetaStore sets the metadata store holding relation lists and meta
// fields. Defaults to an in-memory store.
func WithMetaStore(meta store.MetaStore) Option {
	return func(h *Handler) {
		h.meta = meta
	}
}

// WithVerifier sets the token verifier. Required.
func WithVerifier(verifier token.Verifier) Option {
	return func(h *Handler) {
		h.verifier = verifier
	}
}

// WithIssuer enables nonce fields in rendered edit forms.
func WithIssuer(issuer token.Issuer) Option {
	return func(h *Handler) {
		h.issuer = issuer
	}
}

// WithLogger sets the logger. Defaults to zap.NewNop.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithConfig supplies the configuration registry. Defaults to a registry
// holding the relation's related types with default components.
func WithConfig(registry *config.Registry) Option {
	return func(h *Handler) {
		h.config = registry
	}
}

// WithFormats supplies the named list formatters.
func WithFormats(registry *render.Registry) Option {
	return func(h *Handler) {
		h.formats = registry
	}
}

// WithViews supplies the notice and form renderer.
func WithViews(views render.Views) Option {
	return func(h *Handler) {
		h.views = views
	}
}

// WithChrome supplies the wrapper used for embedded responses.
func WithChrome(chrome render.Chrome) Option {
	return func(h *Handler) {
		h.chrome = chrome
	}
}

// WithBasePath prefixes every generated route URL.
func WithBasePath(path string) Option {
	return func(h *Handler) {
		h.basePath = strings.TrimRight(strings.TrimSpace(path), "/")
	}
}

// WithFullEditURL builds the link of the "Go to full edit page" button.
func WithFullEditURL(fn func(rec record.Record) string) Option {
	return func(h *Handler) {
		h.fullEditURL = fn
	}
}
