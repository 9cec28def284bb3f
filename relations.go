// Package relations wires declarative relation configuration to the crud
// flows, the HTML renderers and the HTTP component. Most callers only need
// Load (or New) and Engine.RegisterRoutes; the pkg/ packages stay available
// for finer control.
package relations

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"go.uber.org/zap"

	relationshttp "github.com/goliatone/go-relations/components/relations"
	"github.com/goliatone/go-relations/pkg/config"
	"github.com/goliatone/go-relations/pkg/crud"
	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/render"
	"github.com/goliatone/go-relations/pkg/renderers/bootstrap"
	"github.com/goliatone/go-relations/pkg/renderers/tui"
	"github.com/goliatone/go-relations/pkg/store"
	"github.com/goliatone/go-relations/pkg/token"
)

// DefaultRoutePath is the path every relation is mounted under, followed by
// its name.
const DefaultRoutePath = "/relations"

// Option customises an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	records   record.Store
	meta      store.MetaStore
	verifier  token.Verifier
	issuer    token.Issuer
	logger    *zap.Logger
	basePath  string
	bootstrap []bootstrap.Option
	crud      []crud.Option
}

// WithRecords sets the record storage shared by every relation.
func WithRecords(records record.Store) Option {
	return func(c *engineConfig) { c.records = records }
}

// WithMetaStore sets the metadata store shared by every relation.
func WithMetaStore(meta store.MetaStore) Option {
	return func(c *engineConfig) { c.meta = meta }
}

// WithSigner uses signer to both verify and issue tokens.
func WithSigner(signer *token.Signer) Option {
	return func(c *engineConfig) {
		c.verifier = signer
		c.issuer = signer
	}
}

// WithVerifier sets a verifier without an issuer.
func WithVerifier(verifier token.Verifier) Option {
	return func(c *engineConfig) { c.verifier = verifier }
}

// WithLogger sets the logger handed to every relation.
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBasePath sets the path RegisterRoutes mounts under.
func WithBasePath(path string) Option {
	return func(c *engineConfig) { c.basePath = path }
}

// WithRendererOptions configures the shared bootstrap renderer.
func WithRendererOptions(opts ...bootstrap.Option) Option {
	return func(c *engineConfig) { c.bootstrap = append(c.bootstrap, opts...) }
}

// WithCrudOptions appends options applied to every crud handler.
func WithCrudOptions(opts ...crud.Option) Option {
	return func(c *engineConfig) { c.crud = append(c.crud, opts...) }
}

// Engine holds one crud handler per configured relation, keyed by the
// relation name ("<prefix>/<primary>_<key>").
type Engine struct {
	handlers map[string]*crud.Handler
	names    []string
	formats  *render.Registry
	basePath string
	logger   *zap.Logger
}

// Load reads every relation file in fsys and builds an Engine.
func Load(fsys fs.FS, opts ...Option) (*Engine, error) {
	rels, err := config.LoadFS(fsys)
	if err != nil {
		return nil, err
	}
	return New(rels, opts...)
}

// New builds an Engine for rels. Record storage and a token verifier are
// required.
func New(rels []config.Relation, opts ...Option) (*Engine, error) {
	cfg := engineConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if len(rels) == 0 {
		return nil, errors.New("relations: no relations configured")
	}
	if cfg.meta == nil {
		cfg.meta = store.NewMemory()
	}

	renderer, err := bootstrap.New(cfg.bootstrap...)
	if err != nil {
		return nil, fmt.Errorf("relations: build renderer: %w", err)
	}
	formats := render.NewRegistry()
	if err := renderer.Register(formats); err != nil {
		return nil, fmt.Errorf("relations: register formatters: %w", err)
	}
	if err := formats.Register(tui.New()); err != nil {
		return nil, fmt.Errorf("relations: register formatters: %w", err)
	}

	engine := &Engine{
		handlers: make(map[string]*crud.Handler, len(rels)),
		formats:  formats,
		basePath: cfg.basePath,
		logger:   cfg.logger,
	}
	for _, rel := range rels {
		name := rel.Descriptor.Name()
		if _, exists := engine.handlers[name]; exists {
			return nil, fmt.Errorf("relations: duplicate relation %q", name)
		}

		options := []crud.Option{
			crud.WithRecords(cfg.records),
			crud.WithMetaStore(cfg.meta),
			crud.WithVerifier(cfg.verifier),
			crud.WithIssuer(cfg.issuer),
			crud.WithLogger(cfg.logger),
			crud.WithConfig(rel.Registry),
			crud.WithFormats(formats),
			crud.WithViews(renderer),
			crud.WithChrome(renderer),
			crud.WithBasePath(relationshttp.MountPath(cfg.basePath, relationshttp.WithRoutePath(routePath(name)))),
		}
		handler, err := crud.New(rel.Descriptor, append(options, cfg.crud...)...)
		if err != nil {
			return nil, fmt.Errorf("relations: relation %q: %w", name, err)
		}
		engine.handlers[name] = handler
		engine.names = append(engine.names, name)
	}
	sort.Strings(engine.names)
	return engine, nil
}

// Handler returns the crud handler of the relation called name.
func (e *Engine) Handler(name string) (*crud.Handler, bool) {
	handler, ok := e.handlers[name]
	return handler, ok
}

// Find resolves ref to a handler. ref is either a relation name or a prefix
// shared by exactly one relation.
func (e *Engine) Find(ref string) (*crud.Handler, error) {
	if handler, ok := e.handlers[ref]; ok {
		return handler, nil
	}
	var matches []string
	for _, name := range e.names {
		if e.handlers[name].Descriptor().Prefix() == ref {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("relations: unknown relation %q (have %v)", ref, e.names)
	case 1:
		return e.handlers[matches[0]], nil
	default:
		return nil, fmt.Errorf("relations: prefix %q is shared by %v", ref, matches)
	}
}

// Names lists the configured relation names in sorted order.
func (e *Engine) Names() []string {
	return append([]string(nil), e.names...)
}

// Formats returns the list formatter registry shared by every relation.
func (e *Engine) Formats() *render.Registry { return e.formats }

// RegisterRoutes mounts every relation on mux under
// <base>/relations/<prefix>/<primary>_<key>/ and returns the registered
// patterns.
func (e *Engine) RegisterRoutes(mux relationshttp.Mux, fns ...relationshttp.OptionFn) ([]string, error) {
	patterns := make([]string, 0, len(e.names))
	for _, name := range e.names {
		options := append([]relationshttp.OptionFn{relationshttp.WithLogger(e.logger)}, fns...)
		options = append(options, relationshttp.WithRoutePath(routePath(name)))
		pattern, err := relationshttp.RegisterRoutes(mux, e.basePath, e.handlers[name], options...)
		if err != nil {
			return nil, err
		}
		e.logger.Info("relation mounted", zap.String("relation", name), zap.String("pattern", pattern))
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

func routePath(name string) string {
	return DefaultRoutePath + "/" + name
}
