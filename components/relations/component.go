package relations

import (
	"net/http"

	"github.com/goliatone/go-relations/pkg/crud"
)

// Component bundles a crud handler with its transport options and routing
// helpers.
type Component struct {
	crud *crud.Handler
	opts Options
}

// New constructs a component with default options plus any overrides.
func New(handler *crud.Handler, fns ...OptionFn) *Component {
	return &Component{crud: handler, opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Handler returns the net/http handler of the relation routes.
func (c *Component) Handler() http.Handler {
	if c == nil {
		return HandlerWithOptions(nil, DefaultOptions())
	}
	return HandlerWithOptions(c.crud, c.opts)
}

// RegisterRoutes registers the component handler under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if c == nil {
		return RegisterRoutes(mux, basePath, nil)
	}
	return RegisterRoutesWithOptions(mux, basePath, c.crud, c.opts)
}
