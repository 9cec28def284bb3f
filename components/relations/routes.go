package relations

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-relations/pkg/crud"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the path the routes are served under. Pass it to
// crud.WithBasePath so generated links point back at the mounted handler.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// RegisterRoutes registers the relation routes under basePath on mux and
// returns the registered subtree pattern.
func RegisterRoutes(mux Mux, basePath string, handler *crud.Handler, fns ...OptionFn) (string, error) {
	opts := NewOptions(fns...)
	return RegisterRoutesWithOptions(mux, basePath, handler, opts)
}

// RegisterRoutesWithOptions registers the routes using a pre-built Options
// value.
func RegisterRoutesWithOptions(mux Mux, basePath string, handler *crud.Handler, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("relations: missing mux")
	}
	if handler == nil {
		return "", fmt.Errorf("relations: missing crud handler")
	}
	opts.mount = mountPath(basePath, opts.RoutePath)
	opts = NewOptions(func(o *Options) { *o = opts })

	pattern := opts.mount + "/"
	mux.Handle(pattern, HandlerWithOptions(handler, opts))
	return pattern, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}
	routePath = strings.TrimRight(routePath, "/")

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
