package relations

import (
	"net/http"

	"go.uber.org/zap"
)

const (
	defaultRoutePath    = "/relations"
	defaultPrimaryParam = "post_id"
	defaultTokenParam   = "nonce"
	defaultMaxBodyBytes = 1 << 20
)

// GuardFunc runs before every route. A non-nil error rejects the request;
// errors implementing HTTPError choose the status code.
type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath    string
	PrimaryParam string
	TokenParam   string
	MaxBodyBytes int64
	Guard        GuardFunc
	Logger       *zap.Logger

	// DisableOpenAPI stops serving <mount>/openapi.json.
	DisableOpenAPI bool

	mount string
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:    defaultRoutePath,
		PrimaryParam: defaultPrimaryParam,
		TokenParam:   defaultTokenParam,
		MaxBodyBytes: defaultMaxBodyBytes,
		Logger:       zap.NewNop(),
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = defaultRoutePath
	}
	if opts.PrimaryParam == "" {
		opts.PrimaryParam = defaultPrimaryParam
	}
	if opts.TokenParam == "" {
		opts.TokenParam = defaultTokenParam
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.mount == "" {
		opts.mount = mountPath("", opts.RoutePath)
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithPrimaryParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.PrimaryParam = name
	}
}

func WithTokenParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.TokenParam = name
	}
}

func WithMaxBodyBytes(limit int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = limit
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithoutOpenAPI() OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DisableOpenAPI = true
	}
}
