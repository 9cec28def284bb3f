// Package bootstrap renders relation lists, notices, edit forms and the
// dialog chrome as Bootstrap 3 markup through embedded pongo2 templates.
package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-relations/pkg/render"
	rendertemplate "github.com/goliatone/go-relations/pkg/render/template"
	"github.com/goliatone/go-relations/pkg/render/template/gotemplate"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	theme            *theme.RendererConfig
	classes          map[Class]string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTheme applies a go-theme renderer configuration. Tokens prefixed with
// ThemeTokenPrefix override element classes and CSS variables are emitted on
// the dialog wrapper.
func WithTheme(selection *theme.RendererConfig) Option {
	return func(cfg *config) {
		cfg.theme = selection
	}
}

// WithClass overrides the classes of a single element. It wins over theme
// tokens.
func WithClass(key Class, classes string) Option {
	return func(cfg *config) {
		if cfg.classes == nil {
			cfg.classes = make(map[Class]string)
		}
		cfg.classes[key] = classes
	}
}

// Renderer renders every HTML surface of the relation flows.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	classes   map[string]any
	cssVars   map[string]string
	themeName string
}

var (
	_ render.Views  = (*Renderer)(nil)
	_ render.Chrome = (*Renderer)(nil)
)

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("bootstrap renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	classes := DefaultClasses()
	for key, value := range themeClasses(cfg.theme) {
		classes[key] = value
	}
	for key, value := range cfg.classes {
		classes[key] = value
	}

	out := &Renderer{
		templates: renderer,
		classes:   classContext(classes),
	}
	if cfg.theme != nil {
		out.cssVars = cfg.theme.CSSVars
		out.themeName = cfg.theme.Theme
	}
	return out, nil
}

// Formatters returns the named list formatters backed by this renderer.
func (r *Renderer) Formatters() []render.Formatter {
	return []render.Formatter{
		tableFormatter{renderer: r},
		listGroupFormatter{renderer: r},
	}
}

// Register adds the list formatters to registry.
func (r *Renderer) Register(registry *render.Registry) error {
	for _, formatter := range r.Formatters() {
		if err := registry.Register(formatter); err != nil {
			return err
		}
	}
	return nil
}

// Notice renders an alert box.
func (r *Renderer) Notice(_ context.Context, notice render.Notice) (string, error) {
	level := notice.Level
	if level == "" {
		level = render.NoticeInfo
	}
	return r.execute("notice", map[string]any{
		"level":   string(level),
		"message": notice.Message,
	})
}

// Form renders the related record edit form.
func (r *Renderer) Form(_ context.Context, form render.FormView) (string, error) {
	hidden := make([]map[string]any, 0, len(form.Hidden))
	for _, field := range form.Hidden {
		hidden = append(hidden, map[string]any{"name": field.Name, "value": field.Value})
	}
	return r.execute("form", map[string]any{
		"heading":  form.Heading,
		"action":   form.Action,
		"instance": form.Instance,
		"hidden":   hidden,
		"fields":   form.Fields,
		"hooks":    form.Hooks,
		"buttons":  form.Buttons,
	})
}

// Wrap renders the embedded dialog page around body.
func (r *Renderer) Wrap(_ context.Context, title, body string) (string, error) {
	return r.execute("dialog", map[string]any{
		"title":    title,
		"body":     body,
		"theme":    r.themeName,
		"css_vars": cssVarsStyle(r.cssVars),
	})
}

func (r *Renderer) execute(name string, data map[string]any) (string, error) {
	if r == nil || r.templates == nil {
		return "", fmt.Errorf("bootstrap renderer: template renderer is nil")
	}
	data["classes"] = r.classes
	out, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return "", fmt.Errorf("bootstrap renderer: render %s: %w", name, err)
	}
	return out, nil
}
