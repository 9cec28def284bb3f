// Package template defines the template engine seam the HTML renderers
// depend on. The pongo2-backed implementation lives in gotemplate.
package template
