// Package render defines how relation lists and edit forms become HTML.
// List formats are either named formatters held in a Registry or custom
// functions; concrete formatters live under renderers/.
package render
