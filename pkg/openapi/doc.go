// Package openapi describes the HTTP surface of a relation as an OpenAPI 3
// document built with kin-openapi. The description mirrors the routes mounted
// by components/relations: browse, edit (form and submission), list
// attached, attach and detach.
package openapi
