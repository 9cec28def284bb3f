// Package forms builds the body of the related-record edit form: the
// configured input fields, externally hooked content, and the form buttons.
//
// Field and button specs are closed variants with a Custom escape hatch, and
// both can be parsed from configuration names:
//
//	post_title          title input
//	input:<name>        single line input bound to a record attribute
//	textarea:<name>     multi line input bound to a record attribute
//	meta:<key>          input posted as meta[<key>] and persisted as metadata
//
//	save                submit button
//	full_edit           link to the full edit page, omitted when unknown
package forms
