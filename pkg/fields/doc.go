// Package fields turns a related record and an ordered list of field specs
// into a label/value row. A Spec is either a literal attribute, one of the
// built-in directives (permalink with excerpt, thumbnail, edit link, count,
// yes/no) or a caller supplied resolver. Format never fails: missing data
// renders as an empty value.
package fields
