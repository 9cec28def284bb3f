// Package crud implements the five flows of a relation: browse candidates,
// edit or create a related record, list the records attached to a primary
// record, attach and detach.
//
// A Handler binds one relation descriptor to its configuration registry and
// collaborators. Human facing flows (Browse, Edit, ListAttached) return HTML
// fragments; Attach and Detach return the updated relation list. Rejections
// are reported as *IntegrityError, *ValidationError or *StorageError so
// transports can map them without string matching.
package crud
