// Package store persists relation lists. A relation list is a JSON array of
// entries kept in one metadata slot per primary record; MetaStore is the
// slot storage and Relations implements the list operations on top of it.
//
// Three MetaStore implementations ship with the package: an in-memory map, a
// bbolt file and a Redis hash per record. All three also implement Mutator,
// which lets Relations apply read-modify-write atomically; with a MetaStore
// that does not, concurrent writers race under last-write-wins.
package store
