// Package record defines the related/primary record model shared by the
// relation engine and the storage contract it consumes. The engine never
// persists records itself: create, read and update go through Store, which
// hosts back with their own storage engine. NewMemory provides a map-backed
// Store for tests and the demo binaries.
package record
