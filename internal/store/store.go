// Package store defines the document-store contract the domain services are
// written against. Backends provide point lookups, equality-filtered queries,
// insert-with-generated-id, partial updates and deletes over named
// collections, plus a check-and-set update keyed on a per-document version.
package store

import (
	"context"
	"errors"
)

// Collection names used across the system.
const (
	CollectionFields      = "fields"
	CollectionUsers       = "users"
	CollectionStock       = "stock"
	CollectionFumigations = "fumigations"
	CollectionWarehouses  = "warehouses"
	CollectionAuditLogs   = "audit_logs"
)

var (
	// ErrNoDocument is returned when the requested document id does not resolve.
	ErrNoDocument = errors.New("document not found")
	// ErrConflict is returned by UpdateVersioned when the document's current
	// version no longer matches the version the caller read.
	ErrConflict = errors.New("document version conflict")
)

// Filter is a single equality condition on a document field. Multiple filters
// are combined conjunctively.
type Filter struct {
	Field string
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Store is the contract consumed by every domain service. Documents decode
// into caller-provided structs through their bson tags.
type Store interface {
	// Get loads the document with the given id into out. Returns ErrNoDocument
	// when the id does not resolve.
	Get(ctx context.Context, collection, id string, out any) error

	// Query loads every document matching all filters into out, which must be
	// a pointer to a slice. An empty filter list matches the whole collection.
	Query(ctx context.Context, collection string, filters []Filter, out any) error

	// Insert stores a new document with an initial version of 1 and returns
	// its id. A document that carries its own non-empty _id keeps it;
	// otherwise the backend assigns a generated id.
	Insert(ctx context.Context, collection string, doc any) (string, error)

	// Update applies a partial update to the document and increments its
	// version. Returns ErrNoDocument when the id does not resolve.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// UpdateVersioned behaves like Update but only applies when the stored
	// version equals the supplied one, returning ErrConflict otherwise.
	UpdateVersioned(ctx context.Context, collection, id string, version int64, fields map[string]any) error

	// Delete removes the document permanently. Returns ErrNoDocument when the
	// id does not resolve.
	Delete(ctx context.Context, collection, id string) error
}
