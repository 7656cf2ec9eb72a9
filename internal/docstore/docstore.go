// Package docstore provides a collection-oriented document store: JSON
// documents addressed by collection and id, with equality, range, and
// array-containment queries over document fields. The postgres
// implementation backs production; the memory implementation backs tests.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a write violates a store constraint.
	ErrConflict = errors.New("document conflict")
)

// Op is a filter comparison operator.
type Op string

const (
	OpEq       Op = "=="
	OpGte      Op = ">="
	OpLte      Op = "<="
	OpContains Op = "array-contains"
)

// Filter narrows a query to documents whose field compares true against
// Value. Field names come from repository code, never from request input.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query describes a filtered, optionally ordered scan of one collection.
// OrderBy names a document field holding an RFC 3339 timestamp.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
}

// Store is the document store contract.
type Store interface {
	// Get returns the document data or ErrNotFound.
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	// Set creates or replaces a document.
	Set(ctx context.Context, collection, id string, doc any) error
	// Update merges fields into an existing document, or returns ErrNotFound.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Query returns the documents matching q.
	Query(ctx context.Context, collection string, q Query) ([]json.RawMessage, error)
}
