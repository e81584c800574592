// Package vectorstore defines the similarity index contract used by the
// retrieval engine, independent of the backing store.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
)

// Field names a per-result output a caller can ask the store for.
type Field string

const (
	FieldIDs        Field = "ids"
	FieldMetadatas  Field = "metadatas"
	FieldDistances  Field = "distances"
	FieldDocuments  Field = "documents"
	FieldEmbeddings Field = "embeddings"
)

var (
	// DefaultFields is what retrieval asks for first.
	DefaultFields = []Field{FieldIDs, FieldMetadatas, FieldDistances}
	// SafeFields is accepted by every backend.
	SafeFields = []Field{FieldMetadatas, FieldDistances}
)

var ErrUnsupportedField = errors.New("vectorstore: unsupported result field")

// UnsupportedFieldError wraps ErrUnsupportedField with the rejected field.
func UnsupportedFieldError(f Field) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedField, f)
}

// Predicate is a metadata filter. Backends translate it into their own
// query language.
type Predicate interface {
	isPredicate()
}

// Exact matches a metadata field equal to Value, ignoring case.
type Exact struct {
	Field string
	Value string
}

// Contains matches a metadata field holding Value as a list element or
// substring, ignoring case. '_', '-' and ' ' are treated as the same
// separator on both sides.
type Contains struct {
	Field string
	Value string
}

// And matches when every clause matches. An empty And matches everything.
type And []Predicate

// Or matches when any clause matches. An empty Or matches nothing.
type Or []Predicate

func (Exact) isPredicate()    {}
func (Contains) isPredicate() {}
func (And) isPredicate()      {}
func (Or) isPredicate()       {}

// QueryRequest asks for the TopK nearest neighbours of each embedding.
type QueryRequest struct {
	Embeddings [][]float32
	TopK       int
	Where      Predicate
	Include    []Field
}

// QueryResult holds one batch per query embedding. Only the requested
// fields are populated.
type QueryResult struct {
	IDs        [][]string
	Metadatas  [][]map[string]any
	Distances  [][]float64
	Documents  [][]string
	Embeddings [][][]float32
}

// Record is one indexed catalog entry.
type Record struct {
	ID        string
	Embedding []float32
	Metadata  map[string]any
	Document  string
}

type Store interface {
	Query(ctx context.Context, req QueryRequest) (*QueryResult, error)
	Upsert(ctx context.Context, records []Record) error
	Delete(ctx context.Context, ids ...string) error
}

// Includes reports whether f is among fields.
func Includes(fields []Field, f Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}
