package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Update/Delete when the target document does not
// exist. Get reports a plain miss as (nil, nil) instead, because callers
// routinely probe for documents that were never created.
var ErrNotFound = errors.New("document not found")

// serverTimestamp is the sentinel type for ServerTimestamp.
type serverTimestamp struct{}

// ServerTimestamp marks a field whose value must be assigned by the store at
// write time. Client clocks are never trusted for creation or fulfillment
// timestamps.
var ServerTimestamp = serverTimestamp{}

// Document is one stored record: an opaque id plus an untyped field map.
type Document struct {
	ID   string
	Data map[string]any
}

// DocumentStore is the abstract contract every backend implements. All
// operations take the caller's context; cancellation propagates to the
// underlying client.
type DocumentStore interface {
	// Query returns all documents in the collection whose field equals the
	// given value.
	Query(ctx context.Context, collection, field string, equals any) ([]Document, error)
	// Get returns the document with the given id, or (nil, nil) when absent.
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Add persists a new document, assigns its id and resolves any
	// ServerTimestamp sentinel values, and returns the id.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	// Update merges the partial field map into an existing document,
	// resolving ServerTimestamp sentinels. Last write wins; there is no
	// concurrency guard.
	Update(ctx context.Context, collection, id string, partial map[string]any) error
	// Delete removes the document with the given id.
	Delete(ctx context.Context, collection, id string) error
}

// ConditionalUpdater is implemented by backends that can guard an update on
// the current value of a single field. Applied reports whether the guard
// matched and the update was written.
type ConditionalUpdater interface {
	UpdateIf(ctx context.Context, collection, id, field string, equals any, partial map[string]any) (applied bool, err error)
}
