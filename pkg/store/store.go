// Package store provides persistence for documents between operations.
//
// The server keeps documents in a Store so that trigger messages
// (pack/unpack) can address them by ID across requests. Backends:
//   - file: JSON files in a directory, for single-instance and CLI use
//   - redis: Redis-backed storage for multi-instance deployments
//   - mongo: MongoDB-backed storage where documents are queried as bson
//
// All backends serialize through [docio], so a document read back from
// any store is structurally identical to the one written.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/pagepack/pagepack/pkg/doc"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned by Get when no document has the given ID.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidID is returned when a document ID is empty or contains
	// characters that are unsafe for the backend (path separators, null
	// bytes).
	ErrInvalidID = errors.New("invalid document ID")
)

// Store is the interface for document storage backends.
// Implementations are safe for concurrent use.
type Store interface {
	// Get retrieves a document by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*doc.Document, error)

	// Put stores a document under the given ID, replacing any previous
	// version.
	Put(ctx context.Context, id string, d *doc.Document) error

	// Delete removes a document. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored documents.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// ValidateID checks that id is usable as a storage key across all
// backends.
func ValidateID(id string) error {
	if id == "" || len(id) > 128 {
		return ErrInvalidID
	}
	if strings.ContainsAny(id, "/\\\x00") || strings.Contains(id, "..") {
		return ErrInvalidID
	}
	return nil
}
