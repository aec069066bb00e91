// Package blob implements the blob storage transport consumed by the
// attachment store. Two implementations are provided: a filesystem store
// for production use and an in-memory store for tests.
package blob

import (
	"errors"
	"io"
)

// ErrNotFound is returned when no blob exists at the requested path.
var ErrNotFound = errors.New("blob not found")

// Store is the transport contract for attachment content. Put is expected
// to be atomic: a failed write leaves no partial blob behind, so a caller
// that fails after Put can compensate with a single Remove.
type Store interface {
	// Put stores the content under path and returns the number of bytes
	// written. Storing over an existing path replaces it.
	Put(path string, r io.Reader) (int64, error)

	// Open returns a reader over the blob at path.
	// Returns ErrNotFound if no blob exists there.
	Open(path string) (io.ReadCloser, error)

	// PublicURL returns a URL under which the blob can be served.
	PublicURL(path string) string

	// Remove deletes the blob at path. Removing a missing blob is not an
	// error; Remove doubles as the compensating cleanup after a failed
	// metadata write.
	Remove(path string) error
}
