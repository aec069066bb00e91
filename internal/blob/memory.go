package blob

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// MemoryStore is an in-memory implementation of Store, safe for concurrent
// use. Useful for tests and for fault injection around the attachment
// store's compensating-delete path.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// FailPut, when set, makes the next Put return an error without
	// storing anything.
	FailPut error
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Put stores the content under path and returns the byte count.
func (s *MemoryStore) Put(path string, r io.Reader) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPut != nil {
		err := s.FailPut
		s.FailPut = nil
		return 0, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("reading blob content: %w", err)
	}
	s.blobs[path] = data
	return int64(len(data)), nil
}

// Open returns a reader over the blob at path.
func (s *MemoryStore) Open(path string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// PublicURL returns a mem:// URL for the blob.
func (s *MemoryStore) PublicURL(path string) string {
	return "mem://" + path
}

// Remove deletes the blob at path. A missing blob is not an error.
func (s *MemoryStore) Remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, path)
	return nil
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
