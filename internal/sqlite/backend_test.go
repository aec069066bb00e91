// Tests for backend lifecycle and shared test fixtures.
package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datanorth/gestiondrive/internal/blob"
	"github.com/datanorth/gestiondrive/pkg/types"
)

// Test principals shared across the package tests.
var (
	alice = types.Principal{ID: "alice", Authenticated: true}
	bob   = types.Principal{ID: "bob", Authenticated: true}
)

// newTestBackend returns an attached backend over a temp directory with an
// in-memory blob store, detached automatically at cleanup.
func newTestBackend(t *testing.T) (*Backend, *blob.MemoryStore) {
	t.Helper()
	b := NewBackend()
	mem := blob.NewMemoryStore()
	b.SetBlobStore(mem)
	err := b.Attach(types.Config{
		Backend:  types.BackendSQLite,
		DataDir:  t.TempDir(),
		BlobKind: types.BlobMemory,
	})
	require.NoError(t, err)
	t.Cleanup(func() { b.Detach() })
	return b, mem
}

// seedDocument creates a document owned by alice.
func seedDocument(t *testing.T, b *Backend) *types.Document {
	t.Helper()
	doc, err := b.Documents().Create(alice, "inventory")
	require.NoError(t, err)
	return doc
}

// seedColumn creates a column on doc with the given label and data type.
func seedColumn(t *testing.T, b *Backend, docID, label, dataType string) *types.Column {
	t.Helper()
	col, err := b.Columns().Create(alice, docID, &types.Column{Label: label, DataType: dataType})
	require.NoError(t, err)
	return col
}

// seedRow creates a row on doc.
func seedRow(t *testing.T, b *Backend, docID string) *types.Row {
	t.Helper()
	row, err := b.Rows().Create(alice, docID)
	require.NoError(t, err)
	return row
}

func TestBackendAttach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}

	require.NoError(t, b.Attach(config))
	defer b.Detach()

	// Database file created under the data directory.
	_, err := os.Stat(filepath.Join(tmpDir, "drive.db"))
	assert.NoError(t, err, "drive.db not created")

	// Double attach fails.
	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
}

func TestBackendAttachRejectsInvalidConfig(t *testing.T) {
	b := NewBackend()
	err := b.Attach(types.Config{Backend: "postgres"})
	assert.Error(t, err)
}

func TestBackendDetach(t *testing.T) {
	b, _ := newTestBackend(t)

	require.NoError(t, b.Detach())

	// Idempotent.
	assert.NoError(t, b.Detach())

	// Operations fail after detach.
	_, err := b.Documents().List()
	assert.ErrorIs(t, err, types.ErrDetached)
	_, err = b.Documents().Create(alice, "x")
	assert.ErrorIs(t, err, types.ErrDetached)
	_, err = b.Cells().Get("r", "c")
	assert.ErrorIs(t, err, types.ErrDetached)
}

func TestBackendReattachSeesExistingData(t *testing.T) {
	tmpDir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	doc, err := b.Documents().Create(alice, "persistent")
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(config))
	defer b2.Detach()

	got, err := b2.Documents().Get(doc.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "persistent", got.Name)
}
