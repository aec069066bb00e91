// Package integration provides end-to-end scenario tests driving the
// backend through the same store interfaces the CLI uses.
package integration

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datanorth/gestiondrive/internal/blob"
	"github.com/datanorth/gestiondrive/internal/sqlite"
	"github.com/datanorth/gestiondrive/pkg/types"
)

var owner = types.Principal{ID: "owner", Authenticated: true}

// setupDrive creates a backend attached to an isolated temp directory with
// an in-memory blob store. Each scenario gets its own instance.
func setupDrive(t *testing.T) (*sqlite.Backend, *blob.MemoryStore) {
	t.Helper()
	b := sqlite.NewBackend()
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

// mustColumn creates a column or fails the test.
func mustColumn(t *testing.T, b *sqlite.Backend, docID, label, dataType string) *types.Column {
	t.Helper()
	col, err := b.Columns().Create(owner, docID, &types.Column{Label: label, DataType: dataType})
	require.NoError(t, err)
	return col
}
