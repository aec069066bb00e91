// Scenario: attachment upload pairs blob content with metadata; a failure
// on either side leaves no half-written state behind.
package integration

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datanorth/gestiondrive/pkg/types"
)

func TestAttachmentLifecycle(t *testing.T) {
	b, mem := setupDrive(t)

	doc, err := b.Documents().Create(owner, "contracts")
	require.NoError(t, err)
	files := mustColumn(t, b, doc.DocumentID, "signed copy", types.DataTypeFile)
	row, err := b.Rows().Create(owner, doc.DocumentID)
	require.NoError(t, err)
	cell, err := b.Cells().EnsureExists(owner, row.RowID, files.ColumnID)
	require.NoError(t, err)

	att, err := b.Attachments().Upload(owner, cell.CellID, types.AnchorCell,
		"contract.pdf", "application/pdf", strings.NewReader("signed content"))
	require.NoError(t, err)
	assert.Equal(t, int64(14), att.FileSize)
	assert.Equal(t, 1, mem.Len())

	// Content reads back through the recorded path.
	r, err := b.Blobs().Open(att.FilePath)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	r.Close()
	assert.Equal(t, "signed content", string(data))

	// A failed blob write leaves no metadata record behind.
	mem.FailPut = errors.New("disk full")
	_, err = b.Attachments().Upload(owner, cell.CellID, types.AnchorCell,
		"second.pdf", "application/pdf", strings.NewReader("x"))
	assert.Error(t, err)
	atts, err := b.Attachments().List(cell.CellID, types.AnchorCell)
	require.NoError(t, err)
	assert.Len(t, atts, 1, "the failed upload must not be recorded")

	// Deleting the row takes the attachment metadata and blob with it.
	require.NoError(t, b.Rows().Delete(owner, row.RowID))
	assert.Equal(t, 0, mem.Len(), "no orphaned blob may survive the cascade")
}
