// Unit tests for attachment operations: anchor checks, upload ordering,
// and the compensating blob delete on metadata failure.
package sqlite

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datanorth/gestiondrive/pkg/types"
)

// fileCellFixture builds a document with a file column and an anchored cell.
func fileCellFixture(t *testing.T, b *Backend) *types.Cell {
	t.Helper()
	doc := seedDocument(t, b)
	col := seedColumn(t, b, doc.DocumentID, "files", types.DataTypeFile)
	row := seedRow(t, b, doc.DocumentID)
	cell, err := b.Cells().EnsureExists(alice, row.RowID, col.ColumnID)
	require.NoError(t, err)
	return cell
}

func TestAttachmentUploadAndList(t *testing.T) {
	b, mem := newTestBackend(t)
	cell := fileCellFixture(t, b)

	first, err := b.Attachments().Upload(alice, cell.CellID, types.AnchorCell,
		"report.pdf", "application/pdf", strings.NewReader("pdf content"))
	require.NoError(t, err)
	assert.NotEmpty(t, first.AttachmentID)
	assert.Equal(t, int64(11), first.FileSize)
	assert.Equal(t, "alice", first.UploadedBy)

	// A file cell is a list: a second upload coexists with the first.
	second, err := b.Attachments().Upload(alice, cell.CellID, types.AnchorCell,
		"photo.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.NotEqual(t, first.AttachmentID, second.AttachmentID)
	assert.Equal(t, 2, mem.Len())

	atts, err := b.Attachments().List(cell.CellID, types.AnchorCell)
	require.NoError(t, err)
	require.Len(t, atts, 2)
	assert.Equal(t, "report.pdf", atts[0].FileName)
	assert.Equal(t, "photo.png", atts[1].FileName)

	// Blob content round-trips through the store path.
	r, err := b.Blobs().Open(atts[0].FilePath)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	r.Close()
	assert.Equal(t, "pdf content", string(data))
}

func TestAttachmentUploadRejectsBadAnchors(t *testing.T) {
	b, _ := newTestBackend(t)
	doc := seedDocument(t, b)
	textCol := seedColumn(t, b, doc.DocumentID, "name", types.DataTypeText)
	row := seedRow(t, b, doc.DocumentID)
	textCell, err := b.Cells().Upsert(alice, row.RowID, textCol.ColumnID, "v")
	require.NoError(t, err)

	// A text cell cannot anchor attachments.
	_, err = b.Attachments().Upload(alice, textCell.CellID, types.AnchorCell,
		"f.txt", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, types.ErrInvalidAnchor)

	// Unknown anchor kind.
	_, err = b.Attachments().Upload(alice, textCell.CellID, "blob",
		"f.txt", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, types.ErrInvalidAnchor)

	// Missing anchor entity.
	_, err = b.Attachments().Upload(alice, "missing", types.AnchorCell,
		"f.txt", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, types.ErrNotFound)

	// Empty file name.
	cell := fileCellFixture(t, b)
	_, err = b.Attachments().Upload(alice, cell.CellID, types.AnchorCell,
		"", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, types.ErrInvalidName)
}

func TestAttachmentUploadBlobFailureWritesNoMetadata(t *testing.T) {
	b, mem := newTestBackend(t)
	cell := fileCellFixture(t, b)

	mem.FailPut = io.ErrClosedPipe
	_, err := b.Attachments().Upload(alice, cell.CellID, types.AnchorCell,
		"f.txt", "text/plain", strings.NewReader("x"))
	assert.Error(t, err)

	atts, err := b.Attachments().List(cell.CellID, types.AnchorCell)
	require.NoError(t, err)
	assert.Empty(t, atts, "failed blob write must not leave a metadata record")
}

func TestAttachmentUploadMetadataFailureRemovesBlob(t *testing.T) {
	b, mem := newTestBackend(t)
	cell := fileCellFixture(t, b)

	// Force the metadata insert to fail after the blob is stored.
	_, err := b.db.Exec(`DROP TABLE attachments`)
	require.NoError(t, err)

	_, err = b.Attachments().Upload(alice, cell.CellID, types.AnchorCell,
		"f.txt", "text/plain", strings.NewReader("orphan?"))
	assert.Error(t, err)
	assert.Equal(t, 0, mem.Len(), "compensating delete must remove the stored blob")
}

func TestAttachmentDelete(t *testing.T) {
	b, mem := newTestBackend(t)
	cell := fileCellFixture(t, b)

	att, err := b.Attachments().Upload(alice, cell.CellID, types.AnchorCell,
		"f.txt", "text/plain", strings.NewReader("bye"))
	require.NoError(t, err)

	// Only a principal with the delete right may remove attachments.
	err = b.Attachments().Delete(bob, att.AttachmentID)
	assert.ErrorIs(t, err, types.ErrPermissionDenied)

	require.NoError(t, b.Attachments().Delete(alice, att.AttachmentID))
	assert.Equal(t, 0, mem.Len())

	err = b.Attachments().Delete(alice, att.AttachmentID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestAttachmentOnEntryAnchor(t *testing.T) {
	b, _ := newTestBackend(t)
	doc := seedDocument(t, b)
	col := seedColumn(t, b, doc.DocumentID, "items", types.DataTypeMultiline)
	fileSub, err := b.SubColumns().Create(alice, col.ColumnID, &types.SubColumn{Label: "doc", DataType: types.DataTypeFile})
	require.NoError(t, err)
	textSub, err := b.SubColumns().Create(alice, col.ColumnID, &types.SubColumn{Label: "note", DataType: types.DataTypeText})
	require.NoError(t, err)
	row := seedRow(t, b, doc.DocumentID)
	anchor, err := b.Cells().EnsureExists(alice, row.RowID, col.ColumnID)
	require.NoError(t, err)

	fileEntry, err := b.Entries().Upsert(alice, anchor.CellID, fileSub.SubColumnID, 0, nil)
	require.NoError(t, err)
	textEntry, err := b.Entries().Upsert(alice, anchor.CellID, textSub.SubColumnID, 0, "note")
	require.NoError(t, err)

	att, err := b.Attachments().Upload(alice, fileEntry.EntryID, types.AnchorEntry,
		"nested.txt", "text/plain", strings.NewReader("deep"))
	require.NoError(t, err)
	assert.Equal(t, types.AnchorEntry, att.AnchorKind)

	// A non-file entry cannot anchor attachments.
	_, err = b.Attachments().Upload(alice, textEntry.EntryID, types.AnchorEntry,
		"x.txt", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, types.ErrInvalidAnchor)
}
