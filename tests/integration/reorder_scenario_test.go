// Scenario: reordering columns moves presentation only; stored values
// stay bound to their columns and indices stay dense.
package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datanorth/gestiondrive/pkg/types"
)

func TestColumnReorderKeepsValuesBound(t *testing.T) {
	b, _ := setupDrive(t)

	doc, err := b.Documents().Create(owner, "inventory")
	require.NoError(t, err)

	colA := mustColumn(t, b, doc.DocumentID, "name", types.DataTypeText)
	colB := mustColumn(t, b, doc.DocumentID, "qty", types.DataTypeNumber)
	colC := mustColumn(t, b, doc.DocumentID, "in stock", types.DataTypeBoolean)

	row, err := b.Rows().Create(owner, doc.DocumentID)
	require.NoError(t, err)
	_, err = b.Cells().Upsert(owner, row.RowID, colA.ColumnID, "widget")
	require.NoError(t, err)
	_, err = b.Cells().Upsert(owner, row.RowID, colB.ColumnID, 41)
	require.NoError(t, err)
	_, err = b.Cells().Upsert(owner, row.RowID, colC.ColumnID, true)
	require.NoError(t, err)

	// Move the last column first.
	cols, err := b.Columns().Reorder(owner, doc.DocumentID,
		[]string{colC.ColumnID, colA.ColumnID, colB.ColumnID})
	require.NoError(t, err)

	require.Len(t, cols, 3)
	for i, col := range cols {
		assert.Equal(t, i, col.OrderIndex, "indices must stay dense after reorder")
	}
	assert.Equal(t, colC.ColumnID, cols[0].ColumnID)

	// Each value still reads back under its own column.
	name, err := b.Cells().Get(row.RowID, colA.ColumnID)
	require.NoError(t, err)
	assert.Equal(t, "widget", *name.Value.Text)
	qty, err := b.Cells().Get(row.RowID, colB.ColumnID)
	require.NoError(t, err)
	assert.Equal(t, 41.0, *qty.Value.Number)
	stock, err := b.Cells().Get(row.RowID, colC.ColumnID)
	require.NoError(t, err)
	assert.True(t, *stock.Value.Boolean)

	// A stale permutation is rejected wholesale after a column delete.
	require.NoError(t, b.Columns().Delete(owner, colB.ColumnID))
	_, err = b.Columns().Reorder(owner, doc.DocumentID,
		[]string{colC.ColumnID, colA.ColumnID, colB.ColumnID})
	assert.ErrorIs(t, err, types.ErrOrderingConflict)

	survivors, err := b.Columns().List(doc.DocumentID)
	require.NoError(t, err)
	require.Len(t, survivors, 2)
	assert.Equal(t, 0, survivors[0].OrderIndex)
	assert.Equal(t, 1, survivors[1].OrderIndex)
}
