// Unit tests for sub-column operations: nesting rules, ordering, and
// retype/delete cascades one level down.
package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datanorth/gestiondrive/pkg/types"
)

func TestSubColumnCreate(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, b *Backend, docID, multiColID string)
	}{
		{
			name: "create appends with dense order indices",
			check: func(t *testing.T, b *Backend, docID, multiColID string) {
				a, err := b.SubColumns().Create(alice, multiColID, &types.SubColumn{Label: "qty", DataType: types.DataTypeNumber})
				require.NoError(t, err)
				c, err := b.SubColumns().Create(alice, multiColID, &types.SubColumn{Label: "label", DataType: types.DataTypeText})
				require.NoError(t, err)
				assert.Equal(t, 0, a.OrderIndex)
				assert.Equal(t, 1, c.OrderIndex)
			},
		},
		{
			name: "create rejects multiline sub-columns",
			check: func(t *testing.T, b *Backend, docID, multiColID string) {
				_, err := b.SubColumns().Create(alice, multiColID, &types.SubColumn{Label: "deeper", DataType: types.DataTypeMultiline})
				assert.ErrorIs(t, err, types.ErrNestedMultiline)
			},
		},
		{
			name: "create rejects a non-multiline parent",
			check: func(t *testing.T, b *Backend, docID, multiColID string) {
				textCol := seedColumn(t, b, docID, "plain", types.DataTypeText)
				_, err := b.SubColumns().Create(alice, textCol.ColumnID, &types.SubColumn{Label: "x", DataType: types.DataTypeText})
				assert.ErrorIs(t, err, types.ErrNotMultiline)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestBackend(t)
			doc := seedDocument(t, b)
			col := seedColumn(t, b, doc.DocumentID, "items", types.DataTypeMultiline)
			tt.check(t, b, doc.DocumentID, col.ColumnID)
		})
	}
}

func TestSubColumnReorderAndDelete(t *testing.T) {
	b, _ := newTestBackend(t)
	fx := newMultilineFixture(t, b)

	subs, err := b.SubColumns().Reorder(alice, fx.col.ColumnID,
		[]string{fx.label.SubColumnID, fx.qty.SubColumnID})
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, fx.label.SubColumnID, subs[0].SubColumnID)
	assert.Equal(t, 0, subs[0].OrderIndex)

	_, err = b.SubColumns().Reorder(alice, fx.col.ColumnID, []string{fx.qty.SubColumnID})
	assert.ErrorIs(t, err, types.ErrOrderingConflict)

	// Delete removes the sub-column's entries and renumbers the survivor.
	_, err = b.Entries().Upsert(alice, fx.anchor.CellID, fx.label.SubColumnID, 0, "gone")
	require.NoError(t, err)
	require.NoError(t, b.SubColumns().Delete(alice, fx.label.SubColumnID))

	remaining, err := b.SubColumns().List(fx.col.ColumnID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, fx.qty.SubColumnID, remaining[0].SubColumnID)
	assert.Equal(t, 0, remaining[0].OrderIndex)

	entries, err := b.Entries().ListByCell(fx.anchor.CellID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSubColumnRetypeClearsEntryValues(t *testing.T) {
	b, _ := newTestBackend(t)
	fx := newMultilineFixture(t, b)

	_, err := b.Entries().Upsert(alice, fx.anchor.CellID, fx.qty.SubColumnID, 0, 7)
	require.NoError(t, err)

	newType := types.DataTypeText
	updated, err := b.SubColumns().Update(alice, fx.qty.SubColumnID, types.SubColumnPatch{DataType: &newType})
	require.NoError(t, err)
	assert.Equal(t, types.DataTypeText, updated.DataType)

	entries, err := b.Entries().ListByCell(fx.anchor.CellID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, types.DataTypeText, entries[0].ValueType)
	assert.True(t, entries[0].Value.IsEmpty())
}

func TestSubColumnUpdateRejectsMultiline(t *testing.T) {
	b, _ := newTestBackend(t)
	fx := newMultilineFixture(t, b)

	newType := types.DataTypeMultiline
	_, err := b.SubColumns().Update(alice, fx.qty.SubColumnID, types.SubColumnPatch{DataType: &newType})
	assert.ErrorIs(t, err, types.ErrNestedMultiline)
}
