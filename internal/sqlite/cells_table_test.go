// Unit tests for cell operations: lazy creation, codec enforcement, slot
// hygiene, and idempotent anchors.
package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datanorth/gestiondrive/pkg/types"
)

func TestCellGetMissingIsNil(t *testing.T) {
	b, _ := newTestBackend(t)
	doc := seedDocument(t, b)
	col := seedColumn(t, b, doc.DocumentID, "name", types.DataTypeText)
	row := seedRow(t, b, doc.DocumentID)

	// An untouched pair has no cell; that is an empty value, not an error.
	cell, err := b.Cells().Get(row.RowID, col.ColumnID)
	require.NoError(t, err)
	assert.Nil(t, cell)
}

func TestCellUpsert(t *testing.T) {
	tests := []struct {
		name     string
		dataType string
		options  []string
		raw      any
		check    func(t *testing.T, cell *types.Cell)
		wantErr  error
	}{
		{
			name:     "text value lands in the text slot",
			dataType: types.DataTypeText,
			raw:      "widget",
			check: func(t *testing.T, cell *types.Cell) {
				require.NotNil(t, cell.Value.Text)
				assert.Equal(t, "widget", *cell.Value.Text)
				assert.Nil(t, cell.Value.Number)
			},
		},
		{
			name:     "number accepts numeric strings",
			dataType: types.DataTypeNumber,
			raw:      "42.5",
			check: func(t *testing.T, cell *types.Cell) {
				require.NotNil(t, cell.Value.Number)
				assert.Equal(t, 42.5, *cell.Value.Number)
			},
		},
		{
			name:     "date normalizes to UTC",
			dataType: types.DataTypeDate,
			raw:      "2026-03-14",
			check: func(t *testing.T, cell *types.Cell) {
				require.NotNil(t, cell.Value.Date)
				assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), *cell.Value.Date)
			},
		},
		{
			name:     "boolean coerces truthy strings",
			dataType: types.DataTypeBoolean,
			raw:      "yes",
			check: func(t *testing.T, cell *types.Cell) {
				require.NotNil(t, cell.Value.Boolean)
				assert.True(t, *cell.Value.Boolean)
			},
		},
		{
			name:     "select accepts a configured option",
			dataType: types.DataTypeSelect,
			options:  []string{"open", "closed"},
			raw:      "open",
			check: func(t *testing.T, cell *types.Cell) {
				require.NotNil(t, cell.Value.Text)
				assert.Equal(t, "open", *cell.Value.Text)
			},
		},
		{
			name:     "select rejects a value outside the options",
			dataType: types.DataTypeSelect,
			options:  []string{"open", "closed"},
			raw:      "pending",
			wantErr:  types.ErrValidation,
		},
		{
			name:     "number rejects unparseable input",
			dataType: types.DataTypeNumber,
			raw:      "lots",
			wantErr:  types.ErrValidation,
		},
		{
			name:     "multiline columns carry no direct value",
			dataType: types.DataTypeMultiline,
			raw:      "text",
			wantErr:  types.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestBackend(t)
			doc := seedDocument(t, b)
			col, err := b.Columns().Create(alice, doc.DocumentID, &types.Column{
				Label:    "field",
				DataType: tt.dataType,
				Config:   types.ColumnConfig{Options: tt.options},
			})
			require.NoError(t, err)
			row := seedRow(t, b, doc.DocumentID)

			cell, err := b.Cells().Upsert(alice, row.RowID, col.ColumnID, tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dataType, cell.ValueType)
			assert.Equal(t, "alice", cell.CreatedBy)
			tt.check(t, cell)
		})
	}
}

func TestCellUpsertReplacesInPlace(t *testing.T) {
	b, _ := newTestBackend(t)
	doc := seedDocument(t, b)
	col := seedColumn(t, b, doc.DocumentID, "name", types.DataTypeText)
	row := seedRow(t, b, doc.DocumentID)

	first, err := b.Cells().Upsert(alice, row.RowID, col.ColumnID, "one")
	require.NoError(t, err)
	second, err := b.Cells().Upsert(bob, row.RowID, col.ColumnID, "two")
	require.NoError(t, err)

	// Same cell record: last write wins, authorship stamps track both.
	assert.Equal(t, first.CellID, second.CellID)
	assert.Equal(t, "two", *second.Value.Text)
	assert.Equal(t, "alice", second.CreatedBy)
	assert.Equal(t, "bob", second.UpdatedBy)
}

func TestCellUpsertEmptyClearsSlots(t *testing.T) {
	b, _ := newTestBackend(t)
	doc := seedDocument(t, b)
	col := seedColumn(t, b, doc.DocumentID, "qty", types.DataTypeNumber)
	row := seedRow(t, b, doc.DocumentID)

	_, err := b.Cells().Upsert(alice, row.RowID, col.ColumnID, 7)
	require.NoError(t, err)
	cleared, err := b.Cells().Upsert(alice, row.RowID, col.ColumnID, nil)
	require.NoError(t, err)
	assert.True(t, cleared.Value.IsEmpty())
}

func TestCellUpsertRejectsForeignColumn(t *testing.T) {
	b, _ := newTestBackend(t)
	doc := seedDocument(t, b)
	other, err := b.Documents().Create(alice, "other")
	require.NoError(t, err)
	foreignCol := seedColumn(t, b, other.DocumentID, "name", types.DataTypeText)
	row := seedRow(t, b, doc.DocumentID)

	_, err = b.Cells().Upsert(alice, row.RowID, foreignCol.ColumnID, "x")
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestCellEnsureExistsIsIdempotent(t *testing.T) {
	b, _ := newTestBackend(t)
	doc := seedDocument(t, b)
	col := seedColumn(t, b, doc.DocumentID, "items", types.DataTypeMultiline)
	row := seedRow(t, b, doc.DocumentID)

	first, err := b.Cells().EnsureExists(alice, row.RowID, col.ColumnID)
	require.NoError(t, err)
	assert.Equal(t, types.DataTypeMultiline, first.ValueType)
	assert.True(t, first.Value.IsEmpty())

	second, err := b.Cells().EnsureExists(alice, row.RowID, col.ColumnID)
	require.NoError(t, err)
	assert.Equal(t, first.CellID, second.CellID, "a second ensure must not create another cell")
}

func TestCellWriteRequiresAuthentication(t *testing.T) {
	b, _ := newTestBackend(t)
	doc := seedDocument(t, b)
	col := seedColumn(t, b, doc.DocumentID, "name", types.DataTypeText)
	row := seedRow(t, b, doc.DocumentID)

	_, err := b.Cells().Upsert(types.Anonymous, row.RowID, col.ColumnID, "x")
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)
	_, err = b.Cells().EnsureExists(types.Anonymous, row.RowID, col.ColumnID)
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)
}
