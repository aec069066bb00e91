package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupEntries(t *testing.T) {
	qty := 3.0
	label := "x"
	entries := []*MultilineEntry{
		{CellID: "c1", SubColumnID: "sub-label", OrderIndex: 1, Value: TypedValue{Text: &label}},
		{CellID: "c1", SubColumnID: "sub-qty", OrderIndex: 0, Value: TypedValue{Number: &qty}},
	}

	rows := GroupEntries(entries)
	require.Len(t, rows, 2)

	// Rows come back in ascending index order.
	assert.Equal(t, 0, rows[0].Index)
	assert.Equal(t, 1, rows[1].Index)

	// qty is present at index 0 and absent at index 1; the converse for label.
	require.Contains(t, rows[0].Values, "sub-qty")
	assert.Equal(t, qty, *rows[0].Values["sub-qty"].Number)
	assert.NotContains(t, rows[0].Values, "sub-label")

	require.Contains(t, rows[1].Values, "sub-label")
	assert.Equal(t, label, *rows[1].Values["sub-label"].Text)
	assert.NotContains(t, rows[1].Values, "sub-qty")
}

func TestGroupEntriesEmpty(t *testing.T) {
	assert.Empty(t, GroupEntries(nil))
}
