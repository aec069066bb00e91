// Scenario: full document lifecycle under the permission evaluator, from
// creation through schema edits to deletion.
package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datanorth/gestiondrive/pkg/types"
)

func TestDocumentLifecycleWithPermissions(t *testing.T) {
	b, _ := setupDrive(t)
	collaborator := types.Principal{ID: "collaborator", Authenticated: true}

	doc, err := b.Documents().Create(owner, "shared sheet")
	require.NoError(t, err)

	name := mustColumn(t, b, doc.DocumentID, "name", types.DataTypeText)
	row, err := b.Rows().Create(owner, doc.DocumentID)
	require.NoError(t, err)

	// The default permissions let any authenticated principal write and
	// anyone read, while deletion stays with the owner.
	_, err = b.Cells().Upsert(collaborator, row.RowID, name.ColumnID, "from collaborator")
	require.NoError(t, err)
	cell, err := b.Cells().Get(row.RowID, name.ColumnID)
	require.NoError(t, err)
	assert.Equal(t, "collaborator", cell.UpdatedBy)

	err = b.Documents().Delete(collaborator, doc.DocumentID)
	assert.ErrorIs(t, err, types.ErrPermissionDenied)

	// The owner narrows writing to themselves; the collaborator loses it
	// but keeps reading.
	_, err = b.Documents().SetPermissions(owner, doc.DocumentID, types.Permissions{
		types.ActionRead:   {types.RoleAll},
		types.ActionWrite:  {owner.ID},
		types.ActionDelete: {owner.ID},
	})
	require.NoError(t, err)

	_, err = b.Cells().Upsert(collaborator, row.RowID, name.ColumnID, "rejected")
	assert.ErrorIs(t, err, types.ErrPermissionDenied)
	cell, err = b.Cells().Get(row.RowID, name.ColumnID)
	require.NoError(t, err)
	assert.Equal(t, "from collaborator", *cell.Value.Text, "denied write must change nothing")

	// Anonymous reads pass under the "all" role; anonymous writes never do.
	docs, err := b.Documents().List()
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	_, err = b.Cells().Upsert(types.Anonymous, row.RowID, name.ColumnID, "nope")
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)

	require.NoError(t, b.Documents().Delete(owner, doc.DocumentID))
	_, err = b.Documents().Get(doc.DocumentID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
