// Column store: runtime-defined columns with dense ordering, partial
// updates including data type changes, and cascading delete.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/datanorth/gestiondrive/pkg/types"
)

var _ types.ColumnStore = (*columnsStore)(nil)

// defaultColumnWidth is applied when a column is created without an
// explicit width.
const defaultColumnWidth = 150

type columnsStore struct {
	backend *Backend
}

// Create appends a new column at the end of the document's column order.
func (s *columnsStore) Create(p types.Principal, documentID string, col *types.Column) (*types.Column, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	if col == nil || col.Label == "" {
		return nil, types.ErrInvalidName
	}
	if !types.IsValidDataType(col.DataType) {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidDataType, col.DataType)
	}
	if err := b.authorize(types.ActionWrite, p, documentID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := &types.Column{
		ColumnID:    newUUID(),
		DocumentID:  documentID,
		Label:       col.Label,
		DataType:    col.DataType,
		Width:       col.Width,
		BgColor:     col.BgColor,
		TextColor:   col.TextColor,
		Config:      col.Config,
		Permissions: col.Permissions.Clone(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if created.Width <= 0 {
		created.Width = defaultColumnWidth
	}
	if created.Permissions == nil {
		created.Permissions = types.Permissions{}
	}

	configJSON, err := marshalConfig(created.Config)
	if err != nil {
		return nil, err
	}
	permsJSON, err := marshalPermissions(created.Permissions)
	if err != nil {
		return nil, err
	}

	err = b.withTx(func(tx *sql.Tx) error {
		// New columns always go to the end: order index equals the count.
		if err := tx.QueryRow(`SELECT COUNT(*) FROM columns WHERE document_id = ?`, documentID).
			Scan(&created.OrderIndex); err != nil {
			return fmt.Errorf("counting columns: %w", err)
		}
		_, err := tx.Exec(`
			INSERT INTO columns (column_id, document_id, label, data_type, order_index,
			                     width, bg_color, text_color, config_json, permissions_json,
			                     created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			created.ColumnID, created.DocumentID, created.Label, created.DataType,
			created.OrderIndex, created.Width, created.BgColor, created.TextColor,
			configJSON, permsJSON, formatTime(created.CreatedAt), formatTime(created.UpdatedAt))
		if err != nil {
			return fmt.Errorf("inserting column: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.log.Debug().Str("column_id", created.ColumnID).Str("data_type", created.DataType).
		Int("order_index", created.OrderIndex).Msg("column created")
	return created, nil
}

// Get retrieves a column by ID.
func (s *columnsStore) Get(columnID string) (*types.Column, error) {
	b := s.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	return b.getColumn(columnID)
}

// getColumn loads a column; the caller must hold b.mu.
func (b *Backend) getColumn(columnID string) (*types.Column, error) {
	if columnID == "" {
		return nil, types.ErrInvalidID
	}
	row := b.db.QueryRow(`
		SELECT column_id, document_id, label, data_type, order_index, width,
		       bg_color, text_color, config_json, permissions_json, created_at, updated_at
		FROM columns WHERE column_id = ?`, columnID)
	col, err := scanColumn(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: column %s", types.ErrNotFound, columnID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting column %s: %w", columnID, err)
	}
	return col, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanColumn(r rowScanner) (*types.Column, error) {
	var col types.Column
	var configJSON, permsJSON, createdAt, updatedAt string
	err := r.Scan(&col.ColumnID, &col.DocumentID, &col.Label, &col.DataType,
		&col.OrderIndex, &col.Width, &col.BgColor, &col.TextColor,
		&configJSON, &permsJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	col.Config, err = unmarshalConfig(configJSON)
	if err != nil {
		return nil, err
	}
	col.Permissions, err = unmarshalPermissions(permsJSON)
	if err != nil {
		return nil, err
	}
	col.CreatedAt = parseTime(createdAt)
	col.UpdatedAt = parseTime(updatedAt)
	return &col, nil
}

// List returns the document's columns in display order.
func (s *columnsStore) List(documentID string) ([]*types.Column, error) {
	b := s.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	if _, err := b.getDocument(documentID); err != nil {
		return nil, err
	}
	return b.listColumns(documentID)
}

// listColumns loads the document's columns in order; the caller must hold b.mu.
func (b *Backend) listColumns(documentID string) ([]*types.Column, error) {
	rows, err := b.db.Query(`
		SELECT column_id, document_id, label, data_type, order_index, width,
		       bg_color, text_color, config_json, permissions_json, created_at, updated_at
		FROM columns WHERE document_id = ? ORDER BY order_index`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing columns: %w", err)
	}
	defer rows.Close()

	cols := []*types.Column{}
	for rows.Next() {
		col, err := scanColumn(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// Update applies a partial update. Changing the data type clears every
// typed value already stored in the column's cells and removes children
// that only make sense under the previous type: sub-columns and nested
// entries when leaving multiline, attachments when leaving file.
func (s *columnsStore) Update(p types.Principal, columnID string, patch types.ColumnPatch) (*types.Column, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	col, err := b.getColumn(columnID)
	if err != nil {
		return nil, err
	}
	if err := b.authorize(types.ActionWrite, p, col.DocumentID); err != nil {
		return nil, err
	}

	if patch.Label != nil {
		if *patch.Label == "" {
			return nil, types.ErrInvalidName
		}
		col.Label = *patch.Label
	}
	if patch.BgColor != nil {
		col.BgColor = *patch.BgColor
	}
	if patch.TextColor != nil {
		col.TextColor = *patch.TextColor
	}
	if patch.Config != nil {
		col.Config = *patch.Config
	}
	if patch.Permissions != nil {
		col.Permissions = patch.Permissions.Clone()
	}

	retype := patch.DataType != nil && *patch.DataType != col.DataType
	previousType := col.DataType
	if retype {
		if !types.IsValidDataType(*patch.DataType) {
			return nil, fmt.Errorf("%w: %q", types.ErrInvalidDataType, *patch.DataType)
		}
		col.DataType = *patch.DataType
	}
	col.UpdatedAt = time.Now().UTC()

	configJSON, err := marshalConfig(col.Config)
	if err != nil {
		return nil, err
	}
	permsJSON, err := marshalPermissions(col.Permissions)
	if err != nil {
		return nil, err
	}

	var blobPaths []string
	err = b.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			UPDATE columns SET label = ?, data_type = ?, bg_color = ?, text_color = ?,
			       config_json = ?, permissions_json = ?, updated_at = ?
			WHERE column_id = ?`,
			col.Label, col.DataType, col.BgColor, col.TextColor,
			configJSON, permsJSON, formatTime(col.UpdatedAt), columnID)
		if err != nil {
			return fmt.Errorf("updating column %s: %w", columnID, err)
		}
		if !retype {
			return nil
		}

		// Old values are meaningless under the new type: null every slot
		// and retag the cells.
		_, err = tx.Exec(`
			UPDATE cells SET value_type = ?, text_value = NULL, number_value = NULL,
			       date_value = NULL, boolean_value = NULL, updated_at = ?
			WHERE column_id = ?`,
			col.DataType, formatTime(col.UpdatedAt), columnID)
		if err != nil {
			return fmt.Errorf("clearing cell values for column %s: %w", columnID, err)
		}

		const colCells = `SELECT cell_id FROM cells WHERE column_id = ?`
		switch previousType {
		case types.DataTypeMultiline:
			blobPaths, err = gatherPaths(tx, `
				SELECT file_path FROM attachments
				WHERE anchor_kind = 'entry' AND anchor_id IN (
					SELECT entry_id FROM multiline_entries WHERE cell_id IN (`+colCells+`))`, columnID)
			if err != nil {
				return err
			}
			cascades := []string{
				`DELETE FROM attachments WHERE anchor_kind = 'entry' AND anchor_id IN (
					SELECT entry_id FROM multiline_entries WHERE cell_id IN (` + colCells + `))`,
				`DELETE FROM multiline_entries WHERE cell_id IN (` + colCells + `)`,
				`DELETE FROM sub_columns WHERE column_id = ?`,
			}
			for _, stmt := range cascades {
				if _, err := tx.Exec(stmt, columnID); err != nil {
					return fmt.Errorf("cascading multiline retype: %w", err)
				}
			}
		case types.DataTypeFile:
			blobPaths, err = gatherPaths(tx, `
				SELECT file_path FROM attachments
				WHERE anchor_kind = 'cell' AND anchor_id IN (`+colCells+`)`, columnID)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`DELETE FROM attachments WHERE anchor_kind = 'cell' AND anchor_id IN (`+colCells+`)`, columnID)
			if err != nil {
				return fmt.Errorf("cascading file retype: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.removeBlobs(blobPaths)
	if retype {
		b.log.Debug().Str("column_id", columnID).Str("from", previousType).
			Str("to", col.DataType).Msg("column retyped")
	}
	return col, nil
}

// Resize updates only the display width.
func (s *columnsStore) Resize(p types.Principal, columnID string, width int) (*types.Column, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	col, err := b.getColumn(columnID)
	if err != nil {
		return nil, err
	}
	if err := b.authorize(types.ActionWrite, p, col.DocumentID); err != nil {
		return nil, err
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: width %d", types.ErrInvalidData, width)
	}

	col.Width = width
	col.UpdatedAt = time.Now().UTC()
	_, err = b.db.Exec(`UPDATE columns SET width = ?, updated_at = ? WHERE column_id = ?`,
		width, formatTime(col.UpdatedAt), columnID)
	if err != nil {
		return nil, fmt.Errorf("resizing column %s: %w", columnID, err)
	}
	return col, nil
}

// Reorder assigns each column the order index of its position in
// orderedIDs. The list must contain exactly the document's column IDs;
// any mismatch leaves the ordering untouched.
func (s *columnsStore) Reorder(p types.Principal, documentID string, orderedIDs []string) ([]*types.Column, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	if err := b.authorize(types.ActionWrite, p, documentID); err != nil {
		return nil, err
	}

	err := b.withTx(func(tx *sql.Tx) error {
		return reorderByIDs(tx, "columns", "column_id", "document_id", documentID, orderedIDs)
	})
	if err != nil {
		return nil, err
	}
	b.log.Debug().Str("document_id", documentID).Int("columns", len(orderedIDs)).Msg("columns reordered")
	return b.listColumns(documentID)
}

// reorderByIDs implements permutation reorder for any ordered child table.
// It verifies orderedIDs is exactly the parent's child ID set, then writes
// each ID's position as its order index.
func reorderByIDs(tx *sql.Tx, table, idCol, parentCol, parentID string, orderedIDs []string) error {
	rows, err := tx.Query(
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`, idCol, table, parentCol), parentID)
	if err != nil {
		return fmt.Errorf("loading %s ids: %w", table, err)
	}
	existing := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scanning %s id: %w", table, err)
		}
		existing[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(orderedIDs) != len(existing) {
		return fmt.Errorf("%w: got %d ids, have %d", types.ErrOrderingConflict, len(orderedIDs), len(existing))
	}
	seen := map[string]bool{}
	for _, id := range orderedIDs {
		if !existing[id] || seen[id] {
			return fmt.Errorf("%w: id %s", types.ErrOrderingConflict, id)
		}
		seen[id] = true
	}

	now := formatTime(time.Now())
	for position, id := range orderedIDs {
		_, err := tx.Exec(
			fmt.Sprintf(`UPDATE %s SET order_index = ?, updated_at = ? WHERE %s = ?`, table, idCol),
			position, now, id)
		if err != nil {
			return fmt.Errorf("reordering %s %s: %w", table, id, err)
		}
	}
	return nil
}

// Delete removes the column, all cells stored under it with their nested
// entries and attachments, and the column's sub-columns, then renumbers
// the surviving columns back to a dense sequence.
func (s *columnsStore) Delete(p types.Principal, columnID string) error {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return err
	}
	col, err := b.getColumn(columnID)
	if err != nil {
		return err
	}
	if err := b.authorize(types.ActionDelete, p, col.DocumentID); err != nil {
		return err
	}

	var blobPaths []string
	err = b.withTx(func(tx *sql.Tx) error {
		const colCells = `SELECT cell_id FROM cells WHERE column_id = ?`

		var err error
		blobPaths, err = gatherPaths(tx, `
			SELECT file_path FROM attachments
			WHERE (anchor_kind = 'cell' AND anchor_id IN (`+colCells+`))
			   OR (anchor_kind = 'entry' AND anchor_id IN (
			        SELECT entry_id FROM multiline_entries WHERE cell_id IN (`+colCells+`)))`,
			columnID, columnID)
		if err != nil {
			return err
		}

		cascades := []string{
			`DELETE FROM attachments WHERE anchor_kind = 'cell' AND anchor_id IN (` + colCells + `)`,
			`DELETE FROM attachments WHERE anchor_kind = 'entry' AND anchor_id IN (
				SELECT entry_id FROM multiline_entries WHERE cell_id IN (` + colCells + `))`,
			`DELETE FROM multiline_entries WHERE cell_id IN (` + colCells + `)`,
			`DELETE FROM sub_columns WHERE column_id = ?`,
			`DELETE FROM cells WHERE column_id = ?`,
			`DELETE FROM columns WHERE column_id = ?`,
		}
		for _, stmt := range cascades {
			if _, err := tx.Exec(stmt, columnID); err != nil {
				return fmt.Errorf("cascading column delete: %w", err)
			}
		}

		return renumberOrdered(tx, "columns", "column_id", "document_id", col.DocumentID)
	})
	if err != nil {
		return err
	}

	b.removeBlobs(blobPaths)
	b.log.Debug().Str("column_id", columnID).Msg("column deleted")
	return nil
}

// renumberOrdered rewrites a parent's surviving child order indices as a
// dense 0..N-1 sequence, preserving the current relative order.
func renumberOrdered(tx *sql.Tx, table, idCol, parentCol, parentID string) error {
	rows, err := tx.Query(
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? ORDER BY order_index`, idCol, table, parentCol),
		parentID)
	if err != nil {
		return fmt.Errorf("loading %s for renumber: %w", table, err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scanning %s id: %w", table, err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for position, id := range ids {
		_, err := tx.Exec(
			fmt.Sprintf(`UPDATE %s SET order_index = ? WHERE %s = ?`, table, idCol),
			position, id)
		if err != nil {
			return fmt.Errorf("renumbering %s %s: %w", table, id, err)
		}
	}
	return nil
}
