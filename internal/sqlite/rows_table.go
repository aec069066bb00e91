// Row store: append-only row ordering, cascading delete, and row
// duplication with deep-cloned multiline content.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/datanorth/gestiondrive/pkg/types"
)

var _ types.RowStore = (*rowsStore)(nil)

type rowsStore struct {
	backend *Backend
}

// Create appends a row after the current maximum order index. Unlike
// columns, row indices are not renumbered on delete; gaps are tolerated.
func (s *rowsStore) Create(p types.Principal, documentID string) (*types.Row, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	if err := b.authorize(types.ActionWrite, p, documentID); err != nil {
		return nil, err
	}

	row := &types.Row{
		RowID:      newUUID(),
		DocumentID: documentID,
		CreatedAt:  time.Now().UTC(),
	}
	err := b.withTx(func(tx *sql.Tx) error {
		if err := tx.QueryRow(
			`SELECT COALESCE(MAX(order_index), -1) + 1 FROM rows WHERE document_id = ?`,
			documentID).Scan(&row.OrderIndex); err != nil {
			return fmt.Errorf("computing row order: %w", err)
		}
		_, err := tx.Exec(`
			INSERT INTO rows (row_id, document_id, order_index, created_at)
			VALUES (?, ?, ?, ?)`,
			row.RowID, row.DocumentID, row.OrderIndex, formatTime(row.CreatedAt))
		if err != nil {
			return fmt.Errorf("inserting row: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.log.Debug().Str("row_id", row.RowID).Int("order_index", row.OrderIndex).Msg("row created")
	return row, nil
}

// List returns the document's rows in display order.
func (s *rowsStore) List(documentID string) ([]*types.Row, error) {
	b := s.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	if _, err := b.getDocument(documentID); err != nil {
		return nil, err
	}

	rows, err := b.db.Query(`
		SELECT row_id, document_id, order_index, created_at
		FROM rows WHERE document_id = ? ORDER BY order_index`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing rows: %w", err)
	}
	defer rows.Close()

	result := []*types.Row{}
	for rows.Next() {
		var r types.Row
		var createdAt string
		if err := rows.Scan(&r.RowID, &r.DocumentID, &r.OrderIndex, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		result = append(result, &r)
	}
	return result, rows.Err()
}

// Delete removes the row with its cells, nested entries, and attachments.
func (s *rowsStore) Delete(p types.Principal, rowID string) error {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return err
	}
	docID, err := b.documentIDForRow(rowID)
	if err != nil {
		return err
	}
	if err := b.authorize(types.ActionDelete, p, docID); err != nil {
		return err
	}

	var blobPaths []string
	err = b.withTx(func(tx *sql.Tx) error {
		const rowCells = `SELECT cell_id FROM cells WHERE row_id = ?`

		var err error
		blobPaths, err = gatherPaths(tx, `
			SELECT file_path FROM attachments
			WHERE (anchor_kind = 'cell' AND anchor_id IN (`+rowCells+`))
			   OR (anchor_kind = 'entry' AND anchor_id IN (
			        SELECT entry_id FROM multiline_entries WHERE cell_id IN (`+rowCells+`)))`,
			rowID, rowID)
		if err != nil {
			return err
		}

		cascades := []string{
			`DELETE FROM attachments WHERE anchor_kind = 'cell' AND anchor_id IN (` + rowCells + `)`,
			`DELETE FROM attachments WHERE anchor_kind = 'entry' AND anchor_id IN (
				SELECT entry_id FROM multiline_entries WHERE cell_id IN (` + rowCells + `))`,
			`DELETE FROM multiline_entries WHERE cell_id IN (` + rowCells + `)`,
			`DELETE FROM cells WHERE row_id = ?`,
			`DELETE FROM rows WHERE row_id = ?`,
		}
		for _, stmt := range cascades {
			if _, err := tx.Exec(stmt, rowID); err != nil {
				return fmt.Errorf("cascading row delete: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.removeBlobs(blobPaths)
	b.log.Debug().Str("row_id", rowID).Msg("row deleted")
	return nil
}

// Duplicate copies the row's cell values into a new row appended at the
// end. Multiline content is deep-cloned under fresh anchor cells and fresh
// entry IDs. File cells are not copied: a duplicated row never shares or
// clones attachments.
func (s *rowsStore) Duplicate(p types.Principal, rowID string) (*types.Row, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	docID, err := b.documentIDForRow(rowID)
	if err != nil {
		return nil, err
	}
	if err := b.authorize(types.ActionWrite, p, docID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	clone := &types.Row{
		RowID:      newUUID(),
		DocumentID: docID,
		CreatedAt:  now,
	}

	err = b.withTx(func(tx *sql.Tx) error {
		if err := tx.QueryRow(
			`SELECT COALESCE(MAX(order_index), -1) + 1 FROM rows WHERE document_id = ?`,
			docID).Scan(&clone.OrderIndex); err != nil {
			return fmt.Errorf("computing row order: %w", err)
		}
		_, err := tx.Exec(`
			INSERT INTO rows (row_id, document_id, order_index, created_at)
			VALUES (?, ?, ?, ?)`,
			clone.RowID, clone.DocumentID, clone.OrderIndex, formatTime(clone.CreatedAt))
		if err != nil {
			return fmt.Errorf("inserting duplicated row: %w", err)
		}

		cells, err := tx.Query(`
			SELECT cell_id, column_id, value_type, text_value, number_value, date_value, boolean_value
			FROM cells WHERE row_id = ?`, rowID)
		if err != nil {
			return fmt.Errorf("loading source cells: %w", err)
		}
		type sourceCell struct {
			cellID    string
			columnID  string
			valueType string
			slots     typedSlots
		}
		var sources []sourceCell
		for cells.Next() {
			var c sourceCell
			if err := cells.Scan(&c.cellID, &c.columnID, &c.valueType,
				&c.slots.text, &c.slots.number, &c.slots.date, &c.slots.boolean); err != nil {
				cells.Close()
				return fmt.Errorf("scanning source cell: %w", err)
			}
			sources = append(sources, c)
		}
		cells.Close()
		if err := cells.Err(); err != nil {
			return err
		}

		ts := formatTime(now)
		for _, src := range sources {
			if src.valueType == types.DataTypeFile {
				continue
			}
			newCellID := newUUID()
			_, err := tx.Exec(`
				INSERT INTO cells (cell_id, row_id, column_id, value_type,
				                   text_value, number_value, date_value, boolean_value,
				                   created_by, updated_by, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				newCellID, clone.RowID, src.columnID, src.valueType,
				src.slots.text, src.slots.number, src.slots.date, src.slots.boolean,
				p.ID, p.ID, ts, ts)
			if err != nil {
				return fmt.Errorf("duplicating cell: %w", err)
			}

			if src.valueType != types.DataTypeMultiline {
				continue
			}
			if err := cloneEntries(tx, src.cellID, newCellID, ts); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.log.Debug().Str("source", rowID).Str("row_id", clone.RowID).Msg("row duplicated")
	return clone, nil
}

// cloneEntries deep-clones every nested entry of srcCellID under dstCellID
// with fresh entry IDs.
func cloneEntries(tx *sql.Tx, srcCellID, dstCellID, ts string) error {
	rows, err := tx.Query(`
		SELECT sub_column_id, order_index, value_type,
		       text_value, number_value, date_value, boolean_value
		FROM multiline_entries WHERE cell_id = ?`, srcCellID)
	if err != nil {
		return fmt.Errorf("loading source entries: %w", err)
	}
	type sourceEntry struct {
		subColumnID string
		orderIndex  int
		valueType   string
		slots       typedSlots
	}
	var entries []sourceEntry
	for rows.Next() {
		var e sourceEntry
		if err := rows.Scan(&e.subColumnID, &e.orderIndex, &e.valueType,
			&e.slots.text, &e.slots.number, &e.slots.date, &e.slots.boolean); err != nil {
			rows.Close()
			return fmt.Errorf("scanning source entry: %w", err)
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, e := range entries {
		_, err := tx.Exec(`
			INSERT INTO multiline_entries (entry_id, cell_id, sub_column_id, order_index,
			                               value_type, text_value, number_value,
			                               date_value, boolean_value, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			newUUID(), dstCellID, e.subColumnID, e.orderIndex, e.valueType,
			e.slots.text, e.slots.number, e.slots.date, e.slots.boolean, ts, ts)
		if err != nil {
			return fmt.Errorf("duplicating entry: %w", err)
		}
	}
	return nil
}
