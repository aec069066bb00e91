// Entry store: the nested values living inside multiline cells. Entries
// are addressed by (cell, sub-column, nested row index); a nested row is
// the set of entries sharing one index.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/datanorth/gestiondrive/pkg/types"
)

var _ types.EntryStore = (*entriesStore)(nil)

type entriesStore struct {
	backend *Backend
}

// ListByCell returns every entry of the cell ordered by nested row index,
// then by sub-column position.
func (s *entriesStore) ListByCell(cellID string) ([]*types.MultilineEntry, error) {
	b := s.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	if _, err := b.getCell(cellID); err != nil {
		return nil, err
	}

	rows, err := b.db.Query(`
		SELECT e.entry_id, e.cell_id, e.sub_column_id, e.order_index, e.value_type,
		       e.text_value, e.number_value, e.date_value, e.boolean_value,
		       e.created_at, e.updated_at
		FROM multiline_entries e
		JOIN sub_columns sc ON sc.sub_column_id = e.sub_column_id
		WHERE e.cell_id = ?
		ORDER BY e.order_index, sc.order_index`, cellID)
	if err != nil {
		return nil, fmt.Errorf("listing entries for cell %s: %w", cellID, err)
	}
	defer rows.Close()

	entries := []*types.MultilineEntry{}
	for rows.Next() {
		var e types.MultilineEntry
		var slots typedSlots
		var createdAt, updatedAt string
		if err := rows.Scan(&e.EntryID, &e.CellID, &e.SubColumnID, &e.OrderIndex, &e.ValueType,
			&slots.text, &slots.number, &slots.date, &slots.boolean,
			&createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Value = valueFromSlots(slots)
		e.CreatedAt = parseTime(createdAt)
		e.UpdatedAt = parseTime(updatedAt)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Upsert writes a nested value at (cell, sub-column, rowIndex), creating
// the entry on first touch. The raw value passes through the sub-column's
// codec; unused slots are nulled on every update.
func (s *entriesStore) Upsert(p types.Principal, cellID, subColumnID string, rowIndex int, raw any) (*types.MultilineEntry, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	if rowIndex < 0 {
		return nil, fmt.Errorf("%w: nested row index %d", types.ErrInvalidData, rowIndex)
	}

	cell, err := b.getCell(cellID)
	if err != nil {
		return nil, err
	}
	sub, err := b.getSubColumn(subColumnID)
	if err != nil {
		return nil, err
	}
	if sub.ColumnID != cell.ColumnID {
		return nil, fmt.Errorf("%w: sub-column %s belongs to another column", types.ErrInvalidData, subColumnID)
	}
	col, err := b.getColumn(cell.ColumnID)
	if err != nil {
		return nil, err
	}
	if col.DataType != types.DataTypeMultiline {
		return nil, fmt.Errorf("%w: column %s is %s", types.ErrNotMultiline, col.ColumnID, col.DataType)
	}
	docID, err := b.documentIDForRow(cell.RowID)
	if err != nil {
		return nil, err
	}
	if err := b.authorize(types.ActionWrite, p, docID); err != nil {
		return nil, err
	}

	value, err := types.EncodeValue(sub.DataType, sub.Config.Options, raw)
	if err != nil {
		return nil, err
	}
	slots := slotsFromValue(value)

	now := formatTime(time.Now())
	_, err = b.db.Exec(`
		INSERT INTO multiline_entries (entry_id, cell_id, sub_column_id, order_index,
		                               value_type, text_value, number_value,
		                               date_value, boolean_value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (cell_id, sub_column_id, order_index) DO UPDATE SET
			value_type = excluded.value_type,
			text_value = excluded.text_value,
			number_value = excluded.number_value,
			date_value = excluded.date_value,
			boolean_value = excluded.boolean_value,
			updated_at = excluded.updated_at`,
		newUUID(), cellID, subColumnID, rowIndex, sub.DataType,
		slots.text, slots.number, slots.date, slots.boolean, now, now)
	if err != nil {
		return nil, fmt.Errorf("upserting entry (%s, %s, %d): %w", cellID, subColumnID, rowIndex, err)
	}

	return b.getEntryByTriple(cellID, subColumnID, rowIndex)
}

// getEntryByTriple loads one entry; the caller must hold b.mu.
func (b *Backend) getEntryByTriple(cellID, subColumnID string, rowIndex int) (*types.MultilineEntry, error) {
	var e types.MultilineEntry
	var slots typedSlots
	var createdAt, updatedAt string
	err := b.db.QueryRow(`
		SELECT entry_id, cell_id, sub_column_id, order_index, value_type,
		       text_value, number_value, date_value, boolean_value, created_at, updated_at
		FROM multiline_entries
		WHERE cell_id = ? AND sub_column_id = ? AND order_index = ?`,
		cellID, subColumnID, rowIndex).
		Scan(&e.EntryID, &e.CellID, &e.SubColumnID, &e.OrderIndex, &e.ValueType,
			&slots.text, &slots.number, &slots.date, &slots.boolean, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: entry (%s, %s, %d)", types.ErrNotFound, cellID, subColumnID, rowIndex)
	}
	if err != nil {
		return nil, fmt.Errorf("getting entry: %w", err)
	}
	e.Value = valueFromSlots(slots)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}

// DeleteNestedRow removes every entry of the cell sharing rowIndex, along
// with attachments anchored to those entries. Surviving indices are not
// renumbered; like top-level rows, nested row order tolerates gaps.
func (s *entriesStore) DeleteNestedRow(p types.Principal, cellID string, rowIndex int) error {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return err
	}
	docID, err := b.documentIDForCell(cellID)
	if err != nil {
		return err
	}
	if err := b.authorize(types.ActionDelete, p, docID); err != nil {
		return err
	}

	var blobPaths []string
	err = b.withTx(func(tx *sql.Tx) error {
		var err error
		blobPaths, err = gatherPaths(tx, `
			SELECT file_path FROM attachments
			WHERE anchor_kind = 'entry' AND anchor_id IN (
				SELECT entry_id FROM multiline_entries WHERE cell_id = ? AND order_index = ?)`,
			cellID, rowIndex)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			DELETE FROM attachments
			WHERE anchor_kind = 'entry' AND anchor_id IN (
				SELECT entry_id FROM multiline_entries WHERE cell_id = ? AND order_index = ?)`,
			cellID, rowIndex)
		if err != nil {
			return fmt.Errorf("removing nested row attachments: %w", err)
		}
		_, err = tx.Exec(`DELETE FROM multiline_entries WHERE cell_id = ? AND order_index = ?`,
			cellID, rowIndex)
		if err != nil {
			return fmt.Errorf("removing nested row entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.removeBlobs(blobPaths)
	b.log.Debug().Str("cell_id", cellID).Int("nested_row", rowIndex).Msg("nested row deleted")
	return nil
}

// AppendNestedRow materializes a new nested row after the cell's current
// maximum index by writing one empty entry for the first sub-column, and
// returns the new index.
func (s *entriesStore) AppendNestedRow(p types.Principal, cellID string) (int, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return 0, err
	}

	cell, err := b.getCell(cellID)
	if err != nil {
		return 0, err
	}
	col, err := b.getColumn(cell.ColumnID)
	if err != nil {
		return 0, err
	}
	if col.DataType != types.DataTypeMultiline {
		return 0, fmt.Errorf("%w: column %s is %s", types.ErrNotMultiline, col.ColumnID, col.DataType)
	}
	docID, err := b.documentIDForRow(cell.RowID)
	if err != nil {
		return 0, err
	}
	if err := b.authorize(types.ActionWrite, p, docID); err != nil {
		return 0, err
	}

	subs, err := b.listSubColumns(cell.ColumnID)
	if err != nil {
		return 0, err
	}
	if len(subs) == 0 {
		return 0, fmt.Errorf("%w: column %s has no sub-columns", types.ErrInvalidData, cell.ColumnID)
	}
	first := subs[0]

	var index int
	err = b.withTx(func(tx *sql.Tx) error {
		if err := tx.QueryRow(
			`SELECT COALESCE(MAX(order_index), -1) + 1 FROM multiline_entries WHERE cell_id = ?`,
			cellID).Scan(&index); err != nil {
			return fmt.Errorf("computing nested row index: %w", err)
		}
		now := formatTime(time.Now())
		_, err := tx.Exec(`
			INSERT INTO multiline_entries (entry_id, cell_id, sub_column_id, order_index,
			                               value_type, text_value, number_value,
			                               date_value, boolean_value, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, NULL, NULL, NULL, NULL, ?, ?)`,
			newUUID(), cellID, first.SubColumnID, index, first.DataType, now, now)
		if err != nil {
			return fmt.Errorf("appending nested row: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	b.log.Debug().Str("cell_id", cellID).Int("nested_row", index).Msg("nested row appended")
	return index, nil
}
