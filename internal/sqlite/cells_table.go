// Cell store: lazily created (row, column) value records. A missing cell
// reads as an empty value; writes create the record on first touch.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/datanorth/gestiondrive/pkg/types"
)

var _ types.CellStore = (*cellsStore)(nil)

type cellsStore struct {
	backend *Backend
}

// Get returns the cell stored for the pair, or (nil, nil) when none
// exists. Absence is the normal state of an untouched cell, not an error.
func (s *cellsStore) Get(rowID, columnID string) (*types.Cell, error) {
	b := s.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	return b.getCellByPair(rowID, columnID)
}

// getCellByPair loads the cell for a pair, nil when absent; the caller
// must hold b.mu.
func (b *Backend) getCellByPair(rowID, columnID string) (*types.Cell, error) {
	if rowID == "" || columnID == "" {
		return nil, types.ErrInvalidID
	}
	row := b.db.QueryRow(`
		SELECT cell_id, row_id, column_id, value_type,
		       text_value, number_value, date_value, boolean_value,
		       created_by, updated_by, created_at, updated_at
		FROM cells WHERE row_id = ? AND column_id = ?`, rowID, columnID)
	cell, err := scanCell(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cell (%s, %s): %w", rowID, columnID, err)
	}
	return cell, nil
}

// getCell loads a cell by its own ID; the caller must hold b.mu.
func (b *Backend) getCell(cellID string) (*types.Cell, error) {
	if cellID == "" {
		return nil, types.ErrInvalidID
	}
	row := b.db.QueryRow(`
		SELECT cell_id, row_id, column_id, value_type,
		       text_value, number_value, date_value, boolean_value,
		       created_by, updated_by, created_at, updated_at
		FROM cells WHERE cell_id = ?`, cellID)
	cell, err := scanCell(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: cell %s", types.ErrNotFound, cellID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting cell %s: %w", cellID, err)
	}
	return cell, nil
}

func scanCell(r rowScanner) (*types.Cell, error) {
	var cell types.Cell
	var slots typedSlots
	var createdAt, updatedAt string
	err := r.Scan(&cell.CellID, &cell.RowID, &cell.ColumnID, &cell.ValueType,
		&slots.text, &slots.number, &slots.date, &slots.boolean,
		&cell.CreatedBy, &cell.UpdatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	cell.Value = valueFromSlots(slots)
	cell.CreatedAt = parseTime(createdAt)
	cell.UpdatedAt = parseTime(updatedAt)
	return &cell, nil
}

// Upsert writes a value to the (row, column) pair, creating the cell on
// first touch. The raw value passes through the column's codec, so the
// stored slots always agree with the column's declared data type; the
// three unused slots are written NULL on every update.
func (s *cellsStore) Upsert(p types.Principal, rowID, columnID string, raw any) (*types.Cell, error) {
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
	col, err := b.getColumn(columnID)
	if err != nil {
		return nil, err
	}
	if col.DocumentID != docID {
		return nil, fmt.Errorf("%w: column %s belongs to another document", types.ErrInvalidData, columnID)
	}
	if err := b.authorize(types.ActionWrite, p, docID); err != nil {
		return nil, err
	}

	value, err := types.EncodeValue(col.DataType, col.Config.Options, raw)
	if err != nil {
		return nil, err
	}
	slots := slotsFromValue(value)

	now := formatTime(time.Now())
	_, err = b.db.Exec(`
		INSERT INTO cells (cell_id, row_id, column_id, value_type,
		                   text_value, number_value, date_value, boolean_value,
		                   created_by, updated_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (row_id, column_id) DO UPDATE SET
			value_type = excluded.value_type,
			text_value = excluded.text_value,
			number_value = excluded.number_value,
			date_value = excluded.date_value,
			boolean_value = excluded.boolean_value,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at`,
		newUUID(), rowID, columnID, col.DataType,
		slots.text, slots.number, slots.date, slots.boolean,
		p.ID, p.ID, now, now)
	if err != nil {
		return nil, fmt.Errorf("upserting cell (%s, %s): %w", rowID, columnID, err)
	}

	return b.getCellByPair(rowID, columnID)
}

// EnsureExists creates an empty anchor cell for the pair if none exists
// and returns it. Multiline and file columns need the cell as an anchor
// before entries or attachments can reference it. Idempotent.
func (s *cellsStore) EnsureExists(p types.Principal, rowID, columnID string) (*types.Cell, error) {
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
	col, err := b.getColumn(columnID)
	if err != nil {
		return nil, err
	}
	if col.DocumentID != docID {
		return nil, fmt.Errorf("%w: column %s belongs to another document", types.ErrInvalidData, columnID)
	}
	if err := b.authorize(types.ActionWrite, p, docID); err != nil {
		return nil, err
	}
	return b.ensureCell(p, rowID, columnID, col.DataType)
}

// ensureCell inserts an empty cell unless one exists for the pair; the
// caller must hold b.mu and have authorized the write.
func (b *Backend) ensureCell(p types.Principal, rowID, columnID, dataType string) (*types.Cell, error) {
	existing, err := b.getCellByPair(rowID, columnID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := formatTime(time.Now())
	_, err = b.db.Exec(`
		INSERT INTO cells (cell_id, row_id, column_id, value_type,
		                   text_value, number_value, date_value, boolean_value,
		                   created_by, updated_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULL, NULL, NULL, NULL, ?, ?, ?, ?)`,
		newUUID(), rowID, columnID, dataType, p.ID, p.ID, now, now)
	if err != nil {
		return nil, fmt.Errorf("creating cell (%s, %s): %w", rowID, columnID, err)
	}
	return b.getCellByPair(rowID, columnID)
}
