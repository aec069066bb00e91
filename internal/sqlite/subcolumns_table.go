// Sub-column store: the nested schema of a multiline column. Lifecycle
// mirrors the top-level column store, one level down.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/datanorth/gestiondrive/pkg/types"
)

var _ types.SubColumnStore = (*subColumnsStore)(nil)

type subColumnsStore struct {
	backend *Backend
}

// Create appends a sub-column to a multiline parent. Multiline sub-columns
// are rejected: nesting stops at two levels.
func (s *subColumnsStore) Create(p types.Principal, columnID string, sub *types.SubColumn) (*types.SubColumn, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	if sub == nil || sub.Label == "" {
		return nil, types.ErrInvalidName
	}
	if sub.DataType == types.DataTypeMultiline {
		return nil, types.ErrNestedMultiline
	}
	if !types.IsValidSubDataType(sub.DataType) {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidDataType, sub.DataType)
	}

	parent, err := b.getColumn(columnID)
	if err != nil {
		return nil, err
	}
	if parent.DataType != types.DataTypeMultiline {
		return nil, fmt.Errorf("%w: column %s is %s", types.ErrNotMultiline, columnID, parent.DataType)
	}
	if err := b.authorize(types.ActionWrite, p, parent.DocumentID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := &types.SubColumn{
		SubColumnID: newUUID(),
		ColumnID:    columnID,
		Label:       sub.Label,
		DataType:    sub.DataType,
		Width:       sub.Width,
		Config:      sub.Config,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if created.Width <= 0 {
		created.Width = defaultColumnWidth
	}

	configJSON, err := marshalConfig(created.Config)
	if err != nil {
		return nil, err
	}

	err = b.withTx(func(tx *sql.Tx) error {
		if err := tx.QueryRow(`SELECT COUNT(*) FROM sub_columns WHERE column_id = ?`, columnID).
			Scan(&created.OrderIndex); err != nil {
			return fmt.Errorf("counting sub-columns: %w", err)
		}
		_, err := tx.Exec(`
			INSERT INTO sub_columns (sub_column_id, column_id, label, data_type,
			                         order_index, width, config_json, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			created.SubColumnID, created.ColumnID, created.Label, created.DataType,
			created.OrderIndex, created.Width, configJSON,
			formatTime(created.CreatedAt), formatTime(created.UpdatedAt))
		if err != nil {
			return fmt.Errorf("inserting sub-column: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.log.Debug().Str("sub_column_id", created.SubColumnID).Str("column_id", columnID).
		Msg("sub-column created")
	return created, nil
}

// Get retrieves a sub-column by ID.
func (s *subColumnsStore) Get(subColumnID string) (*types.SubColumn, error) {
	b := s.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	return b.getSubColumn(subColumnID)
}

// getSubColumn loads a sub-column; the caller must hold b.mu.
func (b *Backend) getSubColumn(subColumnID string) (*types.SubColumn, error) {
	if subColumnID == "" {
		return nil, types.ErrInvalidID
	}
	row := b.db.QueryRow(`
		SELECT sub_column_id, column_id, label, data_type, order_index, width,
		       config_json, created_at, updated_at
		FROM sub_columns WHERE sub_column_id = ?`, subColumnID)
	sub, err := scanSubColumn(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: sub-column %s", types.ErrNotFound, subColumnID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting sub-column %s: %w", subColumnID, err)
	}
	return sub, nil
}

func scanSubColumn(r rowScanner) (*types.SubColumn, error) {
	var sub types.SubColumn
	var configJSON, createdAt, updatedAt string
	err := r.Scan(&sub.SubColumnID, &sub.ColumnID, &sub.Label, &sub.DataType,
		&sub.OrderIndex, &sub.Width, &configJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	sub.Config, err = unmarshalConfig(configJSON)
	if err != nil {
		return nil, err
	}
	sub.CreatedAt = parseTime(createdAt)
	sub.UpdatedAt = parseTime(updatedAt)
	return &sub, nil
}

// List returns the parent column's sub-columns in display order.
func (s *subColumnsStore) List(columnID string) ([]*types.SubColumn, error) {
	b := s.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	if _, err := b.getColumn(columnID); err != nil {
		return nil, err
	}
	return b.listSubColumns(columnID)
}

// listSubColumns loads in order; the caller must hold b.mu.
func (b *Backend) listSubColumns(columnID string) ([]*types.SubColumn, error) {
	rows, err := b.db.Query(`
		SELECT sub_column_id, column_id, label, data_type, order_index, width,
		       config_json, created_at, updated_at
		FROM sub_columns WHERE column_id = ? ORDER BY order_index`, columnID)
	if err != nil {
		return nil, fmt.Errorf("listing sub-columns: %w", err)
	}
	defer rows.Close()

	subs := []*types.SubColumn{}
	for rows.Next() {
		sub, err := scanSubColumn(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sub-column: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Update applies a partial update. Changing the data type clears the typed
// values of the sub-column's entries; leaving the file type removes the
// attachments anchored to those entries.
func (s *subColumnsStore) Update(p types.Principal, subColumnID string, patch types.SubColumnPatch) (*types.SubColumn, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	sub, err := b.getSubColumn(subColumnID)
	if err != nil {
		return nil, err
	}
	docID, err := b.documentIDForColumn(sub.ColumnID)
	if err != nil {
		return nil, err
	}
	if err := b.authorize(types.ActionWrite, p, docID); err != nil {
		return nil, err
	}

	if patch.Label != nil {
		if *patch.Label == "" {
			return nil, types.ErrInvalidName
		}
		sub.Label = *patch.Label
	}
	if patch.Config != nil {
		sub.Config = *patch.Config
	}

	retype := patch.DataType != nil && *patch.DataType != sub.DataType
	previousType := sub.DataType
	if retype {
		if *patch.DataType == types.DataTypeMultiline {
			return nil, types.ErrNestedMultiline
		}
		if !types.IsValidSubDataType(*patch.DataType) {
			return nil, fmt.Errorf("%w: %q", types.ErrInvalidDataType, *patch.DataType)
		}
		sub.DataType = *patch.DataType
	}
	sub.UpdatedAt = time.Now().UTC()

	configJSON, err := marshalConfig(sub.Config)
	if err != nil {
		return nil, err
	}

	var blobPaths []string
	err = b.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			UPDATE sub_columns SET label = ?, data_type = ?, config_json = ?, updated_at = ?
			WHERE sub_column_id = ?`,
			sub.Label, sub.DataType, configJSON, formatTime(sub.UpdatedAt), subColumnID)
		if err != nil {
			return fmt.Errorf("updating sub-column %s: %w", subColumnID, err)
		}
		if !retype {
			return nil
		}

		_, err = tx.Exec(`
			UPDATE multiline_entries SET value_type = ?, text_value = NULL, number_value = NULL,
			       date_value = NULL, boolean_value = NULL, updated_at = ?
			WHERE sub_column_id = ?`,
			sub.DataType, formatTime(sub.UpdatedAt), subColumnID)
		if err != nil {
			return fmt.Errorf("clearing entry values for sub-column %s: %w", subColumnID, err)
		}

		if previousType == types.DataTypeFile {
			blobPaths, err = gatherPaths(tx, `
				SELECT file_path FROM attachments
				WHERE anchor_kind = 'entry' AND anchor_id IN (
					SELECT entry_id FROM multiline_entries WHERE sub_column_id = ?)`, subColumnID)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`
				DELETE FROM attachments
				WHERE anchor_kind = 'entry' AND anchor_id IN (
					SELECT entry_id FROM multiline_entries WHERE sub_column_id = ?)`, subColumnID)
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
	return sub, nil
}

// Resize updates only the display width.
func (s *subColumnsStore) Resize(p types.Principal, subColumnID string, width int) (*types.SubColumn, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	sub, err := b.getSubColumn(subColumnID)
	if err != nil {
		return nil, err
	}
	docID, err := b.documentIDForColumn(sub.ColumnID)
	if err != nil {
		return nil, err
	}
	if err := b.authorize(types.ActionWrite, p, docID); err != nil {
		return nil, err
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: width %d", types.ErrInvalidData, width)
	}

	sub.Width = width
	sub.UpdatedAt = time.Now().UTC()
	_, err = b.db.Exec(`UPDATE sub_columns SET width = ?, updated_at = ? WHERE sub_column_id = ?`,
		width, formatTime(sub.UpdatedAt), subColumnID)
	if err != nil {
		return nil, fmt.Errorf("resizing sub-column %s: %w", subColumnID, err)
	}
	return sub, nil
}

// Reorder assigns each sub-column the order index of its position in
// orderedIDs, all in one transaction.
func (s *subColumnsStore) Reorder(p types.Principal, columnID string, orderedIDs []string) ([]*types.SubColumn, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	docID, err := b.documentIDForColumn(columnID)
	if err != nil {
		return nil, err
	}
	if err := b.authorize(types.ActionWrite, p, docID); err != nil {
		return nil, err
	}

	err = b.withTx(func(tx *sql.Tx) error {
		return reorderByIDs(tx, "sub_columns", "sub_column_id", "column_id", columnID, orderedIDs)
	})
	if err != nil {
		return nil, err
	}
	return b.listSubColumns(columnID)
}

// Delete removes the sub-column, its entries, and the attachments anchored
// to those entries, then renumbers the surviving sub-columns.
func (s *subColumnsStore) Delete(p types.Principal, subColumnID string) error {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return err
	}
	sub, err := b.getSubColumn(subColumnID)
	if err != nil {
		return err
	}
	docID, err := b.documentIDForColumn(sub.ColumnID)
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
				SELECT entry_id FROM multiline_entries WHERE sub_column_id = ?)`, subColumnID)
		if err != nil {
			return err
		}

		cascades := []string{
			`DELETE FROM attachments WHERE anchor_kind = 'entry' AND anchor_id IN (
				SELECT entry_id FROM multiline_entries WHERE sub_column_id = ?)`,
			`DELETE FROM multiline_entries WHERE sub_column_id = ?`,
			`DELETE FROM sub_columns WHERE sub_column_id = ?`,
		}
		for _, stmt := range cascades {
			if _, err := tx.Exec(stmt, subColumnID); err != nil {
				return fmt.Errorf("cascading sub-column delete: %w", err)
			}
		}
		return renumberOrdered(tx, "sub_columns", "sub_column_id", "column_id", sub.ColumnID)
	})
	if err != nil {
		return err
	}

	b.removeBlobs(blobPaths)
	b.log.Debug().Str("sub_column_id", subColumnID).Msg("sub-column deleted")
	return nil
}
