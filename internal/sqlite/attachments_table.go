// Attachment store: file metadata rows paired with blob content. The blob
// is written before the metadata insert; a failed insert compensates by
// deleting the blob so no orphan survives a partial upload.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/datanorth/gestiondrive/pkg/types"
)

var _ types.AttachmentStore = (*attachmentsStore)(nil)

type attachmentsStore struct {
	backend *Backend
}

// Upload stores the content and records the attachment under its anchor.
// The anchor must be a cell of a file column or an entry of a file
// sub-column.
func (s *attachmentsStore) Upload(p types.Principal, anchorID, anchorKind, fileName, fileType string, content io.Reader) (*types.Attachment, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	if fileName == "" {
		return nil, types.ErrInvalidName
	}
	if !types.IsValidAnchorKind(anchorKind) {
		return nil, types.ErrInvalidAnchor
	}
	if err := b.checkFileAnchor(anchorID, anchorKind); err != nil {
		return nil, err
	}
	docID, err := b.documentIDForAnchor(anchorID, anchorKind)
	if err != nil {
		return nil, err
	}
	if err := b.authorize(types.ActionWrite, p, docID); err != nil {
		return nil, err
	}

	att := &types.Attachment{
		AttachmentID: newUUID(),
		AnchorID:     anchorID,
		AnchorKind:   anchorKind,
		FileName:     fileName,
		FileType:     fileType,
		UploadedBy:   p.ID,
		UploadedAt:   time.Now().UTC(),
	}
	att.FilePath = fmt.Sprintf("%s/%s/%s", anchorKind, att.AttachmentID, fileName)

	size, err := b.blobs.Put(att.FilePath, content)
	if err != nil {
		return nil, fmt.Errorf("storing attachment content: %w", err)
	}
	att.FileSize = size

	_, err = b.db.Exec(`
		INSERT INTO attachments (attachment_id, anchor_id, anchor_kind, file_path,
		                         file_name, file_type, file_size, uploaded_by, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		att.AttachmentID, att.AnchorID, att.AnchorKind, att.FilePath,
		att.FileName, att.FileType, att.FileSize, att.UploadedBy, formatTime(att.UploadedAt))
	if err != nil {
		// Compensate: the blob must not outlive the failed metadata write.
		if rmErr := b.blobs.Remove(att.FilePath); rmErr != nil {
			b.log.Warn().Str("path", att.FilePath).Err(rmErr).Msg("orphaned blob left behind")
		}
		return nil, fmt.Errorf("recording attachment: %w", err)
	}

	b.log.Debug().Str("attachment_id", att.AttachmentID).Str("anchor_kind", anchorKind).
		Int64("size", size).Msg("attachment uploaded")
	return att, nil
}

// checkFileAnchor verifies the anchor carries the file data type: a cell
// of a file column, or an entry of a file sub-column. The caller must
// hold b.mu.
func (b *Backend) checkFileAnchor(anchorID, anchorKind string) error {
	switch anchorKind {
	case types.AnchorCell:
		cell, err := b.getCell(anchorID)
		if err != nil {
			return err
		}
		col, err := b.getColumn(cell.ColumnID)
		if err != nil {
			return err
		}
		if col.DataType != types.DataTypeFile {
			return fmt.Errorf("%w: column %s is %s", types.ErrInvalidAnchor, col.ColumnID, col.DataType)
		}
	case types.AnchorEntry:
		var subColumnID string
		err := b.db.QueryRow(`SELECT sub_column_id FROM multiline_entries WHERE entry_id = ?`, anchorID).
			Scan(&subColumnID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: entry %s", types.ErrNotFound, anchorID)
		}
		if err != nil {
			return fmt.Errorf("resolving entry %s: %w", anchorID, err)
		}
		sub, err := b.getSubColumn(subColumnID)
		if err != nil {
			return err
		}
		if sub.DataType != types.DataTypeFile {
			return fmt.Errorf("%w: sub-column %s is %s", types.ErrInvalidAnchor, sub.SubColumnID, sub.DataType)
		}
	default:
		return types.ErrInvalidAnchor
	}
	return nil
}

// List returns the anchor's attachments in upload order.
func (s *attachmentsStore) List(anchorID, anchorKind string) ([]*types.Attachment, error) {
	b := s.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	if !types.IsValidAnchorKind(anchorKind) {
		return nil, types.ErrInvalidAnchor
	}

	rows, err := b.db.Query(`
		SELECT attachment_id, anchor_id, anchor_kind, file_path,
		       file_name, file_type, file_size, uploaded_by, uploaded_at
		FROM attachments WHERE anchor_id = ? AND anchor_kind = ?
		ORDER BY uploaded_at, attachment_id`, anchorID, anchorKind)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}
	defer rows.Close()

	atts := []*types.Attachment{}
	for rows.Next() {
		var a types.Attachment
		var uploadedAt string
		if err := rows.Scan(&a.AttachmentID, &a.AnchorID, &a.AnchorKind, &a.FilePath,
			&a.FileName, &a.FileType, &a.FileSize, &a.UploadedBy, &uploadedAt); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		a.UploadedAt = parseTime(uploadedAt)
		atts = append(atts, &a)
	}
	return atts, rows.Err()
}

// Delete removes the metadata record, then the blob content best-effort.
func (s *attachmentsStore) Delete(p types.Principal, attachmentID string) error {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return err
	}

	var anchorID, anchorKind, filePath string
	err := b.db.QueryRow(`
		SELECT anchor_id, anchor_kind, file_path FROM attachments WHERE attachment_id = ?`,
		attachmentID).Scan(&anchorID, &anchorKind, &filePath)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: attachment %s", types.ErrNotFound, attachmentID)
	}
	if err != nil {
		return fmt.Errorf("getting attachment %s: %w", attachmentID, err)
	}

	docID, err := b.documentIDForAnchor(anchorID, anchorKind)
	if err != nil {
		return err
	}
	if err := b.authorize(types.ActionDelete, p, docID); err != nil {
		return err
	}

	if _, err := b.db.Exec(`DELETE FROM attachments WHERE attachment_id = ?`, attachmentID); err != nil {
		return fmt.Errorf("deleting attachment %s: %w", attachmentID, err)
	}
	b.removeBlobs([]string{filePath})
	b.log.Debug().Str("attachment_id", attachmentID).Msg("attachment deleted")
	return nil
}
