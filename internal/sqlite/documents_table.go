// Document store: top-level document CRUD with owner-derived default
// permissions and full cascade on delete.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/datanorth/gestiondrive/pkg/types"
)

// Compile-time interface check.
var _ types.DocumentStore = (*documentsStore)(nil)

type documentsStore struct {
	backend *Backend
}

// Create inserts a new document owned by the principal, with the default
// permission template applied.
func (s *documentsStore) Create(p types.Principal, name string) (*types.Document, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	if !p.Authenticated {
		return nil, types.ErrNotAuthenticated
	}
	if name == "" {
		return nil, types.ErrInvalidName
	}

	now := time.Now().UTC()
	doc := &types.Document{
		DocumentID:  newUUID(),
		Name:        name,
		OwnerID:     p.ID,
		Permissions: types.DefaultPermissions(p.ID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	permsJSON, err := marshalPermissions(doc.Permissions)
	if err != nil {
		return nil, err
	}
	_, err = b.db.Exec(`
		INSERT INTO documents (document_id, name, owner_id, permissions_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		doc.DocumentID, doc.Name, doc.OwnerID, permsJSON,
		formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	b.log.Debug().Str("document_id", doc.DocumentID).Str("owner", p.ID).Msg("document created")
	return doc, nil
}

// Get retrieves a document by ID.
func (s *documentsStore) Get(id string) (*types.Document, error) {
	b := s.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	return b.getDocument(id)
}

// getDocument loads a document without taking the lock; the caller must
// hold b.mu.
func (b *Backend) getDocument(id string) (*types.Document, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var doc types.Document
	var permsJSON, createdAt, updatedAt string
	err := b.db.QueryRow(`
		SELECT document_id, name, owner_id, permissions_json, created_at, updated_at
		FROM documents WHERE document_id = ?`, id).
		Scan(&doc.DocumentID, &doc.Name, &doc.OwnerID, &permsJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: document %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document %s: %w", id, err)
	}
	doc.Permissions, err = unmarshalPermissions(permsJSON)
	if err != nil {
		return nil, err
	}
	doc.CreatedAt = parseTime(createdAt)
	doc.UpdatedAt = parseTime(updatedAt)
	return &doc, nil
}

// List returns all documents, most recently created first.
func (s *documentsStore) List() ([]*types.Document, error) {
	b := s.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}

	rows, err := b.db.Query(`
		SELECT document_id, name, owner_id, permissions_json, created_at, updated_at
		FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	docs := []*types.Document{}
	for rows.Next() {
		var doc types.Document
		var permsJSON, createdAt, updatedAt string
		if err := rows.Scan(&doc.DocumentID, &doc.Name, &doc.OwnerID, &permsJSON, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.Permissions, err = unmarshalPermissions(permsJSON)
		if err != nil {
			return nil, err
		}
		doc.CreatedAt = parseTime(createdAt)
		doc.UpdatedAt = parseTime(updatedAt)
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// Rename updates the document name.
func (s *documentsStore) Rename(p types.Principal, id, name string) (*types.Document, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, types.ErrInvalidName
	}
	if err := b.authorize(types.ActionWrite, p, id); err != nil {
		return nil, err
	}

	_, err := b.db.Exec(`UPDATE documents SET name = ?, updated_at = ? WHERE document_id = ?`,
		name, formatTime(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("renaming document %s: %w", id, err)
	}
	return b.getDocument(id)
}

// SetPermissions replaces the document's default permission map. Only the
// owner or a principal holding the delete right may change permissions.
func (s *documentsStore) SetPermissions(p types.Principal, id string, perms types.Permissions) (*types.Document, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return nil, err
	}
	if !p.Authenticated {
		return nil, types.ErrNotAuthenticated
	}
	doc, err := b.getDocument(id)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != p.ID && !types.CanPerform(types.ActionDelete, p, doc.Permissions) {
		return nil, fmt.Errorf("%w: manage permissions on document %s", types.ErrPermissionDenied, id)
	}

	permsJSON, err := marshalPermissions(perms)
	if err != nil {
		return nil, err
	}
	_, err = b.db.Exec(`UPDATE documents SET permissions_json = ?, updated_at = ? WHERE document_id = ?`,
		permsJSON, formatTime(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("updating permissions for document %s: %w", id, err)
	}
	return b.getDocument(id)
}

// Delete removes the document and every child entity under it: columns,
// sub-columns, rows, cells, multiline entries, and attachments (metadata
// plus blobs).
func (s *documentsStore) Delete(p types.Principal, id string) error {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireAttached(); err != nil {
		return err
	}
	if err := b.authorize(types.ActionDelete, p, id); err != nil {
		return err
	}

	var blobPaths []string
	err := b.withTx(func(tx *sql.Tx) error {
		const docCells = `SELECT cell_id FROM cells WHERE row_id IN (SELECT row_id FROM rows WHERE document_id = ?)`

		var err error
		blobPaths, err = gatherPaths(tx, `
			SELECT file_path FROM attachments
			WHERE (anchor_kind = 'cell' AND anchor_id IN (`+docCells+`))
			   OR (anchor_kind = 'entry' AND anchor_id IN (
			        SELECT entry_id FROM multiline_entries WHERE cell_id IN (`+docCells+`)))`,
			id, id)
		if err != nil {
			return err
		}

		steps := []struct {
			stmt string
			args []any
		}{
			{`DELETE FROM attachments WHERE anchor_kind = 'cell' AND anchor_id IN (` + docCells + `)`, []any{id}},
			{`DELETE FROM attachments WHERE anchor_kind = 'entry' AND anchor_id IN (
				SELECT entry_id FROM multiline_entries WHERE cell_id IN (` + docCells + `))`, []any{id}},
			{`DELETE FROM multiline_entries WHERE cell_id IN (` + docCells + `)`, []any{id}},
			{`DELETE FROM cells WHERE row_id IN (SELECT row_id FROM rows WHERE document_id = ?)`, []any{id}},
			{`DELETE FROM sub_columns WHERE column_id IN (SELECT column_id FROM columns WHERE document_id = ?)`, []any{id}},
			{`DELETE FROM rows WHERE document_id = ?`, []any{id}},
			{`DELETE FROM columns WHERE document_id = ?`, []any{id}},
			{`DELETE FROM documents WHERE document_id = ?`, []any{id}},
		}
		for _, step := range steps {
			if _, err := tx.Exec(step.stmt, step.args...); err != nil {
				return fmt.Errorf("cascading document delete: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.removeBlobs(blobPaths)
	b.log.Debug().Str("document_id", id).Int("blobs", len(blobPaths)).Msg("document deleted")
	return nil
}

// gatherPaths collects the file_path column of a query result.
func gatherPaths(tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("collecting blob paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning blob path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// removeBlobs deletes blob content best-effort after the metadata
// transaction committed. Failures are logged, not surfaced: the metadata
// is already consistent.
func (b *Backend) removeBlobs(paths []string) {
	for _, p := range paths {
		if err := b.blobs.Remove(p); err != nil {
			b.log.Warn().Str("path", p).Err(err).Msg("orphaned blob left behind")
		}
	}
}
