package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/datanorth/gestiondrive/internal/blob"
	"github.com/datanorth/gestiondrive/pkg/types"
)

// Backend implements the Drive interface using SQLite for structured
// records and a blob store for attachment content.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	blobs    blob.Store
	log      zerolog.Logger

	documents   *documentsStore
	columns     *columnsStore
	subColumns  *subColumnsStore
	rows        *rowsStore
	cells       *cellsStore
	entries     *entriesStore
	attachments *attachmentsStore
}

// Compile-time check that Backend implements Drive.
var _ types.Drive = (*Backend)(nil)

// NewBackend creates a new SQLite backend instance. The backend is not
// attached; call Attach with a Config to initialize. Logging is disabled
// until SetLogger is called.
func NewBackend() *Backend {
	b := &Backend{log: zerolog.Nop()}
	b.documents = &documentsStore{backend: b}
	b.columns = &columnsStore{backend: b}
	b.subColumns = &subColumnsStore{backend: b}
	b.rows = &rowsStore{backend: b}
	b.cells = &cellsStore{backend: b}
	b.entries = &entriesStore{backend: b}
	b.attachments = &attachmentsStore{backend: b}
	return b
}

// SetLogger replaces the backend logger. Call before Attach.
func (b *Backend) SetLogger(log zerolog.Logger) {
	b.log = log
}

// SetBlobStore overrides the blob store that Attach would build from
// config. Tests use this to inject a failing store.
func (b *Backend) SetBlobStore(store blob.Store) {
	b.blobs = store
}

// Attach initializes the backend with the given configuration: creates the
// data directory, opens the database, applies the schema, and builds the
// blob store. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "drive.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("applying indexes: %w", err)
		}
	}

	if b.blobs == nil {
		store, err := blob.NewFromConfig(config)
		if err != nil {
			db.Close()
			return fmt.Errorf("building blob store: %w", err)
		}
		b.blobs = store
	}

	b.db = db
	b.config = config
	b.attached = true
	b.log.Info().Str("data_dir", dataDir).Msg("drive attached")
	return nil
}

// Detach releases the database connection. Idempotent; after Detach all
// store operations return ErrDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
		b.db = nil
	}
	b.attached = false
	b.log.Info().Msg("drive detached")
	return nil
}

// Store accessors.

func (b *Backend) Documents() types.DocumentStore     { return b.documents }
func (b *Backend) Columns() types.ColumnStore         { return b.columns }
func (b *Backend) SubColumns() types.SubColumnStore   { return b.subColumns }
func (b *Backend) Rows() types.RowStore               { return b.rows }
func (b *Backend) Cells() types.CellStore             { return b.cells }
func (b *Backend) Entries() types.EntryStore          { return b.entries }
func (b *Backend) Attachments() types.AttachmentStore { return b.attachments }

// Blobs exposes the attachment content store; the CLI uses it to read
// downloaded files back out.
func (b *Backend) Blobs() blob.Store { return b.blobs }

// newUUID generates a UUID v7 string, falling back to v4 if the clock
// source fails.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// requireAttached returns ErrDetached when the backend is not attached.
// The caller must hold b.mu (read or write lock).
func (b *Backend) requireAttached() error {
	if !b.attached {
		return types.ErrDetached
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (b *Backend) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// authorize checks the principal against the document's permissions for
// the given action. Write and delete fail closed for anonymous callers.
// The caller must hold b.mu.
func (b *Backend) authorize(action string, p types.Principal, documentID string) error {
	if action != types.ActionRead && !p.Authenticated {
		return types.ErrNotAuthenticated
	}
	doc, err := b.getDocument(documentID)
	if err != nil {
		return err
	}
	if !types.CanPerform(action, p, doc.Permissions) {
		return fmt.Errorf("%w: %s on document %s", types.ErrPermissionDenied, action, documentID)
	}
	return nil
}

// Document resolution helpers. Each maps a child entity to its owning
// document so permission checks always evaluate the document default.
// The caller must hold b.mu.

func (b *Backend) documentIDForColumn(columnID string) (string, error) {
	var id string
	err := b.db.QueryRow("SELECT document_id FROM columns WHERE column_id = ?", columnID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: column %s", types.ErrNotFound, columnID)
	}
	if err != nil {
		return "", fmt.Errorf("resolving column %s: %w", columnID, err)
	}
	return id, nil
}

func (b *Backend) documentIDForRow(rowID string) (string, error) {
	var id string
	err := b.db.QueryRow("SELECT document_id FROM rows WHERE row_id = ?", rowID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: row %s", types.ErrNotFound, rowID)
	}
	if err != nil {
		return "", fmt.Errorf("resolving row %s: %w", rowID, err)
	}
	return id, nil
}

func (b *Backend) documentIDForCell(cellID string) (string, error) {
	var rowID string
	err := b.db.QueryRow("SELECT row_id FROM cells WHERE cell_id = ?", cellID).Scan(&rowID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: cell %s", types.ErrNotFound, cellID)
	}
	if err != nil {
		return "", fmt.Errorf("resolving cell %s: %w", cellID, err)
	}
	return b.documentIDForRow(rowID)
}

func (b *Backend) documentIDForSubColumn(subColumnID string) (string, error) {
	var columnID string
	err := b.db.QueryRow("SELECT column_id FROM sub_columns WHERE sub_column_id = ?", subColumnID).Scan(&columnID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: sub-column %s", types.ErrNotFound, subColumnID)
	}
	if err != nil {
		return "", fmt.Errorf("resolving sub-column %s: %w", subColumnID, err)
	}
	return b.documentIDForColumn(columnID)
}

func (b *Backend) documentIDForAnchor(anchorID, anchorKind string) (string, error) {
	switch anchorKind {
	case types.AnchorCell:
		return b.documentIDForCell(anchorID)
	case types.AnchorEntry:
		var cellID string
		err := b.db.QueryRow("SELECT cell_id FROM multiline_entries WHERE entry_id = ?", anchorID).Scan(&cellID)
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("%w: entry %s", types.ErrNotFound, anchorID)
		}
		if err != nil {
			return "", fmt.Errorf("resolving entry %s: %w", anchorID, err)
		}
		return b.documentIDForCell(cellID)
	default:
		return "", types.ErrInvalidAnchor
	}
}

// Timestamp encoding. All timestamps persist as RFC3339Nano UTC text.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
