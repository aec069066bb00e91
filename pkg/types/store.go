package types

import "io"

// Drive defines the interface for backend-agnostic storage access. Callers
// attach to a backend, operate through the typed stores, and detach when
// done. Each mutation is an independent request/response exchange under
// last-write-wins semantics; there are no session-scoped locks.
type Drive interface {
	// Attach connects the Drive to the backend described by config.
	// Creates the data directory if it does not exist. Returns
	// ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls
	// succeed. After Detach, store operations return ErrDetached.
	Detach() error

	Documents() DocumentStore
	Columns() ColumnStore
	SubColumns() SubColumnStore
	Rows() RowStore
	Cells() CellStore
	Entries() EntryStore
	Attachments() AttachmentStore
}

// DocumentStore manages top-level documents. Deleting a document cascades
// to all child entities.
type DocumentStore interface {
	Create(p Principal, name string) (*Document, error)
	Get(id string) (*Document, error)
	List() ([]*Document, error)
	Rename(p Principal, id, name string) (*Document, error)
	SetPermissions(p Principal, id string, perms Permissions) (*Document, error)
	Delete(p Principal, id string) error
}

// ColumnStore manages the top-level columns of a document. Order indices
// stay dense (0..N-1) across create, reorder, and delete.
type ColumnStore interface {
	Create(p Principal, documentID string, col *Column) (*Column, error)
	Get(columnID string) (*Column, error)
	List(documentID string) ([]*Column, error)
	Update(p Principal, columnID string, patch ColumnPatch) (*Column, error)
	Resize(p Principal, columnID string, width int) (*Column, error)

	// Reorder recomputes every column's order index as its position in
	// orderedIDs and persists all changed indices as one transaction.
	// The list must be a permutation of the document's column IDs;
	// otherwise ErrOrderingConflict is returned and nothing changes.
	Reorder(p Principal, documentID string, orderedIDs []string) ([]*Column, error)

	// Delete removes the column and cascades to its cells, sub-columns,
	// entries, and attachments, then renumbers the survivors.
	Delete(p Principal, columnID string) error
}

// SubColumnStore manages the nested columns of one multiline column.
type SubColumnStore interface {
	Create(p Principal, columnID string, sub *SubColumn) (*SubColumn, error)
	Get(subColumnID string) (*SubColumn, error)
	List(columnID string) ([]*SubColumn, error)
	Update(p Principal, subColumnID string, patch SubColumnPatch) (*SubColumn, error)
	Resize(p Principal, subColumnID string, width int) (*SubColumn, error)
	Reorder(p Principal, columnID string, orderedIDs []string) ([]*SubColumn, error)
	Delete(p Principal, subColumnID string) error
}

// RowStore manages the ordered row list of a document.
type RowStore interface {
	Create(p Principal, documentID string) (*Row, error)
	List(documentID string) ([]*Row, error)
	Delete(p Principal, rowID string) error

	// Duplicate copies all cell values of the row to a new row,
	// preserving value types. Multiline entries are deep-cloned under
	// fresh anchor cells; file cells are left empty so attachment
	// identity is never shared.
	Duplicate(p Principal, rowID string) (*Row, error)
}

// CellStore manages the lazily created per-(row, column) value records.
type CellStore interface {
	// Get returns the cell for the pair, or (nil, nil) when none exists:
	// a missing cell is an empty value, not an error.
	Get(rowID, columnID string) (*Cell, error)

	// Upsert writes a value through the codec, creating the cell first if
	// it does not exist. The cell's value type mirrors the owning
	// column's data type at write time; unused slots are nulled.
	Upsert(p Principal, rowID, columnID string, raw any) (*Cell, error)

	// EnsureExists creates the anchor cell for the pair if missing and
	// returns it. Idempotent: calling twice never produces two cells.
	EnsureExists(p Principal, rowID, columnID string) (*Cell, error)
}

// EntryStore manages the nested values of multiline cells.
type EntryStore interface {
	ListByCell(cellID string) ([]*MultilineEntry, error)
	Upsert(p Principal, cellID, subColumnID string, rowIndex int, raw any) (*MultilineEntry, error)

	// DeleteNestedRow removes every entry of the cell sharing rowIndex.
	DeleteNestedRow(p Principal, cellID string, rowIndex int) error

	// AppendNestedRow materializes a new nested row at index max+1 (or 0)
	// by creating one entry for the cell's first sub-column, and returns
	// the new index.
	AppendNestedRow(p Principal, cellID string) (int, error)
}

// AttachmentStore manages file metadata records and their blobs. Upload
// writes the blob first and compensates with a blob delete if the metadata
// insert fails, so no orphaned blob survives a partial failure.
type AttachmentStore interface {
	Upload(p Principal, anchorID, anchorKind, fileName, fileType string, content io.Reader) (*Attachment, error)
	List(anchorID, anchorKind string) ([]*Attachment, error)
	Delete(p Principal, attachmentID string) error
}
