// Package sqlite implements the SQLite storage backend for gestion-drive.
package sqlite

// Schema DDL for all tables. Cascades are performed explicitly by the
// stores inside transactions; the declared foreign keys document intent.
const (
	createDocuments = `CREATE TABLE IF NOT EXISTS documents (
    document_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    permissions_json TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createColumns = `CREATE TABLE IF NOT EXISTS columns (
    column_id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL,
    label TEXT NOT NULL,
    data_type TEXT NOT NULL,
    order_index INTEGER NOT NULL,
    width INTEGER NOT NULL,
    bg_color TEXT NOT NULL,
    text_color TEXT NOT NULL,
    config_json TEXT NOT NULL,
    permissions_json TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (document_id) REFERENCES documents(document_id)
);`

	createRows = `CREATE TABLE IF NOT EXISTS rows (
    row_id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL,
    order_index INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (document_id) REFERENCES documents(document_id)
);`

	createCells = `CREATE TABLE IF NOT EXISTS cells (
    cell_id TEXT PRIMARY KEY,
    row_id TEXT NOT NULL,
    column_id TEXT NOT NULL,
    value_type TEXT NOT NULL,
    text_value TEXT,
    number_value REAL,
    date_value TEXT,
    boolean_value INTEGER,
    created_by TEXT NOT NULL,
    updated_by TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (row_id) REFERENCES rows(row_id),
    FOREIGN KEY (column_id) REFERENCES columns(column_id)
);`

	createSubColumns = `CREATE TABLE IF NOT EXISTS sub_columns (
    sub_column_id TEXT PRIMARY KEY,
    column_id TEXT NOT NULL,
    label TEXT NOT NULL,
    data_type TEXT NOT NULL,
    order_index INTEGER NOT NULL,
    width INTEGER NOT NULL,
    config_json TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (column_id) REFERENCES columns(column_id)
);`

	createMultilineEntries = `CREATE TABLE IF NOT EXISTS multiline_entries (
    entry_id TEXT PRIMARY KEY,
    cell_id TEXT NOT NULL,
    sub_column_id TEXT NOT NULL,
    order_index INTEGER NOT NULL,
    value_type TEXT NOT NULL,
    text_value TEXT,
    number_value REAL,
    date_value TEXT,
    boolean_value INTEGER,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (cell_id) REFERENCES cells(cell_id),
    FOREIGN KEY (sub_column_id) REFERENCES sub_columns(sub_column_id)
);`

	createAttachments = `CREATE TABLE IF NOT EXISTS attachments (
    attachment_id TEXT PRIMARY KEY,
    anchor_id TEXT NOT NULL,
    anchor_kind TEXT NOT NULL,
    file_path TEXT NOT NULL,
    file_name TEXT NOT NULL,
    file_type TEXT NOT NULL,
    file_size INTEGER NOT NULL,
    uploaded_by TEXT NOT NULL,
    uploaded_at TEXT NOT NULL
);`
)

// Index DDL. The unique indexes back the storage-level invariants: one cell
// per (row, column) pair and one entry per (cell, sub-column, index) triple.
const (
	idxColumnsDocument  = `CREATE INDEX IF NOT EXISTS idx_columns_document ON columns(document_id, order_index);`
	idxRowsDocument     = `CREATE INDEX IF NOT EXISTS idx_rows_document ON rows(document_id, order_index);`
	idxCellsPairUnique  = `CREATE UNIQUE INDEX IF NOT EXISTS idx_cells_pair ON cells(row_id, column_id);`
	idxCellsColumn      = `CREATE INDEX IF NOT EXISTS idx_cells_column ON cells(column_id);`
	idxSubColumnsParent = `CREATE INDEX IF NOT EXISTS idx_sub_columns_parent ON sub_columns(column_id, order_index);`
	idxEntriesUnique    = `CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_triple ON multiline_entries(cell_id, sub_column_id, order_index);`
	idxEntriesCell      = `CREATE INDEX IF NOT EXISTS idx_entries_cell ON multiline_entries(cell_id, order_index);`
	idxAttachmentsAnchor = `CREATE INDEX IF NOT EXISTS idx_attachments_anchor ON attachments(anchor_kind, anchor_id, uploaded_at);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createDocuments,
	createColumns,
	createRows,
	createCells,
	createSubColumns,
	createMultilineEntries,
	createAttachments,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxColumnsDocument,
	idxRowsDocument,
	idxCellsPairUnique,
	idxCellsColumn,
	idxSubColumnsParent,
	idxEntriesUnique,
	idxEntriesCell,
	idxAttachmentsAnchor,
}
