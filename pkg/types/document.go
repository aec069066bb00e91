package types

import "time"

// Document is the top-level tabular container. Its schema (columns, their
// data types and ordering) is defined at runtime by end users.
type Document struct {
	DocumentID  string      // UUID v7, generated on creation.
	Name        string      // Human-readable name (required, non-empty).
	OwnerID     string      // Principal that created the document.
	Permissions Permissions // Default action→role-set map for the document.
	CreatedAt   time.Time   // Timestamp of creation.
	UpdatedAt   time.Time   // Timestamp of last modification.
}

// ColumnConfig carries type-specific column configuration. Only Options is
// currently defined; it lists the valid values for a select column.
type ColumnConfig struct {
	Options []string `json:"options,omitempty"`
}

// Column is a top-level column of a document.
//
// OrderIndex values for a document's columns form a contiguous 0..N-1
// sequence at rest; Reorder and Delete renumber survivors to keep density.
type Column struct {
	ColumnID    string       // UUID v7, generated on creation.
	DocumentID  string       // Parent document.
	Label       string       // Display label (required, non-empty).
	DataType    string       // One of the DataType constants.
	OrderIndex  int          // Position within the document, dense zero-based.
	Width       int          // Display width in pixels.
	BgColor     string       // Background color, empty for default.
	TextColor   string       // Text color, empty for default.
	Config      ColumnConfig // Type-specific configuration.
	Permissions Permissions  // Stored per column; evaluation uses the document default.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ColumnPatch describes a partial column update. Nil fields are left
// unchanged. Changing DataType clears the typed values of the column's
// existing cells and cascades away children of the previous type.
type ColumnPatch struct {
	Label       *string
	DataType    *string
	BgColor     *string
	TextColor   *string
	Config      *ColumnConfig
	Permissions *Permissions
}

// SubColumn is a nested column scoped to one multiline parent column.
// Its lifecycle parallels Column but its data type may not be multiline.
type SubColumn struct {
	SubColumnID string       // UUID v7, generated on creation.
	ColumnID    string       // Parent column; must be multiline.
	Label       string       // Display label (required, non-empty).
	DataType    string       // Any DataType except multiline.
	OrderIndex  int          // Position within the parent column, dense zero-based.
	Width       int          // Display width in pixels.
	Config      ColumnConfig // Type-specific configuration.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SubColumnPatch describes a partial sub-column update.
type SubColumnPatch struct {
	Label    *string
	DataType *string
	Config   *ColumnConfig
}

// Row is an ordered row of a document. Row ordering is append-only
// (order_index = max+1); gaps after deletion are tolerated.
type Row struct {
	RowID      string
	DocumentID string
	OrderIndex int
	CreatedAt  time.Time
}
