package types

import (
	"sort"
	"time"
)

// Cell is the polymorphic value record for one (row, column) pair. At most
// one cell exists per pair. Cells are created lazily on first interaction;
// a missing cell means "empty value", not an error.
//
// ValueType mirrors the owning column's data type at write time. For
// multiline and file columns the cell carries no value and exists only as
// an anchor for entries or attachments.
type Cell struct {
	CellID    string
	RowID     string
	ColumnID  string
	ValueType string
	Value     TypedValue
	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MultilineEntry is one value of the nested table embedded in a multiline
// cell. OrderIndex identifies the nested row the entry belongs to; the
// nested row itself has no record and is inferred from its entries. At most
// one entry exists per (cell, sub-column, order index) triple.
type MultilineEntry struct {
	EntryID     string
	CellID      string
	SubColumnID string
	OrderIndex  int
	ValueType   string
	Value       TypedValue
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NestedRow is the implicit grouping of all entries of one cell sharing an
// order index. Values is keyed by sub-column ID; sub-columns with no entry
// at this index are simply absent and render as empty.
type NestedRow struct {
	Index  int
	Values map[string]TypedValue
}

// GroupEntries reconstructs the nested table of a multiline cell: entries
// grouped by order index, then by sub-column within each index. Rows are
// returned in ascending index order.
func GroupEntries(entries []*MultilineEntry) []NestedRow {
	byIndex := make(map[int]map[string]TypedValue)
	for _, e := range entries {
		vals, ok := byIndex[e.OrderIndex]
		if !ok {
			vals = make(map[string]TypedValue)
			byIndex[e.OrderIndex] = vals
		}
		vals[e.SubColumnID] = e.Value
	}

	rows := make([]NestedRow, 0, len(byIndex))
	for idx, vals := range byIndex {
		rows = append(rows, NestedRow{Index: idx, Values: vals})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Index < rows[j].Index })
	return rows
}

// Attachment anchor kinds. An attachment belongs to exactly one anchor:
// a file cell or a multiline entry whose sub-column type is file.
const (
	AnchorCell  = "cell"
	AnchorEntry = "entry"
)

// IsValidAnchorKind reports whether kind names a recognized anchor kind.
func IsValidAnchorKind(kind string) bool {
	return kind == AnchorCell || kind == AnchorEntry
}

// Attachment is the metadata record for one stored file. Multiple
// attachments may share an anchor; a file cell is a list, not a singleton.
type Attachment struct {
	AttachmentID string
	AnchorID     string // Cell ID or entry ID depending on AnchorKind.
	AnchorKind   string // AnchorCell or AnchorEntry.
	FilePath     string // Path within the blob store.
	FileName     string
	FileType     string
	FileSize     int64
	UploadedBy   string
	UploadedAt   time.Time
}
