package types

// Column data types. The data type declared on a column governs which typed
// slot a cell value occupies; multiline and file cells carry no value of
// their own and act only as anchors for entries and attachments.
const (
	DataTypeText      = "text"
	DataTypeNumber    = "number"
	DataTypeDate      = "date"
	DataTypeBoolean   = "boolean"
	DataTypeSelect    = "select"
	DataTypeMultiline = "multiline"
	DataTypeFile      = "file"
)

// validDataTypes is the set of recognized column data types.
var validDataTypes = map[string]bool{
	DataTypeText:      true,
	DataTypeNumber:    true,
	DataTypeDate:      true,
	DataTypeBoolean:   true,
	DataTypeSelect:    true,
	DataTypeMultiline: true,
	DataTypeFile:      true,
}

// IsValidDataType reports whether dt is a recognized column data type.
func IsValidDataType(dt string) bool {
	return validDataTypes[dt]
}

// IsValidSubDataType reports whether dt is usable on a sub-column.
// Multiline is excluded: a nested table cannot itself contain nested tables.
func IsValidSubDataType(dt string) bool {
	return dt != DataTypeMultiline && validDataTypes[dt]
}

// IsAnchorDataType reports whether cells of this type exist only as anchors
// for child records (multiline entries or file attachments) and never
// populate a typed value slot.
func IsAnchorDataType(dt string) bool {
	return dt == DataTypeMultiline || dt == DataTypeFile
}
