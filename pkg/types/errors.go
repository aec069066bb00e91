package types

import "errors"

// Drive lifecycle errors.
var (
	ErrDetached        = errors.New("drive is detached")
	ErrAlreadyAttached = errors.New("drive is already attached")
)

// Store operation errors. Callers match with errors.Is; stores wrap these
// with context using fmt.Errorf and %w.
var (
	ErrNotFound         = errors.New("entity not found")
	ErrInvalidID        = errors.New("invalid entity ID")
	ErrInvalidData      = errors.New("invalid entity data")
	ErrValidation       = errors.New("value rejected by column type")
	ErrNotAuthenticated = errors.New("no authenticated principal")
	ErrPermissionDenied = errors.New("permission denied")
	ErrOrderingConflict = errors.New("reorder list does not match stored columns")
)

// Schema validation errors.
var (
	ErrInvalidDataType = errors.New("invalid data type")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidAnchor   = errors.New("invalid attachment anchor")
	ErrNestedMultiline = errors.New("sub-columns cannot be multiline")
	ErrNotMultiline    = errors.New("column is not multiline")
)
