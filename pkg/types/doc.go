// Package types defines the Drive interface, entity types, the typed value
// codec, the permission evaluator, and standard error types for the
// gestion-drive tabular document engine.
package types
