package types

import "errors"

// Config holds backend selection and parameters for Drive.Attach.
type Config struct {
	Backend  string `json:"backend" yaml:"backend"`
	DataDir  string `json:"data_dir" yaml:"data_dir"`
	BlobKind string `json:"blob_kind" yaml:"blob_kind"`
	BlobDir  string `json:"blob_dir" yaml:"blob_dir"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Supported blob store kinds.
const (
	BlobFilesystem = "filesystem"
	BlobMemory     = "memory"
)

// Config validation errors.
var (
	ErrBackendEmpty    = errors.New("backend must not be empty")
	ErrBackendUnknown  = errors.New("unknown backend")
	ErrBlobKindUnknown = errors.New("unknown blob store kind")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// knownBlobKinds lists the blob store kinds that Validate accepts.
// An empty kind defaults to filesystem under DataDir/blobs.
var knownBlobKinds = map[string]bool{
	"":             true,
	BlobFilesystem: true,
	BlobMemory:     true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if !knownBlobKinds[c.BlobKind] {
		return ErrBlobKindUnknown
	}
	return nil
}
