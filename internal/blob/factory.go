package blob

import (
	"fmt"
	"path/filepath"

	"github.com/datanorth/gestiondrive/pkg/types"
)

// NewFromConfig creates a Store based on the blob kind in config. An empty
// kind defaults to a filesystem store under DataDir/blobs.
func NewFromConfig(cfg types.Config) (Store, error) {
	switch cfg.BlobKind {
	case types.BlobMemory:
		return NewMemoryStore(), nil
	case types.BlobFilesystem, "":
		root := cfg.BlobDir
		if root == "" {
			root = filepath.Join(cfg.DataDir, "blobs")
		}
		return NewFilesystemStore(root)
	default:
		return nil, fmt.Errorf("unknown blob store kind: %s", cfg.BlobKind)
	}
}
