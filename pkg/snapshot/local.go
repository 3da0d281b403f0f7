package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local exports to the local filesystem under a base directory.
type Local struct {
	basePath string
}

// NewLocal creates a Local exporter rooted at basePath, creating it if
// it does not already exist.
func NewLocal(basePath string) (*Local, error) {
	if basePath == "" {
		basePath = "./snapshots"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &Local{basePath: basePath}, nil
}

// Export writes rows to basePath/key, creating parent directories as
// needed and overwriting any existing file.
func (l *Local) Export(ctx context.Context, key string, rows []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	full := l.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(full, rows, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func (l *Local) fullPath(key string) string {
	return filepath.Join(l.basePath, key)
}
