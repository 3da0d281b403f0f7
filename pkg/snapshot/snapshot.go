// Package snapshot archives a finished collective result — typically
// the output of Collect(root) — to durable storage. This is archival,
// not fault tolerance: it runs after a computation has already
// finished successfully, and never participates in recovering a failed
// rank (spec.md's fault-tolerance Non-goal is untouched by this).
package snapshot

import (
	"context"
	"fmt"

	"github.com/dmrogers-hpc/dseq/pkg/config"
)

// Exporter writes a finished byte payload to durable storage under key.
type Exporter interface {
	// Export writes rows under key, overwriting any existing object.
	Export(ctx context.Context, key string, rows []byte) error
}

// Type names an Exporter implementation.
type Type string

const (
	TypeLocal Type = "local"
	TypeCOS   Type = "cos"
)

// New builds an Exporter from configuration, selecting the backend by
// cfg.Type.
func New(cfg *config.SnapshotConfig) (Exporter, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	switch Type(cfg.Type) {
	case TypeCOS:
		return NewCOS(&COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
		})
	case TypeLocal, "":
		return NewLocal(cfg.LocalPath)
	default:
		return nil, fmt.Errorf("unsupported snapshot type: %s", cfg.Type)
	}
}

func validate(cfg *config.SnapshotConfig) error {
	if cfg == nil {
		return fmt.Errorf("snapshot config is nil")
	}

	t := Type(cfg.Type)
	if t == "" {
		t = TypeLocal
	}
	if t != TypeLocal && t != TypeCOS {
		return fmt.Errorf("unsupported snapshot type: %s", cfg.Type)
	}

	if t == TypeCOS {
		if cfg.Bucket == "" {
			return fmt.Errorf("cos bucket is required")
		}
		if cfg.Region == "" {
			return fmt.Errorf("cos region is required")
		}
		if cfg.SecretID == "" || cfg.SecretKey == "" {
			return fmt.Errorf("cos credentials are required")
		}
	}

	if t == TypeLocal && cfg.LocalPath == "" {
		return fmt.Errorf("local snapshot path is required")
	}

	return nil
}
