package audit

import (
	"fmt"

	"github.com/dmrogers-hpc/dseq/pkg/config"
)

// New builds the Recorder named by cfg: a no-op when audit recording
// is disabled (the default), otherwise a GORM-backed Recorder for
// driver "gorm" (or empty). Driver "sql" returns an error, since a
// SQLRecorder needs an already-open *sql.DB and is built with
// NewSQLRecorder instead.
func New(cfg *config.AuditConfig) (Recorder, error) {
	if cfg == nil || !cfg.Enabled {
		return NewNoop(), nil
	}

	switch cfg.Driver {
	case "gorm", "":
		db, err := NewGormDB(cfg)
		if err != nil {
			return nil, err
		}
		return NewGormRecorder(db), nil
	case "sql":
		return nil, fmt.Errorf("audit driver %q requires a pre-opened *sql.DB; construct a SQLRecorder directly", cfg.Driver)
	default:
		return nil, fmt.Errorf("unsupported audit driver: %s", cfg.Driver)
	}
}
