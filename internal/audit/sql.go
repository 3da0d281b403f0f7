package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLRecorder persists Records through database/sql directly, for
// deployments that want the audit table managed outside GORM's
// migrations. Exercised in tests with go-sqlmock rather than a live
// database.
type SQLRecorder struct {
	db *sql.DB
}

// NewSQLRecorder wraps an already-open *sql.DB. The caller is
// responsible for the collective_calls table already existing.
func NewSQLRecorder(db *sql.DB) *SQLRecorder {
	return &SQLRecorder{db: db}
}

// Record inserts one row describing a finished collective call.
func (r *SQLRecorder) Record(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO collective_calls (op, rank, procs, elements, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.Op, rec.Rank, rec.Procs, rec.Elements, rec.Duration.Nanoseconds(), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}
