// Package audit records one row per collective call (operation, rank,
// cohort size, element count, duration) to a pluggable sink, for
// after-the-fact observability of a distributed run. It is entirely
// optional: pkg/dseq only calls a Recorder when one is attached to its
// Context, and a disabled Recorder is a silent no-op.
package audit

import (
	"context"
	"time"
)

// Record is one audited collective call.
type Record struct {
	Op        string
	Rank      int
	Procs     int
	Elements  int
	Duration  time.Duration
	CreatedAt time.Time
}

// Recorder persists Records. Implementations must not block the
// collective they're observing for longer than necessary; callers
// typically record after the collective has already returned.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// noop discards every record; this is the default Recorder when
// audit is disabled in configuration.
type noop struct{}

// NewNoop returns a Recorder that discards everything.
func NewNoop() Recorder { return noop{} }

func (noop) Record(ctx context.Context, rec Record) error { return nil }
