package dseq

import (
	"context"
	"time"

	"github.com/dmrogers-hpc/dseq/internal/audit"
	"github.com/dmrogers-hpc/dseq/pkg/telemetry"
)

// span starts a telemetry span for one collective call on d's Context
// and logs it at debug level; the returned func ends the span and must
// be deferred immediately by the caller.
func (d *DS[T]) span(op string) func() {
	return d.ctx.span(op, len(d.e))
}

// span starts a telemetry span for a collective call on c, with n
// local elements (used directly by the package-level
// Reduce/Group/Repartition functions, which read the Context from
// their *DS argument). It also feeds the
// Context's audit Recorder, if one is attached, so a binary can keep a
// durable per-collective log alongside the in-process trace.
func (c *Context) span(op string, n int) func() {
	start := time.Now()
	_, end := telemetry.Collective(context.Background(), op, c.Rank, c.Procs)
	c.Log.Debug("dseq: %s (local=%d)", op, n)
	return func() {
		end()
		if c.Audit == nil {
			return
		}
		if err := c.Audit.Record(context.Background(), audit.Record{
			Op:        op,
			Rank:      c.Rank,
			Procs:     c.Procs,
			Elements:  n,
			Duration:  time.Since(start),
			CreatedAt: start,
		}); err != nil {
			c.Log.Warn("dseq: audit record failed for %s: %v", op, err)
		}
	}
}
