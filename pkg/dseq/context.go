// Package dseq is the distributed-sequence facade: Context, DS[T], and
// the operation algebra (map/filter/flatMap/reduce/scan/collect/
// nodeMap/head/group/repartition) built on pkg/partition, pkg/segment,
// pkg/fill, pkg/pscan, pkg/reduce, pkg/scan, pkg/group,
// pkg/repartition, pkg/schedule and pkg/fabric. Every exported method
// here is a collective: every rank must call it, in the same program
// order, with arguments that agree in shape (spec §5).
package dseq

import (
	"sync/atomic"

	"github.com/dmrogers-hpc/dseq/internal/audit"
	"github.com/dmrogers-hpc/dseq/pkg/fabric"
	"github.com/dmrogers-hpc/dseq/pkg/partition"
	"github.com/dmrogers-hpc/dseq/pkg/utils"
)

// Context is the process-wide handle every collective is built
// against: its own rank, the cohort size, the message-passing
// endpoint, and a logger. Create one per process at startup; it lives
// for the life of the program.
type Context struct {
	Rank  int
	Procs int
	Comm  fabric.Comm
	Log   utils.Logger

	// Audit is an optional durable per-collective recorder (see
	// internal/audit); a nil Audit is a silent no-op, so the core
	// library never requires it.
	Audit audit.Recorder

	// tagBase hands out disjoint message-tag ranges to successive
	// repartition calls, so two repartitions in the same program
	// don't collide on tags derived from segment index (spec §9).
	tagBase atomic.Int64
}

// tagSpace is generous enough that no single repartition call's
// segment count will overflow into the next call's range.
const tagSpace = 1 << 20

// NewContext builds a Context around an already-constructed fabric
// handle. comm.Rank()/comm.Size() are read once and cached.
func NewContext(comm fabric.Comm, log utils.Logger) *Context {
	rank, procs := comm.Rank(), comm.Size()
	return &Context{
		Rank:  rank,
		Procs: procs,
		Comm:  comm,
		Log:   utils.NewCollectiveLogger(log, rank, procs),
	}
}

// WithAudit attaches a Recorder that every subsequent collective on c
// reports to, and returns c for chaining. Passing nil restores the
// silent no-op behavior.
func (c *Context) WithAudit(rec audit.Recorder) *Context {
	c.Audit = rec
	return c
}

func (c *Context) nextTagBase() int {
	return int(c.tagBase.Add(tagSpace)) - tagSpace
}

// Iterates returns a DS holding the integers [0, n). In blocked mode
// (the default) rank r gets the contiguous canonical block of
// [0,n) (spec §4.A). In round-robin mode rank r gets {r, r+P, r+2P,
// ...}; this is the one case where global ordering is intentionally
// broken, so a subsequent Collect yields an interleaved order.
func (c *Context) Iterates(n int, roundRobin bool) *DS[int] {
	if roundRobin {
		var e []int
		for i := c.Rank; i < n; i += c.Procs {
			e = append(e, i)
		}
		return &DS[int]{ctx: c, e: e}
	}
	lo, hi := partition.Block(n, c.Procs, c.Rank)
	e := make([]int, hi-lo)
	for i := range e {
		e[i] = lo + i
	}
	return &DS[int]{ctx: c, e: e}
}
