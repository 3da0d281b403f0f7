package dseq

import (
	"context"

	dseqerrors "github.com/dmrogers-hpc/dseq/pkg/errors"
)

// DS is a distributed ordered sequence of T, partitioned across the
// ranks of a Context. Every collective returns a new DS rather than
// mutating the old one; the per-rank local buffer is otherwise an
// ordinary Go slice.
type DS[T any] struct {
	ctx *Context
	e   []T
}

// Ctx returns the DS's Context.
func (d *DS[T]) Ctx() *Context { return d.ctx }

// Local returns this rank's local buffer. Callers must not retain a
// mutable reference across further collective calls that might reuse
// the slice's backing array.
func (d *DS[T]) Local() []T { return d.e }

// NewLocal wraps an already-partitioned local buffer into a DS. Used
// to seed a DS from data a rank already holds (e.g. reading its own
// shard of a file); callers are responsible for the partitioning being
// sane across ranks.
func NewLocal[T any](ctx *Context, local []T) *DS[T] {
	return &DS[T]{ctx: ctx, e: local}
}

// Len returns the DS's total length, identical on every rank
// (allreduce-sum of local lengths).
func (d *DS[T]) Len() (int, error) {
	end := d.span("len")
	defer end()
	total, err := d.ctx.Comm.AllreduceSum(context.Background(), int64(len(d.e)))
	if err != nil {
		return 0, dseqerrors.Wrap(dseqerrors.CodeTransportFailure, "len: allreduce", err)
	}
	return int(total), nil
}

// Map applies f to every element, preserving order and partitioning.
func (d *DS[T]) Map(f func(T) T) *DS[T] {
	end := d.span("map")
	defer end()
	out := make([]T, len(d.e))
	for i, v := range d.e {
		out[i] = f(v)
	}
	return &DS[T]{ctx: d.ctx, e: out}
}

// Filter keeps elements for which p returns true, preserving order.
func (d *DS[T]) Filter(p func(T) bool) *DS[T] {
	end := d.span("filter")
	defer end()
	var out []T
	for _, v := range d.e {
		if p(v) {
			out = append(out, v)
		}
	}
	return &DS[T]{ctx: d.ctx, e: out}
}

// FlatMap applies f to every element and concatenates the results,
// preserving order.
func (d *DS[T]) FlatMap(f func(T) []T) *DS[T] {
	end := d.span("flatMap")
	defer end()
	var out []T
	for _, v := range d.e {
		out = append(out, f(v)...)
	}
	return &DS[T]{ctx: d.ctx, e: out}
}

// NodeMap replaces this rank's local buffer with f(rank, local). f is
// called exactly once per rank (an earlier revision of this protocol
// called it twice; that bug is not carried forward). f must return a
// slice; there is nothing further to assert in Go's type system.
func (d *DS[T]) NodeMap(f func(rank int, local []T) []T) *DS[T] {
	end := d.span("nodeMap")
	defer end()
	return &DS[T]{ctx: d.ctx, e: f(d.ctx.Rank, d.e)}
}

// Head returns the first n elements of the global sequence to every
// rank, walking ranks in order and broadcasting just enough from each.
func (d *DS[T]) Head(n int) ([]T, error) {
	end := d.span("head")
	defer end()
	ctx := context.Background()
	var ans []T
	for root := 0; len(ans) < n && root < d.ctx.Procs; root++ {
		var data []T
		if root == d.ctx.Rank {
			take := n - len(ans)
			if take > len(d.e) {
				take = len(d.e)
			}
			data = d.e[:take]
		}
		v, err := d.ctx.Comm.Bcast(ctx, data, root)
		if err != nil {
			return nil, dseqerrors.Wrap(dseqerrors.CodeTransportFailure, "head: bcast", err)
		}
		ans = append(ans, v.([]T)...)
	}
	return ans, nil
}

// Collect gathers the global sequence, in order, to root. Every other
// rank gets nil. Every rank must still call Collect.
func (d *DS[T]) Collect(root int) ([]T, error) {
	end := d.span("collect")
	defer end()
	lists, err := d.ctx.Comm.Gather(context.Background(), d.e, root)
	if err != nil {
		return nil, dseqerrors.Wrap(dseqerrors.CodeTransportFailure, "collect: gather", err)
	}
	if d.ctx.Rank != root {
		return nil, nil
	}
	var out []T
	for _, v := range lists {
		out = append(out, v.([]T)...)
	}
	return out, nil
}

// CollectAll gathers the global sequence, in order, to every rank.
// Equivalent to Collect(0) followed by a broadcast, but done with a
// single allgather.
func (d *DS[T]) CollectAll() ([]T, error) {
	end := d.span("collectAll")
	defer end()
	lists, err := d.ctx.Comm.Allgather(context.Background(), d.e)
	if err != nil {
		return nil, dseqerrors.Wrap(dseqerrors.CodeTransportFailure, "collectAll: allgather", err)
	}
	var out []T
	for _, v := range lists {
		out = append(out, v.([]T)...)
	}
	return out, nil
}
