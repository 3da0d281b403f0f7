// Package scan implements the distributed parallel-prefix engine: a
// local inclusive prefix followed by a boundary carry exchange and a
// virtual scan over ranks 1..P-1 built on the pscan schedule.
package scan

import (
	"context"

	"github.com/dmrogers-hpc/dseq/pkg/fabric"
	"github.com/dmrogers-hpc/dseq/pkg/pscan"
)

// Combine folds two elements into their combination; it must be
// associative. Unlike the tree reducer's Combine, this one is
// value-returning rather than in-place, matching the scan facade's
// `elem, elem -> elem` contract.
type Combine[T any] func(a, b T) T

// Local computes the inclusive prefix of e under combine into a new
// slice, leaving e unchanged:
// [e0, combine(e0,e1), combine(combine(e0,e1),e2), ...].
func Local[T any](e []T, combine Combine[T]) []T {
	if len(e) == 0 {
		return nil
	}
	pre := make([]T, len(e))
	pre[0] = e[0]
	for i := 1; i < len(e); i++ {
		pre[i] = combine(pre[i-1], e[i])
	}
	return pre
}

// carry represents "no value yet" (nil/empty) or exactly one pending
// boundary value, mirroring the zero-or-one-element list the original
// boundary-exchange protocol passes around.
type carry[T any] []T

// Engine runs the full distributed scan: a rank-local prefix of e,
// then a boundary exchange and virtual scan across ranks so every
// rank's prefix is corrected for everything that came before it.
func Engine[T any](ctx context.Context, comm fabric.Comm, e []T, combine Combine[T]) ([]T, error) {
	rank := comm.Rank()
	procs := comm.Size()

	pre := Local(e, combine)

	if procs == 1 {
		return pre, nil
	}

	var last carry[T]
	if len(pre) > 0 {
		last = carry[T]{pre[len(pre)-1]}
	}

	var in carry[T]
	var err error
	if rank%2 == 0 {
		if rank != procs-1 {
			if err = send(ctx, comm, last, rank+1, 10); err != nil {
				return nil, err
			}
		}
		if rank == 0 {
			in = nil
		} else if in, err = recv[T](ctx, comm, rank-1, 11); err != nil {
			return nil, err
		}
	} else {
		if in, err = recv[T](ctx, comm, rank-1, 10); err != nil {
			return nil, err
		}
		if rank != procs-1 {
			if err = send(ctx, comm, last, rank+1, 11); err != nil {
				return nil, err
			}
		}
	}
	last = in

	if rank > 0 {
		vrank := rank - 1
		sch := pscan.Schedule(procs - 1)
		for i, sl := range sch {
			off := sl.Step / 2
			switch {
			case vrank >= sl.Start && vrank < sl.Stop && (vrank-sl.Start)%sl.Step == 0:
				if err := send(ctx, comm, last, rank+off, i); err != nil {
					return nil, err
				}
			case vrank >= sl.Start+off && (vrank-sl.Start-off)%sl.Step == 0:
				u, err := recv[T](ctx, comm, rank-off, i)
				if err != nil {
					return nil, err
				}
				switch {
				case len(last) == 0:
					last = u
				case len(u) != 0:
					last = carry[T]{combine(u[0], last[0])}
				}
			}
		}
	}

	if len(last) > 0 {
		for i := range pre {
			pre[i] = combine(last[0], pre[i])
		}
	}

	return pre, nil
}

func send[T any](ctx context.Context, comm fabric.Comm, c carry[T], dest, tag int) error {
	return comm.Send(ctx, c, dest, tag)
}

func recv[T any](ctx context.Context, comm fabric.Comm, source, tag int) (carry[T], error) {
	v, err := comm.Recv(ctx, source, tag)
	if err != nil {
		return nil, err
	}
	return v.(carry[T]), nil
}
