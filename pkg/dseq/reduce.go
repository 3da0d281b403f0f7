package dseq

import (
	"context"

	dseqerrors "github.com/dmrogers-hpc/dseq/pkg/errors"
	"github.com/dmrogers-hpc/dseq/pkg/reduce"
)

// Reduce folds a DS[T] to a single value of accumulator type A. Since
// Go methods cannot introduce new type parameters, this is a
// package-level function rather than a DS method (spec §9's "Reduce is
// not expressible as a method" note).
//
// zero is the starting accumulator, one per rank. fold is called once
// per local element, in order, to mutate the accumulator in place:
//
//	acc := zero
//	fold(&acc, e)
//
// merge then combines partial accumulators pairwise across ranks via
// the binary-tournament tree reducer, also in place. fold and merge
// may be the same operation lifted to two call shapes, or genuinely
// different — the tree reducer only ever calls merge, never fold.
//
// If distribute is true (the common case) the final answer is
// broadcast from rank 0 so every rank returns the same value;
// otherwise only rank 0's return value is meaningful.
func Reduce[T, A any](d *DS[T], zero A, fold func(acc *A, e T), merge reduce.Combine[A], distribute bool) (A, error) {
	ctx := d.ctx
	end := ctx.span("reduce", len(d.e))
	defer end()

	acc := zero
	for _, e := range d.e {
		fold(&acc, e)
	}

	if err := reduce.Tree(context.Background(), ctx.Comm, &acc, merge); err != nil {
		var zeroA A
		return zeroA, dseqerrors.Wrap(dseqerrors.CodeTransportFailure, "reduce: tree", err)
	}

	if !distribute {
		return acc, nil
	}

	v, err := ctx.Comm.Bcast(context.Background(), acc, 0)
	if err != nil {
		var zeroA A
		return zeroA, dseqerrors.Wrap(dseqerrors.CodeTransportFailure, "reduce: bcast", err)
	}
	return v.(A), nil
}
