package dseq

import (
	"context"

	dseqerrors "github.com/dmrogers-hpc/dseq/pkg/errors"
	"github.com/dmrogers-hpc/dseq/pkg/repartition"
)

// Repartition resegments a DS[T] of sized, splittable elements into
// exactly n target blocks spread evenly across the cohort (spec §4.H),
// returning this rank's canonical share of the n output elements. Like
// Reduce and Group, splitting into a new block type B is a new type
// parameter a method cannot carry, so this is a package-level function.
//
// Each call draws a fresh, disjoint block of message tags from the
// Context so that two Repartition calls against the same fabric in the
// same program never collide (spec §9).
func Repartition[T, B any](d *DS[T], llen repartition.Len[T], split repartition.Split[T, B], concat repartition.Concat[B, T], n int) (*DS[T], error) {
	ctx := d.ctx
	end := ctx.span("repartition", len(d.e))
	defer end()

	tagBase := ctx.nextTagBase()
	out, err := repartition.Run(context.Background(), ctx.Comm, d.e, llen, split, concat, n, tagBase)
	if err != nil {
		return nil, dseqerrors.Wrap(dseqerrors.CodeTransportFailure, "repartition", err)
	}
	return &DS[T]{ctx: ctx, e: out}, nil
}
