package dseq

import (
	"context"

	dseqerrors "github.com/dmrogers-hpc/dseq/pkg/errors"
	"github.com/dmrogers-hpc/dseq/pkg/group"
)

// Group buckets a DS[T] by key into n groups and concatenates each
// group's contributions into one output element, returning this
// rank's canonical block of [0, n) in ascending-key order (spec §4.G).
// classify may emit zero or more (key, item) pairs per source element.
// Like Reduce, this takes new type parameters (I, O) a method cannot
// introduce, so it is a package-level function.
func Group[T, I, O any](d *DS[T], classify group.Classify[T, I], concat group.Concat[I, O], n int) (*DS[O], error) {
	ctx := d.ctx
	end := ctx.span("group", len(d.e))
	defer end()

	out, err := group.Group(context.Background(), ctx.Comm, d.e, classify, concat, n)
	if err != nil {
		return nil, dseqerrors.Wrap(dseqerrors.CodeTransportFailure, "group", err)
	}
	return &DS[O]{ctx: ctx, e: out}, nil
}
