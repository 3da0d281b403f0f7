package dseq

import (
	"context"

	dseqerrors "github.com/dmrogers-hpc/dseq/pkg/errors"
	"github.com/dmrogers-hpc/dseq/pkg/scan"
)

// Scan returns the distributed inclusive prefix of the DS under
// combine, which must be associative: out[i] = e[0] combine ... combine
// e[i], in global order. combine is never called concurrently with
// itself.
func (d *DS[T]) Scan(combine func(a, b T) T) (*DS[T], error) {
	end := d.span("scan")
	defer end()
	out, err := scan.Engine(context.Background(), d.ctx.Comm, d.e, scan.Combine[T](combine))
	if err != nil {
		return nil, dseqerrors.Wrap(dseqerrors.CodeTransportFailure, "scan", err)
	}
	return &DS[T]{ctx: d.ctx, e: out}, nil
}
