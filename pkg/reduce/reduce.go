// Package reduce implements the binary-tournament tree reducer:
// O(log P) fan-in combine of one value per rank down to a single
// answer at rank 0.
package reduce

import (
	"context"

	"github.com/dmrogers-hpc/dseq/pkg/fabric"
)

// ChunkSize bounds a single raw-byte transfer; payloads larger than
// this are split across multiple tagged sends, since some transports
// cap a single message's length.
const ChunkSize = 1 << 30

// BulkCodec lets an accumulator type opt into the raw-byte chunked
// transport instead of the generic object path. Bytes must always
// report the same length for values of a given logical shape (the
// reducer assumes the incoming value is the same size as the local
// accumulator); LoadBytes must decode exactly that many bytes back
// into a value of the codec's own concrete type.
type BulkCodec interface {
	Bytes() []byte
	LoadBytes([]byte) any
}

// Combine mutates dst in place to fold src into it. It must be
// associative and, if the caller also needs commutativity, commutative
// too — the tree reducer does not guarantee any particular pairing
// order beyond "own rank before received rank".
type Combine[A any] func(dst *A, src A)

// Tree runs one binary-tournament reduction of *acc across every rank
// in comm, mutating *acc via combine at each receiving rank. Only rank
// 0 is guaranteed to hold the fully combined answer when Tree returns;
// every other rank's *acc is left in an intermediate, unspecified
// state (most ranks end by sending their value away). Callers that
// need the result everywhere should Bcast it from rank 0 afterwards.
func Tree[A any](ctx context.Context, comm fabric.Comm, acc *A, combine Combine[A]) error {
	rank := comm.Rank()
	procs := comm.Size()

	step := 1
	lev := 0
	for step < procs {
		lev++
		if rank%step != 0 {
			break
		}

		if rank%(2*step) == 0 {
			if rank+step < procs {
				src, err := recv(ctx, comm, acc, rank+step, lev)
				if err != nil {
					return err
				}
				combine(acc, src)
			}
		} else {
			if err := send(ctx, comm, acc, rank-step, lev); err != nil {
				return err
			}
			break
		}
		step *= 2
	}
	return nil
}

func recv[A any](ctx context.Context, comm fabric.Comm, acc *A, source, lev int) (A, error) {
	if bc, ok := any(*acc).(BulkCodec); ok {
		return fastRecv[A](ctx, comm, bc, source, lev)
	}
	var zero A
	v, err := comm.Recv(ctx, source, lev)
	if err != nil {
		return zero, err
	}
	return v.(A), nil
}

func send[A any](ctx context.Context, comm fabric.Comm, acc *A, dest, lev int) error {
	if bc, ok := any(*acc).(BulkCodec); ok {
		return fastSend(ctx, comm, bc, dest, lev)
	}
	return comm.Send(ctx, *acc, dest, lev)
}

// numChunks returns how many ChunkSize-capped pieces nbytes splits
// into (0 bytes still needs one, empty, transfer).
func numChunks(nbytes int) int {
	if nbytes == 0 {
		return 1
	}
	return (nbytes + ChunkSize - 1) / ChunkSize
}

func fastSend(ctx context.Context, comm fabric.Comm, bc BulkCodec, dest, lev int) error {
	data := bc.Bytes()
	n := len(data)
	for k := 0; k < numChunks(n); k++ {
		off := k * ChunkSize
		end := off + ChunkSize
		if end > n {
			end = n
		}
		if err := comm.SendBytes(ctx, data[off:end], dest, 100*lev+k); err != nil {
			return err
		}
	}
	return nil
}

func fastRecv[A any](ctx context.Context, comm fabric.Comm, bc BulkCodec, source, lev int) (A, error) {
	var zero A
	n := len(bc.Bytes())
	buf := make([]byte, 0, n)
	for k := 0; k < numChunks(n); k++ {
		off := k * ChunkSize
		end := off + ChunkSize
		if end > n {
			end = n
		}
		chunk, err := comm.RecvBytes(ctx, end-off, source, 100*lev+k)
		if err != nil {
			return zero, err
		}
		buf = append(buf, chunk...)
	}
	return bc.LoadBytes(buf).(A), nil
}
