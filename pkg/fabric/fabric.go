// Package fabric defines the message-passing transport the
// distributed-sequence algebra is built on. The transport itself is an
// external collaborator (spec §6): this package only states the
// contract and ships one concrete, in-process implementation
// (Local) used for single-binary simulation and the test suite. A
// networked implementation is out of scope.
package fabric

import "context"

// Request is a waitable handle returned by a non-blocking send or
// receive.
type Request interface {
	// Wait blocks until the request completes. For a receive request
	// it returns the received value; for a send request the value is
	// nil.
	Wait() (any, error)
}

// Comm is a per-process handle to the message-passing fabric. Every
// method may block the calling goroutine until its peers participate;
// the collective methods (Gather, Allgather, AllreduceSum, Bcast) must
// be invoked by every rank, in the same relative order, or the call
// deadlocks — detecting that misuse is explicitly out of scope (spec
// §7).
type Comm interface {
	Rank() int
	Size() int

	Send(ctx context.Context, obj any, dest, tag int) error
	Recv(ctx context.Context, source, tag int) (any, error)
	ISend(obj any, dest, tag int) Request
	IRecv(source, tag int) Request

	// Gather collects obj from every rank to root. Non-root ranks
	// receive a nil slice.
	Gather(ctx context.Context, obj any, root int) ([]any, error)
	// Allgather collects obj from every rank, to every rank.
	Allgather(ctx context.Context, obj any) ([]any, error)
	// AllreduceSum returns the sum of v across all ranks, to every
	// rank.
	AllreduceSum(ctx context.Context, v int64) (int64, error)
	// Bcast distributes obj from root to every rank. Non-root callers'
	// obj argument is ignored.
	Bcast(ctx context.Context, obj any, root int) (any, error)

	// SendBytes/RecvBytes carry a bulk byte-addressable buffer over a
	// raw path, bypassing generic object encoding; used by the tree
	// reducer's chunked transport for typed array payloads.
	SendBytes(ctx context.Context, buf []byte, dest, tag int) error
	RecvBytes(ctx context.Context, n int, source, tag int) ([]byte, error)
}
