package fabric

import (
	"context"
	"fmt"
	"sync"
)

// mailKey addresses a FIFO channel between one ordered (src,dst) pair
// under one tag. Point-to-point traffic is never reordered within a
// key; traffic under different keys has no ordering relationship.
type mailKey struct {
	src, dst, tag int
}

// mailbox is an unbounded, order-preserving queue: Send never blocks
// on the receiver being ready, matching the "post then wait" shape the
// reducer/scan/schedule packages build on.
type mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []any
	closed bool
}

func newMailbox() *mailbox {
	m := &mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func (m *mailbox) push(v any) {
	m.mu.Lock()
	m.queue = append(m.queue, v)
	m.cond.Signal()
	m.mu.Unlock()
}

func (m *mailbox) pop(ctx context.Context) (any, error) {
	done := make(chan struct{})
	defer close(done)
	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				m.mu.Lock()
				m.cond.Broadcast()
				m.mu.Unlock()
			case <-done:
			}
		}()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.queue) == 0 {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		m.cond.Wait()
	}
	v := m.queue[0]
	m.queue = m.queue[1:]
	return v, nil
}

// rendezvous is a reusable barrier: procs participants each hand in a
// value, the last arrival computes the round's result for everyone,
// and the generation counter flips so the same rendezvous can be used
// again by the next collective call in program order.
type rendezvous struct {
	mu         sync.Mutex
	cond       *sync.Cond
	procs      int
	generation int
	arrived    int
	values     []any
	result     []any
}

func newRendezvous(procs int) *rendezvous {
	r := &rendezvous{procs: procs, values: make([]any, procs)}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// round hands in v from rank and returns every rank's contribution, in
// rank order, once all procs ranks have called round for this
// generation.
func (r *rendezvous) round(rank int, v any) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	myGen := r.generation
	r.values[rank] = v
	r.arrived++
	if r.arrived == r.procs {
		r.result = append([]any(nil), r.values...)
		r.values = make([]any, r.procs)
		r.arrived = 0
		r.generation++
		r.cond.Broadcast()
		return r.result
	}
	for r.generation == myGen {
		r.cond.Wait()
	}
	return r.result
}

// World is the shared state backing every rank's Local handle: it owns
// the point-to-point mailboxes and the per-root/global rendezvous
// points the collectives use. Construct one World with NewWorld and
// hand every rank its own *Local via Rank.
type World struct {
	procs int

	mu       sync.Mutex
	mailbox  map[mailKey]*mailbox
	gather   map[int]*rendezvous // keyed by root
	bcast    map[int]*rendezvous // keyed by root
	allgath  *rendezvous
	allreduc *rendezvous
}

// NewWorld creates a Local fabric simulating procs single-threaded
// ranks running as goroutines in this process.
func NewWorld(procs int) *World {
	if procs <= 0 {
		panic("fabric: procs must be positive")
	}
	return &World{
		procs:    procs,
		mailbox:  make(map[mailKey]*mailbox),
		gather:   make(map[int]*rendezvous),
		bcast:    make(map[int]*rendezvous),
		allgath:  newRendezvous(procs),
		allreduc: newRendezvous(procs),
	}
}

// Rank returns the Comm handle for the given rank. Call once per rank
// and run each on its own goroutine.
func (w *World) Rank(rank int) *Local {
	if rank < 0 || rank >= w.procs {
		panic(fmt.Sprintf("fabric: rank %d out of range [0,%d)", rank, w.procs))
	}
	return &Local{world: w, rank: rank}
}

func (w *World) box(key mailKey) *mailbox {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.mailbox[key]
	if !ok {
		b = newMailbox()
		w.mailbox[key] = b
	}
	return b
}

func (w *World) gatherPoint(root int) *rendezvous {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.gather[root]
	if !ok {
		r = newRendezvous(w.procs)
		w.gather[root] = r
	}
	return r
}

func (w *World) bcastPoint(root int) *rendezvous {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.bcast[root]
	if !ok {
		r = newRendezvous(w.procs)
		w.bcast[root] = r
	}
	return r
}

// Local is the in-process Comm implementation: every rank is a
// goroutine sharing one World. It is the fabric used by the in-memory
// simulation runner and by the test suite; a real cluster transport is
// out of scope.
type Local struct {
	world *World
	rank  int
}

var _ Comm = (*Local)(nil)

func (l *Local) Rank() int { return l.rank }
func (l *Local) Size() int { return l.world.procs }

func (l *Local) Send(ctx context.Context, obj any, dest, tag int) error {
	l.world.box(mailKey{l.rank, dest, tag}).push(obj)
	return nil
}

func (l *Local) Recv(ctx context.Context, source, tag int) (any, error) {
	return l.world.box(mailKey{source, l.rank, tag}).pop(ctx)
}

type sendRequest struct{}

func (sendRequest) Wait() (any, error) { return nil, nil }

func (l *Local) ISend(obj any, dest, tag int) Request {
	l.world.box(mailKey{l.rank, dest, tag}).push(obj)
	return sendRequest{}
}

type recvRequest struct {
	box    *mailbox
	result chan any
	err    chan error
}

func (r recvRequest) Wait() (any, error) {
	return <-r.result, <-r.err
}

func (l *Local) IRecv(source, tag int) Request {
	box := l.world.box(mailKey{source, l.rank, tag})
	result := make(chan any, 1)
	errc := make(chan error, 1)
	go func() {
		v, err := box.pop(context.Background())
		result <- v
		errc <- err
	}()
	return recvRequest{box: box, result: result, err: errc}
}

func (l *Local) Gather(ctx context.Context, obj any, root int) ([]any, error) {
	vals := l.world.gatherPoint(root).round(l.rank, obj)
	if l.rank != root {
		return nil, nil
	}
	return vals, nil
}

func (l *Local) Allgather(ctx context.Context, obj any) ([]any, error) {
	return l.world.allgath.round(l.rank, obj), nil
}

func (l *Local) AllreduceSum(ctx context.Context, v int64) (int64, error) {
	vals := l.world.allreduc.round(l.rank, v)
	var sum int64
	for _, x := range vals {
		sum += x.(int64)
	}
	return sum, nil
}

func (l *Local) Bcast(ctx context.Context, obj any, root int) (any, error) {
	var in any
	if l.rank == root {
		in = obj
	}
	vals := l.world.bcastPoint(root).round(l.rank, in)
	return vals[root], nil
}

func (l *Local) SendBytes(ctx context.Context, buf []byte, dest, tag int) error {
	cp := append([]byte(nil), buf...)
	l.world.box(mailKey{l.rank, dest, tag}).push(cp)
	return nil
}

func (l *Local) RecvBytes(ctx context.Context, n int, source, tag int) ([]byte, error) {
	v, err := l.world.box(mailKey{source, l.rank, tag}).pop(ctx)
	if err != nil {
		return nil, err
	}
	buf := v.([]byte)
	if len(buf) != n {
		return nil, fmt.Errorf("fabric: expected %d bytes from rank %d tag %d, got %d", n, source, tag, len(buf))
	}
	return buf, nil
}
