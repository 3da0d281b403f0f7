package fabric

import (
	"context"
	"sort"
	"sync"
	"testing"
)

// runRanks launches one goroutine per rank against a shared World and
// waits for all of them to return.
func runRanks(procs int, fn func(rank int, c Comm)) {
	w := NewWorld(procs)
	var wg sync.WaitGroup
	wg.Add(procs)
	for r := 0; r < procs; r++ {
		r := r
		go func() {
			defer wg.Done()
			fn(r, w.Rank(r))
		}()
	}
	wg.Wait()
}

func TestLocalSendRecvPointToPoint(t *testing.T) {
	const procs = 4
	runRanks(procs, func(rank int, c Comm) {
		next := (rank + 1) % procs
		prev := (rank - 1 + procs) % procs
		if err := c.Send(context.Background(), rank*10, next, 7); err != nil {
			t.Errorf("rank %d: send: %v", rank, err)
		}
		v, err := c.Recv(context.Background(), prev, 7)
		if err != nil {
			t.Errorf("rank %d: recv: %v", rank, err)
			return
		}
		if v.(int) != prev*10 {
			t.Errorf("rank %d: got %v, want %d", rank, v, prev*10)
		}
	})
}

func TestLocalSendRecvTagsDontCross(t *testing.T) {
	const procs = 2
	runRanks(procs, func(rank int, c Comm) {
		if rank == 0 {
			c.Send(context.Background(), "low", 1, 1)
			c.Send(context.Background(), "high", 1, 2)
			return
		}
		hi, err := c.Recv(context.Background(), 0, 2)
		if err != nil || hi.(string) != "high" {
			t.Errorf("tag 2: got %v, err=%v", hi, err)
		}
		lo, err := c.Recv(context.Background(), 0, 1)
		if err != nil || lo.(string) != "low" {
			t.Errorf("tag 1: got %v, err=%v", lo, err)
		}
	})
}

func TestLocalISendIRecv(t *testing.T) {
	const procs = 2
	runRanks(procs, func(rank int, c Comm) {
		if rank == 0 {
			req := c.ISend(42, 1, 3)
			if _, err := req.Wait(); err != nil {
				t.Errorf("isend wait: %v", err)
			}
			return
		}
		req := c.IRecv(0, 3)
		v, err := req.Wait()
		if err != nil || v.(int) != 42 {
			t.Errorf("irecv: got %v, err=%v", v, err)
		}
	})
}

func TestLocalGather(t *testing.T) {
	const procs = 5
	const root = 2
	runRanks(procs, func(rank int, c Comm) {
		got, err := c.Gather(context.Background(), rank*rank, root)
		if err != nil {
			t.Errorf("rank %d: gather: %v", rank, err)
			return
		}
		if rank != root {
			if got != nil {
				t.Errorf("rank %d: non-root got %v, want nil", rank, got)
			}
			return
		}
		if len(got) != procs {
			t.Fatalf("root: got %d values, want %d", len(got), procs)
		}
		for i, v := range got {
			if v.(int) != i*i {
				t.Errorf("root: got[%d]=%v, want %d", i, v, i*i)
			}
		}
	})
}

func TestLocalGatherReusedAcrossCalls(t *testing.T) {
	const procs = 3
	const root = 0
	runRanks(procs, func(rank int, c Comm) {
		for round := 0; round < 5; round++ {
			got, err := c.Gather(context.Background(), rank+round*100, root)
			if err != nil {
				t.Fatalf("round %d: %v", round, err)
			}
			if rank == root {
				for i, v := range got {
					want := i + round*100
					if v.(int) != want {
						t.Fatalf("round %d: got[%d]=%v, want %d", round, i, v, want)
					}
				}
			}
		}
	})
}

func TestLocalAllgather(t *testing.T) {
	const procs = 4
	runRanks(procs, func(rank int, c Comm) {
		got, err := c.Allgather(context.Background(), rank)
		if err != nil {
			t.Fatalf("rank %d: allgather: %v", rank, err)
		}
		if len(got) != procs {
			t.Fatalf("rank %d: got %d values, want %d", rank, len(got), procs)
		}
		ints := make([]int, len(got))
		for i, v := range got {
			ints[i] = v.(int)
		}
		sort.Ints(ints)
		for i, v := range ints {
			if v != i {
				t.Fatalf("rank %d: allgather contents wrong: %v", rank, ints)
			}
		}
	})
}

func TestLocalAllreduceSum(t *testing.T) {
	const procs = 6
	runRanks(procs, func(rank int, c Comm) {
		sum, err := c.AllreduceSum(context.Background(), int64(rank))
		if err != nil {
			t.Fatalf("rank %d: allreduce: %v", rank, err)
		}
		if sum != 15 { // 0+1+2+3+4+5
			t.Fatalf("rank %d: got sum %d, want 15", rank, sum)
		}
	})
}

func TestLocalBcast(t *testing.T) {
	const procs = 4
	const root = 3
	runRanks(procs, func(rank int, c Comm) {
		var v any
		if rank == root {
			v = "hello"
		}
		got, err := c.Bcast(context.Background(), v, root)
		if err != nil {
			t.Fatalf("rank %d: bcast: %v", rank, err)
		}
		if got.(string) != "hello" {
			t.Fatalf("rank %d: got %v, want hello", rank, got)
		}
	})
}

func TestLocalSendBytesRecvBytes(t *testing.T) {
	const procs = 2
	buf := []byte("chunked payload")
	runRanks(procs, func(rank int, c Comm) {
		if rank == 0 {
			if err := c.SendBytes(context.Background(), buf, 1, 9); err != nil {
				t.Fatalf("sendbytes: %v", err)
			}
			return
		}
		got, err := c.RecvBytes(context.Background(), len(buf), 0, 9)
		if err != nil {
			t.Fatalf("recvbytes: %v", err)
		}
		if string(got) != string(buf) {
			t.Fatalf("got %q, want %q", got, buf)
		}
	})
}

func TestLocalContextCancelUnblocksRecv(t *testing.T) {
	w := NewWorld(2)
	c := w.Rank(0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Recv(ctx, 1, 0)
		done <- err
	}()
	cancel()
	if err := <-done; err == nil {
		t.Fatal("expected Recv to return an error after cancel")
	}
}
