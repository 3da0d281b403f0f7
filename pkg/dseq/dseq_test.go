package dseq

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmrogers-hpc/dseq/internal/audit"
	"github.com/dmrogers-hpc/dseq/pkg/fabric"
	"github.com/dmrogers-hpc/dseq/pkg/group"
	"github.com/dmrogers-hpc/dseq/pkg/repartition"
	"github.com/dmrogers-hpc/dseq/pkg/utils"
)

// runRanks spawns procs goroutines sharing one in-process fabric and
// hands each its own Context, mirroring the pattern used throughout
// the lower-level package tests.
func runRanks(procs int, fn func(ctx *Context)) {
	w := fabric.NewWorld(procs)
	var wg sync.WaitGroup
	wg.Add(procs)
	for r := 0; r < procs; r++ {
		r := r
		go func() {
			defer wg.Done()
			fn(NewContext(w.Rank(r), &utils.NullLogger{}))
		}()
	}
	wg.Wait()
}

// scenario 1: iterates(97).map(ones_vector).collect() on rank 0
// returns 97 vectors where the i-th has length i.
func TestScenarioIteratesMapCollect(t *testing.T) {
	const n = 97
	const procs = 4

	runRanks(procs, func(ctx *Context) {
		d := ctx.Iterates(n, false)

		vecs := make([][]int, len(d.Local()))
		for i, x := range d.Local() {
			vecs[i] = make([]int, x)
			for k := range vecs[i] {
				vecs[i][k] = 1
			}
		}
		vds := NewLocal(ctx, vecs)
		out, err := vds.Collect(0)
		if err != nil {
			t.Fatalf("rank %d: collect: %v", ctx.Rank, err)
		}
		if ctx.Rank != 0 {
			return
		}
		if len(out) != n {
			t.Fatalf("got %d vectors, want %d", len(out), n)
		}
		for i, v := range out {
			if len(v) != i {
				t.Errorf("vector %d has length %d, want %d", i, len(v), i)
			}
		}
	})
}

// scenario 2: iterates(101).map(lambda x:[x]).reduce(append, [])
// yields [0,1,...,100].
func TestScenarioReduceAppend(t *testing.T) {
	const n = 101
	const procs = 5

	runRanks(procs, func(ctx *Context) {
		d := ctx.Iterates(n, false)
		got, err := Reduce[int, []int](
			d,
			nil,
			func(acc *[]int, e int) { *acc = append(*acc, e) },
			func(dst *[]int, src []int) { *dst = append(*dst, src...) },
			true,
		)
		if err != nil {
			t.Fatalf("rank %d: reduce: %v", ctx.Rank, err)
		}
		if len(got) != n {
			t.Fatalf("rank %d: got %d elements, want %d", ctx.Rank, len(got), n)
		}
		for i, v := range got {
			if v != i {
				t.Fatalf("rank %d: got[%d] = %d, want %d", ctx.Rank, i, v, i)
			}
		}
	})
}

// scenario 3: iterates(100).flatMap(digits) has length 190, first
// element '0', last '9'.
func TestScenarioFlatMapDigits(t *testing.T) {
	const n = 100
	const procs = 3

	runRanks(procs, func(ctx *Context) {
		d := ctx.Iterates(n, false)
		flat := d.FlatMap(func(x int) []int {
			s := strconv.Itoa(x)
			out := make([]int, len(s))
			for i, c := range s {
				out[i] = int(c - '0')
			}
			return out
		})
		total, err := flat.Len()
		if err != nil {
			t.Fatalf("rank %d: len: %v", ctx.Rank, err)
		}
		if total != 190 {
			t.Fatalf("rank %d: total length = %d, want 190", ctx.Rank, total)
		}
		all, err := flat.Collect(0)
		if err != nil {
			t.Fatalf("rank %d: collect: %v", ctx.Rank, err)
		}
		if ctx.Rank != 0 {
			return
		}
		if all[0] != 0 || all[len(all)-1] != 9 {
			t.Fatalf("got first=%d last=%d, want 0 and 9", all[0], all[len(all)-1])
		}
	})
}

// scenario 4: iterates(12).scan(+) collects to [0,1,3,6,10,...,66].
func TestScenarioScanSum(t *testing.T) {
	const n = 12
	const procs = 4

	runRanks(procs, func(ctx *Context) {
		d := ctx.Iterates(n, false)
		scanned, err := d.Scan(func(a, b int) int { return a + b })
		if err != nil {
			t.Fatalf("rank %d: scan: %v", ctx.Rank, err)
		}
		out, err := scanned.Collect(0)
		if err != nil {
			t.Fatalf("rank %d: collect: %v", ctx.Rank, err)
		}
		if ctx.Rank != 0 {
			return
		}
		want := []int{0, 1, 3, 6, 10, 15, 21, 28, 36, 45, 55, 66}
		if len(out) != len(want) {
			t.Fatalf("got %v, want %v", out, want)
		}
		for i := range want {
			if out[i] != want[i] {
				t.Fatalf("out[%d] = %d, want %d (full: %v)", i, out[i], want[i], out)
			}
		}
	})
}

// scenario 5: iterates(10).group(bucket-by-mod-1, identity, M=1)
// yields one group containing [0..10).
func TestScenarioGroupSingleBucket(t *testing.T) {
	const n = 10
	const procs = 3

	runRanks(procs, func(ctx *Context) {
		d := ctx.Iterates(n, false)
		classify := group.Classify[int, int](func(e int, emit func(key int, item int)) {
			emit(e%1, e)
		})
		concat := group.Concat[int, []int](func(items []int) []int {
			sorted := append([]int(nil), items...)
			sort.Ints(sorted)
			return sorted
		})
		grouped, err := Group[int, int, []int](d, classify, concat, 1)
		if err != nil {
			t.Fatalf("rank %d: group: %v", ctx.Rank, err)
		}
		out, err := grouped.Collect(0)
		if err != nil {
			t.Fatalf("rank %d: collect: %v", ctx.Rank, err)
		}
		if ctx.Rank != 0 {
			return
		}
		if len(out) != 1 {
			t.Fatalf("got %d groups, want 1", len(out))
		}
		want := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		if len(out[0]) != len(want) {
			t.Fatalf("got %v, want %v", out[0], want)
		}
		for i := range want {
			if out[0][i] != want[i] {
				t.Fatalf("bucket = %v, want %v", out[0], want)
			}
		}
	})
}

// scenario 6: iterates(N).map(ones(x,4)).repartition(len, slice,
// vstack, M) produces M arrays whose total row count is N(N-1)/2, each
// at least floor(N(N-1)/(2M)).
func TestScenarioRepartitionRows(t *testing.T) {
	const nn = 9
	const procs = 3
	const m = 4

	type row []int

	total := 0
	for i := 0; i < nn; i++ {
		total += i
	}
	minLen := total / m

	runRanks(procs, func(ctx *Context) {
		d := ctx.Iterates(nn, false)

		local := make([]row, len(d.Local()))
		for i, x := range d.Local() {
			local[i] = make(row, x)
		}
		rds := NewLocal(ctx, local)

		llen := repartition.Len[row](func(r row) int { return len(r) })
		split := repartition.Split[row, row](func(r row, ranges []repartition.Range) []row {
			out := make([]row, len(ranges))
			for i, rg := range ranges {
				out[i] = append(row(nil), r[rg.Lo:rg.Hi]...)
			}
			return out
		})
		concat := repartition.Concat[row, row](func(blocks []row) row {
			var out row
			for _, b := range blocks {
				out = append(out, b...)
			}
			return out
		})

		out, err := Repartition[row, row](rds, llen, split, concat, m)
		if err != nil {
			t.Fatalf("rank %d: repartition: %v", ctx.Rank, err)
		}

		localLen := 0
		for _, r := range out.Local() {
			if len(r) < minLen {
				t.Errorf("rank %d: output row has length %d, below floor %d", ctx.Rank, len(r), minLen)
			}
			localLen += len(r)
		}

		sums, err := ctx.Comm.Gather(context.Background(), localLen, 0)
		if err != nil {
			t.Fatalf("rank %d: gather: %v", ctx.Rank, err)
		}
		if ctx.Rank != 0 {
			return
		}
		got := 0
		for _, s := range sums {
			got += s.(int)
		}
		if got != total {
			t.Fatalf("total repartitioned row count = %d, want %d", got, total)
		}
	})
}

// countingRecorder counts how many Records it receives, across
// concurrently-calling ranks.
type countingRecorder struct {
	n atomic.Int64
}

func (c *countingRecorder) Record(ctx context.Context, rec audit.Record) error {
	c.n.Add(1)
	return nil
}

// A Context with an attached audit.Recorder reports one record per
// collective call, per rank; WithAudit is a no-op (silent) when unset.
func TestAuditRecorderObservesCollectives(t *testing.T) {
	const procs = 4
	rec := &countingRecorder{}

	runRanksWithAudit(procs, rec, func(ctx *Context) {
		d := ctx.Iterates(10, false)
		if _, err := d.Len(); err != nil {
			t.Fatalf("rank %d: len: %v", ctx.Rank, err)
		}
		_ = d.Map(func(x int) int { return x })
	})

	// len + map, once per rank.
	if got, want := rec.n.Load(), int64(2*procs); got != want {
		t.Fatalf("audit recorded %d calls, want %d", got, want)
	}
}

func runRanksWithAudit(procs int, rec audit.Recorder, fn func(ctx *Context)) {
	w := fabric.NewWorld(procs)
	var wg sync.WaitGroup
	wg.Add(procs)
	for r := 0; r < procs; r++ {
		r := r
		go func() {
			defer wg.Done()
			fn(NewContext(w.Rank(r), &utils.NullLogger{}).WithAudit(rec))
		}()
	}
	wg.Wait()
}
