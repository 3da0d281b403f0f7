package group

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"testing"

	"github.com/dmrogers-hpc/dseq/pkg/fabric"
	"github.com/dmrogers-hpc/dseq/pkg/partition"
)

func runRanks(procs int, fn func(rank int, c fabric.Comm)) {
	w := fabric.NewWorld(procs)
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

func TestGroupSumsByModulus(t *testing.T) {
	const total = 30
	const n = 6
	const procs = 3

	blks := partition.EvenSpread(total, procs)
	offsets := partition.CumSum(blks)

	expected := make([]int, n)
	for v := 0; v < total; v++ {
		expected[v%n] += v
	}

	classify := func(e int, emit func(key int, item int)) { emit(e%n, e) }
	concat := func(items []int) int {
		sum := 0
		for _, v := range items {
			sum += v
		}
		return sum
	}

	runRanks(procs, func(rank int, c fabric.Comm) {
		lo, hi := offsets[rank], offsets[rank+1]
		local := make([]int, hi-lo)
		for i := range local {
			local[i] = lo + i
		}

		out, err := Group(context.Background(), c, local, classify, concat, n)
		if err != nil {
			t.Fatalf("rank %d: %v", rank, err)
		}

		full, err := c.Gather(context.Background(), out, 0)
		if err != nil {
			t.Fatalf("rank %d: gather: %v", rank, err)
		}
		if rank != 0 {
			return
		}
		var flat []int
		for _, v := range full {
			flat = append(flat, v.([]int)...)
		}
		if len(flat) != n {
			t.Fatalf("got %d groups, want %d: %v", len(flat), n, flat)
		}
		for k, want := range expected {
			if flat[k] != want {
				t.Errorf("key %d: got %d, want %d", k, flat[k], want)
			}
		}
	})
}

func TestGroupSparseKeysPreserveOrder(t *testing.T) {
	const n = 4
	const procs = 4

	classify := func(e int, emit func(key int, item int)) {
		emit(0, e)
		emit(3, 10+e)
	}
	concat := func(items []int) []int { return append([]int(nil), items...) }

	runRanks(procs, func(rank int, c fabric.Comm) {
		out, err := Group(context.Background(), c, []int{rank}, classify, concat, n)
		if err != nil {
			t.Fatalf("rank %d: %v", rank, err)
		}

		full, err := c.Gather(context.Background(), out, 0)
		if err != nil {
			t.Fatalf("rank %d: gather: %v", rank, err)
		}
		if rank != 0 {
			return
		}
		var groups [][]int
		for _, v := range full {
			groups = append(groups, v.([][]int)...)
		}
		if len(groups) != 2 {
			t.Fatalf("expected exactly 2 non-empty groups, got %d: %v", len(groups), groups)
		}
		sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
		want := [][]int{{0, 1, 2, 3}, {10, 11, 12, 13}}
		if !reflect.DeepEqual(groups, want) {
			t.Fatalf("got %v, want %v", groups, want)
		}
	})
}
