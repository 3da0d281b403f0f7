package segment

import (
	"testing"

	"github.com/dmrogers-hpc/dseq/pkg/partition"
)

func checkSegments(t *testing.T, blks, oblks []int) {
	t.Helper()
	sched := Segments(partition.CumSum(blks), partition.CumSum(oblks))

	inp := make([]int, len(blks))
	out := make([]int, len(oblks))

	for _, c := range sched {
		n := c.D1 - c.D0
		if n <= 0 {
			t.Fatalf("non-positive connection length: %+v", c)
		}
		if c.S1-c.S0 != n {
			t.Fatalf("mismatched src/dst length: %+v", c)
		}
		if inp[c.Src] != c.S0 {
			t.Fatalf("gap or overlap on src block %d: expected start %d, got %d", c.Src, inp[c.Src], c.S0)
		}
		if out[c.Dst] != c.D0 {
			t.Fatalf("gap or overlap on dst block %d: expected start %d, got %d", c.Dst, out[c.Dst], c.D0)
		}
		inp[c.Src] = c.S1
		out[c.Dst] = c.D1
	}

	for i, b := range blks {
		if inp[i] != b {
			t.Fatalf("src block %d not fully consumed: got %d, want %d", i, inp[i], b)
		}
	}
	for i, b := range oblks {
		if out[i] != b {
			t.Fatalf("dst block %d not fully filled: got %d, want %d", i, out[i], b)
		}
	}
}

func TestSegmentsPartitionsExactly(t *testing.T) {
	blks := []int{100, 30, 10, 0, 33, 4, 201}
	for _, n := range []int{1, 5, 10, 201} {
		total := 0
		for _, b := range blks {
			total += b
		}
		oblk := partition.EvenSpread(total, n)
		checkSegments(t, blks, oblk)
	}
}

func TestSegmentsArbitraryPair(t *testing.T) {
	checkSegments(t, []int{76, 12, 441, 864, 12, 42}, []int{65, 124, 247, 800, 211})
}

func TestSegmentsEvenHelper(t *testing.T) {
	blks := []int{200, 0, 50}
	for _, n := range []int{1, 3, 7} {
		sched := SegmentsEven(blks, n)
		total := 0
		for _, c := range sched {
			total += c.Len()
		}
		want := 0
		for _, b := range blks {
			want += b
		}
		if total != want {
			t.Fatalf("SegmentsEven total moved = %d, want %d", total, want)
		}
	}
}

func TestSegmentsEmpty(t *testing.T) {
	sched := Segments([]int{0}, []int{0})
	if len(sched) != 0 {
		t.Fatalf("expected no connections for empty input, got %v", sched)
	}
}
