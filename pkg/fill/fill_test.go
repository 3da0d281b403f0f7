package fill

import (
	"math/rand"
	"testing"
)

func checkFill(t *testing.T, delta []int) {
	t.Helper()
	rounds := Schedule(delta)
	x := append([]int(nil), delta...)
	for _, round := range rounds {
		for _, s := range round {
			if x[s.Src] < s.Count {
				t.Fatalf("round sends %d from rank %d which only holds %d", s.Count, s.Src, x[s.Src])
			}
			x[s.Src] -= s.Count
			x[s.Dst] += s.Count
		}
	}
	for i, v := range x {
		if v != 0 {
			t.Fatalf("rank %d ended at %d, want 0 (delta=%v)", i, v, delta)
		}
	}
}

func TestFillTrivial(t *testing.T) {
	checkFill(t, []int{0})
}

func TestFillKnownCase(t *testing.T) {
	checkFill(t, []int{-2, 3, -1, 1, 1, -5, 3})
}

func TestFillRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for m := 2; m < 100; m += 3 {
		for j := 0; j < 10; j++ {
			delta := make([]int, m)
			sum := 0
			for i := range delta {
				delta[i] = rng.Intn(21) - 10
				sum += delta[i]
			}
			v := rng.Intn(m)
			delta[v] -= sum
			checkFill(t, delta)
		}
	}
}

func TestApplyMatchesManualWalk(t *testing.T) {
	delta := []int{-2, 3, -1, 1, 1, -5, 3}
	rounds := Schedule(delta)
	got := Apply(delta, rounds)
	for _, v := range got {
		if v != 0 {
			t.Fatalf("Apply result not all zero: %v", got)
		}
	}
}
