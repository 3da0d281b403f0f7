package partition

import "testing"

func TestEvenSpreadInvariants(t *testing.T) {
	for m := 0; m < 40; m++ {
		for n := 1; n < 12; n++ {
			tgt := EvenSpread(m, n)
			if len(tgt) != n {
				t.Fatalf("EvenSpread(%d,%d): len = %d, want %d", m, n, len(tgt), n)
			}
			sum := 0
			lo, hi := tgt[0], tgt[0]
			for _, v := range tgt {
				sum += v
				lo = min(lo, v)
				hi = max(hi, v)
			}
			if sum != m {
				t.Fatalf("EvenSpread(%d,%d): sum = %d, want %d", m, n, sum, m)
			}
			if hi-lo > 1 {
				t.Fatalf("EvenSpread(%d,%d): spread %d-%d differs by more than 1", m, n, lo, hi)
			}
		}
	}
}

func TestEvenSpreadZeroPartitions(t *testing.T) {
	if got := EvenSpread(0, 0); len(got) != 0 {
		t.Fatalf("EvenSpread(0,0) = %v, want empty", got)
	}
}

func TestEvenSpreadPanicsOnNonzeroWithZeroPartitions(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for EvenSpread(1,0)")
		}
	}()
	EvenSpread(1, 0)
}

func TestBlockMatchesEvenSpread(t *testing.T) {
	for m := 0; m < 50; m++ {
		for n := 1; n < 9; n++ {
			tgt := EvenSpread(m, n)
			cum := 0
			for r := 0; r < n; r++ {
				lo, hi := Block(m, n, r)
				if lo != cum {
					t.Fatalf("Block(%d,%d,%d) lo = %d, want %d", m, n, r, lo, cum)
				}
				if hi-lo != tgt[r] {
					t.Fatalf("Block(%d,%d,%d) size = %d, want %d", m, n, r, hi-lo, tgt[r])
				}
				cum = hi
			}
			if cum != m {
				t.Fatalf("blocks for (%d,%d) cover %d, want %d", m, n, cum, m)
			}
		}
	}
}

func TestRankOfAgreesWithBlock(t *testing.T) {
	for m := 1; m < 60; m++ {
		for n := 1; n < 10; n++ {
			for g := 0; g < m; g++ {
				r := RankOf(g, m, n)
				lo, hi := Block(m, n, r)
				if g < lo || g >= hi {
					t.Fatalf("RankOf(%d,%d,%d) = %d, but block is [%d,%d)", g, m, n, r, lo, hi)
				}
			}
		}
	}
}

func TestCumSum(t *testing.T) {
	cs := CumSum([]int{3, 0, 5, 2})
	want := []int{0, 3, 3, 8, 10}
	if len(cs) != len(want) {
		t.Fatalf("len = %d, want %d", len(cs), len(want))
	}
	for i := range want {
		if cs[i] != want[i] {
			t.Fatalf("CumSum[%d] = %d, want %d", i, cs[i], want[i])
		}
	}
}
