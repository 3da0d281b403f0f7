// Package partition implements the index arithmetic that keeps every
// rank's view of a logical sequence of length M, spread across N
// partitions, consistent with every other rank's view.
package partition

// EvenSpread returns the unique partition of M into N non-negative parts
// differing by at most one, with the larger parts (M/N + 1) first.
//
//	len(EvenSpread(M,N)) == N
//	sum(EvenSpread(M,N)) == M
func EvenSpread(m, n int) []int {
	if n == 0 {
		if m != 0 {
			panic("partition: EvenSpread(m, 0) requires m == 0")
		}
		return nil
	}
	tgt := make([]int, n)
	blk := m / n
	extra := m % n
	for i := range tgt {
		tgt[i] = blk
		if i < extra {
			tgt[i]++
		}
	}
	return tgt
}

// Block returns the half-open global index range [lo, hi) owned by rank
// r out of n ranks, when M items are spread evenly.
func Block(m, n, r int) (lo, hi int) {
	blk := m / n
	extra := m % n
	elapsed := min(r, extra)
	has := 0
	if r < extra {
		has = 1
	}
	lo = blk*r + elapsed
	hi = lo + blk + has
	return lo, hi
}

// RankOf returns which of N ranks owns the g-th of M evenly-spread
// items, given the total count M and number of ranks N.
//
// It starts from the underestimate j = g/(M/N+1), which never passes
// the owner because no block holds more than M/N+1 items, and
// advances j while the g-th item still lies beyond block j's upper
// bound. The start is exact for items in the larger leading blocks.
func RankOf(g, m, n int) int {
	if n <= 0 {
		panic("partition: RankOf requires n > 0")
	}
	blk := m / n
	extra := m % n
	j := g / (blk + 1)
	for g >= (j+1)*blk+min(extra, j+1) {
		j++
	}
	return j
}

// CumSum returns the ascending cumulative-size vector of blks:
// CumSum(blks)[0] == 0 and CumSum(blks)[i+1] == CumSum(blks)[i] + blks[i].
func CumSum(blks []int) []int {
	csum := make([]int, len(blks)+1)
	for i, b := range blks {
		csum[i+1] = csum[i] + b
	}
	return csum
}
