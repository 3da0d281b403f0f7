// Package segment computes the transfer list between two segmentations
// of the same global index space: given two ascending cumulative-size
// vectors with equal totals, it produces the maximal sub-intervals that
// are contained in exactly one source block and one destination block.
package segment

import "github.com/dmrogers-hpc/dseq/pkg/partition"

// Cxn ("connection") describes one contiguous transfer: the sub-range
// [S0,S1) of source block Src goes to the sub-range [D0,D1) of
// destination block Dst. S1-S0 always equals D1-D0 and is positive.
type Cxn struct {
	Src, Dst int
	S0, S1   int
	D0, D1   int
}

// Len returns the number of elements this connection moves.
func (c Cxn) Len() int { return c.S1 - c.S0 }

// Segments sweeps two ascending cumulative-offset sequences (src[0] ==
// dst[0] == 0, src[last] == dst[last]) and emits the Cxn list that
// partitions [0, src[last]) into pieces lying in one source block and
// one destination block. The result is emitted in globally-ascending
// order.
func Segments(src, dst []int) []Cxn {
	if len(src) == 0 || len(dst) == 0 {
		return nil
	}
	if src[0] != 0 || dst[0] != 0 {
		panic("segment: src[0] and dst[0] must be 0")
	}
	if src[len(src)-1] != dst[len(dst)-1] {
		panic("segment: src and dst totals must match")
	}

	var ans []Cxn
	idx := 0
	i, j := 1, 1
	for i < len(src) && j < len(dst) {
		end := min(src[i], dst[j])
		if end-idx > 0 {
			ans = append(ans, Cxn{
				Src: i - 1, Dst: j - 1,
				S0: idx - src[i-1], S1: end - src[i-1],
				D0: idx - dst[j-1], D1: end - dst[j-1],
			})
		}
		if end == src[i] {
			i++
		}
		if end == dst[j] {
			j++
		}
		idx = end
	}
	return ans
}

// SegmentsEven computes the transfer list mapping the block
// segmentation blks onto N evenly-spread output blocks.
func SegmentsEven(blks []int, n int) []Cxn {
	total := 0
	for _, b := range blks {
		total += b
	}
	oblk := partition.EvenSpread(total, n)
	return Segments(partition.CumSum(blks), partition.CumSum(oblk))
}
