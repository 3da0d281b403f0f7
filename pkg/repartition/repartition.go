// Package repartition implements the distributed-sequence repartition
// engine (spec §4.H): given a DS of sized, splittable elements, it
// recomputes a target segmentation of the global index space into N
// blocks, derives the transfer list between the source (per-element,
// global-index-ordered) and destination (per-block) segmentations via
// pkg/segment, splits local elements to match, and executes the
// all-to-all via pkg/schedule.
package repartition

import (
	"context"

	"github.com/dmrogers-hpc/dseq/pkg/fabric"
	"github.com/dmrogers-hpc/dseq/pkg/partition"
	"github.com/dmrogers-hpc/dseq/pkg/schedule"
	"github.com/dmrogers-hpc/dseq/pkg/segment"
)

// Range is a half-open sub-range [Lo, Hi) of one element's own length,
// the unit split/concat operate on.
type Range struct {
	Lo, Hi int
}

// Len returns the length of an element, used to size the source
// segmentation; must match what Split can actually produce.
type Len[T any] func(T) int

// Split cuts one element into len(ranges) blocks, one per range, in
// the same order as ranges. Called at most once per source element,
// batching every outgoing sub-range of that element into a single
// call.
type Split[T, B any] func(e T, ranges []Range) []B

// Concat reassembles the blocks destined for one output element, in
// ascending-source-rank (equivalently ascending global index) order.
type Concat[B, T any] func(blocks []B) T

// Run repartitions e (this rank's local slice of the DS) into exactly
// n target blocks spread evenly across the cohort, and returns this
// rank's canonical share of those n output elements (per
// partition.Block(n, procs, rank)). tagBase namespaces this call's
// message tags so concurrent repartition calls on the same fabric
// never collide (spec §9's "send_items tag collisions" note).
func Run[T, B any](ctx context.Context, comm fabric.Comm, e []T, llen Len[T], split Split[T, B], concat Concat[B, T], n int, tagBase int) ([]T, error) {
	rank := comm.Rank()
	procs := comm.Size()

	localLens := make([]int, len(e))
	for i, elem := range e {
		localLens[i] = llen(elem)
	}

	gathered, err := comm.Allgather(ctx, localLens)
	if err != nil {
		return nil, err
	}

	// Flatten every rank's per-element lengths into one global,
	// rank-ordered sequence (spec §4.H steps 1-2: the segment solver
	// runs on per-element global lengths, not per-rank totals — a
	// "source block" is one element, never a whole rank). ownerOf
	// maps a global element index to its owning rank; elemOffset is
	// each rank's first global element index, used to recover a
	// source element's local index.
	elemCounts := make([]int, procs)
	for r, v := range gathered {
		elemCounts[r] = len(v.([]int))
	}
	elemOffset := partition.CumSum(elemCounts)

	var allLens []int
	var ownerOf []int
	for r, v := range gathered {
		lens := v.([]int)
		allLens = append(allLens, lens...)
		for range lens {
			ownerOf = append(ownerOf, r)
		}
	}

	total := 0
	for _, l := range allLens {
		total += l
	}

	tgt := reverse(partition.EvenSpread(total, n))
	srcCum := partition.CumSum(allLens)
	dstCum := partition.CumSum(tgt)
	cxns := segment.Segments(srcCum, dstCum)

	var entries []schedule.Entry
	var outItems []any

	// Every Cxn for a given source element arrives consecutively (the
	// segment solver sweeps source blocks in ascending order and never
	// revisits one), so a single pending/flush pair batches all of an
	// element's outgoing ranges into one Split call (spec §4.H's
	// invariant: split is called once per source element).
	curElem := -1
	var pending []Range
	flush := func() {
		if len(pending) == 0 {
			return
		}
		localIdx := curElem - elemOffset[rank]
		blocks := split(e[localIdx], pending)
		for _, b := range blocks {
			outItems = append(outItems, b)
		}
		pending = nil
	}

	for ci, c := range cxns {
		srcRank := ownerOf[c.Src]
		dstRank := partition.RankOf(c.Dst, n, procs)
		if srcRank == rank || dstRank == rank {
			entries = append(entries, schedule.Entry{
				Tag: tagBase + ci,
				Src: srcRank,
				Dst: dstRank,
				Idx: c.Dst,
			})
		}
		if srcRank != rank {
			continue
		}
		if c.Src != curElem {
			flush()
			curElem = c.Src
		}
		pending = append(pending, Range{Lo: c.S0, Hi: c.S1})
	}
	flush()

	groups, err := schedule.Run(comm, outItems, entries)
	if err != nil {
		return nil, err
	}
	byIdx := make(map[int][]any, len(groups))
	for _, g := range groups {
		byIdx[g.Idx] = g.Items
	}

	lo, hi := partition.Block(n, procs, rank)
	out := make([]T, 0, hi-lo)
	for idx := lo; idx < hi; idx++ {
		items := byIdx[idx]
		blocks := make([]B, len(items))
		for i, it := range items {
			blocks[i] = it.(B)
		}
		out = append(out, concat(blocks))
	}
	return out, nil
}

func reverse(xs []int) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[len(xs)-1-i] = x
	}
	return out
}
