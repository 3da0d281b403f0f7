// Package group implements the gather/regroup engine backing the
// distributed-sequence `group` operation: bucket local elements by a
// user classifier, route each bucket to its owning rank with a
// sequence of per-root gathers, then merge and concatenate by key.
package group

import (
	"context"
	"sort"

	"github.com/dmrogers-hpc/dseq/pkg/fabric"
	"github.com/dmrogers-hpc/dseq/pkg/partition"
)

// Classify is called once per local element; it emits the element
// (or a value derived from it) under zero or more target keys in
// [0, N).
type Classify[T, I any] func(e T, emit func(key int, item I))

// Concat turns all the items collected under one key into the output
// element at that key's position.
type Concat[I, O any] func(items []I) O

type keyItems[I any] struct {
	key   int
	items []I
}

// Group runs the full regroup: classify every local element, route
// buckets to their owning rank (per partition.RankOf(key, N, procs)),
// merge same-key contributions in ascending-source-rank order, and
// concat each merged group. The returned slice holds this rank's
// canonical block of [0,N) in ascending-key order; keys with no
// contributions anywhere are simply absent, so the result may be
// shorter than the block size.
func Group[T, I, O any](ctx context.Context, comm fabric.Comm, e []T, classify Classify[T, I], concat Concat[I, O], n int) ([]O, error) {
	rank := comm.Rank()
	procs := comm.Size()

	dP := map[int][]I{}
	for _, elem := range e {
		classify(elem, func(key int, item I) {
			dP[key] = append(dP[key], item)
		})
	}

	buckets := make([][]keyItems[I], procs)
	for key, items := range dP {
		d := partition.RankOf(key, n, procs)
		buckets[d] = append(buckets[d], keyItems[I]{key: key, items: items})
	}

	// Each root gathers every rank's bucket, its own included, so the
	// contributions arrive in ascending source-rank order.
	var ans []keyItems[I]

	for root := 0; root < procs; root++ {
		got, err := comm.Gather(ctx, buckets[root], root)
		if err != nil {
			return nil, err
		}
		if rank != root {
			continue
		}
		for _, v := range got {
			if v == nil {
				continue
			}
			ans = append(ans, v.([]keyItems[I])...)
		}
	}

	if len(ans) == 0 {
		return nil, nil
	}

	sort.SliceStable(ans, func(i, j int) bool { return ans[i].key < ans[j].key })

	var out []O
	i := 0
	for i < len(ans) {
		merged := append([]I(nil), ans[i].items...)
		j := i + 1
		for j < len(ans) && ans[j].key == ans[i].key {
			merged = append(merged, ans[j].items...)
			j++
		}
		out = append(out, concat(merged))
		i = j
	}
	return out, nil
}
