// Package pscan generates a two-phase Blelloch-style parallel
// prefix-scan schedule for n items, encoded as strided slices rather
// than materialized O(n log n) pairs.
package pscan

// Slice encodes "at this level, the senders are the positions in
// range(Start, Stop, Step); each sends to itself + Step/2".
type Slice struct {
	Start, Stop, Step int
}

// Schedule builds the up-sweep + down-sweep schedule for n items.
// Executing the returned slices against an array a[0..n) with
// a[i+step/2] = combine(a[i], a[i+step/2]) for every slice, in order,
// turns a into the inclusive prefix scan of its initial contents.
func Schedule(n int) []Slice {
	var sch []Slice

	skip := 1
	for 2*skip-1 < n {
		sch = append(sch, Slice{Start: skip - 1, Stop: n - skip, Step: 2 * skip})
		skip *= 2
	}
	for 3*skip > n {
		skip /= 2
	}
	for skip >= 1 {
		sch = append(sch, Slice{Start: 2*skip - 1, Stop: n - skip, Step: 2 * skip})
		skip /= 2
	}
	return sch
}

// Pairs expands a slice-encoded schedule into concrete (from, to) index
// pairs. Mainly useful for tests and debugging; production code should
// walk the Slice directly to avoid materializing O(n log n) pairs.
func Pairs(sch []Slice) [][2]int {
	var out [][2]int
	for _, s := range sch {
		step := s.Step / 2
		for i := s.Start; i < s.Stop; i += s.Step {
			out = append(out, [2]int{i, i + step})
		}
	}
	return out
}
