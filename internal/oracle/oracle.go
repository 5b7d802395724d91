// Package oracle provides the naive/brute-force reference checks used by
// the test suites of intervaltree, diet and dietavl: a linear-scan overlap
// oracle, and a parallel bitmask oracle for DIET's blit protocol. These are
// the core's "random-testing driver" style helpers that spec.md §1 calls
// out as external collaborators — kept test-only here rather than exported
// from the library itself.
package oracle

import "golang.org/x/exp/constraints"

// Interval is a closed [Low, High] interval paired with an opaque handle,
// used to drive the naive overlap scan against whatever handle type a tree
// under test returns.
type Interval[C constraints.Signed, H comparable] struct {
	Low, High C
	Handle    H
}

// NaiveOverlap returns every handle among intervals whose interval overlaps
// [low, high], by linear scan — the oracle spec.md §4.4/§8 property 5 checks
// find_all_overlapping against.
func NaiveOverlap[C constraints.Signed, H comparable](intervals []Interval[C, H], low, high C) []H {
	var out []H
	for _, iv := range intervals {
		if low <= iv.High && iv.Low <= high {
			out = append(out, iv.Handle)
		}
	}
	return out
}

// SameSet reports whether got and want contain the same handles, ignoring
// order and duplicate counts beyond multiset membership.
func SameSet[H comparable](got, want []H) bool {
	if len(got) != len(want) {
		return false
	}
	count := make(map[H]int, len(want))
	for _, h := range want {
		count[h]++
	}
	for _, h := range got {
		count[h]--
		if count[h] < 0 {
			return false
		}
	}
	for _, c := range count {
		if c != 0 {
			return false
		}
	}
	return true
}

// Bitmask is a parallel, domain-indexed bitmask over a bounded coordinate
// range, used as the DIET "bitmask oracle" (spec.md §4.4, §8 property 8):
// one bitmask is filled directly by the test at every insert, a second is
// filled only by the tree's blit callback, and the two must always agree.
type Bitmask struct {
	bits []bool
	base int
}

// NewBitmask returns a bitmask covering [lo, hi] inclusive.
func NewBitmask(lo, hi int) *Bitmask {
	return &Bitmask{
		bits: make([]bool, hi-lo+1),
		base: lo,
	}
}

// Set marks every integer in [lo, hi] as present.
func (m *Bitmask) Set(lo, hi int) {
	for v := lo; v <= hi; v++ {
		m.bits[v-m.base] = true
	}
}

// Get reports whether v is marked present.
func (m *Bitmask) Get(v int) bool {
	return m.bits[v-m.base]
}

// Equal reports whether m and other agree on every position.
func (m *Bitmask) Equal(other *Bitmask) bool {
	if len(m.bits) != len(other.bits) || m.base != other.base {
		return false
	}
	for i := range m.bits {
		if m.bits[i] != other.bits[i] {
			return false
		}
	}
	return true
}
