// Package arena provides a fixed-capacity, index-addressed pool of node
// records. It underlies every tree in this module: nodes are allocated by
// append and addressed by a small integer Handle rather than a pointer, so
// that a whole tree can be discarded in O(1) by resetting the arena instead
// of individually freeing nodes.
package arena

import "github.com/pkg/errors"

// Handle addresses a node record inside an Arena. Handles count up from 0,
// so the zero value addresses the first allocated node; use Nil to denote
// "no node".
type Handle int32

// Nil is the sentinel Handle meaning "absent child" / "empty tree". It is
// deliberately not tied to the coordinate type stored in a tree's nodes —
// see SPEC_FULL.md §3 on separating the handle domain from the coordinate
// domain.
const Nil Handle = -1

// ErrFull is returned by Alloc when the arena has reached its capacity.
var ErrFull = errors.New("arena: capacity exhausted")

// ErrInvalidInterval is returned when a caller supplies low > high.
var ErrInvalidInterval = errors.New("arena: low > high")

// Arena is a dense pool of T records, addressed by Handle.
type Arena[T any] struct {
	nodes []T
	cap   int
}

// New returns an empty Arena with room for at most capacity nodes.
func New[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		nodes: make([]T, 0, capacity),
		cap:   capacity,
	}
}

// Alloc appends v to the pool and returns its Handle. It fails with ErrFull
// once the arena's capacity is exhausted.
func (a *Arena[T]) Alloc(v T) (Handle, error) {
	if len(a.nodes) >= a.cap {
		return Nil, errors.Wrapf(ErrFull, "capacity %d", a.cap)
	}
	h := Handle(len(a.nodes))
	a.nodes = append(a.nodes, v)
	return h, nil
}

// Get returns a pointer to the node record addressed by h, for in-place
// mutation. The caller must not call Get(Nil).
func (a *Arena[T]) Get(h Handle) *T {
	return &a.nodes[h]
}

// Len reports how many nodes have been allocated.
func (a *Arena[T]) Len() int {
	return len(a.nodes)
}

// Cap reports the arena's fixed capacity.
func (a *Arena[T]) Cap() int {
	return a.cap
}

// Reset returns the arena to empty in O(1); the next Alloc reuses handle 0.
func (a *Arena[T]) Reset() {
	a.nodes = a.nodes[:0]
}
