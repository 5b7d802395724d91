// Package diet implements an unbalanced Discrete Interval Encoding Tree: a
// set of integers represented as maximal, pairwise non-overlapping,
// non-adjacent closed intervals. Insert accepts a blit callback that fires
// with the newly-covered sub-ranges of a given insertion -- this is the
// "blit protocol" and is the whole point of this structure over naive
// coalescing (SPEC_FULL.md §4.3).
//
// Ground truth: original_source/misc/diet.c. Its recursive helpers
// less_than_or_equal/greater_than_or_equal are ported here as
// findDelLeft/findDelRight, matching spec.md §4.3's vocabulary. Contains,
// Remove, splitMax and merge are adapted from the teacher package's
// pointer-based equivalents (zyedidia-generic/diet/diet.go) into
// arena-handle style.
package diet

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/mikatre/dietree/arena"
)

// Blit is called by Insert with sub-ranges of integers that were not
// previously covered by the tree. It may be called more than once per
// Insert, and the emitted ranges may overlap or touch; callers must not
// assume exact boundaries, only that the union of all calls across an
// Insert equals the set of newly-covered integers (spec.md §4.3).
type Blit[C constraints.Signed] func(lo, hi C)

type node[C constraints.Signed] struct {
	low, high   C
	left, right arena.Handle
}

// Tree is an unbalanced DIET over coordinate type C.
type Tree[C constraints.Signed] struct {
	a    *arena.Arena[node[C]]
	root arena.Handle
}

// New returns an empty DIET with room for at most capacity nodes.
func New[C constraints.Signed](capacity int) *Tree[C] {
	return &Tree[C]{
		a:    arena.New[node[C]](capacity),
		root: arena.Nil,
	}
}

func (t *Tree[C]) newNode(low, high C, left, right arena.Handle) (arena.Handle, error) {
	return t.a.Alloc(node[C]{low: low, high: high, left: left, right: right})
}

func minC[C constraints.Signed](a, b C) C {
	if a < b {
		return a
	}
	return b
}

func maxC[C constraints.Signed](a, b C) C {
	if a > b {
		return a
	}
	return b
}

// Insert extends the set to include every integer in [low, high]. blit is
// invoked one or more times, each with a sub-range of integers that were
// absent before this call; it is never invoked with an integer already
// present.
func (t *Tree[C]) Insert(low, high C, blit Blit[C]) error {
	if low > high {
		return arena.ErrInvalidInterval
	}
	newRoot, err := t.insertRange(t.root, low, high, blit)
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

// insertRange ports diet.c's insert_range. It mutates the visited node in
// place when the inserted range meets or overlaps it, and otherwise
// recurses into whichever single child subtree can possibly be affected,
// leaving the other untouched.
func (t *Tree[C]) insertRange(x arena.Handle, low, high C, blit Blit[C]) (arena.Handle, error) {
	if x == arena.Nil {
		blit(low, high)
		return t.newNode(low, high, arena.Nil, arena.Nil)
	}

	n := t.a.Get(x)

	var ll, lh, rl, rh, defBlitLow, defBlitHigh C
	if n.low < low {
		ll, lh = n.low, n.high
		rl, rh = low, high
		defBlitLow = maxC(rl, lh+1)
		defBlitHigh = rh
	} else {
		ll, lh = low, high
		rl, rh = n.low, n.high
		defBlitLow = ll
		defBlitHigh = minC(lh, rl-1)
	}

	if lh >= rl || lh+1 == rl {
		if low >= n.low && high <= n.high {
			// Fully covered already: no-op, no blits (spec.md §8 property 10).
			return x, nil
		}

		r1l := ll
		r1h := maxC(lh, rh)

		newLeft, newLow, err := t.findDelLeft(n.left, r1l, defBlitLow, defBlitHigh, blit)
		if err != nil {
			return arena.Nil, err
		}
		newRight, newHigh, err := t.findDelRight(n.right, r1h, defBlitLow, defBlitHigh, blit)
		if err != nil {
			return arena.Nil, err
		}

		if n.left == arena.Nil && n.right == arena.Nil {
			blit(defBlitLow, defBlitHigh)
		}

		n.low = newLow
		n.high = newHigh
		n.left = newLeft
		n.right = newRight
		return x, nil
	}

	r1l, r1h := ll, lh
	r2l, r2h := rl, rh
	if r1l == n.low && r1h == n.high {
		right, err := t.insertRange(n.right, r2l, r2h, blit)
		if err != nil {
			return arena.Nil, err
		}
		n.right = right
		return x, nil
	}

	left, err := t.insertRange(n.left, r1l, r1h, blit)
	if err != nil {
		return arena.Nil, err
	}
	n.left = left
	return x, nil
}

// findDelLeft ports diet.c's less_than_or_equal: it pushes lo leftward
// through the tree, blitting the gaps it crosses, and returns the subtree
// that survives plus the new low endpoint for the node being built above it.
func (t *Tree[C]) findDelLeft(x arena.Handle, lo, blitLow, blitHigh C, blit Blit[C]) (arena.Handle, C, error) {
	if x == arena.Nil {
		return arena.Nil, lo, nil
	}

	n := t.a.Get(x)

	if lo > n.high+1 {
		newBlitLow := n.high + 1
		newBlitHigh := blitLow

		r2, newLow, err := t.findDelLeft(n.right, lo, newBlitLow, newBlitHigh, blit)
		if err != nil {
			return arena.Nil, 0, err
		}

		h, err := t.newNode(n.low, n.high, n.left, r2)
		if err != nil {
			return arena.Nil, 0, err
		}
		return h, minC(lo, newLow), nil
	}

	if lo >= n.low {
		blit(n.high+1, blitHigh)
		return n.left, n.low, nil
	}

	blit(n.high+1, blitHigh)
	newBlitHigh := n.low - 1
	if n.left == arena.Nil {
		blit(blitLow, newBlitHigh)
	}
	return t.findDelLeft(n.left, lo, blitLow, newBlitHigh, blit)
}

// findDelRight ports diet.c's greater_than_or_equal: the symmetric
// rightward push for the hi endpoint.
func (t *Tree[C]) findDelRight(x arena.Handle, hi, blitLow, blitHigh C, blit Blit[C]) (arena.Handle, C, error) {
	if x == arena.Nil {
		return arena.Nil, hi, nil
	}

	n := t.a.Get(x)

	if hi < n.low-1 {
		newBlitLow := blitHigh
		newBlitHigh := n.low - 1

		l2, newHigh, err := t.findDelRight(n.left, hi, newBlitLow, newBlitHigh, blit)
		if err != nil {
			return arena.Nil, 0, err
		}

		h, err := t.newNode(n.low, n.high, l2, n.right)
		if err != nil {
			return arena.Nil, 0, err
		}
		return h, maxC(hi, newHigh), nil
	}

	if hi <= n.high {
		blit(blitLow, n.low-1)
		return n.right, n.high, nil
	}

	blit(blitLow, n.low-1)
	newBlitLow := n.high + 1
	if n.right == arena.Nil {
		blit(newBlitLow, blitHigh)
	}
	return t.findDelRight(n.right, hi, newBlitLow, blitHigh, blit)
}

// Contains reports whether v is a member of the stored set.
func (t *Tree[C]) Contains(v C) bool {
	x := t.root
	for x != arena.Nil {
		n := t.a.Get(x)
		if v >= n.low && v <= n.high {
			return true
		}
		if v < n.low {
			x = n.left
		} else {
			x = n.right
		}
	}
	return false
}

// Remove deletes [zstart, zend] from the set. The range must be fully
// contained within the stored set. This is a supplemental operation beyond
// spec.md's explicit operation list (SPEC_FULL.md §4.3), ported from the
// teacher package's remove/splitmax/merge
// (zyedidia-generic/diet/diet.go) into arena-handle style.
func (t *Tree[C]) Remove(zstart, zend C) error {
	if zstart > zend {
		return arena.ErrInvalidInterval
	}
	newRoot, err := t.remove(t.root, zstart, zend)
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

func (t *Tree[C]) remove(x arena.Handle, zstart, zend C) (arena.Handle, error) {
	if x == arena.Nil {
		return arena.Nil, nil
	}
	n := t.a.Get(x)

	switch {
	case zend < n.low:
		l, err := t.remove(n.left, zstart, zend)
		if err != nil {
			return arena.Nil, err
		}
		return t.newNode(n.low, n.high, l, n.right)
	case zstart > n.high:
		r, err := t.remove(n.right, zstart, zend)
		if err != nil {
			return arena.Nil, err
		}
		return t.newNode(n.low, n.high, n.left, r)
	case zstart == n.low:
		if zend == n.high {
			return t.merge(n.left, n.right)
		}
		return t.newNode(zend+1, n.high, n.left, n.right)
	case zend == n.high:
		return t.newNode(n.low, zstart-1, n.left, n.right)
	default:
		rightPiece, err := t.newNode(zend+1, n.high, arena.Nil, n.right)
		if err != nil {
			return arena.Nil, err
		}
		return t.newNode(n.low, zstart-1, n.left, rightPiece)
	}
}

func (t *Tree[C]) merge(l, r arena.Handle) (arena.Handle, error) {
	if r == arena.Nil {
		return l, nil
	}
	if l == arena.Nil {
		return r, nil
	}
	x, y, lp, err := t.splitMax(l)
	if err != nil {
		return arena.Nil, err
	}
	return t.newNode(x, y, lp, r)
}

func (t *Tree[C]) splitMax(x arena.Handle) (C, C, arena.Handle, error) {
	n := t.a.Get(x)
	if n.right == arena.Nil {
		return n.low, n.high, n.left, nil
	}
	u, v, rp, err := t.splitMax(n.right)
	if err != nil {
		var zero C
		return zero, zero, arena.Nil, err
	}
	h, err := t.newNode(n.low, n.high, n.left, rp)
	return u, v, h, err
}

// each walks the tree inorder, calling fn with every stored (low, high).
func (t *Tree[C]) each(x arena.Handle, fn func(low, high C)) {
	if x == arena.Nil {
		return
	}
	n := t.a.Get(x)
	t.each(n.left, fn)
	fn(n.low, n.high)
	t.each(n.right, fn)
}

// Each calls fn with every stored interval, in ascending order.
func (t *Tree[C]) Each(fn func(low, high C)) {
	t.each(t.root, fn)
}

// CheckOrder verifies the BST-ordering invariant: inorder low values are
// non-decreasing (spec.md §3 invariant 1, §8 property 6 precondition).
func (t *Tree[C]) CheckOrder() error {
	var prev C
	var have bool
	var err error
	t.each(t.root, func(low, high C) {
		if err != nil {
			return
		}
		if have && low < prev {
			err = fmt.Errorf("diet: order violated: %v came after %v", low, prev)
		}
		prev, have = low, true
	})
	return err
}

// CheckIsolation verifies that no two stored intervals overlap or are
// adjacent by one (spec.md §3 invariant 2, §8 property 6).
func (t *Tree[C]) CheckIsolation() error {
	var ivs [][2]C
	t.each(t.root, func(low, high C) {
		ivs = append(ivs, [2]C{low, high})
	})
	for i := range ivs {
		for j := i + 1; j < len(ivs); j++ {
			x, y := ivs[i], ivs[j]
			if x[0] <= y[1]+1 && y[0] <= x[1]+1 {
				return fmt.Errorf("diet: isolation violated between [%v,%v] and [%v,%v]", x[0], x[1], y[0], y[1])
			}
		}
	}
	return nil
}

// CheckAll runs every structural verifier.
func (t *Tree[C]) CheckAll() error {
	if err := t.CheckOrder(); err != nil {
		return err
	}
	return t.CheckIsolation()
}
