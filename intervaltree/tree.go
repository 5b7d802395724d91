// Package intervaltree implements an augmented AVL tree over closed integer
// intervals [low, high]. Intervals may overlap; the tree is keyed by low
// endpoint and every node caches the maximum high endpoint of its subtree
// so that overlap queries can prune whole subtrees. See SPEC_FULL.md §4.2.
package intervaltree

import (
	"golang.org/x/exp/constraints"

	"github.com/mikatre/dietree/arena"
	"github.com/mikatre/dietree/iter"
)

type node[C constraints.Signed] struct {
	low, high C
	max       C

	left, right, parent arena.Handle
	height               int
}

// Tree is an interval AVL tree over coordinate type C, augmented with
// subtree-max so that Search runs in O(lg n) and FindAllOverlapping can skip
// any subtree whose max lies below the query's low.
type Tree[C constraints.Signed] struct {
	a    *arena.Arena[node[C]]
	root arena.Handle
}

// New returns an empty interval tree with room for at most capacity
// intervals.
func New[C constraints.Signed](capacity int) *Tree[C] {
	return &Tree[C]{
		a:    arena.New[node[C]](capacity),
		root: arena.Nil,
	}
}

func (t *Tree[C]) height(h arena.Handle) int {
	if h == arena.Nil {
		return 0
	}
	return t.a.Get(h).height
}

func (t *Tree[C]) maxOf(h arena.Handle) (C, bool) {
	if h == arena.Nil {
		var zero C
		return zero, false
	}
	return t.a.Get(h).max, true
}

func (t *Tree[C]) updateHeight(x arena.Handle) {
	n := t.a.Get(x)
	lh, rh := t.height(n.left), t.height(n.right)
	if lh > rh {
		n.height = 1 + lh
	} else {
		n.height = 1 + rh
	}
}

func (t *Tree[C]) updateMax(x arena.Handle) {
	n := t.a.Get(x)
	m := n.high
	if lm, ok := t.maxOf(n.left); ok && lm > m {
		m = lm
	}
	if rm, ok := t.maxOf(n.right); ok && rm > m {
		m = rm
	}
	n.max = m
}

func (t *Tree[C]) diff(x arena.Handle) int {
	n := t.a.Get(x)
	return t.height(n.right) - t.height(n.left)
}

// rightRotate and leftRotate mirror avl_tree_ref.c's right_rotate/
// left_rotate exactly: the displaced grandchild's parent is fixed up, the
// pivot's parent slot is reassigned (or root updated), and both rotated
// nodes have height then max recomputed, child before parent.
func (t *Tree[C]) rightRotate(x arena.Handle) arena.Handle {
	xn := t.a.Get(x)
	y := xn.left
	yn := t.a.Get(y)

	xn.left = yn.right
	if yn.right != arena.Nil {
		t.a.Get(yn.right).parent = x
	}

	yn.parent = xn.parent
	if xn.parent == arena.Nil {
		t.root = y
	} else {
		p := t.a.Get(xn.parent)
		if p.left == x {
			p.left = y
		} else {
			p.right = y
		}
	}

	yn.right = x
	xn.parent = y

	t.updateHeight(x)
	t.updateHeight(y)
	t.updateMax(x)
	t.updateMax(y)

	return y
}

func (t *Tree[C]) leftRotate(x arena.Handle) arena.Handle {
	xn := t.a.Get(x)
	y := xn.right
	yn := t.a.Get(y)

	xn.right = yn.left
	if yn.left != arena.Nil {
		t.a.Get(yn.left).parent = x
	}

	yn.parent = xn.parent
	if xn.parent == arena.Nil {
		t.root = y
	} else {
		p := t.a.Get(xn.parent)
		if p.left == x {
			p.left = y
		} else {
			p.right = y
		}
	}

	yn.left = x
	xn.parent = y

	t.updateHeight(x)
	t.updateHeight(y)
	t.updateMax(x)
	t.updateMax(y)

	return y
}

// balance applies the four standard AVL rotation cases at x, per
// spec.md §4.2, returning the (possibly new) root of the subtree. It always
// leaves height and max correct at x even when no rotation was needed.
func (t *Tree[C]) balance(x arena.Handle) arena.Handle {
	d := t.diff(x)

	if d > 1 {
		if t.diff(t.a.Get(x).right) < 0 {
			t.a.Get(x).right = t.rightRotate(t.a.Get(x).right)
		}
		return t.leftRotate(x)
	}
	if d < -1 {
		if t.diff(t.a.Get(x).left) > 0 {
			t.a.Get(x).left = t.leftRotate(t.a.Get(x).left)
		}
		return t.rightRotate(x)
	}

	t.updateHeight(x)
	t.updateMax(x)
	return x
}

// Insert adds interval [low, high] to the tree as a new BST leaf ordered by
// low (equal keys fall to the right, per spec.md §9), then rebalances along
// the path back to the root. It reports arena.ErrFull if the tree's
// capacity is exhausted and arena.ErrInvalidInterval if low > high.
func (t *Tree[C]) Insert(low, high C) error {
	if low > high {
		return arena.ErrInvalidInterval
	}

	n, err := t.a.Alloc(node[C]{
		low: low, high: high, max: high,
		left: arena.Nil, right: arena.Nil, parent: arena.Nil,
		height: 1,
	})
	if err != nil {
		return err
	}

	if t.root == arena.Nil {
		t.root = n
		return nil
	}

	x := t.root
	var p arena.Handle
	for x != arena.Nil {
		p = x
		if low < t.a.Get(x).low {
			x = t.a.Get(x).left
		} else {
			x = t.a.Get(x).right
		}
	}

	if low < t.a.Get(p).low {
		t.a.Get(p).left = n
	} else {
		t.a.Get(p).right = n
	}
	t.a.Get(n).parent = p

	x = n
	for t.a.Get(x).parent != arena.Nil {
		x = t.a.Get(x).parent
		x = t.balance(x)
	}
	t.root = x

	return nil
}

func overlap[C constraints.Signed](a0, a1, b0, b1 C) bool {
	return a0 <= b1 && b0 <= a1
}

// Search returns any node whose interval overlaps [low, high], or
// (arena.Nil, false) if none does.
func (t *Tree[C]) Search(low, high C) (arena.Handle, bool) {
	x := t.root
	for x != arena.Nil {
		n := t.a.Get(x)
		if overlap(low, high, n.low, n.high) {
			return x, true
		}
		left := n.left
		if left != arena.Nil && t.a.Get(left).max >= low {
			x = left
		} else {
			x = n.right
		}
	}
	return arena.Nil, false
}

// FindAllOverlapping returns every node whose interval overlaps
// [low, high], pruning subtrees whose max is below low, per spec.md §4.2.
func (t *Tree[C]) FindAllOverlapping(low, high C) []arena.Handle {
	var results []arena.Handle
	t.findAllOverlapping(t.root, low, high, &results)
	return results
}

func (t *Tree[C]) findAllOverlapping(x arena.Handle, low, high C, out *[]arena.Handle) {
	if x == arena.Nil {
		return
	}
	n := t.a.Get(x)
	if overlap(low, high, n.low, n.high) {
		*out = append(*out, x)
	}
	if n.left != arena.Nil && t.a.Get(n.left).max >= low {
		t.findAllOverlapping(n.left, low, high, out)
	}
	if n.right != arena.Nil && t.a.Get(n.right).max >= low {
		t.findAllOverlapping(n.right, low, high, out)
	}
}

// Interval returns the stored [low, high] for a handle previously returned
// by Search, FindAllOverlapping or Each.
func (t *Tree[C]) Interval(h arena.Handle) (low, high C) {
	n := t.a.Get(h)
	return n.low, n.high
}

// Len reports how many intervals have been inserted.
func (t *Tree[C]) Len() int {
	return t.a.Len()
}

// Each returns an inorder iterator over the handle of every stored interval
// (use Interval to read its low and high), adapted
// from the teacher package's closure-based Iter idiom
// (zyedidia-generic/iter).
func (t *Tree[C]) Each() iter.Iter[arena.Handle] {
	return t.inorder(t.root)
}

func (t *Tree[C]) inorder(x arena.Handle) iter.Iter[arena.Handle] {
	if x == arena.Nil {
		return func() (arena.Handle, bool) {
			return arena.Nil, false
		}
	}

	var didself bool
	n := t.a.Get(x)
	left := t.inorder(n.left)
	right := t.inorder(n.right)
	return func() (arena.Handle, bool) {
		if v, ok := left(); ok {
			return v, true
		}
		if !didself {
			didself = true
			return x, true
		}
		return right()
	}
}
