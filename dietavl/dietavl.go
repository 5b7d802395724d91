// Package dietavl implements an AVL-balanced Discrete Interval Encoding
// Tree: the same blit-protocol set-of-intervals structure as package diet,
// but height-balanced so insert runs in O(lg n) instead of O(n) worst case.
//
// Ground truth: original_source/misc/diet3.c, based on
// https://github.com/tcsprojects/camldiets. Unlike package diet's mutating
// style (grounded on diet.c), this variant is allocating throughout: every
// structural change calls create/join/balance to build fresh nodes, exactly
// as diet3.c never frees a node once allocated. bal_const is fixed at 1, as
// in the source.
package dietavl

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/mikatre/dietree/arena"
)

// Blit is called by Insert with sub-ranges of integers that were not
// previously covered by the tree. See package diet's Blit for the exact
// contract; it is identical here.
type Blit[C constraints.Signed] func(lo, hi C)

const balConst = 1

type node[C constraints.Signed] struct {
	low, high   C
	height      int
	left, right arena.Handle
}

// Tree is an AVL-balanced DIET over coordinate type C.
type Tree[C constraints.Signed] struct {
	a    *arena.Arena[node[C]]
	root arena.Handle
}

// New returns an empty balanced DIET with room for at most capacity nodes.
// Because this variant never reuses a node once allocated (it rebuilds
// subtrees on every structural change, per diet3.c), capacity should be
// sized generously relative to the expected number of Insert calls.
func New[C constraints.Signed](capacity int) *Tree[C] {
	return &Tree[C]{
		a:    arena.New[node[C]](capacity),
		root: arena.Nil,
	}
}

func (t *Tree[C]) height(x arena.Handle) int {
	if x == arena.Nil {
		return 0
	}
	return t.a.Get(x).height
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (t *Tree[C]) heightJoin(l, r arena.Handle) int {
	return 1 + maxInt(t.height(l), t.height(r))
}

func (t *Tree[C]) newNode(low, high C, height int, left, right arena.Handle) (arena.Handle, error) {
	return t.a.Alloc(node[C]{low: low, high: high, height: height, left: left, right: right})
}

func (t *Tree[C]) create(low, high C, l, r arena.Handle) (arena.Handle, error) {
	return t.newNode(low, high, t.heightJoin(l, r), l, r)
}

// balance ports diet3.c's balance(): the standard AVL four-case rotation,
// expressed over (low, high, l, r) rather than an existing node, since this
// style always builds a fresh node for the rebalanced root.
func (t *Tree[C]) balance(low, high C, l, r arena.Handle) (arena.Handle, error) {
	hl, hr := t.height(l), t.height(r)

	if hl > hr+balConst {
		ln := t.a.Get(l)
		ls, le, ll, lr := ln.low, ln.high, ln.left, ln.right

		if t.height(ll) >= t.height(lr) {
			inner, err := t.create(low, high, lr, r)
			if err != nil {
				return arena.Nil, err
			}
			return t.create(ls, le, ll, inner)
		}

		lrn := t.a.Get(lr)
		lrs, lre, lrl, lrr := lrn.low, lrn.high, lrn.left, lrn.right

		left, err := t.create(ls, le, ll, lrl)
		if err != nil {
			return arena.Nil, err
		}
		right, err := t.create(low, high, lrr, r)
		if err != nil {
			return arena.Nil, err
		}
		return t.create(lrs, lre, left, right)
	}

	if hr > hl+balConst {
		rn := t.a.Get(r)
		rs, re, rl, rr := rn.low, rn.high, rn.left, rn.right

		if t.height(rr) >= t.height(rl) {
			inner, err := t.create(low, high, l, rl)
			if err != nil {
				return arena.Nil, err
			}
			return t.create(rs, re, inner, rr)
		}

		rln := t.a.Get(rl)
		rls, rle, rll, rlr := rln.low, rln.high, rln.left, rln.right

		left, err := t.create(low, high, l, rll)
		if err != nil {
			return arena.Nil, err
		}
		right, err := t.create(rs, re, rlr, rr)
		if err != nil {
			return arena.Nil, err
		}
		return t.create(rls, rle, left, right)
	}

	return t.newNode(low, high, 1+maxInt(hl, hr), l, r)
}

func (t *Tree[C]) add(tree arena.Handle, left bool, low, high C) (arena.Handle, error) {
	if tree == arena.Nil {
		return t.newNode(low, high, 1, arena.Nil, arena.Nil)
	}
	n := t.a.Get(tree)
	if left {
		newL, err := t.add(n.left, left, low, high)
		if err != nil {
			return arena.Nil, err
		}
		return t.balance(n.low, n.high, newL, n.right)
	}
	newR, err := t.add(n.right, left, low, high)
	if err != nil {
		return arena.Nil, err
	}
	return t.balance(n.low, n.high, n.left, newR)
}

// join ports diet3.c's join(): combine l, [low,high], r into one balanced
// tree, where every element of l is known to precede low and every element
// of r is known to follow high.
func (t *Tree[C]) join(low, high C, l, r arena.Handle) (arena.Handle, error) {
	if l == arena.Nil {
		return t.add(r, true, low, high)
	}
	if r == arena.Nil {
		return t.add(l, false, low, high)
	}

	ln := t.a.Get(l)
	rn := t.a.Get(r)

	if ln.height > rn.height+balConst {
		newR, err := t.join(low, high, ln.right, r)
		if err != nil {
			return arena.Nil, err
		}
		return t.balance(ln.low, ln.high, ln.left, newR)
	}
	if rn.height > ln.height+balConst {
		newL, err := t.join(low, high, l, rn.left)
		if err != nil {
			return arena.Nil, err
		}
		return t.balance(rn.low, rn.high, newL, rn.right)
	}
	return t.create(low, high, l, r)
}

// Insert extends the set to include every integer in [low, high]. See
// package diet's Insert for the exact blit contract.
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

func (t *Tree[C]) insertRange(x arena.Handle, low, high C, blit Blit[C]) (arena.Handle, error) {
	if x == arena.Nil {
		blit(low, high)
		return t.newNode(low, high, 1, arena.Nil, arena.Nil)
	}

	n := t.a.Get(x)

	if high < n.low-1 {
		newLeft, err := t.insertRange(n.left, low, high, blit)
		if err != nil {
			return arena.Nil, err
		}
		return t.join(n.low, n.high, newLeft, n.right)
	}
	if low > n.high+1 {
		newRight, err := t.insertRange(n.right, low, high, blit)
		if err != nil {
			return arena.Nil, err
		}
		return t.join(n.low, n.high, n.left, newRight)
	}

	defBlitStart := n.high + 1
	defBlitEnd := n.low - 1

	var newLow C
	var newLeft arena.Handle
	if low >= n.low {
		newLow, newLeft = n.low, n.left
	} else {
		var err error
		newLow, newLeft, err = t.findDelLeft(n.left, low, defBlitEnd, blit)
		if err != nil {
			return arena.Nil, err
		}
	}

	var newHigh C
	var newRight arena.Handle
	if high <= n.high {
		newHigh, newRight = n.high, n.right
	} else {
		var err error
		newHigh, newRight, err = t.findDelRight(n.right, high, defBlitStart, blit)
		if err != nil {
			return arena.Nil, err
		}
	}

	return t.join(newLow, newHigh, newLeft, newRight)
}

// findDelLeft ports diet3.c's find_del_left: pushes lo leftward through the
// tree, blitting the gaps it crosses, rejoining whatever it passes through
// along the way (since this style must keep every visited subtree
// height-balanced).
func (t *Tree[C]) findDelLeft(x arena.Handle, lo, defBlitEnd C, blit Blit[C]) (C, arena.Handle, error) {
	if x == arena.Nil {
		blit(lo, defBlitEnd)
		return lo, arena.Nil, nil
	}

	n := t.a.Get(x)

	if lo > n.high+1 {
		newLow, newRight, err := t.findDelLeft(n.right, lo, defBlitEnd, blit)
		if err != nil {
			return 0, arena.Nil, err
		}
		joined, err := t.join(n.low, n.high, n.left, newRight)
		if err != nil {
			return 0, arena.Nil, err
		}
		return newLow, joined, nil
	}
	if lo < n.low {
		return t.findDelLeft(n.left, lo, defBlitEnd, blit)
	}

	blit(n.high+1, defBlitEnd)
	return n.low, n.left, nil
}

// findDelRight ports diet3.c's find_del_right: the symmetric rightward push.
func (t *Tree[C]) findDelRight(x arena.Handle, hi, defBlitStart C, blit Blit[C]) (C, arena.Handle, error) {
	if x == arena.Nil {
		blit(defBlitStart, hi)
		return hi, arena.Nil, nil
	}

	n := t.a.Get(x)

	if hi < n.low-1 {
		newHigh, newLeft, err := t.findDelRight(n.left, hi, defBlitStart, blit)
		if err != nil {
			return 0, arena.Nil, err
		}
		joined, err := t.join(n.low, n.high, newLeft, n.right)
		if err != nil {
			return 0, arena.Nil, err
		}
		return newHigh, joined, nil
	}
	if hi > n.high {
		return t.findDelRight(n.right, hi, defBlitStart, blit)
	}

	blit(defBlitStart, n.low-1)
	return n.high, n.right, nil
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

// CheckOrder verifies the BST-ordering invariant (spec.md §3 invariant 1).
func (t *Tree[C]) CheckOrder() error {
	var prev C
	var have bool
	var err error
	t.each(t.root, func(low, high C) {
		if err != nil {
			return
		}
		if have && low < prev {
			err = fmt.Errorf("dietavl: order violated: %v came after %v", low, prev)
		}
		prev, have = low, true
	})
	return err
}

// CheckIsolation verifies that no two stored intervals overlap or are
// adjacent by one (spec.md §3 invariant 2).
func (t *Tree[C]) CheckIsolation() error {
	var ivs [][2]C
	t.each(t.root, func(low, high C) {
		ivs = append(ivs, [2]C{low, high})
	})
	for i := range ivs {
		for j := i + 1; j < len(ivs); j++ {
			x, y := ivs[i], ivs[j]
			if x[0] <= y[1]+1 && y[0] <= x[1]+1 {
				return fmt.Errorf("dietavl: isolation violated between [%v,%v] and [%v,%v]", x[0], x[1], y[0], y[1])
			}
		}
	}
	return nil
}

// CheckHeights verifies every node's recorded height equals
// 1 + max(height(left), height(right)), and that the tree stays within
// bal_const=1 of balanced at every node (spec.md §8 property 9).
func (t *Tree[C]) CheckHeights() error {
	return t.checkHeights(t.root)
}

func (t *Tree[C]) checkHeights(x arena.Handle) error {
	if x == arena.Nil {
		return nil
	}
	n := t.a.Get(x)
	want := 1 + maxInt(t.height(n.left), t.height(n.right))
	if n.height != want {
		return fmt.Errorf("dietavl: height mismatch at [%v,%v]: got %d want %d", n.low, n.high, n.height, want)
	}
	diff := t.height(n.right) - t.height(n.left)
	if diff < -balConst || diff > balConst {
		return fmt.Errorf("dietavl: balance factor %d out of range at [%v,%v]", diff, n.low, n.high)
	}
	if err := t.checkHeights(n.left); err != nil {
		return err
	}
	return t.checkHeights(n.right)
}

// CheckAll runs every structural verifier.
func (t *Tree[C]) CheckAll() error {
	if err := t.CheckOrder(); err != nil {
		return err
	}
	if err := t.CheckIsolation(); err != nil {
		return err
	}
	return t.CheckHeights()
}
