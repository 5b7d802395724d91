package intervaltree

import (
	"fmt"

	"github.com/mikatre/dietree/arena"
)

// CheckOrder verifies that an inorder traversal yields non-decreasing low
// values, i.e. the BST-ordering invariant (spec.md §3 invariant 1, §8
// property 1).
func (t *Tree[C]) CheckOrder() error {
	var prev C
	var have bool
	var err error
	it := t.Each()
	it.ForBreak(func(h arena.Handle) bool {
		low, _ := t.Interval(h)
		if have && low < prev {
			err = fmt.Errorf("intervaltree: order violated: %v came after %v", low, prev)
			return false
		}
		prev, have = low, true
		return true
	})
	return err
}

// CheckHeights verifies that every node's recorded height equals
// 1 + max(height(left), height(right)) (spec.md §8 property 3).
func (t *Tree[C]) CheckHeights() error {
	return t.checkHeights(t.root)
}

func (t *Tree[C]) checkHeights(x arena.Handle) error {
	if x == arena.Nil {
		return nil
	}
	n := t.a.Get(x)
	want := 1 + max(t.height(n.left), t.height(n.right))
	if n.height != want {
		return fmt.Errorf("intervaltree: height mismatch at [%v,%v]: got %d want %d", n.low, n.high, n.height, want)
	}
	if d := t.diff(x); d < -1 || d > 1 {
		return fmt.Errorf("intervaltree: balance factor %d out of range at [%v,%v]", d, n.low, n.high)
	}
	if err := t.checkHeights(n.left); err != nil {
		return err
	}
	return t.checkHeights(n.right)
}

// CheckMax verifies that every node's recorded max equals
// max(high, left.max, right.max) (spec.md §8 property 4).
func (t *Tree[C]) CheckMax() error {
	return t.checkMax(t.root)
}

func (t *Tree[C]) checkMax(x arena.Handle) error {
	if x == arena.Nil {
		return nil
	}
	n := t.a.Get(x)
	want := n.high
	if lm, ok := t.maxOf(n.left); ok && lm > want {
		want = lm
	}
	if rm, ok := t.maxOf(n.right); ok && rm > want {
		want = rm
	}
	if n.max != want {
		return fmt.Errorf("intervaltree: max mismatch at [%v,%v]: got %v want %v", n.low, n.high, n.max, want)
	}
	if err := t.checkMax(n.left); err != nil {
		return err
	}
	return t.checkMax(n.right)
}

// CheckAll runs every structural verifier.
func (t *Tree[C]) CheckAll() error {
	if err := t.CheckOrder(); err != nil {
		return err
	}
	if err := t.CheckHeights(); err != nil {
		return err
	}
	return t.CheckMax()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
