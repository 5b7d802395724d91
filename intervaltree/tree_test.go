package intervaltree_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikatre/dietree/arena"
	"github.com/mikatre/dietree/internal/oracle"
	"github.com/mikatre/dietree/intervaltree"
)

func TestInsertRejectsBackwardsInterval(t *testing.T) {
	tr := intervaltree.New[int](8)
	err := tr.Insert(5, 2)
	require.ErrorIs(t, err, arena.ErrInvalidInterval)
}

func TestInsertCapacityExhausted(t *testing.T) {
	tr := intervaltree.New[int](1)
	require.NoError(t, tr.Insert(1, 2))
	err := tr.Insert(3, 4)
	require.ErrorIs(t, err, arena.ErrFull)
}

func TestSearchAndFindAllOverlapping(t *testing.T) {
	tr := intervaltree.New[int](16)
	for _, iv := range [][2]int{{15, 20}, {10, 30}, {17, 19}, {5, 20}, {12, 15}, {30, 40}} {
		require.NoError(t, tr.Insert(iv[0], iv[1]))
	}

	h, ok := tr.Search(6, 7)
	require.True(t, ok)
	low, high := tr.Interval(h)
	assert.True(t, low <= 7 && 6 <= high)

	_, ok = tr.Search(100, 200)
	assert.False(t, ok)

	all := tr.FindAllOverlapping(14, 16)
	assert.Len(t, all, 4) // [15,20] [10,30] [5,20] [12,15]
}

func gatherIntervals(t *testing.T, tr *intervaltree.Tree[int]) []oracle.Interval[int, arena.Handle] {
	var out []oracle.Interval[int, arena.Handle]
	tr.Each().For(func(h arena.Handle) {
		low, high := tr.Interval(h)
		out = append(out, oracle.Interval[int, arena.Handle]{Low: low, High: high, Handle: h})
	})
	return out
}

// TestRandomInsertAndOverlapOracle is scenario E7 from spec.md §8: 300-600
// random intervals with low in [1,200], high = low + r, r in [0,199];
// after every insertion every structural invariant holds, and once all are
// inserted FindAllOverlapping agrees with a linear scan for every (i, j)
// with i <= j in the spanned range.
func TestRandomInsertAndOverlapOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	n := 300 + rng.Intn(300)

	tr := intervaltree.New[int](n)
	for i := 0; i < n; i++ {
		low := 1 + rng.Intn(200)
		high := low + rng.Intn(200)
		require.NoError(t, tr.Insert(low, high))
		require.NoError(t, tr.CheckAll())
	}

	intervals := gatherIntervals(t, tr)

	minLow, maxHigh := 1, 1
	for _, iv := range intervals {
		if iv.Low < minLow {
			minLow = iv.Low
		}
		if iv.High > maxHigh {
			maxHigh = iv.High
		}
	}

	for i := minLow; i <= maxHigh; i++ {
		for j := i; j <= maxHigh; j++ {
			got := tr.FindAllOverlapping(i, j)
			want := oracle.NaiveOverlap(intervals, i, j)
			assert.True(t, oracle.SameSet(got, want), "mismatch at (%d,%d)", i, j)
		}
	}
}
