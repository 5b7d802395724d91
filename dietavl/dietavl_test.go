package dietavl_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikatre/dietree/arena"
	"github.com/mikatre/dietree/dietavl"
	"github.com/mikatre/dietree/internal/oracle"
)

func noopBlit(lo, hi int) {}

func TestInsertRejectsBackwardsInterval(t *testing.T) {
	tr := dietavl.New[int](8)
	err := tr.Insert(5, 2, noopBlit)
	require.ErrorIs(t, err, arena.ErrInvalidInterval)
}

func TestInsertCapacityExhausted(t *testing.T) {
	tr := dietavl.New[int](1)
	require.NoError(t, tr.Insert(10, 20, noopBlit))
	err := tr.Insert(100, 200, noopBlit)
	require.ErrorIs(t, err, arena.ErrFull)
}

func TestCoalescesAdjacentAndOverlapping(t *testing.T) {
	tr := dietavl.New[int](8)
	require.NoError(t, tr.Insert(10, 20, noopBlit))
	require.NoError(t, tr.Insert(21, 25, noopBlit))
	require.NoError(t, tr.Insert(18, 22, noopBlit))

	for v := 10; v <= 25; v++ {
		assert.True(t, tr.Contains(v), "expected %d contained", v)
	}
	assert.False(t, tr.Contains(9))
	assert.False(t, tr.Contains(26))
	require.NoError(t, tr.CheckAll())
}

func TestIdempotentReinsert(t *testing.T) {
	tr := dietavl.New[int](8)
	require.NoError(t, tr.Insert(10, 30, noopBlit))

	var blitted [][2]int
	require.NoError(t, tr.Insert(15, 20, func(lo, hi int) {
		blitted = append(blitted, [2]int{lo, hi})
	}))
	assert.Empty(t, blitted)
	require.NoError(t, tr.CheckAll())
}

// TestDisjointRangesStayBalanced mirrors diet3.c's own main() test cases:
// several disjoint inserts followed by one large overlapping insert.
func TestDisjointRangesStayBalanced(t *testing.T) {
	tr := dietavl.New[int](32)
	ranges := [][2]int{{1, 3}, {7, 9}, {13, 15}, {19, 21}, {24, 26}}
	for _, r := range ranges {
		require.NoError(t, tr.Insert(r[0], r[1], noopBlit))
		require.NoError(t, tr.CheckAll())
	}

	require.NoError(t, tr.Insert(2, 25, noopBlit))
	require.NoError(t, tr.CheckAll())

	for v := 1; v <= 26; v++ {
		assert.True(t, tr.Contains(v), "expected %d contained after merge", v)
	}
}

// TestRandomInsertBlitFidelity is the balanced-variant analogue of the
// blit-protocol random scenario in package diet, additionally checking
// height-balance after every insert (spec.md §8 property 9).
func TestRandomInsertBlitFidelity(t *testing.T) {
	const domainLo, domainHi = 1, 400
	rng := rand.New(rand.NewSource(11))

	tr := dietavl.New[int](2000)
	reference := oracle.NewBitmask(domainLo, domainHi)
	viaBlit := oracle.NewBitmask(domainLo, domainHi)

	n := 150 + rng.Intn(150)
	for i := 0; i < n; i++ {
		low := domainLo + rng.Intn(domainHi-domainLo)
		high := low + rng.Intn(domainHi-low+1)
		if high > domainHi {
			high = domainHi
		}

		err := tr.Insert(low, high, func(lo, hi int) {
			for v := lo; v <= hi; v++ {
				require.False(t, reference.Get(v), "blit on already-present integer %d", v)
			}
			viaBlit.Set(lo, hi)
		})
		require.NoError(t, err)

		reference.Set(low, high)
		require.NoError(t, tr.CheckAll())

		for v := domainLo; v <= domainHi; v++ {
			assert.Equal(t, reference.Get(v), tr.Contains(v), "mismatch at %d after insert [%d,%d]", v, low, high)
		}
	}

	assert.True(t, viaBlit.Equal(reference), "blit-only bitmask diverged from reference bitmask")
}
