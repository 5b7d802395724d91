package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikatre/dietree/arena"
)

func TestAllocGetReset(t *testing.T) {
	a := arena.New[int](4)
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 4, a.Cap())

	h0, err := a.Alloc(10)
	require.NoError(t, err)
	h1, err := a.Alloc(20)
	require.NoError(t, err)

	assert.Equal(t, 10, *a.Get(h0))
	assert.Equal(t, 20, *a.Get(h1))

	*a.Get(h0) = 99
	assert.Equal(t, 99, *a.Get(h0))

	a.Reset()
	assert.Equal(t, 0, a.Len())

	h2, err := a.Alloc(5)
	require.NoError(t, err)
	assert.Equal(t, arena.Handle(0), h2)
}

func TestAllocFull(t *testing.T) {
	a := arena.New[int](2)
	_, err := a.Alloc(1)
	require.NoError(t, err)
	_, err = a.Alloc(2)
	require.NoError(t, err)

	_, err = a.Alloc(3)
	require.Error(t, err)
	assert.ErrorIs(t, err, arena.ErrFull)
}

func TestNilHandle(t *testing.T) {
	assert.Equal(t, arena.Handle(-1), arena.Nil)
}
