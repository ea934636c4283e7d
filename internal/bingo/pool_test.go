package bingo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawPoolInvariants(t *testing.T) {
	t.Parallel()

	pool := NewDrawPool()
	seen := make(map[int]bool)

	for i := 0; i < MaxNumber; i++ {
		n, ok := pool.DrawNext()
		require.True(t, ok, "draw %d should succeed", i+1)
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, MaxNumber)
		require.False(t, seen[n], "number %d drawn twice", n)
		seen[n] = true

		require.Len(t, pool.History(), i+1)
		require.Equal(t, MaxNumber-i-1, pool.Remaining())
	}

	assert.Len(t, seen, MaxNumber, "all numbers must eventually be drawn")
}

func TestDrawPoolExhaustion(t *testing.T) {
	t.Parallel()

	pool := NewDrawPool()
	for i := 0; i < MaxNumber; i++ {
		_, ok := pool.DrawNext()
		require.True(t, ok)
	}

	// The 76th draw reports exhaustion and leaves the history untouched.
	n, ok := pool.DrawNext()
	assert.False(t, ok)
	assert.Zero(t, n)
	assert.Len(t, pool.History(), MaxNumber)
	assert.Zero(t, pool.Remaining())
}

func TestDrawPoolHistoryIsACopy(t *testing.T) {
	t.Parallel()

	pool := NewDrawPool()
	_, ok := pool.DrawNext()
	require.True(t, ok)

	snapshot := pool.History()
	require.Len(t, snapshot, 1)
	first := snapshot[0]

	snapshot[0] = -1
	_, ok = pool.DrawNext()
	require.True(t, ok)

	fresh := pool.History()
	assert.Equal(t, first, fresh[0], "caller mutation must not reach the pool")
	assert.Len(t, fresh, 2)
}
