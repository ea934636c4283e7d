package bingo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCard is a fixed card with the band layout:
//
//	1 16 31 46 61
//	2 17 32 47 62
//	3 18  F 48 63
//	4 19 34 49 64
//	5 20 35 50 65
func testCard() Card {
	return Card{
		{1, 16, 31, 46, 61},
		{2, 17, 32, 47, 62},
		{3, 18, FreeCell, 48, 63},
		{4, 19, 34, 49, 64},
		{5, 20, 35, 50, 65},
	}
}

func marked(nums ...int) map[int]bool {
	m := make(map[int]bool, len(nums))
	for _, n := range nums {
		m[n] = true
	}
	return m
}

func TestEvaluateLineFamily(t *testing.T) {
	t.Parallel()

	card := testCard()

	t.Run("top row", func(t *testing.T) {
		res := Evaluate(card, marked(1, 16, 31, 46, 61), PatternLine)
		require.True(t, res.Won)
		assert.Equal(t, MatchRow, res.Pattern)
		assert.Equal(t, []Cell{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}}, res.Cells)
	})

	t.Run("middle row uses free centre", func(t *testing.T) {
		res := Evaluate(card, marked(3, 18, 48, 63), PatternLine)
		require.True(t, res.Won)
		assert.Equal(t, MatchRow, res.Pattern)
	})

	t.Run("column", func(t *testing.T) {
		res := Evaluate(card, marked(16, 17, 18, 19, 20), PatternLine)
		require.True(t, res.Won)
		assert.Equal(t, MatchColumn, res.Pattern)
		assert.Equal(t, []Cell{{0, 1}, {1, 1}, {2, 1}, {3, 1}, {4, 1}}, res.Cells)
	})

	t.Run("main diagonal", func(t *testing.T) {
		res := Evaluate(card, marked(1, 17, 49, 65), PatternLine)
		require.True(t, res.Won)
		assert.Equal(t, MatchDiagonal, res.Pattern)
	})

	t.Run("anti diagonal", func(t *testing.T) {
		res := Evaluate(card, marked(61, 47, 19, 5), PatternLine)
		require.True(t, res.Won)
		assert.Equal(t, MatchDiagonal, res.Pattern)
	})

	t.Run("four marks short of any line", func(t *testing.T) {
		res := Evaluate(card, marked(1, 16, 31, 46), PatternLine)
		assert.False(t, res.Won)
		assert.Empty(t, res.Cells)
	})
}

func TestEvaluateRowWinsBeforeColumn(t *testing.T) {
	t.Parallel()

	// Both row 0 and column 0 are complete; the check order reports rows
	// first.
	res := Evaluate(testCard(), marked(1, 2, 3, 4, 5, 16, 31, 46, 61), PatternLine)
	require.True(t, res.Won)
	assert.Equal(t, MatchRow, res.Pattern)
	assert.Equal(t, []Cell{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}}, res.Cells)
}

func TestEvaluateCorners(t *testing.T) {
	t.Parallel()

	card := testCard()

	res := Evaluate(card, marked(1, 61, 5, 65), PatternCorners)
	require.True(t, res.Won)
	assert.Equal(t, PatternCorners, res.Pattern)
	assert.Equal(t, []Cell{{0, 0}, {0, 4}, {4, 0}, {4, 4}}, res.Cells)

	res = Evaluate(card, marked(1, 61, 5), PatternCorners)
	assert.False(t, res.Won)
}

func TestEvaluateFullHouse(t *testing.T) {
	t.Parallel()

	card := testCard()
	all := marked(card.Numbers()...)

	res := Evaluate(card, all, PatternFull)
	require.True(t, res.Won)
	assert.Equal(t, PatternFull, res.Pattern)
	assert.Len(t, res.Cells, GridSize*GridSize)

	// One unmarked number short of a full house.
	short := marked(card.Numbers()...)
	delete(short, 35)
	res = Evaluate(card, short, PatternFull)
	assert.False(t, res.Won)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	t.Parallel()

	card := testCard()
	set := marked(1, 16, 31, 46, 61, 5, 65)

	first := Evaluate(card, set, PatternLine)
	second := Evaluate(card, set, PatternLine)
	assert.Equal(t, first, second)
}

func TestEvaluateUnmarkedCardNeverWins(t *testing.T) {
	t.Parallel()

	card := testCard()
	empty := map[int]bool{}

	for _, pattern := range []Pattern{PatternLine, PatternCorners, PatternFull} {
		res := Evaluate(card, empty, pattern)
		assert.False(t, res.Won, "pattern %s", pattern)
	}
}

func TestParsePattern(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PatternCorners, ParsePattern("corners"))
	assert.Equal(t, PatternFull, ParsePattern("full"))
	assert.Equal(t, PatternLine, ParsePattern("row"))
	assert.Equal(t, PatternLine, ParsePattern(""))
	assert.Equal(t, PatternLine, ParsePattern("nonsense"))
}

func TestMarkedSet(t *testing.T) {
	t.Parallel()

	set := MarkedSet([]int{4, 8, 15})
	assert.True(t, set[4])
	assert.True(t, set[15])
	assert.False(t, set[16])
	assert.Len(t, set, 3)
}
