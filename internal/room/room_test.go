package room

import (
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/bingohall/internal/bingo"
	"github.com/lox/bingohall/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newTestRoom(t *testing.T, cfg Config) *Room {
	t.Helper()
	r, err := New("r1", cfg, quartz.NewMock(t), randutil.New(42), testLogger())
	require.NoError(t, err)
	return r
}

func TestRoomLifecycle(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Config{})
	assert.Equal(t, StateOpen, r.State())

	res, events, err := r.Join("p1", "Alice")
	require.NoError(t, err)
	require.Len(t, res.Cards, 1)
	assert.Equal(t, bingo.PatternLine, res.Pattern)
	assert.Equal(t, r.CommitmentHash(), res.CommitmentHash)
	require.Len(t, events, 1)
	assert.Equal(t, EventTypePlayerJoined, events[0].EventType())

	events, err = r.Start()
	require.NoError(t, err)
	assert.Equal(t, StateStarted, r.State())
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeGameStarted, events[0].EventType())

	draw, events, err := r.DrawNext()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, draw.Number, 1)
	assert.LessOrEqual(t, draw.Number, bingo.MaxNumber)
	assert.Equal(t, []int{draw.Number}, draw.History)
	require.NotEmpty(t, events)
	assert.Equal(t, EventTypeNumberDrawn, events[0].EventType())
}

func TestRoomStartOnlyFromOpen(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Config{})
	_, err := r.Start()
	require.NoError(t, err)

	_, err = r.Start()
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestRoomDrawBeforeStart(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Config{})
	_, _, err := r.DrawNext()
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestRoomJoinDefaults(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Config{CardsPerPlayer: 3})
	res, _, err := r.Join("p1", "")
	require.NoError(t, err)
	assert.Len(t, res.Cards, 3)

	winners := drainToWin(t, r)
	for _, w := range winners {
		assert.Equal(t, "Player", w.Name, "empty name falls back to the default")
	}
}

func TestRoomRejoinReplacesEntry(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Config{})
	first, _, err := r.Join("p1", "Alice")
	require.NoError(t, err)

	second, _, err := r.Join("p1", "Alice2")
	require.NoError(t, err)

	assert.NotEqual(t, first.Cards, second.Cards, "rejoin deals fresh cards")
	assert.Equal(t, 1, r.Summary().Players)
}

func TestRoomMaxPlayers(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Config{MaxPlayers: 2})
	_, _, err := r.Join("p1", "Alice")
	require.NoError(t, err)
	_, _, err = r.Join("p2", "Bob")
	require.NoError(t, err)

	_, _, err = r.Join("p3", "Carol")
	assert.ErrorIs(t, err, ErrRoomFull)

	// Rejoin of an existing member is not capacity-limited.
	_, _, err = r.Join("p1", "Alice")
	assert.NoError(t, err)
}

func TestRoomExhaustionKeepsStateStarted(t *testing.T) {
	t.Parallel()

	// No players joined, so no draw can ever produce a winner.
	r := newTestRoom(t, Config{})
	_, err := r.Start()
	require.NoError(t, err)

	for i := 0; i < bingo.MaxNumber; i++ {
		_, _, err := r.DrawNext()
		require.NoError(t, err, "draw %d", i+1)
	}

	_, _, err = r.DrawNext()
	assert.ErrorIs(t, err, ErrNoNumbers)
	// Exhaustion without a winner is reported, not terminal.
	assert.Equal(t, StateStarted, r.State())

	_, _, err = r.DrawNext()
	assert.ErrorIs(t, err, ErrNoNumbers, "exhaustion is repeatable")
}

func TestRoomConcurrentDrawsPreserveInvariants(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Config{})
	_, err := r.Start()
	require.NoError(t, err)

	const workers = 5
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < bingo.MaxNumber/workers; i++ {
				_, _, err := r.DrawNext()
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	r.mu.Lock()
	history := r.pool.History()
	r.mu.Unlock()

	require.Len(t, history, bingo.MaxNumber)
	seen := make(map[int]bool, len(history))
	for _, n := range history {
		require.False(t, seen[n], "number %d drawn twice", n)
		seen[n] = true
	}
}

// drainToWin draws until the room finishes, failing the test if the pool
// runs out first.
func drainToWin(t *testing.T, r *Room) []WinRecord {
	t.Helper()
	if r.State() == StateOpen {
		_, err := r.Start()
		require.NoError(t, err)
	}
	for i := 0; i < bingo.MaxNumber; i++ {
		draw, _, err := r.DrawNext()
		require.NoError(t, err)
		if len(draw.Winners) > 0 {
			return draw.Winners
		}
	}
	t.Fatal("pool exhausted without a winner")
	return nil
}

func TestRoomFullHouseEndToEnd(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Config{Pattern: bingo.PatternFull, CardsPerPlayer: 1})

	res, _, err := r.Join("alice", "Alice")
	require.NoError(t, err)
	require.Len(t, res.Cards, 1)
	assert.Equal(t, bingo.FreeCell, res.Cards[0][2][2])

	_, err = r.Start()
	require.NoError(t, err)

	var over GameOverEvent
	found := false
	for i := 0; i < bingo.MaxNumber && !found; i++ {
		_, events, err := r.DrawNext()
		require.NoError(t, err)
		for _, ev := range events {
			if e, ok := ev.(GameOverEvent); ok {
				over = e
				found = true
			}
		}
	}
	require.True(t, found, "full house must complete within 75 draws")

	require.Len(t, over.Winners, 1)
	assert.Equal(t, "alice", over.Winners[0].PlayerID)
	assert.Equal(t, "Alice", over.Winners[0].Name)
	assert.Equal(t, 0, over.Winners[0].CardIndex)
	assert.Equal(t, bingo.PatternFull, over.Winners[0].Pattern)

	// The revealed seed must verify against the hash published at creation.
	assert.Equal(t, r.CommitmentHash(), over.CommitmentHash)
	assert.True(t, bingo.VerifyCommitment(over.Seed, over.CommitmentHash))

	// Every number the card needs is in the revealed history.
	marked := bingo.MarkedSet(over.History)
	for _, n := range res.Cards[0].Numbers() {
		assert.True(t, marked[n], "history missing card number %d", n)
	}

	// The room is terminal: no further draws, no further joins.
	assert.Equal(t, StateFinished, r.State())
	_, _, err = r.DrawNext()
	assert.ErrorIs(t, err, ErrFinished)
	_, _, err = r.Join("bob", "Bob")
	assert.ErrorIs(t, err, ErrFinished)
}

func TestRoomSimultaneousWinners(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Config{Pattern: bingo.PatternLine})
	_, _, err := r.Join("p1", "Alice")
	require.NoError(t, err)
	_, _, err = r.Join("p2", "Bob")
	require.NoError(t, err)

	// Hand both players an identical card so the winning draw produces
	// two records in the same round.
	card := bingo.GenerateCard(randutil.New(9))
	r.mu.Lock()
	for _, p := range r.players {
		p.Cards = []bingo.Card{card}
	}
	r.mu.Unlock()

	winners := drainToWin(t, r)
	require.Len(t, winners, 2)
	assert.Equal(t, "p1", winners[0].PlayerID, "winners follow join order")
	assert.Equal(t, "p2", winners[1].PlayerID)
	assert.Equal(t, winners[0].Pattern, winners[1].Pattern)
}

func TestRoomLeave(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Config{})
	_, _, err := r.Join("p1", "Alice")
	require.NoError(t, err)

	events, err := r.Leave("p1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventTypePlayerLeft, events[0].EventType())
	assert.Equal(t, 0, r.Summary().Players)

	// Leaving an unknown player is a no-op with no events.
	events, err = r.Leave("ghost")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRoomLeaveKeepsRecordedWins(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Config{Pattern: bingo.PatternLine})
	_, _, err := r.Join("p1", "Alice")
	require.NoError(t, err)

	winners := drainToWin(t, r)
	require.NotEmpty(t, winners)

	_, err = r.Leave("p1")
	require.NoError(t, err)

	recorded := r.Winners()
	require.NotEmpty(t, recorded)
	assert.Equal(t, "p1", recorded[0].PlayerID)
}

func TestRoomSummary(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Config{Pattern: bingo.PatternCorners})
	_, _, err := r.Join("p1", "Alice")
	require.NoError(t, err)

	s := r.Summary()
	assert.Equal(t, "r1", s.ID)
	assert.Equal(t, bingo.PatternCorners, s.Pattern)
	assert.Equal(t, StateOpen, s.State)
	assert.Equal(t, 1, s.Players)
	assert.Zero(t, s.Drawn)
}
