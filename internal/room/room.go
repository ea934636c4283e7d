// Package room implements the per-game aggregate state machine and the
// process-wide registry of live rooms. A room owns its roster, draw
// pool and fairness commitment; every operation returns a result plus
// the events to broadcast, so the package stays free of transport.
package room

import (
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/bingohall/internal/bingo"
)

// State is a room lifecycle state. OPEN accepts joins, STARTED permits
// draws, FINISHED is terminal.
type State string

const (
	StateOpen     State = "open"
	StateStarted  State = "started"
	StateFinished State = "finished"
)

// Config holds the per-room game settings.
type Config struct {
	Pattern        bingo.Pattern
	CardsPerPlayer int
	MaxPlayers     int // 0 means unlimited
}

func (c Config) withDefaults() Config {
	if c.Pattern == "" {
		c.Pattern = bingo.PatternLine
	}
	if c.CardsPerPlayer <= 0 {
		c.CardsPerPlayer = 1
	}
	return c
}

// Player is a roster entry. Cards are generated at join time and
// immutable afterwards.
type Player struct {
	ID    string
	Name  string
	Cards []bingo.Card
}

// WinRecord identifies one winning card and the shape it matched.
type WinRecord struct {
	PlayerID  string        `json:"playerId"`
	Name      string        `json:"name"`
	CardIndex int           `json:"cardIndex"`
	Pattern   bingo.Pattern `json:"pattern"`
}

// JoinResult is returned to the joining player.
type JoinResult struct {
	Cards          []bingo.Card
	CommitmentHash string
	Pattern        bingo.Pattern
}

// DrawResult is returned from a successful draw.
type DrawResult struct {
	Number  int
	History []int
	Winners []WinRecord
}

// Room is a single game's aggregate. All exported methods serialise on
// the room mutex, so concurrent operations against one room are strictly
// ordered while different rooms proceed independently.
type Room struct {
	id  string
	cfg Config

	mu         sync.Mutex
	state      State
	players    map[string]*Player
	order      []string // join order, for deterministic win evaluation
	pool       *bingo.DrawPool
	commitment *bingo.Commitment
	winners    []WinRecord
	rng        *rand.Rand
	clock      quartz.Clock
	logger     *log.Logger
}

// New constructs an OPEN room with a fresh draw pool and fairness
// commitment. rng feeds card generation only; draws use independent
// crypto randomness inside the pool.
func New(id string, cfg Config, clock quartz.Clock, rng *rand.Rand, logger *log.Logger) (*Room, error) {
	commitment, err := bingo.NewCommitment()
	if err != nil {
		return nil, err
	}

	return &Room{
		id:         id,
		cfg:        cfg.withDefaults(),
		state:      StateOpen,
		players:    make(map[string]*Player),
		pool:       bingo.NewDrawPool(),
		commitment: commitment,
		rng:        rng,
		clock:      clock,
		logger:     logger.WithPrefix("room").With("room", id),
	}, nil
}

// ID returns the room identifier.
func (r *Room) ID() string {
	return r.id
}

// CommitmentHash returns the published commitment hash.
func (r *Room) CommitmentHash() string {
	return r.commitment.Hash()
}

// State returns the current lifecycle state.
func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Join adds a player to the roster and deals their cards. Valid in any
// non-finished state. Rejoining with a known player ID replaces the
// previous entry, discarding its cards.
func (r *Room) Join(playerID, name string) (JoinResult, []Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateFinished {
		return JoinResult{}, nil, ErrFinished
	}
	if _, rejoin := r.players[playerID]; !rejoin {
		if r.cfg.MaxPlayers > 0 && len(r.players) >= r.cfg.MaxPlayers {
			return JoinResult{}, nil, ErrRoomFull
		}
		r.order = append(r.order, playerID)
	}

	if name == "" {
		name = "Player"
	}

	cards := make([]bingo.Card, r.cfg.CardsPerPlayer)
	for i := range cards {
		cards[i] = bingo.GenerateCard(r.rng)
	}
	r.players[playerID] = &Player{ID: playerID, Name: name, Cards: cards}

	r.logger.Info("Player joined", "player", playerID, "name", name, "roster", len(r.players))

	events := []Event{PlayerJoinedEvent{
		PlayerID:  playerID,
		Name:      name,
		timestamp: r.clock.Now(),
	}}
	return JoinResult{
		Cards:          cards,
		CommitmentHash: r.commitment.Hash(),
		Pattern:        r.cfg.Pattern,
	}, events, nil
}

// Start transitions the room from OPEN to STARTED.
func (r *Room) Start() ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateOpen {
		return nil, ErrAlreadyStarted
	}
	r.state = StateStarted

	now := r.clock.Now()
	r.logger.Info("Game started", "players", len(r.players))

	return []Event{GameStartedEvent{At: now, timestamp: now}}, nil
}

// DrawNext draws one number and evaluates every card in the roster
// against the room's pattern. A draw that produces winners finishes the
// game and reveals the commitment seed in the game-over event. An empty
// pool reports ErrNoNumbers and leaves the room unchanged; the room
// stays STARTED in that case so the end condition is the caller's to
// handle.
func (r *Room) DrawNext() (DrawResult, []Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateOpen:
		return DrawResult{}, nil, ErrNotStarted
	case StateFinished:
		return DrawResult{}, nil, ErrFinished
	}

	number, ok := r.pool.DrawNext()
	if !ok {
		return DrawResult{}, nil, ErrNoNumbers
	}

	history := r.pool.History()
	now := r.clock.Now()
	events := []Event{NumberDrawnEvent{
		Number:    number,
		History:   history,
		timestamp: now,
	}}

	// Rebuild the marked set from the full history each draw rather than
	// tracking it incrementally.
	marked := bingo.MarkedSet(history)
	var winners []WinRecord
	for _, playerID := range r.order {
		player := r.players[playerID]
		for idx, card := range player.Cards {
			res := bingo.Evaluate(card, marked, r.cfg.Pattern)
			if res.Won {
				winners = append(winners, WinRecord{
					PlayerID:  player.ID,
					Name:      player.Name,
					CardIndex: idx,
					Pattern:   res.Pattern,
				})
			}
		}
	}

	if len(winners) > 0 {
		r.winners = append(r.winners, winners...)
		r.state = StateFinished
		r.logger.Info("Game over", "number", number, "winners", len(winners), "draws", len(history))
		events = append(events, GameOverEvent{
			Winners:        winners,
			Seed:           r.commitment.Reveal(),
			CommitmentHash: r.commitment.Hash(),
			History:        history,
			timestamp:      now,
		})
	} else {
		r.logger.Debug("Number drawn", "number", number, "remaining", r.pool.Remaining())
	}

	return DrawResult{Number: number, History: history, Winners: winners}, events, nil
}

// Leave removes a player from the roster in any state. Wins already
// recorded for the player are kept.
func (r *Room) Leave(playerID string) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[playerID]; !ok {
		return nil, nil
	}
	delete(r.players, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.logger.Info("Player left", "player", playerID, "roster", len(r.players))

	return []Event{PlayerLeftEvent{
		PlayerID:  playerID,
		timestamp: r.clock.Now(),
	}}, nil
}

// Winners returns a copy of the accumulated win records.
func (r *Room) Winners() []WinRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	winners := make([]WinRecord, len(r.winners))
	copy(winners, r.winners)
	return winners
}

// Summary is lightweight room metadata for listings.
type Summary struct {
	ID      string        `json:"id"`
	Pattern bingo.Pattern `json:"pattern"`
	State   State         `json:"state"`
	Players int           `json:"players"`
	Drawn   int           `json:"drawn"`
}

// Summary returns a snapshot of the room's public metadata.
func (r *Room) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Summary{
		ID:      r.id,
		Pattern: r.cfg.Pattern,
		State:   r.state,
		Players: len(r.players),
		Drawn:   len(r.pool.History()),
	}
}
