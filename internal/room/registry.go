package room

import (
	rand "math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/bingohall/internal/randutil"
)

// Registry is the process-wide directory of live rooms. It is injected
// wherever room lookup is needed rather than accessed as a global, and
// its create-or-fetch paths are atomic: two racing creates for one
// identifier leave exactly one room behind.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	clock  quartz.Clock
	logger *log.Logger
	newRNG func() *rand.Rand
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRNGFactory overrides how per-room card RNGs are built, used by
// tests for deterministic cards.
func WithRNGFactory(f func() *rand.Rand) RegistryOption {
	return func(g *Registry) {
		g.newRNG = f
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(clock quartz.Clock, logger *log.Logger, opts ...RegistryOption) *Registry {
	g := &Registry{
		rooms:  make(map[string]*Room),
		clock:  clock,
		logger: logger.WithPrefix("registry"),
		newRNG: func() *rand.Rand {
			return randutil.New(time.Now().UnixNano())
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Create registers a new room under id. Fails with ErrRoomExists if the
// identifier is already taken; a failed create leaves no partial state.
func (g *Registry) Create(id string, cfg Config) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.rooms[id]; ok {
		return nil, ErrRoomExists
	}

	r, err := New(id, cfg, g.clock, g.newRNG(), g.logger)
	if err != nil {
		return nil, err
	}
	g.rooms[id] = r

	g.logger.Info("Room created", "room", id, "pattern", r.cfg.Pattern, "cardsPerPlayer", r.cfg.CardsPerPlayer)
	return r, nil
}

// GetOrCreate returns the room registered under id, creating it with cfg
// if absent. created reports whether this call built the room.
func (g *Registry) GetOrCreate(id string, cfg Config) (r *Room, created bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.rooms[id]; ok {
		return existing, false, nil
	}

	r, err = New(id, cfg, g.clock, g.newRNG(), g.logger)
	if err != nil {
		return nil, false, err
	}
	g.rooms[id] = r

	g.logger.Info("Room created", "room", id, "pattern", r.cfg.Pattern, "cardsPerPlayer", r.cfg.CardsPerPlayer)
	return r, true, nil
}

// Get returns the room registered under id, or ErrNoRoom.
func (g *Registry) Get(id string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	r, ok := g.rooms[id]
	if !ok {
		return nil, ErrNoRoom
	}
	return r, nil
}

// Remove deletes a room from the directory and returns whether it was
// present. The room itself is left for the collector; in-flight
// operations against it complete normally.
func (g *Registry) Remove(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.rooms[id]; !ok {
		return false
	}
	delete(g.rooms, id)
	g.logger.Info("Room removed", "room", id)
	return true
}

// List returns summaries of all live rooms, ordered by identifier.
func (g *Registry) List() []Summary {
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.RUnlock()

	summaries := make([]Summary, 0, len(rooms))
	for _, r := range rooms {
		summaries = append(summaries, r.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries
}

// Len returns how many rooms are live.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
