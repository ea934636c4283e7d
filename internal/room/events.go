package room

import (
	"time"
)

// EventType represents a room event type with type safety
type EventType string

// EventType constants for room domain events
const (
	EventTypePlayerJoined EventType = "player_joined"
	EventTypeGameStarted  EventType = "game_started"
	EventTypeNumberDrawn  EventType = "number_drawn"
	EventTypeGameOver     EventType = "game_over"
	EventTypePlayerLeft   EventType = "player_left"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is an outbound notification produced by a room operation. The
// room returns events as plain values; a dispatcher (the websocket
// server) fans them out to members, keeping transport concerns out of
// the room itself.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// PlayerJoinedEvent is produced when a player enters the roster.
type PlayerJoinedEvent struct {
	PlayerID  string
	Name      string
	timestamp time.Time
}

func (e PlayerJoinedEvent) EventType() EventType { return EventTypePlayerJoined }
func (e PlayerJoinedEvent) Timestamp() time.Time { return e.timestamp }

// GameStartedEvent is produced when the room transitions to STARTED.
type GameStartedEvent struct {
	At        time.Time
	timestamp time.Time
}

func (e GameStartedEvent) EventType() EventType { return EventTypeGameStarted }
func (e GameStartedEvent) Timestamp() time.Time { return e.timestamp }

// NumberDrawnEvent is produced for every successful draw and carries the
// full ordered history so clients can rebuild marks from scratch.
type NumberDrawnEvent struct {
	Number    int
	History   []int
	timestamp time.Time
}

func (e NumberDrawnEvent) EventType() EventType { return EventTypeNumberDrawn }
func (e NumberDrawnEvent) Timestamp() time.Time { return e.timestamp }

// GameOverEvent is produced when a draw yields one or more winners. It
// carries the revealed seed alongside the published hash and history so
// any observer can verify the sequence externally.
type GameOverEvent struct {
	Winners        []WinRecord
	Seed           string
	CommitmentHash string
	History        []int
	timestamp      time.Time
}

func (e GameOverEvent) EventType() EventType { return EventTypeGameOver }
func (e GameOverEvent) Timestamp() time.Time { return e.timestamp }

// PlayerLeftEvent is produced when a player leaves or disconnects.
type PlayerLeftEvent struct {
	PlayerID  string
	timestamp time.Time
}

func (e PlayerLeftEvent) EventType() EventType { return EventTypePlayerLeft }
func (e PlayerLeftEvent) Timestamp() time.Time { return e.timestamp }
