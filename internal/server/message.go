package server

import (
	"encoding/json"
	"time"

	"github.com/lox/bingohall/internal/bingo"
	"github.com/lox/bingohall/internal/room"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type CreateRoomData struct {
	RoomID         string `json:"roomId"`
	Pattern        string `json:"pattern,omitempty"`
	CardsPerPlayer int    `json:"cardsPerPlayer,omitempty"`
}

type JoinRoomData struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name,omitempty"`
}

type StartGameData struct {
	RoomID string `json:"roomId"`
}

type DrawNextData struct {
	RoomID string `json:"roomId"`
}

type LeaveRoomData struct {
	RoomID string `json:"roomId"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomCreatedData struct {
	RoomID         string `json:"roomId"`
	CommitmentHash string `json:"commitmentHash"`
}

type RoomJoinedData struct {
	RoomID         string       `json:"roomId"`
	PlayerID       string       `json:"playerId"`
	Cards          []bingo.Card `json:"cards"`
	CommitmentHash string       `json:"commitmentHash"`
	Pattern        string       `json:"pattern"`
}

type PlayerJoinedData struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type GameStartedData struct {
	At time.Time `json:"at"`
}

type NumberDrawnData struct {
	Number  int   `json:"number"`
	History []int `json:"history"`
}

type WinnerInfo struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	CardIndex int    `json:"cardIndex"`
	Pattern   string `json:"pattern"`
}

type GameOverData struct {
	Winners        []WinnerInfo `json:"winners"`
	Seed           string       `json:"seed"`
	CommitmentHash string       `json:"commitmentHash"`
	History        []int        `json:"history"`
}

type PlayerLeftData struct {
	PlayerID string `json:"playerId"`
}

type RoomInfo struct {
	ID      string `json:"id"`
	Pattern string `json:"pattern"`
	State   string `json:"state"`
	Players int    `json:"players"`
	Drawn   int    `json:"drawn"`
}

type RoomListData struct {
	Rooms []RoomInfo `json:"rooms"`
}

// Helper functions to convert between internal types and message types

func WinnerInfoFromRoom(w room.WinRecord) WinnerInfo {
	return WinnerInfo{
		PlayerID:  w.PlayerID,
		Name:      w.Name,
		CardIndex: w.CardIndex,
		Pattern:   string(w.Pattern),
	}
}

func RoomInfoFromSummary(s room.Summary) RoomInfo {
	return RoomInfo{
		ID:      s.ID,
		Pattern: string(s.Pattern),
		State:   string(s.State),
		Players: s.Players,
		Drawn:   s.Drawn,
	}
}

// messageFromEvent translates a room event into its broadcast message.
func messageFromEvent(event room.Event) (*Message, error) {
	switch e := event.(type) {
	case room.PlayerJoinedEvent:
		return NewMessage(MessageTypePlayerJoined, PlayerJoinedData{
			PlayerID: e.PlayerID,
			Name:     e.Name,
		})
	case room.GameStartedEvent:
		return NewMessage(MessageTypeGameStarted, GameStartedData{At: e.At})
	case room.NumberDrawnEvent:
		return NewMessage(MessageTypeNumberDrawn, NumberDrawnData{
			Number:  e.Number,
			History: e.History,
		})
	case room.GameOverEvent:
		winners := make([]WinnerInfo, len(e.Winners))
		for i, w := range e.Winners {
			winners[i] = WinnerInfoFromRoom(w)
		}
		return NewMessage(MessageTypeGameOver, GameOverData{
			Winners:        winners,
			Seed:           e.Seed,
			CommitmentHash: e.CommitmentHash,
			History:        e.History,
		})
	case room.PlayerLeftEvent:
		return NewMessage(MessageTypePlayerLeft, PlayerLeftData{PlayerID: e.PlayerID})
	default:
		return nil, ErrUnknownEvent
	}
}

// errorCode maps room errors to the wire error codes clients switch on.
func errorCode(err error) string {
	switch err {
	case room.ErrRoomExists:
		return "ROOM_EXISTS"
	case room.ErrNoRoom:
		return "NO_ROOM"
	case room.ErrAlreadyStarted:
		return "ALREADY_STARTED"
	case room.ErrNotStarted:
		return "NOT_STARTED"
	case room.ErrFinished:
		return "GAME_FINISHED"
	case room.ErrNoNumbers:
		return "NO_NUMBERS"
	case room.ErrRoomFull:
		return "ROOM_FULL"
	default:
		return "INTERNAL"
	}
}
