// Package server is the event gateway: it owns the WebSocket boundary,
// translating inbound messages into room operations and fanning room
// events out to every member of the affected room.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/bingohall/internal/bingo"
	"github.com/lox/bingohall/internal/room"
)

// Server represents the WebSocket server
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	registry    *room.Registry
	defaults    room.Config
	httpServer  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithRoomDefaults sets the room configuration used when a create or
// join request does not specify its own settings.
func WithRoomDefaults(cfg room.Config) Option {
	return func(s *Server) {
		s.defaults = cfg
	}
}

// NewServer creates a new WebSocket server
func NewServer(addr string, registry *room.Registry, logger *log.Logger, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				// In production, implement proper origin checking
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		registry:    registry,
		defaults:    room.Config{Pattern: bingo.PatternLine, CardsPerPlayer: 1},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts the WebSocket server and blocks until shutdown.
func (s *Server) Start() error {
	go s.run()

	// Create a dedicated mux for this server instance
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/rooms", s.handleRooms)

	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}

	s.logger.Info("Starting WebSocket server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the listener and closes all connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "player", conn.PlayerID(), "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			_, ok := s.connections[conn]
			if ok {
				delete(s.connections, conn)
			}
			total := len(s.connections)
			s.mu.Unlock()

			if ok {
				// Drop the player from their room; members see player_left.
				s.cleanupDisconnected(conn)
				_ = conn.Close() // Ignore close errors during unregistration
				s.logger.Info("Client disconnected", "player", conn.PlayerID(), "total", total)
			}

		case <-s.ctx.Done():
			return
		}
	}
}

// cleanupDisconnected removes a dropped connection's player from their
// room. Room mutation serialises on the room mutex, so cleanup never
// interleaves with an in-flight draw evaluation.
func (s *Server) cleanupDisconnected(conn *Connection) {
	roomID := conn.GetRoom()
	if roomID == "" {
		return
	}

	r, err := s.registry.Get(roomID)
	if err != nil {
		return
	}

	events, err := r.Leave(conn.PlayerID())
	if err != nil {
		s.logger.Error("Failed to clean up disconnected player", "error", err, "player", conn.PlayerID(), "room", roomID)
		return
	}
	s.BroadcastEvents(roomID, events)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s)
	s.register <- client
	client.Start()

	// Connection cleanup is handled by the connection itself
	go func() {
		<-client.ctx.Done()
		s.unregister <- client
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// handleRooms serves a JSON listing of live rooms for monitoring.
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	summaries := s.registry.List()
	rooms := make([]RoomInfo, len(summaries))
	for i, summary := range summaries {
		rooms[i] = RoomInfoFromSummary(summary)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(RoomListData{Rooms: rooms}); err != nil {
		s.logger.Error("Failed to encode room list", "error", err)
	}
}

// BroadcastEvents fans a room operation's events out to every member of
// the room.
func (s *Server) BroadcastEvents(roomID string, events []room.Event) {
	for _, event := range events {
		msg, err := messageFromEvent(event)
		if err != nil {
			s.logger.Error("Failed to convert room event", "error", err, "type", event.EventType())
			continue
		}
		s.BroadcastToRoom(roomID, msg)
	}
}

// BroadcastToRoom sends a message to all connections joined to a room.
func (s *Server) BroadcastToRoom(roomID string, msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if conn.GetRoom() == roomID {
			if err := conn.SendMessage(msg); err != nil {
				s.logger.Error("Failed to send message to client", "error", err, "player", conn.PlayerID())
			} else {
				count++
			}
		}
	}

	s.logger.Debug("Broadcasted message to room", "room", roomID, "type", msg.Type, "recipients", count)
}

// roomConfig builds a room configuration from a request, falling back to
// the server defaults for unspecified fields.
func (s *Server) roomConfig(pattern string, cardsPerPlayer int) room.Config {
	cfg := s.defaults
	if pattern != "" {
		cfg.Pattern = bingo.ParsePattern(pattern)
	}
	if cardsPerPlayer > 0 {
		cfg.CardsPerPlayer = cardsPerPlayer
	}
	return cfg
}
