package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection to a client. The
// connection ID doubles as the player identifier inside rooms, so a
// dropped socket maps directly to a roster removal.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	playerID  string
	roomID    string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	srv       *Server
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, srv *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 256),
		playerID: uuid.NewString(),
		logger:   logger.WithPrefix("conn"),
		ctx:      ctx,
		cancel:   cancel,
		srv:      srv,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// PlayerID returns the identifier this connection acts as inside rooms.
func (c *Connection) PlayerID() string {
	return c.playerID
}

// SetRoom associates this connection with a room
func (c *Connection) SetRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// GetRoom returns the associated room ID
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
	ErrUnknownEvent     = errors.New("unknown room event")
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.playerID)

	switch msg.Type {
	case MessageTypeCreateRoom:
		var data CreateRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create room data")
			return
		}
		c.handleCreateRoom(data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeStartGame:
		var data StartGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse start game data")
			return
		}
		c.handleStartGame(data)

	case MessageTypeDrawNext:
		var data DrawNextData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse draw next data")
			return
		}
		c.handleDrawNext(data)

	case MessageTypeLeaveRoom:
		var data LeaveRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse leave room data")
			return
		}
		c.handleLeaveRoom(data)

	case MessageTypeListRooms:
		c.handleListRooms()

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg) // Ignore send errors during error handling
}

func (c *Connection) sendRoomError(err error) {
	c.sendError(errorCode(err), err.Error())
}

func (c *Connection) handleCreateRoom(data CreateRoomData) {
	c.logger.Info("Create room request", "room", data.RoomID, "pattern", data.Pattern, "player", c.playerID)

	if data.RoomID == "" {
		c.sendError("invalid_message", "Room ID required")
		return
	}

	cfg := c.srv.roomConfig(data.Pattern, data.CardsPerPlayer)
	r, err := c.srv.registry.Create(data.RoomID, cfg)
	if err != nil {
		c.sendRoomError(err)
		return
	}

	response, _ := NewMessage(MessageTypeRoomCreated, RoomCreatedData{
		RoomID:         data.RoomID,
		CommitmentHash: r.CommitmentHash(),
	})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	c.logger.Info("Join room request", "room", data.RoomID, "player", c.playerID)

	if data.RoomID == "" {
		c.sendError("invalid_message", "Room ID required")
		return
	}

	// Switching rooms drops the player from the previous roster first,
	// so a stale room never keeps evaluating their cards.
	if prev := c.GetRoom(); prev != "" && prev != data.RoomID {
		c.leaveRoom(prev)
	}

	// joinRoom auto-creates the room with server defaults when absent.
	r, _, err := c.srv.registry.GetOrCreate(data.RoomID, c.srv.roomConfig("", 0))
	if err != nil {
		c.sendRoomError(err)
		return
	}

	result, events, err := r.Join(c.playerID, data.Name)
	if err != nil {
		c.sendRoomError(err)
		return
	}
	c.SetRoom(data.RoomID)

	response, _ := NewMessage(MessageTypeRoomJoined, RoomJoinedData{
		RoomID:         data.RoomID,
		PlayerID:       c.playerID,
		Cards:          result.Cards,
		CommitmentHash: result.CommitmentHash,
		Pattern:        string(result.Pattern),
	})
	_ = c.SendMessage(response) // Ignore send errors

	c.srv.BroadcastEvents(data.RoomID, events)
}

func (c *Connection) handleStartGame(data StartGameData) {
	c.logger.Info("Start game request", "room", data.RoomID, "player", c.playerID)

	r, err := c.srv.registry.Get(data.RoomID)
	if err != nil {
		c.sendRoomError(err)
		return
	}

	events, err := r.Start()
	if err != nil {
		c.sendRoomError(err)
		return
	}

	// No direct response - members learn of the start via the broadcast
	c.srv.BroadcastEvents(data.RoomID, events)
}

func (c *Connection) handleDrawNext(data DrawNextData) {
	c.logger.Info("Draw request", "room", data.RoomID, "player", c.playerID)

	r, err := c.srv.registry.Get(data.RoomID)
	if err != nil {
		c.sendRoomError(err)
		return
	}

	_, events, err := r.DrawNext()
	if err != nil {
		c.sendRoomError(err)
		return
	}

	c.srv.BroadcastEvents(data.RoomID, events)
}

func (c *Connection) handleLeaveRoom(data LeaveRoomData) {
	c.logger.Info("Leave room request", "room", data.RoomID, "player", c.playerID)

	r, err := c.srv.registry.Get(data.RoomID)
	if err != nil {
		c.sendRoomError(err)
		return
	}

	events, err := r.Leave(c.playerID)
	if err != nil {
		c.sendRoomError(err)
		return
	}
	if c.GetRoom() == data.RoomID {
		c.SetRoom("")
	}

	response, _ := NewMessage(MessageTypeRoomLeft, map[string]string{"roomId": data.RoomID})
	_ = c.SendMessage(response) // Ignore send errors

	c.srv.BroadcastEvents(data.RoomID, events)
}

// leaveRoom drops this connection's player from a room roster and
// broadcasts the departure to the remaining members.
func (c *Connection) leaveRoom(roomID string) {
	r, err := c.srv.registry.Get(roomID)
	if err != nil {
		return
	}

	events, err := r.Leave(c.playerID)
	if err != nil {
		c.logger.Error("Failed to leave room", "error", err, "room", roomID, "player", c.playerID)
		return
	}
	c.SetRoom("")
	c.srv.BroadcastEvents(roomID, events)
}

func (c *Connection) handleListRooms() {
	c.logger.Debug("List rooms request", "player", c.playerID)

	summaries := c.srv.registry.List()
	rooms := make([]RoomInfo, len(summaries))
	for i, s := range summaries {
		rooms[i] = RoomInfoFromSummary(s)
	}

	response, _ := NewMessage(MessageTypeRoomList, RoomListData{Rooms: rooms})
	_ = c.SendMessage(response) // Ignore send errors
}
