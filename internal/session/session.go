// Package session owns the per-connection half of the concurrency model:
// each websocket connection gets one Session that decodes inbound frames
// into typed requests for the router and drains its own outbound sink into
// write frames. Sessions never touch room state directly.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/generals-server/core/internal/contextkey"
	"github.com/generals-server/core/internal/logging"
	"github.com/generals-server/core/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound sink capacity. A full sink drops the event; the next
	// map_update resynchronizes the client.
	sendBufferSize = 256
)

// Outbound is the fire-and-forget event sink the router pushes to. Enqueue
// reports false when the event was dropped (full or closed sink).
type Outbound interface {
	Enqueue(event interface{}) bool
	Close()
}

// Handler receives the session's decoded requests. Implemented by the
// router; Submit must not block for longer than a channel send.
type Handler interface {
	Submit(userID string, req interface{})
	Detach(userID string)
}

// Session is the middleman between one websocket connection and the router.
type Session struct {
	UserID string
	Name   string

	conn      *websocket.Conn
	send      chan interface{}
	closed    chan struct{}
	closeOnce sync.Once
	handler   Handler
	logger    *logging.Logger
	ctx       context.Context
}

// New creates a session for an upgraded connection. Start must be called
// to begin the pumps.
func New(conn *websocket.Conn, userID, name string, handler Handler, logger *logging.Logger) *Session {
	return &Session{
		UserID:  userID,
		Name:    name,
		conn:    conn,
		send:    make(chan interface{}, sendBufferSize),
		closed:  make(chan struct{}),
		handler: handler,
		logger:  logger,
		ctx:     context.WithValue(context.Background(), contextkey.ContextKeyUserID, userID),
	}
}

// Enqueue implements Outbound. It never blocks: a full or closed sink
// drops the event and reports false.
func (s *Session) Enqueue(event interface{}) bool {
	select {
	case <-s.closed:
		return false
	default:
	}
	select {
	case s.send <- event:
		return true
	default:
		return false
	}
}

// Close implements Outbound. Idempotent: the write pump observes the
// signal and sends a close frame. The send channel itself is never
// closed, so a racing Enqueue only ever drops.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// Start begins the session's read and write pumps. It returns immediately;
// the pumps run until the connection drops.
func (s *Session) Start() {
	go s.writePump()
	go s.readPump()
}

// readPump pumps frames from the websocket connection to the router. There
// is at most one reader per connection.
func (s *Session) readPump() {
	defer func() {
		s.handler.Detach(s.UserID)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error { s.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Error(s.ctx, "websocket read error: %v", err)
			}
			break
		}

		req, err := protocol.DecodeInbound(message)
		if err != nil {
			// Parser errors are dropped with a log, never surfaced.
			s.logger.Warn(s.ctx, "dropping malformed frame: %v", err)
			continue
		}
		if req == nil {
			s.logger.Warn(s.ctx, "dropping frame of unknown type")
			continue
		}

		s.handler.Submit(s.UserID, req)
	}
}

// writePump pumps events from the sink to the websocket connection. There
// is at most one writer per connection.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-s.closed:
			// The router closed the sink.
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case event := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(event); err != nil {
				s.logger.Error(s.ctx, "websocket write error: %v", err)
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
