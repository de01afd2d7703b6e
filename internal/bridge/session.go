package bridge

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teamdock-io/teamdock/internal/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size. Team lists with icon URLs fit well
	// under this.
	maxMessageSize = 1 << 20

	// Outbound buffer per connection. A session that cannot drain this
	// is dropped.
	sendBuffer = 256
)

// Session is one surface connection. It implements webview.Surface by
// sending control frames to the page side, and feeds decoded inbound
// events into the shell's event channel.
type Session struct {
	id     string
	conn   *websocket.Conn
	hub    *Hub
	events chan<- Event
	log    *logger.Logger

	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(id string, conn *websocket.Conn, hub *Hub, events chan<- Event) *Session {
	return &Session{
		id:     id,
		conn:   conn,
		hub:    hub,
		events: events,
		log:    logger.New("bridge").With("surface", id),
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// ID identifies the surface to the shell.
func (s *Session) ID() string { return s.id }

// LoadURL navigates the page-side widget.
func (s *Session) LoadURL(url string) {
	s.control(ControlLoadURL, map[string]string{"url": url})
}

// Show makes the widget visible.
func (s *Session) Show() { s.control(ControlShow, nil) }

// Hide removes the widget from view.
func (s *Session) Hide() { s.control(ControlHide, nil) }

// Focus routes keyboard input to the widget.
func (s *Session) Focus() { s.control(ControlFocus, nil) }

// Post sends a one-way named message into the embedded page.
func (s *Session) Post(channel string, payload json.RawMessage) error {
	return s.write(Envelope{Event: channel, Payload: payload})
}

// Dispose tells the page side to destroy the widget and closes the
// connection. Idempotent.
func (s *Session) Dispose() {
	s.control(ControlDispose, nil)
	s.close()
}

func (s *Session) control(event string, v interface{}) {
	var payload json.RawMessage
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			s.log.Errorw("control frame encode failed", "event", event, "error", err)
			return
		}
		payload = b
	}
	if err := s.write(Envelope{Event: event, Payload: payload}); err != nil {
		s.log.Debugw("control frame dropped", "event", event, "error", err)
	}
}

func (s *Session) write(env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	select {
	case s.send <- b:
		return nil
	case <-s.done:
		return websocket.ErrCloseSent
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
		if s.hub != nil {
			s.hub.dropSession(s)
		}
	})
}

// readPump decodes inbound envelopes into typed events for the shell.
// Malformed frames are logged and dropped without closing the
// connection.
func (s *Session) readPump() {
	defer s.close()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debugw("surface connection lost", "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.log.Warnw("malformed frame dropped", "error", err)
			continue
		}

		ev, err := decodeEvent(s.id, env)
		if err != nil {
			s.log.Warnw("invalid event dropped", "event", env.Event, "error", err)
			continue
		}

		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

// writePump serializes all outbound traffic for the connection and
// keeps it alive with pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case b := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		}
	}
}
