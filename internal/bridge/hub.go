package bridge

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teamdock-io/teamdock/internal/logger"
	"github.com/teamdock-io/teamdock/internal/webview"
)

// Hub tracks the live surface sessions and observer connections.
// Sessions are keyed by surface id; a reconnecting surface replaces its
// predecessor.
type Hub struct {
	log *logger.Logger

	mu        sync.RWMutex
	sessions  map[string]*Session
	observers map[*observer]bool

	// lastSnapshot is replayed to observers on connect so the dashboard
	// renders immediately.
	lastSnapshot []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		log:       logger.New("bridge"),
		sessions:  map[string]*Session{},
		observers: map[*observer]bool{},
	}
}

// Session looks a live session up by surface id.
func (h *Hub) Session(surfaceID string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[surfaceID]
	return s, ok
}

// Surface resolves a surface id to its transport, satisfying the
// shell's surface source port.
func (h *Hub) Surface(surfaceID string) (webview.Surface, bool) {
	s, ok := h.Session(surfaceID)
	if !ok {
		return nil, false
	}
	return s, true
}

func (h *Hub) addSession(s *Session) {
	h.mu.Lock()
	prev := h.sessions[s.id]
	h.sessions[s.id] = s
	h.mu.Unlock()

	if prev != nil {
		h.log.Warnw("surface reconnected, dropping stale session", "surface", s.id)
		prev.close()
	}
}

func (h *Hub) dropSession(s *Session) {
	h.mu.Lock()
	if h.sessions[s.id] == s {
		delete(h.sessions, s.id)
	}
	h.mu.Unlock()
}

// PublishSnapshot pushes the shell's current state to all observers and
// caches it for late joiners. Slow observers are dropped rather than
// blocking the shell.
func (h *Hub) PublishSnapshot(snap Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		h.log.Errorw("snapshot encode failed", "error", err)
		return
	}
	frame, err := json.Marshal(Envelope{Event: EventSnapshot, Payload: payload})
	if err != nil {
		h.log.Errorw("snapshot frame encode failed", "error", err)
		return
	}

	h.mu.Lock()
	h.lastSnapshot = frame
	stale := make([]*observer, 0)
	for o := range h.observers {
		select {
		case o.send <- frame:
		default:
			stale = append(stale, o)
		}
	}
	for _, o := range stale {
		delete(h.observers, o)
	}
	h.mu.Unlock()

	for _, o := range stale {
		h.log.Warnw("dropping slow observer")
		o.conn.Close()
	}
}

// observer is one read-only dashboard connection. It receives snapshot
// frames and sends nothing meaningful back.
type observer struct {
	conn *websocket.Conn
	send chan []byte
}

func (h *Hub) addObserver(conn *websocket.Conn) *observer {
	o := &observer{conn: conn, send: make(chan []byte, 16)}

	h.mu.Lock()
	h.observers[o] = true
	if h.lastSnapshot != nil {
		o.send <- h.lastSnapshot
	}
	h.mu.Unlock()
	return o
}

func (h *Hub) dropObserver(o *observer) {
	h.mu.Lock()
	delete(h.observers, o)
	h.mu.Unlock()
	o.conn.Close()
}

func (h *Hub) runObserver(o *observer) {
	defer h.dropObserver(o)

	// Inbound traffic from an observer is ignored; the read loop exists
	// to notice disconnects.
	go func() {
		for {
			if _, _, err := o.conn.ReadMessage(); err != nil {
				o.conn.Close()
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case b, ok := <-o.send:
			if !ok {
				return
			}
			o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := o.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := o.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
