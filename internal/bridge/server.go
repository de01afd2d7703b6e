package bridge

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teamdock-io/teamdock/internal/logger"
)

// upgrader for loopback connections. The listener only binds 127.0.0.1,
// so origin checking stays permissive.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server owns the bridge's HTTP listener. Surfaces connect on /surface
// with their assigned surface_id; dashboards connect on /observe.
type Server struct {
	hub    *Hub
	events chan<- Event
	log    *logger.Logger

	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a bridge server feeding decoded events into the
// given channel. Surface connect/disconnect are injected as synthetic
// events so the shell sees the full session lifecycle in order.
func NewServer(hub *Hub, events chan<- Event) *Server {
	s := &Server{
		hub:    hub,
		events: events,
		log:    logger.New("bridge"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/surface", s.handleSurface)
	mux.HandleFunc("/observe", s.handleObserve)
	s.httpServer = &http.Server{Handler: mux}
	return s
}

// Listen binds the loopback listener on the given port. Port 0 picks a
// free one; Addr reports the result.
func (s *Server) Listen(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("bridge listen: %w", err)
	}
	s.listener = ln
	s.log.Infow("bridge listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address. Valid after Listen.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve accepts connections until Shutdown.
func (s *Server) Serve() error {
	err := s.httpServer.Serve(s.listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	surfaceID := r.URL.Query().Get("surface_id")
	if surfaceID == "" {
		http.Error(w, "surface_id is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorw("surface upgrade failed", "error", err)
		return
	}

	sess := newSession(surfaceID, conn, s.hub, s.events)
	s.hub.addSession(sess)
	s.log.Infow("surface connected", "surface", surfaceID)

	go sess.writePump()
	go func() {
		s.events <- Event{SurfaceID: surfaceID, Name: EventSurfaceConnected}
		sess.readPump()
		s.events <- Event{SurfaceID: surfaceID, Name: EventSurfaceClosed}
	}()
}

func (s *Server) handleObserve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorw("observer upgrade failed", "error", err)
		return
	}
	o := s.hub.addObserver(conn)
	go s.hub.runObserver(o)
}
