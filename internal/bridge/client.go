package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/teamdock-io/teamdock/internal/logger"
)

// ObserverClient is the dashboard's read-only connection to a running
// daemon. Snapshots arrive on Snapshots until the connection drops.
type ObserverClient struct {
	conn *websocket.Conn
	log  *logger.Logger

	snapshots chan Snapshot
}

// DialObserver connects to the daemon's observer endpoint. addr is
// host:port as reported by the daemon (Server.Addr).
func DialObserver(ctx context.Context, addr string) (*ObserverClient, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/observe"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial observer: %w", err)
	}

	c := &ObserverClient{
		conn:      conn,
		log:       logger.New("observer"),
		snapshots: make(chan Snapshot, 16),
	}
	go c.readLoop()
	return c, nil
}

// Snapshots returns the stream of state snapshots. Closed when the
// connection ends.
func (c *ObserverClient) Snapshots() <-chan Snapshot { return c.snapshots }

// Close terminates the connection.
func (c *ObserverClient) Close() error { return c.conn.Close() }

func (c *ObserverClient) readLoop() {
	defer close(c.snapshots)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.log.Warnw("malformed observer frame", "error", err)
			continue
		}
		if env.Event != EventSnapshot {
			continue
		}

		var snap Snapshot
		if err := json.Unmarshal(env.Payload, &snap); err != nil {
			c.log.Warnw("malformed snapshot", "error", err)
			continue
		}
		c.snapshots <- snap
	}
}
