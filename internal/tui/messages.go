package tui

import "github.com/teamdock-io/teamdock/internal/bridge"

// SnapshotMsg carries one state snapshot from the observer connection.
type SnapshotMsg struct {
	Snapshot bridge.Snapshot
}

// DisconnectedMsg signals the observer connection was lost.
type DisconnectedMsg struct{}
