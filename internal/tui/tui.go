// Package tui implements the live dashboard for a running daemon.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teamdock-io/teamdock/internal/bridge"
)

// Run connects to the daemon's observer endpoint and runs the dashboard
// until the user quits or the connection drops.
func Run(addr string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := bridge.DialObserver(ctx, addr)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	defer client.Close()

	p := tea.NewProgram(NewModel(), tea.WithAltScreen())

	go func() {
		for snap := range client.Snapshots() {
			p.Send(SnapshotMsg{Snapshot: snap})
		}
		p.Send(DisconnectedMsg{})
	}()

	_, err = p.Run()
	return err
}
