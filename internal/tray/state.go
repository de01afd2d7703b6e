// Package tray implements the system tray icon and menu for the shell
// daemon.
package tray

import "github.com/teamdock-io/teamdock/internal/teams"

// ShellState provides read-only access to shell state for the tray,
// plus the actions its menu items trigger.
type ShellState interface {
	Teams() []TeamInfo
	Badge() teams.GlobalBadge
	ShowWindow()
	DisplayTeam(teamID string)
	CheckForUpdates()
	RequestShutdown()
}

// TeamInfo describes one signed-in team for display in the tray menu.
type TeamInfo struct {
	TeamID           string
	TeamName         string
	Unread           int
	UnreadHighlights int
}
