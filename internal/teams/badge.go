package teams

import "github.com/teamdock-io/teamdock/internal/models"

// TrayMode is the dock/tray presentation derived from the global badge.
type TrayMode string

// Tray modes, in increasing priority.
const (
	TrayRest      TrayMode = "rest"
	TrayUnread    TrayMode = "unread"
	TrayHighlight TrayMode = "highlight"
)

// GlobalBadge is the fold of all per-team badge states.
type GlobalBadge struct {
	Unread           int
	UnreadHighlights int
	ConnectionStatus models.ConnectionStatus
}

// AggregateBadges folds per-team unread/highlight/connection state into
// one global badge: counters sum, connection status takes the worst
// across all teams. Runs after every single per-team badge update.
func AggregateBadges(list []*Team) GlobalBadge {
	g := GlobalBadge{ConnectionStatus: models.ConnectionOnline}
	for _, t := range list {
		g.Unread += t.Badge.Unread
		g.UnreadHighlights += t.Badge.UnreadHighlights
		g.ConnectionStatus = g.ConnectionStatus.Worse(t.Badge.ConnectionStatus)
	}
	return g
}

// Mode maps the badge to a tray state. Highlights override
// connection-status-driven coloring even when otherwise online.
func (g GlobalBadge) Mode() TrayMode {
	switch {
	case g.UnreadHighlights > 0:
		return TrayHighlight
	case g.Unread > 0:
		return TrayUnread
	default:
		return TrayRest
	}
}
