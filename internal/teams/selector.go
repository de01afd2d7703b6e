package teams

import (
	"fmt"

	"github.com/teamdock-io/teamdock/internal/logger"
	"github.com/teamdock-io/teamdock/internal/webview"
)

// FocusSource delivers host-window focus events. The subscription is
// owned by the primary slot: set up when a team becomes primary, torn
// down when it stops being primary.
type FocusSource interface {
	OnFocus(fn func()) (unsubscribe func())
}

// SelectorHooks are the selector's outward side effects. Nil hooks are
// skipped.
type SelectorHooks struct {
	// TeamChanged fires when a different team becomes visible, with the
	// team's name and its webview handle (may be nil).
	TeamChanged func(teamName string, wv *webview.Context)

	// NoTeamShown fires when the primary slot is cleared; the host shows
	// a connecting/login screen instead.
	NoTeamShown func()

	// PrimaryCrashed fires when the currently-primary team's webview
	// reports a crash. The subscription lives exactly as long as the
	// team stays primary.
	PrimaryCrashed func(teamID string, kind webview.CrashKind)

	// InitialLoadSatisfied marks any pending initial-load timer as done.
	InitialLoadSatisfied func()
}

// Selector tracks which single team is currently visible. Primary-ness
// is a team_id into the registry, not a copy: field mutations on the
// registry record are visible through the primary handle.
type Selector struct {
	reg   *Registry
	focus FocusSource
	hooks SelectorHooks
	log   *logger.Logger

	primaryID string

	// subs aggregates every subscription owned by the primary slot;
	// all of them are torn down on each switch.
	subs []func()
}

// NewSelector creates a selector over the registry. focus may be nil
// when the host provides no focus events (tests).
func NewSelector(reg *Registry, focus FocusSource, hooks SelectorHooks) *Selector {
	return &Selector{
		reg:   reg,
		focus: focus,
		hooks: hooks,
		log:   logger.New("selector"),
	}
}

// PrimaryID returns the primary team's id, or "" when no team is shown.
func (s *Selector) PrimaryID() string { return s.primaryID }

// Primary returns the primary team record, if any.
func (s *Selector) Primary() (*Team, bool) {
	if s.primaryID == "" {
		return nil, false
	}
	return s.reg.Get(s.primaryID)
}

// MakePrimary shows the given team: hides the previous primary, notifies
// observers, shows and focuses the new team's webview, and takes over
// the crash and focus-follow subscriptions. Idempotent for the team that
// is already primary.
func (s *Selector) MakePrimary(teamID string) error {
	t, ok := s.reg.Get(teamID)
	if !ok {
		return fmt.Errorf("no such team: %s", teamID)
	}
	if s.primaryID == teamID {
		return nil
	}

	s.hidePrevious()
	s.primaryID = teamID
	s.log.Debugw("primary team changed", "team_id", teamID, "team_name", t.TeamName)

	if s.hooks.TeamChanged != nil {
		s.hooks.TeamChanged(t.TeamName, t.Webview)
	}

	if t.Webview != nil {
		t.Webview.Show()
		t.Webview.Focus()
		unsub := t.Webview.OnCrash(func(kind webview.CrashKind) {
			if s.hooks.PrimaryCrashed != nil {
				s.hooks.PrimaryCrashed(teamID, kind)
			}
		})
		s.subs = append(s.subs, unsub)
	}

	if s.focus != nil {
		unsub := s.focus.OnFocus(func() {
			if p, ok := s.Primary(); ok && p.Webview != nil {
				p.Webview.Focus()
			}
		})
		s.subs = append(s.subs, unsub)
	}

	if s.hooks.InitialLoadSatisfied != nil {
		s.hooks.InitialLoadSatisfied()
	}
	return nil
}

// ClearPrimary hides whichever team was primary and notifies observers
// that no team is shown.
func (s *Selector) ClearPrimary() {
	s.hidePrevious()
	s.primaryID = ""
	if s.hooks.NoTeamShown != nil {
		s.hooks.NoTeamShown()
	}
}

// EnsureValid clears the primary slot if its team no longer exists in
// the registry. Called after every reconciliation.
func (s *Selector) EnsureValid() {
	if s.primaryID == "" {
		return
	}
	if _, ok := s.reg.Get(s.primaryID); !ok {
		s.ClearPrimary()
	}
}

// hidePrevious tears down the primary slot's subscriptions and hides the
// outgoing webview. Hiding a destroyed webview is a no-op.
func (s *Selector) hidePrevious() {
	for _, unsub := range s.subs {
		unsub()
	}
	s.subs = nil

	if prev, ok := s.Primary(); ok && prev.Webview != nil {
		prev.Webview.Hide()
	}
}
