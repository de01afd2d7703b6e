// Package teams implements the multi-team lifecycle core: the team
// registry, the list reconciler, the primary team selector, and the
// badge aggregator.
package teams

import (
	"fmt"

	"github.com/teamdock-io/teamdock/internal/models"
	"github.com/teamdock-io/teamdock/internal/webview"
)

// Team is one signed-in workspace. The record exclusively owns its
// webview context: created lazily or after reconciliation, destroyed
// explicitly, nil when no live surface exists.
type Team struct {
	TeamID   string
	TeamName string
	TeamURL  string
	UserID   string

	Theme    string
	Icons    models.TeamIcons
	Initials string

	Badge models.BadgeInfo

	Webview *webview.Context

	// shouldDelete marks the record for removal during one
	// reconciliation pass. Never set outside a merge.
	shouldDelete bool
}

// IsSignin reports whether this is the sign-in placeholder record.
func (t *Team) IsSignin() bool {
	return t.TeamID == models.SigninTeamID
}

// Record returns the persisted form of the team (everything except the
// live webview handle).
func (t *Team) Record() models.TeamRecord {
	return models.TeamRecord{
		TeamID:   t.TeamID,
		TeamName: t.TeamName,
		TeamURL:  t.TeamURL,
		UserID:   t.UserID,
		Theme:    t.Theme,
		Icons:    t.Icons,
		Initials: t.Initials,
	}
}

// Registry is the ordered list of signed-in teams, indexed by team_id.
// team_id is unique across the live list at all times. Membership is
// mutated only by the Reconciler; other components mutate fields of the
// records it hands out.
type Registry struct {
	order []*Team
	byID  map[string]*Team
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: map[string]*Team{}}
}

// Len returns the number of live teams.
func (r *Registry) Len() int { return len(r.order) }

// All returns the teams in display order. The slice is a copy; the
// records are the live ones.
func (r *Registry) All() []*Team {
	out := make([]*Team, len(r.order))
	copy(out, r.order)
	return out
}

// Get looks a team up by id.
func (r *Registry) Get(teamID string) (*Team, bool) {
	t, ok := r.byID[teamID]
	return t, ok
}

// FirstLiveNonSignin returns an arbitrary non-placeholder team that has
// a live webview, or nil.
func (r *Registry) FirstLiveNonSignin() *Team {
	for _, t := range r.order {
		if !t.IsSignin() && t.Webview != nil {
			return t
		}
	}
	return nil
}

// Records returns the persisted form of the whole list.
func (r *Registry) Records() []models.TeamRecord {
	out := make([]models.TeamRecord, 0, len(r.order))
	for _, t := range r.order {
		if t.IsSignin() {
			continue
		}
		out = append(out, t.Record())
	}
	return out
}

// replace swaps the whole list in one step. Callers guarantee id
// uniqueness; replace re-checks because a duplicate here would corrupt
// every later lookup.
func (r *Registry) replace(list []*Team) error {
	byID := make(map[string]*Team, len(list))
	for _, t := range list {
		if _, dup := byID[t.TeamID]; dup {
			return fmt.Errorf("duplicate team_id in registry: %s", t.TeamID)
		}
		byID[t.TeamID] = t
	}
	r.order = list
	r.byID = byID
	return nil
}
