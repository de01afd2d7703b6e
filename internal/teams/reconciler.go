package teams

import (
	"sort"

	"github.com/teamdock-io/teamdock/internal/logger"
	"github.com/teamdock-io/teamdock/internal/models"
	"github.com/teamdock-io/teamdock/internal/webview"
)

// PresetStore supplies cached presentation data (theme, icons, initials)
// persisted across process restarts, keyed by team_id.
type PresetStore interface {
	Preset(teamID string) (models.TeamPreset, bool)
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	// Added holds records created for previously-unseen team_ids, in
	// incoming order. Empty on the bootstrap (empty-to-something) pass.
	Added []*Team

	// Disposed collects webviews of removed teams. The caller tears
	// them down after the merge has completed.
	Disposed []*webview.Context

	// RefreshTeamID, when non-empty, asks the caller to trigger a team
	// list refresh against that team's live page. Set when a spurious
	// sign-in placeholder arrived while real teams exist.
	RefreshTeamID string

	// Merged reports whether the incoming list was actually merged
	// (false for suppressed, discarded, or nil updates).
	Merged bool
}

// Reconciler merges externally supplied authoritative team lists into
// the registry, preserving live webview handles across updates. It is
// the only component that mutates registry membership, and a merge runs
// to completion before control returns to the event loop.
type Reconciler struct {
	reg     *Registry
	presets PresetStore
	log     *logger.Logger

	// mergedOnce makes the very first merge unconditional even when the
	// incoming id set matches the current one.
	mergedOnce bool
}

// NewReconciler creates a reconciler over the given registry. presets
// may be nil when no cache is available.
func NewReconciler(reg *Registry, presets PresetStore) *Reconciler {
	return &Reconciler{
		reg:     reg,
		presets: presets,
		log:     logger.New("reconciler"),
	}
}

// Reconcile merges one incoming team list. A nil incoming list with an
// already-populated registry is a no-op. The registry never ends up with
// duplicate team_ids or more than one sign-in placeholder.
func (r *Reconciler) Reconcile(incoming []models.TeamUpdate, reason models.UpdateReason) Result {
	if incoming == nil {
		return Result{}
	}

	incoming = dedupe(incoming)

	// Suppression: an incoming list whose id set matches the registry is
	// skipped once a merge has run. Note this also swallows updates that
	// only changed team attributes; kept as-is deliberately.
	if r.mergedOnce && r.sameIDSet(incoming) {
		return Result{}
	}

	// A lone sign-out placeholder while exactly one team is signed in
	// collapses to a full sign-out.
	if len(incoming) == 1 && incoming[0].IsSignin() &&
		reason == models.ReasonDidSignOut && r.reg.Len() == 1 {
		incoming = []models.TeamUpdate{}
	} else if containsSignin(incoming) && r.reg.Len() > 0 {
		// Signing in to an additional team emits a spurious placeholder
		// before the real list arrives. Discard it and ask for a refresh
		// from any live page instead.
		r.log.Debugw("discarding sign-in placeholder update", "registry_size", r.reg.Len())
		res := Result{}
		if t := r.reg.FirstLiveNonSignin(); t != nil {
			res.RefreshTeamID = t.TeamID
		}
		return res
	}

	// Bootstrap: empty registry adopts the list verbatim, with no
	// disposals and no newly-added tracking.
	if r.reg.Len() == 0 {
		list := make([]*Team, 0, len(incoming))
		for _, upd := range incoming {
			list = append(list, r.newTeam(upd))
		}
		if err := r.reg.replace(list); err != nil {
			r.log.Errorw("bootstrap merge rejected", "error", err)
			return Result{}
		}
		r.mergedOnce = true
		return Result{Merged: true}
	}

	// Placeholder fixup: a lone sign-in placeholder is replaced by the
	// first real team, inheriting the in-flight surface rather than
	// destroying and recreating it.
	if r.reg.Len() == 1 && len(incoming) > 0 {
		if old := r.reg.order[0]; old.IsSignin() {
			repl := r.newTeam(incoming[0])
			repl.Webview = old.Webview
			if repl.Icons.Empty() {
				repl.Icons = old.Icons
			}
			if repl.Initials == "" {
				repl.Initials = old.Initials
			}
			if err := r.reg.replace([]*Team{repl}); err != nil {
				r.log.Errorw("placeholder fixup rejected", "error", err)
				return Result{}
			}
		}
	}

	res := Result{Merged: true}
	next := make([]*Team, 0, len(incoming))
	keep := make(map[string]bool, len(incoming))

	for _, upd := range incoming {
		keep[upd.TeamID] = true
		if t, ok := r.reg.Get(upd.TeamID); ok {
			// Update in place: non-webview fields take the incoming
			// data; webview, icons, and initials carry over from the
			// prior record.
			t.TeamName = upd.TeamName
			t.TeamURL = upd.TeamURL
			t.UserID = upd.UserID
			if upd.Theme != "" {
				t.Theme = upd.Theme
			}
			r.attachPreset(t)
			next = append(next, t)
			continue
		}
		t := r.newTeam(upd)
		next = append(next, t)
		res.Added = append(res.Added, t)
	}

	for _, t := range r.reg.All() {
		if keep[t.TeamID] {
			continue
		}
		t.shouldDelete = true
		if t.Webview != nil {
			res.Disposed = append(res.Disposed, t.Webview)
			t.Webview = nil
		}
	}

	if err := r.reg.replace(next); err != nil {
		r.log.Errorw("merge rejected", "error", err)
		return Result{}
	}
	r.mergedOnce = true
	return res
}

// newTeam creates a record for an incoming entry with cached
// presentation data attached.
func (r *Reconciler) newTeam(upd models.TeamUpdate) *Team {
	t := &Team{
		TeamID:   upd.TeamID,
		TeamName: upd.TeamName,
		TeamURL:  upd.TeamURL,
		UserID:   upd.UserID,
		Theme:    upd.Theme,
		Icons:    upd.Icons,
		Initials: upd.Initials,
		Badge:    models.DefaultBadge(),
	}
	r.attachPreset(t)
	return t
}

// attachPreset fills presentation fields from the persisted cache where
// the live record has none.
func (r *Reconciler) attachPreset(t *Team) {
	if r.presets == nil {
		return
	}
	p, ok := r.presets.Preset(t.TeamID)
	if !ok {
		return
	}
	if t.Theme == "" {
		t.Theme = p.Theme
	}
	if t.Icons.Empty() {
		t.Icons = p.Icons
	}
	if t.Initials == "" {
		t.Initials = p.Initials
	}
}

// sameIDSet reports whether the incoming list covers exactly the
// registry's team_ids.
func (r *Reconciler) sameIDSet(incoming []models.TeamUpdate) bool {
	if len(incoming) != r.reg.Len() {
		return false
	}
	a := make([]string, 0, len(incoming))
	for _, upd := range incoming {
		a = append(a, upd.TeamID)
	}
	b := make([]string, 0, r.reg.Len())
	for _, t := range r.reg.order {
		b = append(b, t.TeamID)
	}
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsSignin(incoming []models.TeamUpdate) bool {
	for _, upd := range incoming {
		if upd.IsSignin() {
			return true
		}
	}
	return false
}

// dedupe drops entries with a missing team_id and keeps the first
// occurrence of duplicated ids. The wire boundary already validates;
// this is the registry's last line of defense.
func dedupe(incoming []models.TeamUpdate) []models.TeamUpdate {
	out := incoming[:0:0]
	seen := make(map[string]bool, len(incoming))
	for _, upd := range incoming {
		if upd.TeamID == "" || seen[upd.TeamID] {
			continue
		}
		seen[upd.TeamID] = true
		out = append(out, upd)
	}
	return out
}
