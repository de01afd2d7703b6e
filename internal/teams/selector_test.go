package teams

import (
	"testing"

	"github.com/teamdock-io/teamdock/internal/models"
	"github.com/teamdock-io/teamdock/internal/webview"
)

func seedRegistry(t *testing.T, ids ...string) (*Registry, map[string]*fakeSurface) {
	t.Helper()
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)
	upds := make([]models.TeamUpdate, 0, len(ids))
	for _, id := range ids {
		upds = append(upds, update(id, "Team "+id))
	}
	rec.Reconcile(upds, models.ReasonUnknown)

	surfaces := make(map[string]*fakeSurface, len(ids))
	for _, id := range ids {
		tm, _ := reg.Get(id)
		surfaces[id] = attachSurface(tm)
	}
	return reg, surfaces
}

func TestSelectorSwitchHidesPreviousShowsNext(t *testing.T) {
	reg, surfaces := seedRegistry(t, "T1", "T2")

	var changed []string
	sel := NewSelector(reg, nil, SelectorHooks{
		TeamChanged: func(name string, _ *webview.Context) { changed = append(changed, name) },
	})

	if err := sel.MakePrimary("T1"); err != nil {
		t.Fatal(err)
	}
	if err := sel.MakePrimary("T2"); err != nil {
		t.Fatal(err)
	}

	if shown, hidden, _, _ := surfaces["T1"].counts(); shown != 1 || hidden != 1 {
		t.Fatalf("T1 shown=%d hidden=%d, want 1/1", shown, hidden)
	}
	if shown, hidden, focused, _ := surfaces["T2"].counts(); shown != 1 || hidden != 0 || focused == 0 {
		t.Fatalf("T2 shown=%d hidden=%d focused=%d, want shown+focused", shown, hidden, focused)
	}
	if len(changed) != 2 || changed[1] != "Team T2" {
		t.Fatalf("TeamChanged notifications = %v", changed)
	}
}

func TestSelectorMakePrimaryIdempotent(t *testing.T) {
	reg, surfaces := seedRegistry(t, "T1")

	notified := 0
	sel := NewSelector(reg, nil, SelectorHooks{
		TeamChanged: func(string, *webview.Context) { notified++ },
	})

	sel.MakePrimary("T1")
	sel.MakePrimary("T1")

	if notified != 1 {
		t.Fatalf("TeamChanged fired %d times, want 1", notified)
	}
	if shown, _, _, _ := surfaces["T1"].counts(); shown != 1 {
		t.Fatalf("shown = %d, want 1", shown)
	}
}

func TestSelectorUnknownTeam(t *testing.T) {
	reg, _ := seedRegistry(t, "T1")
	sel := NewSelector(reg, nil, SelectorHooks{})

	if err := sel.MakePrimary("nope"); err == nil {
		t.Fatal("expected error for unknown team")
	}
	if sel.PrimaryID() != "" {
		t.Fatalf("primary = %q, want empty", sel.PrimaryID())
	}
}

func TestSelectorCrashRoutesOnlyFromPrimary(t *testing.T) {
	reg, _ := seedRegistry(t, "T1", "T2")

	var crashes []string
	sel := NewSelector(reg, nil, SelectorHooks{
		PrimaryCrashed: func(teamID string, kind webview.CrashKind) {
			crashes = append(crashes, teamID+":"+string(kind))
		},
	})

	sel.MakePrimary("T1")
	sel.MakePrimary("T2")

	// T1 is no longer primary; its crash must be invisible to the hook.
	t1, _ := reg.Get("T1")
	t1.Webview.HandleCrash(webview.CrashRenderer)

	t2, _ := reg.Get("T2")
	t2.Webview.HandleCrash(webview.CrashGPU)

	if len(crashes) != 1 || crashes[0] != "T2:GPU" {
		t.Fatalf("crashes = %v, want only the primary's", crashes)
	}
}

func TestSelectorFocusFollowsPrimary(t *testing.T) {
	reg, surfaces := seedRegistry(t, "T1", "T2")
	focus := newFakeFocus()
	sel := NewSelector(reg, focus, SelectorHooks{})

	sel.MakePrimary("T1")
	_, _, before, _ := surfaces["T1"].counts()
	focus.fire()
	if _, _, after, _ := surfaces["T1"].counts(); after != before+1 {
		t.Fatalf("focus = %d, want %d", after, before+1)
	}

	sel.MakePrimary("T2")
	_, _, t1Focus, _ := surfaces["T1"].counts()
	focus.fire()
	if _, _, now, _ := surfaces["T1"].counts(); now != t1Focus {
		t.Fatal("stale focus subscription still routes to the old primary")
	}
	if _, _, t2Focus, _ := surfaces["T2"].counts(); t2Focus < 2 {
		t.Fatalf("T2 focus = %d, want focus-follow after switch", t2Focus)
	}
}

func TestSelectorClearPrimary(t *testing.T) {
	reg, surfaces := seedRegistry(t, "T1")

	noTeam := 0
	sel := NewSelector(reg, nil, SelectorHooks{
		NoTeamShown: func() { noTeam++ },
	})

	sel.MakePrimary("T1")
	sel.ClearPrimary()

	if sel.PrimaryID() != "" {
		t.Fatalf("primary = %q, want cleared", sel.PrimaryID())
	}
	if noTeam != 1 {
		t.Fatalf("NoTeamShown fired %d times, want 1", noTeam)
	}
	if _, hidden, _, _ := surfaces["T1"].counts(); hidden != 1 {
		t.Fatalf("hidden = %d, want 1", hidden)
	}
}

func TestSelectorEnsureValidClearsRemovedPrimary(t *testing.T) {
	reg, _ := seedRegistry(t, "T1", "T2")
	rec := NewReconciler(reg, nil)
	// Adopt the reconciler's view of the already-merged list.
	rec.mergedOnce = true

	noTeam := 0
	sel := NewSelector(reg, nil, SelectorHooks{
		NoTeamShown: func() { noTeam++ },
	})
	sel.MakePrimary("T2")

	rec.Reconcile([]models.TeamUpdate{update("T1", "Team T1")}, models.ReasonUnknown)
	sel.EnsureValid()

	if sel.PrimaryID() != "" {
		t.Fatalf("primary = %q, want cleared after removal", sel.PrimaryID())
	}
	if noTeam != 1 {
		t.Fatalf("NoTeamShown fired %d times, want 1", noTeam)
	}
}

func TestSelectorEnsureValidKeepsSurvivingPrimary(t *testing.T) {
	reg, _ := seedRegistry(t, "T1", "T2")
	sel := NewSelector(reg, nil, SelectorHooks{})
	sel.MakePrimary("T1")

	sel.EnsureValid()
	if sel.PrimaryID() != "T1" {
		t.Fatalf("primary = %q, want unchanged", sel.PrimaryID())
	}
}

func TestSelectorInitialLoadSatisfied(t *testing.T) {
	reg, _ := seedRegistry(t, "T1")

	satisfied := 0
	sel := NewSelector(reg, nil, SelectorHooks{
		InitialLoadSatisfied: func() { satisfied++ },
	})
	sel.MakePrimary("T1")

	if satisfied != 1 {
		t.Fatalf("InitialLoadSatisfied fired %d times, want 1", satisfied)
	}
}
