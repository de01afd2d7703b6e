package teams

import (
	"testing"

	"github.com/teamdock-io/teamdock/internal/models"
)

func TestReconcileNilIsNoOp(t *testing.T) {
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)
	rec.Reconcile([]models.TeamUpdate{update("T1", "One")}, models.ReasonUnknown)

	res := rec.Reconcile(nil, models.ReasonUnknown)
	if res.Merged {
		t.Fatal("nil update must not merge")
	}
	if reg.Len() != 1 {
		t.Fatalf("registry size = %d, want 1", reg.Len())
	}
}

func TestReconcileBootstrap(t *testing.T) {
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)

	res := rec.Reconcile([]models.TeamUpdate{
		update("T1", "One"),
		update("T2", "Two"),
	}, models.ReasonUnknown)

	if !res.Merged {
		t.Fatal("bootstrap must merge")
	}
	if len(res.Added) != 0 {
		t.Fatalf("bootstrap Added = %d, want 0", len(res.Added))
	}
	if reg.Len() != 2 {
		t.Fatalf("registry size = %d, want 2", reg.Len())
	}
	t1, ok := reg.Get("T1")
	if !ok {
		t.Fatal("T1 missing after bootstrap")
	}
	if t1.Badge.ConnectionStatus != models.ConnectionConnecting {
		t.Fatalf("new team badge = %q, want connecting", t1.Badge.ConnectionStatus)
	}
}

func TestReconcilePreservesWebviewAcrossUpdate(t *testing.T) {
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)
	rec.Reconcile([]models.TeamUpdate{update("T1", "One")}, models.ReasonUnknown)

	t1, _ := reg.Get("T1")
	attachSurface(t1)
	wv := t1.Webview

	upd := update("T1", "One Renamed")
	res := rec.Reconcile([]models.TeamUpdate{upd, update("T2", "Two")}, models.ReasonUnknown)
	if !res.Merged {
		t.Fatal("expected merge")
	}

	got, _ := reg.Get("T1")
	if got.Webview != wv {
		t.Fatal("webview handle must survive an attribute update")
	}
	if got.TeamName != "One Renamed" {
		t.Fatalf("team name = %q, want renamed value", got.TeamName)
	}
}

func TestReconcileUpdateKeepsIconsAndInitials(t *testing.T) {
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)

	first := update("T1", "One")
	first.Icons = models.TeamIcons{Small: "small.png"}
	first.Initials = "ON"
	rec.Reconcile([]models.TeamUpdate{first}, models.ReasonUnknown)

	second := update("T1", "One")
	second.Icons = models.TeamIcons{Small: "other.png"}
	second.Initials = "XX"
	rec.Reconcile([]models.TeamUpdate{second, update("T2", "Two")}, models.ReasonUnknown)

	got, _ := reg.Get("T1")
	if got.Icons.Small != "small.png" {
		t.Fatalf("icons = %q, want prior value kept", got.Icons.Small)
	}
	if got.Initials != "ON" {
		t.Fatalf("initials = %q, want prior value kept", got.Initials)
	}
}

func TestReconcileDedupesIncoming(t *testing.T) {
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)

	dupA := update("T1", "First occurrence")
	dupB := update("T1", "Second occurrence")
	res := rec.Reconcile([]models.TeamUpdate{
		dupA,
		{TeamID: "", TeamName: "No id"},
		dupB,
		update("T2", "Two"),
	}, models.ReasonUnknown)

	if !res.Merged {
		t.Fatal("expected merge")
	}
	if reg.Len() != 2 {
		t.Fatalf("registry size = %d, want 2", reg.Len())
	}
	got, _ := reg.Get("T1")
	if got.TeamName != "First occurrence" {
		t.Fatalf("team name = %q, want the first occurrence to win", got.TeamName)
	}
}

func TestReconcileSuppressesSameIDSet(t *testing.T) {
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)
	rec.Reconcile([]models.TeamUpdate{update("T1", "One"), update("T2", "Two")}, models.ReasonUnknown)

	// Same ids in a different order, with a changed name. The update is
	// swallowed whole, renames included.
	res := rec.Reconcile([]models.TeamUpdate{update("T2", "Two"), update("T1", "Renamed")}, models.ReasonUnknown)
	if res.Merged {
		t.Fatal("same id set must be suppressed after the first merge")
	}
	got, _ := reg.Get("T1")
	if got.TeamName != "One" {
		t.Fatalf("team name = %q, suppression must skip the rename too", got.TeamName)
	}
}

func TestReconcileFirstMergeNeverSuppressed(t *testing.T) {
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)

	// Even a list that would match an empty registry (empty list) merges
	// the first time through.
	res := rec.Reconcile([]models.TeamUpdate{}, models.ReasonUnknown)
	if !res.Merged {
		t.Fatal("first merge must run unconditionally")
	}

	res = rec.Reconcile([]models.TeamUpdate{}, models.ReasonUnknown)
	if res.Merged {
		t.Fatal("second identical merge must be suppressed")
	}
}

func TestReconcileRemovalDisposesWebview(t *testing.T) {
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)
	rec.Reconcile([]models.TeamUpdate{update("T1", "One"), update("T2", "Two")}, models.ReasonUnknown)

	t2, _ := reg.Get("T2")
	attachSurface(t2)
	wv := t2.Webview

	res := rec.Reconcile([]models.TeamUpdate{update("T1", "One")}, models.ReasonUnknown)
	if !res.Merged {
		t.Fatal("expected merge")
	}
	if len(res.Disposed) != 1 || res.Disposed[0] != wv {
		t.Fatalf("disposed = %v, want the removed team's webview", res.Disposed)
	}
	if _, ok := reg.Get("T2"); ok {
		t.Fatal("removed team still present in registry")
	}
	if t2.Webview != nil {
		t.Fatal("removed record must drop its webview reference")
	}
}

func TestReconcileAddedTracksNewTeams(t *testing.T) {
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)
	rec.Reconcile([]models.TeamUpdate{update("T1", "One")}, models.ReasonUnknown)

	res := rec.Reconcile([]models.TeamUpdate{
		update("T1", "One"),
		update("T2", "Two"),
		update("T3", "Three"),
	}, models.ReasonUnknown)

	if len(res.Added) != 2 {
		t.Fatalf("Added = %d, want 2", len(res.Added))
	}
	if res.Added[0].TeamID != "T2" || res.Added[1].TeamID != "T3" {
		t.Fatalf("Added order = %s, %s; want incoming order", res.Added[0].TeamID, res.Added[1].TeamID)
	}
}

func TestReconcileSignOutCollapse(t *testing.T) {
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)
	rec.Reconcile([]models.TeamUpdate{update("T1", "One")}, models.ReasonUnknown)

	t1, _ := reg.Get("T1")
	attachSurface(t1)
	wv := t1.Webview

	// Signing out of the only team reports a lone placeholder; the
	// registry empties instead of adopting it.
	res := rec.Reconcile([]models.TeamUpdate{signinUpdate()}, models.ReasonDidSignOut)
	if !res.Merged {
		t.Fatal("sign-out collapse must merge")
	}
	if reg.Len() != 0 {
		t.Fatalf("registry size = %d, want 0 after last sign-out", reg.Len())
	}
	if len(res.Disposed) != 1 || res.Disposed[0] != wv {
		t.Fatal("sign-out must dispose the last team's webview")
	}
}

func TestReconcileDiscardsSigninNoise(t *testing.T) {
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)
	rec.Reconcile([]models.TeamUpdate{update("T1", "One"), update("T2", "Two")}, models.ReasonUnknown)

	t1, _ := reg.Get("T1")
	attachSurface(t1)

	// Adding a team emits a placeholder-bearing list before the real one.
	res := rec.Reconcile([]models.TeamUpdate{signinUpdate()}, models.ReasonDidSignIn)
	if res.Merged {
		t.Fatal("placeholder noise must not merge")
	}
	if res.RefreshTeamID != "T1" {
		t.Fatalf("refresh team = %q, want the first live team", res.RefreshTeamID)
	}
	if reg.Len() != 2 {
		t.Fatalf("registry size = %d, want unchanged", reg.Len())
	}
}

func TestReconcileSigninNoiseWithoutLiveTeam(t *testing.T) {
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)
	rec.Reconcile([]models.TeamUpdate{update("T1", "One")}, models.ReasonUnknown)

	// No team has a live webview yet, so there is nowhere to refresh from.
	res := rec.Reconcile([]models.TeamUpdate{signinUpdate()}, models.ReasonDidSignIn)
	if res.Merged || res.RefreshTeamID != "" {
		t.Fatalf("got merged=%v refresh=%q, want a plain discard", res.Merged, res.RefreshTeamID)
	}
}

func TestReconcilePlaceholderFixup(t *testing.T) {
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)
	rec.Reconcile([]models.TeamUpdate{signinUpdate()}, models.ReasonUnknown)

	placeholder, ok := reg.Get(models.SigninTeamID)
	if !ok {
		t.Fatal("placeholder missing after bootstrap")
	}
	attachSurface(placeholder)
	wv := placeholder.Webview

	// First real sign-in: the placeholder's in-flight surface carries
	// over to the real team instead of being torn down.
	res := rec.Reconcile([]models.TeamUpdate{update("T1", "One")}, models.ReasonDidSignIn)
	if !res.Merged {
		t.Fatal("expected merge")
	}
	if reg.Len() != 1 {
		t.Fatalf("registry size = %d, want 1", reg.Len())
	}
	got, ok := reg.Get("T1")
	if !ok {
		t.Fatal("real team missing after fixup")
	}
	if got.Webview != wv {
		t.Fatal("real team must inherit the placeholder's webview")
	}
	if len(res.Disposed) != 0 {
		t.Fatalf("disposed = %d, want 0 during fixup", len(res.Disposed))
	}
}

func TestReconcileAttachesPresets(t *testing.T) {
	presets := fakePresets{
		"T1": {Theme: "aubergine", Icons: models.TeamIcons{Small: "cached.png"}, Initials: "ON"},
	}
	reg := NewRegistry()
	rec := NewReconciler(reg, presets)

	rec.Reconcile([]models.TeamUpdate{update("T1", "One")}, models.ReasonUnknown)

	got, _ := reg.Get("T1")
	if got.Theme != "aubergine" || got.Icons.Small != "cached.png" || got.Initials != "ON" {
		t.Fatalf("preset not attached: theme=%q icons=%q initials=%q", got.Theme, got.Icons.Small, got.Initials)
	}
}

func TestReconcilePresetsDoNotOverrideLiveData(t *testing.T) {
	presets := fakePresets{"T1": {Theme: "cached-theme", Initials: "XX"}}
	reg := NewRegistry()
	rec := NewReconciler(reg, presets)

	upd := update("T1", "One")
	upd.Theme = "live-theme"
	upd.Initials = "ON"
	rec.Reconcile([]models.TeamUpdate{upd}, models.ReasonUnknown)

	got, _ := reg.Get("T1")
	if got.Theme != "live-theme" || got.Initials != "ON" {
		t.Fatalf("cache overrode live data: theme=%q initials=%q", got.Theme, got.Initials)
	}
}

func TestReconcileReordersToIncomingOrder(t *testing.T) {
	reg := NewRegistry()
	rec := NewReconciler(reg, nil)
	rec.Reconcile([]models.TeamUpdate{
		update("T1", "One"),
		update("T2", "Two"),
		update("T3", "Three"),
	}, models.ReasonUnknown)

	// Dropping one team forces a real merge; the survivors keep the
	// incoming order.
	rec.Reconcile([]models.TeamUpdate{
		update("T3", "Three"),
		update("T1", "One"),
	}, models.ReasonUnknown)

	all := reg.All()
	if len(all) != 2 {
		t.Fatalf("registry size = %d, want 2", len(all))
	}
	if all[0].TeamID != "T3" || all[1].TeamID != "T1" {
		t.Fatalf("order = %s, %s; want incoming order", all[0].TeamID, all[1].TeamID)
	}
}
