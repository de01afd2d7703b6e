package shell

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/teamdock-io/teamdock/internal/bridge"
	"github.com/teamdock-io/teamdock/internal/config"
	"github.com/teamdock-io/teamdock/internal/keyring"
	"github.com/teamdock-io/teamdock/internal/models"
	"github.com/teamdock-io/teamdock/internal/webview"
)

// fakeWindow records host window calls.
type fakeWindow struct {
	mu       sync.Mutex
	titles   []string
	screens  []string
	reloads  int
	surfaces map[string]string // surfaceID -> url
	progress []float64
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{surfaces: map[string]string{}}
}

func (w *fakeWindow) Show() {}
func (w *fakeWindow) Hide() {}

func (w *fakeWindow) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.titles = append(w.titles, title)
}

func (w *fakeWindow) ShowScreen(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.screens = append(w.screens, name)
}

func (w *fakeWindow) SetTaskbarProgress(p float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.progress = append(w.progress, p)
}

func (w *fakeWindow) Reload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reloads++
}

func (w *fakeWindow) CreateSurface(surfaceID, url string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.surfaces[surfaceID] = url
}

func (w *fakeWindow) OnFocus(func()) func() { return func() {} }

func (w *fakeWindow) reloadCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// fakeTransport is a connected surface transport.
type fakeTransport struct {
	mu     sync.Mutex
	id     string
	loaded []string
	posts  []string
}

func (f *fakeTransport) ID() string { return f.id }

func (f *fakeTransport) LoadURL(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = append(f.loaded, url)
}

func (f *fakeTransport) Show()  {}
func (f *fakeTransport) Hide()  {}
func (f *fakeTransport) Focus() {}

func (f *fakeTransport) Post(channel string, payload json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, channel)
	return nil
}

func (f *fakeTransport) Dispose() {}

func (f *fakeTransport) postedChannels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.posts...)
}

// fakeSurfaces hands out transports for connected surface ids.
type fakeSurfaces struct {
	mu        sync.Mutex
	connected map[string]*fakeTransport
}

func newFakeSurfaces() *fakeSurfaces {
	return &fakeSurfaces{connected: map[string]*fakeTransport{}}
}

func (f *fakeSurfaces) connect(id string) *fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	tr := &fakeTransport{id: id}
	f.connected[id] = tr
	return tr
}

func (f *fakeSurfaces) Surface(id string) (webview.Surface, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tr, ok := f.connected[id]
	return tr, ok
}

func newTestShell(t *testing.T) (*Shell, *fakeWindow, *fakeSurfaces) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	gokeyring.MockInit()

	win := newFakeWindow()
	surfaces := newFakeSurfaces()
	s, err := New(Options{
		Settings:  models.NewSettings(),
		Window:    win,
		Surfaces:  surfaces,
		SigninURL: "https://signin.example.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	return s, win, surfaces
}

func teamList(ids ...string) []models.TeamUpdate {
	out := make([]models.TeamUpdate, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.TeamUpdate{
			TeamID:   id,
			TeamName: "Team " + id,
			TeamURL:  "https://" + id + ".example.com",
			UserID:   "U-" + id,
		})
	}
	return out
}

func TestShellBootstrapCreatesSurfacesAndPrimary(t *testing.T) {
	s, win, _ := newTestShell(t)

	s.applyTeamList(teamList("T1", "T2"), models.ReasonUnknown)

	if s.reg.Len() != 2 {
		t.Fatalf("registry size = %d, want 2", s.reg.Len())
	}
	if got := s.sel.PrimaryID(); got != "T1" {
		t.Fatalf("primary = %q, want first team", got)
	}
	if len(win.surfaces) != 2 {
		t.Fatalf("surface requests = %d, want one per team", len(win.surfaces))
	}
	for _, url := range win.surfaces {
		if url == "" {
			t.Fatal("surface request without a url")
		}
	}
	if len(win.titles) == 0 || win.titles[len(win.titles)-1] != "Team T1 - Teamdock" {
		t.Fatalf("titles = %v, want the primary team's", win.titles)
	}
}

func TestShellSurfaceConnectedAttaches(t *testing.T) {
	s, win, surfaces := newTestShell(t)
	s.applyTeamList(teamList("T1"), models.ReasonUnknown)

	var surfaceID string
	for id := range win.surfaces {
		surfaceID = id
	}
	tr := surfaces.connect(surfaceID)

	s.handleBridgeEvent(bridge.Event{SurfaceID: surfaceID, Name: bridge.EventSurfaceConnected})

	if len(tr.loaded) != 1 || tr.loaded[0] != "https://T1.example.com" {
		t.Fatalf("loaded = %v, want the team url", tr.loaded)
	}
}

func TestShellCrashPolicy(t *testing.T) {
	s, win, _ := newTestShell(t)
	s.applyTeamList(teamList("T1"), models.ReasonUnknown)

	s.onPrimaryCrashed("T1", webview.CrashPlugin)
	if win.reloadCount() != 0 {
		t.Fatal("plugin crash must not reload the window")
	}

	s.onPrimaryCrashed("T1", webview.CrashRenderer)
	if win.reloadCount() != 1 {
		t.Fatal("renderer crash must reload the window")
	}

	s.onPrimaryCrashed("T1", webview.CrashLoadTimeout)
	if win.reloadCount() != 2 {
		t.Fatal("load timeout must reload the window")
	}
}

func TestShellSignInFlowCreatesPlaceholder(t *testing.T) {
	s, win, _ := newTestShell(t)

	s.handleBridgeEvent(bridge.Event{
		Name:       bridge.EventSignInTeam,
		SignInTeam: &bridge.SignInTeamPayload{URL: "https://signin.example.com/start"},
	})

	if s.reg.Len() != 1 {
		t.Fatalf("registry size = %d, want the placeholder", s.reg.Len())
	}
	placeholder, ok := s.reg.Get(models.SigninTeamID)
	if !ok {
		t.Fatal("placeholder missing")
	}
	if placeholder.Webview == nil {
		t.Fatal("placeholder must get a live surface")
	}
	if s.sel.PrimaryID() != models.SigninTeamID {
		t.Fatalf("primary = %q, want the placeholder", s.sel.PrimaryID())
	}

	var url string
	for _, u := range win.surfaces {
		url = u
	}
	if url != "https://signin.example.com/start" {
		t.Fatalf("surface url = %q, want the sign-in url", url)
	}

	// The first real team list replaces the placeholder in place.
	s.applyTeamList(teamList("T1"), models.ReasonDidSignIn)
	if _, ok := s.reg.Get(models.SigninTeamID); ok {
		t.Fatal("placeholder must be gone after the real list")
	}
	if s.sel.PrimaryID() != "T1" {
		t.Fatalf("primary = %q, want the real team", s.sel.PrimaryID())
	}
}

func TestShellBadgeEventsRouteBySurface(t *testing.T) {
	s, win, surfaces := newTestShell(t)
	s.applyTeamList(teamList("T1", "T2"), models.ReasonUnknown)

	// Connect T1's surface so events can be routed to it.
	var t1Surface string
	for id, url := range win.surfaces {
		if url == "https://T1.example.com" {
			t1Surface = id
		}
	}
	surfaces.connect(t1Surface)
	s.handleBridgeEvent(bridge.Event{SurfaceID: t1Surface, Name: bridge.EventSurfaceConnected})

	s.handleBridgeEvent(bridge.Event{
		SurfaceID:     t1Surface,
		Name:          bridge.EventSetBadgeCount,
		SetBadgeCount: &bridge.SetBadgeCountPayload{Unread: 7, UnreadHighlights: 2},
	})

	t1, _ := s.reg.Get("T1")
	if t1.Badge.Unread != 7 || t1.Badge.UnreadHighlights != 2 {
		t.Fatalf("badge = %+v", t1.Badge)
	}
	t2, _ := s.reg.Get("T2")
	if t2.Badge.Unread != 0 {
		t.Fatal("badge update leaked to the wrong team")
	}

	s.handleBridgeEvent(bridge.Event{
		SurfaceID:     t1Surface,
		Name:          bridge.EventSetConnectionStatus,
		SetConnection: &bridge.SetConnectionStatusPayload{Status: models.ConnectionOffline},
	})
	t1, _ = s.reg.Get("T1")
	if t1.Badge.ConnectionStatus != models.ConnectionOffline {
		t.Fatalf("connection = %q", t1.Badge.ConnectionStatus)
	}
}

func TestShellDisplayTeamSwitchesPrimary(t *testing.T) {
	s, _, _ := newTestShell(t)
	s.applyTeamList(teamList("T1", "T2"), models.ReasonUnknown)

	s.handleBridgeEvent(bridge.Event{
		Name:        bridge.EventDisplayTeam,
		DisplayTeam: &bridge.DisplayTeamPayload{TeamID: "T2"},
	})
	if s.sel.PrimaryID() != "T2" {
		t.Fatalf("primary = %q, want T2", s.sel.PrimaryID())
	}
}

func TestShellRemovalClearsPrimaryAndFallsBack(t *testing.T) {
	s, _, _ := newTestShell(t)
	s.applyTeamList(teamList("T1", "T2"), models.ReasonUnknown)
	s.sel.MakePrimary("T2")

	s.applyTeamList(teamList("T1"), models.ReasonUnknown)

	if s.sel.PrimaryID() != "T1" {
		t.Fatalf("primary = %q, want fallback to the surviving team", s.sel.PrimaryID())
	}
}

func TestShellPersistsTeamsAndPresets(t *testing.T) {
	s, _, _ := newTestShell(t)
	list := teamList("T1")
	list[0].Theme = "aubergine"
	s.applyTeamList(list, models.ReasonUnknown)

	if len(s.cache.Teams) != 1 || s.cache.Teams[0].TeamID != "T1" {
		t.Fatalf("cache teams = %+v", s.cache.Teams)
	}
	if s.cache.Presets["T1"].Theme != "aubergine" {
		t.Fatalf("preset = %+v", s.cache.Presets["T1"])
	}
}

func TestShellStoresSessionTokens(t *testing.T) {
	s, win, _ := newTestShell(t)

	list := teamList("T1")
	list[0].Token = "xoxs-t1"
	s.applyTeamList(list, models.ReasonDidSignIn)

	got, err := keyring.Token("T1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "xoxs-t1" {
		t.Fatalf("stored token = %q", got)
	}
	if list[0].Token != "" {
		t.Fatal("token must be scrubbed from the update before it travels on")
	}

	// Auth invalidation drops the stored token.
	var surfaceID string
	for id := range win.surfaces {
		surfaceID = id
	}
	s.handleBridgeEvent(bridge.Event{SurfaceID: surfaceID, Name: bridge.EventInvalidateAuth})

	if _, err := keyring.Token("T1"); !errors.Is(err, keyring.ErrNotFound) {
		t.Fatalf("after invalidateAuth, err = %v, want ErrNotFound", err)
	}
}

func TestShellSignOutClearsRemovedTokens(t *testing.T) {
	s, _, _ := newTestShell(t)

	list := teamList("T1", "T2")
	list[0].Token = "xoxs-t1"
	list[1].Token = "xoxs-t2"
	s.applyTeamList(list, models.ReasonDidSignIn)

	s.applyTeamList(teamList("T1"), models.ReasonDidSignOut)

	if _, err := keyring.Token("T2"); !errors.Is(err, keyring.ErrNotFound) {
		t.Fatalf("signed-out team's token must be gone, err = %v", err)
	}
	if _, err := keyring.Token("T1"); err != nil {
		t.Fatalf("surviving team's token must remain, err = %v", err)
	}
}

func TestShellThemeChangeNotifiesSurfaces(t *testing.T) {
	s, win, surfaces := newTestShell(t)
	s.applyTeamList(teamList("T1"), models.ReasonUnknown)

	var surfaceID string
	for id := range win.surfaces {
		surfaceID = id
	}
	tr := surfaces.connect(surfaceID)
	s.handleBridgeEvent(bridge.Event{SurfaceID: surfaceID, Name: bridge.EventSurfaceConnected})

	settings, err := config.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	settings.Appearance.Theme = "dark"
	if err := config.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}

	s.reloadSettings()
	s.reloadSettings() // same theme again, no second notification

	count := 0
	for _, ch := range tr.postedChannels() {
		if ch == bridge.ChannelUpdateTheme {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("theme notifications = %d, want exactly one", count)
	}
}

func TestShellTeamsFileReloadWhileEmpty(t *testing.T) {
	s, _, _ := newTestShell(t)

	cache := models.NewTeamCache()
	cache.Teams = []models.TeamRecord{{
		TeamID:   "T9",
		TeamName: "Team T9",
		TeamURL:  "https://t9.example.com",
		UserID:   "U-T9",
	}}
	if err := config.SaveTeamCache(cache); err != nil {
		t.Fatal(err)
	}

	s.reloadTeamCache()
	if _, ok := s.reg.Get("T9"); !ok {
		t.Fatal("external cache edit must restore while nothing is signed in")
	}

	// Once teams are live, the registry stays authoritative.
	other := models.NewTeamCache()
	other.Teams = []models.TeamRecord{{TeamID: "T8", TeamName: "Team T8", TeamURL: "https://t8.example.com", UserID: "U-T8"}}
	if err := config.SaveTeamCache(other); err != nil {
		t.Fatal(err)
	}
	s.reloadTeamCache()
	if _, ok := s.reg.Get("T8"); ok {
		t.Fatal("reload must not apply over a live registry")
	}
	if _, ok := s.reg.Get("T9"); !ok {
		t.Fatal("live team lost on a skipped reload")
	}
}
