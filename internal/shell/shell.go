package shell

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/teamdock-io/teamdock/internal/bridge"
	"github.com/teamdock-io/teamdock/internal/config"
	"github.com/teamdock-io/teamdock/internal/downloads"
	"github.com/teamdock-io/teamdock/internal/keyring"
	"github.com/teamdock-io/teamdock/internal/logger"
	"github.com/teamdock-io/teamdock/internal/models"
	"github.com/teamdock-io/teamdock/internal/netstate"
	"github.com/teamdock-io/teamdock/internal/teams"
	"github.com/teamdock-io/teamdock/internal/tray"
	"github.com/teamdock-io/teamdock/internal/watcher"
	"github.com/teamdock-io/teamdock/internal/webview"
)

// refreshTeamsScript is the remote code asking a live page for a fresh
// authoritative team list.
const refreshTeamsScript = "TD.teams.requestRefresh()"

// initialLoadGrace is how long the shell waits for a first team to be
// shown before falling back to the sign-in screen.
const initialLoadGrace = 30 * time.Second

// SnapshotSink receives state snapshots for observers. The bridge hub
// implements this.
type SnapshotSink interface {
	PublishSnapshot(bridge.Snapshot)
}

// Options wires a Shell to its collaborators.
type Options struct {
	Settings *models.Settings
	Window   HostWindow
	Surfaces SurfaceSource
	Sink     SnapshotSink

	// SigninURL is where new sign-in surfaces point.
	SigninURL string

	// Webview overrides the per-surface timing policy. Zero values take
	// defaults; tests shrink them.
	Webview webview.Options

	// Prober overrides the network health probe.
	Prober netstate.Prober

	// Netstate overrides monitor timing. Zero values take defaults.
	Netstate netstate.Options
}

// Shell is the daemon core. All state below the mutex-free line is
// owned by the event loop goroutine; external goroutines talk to it
// through post().
type Shell struct {
	log      *logger.Logger
	settings *models.Settings
	window   HostWindow
	surfaces SurfaceSource
	sink     SnapshotSink

	signinURL string
	wvOpts    webview.Options

	reg      *teams.Registry
	rec      *teams.Reconciler
	sel      *teams.Selector
	cache    *models.TeamCache
	cacheW   *config.TeamCacheWriter
	dl       *downloads.Manager
	monitor  *netstate.Monitor
	updates  *UpdateState

	// pendingSurfaces maps a surface id we asked the host to create to
	// the team waiting for it.
	pendingSurfaces map[string]string

	// initialLoadTimer falls back to the sign-in screen when nothing
	// becomes primary in time. Nil once satisfied.
	initialLoadTimer *time.Timer

	tasks  chan func()
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a shell. Call Run to start it.
func New(opts Options) (*Shell, error) {
	if opts.Window == nil {
		opts.Window = NopWindow{}
	}

	cache, err := config.LoadTeamCache()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Shell{
		log:             logger.New("shell"),
		settings:        opts.Settings,
		window:          opts.Window,
		surfaces:        opts.Surfaces,
		sink:            opts.Sink,
		signinURL:       opts.SigninURL,
		wvOpts:          opts.Webview,
		reg:             teams.NewRegistry(),
		cache:           cache,
		cacheW:          config.NewTeamCacheWriter(),
		updates:         &UpdateState{},
		pendingSurfaces: map[string]string{},
		tasks:           make(chan func(), 256),
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
	}
	s.wvOpts.DevMode = s.wvOpts.DevMode || opts.Settings.DevMode

	s.rec = teams.NewReconciler(s.reg, s)
	s.sel = teams.NewSelector(s.reg, s.focusSource(), teams.SelectorHooks{
		TeamChanged:          s.onTeamChanged,
		NoTeamShown:          s.onNoTeamShown,
		PrimaryCrashed:       s.onPrimaryCrashed,
		InitialLoadSatisfied: s.satisfyInitialLoad,
	})

	downloadDir := opts.Settings.DownloadDir
	if downloadDir == "" {
		if downloadDir, err = config.DefaultDownloadDir(); err != nil {
			return nil, err
		}
	}
	s.dl = downloads.NewManager(downloadDir, s.onDownloadsChanged)

	prober := opts.Prober
	if prober == nil {
		prober = netstate.NewHTTPProber("")
	}
	nsOpts := opts.Netstate
	nsOpts.BrowserOnline = true
	s.monitor = netstate.NewMonitor(prober, nsOpts, s.onNetTransition)

	return s, nil
}

// Preset implements teams.PresetStore over the persisted cache.
func (s *Shell) Preset(teamID string) (models.TeamPreset, bool) {
	p, ok := s.cache.Presets[teamID]
	return p, ok
}

// Run starts the event loop and blocks until Shutdown. Cached teams are
// restored first so the window has content before any page connects.
func (s *Shell) Run() {
	defer close(s.done)

	s.monitor.Start(s.ctx)
	s.startWatcher()
	s.startUpdateCheck()

	s.initialLoadTimer = time.AfterFunc(initialLoadGrace, func() {
		s.post(s.initialLoadExpired)
	})

	s.restoreCachedTeams()

	for {
		select {
		case <-s.ctx.Done():
			s.teardown()
			return
		case fn := <-s.tasks:
			fn()
		}
	}
}

// Shutdown stops the loop. Blocks until teardown completes.
func (s *Shell) Shutdown() {
	s.cancel()
	<-s.done
}

// HandleBridgeEvents pumps decoded bridge events into the loop. Run on
// its own goroutine against the server's event channel.
func (s *Shell) HandleBridgeEvents(events <-chan bridge.Event) {
	for ev := range events {
		ev := ev
		s.post(func() { s.handleBridgeEvent(ev) })
	}
}

// post hands a task to the event loop. Dropped after shutdown.
func (s *Shell) post(fn func()) {
	select {
	case s.tasks <- fn:
	case <-s.ctx.Done():
	}
}

func (s *Shell) teardown() {
	for _, t := range s.reg.All() {
		if t.Webview != nil {
			t.Webview.Dispose()
		}
	}
	s.persistTeams()
	s.cacheW.Flush()
}

// restoreCachedTeams boots the registry from the persisted team list.
func (s *Shell) restoreCachedTeams() {
	if len(s.cache.Teams) == 0 {
		s.window.ShowScreen(ScreenSignin)
		return
	}

	incoming := make([]models.TeamUpdate, 0, len(s.cache.Teams))
	for _, rec := range s.cache.Teams {
		incoming = append(incoming, models.TeamUpdate{
			TeamID:   rec.TeamID,
			TeamName: rec.TeamName,
			TeamURL:  rec.TeamURL,
			UserID:   rec.UserID,
			Theme:    rec.Theme,
			Icons:    rec.Icons,
			Initials: rec.Initials,
		})
	}
	s.applyTeamList(incoming, models.ReasonUnknown)
}

// --- Bridge event handling ---

func (s *Shell) handleBridgeEvent(ev bridge.Event) {
	switch ev.Name {
	case bridge.EventSurfaceConnected:
		s.handleSurfaceConnected(ev.SurfaceID)
	case bridge.EventSurfaceClosed:
		delete(s.pendingSurfaces, ev.SurfaceID)
	case bridge.EventUpdate:
		s.applyTeamList(ev.Update.Teams, ev.Update.Reason)
	case bridge.EventSignInTeam:
		s.handleSignInTeam(ev.SignInTeam)
	case bridge.EventDisplayTeam:
		if err := s.sel.MakePrimary(ev.DisplayTeam.TeamID); err != nil {
			s.log.Warnw("displayTeam for unknown team", "team_id", ev.DisplayTeam.TeamID)
		}
		s.publish()
	case bridge.EventSetImage:
		s.handleSetImage(ev.SurfaceID, ev.SetImage)
	case bridge.EventSetBadgeCount:
		s.handleSetBadgeCount(ev.SurfaceID, ev.SetBadgeCount)
	case bridge.EventSetConnectionStatus:
		s.handleSetConnectionStatus(ev.SurfaceID, ev.SetConnection)
	case bridge.EventInvalidateAuth:
		s.handleInvalidateAuth(ev.SurfaceID)
	case bridge.EventPreferenceChange:
		s.handlePreferenceChange(ev.PreferenceChange)
	case bridge.EventDownload:
		if _, err := s.dl.Start(ev.Download.URL, ev.Download.Filename); err != nil {
			s.log.Warnw("download rejected", "url", ev.Download.URL, "error", err)
		}
	case bridge.EventLoadFinished:
		if t := s.teamBySurface(ev.SurfaceID); t != nil && t.Webview != nil {
			t.Webview.HandleLoadFinished()
		}
	case bridge.EventAppReady:
		if t := s.teamBySurface(ev.SurfaceID); t != nil && t.Webview != nil {
			t.Webview.HandleAppReady()
		}
	case bridge.EventCrashed:
		if t := s.teamBySurface(ev.SurfaceID); t != nil && t.Webview != nil {
			t.Webview.HandleCrash(webview.CrashKind(ev.Crash.Kind))
		}
	case bridge.EventExecuteResult:
		s.handleExecuteResult(ev.SurfaceID, ev.ExecuteResult)
	case bridge.EventBrowserOnline:
		s.monitor.SetBrowserOnline(ev.BrowserOnline.Online)
	}
}

func (s *Shell) handleSurfaceConnected(surfaceID string) {
	teamID, ok := s.pendingSurfaces[surfaceID]
	if !ok {
		s.log.Debugw("unexpected surface connection", "surface", surfaceID)
		return
	}
	delete(s.pendingSurfaces, surfaceID)

	t, ok := s.reg.Get(teamID)
	if !ok || t.Webview == nil {
		return
	}
	url := t.TeamURL
	if t.IsSignin() {
		url = s.signinURL
	}
	t.Webview.Attach(url)

	if s.sel.PrimaryID() == teamID {
		t.Webview.Show()
		t.Webview.Focus()
	}
}

// applyTeamList runs one reconciliation and all of its follow-up side
// effects in order: disposals, surface creation, primary fixup,
// persistence, broadcast.
func (s *Shell) applyTeamList(incoming []models.TeamUpdate, reason models.UpdateReason) {
	s.storeTokens(incoming)

	res := s.rec.Reconcile(incoming, reason)

	for _, wv := range res.Disposed {
		wv.Dispose()
	}

	if res.RefreshTeamID != "" {
		s.requestTeamRefresh(res.RefreshTeamID)
		return
	}
	if !res.Merged {
		return
	}

	if reason == models.ReasonDidSignOut {
		s.clearRemovedTokens(incoming)
	}

	for _, t := range s.reg.All() {
		if t.Webview == nil {
			s.createSurfaceFor(t)
		}
	}

	s.sel.EnsureValid()
	if _, ok := s.sel.Primary(); !ok {
		if first := firstNonSignin(s.reg); first != nil {
			s.sel.MakePrimary(first.TeamID)
		} else if s.reg.Len() == 0 {
			s.window.ShowScreen(ScreenSignin)
		}
	}

	s.persistTeams()
	s.publish()
}

// createSurfaceFor asks the host for a widget and wires the context
// once the page side connects back.
func (s *Shell) createSurfaceFor(t *teams.Team) {
	surfaceID := uuid.New().String()
	s.pendingSurfaces[surfaceID] = t.TeamID

	t.Webview = webview.New(newPendingSurface(surfaceID, s.surfaces), s.wvOpts)

	url := t.TeamURL
	if t.IsSignin() {
		url = s.signinURL
	}
	s.window.CreateSurface(surfaceID, url)
}

func (s *Shell) handleSignInTeam(p *bridge.SignInTeamPayload) {
	if p != nil && p.URL != "" {
		s.signinURL = p.URL
	}

	if s.reg.Len() > 0 {
		// Additional sign-in runs inside the primary team's page.
		if prim, ok := s.sel.Primary(); ok && prim.Webview != nil {
			prim.Webview.Focus()
		}
		return
	}

	s.applyTeamList([]models.TeamUpdate{{
		TeamID: models.SigninTeamID,
		UserID: models.SigninTeamID,
	}}, models.ReasonUnknown)

	if t, ok := s.reg.Get(models.SigninTeamID); ok {
		s.sel.MakePrimary(t.TeamID)
	}
}

func (s *Shell) handleSetImage(surfaceID string, p *bridge.SetImagePayload) {
	t := s.teamBySurface(surfaceID)
	if t == nil {
		return
	}
	if !p.Icons.Empty() {
		t.Icons = p.Icons
	}
	if p.Initials != "" {
		t.Initials = p.Initials
	}
	s.persistTeams()
	s.notifyTeam(t, bridge.ChannelUpdateHeader)
	s.publish()
}

func (s *Shell) handleSetBadgeCount(surfaceID string, p *bridge.SetBadgeCountPayload) {
	t := s.teamBySurface(surfaceID)
	if t == nil {
		return
	}
	t.Badge.Unread = p.Unread
	t.Badge.UnreadHighlights = p.UnreadHighlights
	s.publish()
}

func (s *Shell) handleSetConnectionStatus(surfaceID string, p *bridge.SetConnectionStatusPayload) {
	t := s.teamBySurface(surfaceID)
	if t == nil {
		return
	}
	t.Badge.ConnectionStatus = p.Status
	s.publish()
}

func (s *Shell) handleInvalidateAuth(surfaceID string) {
	t := s.teamBySurface(surfaceID)
	if t == nil {
		return
	}
	s.log.Infow("auth invalidated", "team_id", t.TeamID)
	if err := keyring.DeleteToken(t.TeamID); err != nil {
		s.log.Warnw("token delete failed", "team_id", t.TeamID, "error", err)
	}
	if t.Webview != nil {
		t.Webview.Surface().LoadURL(t.TeamURL)
	}
}

func (s *Shell) handlePreferenceChange(p *bridge.PreferenceChangePayload) {
	s.log.Debugw("preference changed", "key", p.Key)
	s.broadcastPreference(p)
}

func (s *Shell) handleExecuteResult(surfaceID string, p *bridge.ExecuteResultPayload) {
	t := s.teamBySurface(surfaceID)
	if t == nil || t.Webview == nil {
		return
	}
	var execErr error
	if p.Error != "" {
		execErr = &remoteExecError{msg: p.Error}
	}
	t.Webview.HandleExecuteResult(p.ID, p.Result, execErr)
}

type remoteExecError struct{ msg string }

func (e *remoteExecError) Error() string { return e.msg }

// requestTeamRefresh asks a live page for a fresh team list. Runs off
// the loop; the result arrives as a normal update event.
func (s *Shell) requestTeamRefresh(teamID string) {
	t, ok := s.reg.Get(teamID)
	if !ok || t.Webview == nil {
		return
	}
	wv := t.Webview
	go func() {
		if _, err := wv.ExecuteRemoteCode(s.ctx, refreshTeamsScript); err != nil {
			s.log.Debugw("team refresh request failed", "team_id", teamID, "error", err)
		}
	}()
}

// storeTokens moves session credentials out of the update and into the
// OS keyring before the list reaches the reconciler.
func (s *Shell) storeTokens(incoming []models.TeamUpdate) {
	for i := range incoming {
		if incoming[i].Token == "" {
			continue
		}
		if err := keyring.SetToken(incoming[i].TeamID, incoming[i].Token); err != nil {
			s.log.Warnw("token store failed", "team_id", incoming[i].TeamID, "error", err)
		}
		incoming[i].Token = ""
	}
}

func (s *Shell) clearRemovedTokens(incoming []models.TeamUpdate) {
	keep := make(map[string]bool, len(incoming))
	for _, upd := range incoming {
		keep[upd.TeamID] = true
	}
	for id := range s.cache.Presets {
		if keep[id] {
			continue
		}
		if err := keyring.DeleteToken(id); err != nil {
			s.log.Warnw("token delete failed", "team_id", id, "error", err)
		}
	}
}

// --- Selector hooks ---

func (s *Shell) onTeamChanged(teamName string, wv *webview.Context) {
	s.window.SetTitle(teamName + " - Teamdock")
	s.notifyAll(bridge.ChannelTeamChanged)
}

func (s *Shell) onNoTeamShown() {
	s.window.SetTitle("Teamdock")
}

func (s *Shell) onPrimaryCrashed(teamID string, kind webview.CrashKind) {
	// Plugin crashes self-heal; everything else forces a full window
	// reload rather than a per-surface repair.
	if kind == webview.CrashPlugin {
		s.log.Warnw("plugin crash ignored", "team_id", teamID)
		return
	}
	s.log.Errorw("primary surface crashed, reloading window", "team_id", teamID, "kind", string(kind))
	s.window.Reload()
}

func (s *Shell) satisfyInitialLoad() {
	if s.initialLoadTimer != nil {
		s.initialLoadTimer.Stop()
		s.initialLoadTimer = nil
	}
}

func (s *Shell) initialLoadExpired() {
	if s.initialLoadTimer == nil {
		return
	}
	s.initialLoadTimer = nil
	if _, ok := s.sel.Primary(); !ok {
		s.log.Warnw("no team shown before the grace period, falling back to sign-in")
		s.window.ShowScreen(ScreenSignin)
	}
}

// focusSource adapts window focus events into the selector's port,
// re-entering the loop before touching shell state.
func (s *Shell) focusSource() teams.FocusSource {
	return focusSourceFunc(func(fn func()) func() {
		return s.window.OnFocus(func() {
			s.post(fn)
		})
	})
}

type focusSourceFunc func(fn func()) func()

func (f focusSourceFunc) OnFocus(fn func()) func() { return f(fn) }

// --- Network state ---

func (s *Shell) onNetTransition(state netstate.State) {
	s.post(func() {
		switch state {
		case netstate.StateOnline:
			s.log.Infow("back online")
			if first := firstNonSignin(s.reg); first != nil {
				s.sel.MakePrimary(first.TeamID)
			}
		case netstate.StateOffline:
			s.sel.ClearPrimary()
			s.window.ShowScreen(ScreenOffline)
		case netstate.StateServiceDown:
			s.sel.ClearPrimary()
			s.window.ShowScreen(ScreenServiceDown)
		}
		s.publish()
	})
}

// --- Watcher ---

func (s *Shell) startWatcher() {
	w, err := watcher.New()
	if err != nil {
		s.log.Warnw("file watcher unavailable", "error", err)
		return
	}
	if err := w.Start(); err != nil {
		s.log.Warnw("file watcher failed to start", "error", err)
		return
	}

	go func() {
		defer w.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case ev, ok := <-w.Events():
				if !ok {
					return
				}
				switch ev.Type {
				case watcher.EventSettingsChanged:
					s.post(s.reloadSettings)
				case watcher.EventTeamsFileChanged:
					s.post(s.reloadTeamCache)
				}
			}
		}
	}()
}

// reloadSettings picks up external edits to settings.yaml and fans the
// change out to every live page.
func (s *Shell) reloadSettings() {
	settings, err := config.LoadSettings()
	if err != nil {
		s.log.Warnw("settings reload failed", "error", err)
		return
	}
	themeChanged := settings.Appearance.Theme != s.settings.Appearance.Theme
	s.settings = settings
	s.log.Infow("settings reloaded from disk")
	if themeChanged {
		s.notifyAll(bridge.ChannelUpdateTheme)
	}
	s.broadcastPreference(&bridge.PreferenceChangePayload{Key: "settings"})
}

// reloadTeamCache picks up external edits to teams.yaml. The live
// registry stays authoritative, so the reload only applies while no
// team is signed in; that covers cache imports before first sign-in.
func (s *Shell) reloadTeamCache() {
	if s.reg.Len() > 0 {
		return
	}
	cache, err := config.LoadTeamCache()
	if err != nil {
		s.log.Warnw("team cache reload failed", "error", err)
		return
	}
	s.cache = cache
	s.log.Infow("team cache reloaded from disk", "teams", len(cache.Teams))
	s.restoreCachedTeams()
}

// --- Downloads ---

func (s *Shell) onDownloadsChanged() {
	progress, active := s.dl.Progress()
	if !active {
		s.window.SetTaskbarProgress(-1)
		return
	}
	s.window.SetTaskbarProgress(progress)
}

// Downloads exposes download snapshots for the tray and CLI.
func (s *Shell) Downloads() []downloads.Download { return s.dl.All() }

// --- Derived state and broadcast ---

func (s *Shell) teamBySurface(surfaceID string) *teams.Team {
	for _, t := range s.reg.All() {
		if t.Webview != nil && t.Webview.Surface().ID() == surfaceID {
			return t
		}
	}
	return nil
}

func firstNonSignin(reg *teams.Registry) *teams.Team {
	for _, t := range reg.All() {
		if !t.IsSignin() {
			return t
		}
	}
	return nil
}

// persistTeams schedules a debounced write of the team list and the
// presentation cache.
func (s *Shell) persistTeams() {
	s.cache.Teams = s.reg.Records()
	for _, t := range s.reg.All() {
		if t.IsSignin() {
			continue
		}
		s.cache.Presets[t.TeamID] = models.TeamPreset{
			Theme:    t.Theme,
			Icons:    t.Icons,
			Initials: t.Initials,
		}
	}

	snapshot := *s.cache
	s.cacheW.Put(&snapshot)
}

// publish recomputes derived badge state and pushes it to the tray, the
// window, and observers.
func (s *Shell) publish() {
	all := s.reg.All()
	badge := teams.AggregateBadges(all)

	infos := make([]tray.TeamInfo, 0, len(all))
	statuses := make([]bridge.TeamStatus, 0, len(all))
	primaryID := s.sel.PrimaryID()
	for _, t := range all {
		if t.IsSignin() {
			continue
		}
		infos = append(infos, tray.TeamInfo{
			TeamID:           t.TeamID,
			TeamName:         t.TeamName,
			Unread:           t.Badge.Unread,
			UnreadHighlights: t.Badge.UnreadHighlights,
		})
		statuses = append(statuses, bridge.TeamStatus{
			TeamID:           t.TeamID,
			TeamName:         t.TeamName,
			Unread:           t.Badge.Unread,
			UnreadHighlights: t.Badge.UnreadHighlights,
			ConnectionStatus: t.Badge.ConnectionStatus,
			Primary:          t.TeamID == primaryID,
			Live:             t.Webview != nil,
		})
	}

	tray.UpdateBadge(badge, len(infos))
	tray.UpdateTeams(infos)
	s.notifyAll(bridge.ChannelUpdateMenu)

	if s.sink != nil {
		var updateVersion string
		s.updates.mu.RLock()
		if s.updates.Available {
			updateVersion = s.updates.LatestVersion
		}
		s.updates.mu.RUnlock()

		s.sink.PublishSnapshot(bridge.Snapshot{
			Teams:            statuses,
			PrimaryTeamID:    primaryID,
			Unread:           badge.Unread,
			UnreadHighlights: badge.UnreadHighlights,
			ConnectionStatus: badge.ConnectionStatus,
			NetState:         string(s.monitor.State()),
			UpdateVersion:    updateVersion,
		})
	}
}

// notifyAll posts a one-way notification to every live page.
func (s *Shell) notifyAll(channel string) {
	for _, t := range s.reg.All() {
		s.notifyTeam(t, channel)
	}
}

func (s *Shell) notifyTeam(t *teams.Team, channel string) {
	if t.Webview == nil {
		return
	}
	payload := bridge.TeamChangedPayload{TeamID: s.sel.PrimaryID()}
	if prim, ok := s.sel.Primary(); ok {
		payload.TeamName = prim.TeamName
	}
	if err := t.Webview.Notify(channel, payload); err != nil {
		s.log.Debugw("notification dropped", "channel", channel, "team_id", t.TeamID)
	}
}

func (s *Shell) broadcastPreference(p *bridge.PreferenceChangePayload) {
	for _, t := range s.reg.All() {
		if t.Webview == nil {
			continue
		}
		if err := t.Webview.Notify(bridge.EventPreferenceChange, p); err != nil {
			s.log.Debugw("preference broadcast dropped", "team_id", t.TeamID)
		}
	}
}

// --- Tray port (called from the tray goroutine) ---

// Teams implements tray.ShellState.
func (s *Shell) Teams() []tray.TeamInfo {
	out := make(chan []tray.TeamInfo, 1)
	s.post(func() {
		all := s.reg.All()
		infos := make([]tray.TeamInfo, 0, len(all))
		for _, t := range all {
			if t.IsSignin() {
				continue
			}
			infos = append(infos, tray.TeamInfo{
				TeamID:           t.TeamID,
				TeamName:         t.TeamName,
				Unread:           t.Badge.Unread,
				UnreadHighlights: t.Badge.UnreadHighlights,
			})
		}
		out <- infos
	})
	select {
	case infos := <-out:
		return infos
	case <-s.ctx.Done():
		return nil
	}
}

// Badge implements tray.ShellState.
func (s *Shell) Badge() teams.GlobalBadge {
	out := make(chan teams.GlobalBadge, 1)
	s.post(func() { out <- teams.AggregateBadges(s.reg.All()) })
	select {
	case b := <-out:
		return b
	case <-s.ctx.Done():
		return teams.GlobalBadge{}
	}
}

// ShowWindow implements tray.ShellState.
func (s *Shell) ShowWindow() { s.post(s.window.Show) }

// DisplayTeam implements tray.ShellState.
func (s *Shell) DisplayTeam(teamID string) {
	s.post(func() {
		if err := s.sel.MakePrimary(teamID); err == nil {
			s.window.Show()
			s.publish()
		}
	})
}

// RequestShutdown implements tray.ShellState.
func (s *Shell) RequestShutdown() { s.cancel() }

// pendingSurface defers transport resolution until the page side has
// connected. Calls before that are dropped; the shell re-issues the
// load once the connection event arrives.
type pendingSurface struct {
	id     string
	source SurfaceSource
}

func newPendingSurface(id string, source SurfaceSource) *pendingSurface {
	return &pendingSurface{id: id, source: source}
}

func (p *pendingSurface) live() (webview.Surface, bool) {
	if p.source == nil {
		return nil, false
	}
	return p.source.Surface(p.id)
}

func (p *pendingSurface) ID() string { return p.id }

func (p *pendingSurface) LoadURL(url string) {
	if s, ok := p.live(); ok {
		s.LoadURL(url)
	}
}

func (p *pendingSurface) Show() {
	if s, ok := p.live(); ok {
		s.Show()
	}
}

func (p *pendingSurface) Hide() {
	if s, ok := p.live(); ok {
		s.Hide()
	}
}

func (p *pendingSurface) Focus() {
	if s, ok := p.live(); ok {
		s.Focus()
	}
}

func (p *pendingSurface) Post(channel string, payload json.RawMessage) error {
	s, ok := p.live()
	if !ok {
		return errSurfaceNotConnected
	}
	return s.Post(channel, payload)
}

func (p *pendingSurface) Dispose() {
	if s, ok := p.live(); ok {
		s.Dispose()
	}
}

var errSurfaceNotConnected = &remoteExecError{msg: "surface not connected"}
