package teams

import (
	"encoding/json"
	"sync"

	"github.com/teamdock-io/teamdock/internal/models"
	"github.com/teamdock-io/teamdock/internal/webview"
)

// fakeSurface records calls instead of driving a real embedded page.
type fakeSurface struct {
	mu       sync.Mutex
	id       string
	loaded   []string
	shown    int
	hidden   int
	focused  int
	disposed int
	posts    []string
}

func newFakeSurface(id string) *fakeSurface { return &fakeSurface{id: id} }

func (f *fakeSurface) ID() string { return f.id }

func (f *fakeSurface) LoadURL(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = append(f.loaded, url)
}

func (f *fakeSurface) Show() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown++
}

func (f *fakeSurface) Hide() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hidden++
}

func (f *fakeSurface) Focus() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focused++
}

func (f *fakeSurface) Post(channel string, payload json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, channel)
	return nil
}

func (f *fakeSurface) Dispose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disposed++
}

func (f *fakeSurface) counts() (shown, hidden, focused, disposed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shown, f.hidden, f.focused, f.disposed
}

// fakeFocus is a manually triggered focus source.
type fakeFocus struct {
	subs map[int]func()
	next int
}

func newFakeFocus() *fakeFocus { return &fakeFocus{subs: map[int]func(){}} }

func (f *fakeFocus) OnFocus(fn func()) func() {
	id := f.next
	f.next++
	f.subs[id] = fn
	return func() { delete(f.subs, id) }
}

func (f *fakeFocus) fire() {
	for _, fn := range f.subs {
		fn()
	}
}

// fakePresets is an in-memory preset store.
type fakePresets map[string]models.TeamPreset

func (p fakePresets) Preset(teamID string) (models.TeamPreset, bool) {
	preset, ok := p[teamID]
	return preset, ok
}

func update(id, name string) models.TeamUpdate {
	return models.TeamUpdate{
		TeamID:   id,
		TeamName: name,
		TeamURL:  "https://" + id + ".example.com",
		UserID:   "U-" + id,
	}
}

func signinUpdate() models.TeamUpdate {
	return models.TeamUpdate{
		TeamID: models.SigninTeamID,
		UserID: models.SigninTeamID,
	}
}

func attachSurface(t *Team) *fakeSurface {
	s := newFakeSurface("surface-" + t.TeamID)
	t.Webview = webview.New(s, webview.Options{})
	return s
}
