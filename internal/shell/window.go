// Package shell runs the daemon's core: the single event loop that owns
// the team registry, reconciler, selector, badge state, network monitor,
// downloads, and persistence.
package shell

import "github.com/teamdock-io/teamdock/internal/webview"

// Screen names for the host's built-in screens, shown when no team
// content is presentable.
const (
	ScreenSignin      = "signin"
	ScreenOffline     = "offline"
	ScreenServiceDown = "service-down"
)

// HostWindow is the shell's port to the native window. Every call is
// fire and forget; the host owns rendering entirely.
type HostWindow interface {
	Show()
	Hide()
	SetTitle(title string)

	// ShowScreen displays one of the built-in screens instead of team
	// content.
	ShowScreen(name string)

	// SetTaskbarProgress sets aggregate progress in 0..1. A negative
	// value clears the indicator.
	SetTaskbarProgress(progress float64)

	// Reload tears the whole window down and boots it again. The crash
	// recovery path.
	Reload()

	// CreateSurface asks the host to create an embedded widget. The
	// widget's page side connects back to the bridge with the given
	// surface id.
	CreateSurface(surfaceID, url string)

	// OnFocus subscribes to window focus events.
	OnFocus(fn func()) (unsubscribe func())
}

// NopWindow is a HostWindow that does nothing. Used in tests and in
// foreground mode before a host binding is attached.
type NopWindow struct{}

func (NopWindow) Show()                        {}
func (NopWindow) Hide()                        {}
func (NopWindow) SetTitle(string)              {}
func (NopWindow) ShowScreen(string)            {}
func (NopWindow) SetTaskbarProgress(float64)   {}
func (NopWindow) Reload()                      {}
func (NopWindow) CreateSurface(string, string) {}
func (NopWindow) OnFocus(func()) func()        { return func() {} }

// SurfaceSource resolves a connected surface id to its live transport.
// The bridge hub implements this.
type SurfaceSource interface {
	Surface(surfaceID string) (webview.Surface, bool)
}
