// Package webview wraps one embedded browsing surface per team and owns
// its readiness signals, crash detection, and the remote-code-execution
// channel into the embedded page.
package webview

import "encoding/json"

// CrashKind identifies the source of a surface crash.
type CrashKind string

// Crash kinds aggregated into the crash signal.
const (
	CrashRenderer    CrashKind = "Renderer"
	CrashGPU         CrashKind = "GPU"
	CrashPlugin      CrashKind = "Plugin"
	CrashLoadTimeout CrashKind = "Load timeout"
)

// Surface is the host-provided embedded browsing surface. The real
// binding is a bridge session; tests use a fake.
type Surface interface {
	// ID identifies the surface to the host and the bridge.
	ID() string

	// LoadURL navigates the surface.
	LoadURL(url string)

	Show()
	Hide()
	Focus()

	// Post sends a one-way named message into the embedded page.
	Post(channel string, payload json.RawMessage) error

	// Dispose removes the surface from its host container.
	Dispose()
}
