// Package buildinfo carries the release stamp linked into both binaries
// at build time.
package buildinfo

// Overridden by the release pipeline via -ldflags -X.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// UserAgent identifies this build to release and health endpoints.
func UserAgent() string {
	return "teamdock/" + Version
}
