// Package models contains shared data structures used across the application.
package models

// SigninTeamID is the sentinel team_id the embedded sign-in page reports
// before a real team list exists. It never identifies a real team.
const SigninTeamID = "__signin__"

// ConnectionStatus is a team's connection state as reported by its
// embedded page.
type ConnectionStatus string

// Connection states, ordered from best to worst.
const (
	ConnectionOnline     ConnectionStatus = "online"
	ConnectionConnecting ConnectionStatus = "connecting"
	ConnectionOffline    ConnectionStatus = "offline"
)

// Rank returns the badness ordering: online(0) < connecting(1) < offline(2).
// Unknown values rank as offline.
func (c ConnectionStatus) Rank() int {
	switch c {
	case ConnectionOnline:
		return 0
	case ConnectionConnecting:
		return 1
	default:
		return 2
	}
}

// Worse returns the worse of the two statuses.
func (c ConnectionStatus) Worse(other ConnectionStatus) ConnectionStatus {
	if other.Rank() > c.Rank() {
		return other
	}
	return c
}

// BadgeInfo holds a single team's unread counters and connection state.
type BadgeInfo struct {
	Unread           int              `json:"unread" yaml:"unread"`
	UnreadHighlights int              `json:"unread_highlights" yaml:"unread_highlights"`
	ConnectionStatus ConnectionStatus `json:"connection_status" yaml:"connection_status"`
}

// DefaultBadge is the badge state assumed until the embedded page reports one.
func DefaultBadge() BadgeInfo {
	return BadgeInfo{ConnectionStatus: ConnectionConnecting}
}

// TeamIcons holds the cached icon URLs for a team.
type TeamIcons struct {
	Small string `json:"image_44,omitempty" yaml:"small,omitempty"`
	Large string `json:"image_132,omitempty" yaml:"large,omitempty"`
}

// Empty reports whether no icon URL is set.
func (i TeamIcons) Empty() bool {
	return i.Small == "" && i.Large == ""
}

// TeamUpdate is one entry of an authoritative team list supplied by an
// embedded page. The bridge validates entries (team_id present, duplicates
// dropped) before they reach the reconciler.
type TeamUpdate struct {
	TeamID   string    `json:"team_id"`
	TeamName string    `json:"team_name"`
	TeamURL  string    `json:"team_url"`
	UserID   string    `json:"id"`
	Theme    string    `json:"theme,omitempty"`
	Icons    TeamIcons `json:"icons,omitempty"`
	Initials string    `json:"initials,omitempty"`

	// Token is the session credential reported alongside a sign-in. It
	// is moved into the OS keyring at the shell boundary and never
	// reaches the registry or the on-disk cache.
	Token string `json:"token,omitempty"`
}

// IsSignin reports whether this entry is the sign-in placeholder. The
// sentinel string stays an implementation detail of the wire protocol;
// consumers branch on this instead.
func (u TeamUpdate) IsSignin() bool {
	return u.UserID == SigninTeamID || u.TeamID == SigninTeamID
}

// UpdateReason describes why the embedded page emitted a team list update.
type UpdateReason string

// Update reasons carried on the wire.
const (
	ReasonUnknown    UpdateReason = ""
	ReasonDidSignIn  UpdateReason = "didSignIn"
	ReasonDidSignOut UpdateReason = "didSignOut"
)

// TeamRecord is the persisted form of a team: everything except the live
// webview handle. Corresponds to one entry of ~/.teamdock/teams.yaml.
type TeamRecord struct {
	TeamID   string    `yaml:"team_id"`
	TeamName string    `yaml:"team_name"`
	TeamURL  string    `yaml:"team_url"`
	UserID   string    `yaml:"user_id"`
	Theme    string    `yaml:"theme,omitempty"`
	Icons    TeamIcons `yaml:"icons,omitempty"`
	Initials string    `yaml:"initials,omitempty"`
}

// TeamCache is the on-disk team list plus per-team presentation cache,
// keyed by team_id. Corresponds to ~/.teamdock/teams.yaml.
type TeamCache struct {
	Version int                   `yaml:"version"`
	Teams   []TeamRecord          `yaml:"teams"`
	Presets map[string]TeamPreset `yaml:"presets,omitempty"`
}

// TeamPreset is cached presentation data that survives process restarts.
type TeamPreset struct {
	Theme    string    `yaml:"theme,omitempty"`
	Icons    TeamIcons `yaml:"icons,omitempty"`
	Initials string    `yaml:"initials,omitempty"`
}

// NewTeamCache creates an empty team cache.
func NewTeamCache() *TeamCache {
	return &TeamCache{
		Version: 1,
		Teams:   []TeamRecord{},
		Presets: map[string]TeamPreset{},
	}
}
