// Package bridge is the local websocket link between the shell daemon
// and its embedded page surfaces, plus read-only observer connections
// for the dashboard.
package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/teamdock-io/teamdock/internal/models"
)

// Envelope is the single frame shape on the wire. Event names select
// the payload type; SurfaceID identifies the originating surface on
// page-to-core frames and is filled in by the session, never trusted
// from the page.
type Envelope struct {
	Event     string          `json:"event"`
	SurfaceID string          `json:"surface_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Page-to-core event names.
const (
	EventUpdate              = "update"
	EventSignInTeam          = "signInTeam"
	EventDisplayTeam         = "displayTeam"
	EventSetImage            = "setImage"
	EventSetBadgeCount       = "setBadgeCount"
	EventInvalidateAuth      = "invalidateAuth"
	EventSetConnectionStatus = "setConnectionStatus"
	EventPreferenceChange    = "preferenceChange"
	EventDownload            = "download"
	EventLoadFinished        = "loadFinished"
	EventAppReady            = "appReady"
	EventCrashed             = "crashed"
	EventExecuteResult       = "executeResult"
	EventBrowserOnline       = "browserOnline"
)

// Core-to-page notification channels.
const (
	ChannelTeamChanged  = "teams:team-changed"
	ChannelUpdateHeader = "teams:update-header"
	ChannelUpdateMenu   = "teams:update-menu"
	ChannelUpdateTheme  = "teams:update-theme"
)

// Core-to-page surface control events. The page side of the bridge owns
// the real widget; these are fire-and-forget.
const (
	ControlLoadURL = "surface:load-url"
	ControlShow    = "surface:show"
	ControlHide    = "surface:hide"
	ControlFocus   = "surface:focus"
	ControlDispose = "surface:dispose"
)

// UpdatePayload carries an authoritative team list.
type UpdatePayload struct {
	Reason models.UpdateReason `json:"reason,omitempty"`
	Teams  []models.TeamUpdate `json:"teams"`
}

// SignInTeamPayload asks the shell to open a sign-in surface.
type SignInTeamPayload struct {
	URL string `json:"url"`
}

// DisplayTeamPayload asks the shell to make a team primary.
type DisplayTeamPayload struct {
	TeamID string `json:"team_id"`
}

// SetImagePayload updates the reporting team's cached presentation.
type SetImagePayload struct {
	Icons    models.TeamIcons `json:"icons"`
	Initials string           `json:"initials,omitempty"`
}

// SetBadgeCountPayload updates the reporting team's unread counters.
type SetBadgeCountPayload struct {
	Unread           int `json:"unread"`
	UnreadHighlights int `json:"unread_highlights"`
}

// SetConnectionStatusPayload updates the reporting team's connection state.
type SetConnectionStatusPayload struct {
	Status models.ConnectionStatus `json:"status"`
}

// PreferenceChangePayload carries one changed preference key.
type PreferenceChangePayload struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value,omitempty"`
}

// DownloadPayload starts a download on behalf of the reporting page.
type DownloadPayload struct {
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

// CrashPayload reports a native surface crash.
type CrashPayload struct {
	Kind string `json:"kind"`
}

// ExecuteResultPayload resolves a remote code execution request.
type ExecuteResultPayload struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// BrowserOnlinePayload is a raw online/offline flag sample.
type BrowserOnlinePayload struct {
	Online bool `json:"online"`
}

// TeamChangedPayload is the teams:team-changed notification body.
type TeamChangedPayload struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
}

// Event is one decoded page-to-core message, typed by Name. Exactly one
// payload field is non-zero, matching Name.
type Event struct {
	SurfaceID string
	Name      string

	Update           *UpdatePayload
	SignInTeam       *SignInTeamPayload
	DisplayTeam      *DisplayTeamPayload
	SetImage         *SetImagePayload
	SetBadgeCount    *SetBadgeCountPayload
	SetConnection    *SetConnectionStatusPayload
	PreferenceChange *PreferenceChangePayload
	Download         *DownloadPayload
	Crash            *CrashPayload
	ExecuteResult    *ExecuteResultPayload
	BrowserOnline    *BrowserOnlinePayload
}

// decodeEvent parses one inbound envelope into a typed Event. Unknown
// event names and malformed payloads return an error; the session logs
// and drops them without closing the connection.
func decodeEvent(surfaceID string, env Envelope) (Event, error) {
	ev := Event{SurfaceID: surfaceID, Name: env.Event}

	unmarshal := func(v interface{}) error {
		if len(env.Payload) == 0 {
			return nil
		}
		return json.Unmarshal(env.Payload, v)
	}

	var err error
	switch env.Event {
	case EventUpdate:
		p := &UpdatePayload{}
		if err = unmarshal(p); err == nil {
			p.Teams = sanitizeTeamList(p.Teams)
			ev.Update = p
		}
	case EventSignInTeam:
		p := &SignInTeamPayload{}
		if err = unmarshal(p); err == nil {
			ev.SignInTeam = p
		}
	case EventDisplayTeam:
		p := &DisplayTeamPayload{}
		if err = unmarshal(p); err == nil {
			if p.TeamID == "" {
				err = fmt.Errorf("displayTeam: missing team_id")
			} else {
				ev.DisplayTeam = p
			}
		}
	case EventSetImage:
		p := &SetImagePayload{}
		if err = unmarshal(p); err == nil {
			ev.SetImage = p
		}
	case EventSetBadgeCount:
		p := &SetBadgeCountPayload{}
		if err = unmarshal(p); err == nil {
			ev.SetBadgeCount = p
		}
	case EventInvalidateAuth:
		// No payload.
	case EventSetConnectionStatus:
		p := &SetConnectionStatusPayload{}
		if err = unmarshal(p); err == nil {
			ev.SetConnection = p
		}
	case EventPreferenceChange:
		p := &PreferenceChangePayload{}
		if err = unmarshal(p); err == nil {
			ev.PreferenceChange = p
		}
	case EventDownload:
		p := &DownloadPayload{}
		if err = unmarshal(p); err == nil {
			if p.URL == "" {
				err = fmt.Errorf("download: missing url")
			} else {
				ev.Download = p
			}
		}
	case EventLoadFinished, EventAppReady:
		// No payload.
	case EventCrashed:
		p := &CrashPayload{}
		if err = unmarshal(p); err == nil {
			ev.Crash = p
		}
	case EventExecuteResult:
		p := &ExecuteResultPayload{}
		if err = unmarshal(p); err == nil {
			if p.ID == "" {
				err = fmt.Errorf("executeResult: missing correlation id")
			} else {
				ev.ExecuteResult = p
			}
		}
	case EventBrowserOnline:
		p := &BrowserOnlinePayload{}
		if err = unmarshal(p); err == nil {
			ev.BrowserOnline = p
		}
	default:
		err = fmt.Errorf("unknown event %q", env.Event)
	}

	if err != nil {
		return Event{}, err
	}
	return ev, nil
}

// sanitizeTeamList enforces the wire boundary's input contract: entries
// without a team_id are dropped, duplicated ids keep their first
// occurrence.
func sanitizeTeamList(teams []models.TeamUpdate) []models.TeamUpdate {
	out := teams[:0:0]
	seen := make(map[string]bool, len(teams))
	for _, t := range teams {
		if t.TeamID == "" || seen[t.TeamID] {
			continue
		}
		seen[t.TeamID] = true
		out = append(out, t)
	}
	return out
}

// TeamStatus is one team's row in an observer snapshot.
type TeamStatus struct {
	TeamID           string                  `json:"team_id"`
	TeamName         string                  `json:"team_name"`
	Unread           int                     `json:"unread"`
	UnreadHighlights int                     `json:"unread_highlights"`
	ConnectionStatus models.ConnectionStatus `json:"connection_status"`
	Primary          bool                    `json:"primary"`
	Live             bool                    `json:"live"`
}

// Snapshot is the read-only state pushed to observer connections on
// every shell state change.
type Snapshot struct {
	Teams            []TeamStatus            `json:"teams"`
	PrimaryTeamID    string                  `json:"primary_team_id,omitempty"`
	Unread           int                     `json:"unread"`
	UnreadHighlights int                     `json:"unread_highlights"`
	ConnectionStatus models.ConnectionStatus `json:"connection_status"`
	NetState         string                  `json:"net_state"`

	// UpdateVersion is set when a newer release is known.
	UpdateVersion string `json:"update_version,omitempty"`
}

// EventSnapshot is the core-to-observer frame name.
const EventSnapshot = "snapshot"

// Synthetic event names the server injects into the shell's event
// channel. Never accepted from the wire.
const (
	EventSurfaceConnected = "surfaceConnected"
	EventSurfaceClosed    = "surfaceClosed"
)
