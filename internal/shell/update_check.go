package shell

import (
	"sync"
	"time"

	"github.com/teamdock-io/teamdock/internal/config"
	"github.com/teamdock-io/teamdock/internal/logger"
	"github.com/teamdock-io/teamdock/internal/models"
	"github.com/teamdock-io/teamdock/internal/updater"
)

// UpdateState holds the result of the latest update check.
type UpdateState struct {
	mu            sync.RWMutex
	Available     bool
	LatestVersion string
	ReleaseURL    string
	Notes         string
	LastChecked   time.Time
}

// startUpdateCheck runs an update check in a background goroutine based on settings.
func (s *Shell) startUpdateCheck() {
	go func() {
		log := logger.New("update")

		settings, err := config.LoadSettings()
		if err != nil {
			log.Warnw("failed to load settings", "error", err)
			return
		}

		if !settings.Updates.CheckOnStartup {
			return
		}

		// Check frequency
		if settings.Updates.LastChecked != nil {
			since := time.Since(*settings.Updates.LastChecked)
			switch settings.Updates.CheckFrequency {
			case "daily":
				if since < 24*time.Hour {
					return
				}
			case "weekly":
				if since < 7*24*time.Hour {
					return
				}
				// "every_launch": always check
			}
		}

		s.runUpdateCheck(log, settings)
	}()
}

// CheckForUpdates implements tray.ShellState: an unconditional check,
// skipping the cadence gate.
func (s *Shell) CheckForUpdates() {
	go func() {
		log := logger.New("update")
		settings, err := config.LoadSettings()
		if err != nil {
			log.Warnw("failed to load settings", "error", err)
			return
		}
		s.runUpdateCheck(log, settings)
	}()
}

func (s *Shell) runUpdateCheck(log *logger.Logger, settings *models.Settings) {
	client := &updater.Client{}
	check, err := client.Check(s.ctx)
	if err != nil {
		log.Warnw("check failed", "error", err)
		return
	}

	// Update last_checked timestamp in settings
	now := time.Now()
	settings.Updates.LastChecked = &now
	if saveErr := config.SaveSettings(settings); saveErr != nil {
		log.Warnw("failed to save last_checked", "error", saveErr)
	}

	s.updates.mu.Lock()
	s.updates.LastChecked = now
	if check.Newer {
		s.updates.Available = true
		s.updates.LatestVersion = check.Latest
		s.updates.ReleaseURL = check.PageURL
		s.updates.Notes = check.Notes
		log.Infow("update available", "current", check.Current, "latest", check.Latest)
	} else {
		s.updates.Available = false
		log.Infow("up to date", "version", check.Current)
	}
	s.updates.mu.Unlock()

	// Fan the new state out to the tray and observers
	s.post(s.publish)
}

// UpdateStatus returns the current update state.
func (s *Shell) UpdateStatus() (available bool, version, url string) {
	s.updates.mu.RLock()
	defer s.updates.mu.RUnlock()
	return s.updates.Available, s.updates.LatestVersion, s.updates.ReleaseURL
}
