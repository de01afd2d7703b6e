package config

import (
	"sync"
	"time"

	"github.com/teamdock-io/teamdock/internal/logger"
	"github.com/teamdock-io/teamdock/internal/models"
)

// saveDebounce coalesces bursts of team cache mutations into one write.
const saveDebounce = 500 * time.Millisecond

// LoadTeamCache loads the team cache from ~/.teamdock/teams.yaml.
// If the file doesn't exist, returns an empty cache.
func LoadTeamCache() (*models.TeamCache, error) {
	path, err := GlobalTeamsFile()
	if err != nil {
		return nil, err
	}
	cache, err := LoadYAMLOrDefault(path, models.NewTeamCache)
	if err != nil {
		return nil, err
	}
	if cache.Presets == nil {
		cache.Presets = map[string]models.TeamPreset{}
	}
	return cache, nil
}

// SaveTeamCache writes the team cache to ~/.teamdock/teams.yaml.
func SaveTeamCache(cache *models.TeamCache) error {
	path, err := GlobalTeamsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, cache)
}

// TeamCacheWriter persists team cache snapshots with debouncing. Write
// failures are logged and swallowed; the in-memory state stays
// authoritative for the rest of the session.
type TeamCacheWriter struct {
	log *logger.Logger

	mu      sync.Mutex
	pending *models.TeamCache
	timer   *time.Timer
}

// NewTeamCacheWriter creates a debounced team cache writer.
func NewTeamCacheWriter() *TeamCacheWriter {
	return &TeamCacheWriter{log: logger.New("teamcache")}
}

// Put schedules a snapshot for persistence, replacing any pending one.
func (w *TeamCacheWriter) Put(cache *models.TeamCache) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = cache
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(saveDebounce, w.flush)
}

// Flush writes any pending snapshot immediately. Called on shutdown.
func (w *TeamCacheWriter) Flush() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	w.flush()
}

func (w *TeamCacheWriter) flush() {
	w.mu.Lock()
	cache := w.pending
	w.pending = nil
	w.mu.Unlock()

	if cache == nil {
		return
	}
	if err := SaveTeamCache(cache); err != nil {
		w.log.Warnw("team cache write failed", "error", err)
	}
}
