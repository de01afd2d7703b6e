// Package downloads tracks file downloads started by embedded pages and
// reports aggregate progress for the host taskbar.
package downloads

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/teamdock-io/teamdock/internal/logger"
)

// State of one download.
type State string

// Download states.
const (
	StateActive    State = "active"
	StateDone      State = "done"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Download is a point-in-time snapshot of one transfer.
type Download struct {
	ID       string
	URL      string
	Path     string
	Received int64
	Total    int64 // -1 when the server sends no length
	State    State
	Err      error
}

type transfer struct {
	snap   Download
	cancel context.CancelFunc
}

// Manager runs downloads into a target directory. Progress fires on a
// caller-supplied hook; the aggregate is meant for taskbar progress.
type Manager struct {
	dir      string
	client   *http.Client
	onChange func()
	log      *logger.Logger

	mu        sync.Mutex
	transfers map[string]*transfer
}

// NewManager creates a manager writing into dir. onChange fires after
// every state or progress change; nil is allowed.
func NewManager(dir string, onChange func()) *Manager {
	return &Manager{
		dir:       dir,
		client:    http.DefaultClient,
		onChange:  onChange,
		log:       logger.New("downloads"),
		transfers: map[string]*transfer{},
	}
}

// Start begins a download and returns its id. The transfer runs on its
// own goroutine; failures end up in the snapshot, not here.
func (m *Manager) Start(url, filename string) (string, error) {
	if filename == "" {
		filename = filepath.Base(url)
	}
	filename = sanitizeFilename(filename)
	if filename == "" {
		return "", fmt.Errorf("download: cannot derive a filename from %q", url)
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("download dir: %w", err)
	}

	id := uuid.New().String()
	ctx, cancel := context.WithCancel(context.Background())
	tr := &transfer{
		snap: Download{
			ID:    id,
			URL:   url,
			Path:  filepath.Join(m.dir, filename),
			Total: -1,
			State: StateActive,
		},
		cancel: cancel,
	}

	m.mu.Lock()
	m.transfers[id] = tr
	m.mu.Unlock()
	m.notify()

	go m.run(ctx, id, tr.snap.Path, url)
	return id, nil
}

// Cancel aborts an active download. Unknown or finished ids are no-ops.
func (m *Manager) Cancel(id string) {
	m.mu.Lock()
	tr, ok := m.transfers[id]
	if ok && tr.snap.State == StateActive {
		tr.cancel()
	}
	m.mu.Unlock()
}

// Get returns a download snapshot.
func (m *Manager) Get(id string) (Download, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.transfers[id]
	if !ok {
		return Download{}, false
	}
	return tr.snap, true
}

// All returns snapshots of every known download.
func (m *Manager) All() []Download {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Download, 0, len(m.transfers))
	for _, tr := range m.transfers {
		out = append(out, tr.snap)
	}
	return out
}

// Progress returns the aggregate progress of active downloads in 0..1,
// and whether any download is active. With no length information the
// aggregate is 0 until completion.
func (m *Manager) Progress() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var received, total int64
	active := false
	for _, tr := range m.transfers {
		if tr.snap.State != StateActive {
			continue
		}
		active = true
		if tr.snap.Total > 0 {
			received += tr.snap.Received
			total += tr.snap.Total
		}
	}
	if !active || total == 0 {
		return 0, active
	}
	return float64(received) / float64(total), true
}

func (m *Manager) run(ctx context.Context, id, path, url string) {
	err := m.fetch(ctx, id, path, url)

	m.mu.Lock()
	tr := m.transfers[id]
	switch {
	case err == nil:
		tr.snap.State = StateDone
	case ctx.Err() != nil:
		tr.snap.State = StateCancelled
		os.Remove(path)
	default:
		tr.snap.State = StateFailed
		tr.snap.Err = err
		os.Remove(path)
	}
	m.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		m.log.Warnw("download failed", "url", url, "error", err)
	}
	m.notify()
}

func (m *Manager) fetch(ctx context.Context, id, path, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	m.mu.Lock()
	m.transfers[id].snap.Total = resp.ContentLength
	m.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				return err
			}
			m.mu.Lock()
			m.transfers[id].snap.Received += int64(n)
			m.mu.Unlock()
			m.notify()
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

func (m *Manager) notify() {
	if m.onChange != nil {
		m.onChange()
	}
}

// sanitizeFilename strips path separators so a page cannot escape the
// download directory.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSpace(name)
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}
