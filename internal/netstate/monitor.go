// Package netstate derives the shell's presentation state from two
// unreliable inputs: the host browser's online/offline flag and an
// active health probe against the remote service.
package netstate

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/teamdock-io/teamdock/internal/buildinfo"
	"github.com/teamdock-io/teamdock/internal/logger"
)

// State is the derived presentation state.
type State string

// Presentation states. ServiceDown is the degraded case: the network is
// up but the remote service's health probe fails.
const (
	StateOnline      State = "online"
	StateOffline     State = "offline"
	StateServiceDown State = "service_down"
)

// Default timing policy. Overridable through Options for tests.
const (
	// DefaultDebounce coalesces raw samples; flapping inside the window
	// collapses to the last stable value.
	DefaultDebounce = 600 * time.Millisecond

	// DefaultProbeInterval is the health probe cadence. Retries are
	// unbounded: the failure mode is "no network", which can persist
	// indefinitely.
	DefaultProbeInterval = 2500 * time.Millisecond
)

// DefaultProbeURL is the well-known endpoint the health probe hits.
const DefaultProbeURL = "https://status.teamdock.io/health"

// Prober checks whether the remote service is reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// HTTPProber probes a well-known HTTP endpoint. Any 2xx answer counts
// as healthy.
type HTTPProber struct {
	URL    string
	Client *http.Client
}

// NewHTTPProber creates a prober against the given endpoint, or the
// default one when url is empty.
func NewHTTPProber(url string) *HTTPProber {
	if url == "" {
		url = DefaultProbeURL
	}
	return &HTTPProber{URL: url, Client: &http.Client{Timeout: 10 * time.Second}}
}

// Probe performs one health check.
func (p *HTTPProber) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health probe: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Options tunes the monitor's timing and seeds its initial state.
type Options struct {
	Debounce      time.Duration
	ProbeInterval time.Duration

	// BrowserOnline is the on-startup snapshot of the host browser's
	// online flag, used as the seed before any probe has run.
	BrowserOnline bool
}

func (o *Options) fill() {
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.ProbeInterval <= 0 {
		o.ProbeInterval = DefaultProbeInterval
	}
}

// Monitor folds browser flag samples and probe results into debounced
// state transitions. The browser flag is trusted when it claims offline
// and distrusted when it claims online; only a probe success verifies
// online.
type Monitor struct {
	prober       Prober
	opts         Options
	onTransition func(State)
	log          *logger.Logger

	mu            sync.Mutex
	browserOnline bool
	probeOK       bool
	state         State
	pending       State
	debounceTimer *time.Timer
	stopped       bool
}

// NewMonitor creates a monitor. onTransition fires once per settled
// state change, never for repeated samples of the same state.
func NewMonitor(prober Prober, opts Options, onTransition func(State)) *Monitor {
	opts.fill()
	m := &Monitor{
		prober:        prober,
		opts:          opts,
		onTransition:  onTransition,
		log:           logger.New("netstate"),
		browserOnline: opts.BrowserOnline,
		probeOK:       opts.BrowserOnline,
	}
	m.state = m.derive()
	m.pending = m.state
	return m
}

// State returns the last settled state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start runs the probe loop until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	go m.probeLoop(ctx)
}

// SetBrowserOnline feeds one raw browser flag sample.
func (m *Monitor) SetBrowserOnline(online bool) {
	m.mu.Lock()
	m.browserOnline = online
	if !online {
		// An offline claim is reliable; any prior verification is void.
		m.probeOK = false
	}
	m.submitLocked()
	m.mu.Unlock()
}

func (m *Monitor) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(m.opts.ProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return
		case <-ticker.C:
			err := m.prober.Probe(ctx)
			m.mu.Lock()
			ok := err == nil
			if ok != m.probeOK {
				m.probeOK = ok
				m.submitLocked()
			}
			m.mu.Unlock()
			if err != nil && ctx.Err() == nil {
				m.log.Debugw("health probe failed", "error", err)
			}
		}
	}
}

// derive maps the two inputs to a state. Callers hold mu or own the
// monitor exclusively.
func (m *Monitor) derive() State {
	switch {
	case !m.browserOnline:
		return StateOffline
	case !m.probeOK:
		return StateServiceDown
	default:
		return StateOnline
	}
}

// submitLocked schedules the current derived state as the pending
// sample. Each new sample restarts the debounce window, so a flap
// settles on its last value.
func (m *Monitor) submitLocked() {
	if m.stopped {
		return
	}
	m.pending = m.derive()
	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
	}
	m.debounceTimer = time.AfterFunc(m.opts.Debounce, m.settle)
}

func (m *Monitor) settle() {
	m.mu.Lock()
	m.debounceTimer = nil
	if m.stopped || m.pending == m.state {
		m.mu.Unlock()
		return
	}
	prev := m.state
	m.state = m.pending
	next := m.state
	m.mu.Unlock()

	m.log.Infow("presentation state changed", "from", prev, "to", next)
	if m.onTransition != nil {
		m.onTransition(next)
	}
}

func (m *Monitor) shutdown() {
	m.mu.Lock()
	m.stopped = true
	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
		m.debounceTimer = nil
	}
	m.mu.Unlock()
}
