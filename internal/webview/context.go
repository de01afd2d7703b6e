package webview

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teamdock-io/teamdock/internal/logger"
)

// Default timing policy. Overridable through Options for tests.
const (
	// DefaultAttachFallback races the native load-finished event; the host
	// runtime sometimes drops that signal, so whichever fires first wins.
	DefaultAttachFallback = 3 * time.Second

	// DefaultExecTimeout bounds a remote code execution round trip. On
	// expiry the result degrades to nil instead of an error; a known
	// leniency, kept for compatibility.
	DefaultExecTimeout = 10 * time.Second

	// DefaultLoadTimeout is how long the embedded page gets to reach
	// app-ready before a synthetic "Load timeout" crash is raised.
	DefaultLoadTimeout = 32 * time.Second
)

// ExecuteChannel is the message channel used for remote code execution
// requests into the embedded page.
const ExecuteChannel = "core:execute"

// Options tunes a Context's timing policy.
type Options struct {
	AttachFallback time.Duration
	ExecTimeout    time.Duration
	LoadTimeout    time.Duration

	// DevMode disables the load-timeout crash entirely.
	DevMode bool
}

func (o *Options) fill() {
	if o.AttachFallback <= 0 {
		o.AttachFallback = DefaultAttachFallback
	}
	if o.ExecTimeout <= 0 {
		o.ExecTimeout = DefaultExecTimeout
	}
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = DefaultLoadTimeout
	}
}

type execRequest struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type execReply struct {
	result json.RawMessage
	err    error
}

// Context wraps exactly one embedded surface handle. A Context is owned
// by a single Team record; no two teams may share one.
type Context struct {
	surface Surface
	opts    Options
	log     *logger.Logger

	attached   chan struct{}
	attachOnce sync.Once

	appReady   chan struct{}
	readyOnce  sync.Once

	mu            sync.Mutex
	pending       map[string]chan execReply
	crashSubs     map[int]func(CrashKind)
	nextSub       int
	fallbackTimer *time.Timer
	loadTimer     *time.Timer
	disposed      bool
}

// New wraps the given surface. The surface is adopted, not copied; the
// Context owns its disposal from here on.
func New(surface Surface, opts Options) *Context {
	opts.fill()
	return &Context{
		surface:   surface,
		opts:      opts,
		log:       logger.New("webview").With("surface", surface.ID()),
		attached:  make(chan struct{}),
		appReady:  make(chan struct{}),
		pending:   make(map[string]chan execReply),
		crashSubs: map[int]func(CrashKind){},
	}
}

// Surface returns the wrapped surface handle.
func (c *Context) Surface() Surface { return c.surface }

// Show makes the surface visible in the host window.
func (c *Context) Show() { c.surface.Show() }

// Hide removes the surface from view. Safe after disposal of the
// underlying handle; the binding treats it as a no-op then.
func (c *Context) Hide() { c.surface.Hide() }

// Focus routes keyboard input to the surface.
func (c *Context) Focus() { c.surface.Focus() }

// Attach begins the load cycle and returns a channel closed once the
// initial page load completes. A fallback timer is raced against the
// native load-finished event, taking whichever fires first. The load
// timeout clock also starts here.
func (c *Context) Attach(url string) <-chan struct{} {
	c.mu.Lock()
	if !c.disposed && c.fallbackTimer == nil {
		c.fallbackTimer = time.AfterFunc(c.opts.AttachFallback, c.markAttached)
		if !c.opts.DevMode {
			c.loadTimer = time.AfterFunc(c.opts.LoadTimeout, c.loadTimedOut)
		}
	}
	c.mu.Unlock()

	c.surface.LoadURL(url)
	return c.attached
}

// Attached returns the channel closed on initial page load.
func (c *Context) Attached() <-chan struct{} { return c.attached }

// AppReady returns a channel closed only when the embedded page
// explicitly announces completion of its own boot sequence. Consumers
// that run script against the page must wait on this, not on Attach.
func (c *Context) AppReady() <-chan struct{} { return c.appReady }

// IsAppReady reports whether the app-ready signal has fired.
func (c *Context) IsAppReady() bool {
	select {
	case <-c.appReady:
		return true
	default:
		return false
	}
}

// HandleLoadFinished is called by the host binding when the native
// load-finished event arrives.
func (c *Context) HandleLoadFinished() {
	c.markAttached()
}

// HandleAppReady is called by the host binding when the embedded page
// reports application-level readiness.
func (c *Context) HandleAppReady() {
	c.markAttached()
	c.mu.Lock()
	if c.loadTimer != nil {
		c.loadTimer.Stop()
		c.loadTimer = nil
	}
	c.mu.Unlock()
	c.readyOnce.Do(func() { close(c.appReady) })
}

func (c *Context) markAttached() {
	c.attachOnce.Do(func() { close(c.attached) })
}

func (c *Context) loadTimedOut() {
	if c.IsAppReady() {
		return
	}
	c.log.Warnw("load timeout reached before app-ready")
	c.HandleCrash(CrashLoadTimeout)
}

// ExecuteRemoteCode marshals the code string and a correlation id to the
// embedded surface and waits for the correlated response. A timeout
// silently resolves to nil rather than an error.
func (c *Context) ExecuteRemoteCode(ctx context.Context, code string) (json.RawMessage, error) {
	id := uuid.New().String()
	reply := make(chan execReply, 1)

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil, nil
	}
	c.pending[id] = reply
	c.mu.Unlock()

	payload, err := json.Marshal(execRequest{ID: id, Code: code})
	if err != nil {
		c.dropPending(id)
		return nil, err
	}
	if err := c.surface.Post(ExecuteChannel, payload); err != nil {
		c.dropPending(id)
		return nil, err
	}

	timer := time.NewTimer(c.opts.ExecTimeout)
	defer timer.Stop()

	select {
	case r := <-reply:
		return r.result, r.err
	case <-timer.C:
		c.dropPending(id)
		c.log.Debugw("remote execution timed out", "correlation_id", id)
		return nil, nil
	case <-ctx.Done():
		c.dropPending(id)
		return nil, ctx.Err()
	}
}

// HandleExecuteResult resolves a pending remote execution. Unknown
// correlation ids are ignored (late replies after timeout).
func (c *Context) HandleExecuteResult(id string, result json.RawMessage, execErr error) {
	c.mu.Lock()
	reply, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()
	if !ok {
		return
	}
	reply <- execReply{result: result, err: execErr}
}

func (c *Context) dropPending(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// OnCrash subscribes to the aggregated crash signal (renderer, GPU,
// plugin, load timeout). The returned func removes the subscription.
func (c *Context) OnCrash(fn func(CrashKind)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.crashSubs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.crashSubs, id)
		c.mu.Unlock()
	}
}

// HandleCrash fans a crash event out to subscribers.
func (c *Context) HandleCrash(kind CrashKind) {
	c.mu.Lock()
	subs := make([]func(CrashKind), 0, len(c.crashSubs))
	for _, fn := range c.crashSubs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(kind)
	}
}

// Notify sends a one-way named message into the embedded page.
func (c *Context) Notify(channel string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.surface.Post(channel, payload)
}

// Dispose tears down all owned subscriptions and timers and removes the
// surface from its host container. Idempotent.
func (c *Context) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	if c.fallbackTimer != nil {
		c.fallbackTimer.Stop()
		c.fallbackTimer = nil
	}
	if c.loadTimer != nil {
		c.loadTimer.Stop()
		c.loadTimer = nil
	}
	c.crashSubs = map[int]func(CrashKind){}
	pending := c.pending
	c.pending = map[string]chan execReply{}
	c.mu.Unlock()

	for _, reply := range pending {
		reply <- execReply{}
	}
	c.surface.Dispose()
}
