package errtrack

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tempslabs/errtrack/internal/protocol"
	"github.com/tempslabs/errtrack/internal/scope"
	"github.com/tempslabs/errtrack/internal/spool"
	"github.com/tempslabs/errtrack/internal/stacktrace"
	"github.com/tempslabs/errtrack/internal/trace"
	"github.com/tempslabs/errtrack/internal/transport"
)

// flushBound caps how long Flush actually waits, standing in for real
// queue draining: sends are fire-and-forget and in flight at most briefly.
const flushBound = 100 * time.Millisecond

// defaultFlushTimeout applies when Flush is called with a non-positive
// timeout.
const defaultFlushTimeout = 2 * time.Second

// Client owns the capture pipeline: configuration, the scope hub, and the
// transport. Safe for concurrent use.
type Client struct {
	cfg       config
	hub       *scope.Hub
	transport transport.Transport

	mu          sync.Mutex
	enabled     bool
	lastEventID string
	currentTx   *trace.Transaction

	// randFloat backs sampling decisions; replaced in tests.
	randFloat func() float64
	// exit terminates the process on uncaught exceptions; replaced in tests.
	exit func(code int)
}

// New creates a Client for the given DSN. A malformed DSN fails here,
// fatal to SDK setup. Integrations run synchronously before New returns.
func New(dsn string, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	cfg.dsn = dsn
	for _, o := range opts {
		o(&cfg)
	}

	tr := cfg.transport
	if tr == nil {
		parsed, err := transport.ParseDSN(dsn)
		if err != nil {
			return nil, err
		}
		switch {
		case cfg.debug:
			tr = transport.NewConsole(nil)
		case cfg.spoolDir != "":
			tr = spool.New(cfg.spoolDir)
		default:
			tr = transport.NewHTTP(parsed, cfg.httpTimeout)
		}
	}

	c := &Client{
		cfg:       cfg,
		hub:       scope.NewHub(cfg.maxBreadcrumbs),
		transport: tr,
		enabled:   true,
		randFloat: rand.Float64,
		exit:      os.Exit,
	}

	for _, integration := range cfg.integrations {
		integration.SetupOnce(c)
	}
	if cfg.registrar != nil {
		c.installFatalHooks(cfg.registrar)
	}
	return c, nil
}

// SetEnabled toggles capturing. While disabled, every capture returns an
// empty id immediately with no scope or transport work performed.
func (c *Client) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// Enabled reports whether captures are being processed.
func (c *Client) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// LastEventID returns the id produced by the most recent capture, whether
// or not the event ultimately reached the transport.
func (c *Client) LastEventID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastEventID
}

// CaptureException captures an error-like value. Values that are not
// errors are captured as plain messages. Returns the event id, or an empty
// string when the client is disabled or the message is ignored.
func (c *Client) CaptureException(v any, cc *CaptureContext) string {
	if !c.Enabled() {
		return ""
	}
	if c.ignored(stacktrace.ExtractMessage(v)) {
		return ""
	}

	ev := c.newEvent()
	if stacktrace.IsError(v) {
		exc := stacktrace.FromError(asError(v))
		if !c.cfg.attachStacktrace {
			exc.Stacktrace = &protocol.Stacktrace{Frames: []protocol.StackFrame{}}
		}
		ev.Exception = &protocol.ExceptionInfo{Values: []protocol.Exception{exc}}
	} else {
		ev.Message = stacktrace.ExtractMessage(v)
	}
	return c.processAndSend(ev, cc)
}

// CaptureMessage captures a plain message at the given severity.
func (c *Client) CaptureMessage(message string, level Level, cc *CaptureContext) string {
	if !c.Enabled() {
		return ""
	}
	ev := c.newEvent()
	ev.Message = message
	ev.Level = level
	return c.processAndSend(ev, cc)
}

// CaptureEvent captures a caller-built event, defaulting id, timestamp,
// platform, SDK info, environment, release, and server name only where
// absent. A caller-supplied event id is preserved verbatim.
func (c *Client) CaptureEvent(ev *Event, cc *CaptureContext) string {
	if !c.Enabled() {
		return ""
	}
	if ev.EventID == "" {
		ev.EventID = protocol.NewEventID()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if ev.Platform == "" {
		ev.Platform = c.cfg.platform
	}
	if ev.SDK == (protocol.SDKInfo{}) {
		ev.SDK = protocol.SDKInfo{Name: protocol.SDKName, Version: protocol.SDKVersion}
	}
	if ev.Environment == "" {
		ev.Environment = c.cfg.environment
	}
	if ev.Release == "" {
		ev.Release = c.cfg.release
	}
	if ev.ServerName == "" {
		ev.ServerName = c.cfg.serverName
	}
	return c.processAndSend(ev, cc)
}

// CaptureUserFeedback sends a minimal event tagged source:user_feedback
// carrying the feedback payload, through the normal pipeline.
func (c *Client) CaptureUserFeedback(fb UserFeedback) string {
	if !c.Enabled() {
		return ""
	}
	ev := c.newEvent()
	ev.Type = "default"
	ev.Tags = map[string]string{"source": "user_feedback"}
	ev.Extra = map[string]any{"feedback": fb}
	return c.processAndSend(ev, nil)
}

// StartTransaction begins a transaction and retains it as current,
// silently replacing any previous one. When it finishes, a fresh sampling
// draw against the traces sample rate decides whether it is converted to
// an event and routed through the capture pipeline.
func (c *Client) StartTransaction(ctx TransactionContext) *Transaction {
	tx := trace.StartTransaction(ctx)
	tx.OnFinish(func(t *trace.Transaction) {
		if c.cfg.tracesSampleRate <= 0 {
			return
		}
		if c.randFloat() > c.cfg.tracesSampleRate {
			return
		}
		c.CaptureEvent(t.ToEvent(), nil)
	})

	c.mu.Lock()
	c.currentTx = tx
	c.mu.Unlock()
	return tx
}

// CurrentTransaction returns the most recently started transaction, or nil.
func (c *Client) CurrentTransaction() *Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTx
}

// ConfigureScope mutates the current scope permanently.
func (c *Client) ConfigureScope(fn func(*Scope)) { c.hub.ConfigureScope(fn) }

// WithScope runs fn inside a temporary scope, popped on return even if fn
// panics.
func (c *Client) WithScope(fn func(*Scope)) { c.hub.WithScope(fn) }

// SetUser sets the user on the current scope. Nil clears it.
func (c *Client) SetUser(u *User) { c.hub.SetUser(u) }

// SetTag sets a tag on the current scope.
func (c *Client) SetTag(key, value string) { c.hub.SetTag(key, value) }

// SetExtra sets an extra value on the current scope.
func (c *Client) SetExtra(key string, value any) { c.hub.SetExtra(key, value) }

// SetContext sets a named context on the current scope.
func (c *Client) SetContext(key string, ctx map[string]any) { c.hub.SetContext(key, ctx) }

// SetLevel sets the default severity on the current scope.
func (c *Client) SetLevel(level Level) { c.hub.SetLevel(level) }

// AddBreadcrumb records a breadcrumb on the current scope.
func (c *Client) AddBreadcrumb(b Breadcrumb) { c.hub.AddBreadcrumb(b) }

// ClearBreadcrumbs drops the current scope's breadcrumb trail.
func (c *Client) ClearBreadcrumbs() { c.hub.Scope().ClearBreadcrumbs() }

// Flush waits briefly for in-flight sends and reports true. The wait is
// bounded regardless of the requested timeout.
func (c *Client) Flush(timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = defaultFlushTimeout
	}
	if timeout > flushBound {
		timeout = flushBound
	}
	time.Sleep(timeout)
	return true
}

// Close disables the client, then flushes.
func (c *Client) Close(timeout time.Duration) bool {
	c.SetEnabled(false)
	return c.Flush(timeout)
}

// newEvent builds a fresh event stamped with client defaults.
func (c *Client) newEvent() *Event {
	return &Event{
		EventID:     protocol.NewEventID(),
		Timestamp:   time.Now().UTC(),
		Platform:    c.cfg.platform,
		SDK:         protocol.SDKInfo{Name: protocol.SDKName, Version: protocol.SDKVersion},
		Environment: c.cfg.environment,
		Release:     c.cfg.release,
		ServerName:  c.cfg.serverName,
	}
}

// processAndSend runs the shared tail of the capture pipeline: record the
// id, sample, overlay scope state, apply beforeSend, and hand off to the
// transport. The minted id is returned even when sampling or beforeSend
// drops the event.
func (c *Client) processAndSend(ev *Event, cc *CaptureContext) string {
	id := ev.EventID

	c.mu.Lock()
	c.lastEventID = id
	c.mu.Unlock()

	if c.randFloat() > c.cfg.sampleRate {
		return id
	}

	ev = c.hub.ApplyToEvent(ev, cc)

	if c.cfg.beforeSend != nil {
		out := c.cfg.beforeSend(ev)
		if out == nil {
			return id
		}
		ev = out
	}

	go c.send(ev)
	return id
}

// send hands the event to the transport. Failures are logged in debug mode
// and never propagate to the caller.
func (c *Client) send(ev *Event) {
	if err := c.transport.SendEvent(context.Background(), ev); err != nil && c.cfg.debug {
		fmt.Fprintf(os.Stderr, "[ErrorTracking] failed to send event %s: %v\n", ev.EventID, err)
	}
}

// ignored reports whether a message matches any configured ignore pattern.
func (c *Client) ignored(message string) bool {
	for _, sub := range c.cfg.ignoreSubstrings {
		if strings.Contains(message, sub) {
			return true
		}
	}
	for _, re := range c.cfg.ignorePatterns {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

// asError normalizes an error-like value into an error. Generic payloads
// carrying message and stack become a ReportedError.
func asError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	m := v.(map[string]any)
	name := "Error"
	if n, ok := m["name"].(string); ok && n != "" {
		name = n
	}
	message := fmt.Sprintf("%v", m["message"])
	stack, _ := m["stack"].(string)
	return NewReportedError(name, message, stack)
}
