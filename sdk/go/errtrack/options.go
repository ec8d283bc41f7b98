package errtrack

import (
	"regexp"
	"time"

	"github.com/tempslabs/errtrack/internal/transport"
)

// BeforeSendFunc inspects the final event just before delivery. Returning
// nil drops the event; any other return replaces it.
type BeforeSendFunc func(ev *Event) *Event

// Integration hooks into the client at construction time.
type Integration interface {
	Name() string
	SetupOnce(c *Client)
}

// Option configures a Client at creation time.
type Option func(*config)

type config struct {
	dsn              string
	environment      string
	release          string
	serverName       string
	platform         string
	sampleRate       float64
	tracesSampleRate float64
	maxBreadcrumbs   int
	attachStacktrace bool
	debug            bool
	beforeSend       BeforeSendFunc
	integrations     []Integration
	ignoreSubstrings []string
	ignorePatterns   []*regexp.Regexp
	registrar        FatalHookRegistrar
	transport        transport.Transport
	spoolDir         string
	httpTimeout      time.Duration
}

func defaultConfig() config {
	return config{
		environment:      "production",
		platform:         "node",
		sampleRate:       1.0,
		maxBreadcrumbs:   100,
		attachStacktrace: true,
	}
}

// WithEnvironment sets the deployment environment stamped on events.
func WithEnvironment(env string) Option {
	return func(c *config) { c.environment = env }
}

// WithRelease sets the release identifier stamped on events.
func WithRelease(release string) Option {
	return func(c *config) { c.release = release }
}

// WithServerName sets the server name stamped on events.
func WithServerName(name string) Option {
	return func(c *config) { c.serverName = name }
}

// WithPlatform overrides the platform stamped on events.
func WithPlatform(platform string) Option {
	return func(c *config) { c.platform = platform }
}

// WithSampleRate sets the uniform error sampling rate in [0, 1].
func WithSampleRate(rate float64) Option {
	return func(c *config) { c.sampleRate = rate }
}

// WithTracesSampleRate enables transaction capture at the given uniform
// sampling rate in [0, 1]. Zero leaves tracing off.
func WithTracesSampleRate(rate float64) Option {
	return func(c *config) { c.tracesSampleRate = rate }
}

// WithMaxBreadcrumbs bounds the breadcrumb trail kept per scope.
func WithMaxBreadcrumbs(n int) Option {
	return func(c *config) { c.maxBreadcrumbs = n }
}

// WithAttachStacktrace controls whether parsed stack frames are attached
// to captured exceptions.
func WithAttachStacktrace(attach bool) Option {
	return func(c *config) { c.attachStacktrace = attach }
}

// WithDebug switches the client to the console transport and turns on
// delivery-failure logging.
func WithDebug(debug bool) Option {
	return func(c *config) { c.debug = debug }
}

// WithBeforeSend installs a transform hook invoked with every final event.
func WithBeforeSend(fn BeforeSendFunc) Option {
	return func(c *config) { c.beforeSend = fn }
}

// WithIntegrations registers integrations whose SetupOnce runs during New.
func WithIntegrations(integrations ...Integration) Option {
	return func(c *config) { c.integrations = append(c.integrations, integrations...) }
}

// WithIgnoreErrors drops captured exceptions whose message contains any of
// the given substrings.
func WithIgnoreErrors(substrings ...string) Option {
	return func(c *config) { c.ignoreSubstrings = append(c.ignoreSubstrings, substrings...) }
}

// WithIgnoreErrorPatterns drops captured exceptions whose message matches
// any of the given patterns.
func WithIgnoreErrorPatterns(patterns ...*regexp.Regexp) Option {
	return func(c *config) { c.ignorePatterns = append(c.ignorePatterns, patterns...) }
}

// WithFatalHooks wires the client to the host's process-level fatal-error
// hook surface. Without it, no hooks are installed.
func WithFatalHooks(reg FatalHookRegistrar) Option {
	return func(c *config) { c.registrar = reg }
}

// WithTransport overrides transport resolution entirely. Mainly for tests.
func WithTransport(t transport.Transport) Option {
	return func(c *config) { c.transport = t }
}

// WithSpoolDir routes events to an offline spool directory instead of the
// network. A relay forwards them later.
func WithSpoolDir(dir string) Option {
	return func(c *config) { c.spoolDir = dir }
}

// WithHTTPTimeout bounds each store request. Zero selects the default.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *config) { c.httpTimeout = d }
}
