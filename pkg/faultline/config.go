// config.go holds client configuration and the functional options for New.

package faultline

import (
	"fmt"
	"net/http"
	"net/textproto"
	"time"

	"github.com/rs/zerolog"
)

// HandlerMode is the policy governing when enqueue triggers a flush.
type HandlerMode string

const (
	// HandlerInline flushes synchronously on every enqueue.
	HandlerInline HandlerMode = "inline"

	// HandlerDeferred schedules a flush to run after the current call
	// returns, on a fresh goroutine.
	HandlerDeferred HandlerMode = "deferred"

	// HandlerTimer flushes on a recurring interval; enqueue never triggers
	// a flush on its own.
	HandlerTimer HandlerMode = "timer"
)

// Defaults applied by NewConfig.
const (
	DefaultHandlerInterval = 3 * time.Second
	DefaultBatchSize       = 10
)

// DefaultScrubFields are body and query parameter names redacted by default.
var DefaultScrubFields = []string{
	"passwd",
	"password",
	"secret",
	"confirm_password",
	"password_confirmation",
	"access_token",
}

// DefaultScrubHeaders are header names redacted by default. Names are in
// canonical MIME form because net/http canonicalizes incoming header keys.
var DefaultScrubHeaders = []string{
	"Authorization",
	"Cookie",
	"Set-Cookie",
	"X-Access-Token",
}

// RequestDataFunc overrides the built-in request context builder.
type RequestDataFunc func(r *http.Request) *RequestInfo

// Config is the explicit, per-client configuration. There is no process-wide
// state: independent clients with independent configs can coexist.
type Config struct {
	// AccessToken authenticates against the collector.
	AccessToken string

	// Host overrides the reported server host. Defaults to os.Hostname().
	Host string

	// Environment is the deployment environment stamped on every item.
	Environment string

	// Framework names the framework in use, if any.
	Framework string

	// Root is the application code root reported in the server block.
	Root string

	// Branch is the source branch reported in the server block.
	Branch string

	// CodeVersion is included on items only when non-empty.
	CodeVersion string

	// Handler selects the flush policy. Defaults to HandlerInline.
	Handler HandlerMode

	// HandlerInterval is the timer-mode flush interval.
	HandlerInterval time.Duration

	// BatchSize caps how many items one transport call may carry. Must be
	// at least 1.
	BatchSize int

	// ScrubHeaders lists header names whose values are masked.
	ScrubHeaders []string

	// ScrubFields lists query/body parameter names whose values are masked.
	ScrubFields []string

	// Notifier identifies this client to the collector.
	Notifier Notifier
}

// NewConfig returns a Config populated with defaults for the given token.
func NewConfig(token string) *Config {
	return &Config{
		AccessToken:     token,
		Handler:         HandlerInline,
		HandlerInterval: DefaultHandlerInterval,
		BatchSize:       DefaultBatchSize,
		ScrubHeaders:    append([]string(nil), DefaultScrubHeaders...),
		ScrubFields:     append([]string(nil), DefaultScrubFields...),
		Notifier:        Notifier{Name: "faultline-go", Version: Version},
	}
}

// Version is the client library version reported in the notifier block.
const Version = "1.2.0"

// validate rejects configurations the dispatcher cannot run with.
func (c *Config) validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be >= 1, got %d", c.BatchSize)
	}
	if c.HandlerInterval <= 0 {
		return fmt.Errorf("handler interval must be positive, got %s", c.HandlerInterval)
	}
	switch c.Handler {
	case HandlerInline, HandlerDeferred, HandlerTimer:
	default:
		return fmt.Errorf("unknown handler mode %q", c.Handler)
	}
	return nil
}

// headerRedactSet builds the header redaction set in canonical MIME form.
func (c *Config) headerRedactSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.ScrubHeaders))
	for _, h := range c.ScrubHeaders {
		set[textproto.CanonicalMIMEHeaderKey(h)] = struct{}{}
	}
	return set
}

// fieldRedactSet builds the parameter redaction set. Matching is exact and
// case-sensitive.
func (c *Config) fieldRedactSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.ScrubFields))
	for _, f := range c.ScrubFields {
		set[f] = struct{}{}
	}
	return set
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	cfg             *Config
	transport       Transport
	parser          ErrorParser
	log             zerolog.Logger
	requestDataFunc RequestDataFunc
}

// WithEnvironment sets the deployment environment.
func WithEnvironment(env string) Option {
	return func(c *clientConfig) { c.cfg.Environment = env }
}

// WithFramework sets the framework name stamped on items.
func WithFramework(fw string) Option {
	return func(c *clientConfig) { c.cfg.Framework = fw }
}

// WithHost overrides the reported server host.
func WithHost(host string) Option {
	return func(c *clientConfig) { c.cfg.Host = host }
}

// WithRoot sets the application code root.
func WithRoot(root string) Option {
	return func(c *clientConfig) { c.cfg.Root = root }
}

// WithBranch sets the reported source branch.
func WithBranch(branch string) Option {
	return func(c *clientConfig) { c.cfg.Branch = branch }
}

// WithCodeVersion sets the application version included on items.
func WithCodeVersion(v string) Option {
	return func(c *clientConfig) { c.cfg.CodeVersion = v }
}

// WithHandler selects the flush policy.
func WithHandler(mode HandlerMode) Option {
	return func(c *clientConfig) { c.cfg.Handler = mode }
}

// WithHandlerInterval sets the timer-mode flush interval.
func WithHandlerInterval(d time.Duration) Option {
	return func(c *clientConfig) { c.cfg.HandlerInterval = d }
}

// WithBatchSize caps items per transport call.
func WithBatchSize(n int) Option {
	return func(c *clientConfig) { c.cfg.BatchSize = n }
}

// WithScrubHeaders replaces the header redaction set.
func WithScrubHeaders(headers []string) Option {
	return func(c *clientConfig) { c.cfg.ScrubHeaders = headers }
}

// WithScrubFields replaces the parameter redaction set.
func WithScrubFields(fields []string) Option {
	return func(c *clientConfig) { c.cfg.ScrubFields = fields }
}

// WithNotifier overrides the notifier identity block.
func WithNotifier(n Notifier) Option {
	return func(c *clientConfig) { c.cfg.Notifier = n }
}

// WithTransport sets the transport items are delivered to. Defaults to a
// transport that discards everything.
func WithTransport(t Transport) Option {
	return func(c *clientConfig) { c.transport = t }
}

// WithErrorParser replaces the default exception parser.
func WithErrorParser(p ErrorParser) Option {
	return func(c *clientConfig) { c.parser = p }
}

// WithLogger sets the diagnostic logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *clientConfig) { c.log = log }
}

// WithRequestDataFunc overrides the built-in request context builder.
func WithRequestDataFunc(fn RequestDataFunc) Option {
	return func(c *clientConfig) { c.requestDataFunc = fn }
}
