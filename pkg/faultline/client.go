// client.go provides the Client capture API: exception capture, message
// capture, handler-mode changes, and shutdown.

package faultline

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// ErrNotError is returned when exception capture is handed a nil error.
var ErrNotError = errors.New("faultline: captured value is not an error")

// Client captures errors and messages and dispatches them to a transport.
// All methods are safe for concurrent use. Each Client carries its own
// configuration; independent clients can coexist in one process.
type Client struct {
	cfg             *Config
	dispatcher      *dispatcher
	parser          ErrorParser
	log             zerolog.Logger
	requestDataFunc RequestDataFunc
	headerRedact    map[string]struct{}
	fieldRedact     map[string]struct{}
}

// New creates a Client for the given access token.
// Without WithTransport, items are discarded; pass transports/api.New for
// real delivery.
func New(token string, opts ...Option) (*Client, error) {
	return NewWithConfig(NewConfig(token), opts...)
}

// NewWithConfig creates a Client from an explicit Config, e.g. one produced
// by LoadConfig. Options may still override injectable collaborators.
func NewWithConfig(cfg *Config, opts ...Option) (*Client, error) {
	cc := &clientConfig{
		cfg:    cfg,
		parser: parseError,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cc)
	}
	cfg = cc.cfg

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cc.transport == nil {
		cc.transport = discardTransport{}
	}
	if cc.parser == nil {
		cc.parser = parseError
	}

	c := &Client{
		cfg:             cfg,
		parser:          cc.parser,
		log:             cc.log,
		requestDataFunc: cc.requestDataFunc,
		headerRedact:    cfg.headerRedactSet(),
		fieldRedact:     cfg.fieldRedactSet(),
	}
	c.dispatcher = newDispatcher(cfg, cc.transport, cc.log)
	return c, nil
}

// CaptureOption configures a single capture operation.
type CaptureOption func(*captureConfig)

type captureConfig struct {
	request *http.Request
	level   Level
	extra   map[string]any
	person  *Person
	cb      func(error)
}

// WithRequest attaches an inbound HTTP request; its redacted snapshot is
// included on the item.
func WithRequest(r *http.Request) CaptureOption {
	return func(c *captureConfig) { c.request = r }
}

// WithLevel overrides the item level.
func WithLevel(level Level) CaptureOption {
	return func(c *captureConfig) { c.level = level }
}

// WithExtra merges caller-supplied fields into the item envelope. Keys
// colliding with envelope fields are silently dropped.
func WithExtra(extra map[string]any) CaptureOption {
	return func(c *captureConfig) { c.extra = extra }
}

// WithCapturePerson attaches the affected user to the item, overriding any
// request-resolved identity.
func WithCapturePerson(p *Person) CaptureOption {
	return func(c *captureConfig) { c.person = p }
}

// WithCallback registers a completion callback. It receives nil once the
// item's batch is delivered, or the transport/dispatch error otherwise. In
// inline mode the same result is also returned from the capture call.
func WithCallback(cb func(error)) CaptureOption {
	return func(c *captureConfig) { c.cb = cb }
}

// CaptureException parses err into a trace and enqueues the report.
// A nil err fails fast with ErrNotError and nothing is enqueued; a parser
// failure is likewise reported without enqueueing. Internal faults are
// recovered, logged, and returned rather than propagated.
func (c *Client) CaptureException(ctx context.Context, err error, opts ...CaptureOption) (capErr error) {
	cc := applyCaptureOptions(opts)
	defer c.recoverCaptureFault(&capErr, cc.cb)

	if err == nil {
		if cc.cb != nil {
			cc.cb(ErrNotError)
		}
		return ErrNotError
	}

	trace, perr := c.parser(err)
	if perr != nil {
		perr = fmt.Errorf("parse exception: %w", perr)
		if cc.cb != nil {
			cc.cb(perr)
		}
		return perr
	}

	item := c.buildBaseData(cc.extra)
	item.Body = Body{Trace: trace}
	item.Fingerprint = TraceFingerprint(trace)
	c.enrich(item, cc)

	return c.dispatcher.enqueue(ctx, item, cc.cb)
}

// CaptureMessage builds a message-bodied report and enqueues it.
// Construction faults are recovered at this boundary and returned, never
// propagated as panics.
func (c *Client) CaptureMessage(ctx context.Context, msg string, opts ...CaptureOption) (capErr error) {
	cc := applyCaptureOptions(opts)
	defer c.recoverCaptureFault(&capErr, cc.cb)

	item := c.buildBaseData(cc.extra)
	body := &Message{Body: msg}
	item.Body = Body{Message: body}
	item.Fingerprint = MessageFingerprint(item.Level, body)
	c.enrich(item, cc)

	return c.dispatcher.enqueue(ctx, item, cc.cb)
}

// enrich applies per-capture level, request snapshot, route, and identity.
func (c *Client) enrich(item *Item, cc *captureConfig) {
	if cc.level != "" {
		item.Level = cc.level
	}
	if cc.request != nil {
		item.Request = c.BuildRequestContext(cc.request)
		item.Context = c.resolveRoute(cc.request)
		item.Person = c.resolvePerson(cc.request)
	}
	if cc.person != nil {
		item.Person = cc.person
	}
}

// recoverCaptureFault turns unexpected internal faults during payload
// construction into logged, returned errors.
func (c *Client) recoverCaptureFault(capErr *error, cb func(error)) {
	r := recover()
	if r == nil {
		return
	}
	err := fmt.Errorf("faultline: internal capture fault: %v", r)
	c.log.Error().Err(err).Msg("capture failed")
	if cb != nil {
		cb(err)
	}
	*capErr = err
}

func applyCaptureOptions(opts []CaptureOption) *captureConfig {
	cc := &captureConfig{}
	for _, opt := range opts {
		opt(cc)
	}
	return cc
}

// Flush drains the pending queue now, regardless of handler mode.
func (c *Client) Flush(ctx context.Context) error {
	return c.dispatcher.flush(ctx)
}

// SetHandler switches the flush policy at runtime. Switching away from and
// back to timer mode never leaves a stale ticker running.
func (c *Client) SetHandler(mode HandlerMode) {
	c.dispatcher.setHandler(mode)
}

// QueueLen reports how many items are waiting to be flushed.
func (c *Client) QueueLen() int {
	return c.dispatcher.queueLen()
}

// Close forces inline mode, cancels any timer, performs one final flush, and
// closes the transport. Idempotent.
func (c *Client) Close(ctx context.Context) error {
	flushErr := c.dispatcher.close(ctx)
	closeErr := c.dispatcher.transport.Close()
	return errors.Join(flushErr, closeErr)
}

// discardTransport is the internal default transport, avoiding an import
// cycle with transports/noop.
type discardTransport struct{}

func (discardTransport) PostBatch(ctx context.Context, items []*Item) (*Response, error) {
	return &Response{}, nil
}

func (discardTransport) Close() error { return nil }
