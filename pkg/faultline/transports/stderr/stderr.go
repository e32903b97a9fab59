// Package stderr provides a transport that prints item batches to stderr in
// human-readable format. Useful for development and debugging.
package stderr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/faultlinehq/faultline-go/pkg/faultline"
)

// Option configures the stderr transport.
type Option func(*transportConfig)

type transportConfig struct {
	verbose bool
	out     io.Writer
}

// WithVerbose enables full item details including trace frames.
func WithVerbose() Option {
	return func(c *transportConfig) {
		c.verbose = true
	}
}

// WithWriter redirects output, mainly for tests.
func WithWriter(w io.Writer) Option {
	return func(c *transportConfig) {
		if w != nil {
			c.out = w
		}
	}
}

// stderrTransport prints items in human-readable format.
type stderrTransport struct {
	verbose bool
	out     io.Writer
}

// New creates a transport that writes to stderr.
func New(opts ...Option) faultline.Transport {
	cfg := &transportConfig{out: os.Stderr}
	for _, opt := range opts {
		opt(cfg)
	}
	return &stderrTransport{
		verbose: cfg.verbose,
		out:     cfg.out,
	}
}

// PostBatch formats and prints every item in the batch.
func (t *stderrTransport) PostBatch(ctx context.Context, items []*faultline.Item) (*faultline.Response, error) {
	var lastUUID string
	for _, item := range items {
		t.printItem(item)
		lastUUID = item.UUID
	}
	return &faultline.Response{UUID: lastUUID}, nil
}

func (t *stderrTransport) printItem(item *faultline.Item) {
	level := strings.ToUpper(string(item.Level))

	// Format: [FAULTLINE] <ts> <LEVEL> <env> <summary> (uuid)
	parts := []string{fmt.Sprintf("[FAULTLINE] %d %s", item.Timestamp, level)}
	if item.Environment != "" {
		parts = append(parts, item.Environment)
	}
	parts = append(parts, itemSummary(item), fmt.Sprintf("(%s)", item.UUID))

	fmt.Fprintln(t.out, strings.Join(parts, " "))

	if item.Context != "" {
		fmt.Fprintf(t.out, "        Route: %s\n", item.Context)
	}
	if item.Request != nil {
		fmt.Fprintf(t.out, "        Request: %s %s\n", item.Request.Method, item.Request.URL)
	}
	if item.Person != nil {
		fmt.Fprintf(t.out, "        Person: %s\n", item.Person.ID)
	}
	if item.Fingerprint != "" {
		fmt.Fprintf(t.out, "        Fingerprint: %s\n", item.Fingerprint)
	}

	// Trace frames (only in verbose mode)
	if t.verbose && item.Body.Trace != nil {
		fmt.Fprintf(t.out, "        Frames:\n")
		for _, f := range item.Body.Trace.Frames {
			fmt.Fprintf(t.out, "          %s (%s:%d)\n", f.Method, f.Filename, f.Lineno)
		}
	}
}

// itemSummary renders the body as a one-liner.
func itemSummary(item *faultline.Item) string {
	switch {
	case item.Body.Trace != nil:
		return fmt.Sprintf("%s: %s", item.Body.Trace.Exception.Class, item.Body.Trace.Exception.Message)
	case item.Body.Message != nil:
		return item.Body.Message.Body
	}
	return "<empty body>"
}

// Close is a no-op for the stderr transport.
func (t *stderrTransport) Close() error {
	return nil
}
