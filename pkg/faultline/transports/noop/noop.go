// Package noop provides a no-operation transport that discards all batches.
// Useful for testing and for disabling reporting.
package noop

import (
	"context"

	"github.com/faultlinehq/faultline-go/pkg/faultline"
)

// noopTransport discards all batches.
type noopTransport struct{}

// New creates a transport that discards all batches.
// All methods succeed and perform no operations.
func New() faultline.Transport {
	return &noopTransport{}
}

// PostBatch discards the batch and reports success.
func (t *noopTransport) PostBatch(ctx context.Context, items []*faultline.Item) (*faultline.Response, error) {
	return &faultline.Response{}, nil
}

// Close is a no-op and returns nil.
func (t *noopTransport) Close() error {
	return nil
}
