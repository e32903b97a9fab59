// transport.go defines the Transport interface for item batch delivery.

package faultline

import "context"

// Transport delivers item batches to a collection endpoint.
// Implementations must be safe for concurrent use.
//
// The dispatcher invokes PostBatch with at most the configured batch size of
// items per call, sequentially, never concurrently: at most one PostBatch is
// in flight at any time.
type Transport interface {
	// PostBatch delivers the items, in order, in a single call. A non-nil
	// error aborts the flush that issued the call; the items are not
	// retried.
	PostBatch(ctx context.Context, items []*Item) (*Response, error)

	// Close releases resources held by the transport.
	Close() error
}

// Response is the collector's reply to a batch post.
type Response struct {
	// Err is the collector's error code; zero means accepted.
	Err int

	// UUID echoes the identifier assigned to the last accepted item.
	UUID string

	// Message carries collector diagnostics, if any.
	Message string
}
