// recover.go provides the Recover helper for standalone panic capture.
// Use this in HTTP handlers, goroutines, or other code outside a framework
// adapter.

package faultline

import (
	"context"
	"fmt"
)

// Recover captures a panic as a critical-level report and returns the
// recovered value. It does NOT re-panic after recording.
//
// It must be deferred directly, not from inside another deferred function,
// or the runtime will not let it stop the panic:
//
//	func worker(ctx context.Context) {
//	    defer faultline.Recover(ctx, client)
//	    // code that might panic
//	}
func Recover(ctx context.Context, client *Client) any {
	r := recover()
	if r == nil {
		return nil
	}

	// Capture errors are swallowed; recovery must not affect the caller.
	_ = client.CaptureException(ctx, recoveredError(r), WithLevel(LevelCritical))

	return r
}

// recoveredError converts a recovered panic value into an error.
func recoveredError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", recovered)
}
