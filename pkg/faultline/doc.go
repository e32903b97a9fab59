// Package faultline provides an in-process error and message capture client
// that reports to a remote collector.
//
// faultline intercepts application errors and log-style messages, normalizes
// them into structured items, enriches them with HTTP request and server
// context, redacts sensitive fields, and queues them for asynchronous
// delivery. Delivery is at-most-once: failed batches are never retried and
// the pending queue is not persisted across restarts.
//
// # Core Components
//
// The library is organized around these concepts:
//
//   - Item: one normalized error or message report ready for transport
//   - Client: the capture API; builds items and hands them to the dispatcher
//   - Transport: destination for item batches (api, stderr, multi, noop)
//   - Scrubbing: redacts configured header and field values before anything
//     leaves the process
//
// # Quick Start
//
// Reporting to a collector:
//
//	client, err := faultline.New("token",
//	    faultline.WithEnvironment("production"),
//	    faultline.WithTransport(api.New("token")),
//	)
//	if err != nil { ... }
//	defer client.Close(context.Background())
//
//	if err := doWork(); err != nil {
//	    _ = client.CaptureException(ctx, err)
//	}
//
// For standalone usage:
//
//	client, _ := faultline.New("", faultline.WithTransport(stderr.New()))
//	defer faultline.Recover(ctx, client)
//
// # Design Principles
//
//   - Capture never aborts the host: internal faults are logged and returned,
//     not propagated as panics
//   - Redaction before transport: scrubbed values never leave the process
//   - Zero-dependency flush path: external collaborators (transport, error
//     parser) are injected interfaces
package faultline
