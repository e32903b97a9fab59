// Package multi provides a transport that fans out to multiple transports.
// All transports receive every batch; errors are aggregated.
package multi

import (
	"context"
	"errors"

	"github.com/faultlinehq/faultline-go/pkg/faultline"
)

// multiTransport fans out to multiple transports.
type multiTransport struct {
	transports []faultline.Transport
}

// New creates a transport that posts every batch to all given transports.
// Errors are aggregated via errors.Join; the last successful response wins.
func New(transports ...faultline.Transport) faultline.Transport {
	return &multiTransport{
		transports: transports,
	}
}

// PostBatch sends the batch to all transports, collecting any errors.
// All transports are called even if some fail.
func (t *multiTransport) PostBatch(ctx context.Context, items []*faultline.Item) (*faultline.Response, error) {
	var errs []error
	resp := &faultline.Response{}
	for _, tr := range t.transports {
		r, err := tr.PostBatch(ctx, items)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if r != nil {
			resp = r
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return resp, nil
}

// Close calls Close on all transports, collecting any errors.
func (t *multiTransport) Close() error {
	var errs []error
	for _, tr := range t.transports {
		if err := tr.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
