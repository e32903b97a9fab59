// Package echomw integrates faultline with the Echo web framework.
//
// The middleware attaches the matched route path and the resolved client IP
// to the request context so captured items carry full request data, recovers
// handler panics as critical reports, and optionally captures returned
// handler errors.
package echomw

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/faultlinehq/faultline-go/pkg/faultline"
)

// Option configures the middleware.
type Option func(*middlewareConfig)

type middlewareConfig struct {
	captureErrors bool
	personFunc    func(echo.Context) *faultline.Person
}

// WithCaptureErrors also captures non-nil errors returned by handlers, not
// just panics.
func WithCaptureErrors() Option {
	return func(c *middlewareConfig) {
		c.captureErrors = true
	}
}

// WithPersonFunc resolves the authenticated user for a request, e.g. from
// session state. The result is attached to captured items.
func WithPersonFunc(fn func(echo.Context) *faultline.Person) Option {
	return func(c *middlewareConfig) {
		c.personFunc = fn
	}
}

// Middleware returns an Echo middleware bound to the given client.
func Middleware(client *faultline.Client, opts ...Option) echo.MiddlewareFunc {
	cfg := &middlewareConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()
			ctx := faultline.WithRoutePath(req.Context(), c.Path())
			ctx = faultline.WithUserIP(ctx, c.RealIP())
			if cfg.personFunc != nil {
				if p := cfg.personFunc(c); p != nil {
					ctx = faultline.WithPerson(ctx, p)
				}
			}
			req = req.WithContext(ctx)
			c.SetRequest(req)

			defer func() {
				r := recover()
				if r == nil {
					return
				}
				panicErr := recoveredError(r)
				// Capture failures never mask the handler fault.
				_ = client.CaptureException(ctx, panicErr,
					faultline.WithRequest(req),
					faultline.WithLevel(faultline.LevelCritical),
				)
				err = echo.NewHTTPError(500).SetInternal(panicErr)
			}()

			err = next(c)
			if err != nil && cfg.captureErrors {
				_ = client.CaptureException(ctx, err, faultline.WithRequest(req))
			}
			return err
		}
	}
}

// recoveredError converts a recovered panic value into an error.
func recoveredError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", recovered)
}
