// context.go provides helpers for attaching capture enrichment (person,
// client IP, matched route) to a request's context.Context. Framework
// adapters set these; the request context builder reads them.

package faultline

import "context"

// Context key types (unexported to avoid collisions)
type personKey struct{}
type userIPKey struct{}
type routePathKey struct{}

// WithPerson returns a context with the affected user attached. It takes
// precedence over any PersonProvider or resolver function on the context.
func WithPerson(ctx context.Context, p *Person) context.Context {
	return context.WithValue(ctx, personKey{}, p)
}

// PersonFromContext resolves the affected user from context.
//
// Resolution precedence: an explicitly attached *Person, then a value
// implementing PersonProvider, then a func() *Person resolver. Returns nil
// and false if none is present.
func PersonFromContext(ctx context.Context) (*Person, bool) {
	switch v := ctx.Value(personKey{}).(type) {
	case *Person:
		return v, v != nil
	case PersonProvider:
		p := v.FaultlinePerson()
		return p, p != nil
	case func() *Person:
		p := v()
		return p, p != nil
	}
	return nil, false
}

// WithPersonProvider returns a context carrying a lazily-resolved identity.
// The provider is invoked at capture time.
func WithPersonProvider(ctx context.Context, p PersonProvider) context.Context {
	return context.WithValue(ctx, personKey{}, p)
}

// WithPersonFunc returns a context carrying an identity resolver function.
func WithPersonFunc(ctx context.Context, fn func() *Person) context.Context {
	return context.WithValue(ctx, personKey{}, fn)
}

// WithUserIP returns a context with the resolved client IP attached. It wins
// over header-based IP extraction.
func WithUserIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, userIPKey{}, ip)
}

// UserIPFromContext extracts the client IP from context.
// Returns empty string and false if not set or empty.
func UserIPFromContext(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(userIPKey{}).(string)
	return ip, ok && ip != ""
}

// WithRoutePath returns a context with the framework-matched route path
// attached (e.g. "/users/:id").
func WithRoutePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, routePathKey{}, path)
}

// RoutePathFromContext extracts the matched route path from context.
// Returns empty string and false if not set or empty.
func RoutePathFromContext(ctx context.Context) (string, bool) {
	path, ok := ctx.Value(routePathKey{}).(string)
	return path, ok && path != ""
}
