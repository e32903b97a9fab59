// request.go builds the normalized, redacted snapshot of an inbound HTTP
// request that gets attached to captured items.

package faultline

import (
	"bytes"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
)

// noHost is the sentinel reported when the request carries no Host header.
const noHost = "<no host>"

// maxBodyBytes caps how much of a request body the builder will read.
const maxBodyBytes = 1 << 20

// BuildRequestContext extracts a normalized, redacted snapshot of r.
// It never fails: unresolvable pieces (route, identity, body) are omitted.
func (c *Client) BuildRequestContext(r *http.Request) *RequestInfo {
	if c.requestDataFunc != nil {
		return c.requestDataFunc(r)
	}

	host := r.Host
	if host == "" {
		host = noHost
	}

	// An explicit scheme on the request wins; only its absence triggers the
	// connection-encryption check.
	scheme := r.URL.Scheme
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}

	fullURL := scheme + "://" + host + r.URL.RequestURI()

	// Decompose the reconstructed URL to obtain the query mapping.
	query := url.Values{}
	if parsed, err := url.Parse(fullURL); err == nil {
		query = parsed.Query()
	} else {
		c.log.Debug().Err(err).Msg("request url did not re-parse")
	}

	info := &RequestInfo{
		URL:     fullURL,
		Method:  r.Method,
		Query:   ScrubValues(query, c.fieldRedact),
		Headers: c.scrubbedFlatHeaders(r.Header),
		UserIP:  c.resolveUserIP(r),
	}
	c.attachBody(r, info)
	return info
}

// scrubbedFlatHeaders scrubs headers and flattens multi-valued ones.
func (c *Client) scrubbedFlatHeaders(h http.Header) map[string]string {
	scrubbed := ScrubHeaders(h, c.headerRedact)
	flat := make(map[string]string, len(scrubbed))
	for k, vals := range scrubbed {
		flat[k] = strings.Join(vals, ", ")
	}
	return flat
}

// resolveUserIP picks the client IP. Precedence: context-attached IP, then
// X-Real-Ip, then the first X-Forwarded-For hop, then the connection's
// remote address.
func (c *Client) resolveUserIP(r *http.Request) string {
	if ip, ok := UserIPFromContext(r.Context()); ok {
		return ip
	}
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return ""
}

// attachBody captures the request body. Structured bodies (form or JSON
// object) are scrubbed as parameters and attached under a key named for the
// HTTP method; scalar bodies are attached verbatim; everything is
// best-effort and size-limited.
func (c *Client) attachBody(r *http.Request, info *RequestInfo) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch ct {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if r.PostForm == nil {
			_ = r.ParseForm() // best-effort; an unreadable body is omitted
		}
		if len(r.PostForm) > 0 {
			info.Params = valuesToParams(ScrubValues(r.PostForm, c.fieldRedact))
		}
	case "application/json":
		raw, ok := c.readBody(r)
		if !ok || len(bytes.TrimSpace(raw)) == 0 {
			return
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			c.log.Debug().Err(err).Msg("request body is not valid json")
			info.RawBody = string(raw)
			return
		}
		if m, isMap := decoded.(map[string]any); isMap {
			info.Params = ScrubParams(m, c.fieldRedact)
		} else {
			info.RawBody = string(raw)
		}
	}
}

// readBody reads and restores the request body so downstream handlers still
// see it.
func (c *Client) readBody(r *http.Request) ([]byte, bool) {
	if r.Body == nil {
		return nil, false
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		c.log.Debug().Err(err).Msg("request body read failed")
		return nil, false
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return raw, true
}

// valuesToParams flattens url.Values into the params mapping, keeping
// single-valued entries as plain strings.
func valuesToParams(v url.Values) map[string]any {
	params := make(map[string]any, len(v))
	for k, vals := range v {
		if len(vals) == 1 {
			params[k] = vals[0]
		} else {
			params[k] = vals
		}
	}
	return params
}

// resolveRoute finds the matched route path for the request. Adapters attach
// it to the context; Go 1.22+ ServeMux exposes it as r.Pattern. Failures are
// silent: the route is simply omitted.
func (c *Client) resolveRoute(r *http.Request) string {
	if path, ok := RoutePathFromContext(r.Context()); ok {
		return path
	}
	if r.Pattern != "" {
		return r.Pattern
	}
	c.log.Debug().Str("path", r.URL.Path).Msg("no matched route for request")
	return ""
}

// resolvePerson finds the affected user for the request, if any adapter or
// caller attached one.
func (c *Client) resolvePerson(r *http.Request) *Person {
	p, _ := PersonFromContext(r.Context())
	return p
}
