// item.go defines the canonical report payload assembled by the client.

package faultline

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Level indicates the severity of a captured item.
type Level string

const (
	// LevelDebug is for diagnostic reports.
	LevelDebug Level = "debug"

	// LevelInfo is for informational messages.
	LevelInfo Level = "info"

	// LevelWarning indicates a non-fatal issue that may need attention.
	LevelWarning Level = "warning"

	// LevelError indicates a recoverable error. This is the default level.
	LevelError Level = "error"

	// LevelCritical indicates an unrecoverable error such as a panic.
	LevelCritical Level = "critical"
)

// Language is the constant language tag stamped on every item.
const Language = "go"

// Notifier identifies this client library to the collector.
type Notifier struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Person identifies the end user affected by a report.
type Person struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// PersonProvider is an optional interface that request-scoped user values can
// satisfy to enable automatic identity resolution on captured items.
type PersonProvider interface {
	FaultlinePerson() *Person
}

// ServerInfo describes the host the report originated from.
type ServerInfo struct {
	Host   string `json:"host"`
	Root   string `json:"root,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// Frame is one stack frame of a trace body.
type Frame struct {
	Filename string `json:"filename"`
	Lineno   int    `json:"lineno,omitempty"`
	Method   string `json:"method,omitempty"`
}

// ExceptionInfo names the error class and message of a trace body.
type ExceptionInfo struct {
	Class   string `json:"class"`
	Message string `json:"message"`
}

// Trace is the parsed representation of a captured error.
type Trace struct {
	Frames    []Frame       `json:"frames"`
	Exception ExceptionInfo `json:"exception"`
}

// Message is the body of a log-style report.
type Message struct {
	Body string `json:"body"`
}

// Body holds exactly one report shape: a trace or a message, never both.
type Body struct {
	Trace   *Trace   `json:"trace,omitempty"`
	Message *Message `json:"message,omitempty"`
}

// Item is one normalized report ready for transport. Items are immutable once
// built; the dispatcher owns them after enqueue.
type Item struct {
	// Envelope fields

	// Timestamp is the capture time in unix seconds.
	Timestamp int64

	// Environment is the deployment environment (production, staging, ...).
	Environment string

	// Level is the report severity.
	Level Level

	// Framework names the framework in use, if configured.
	Framework string

	// UUID is a unique 128-bit identifier, hex-encoded (32 chars).
	UUID string

	// Notifier identifies the client that built this item. It is deep-copied
	// at build time so later reconfiguration cannot alter queued items.
	Notifier Notifier

	// CodeVersion is the configured application version, if any.
	CodeVersion string

	// Fingerprint is an optional client-computed grouping hash for trace
	// bodies. The collector may override it server-side.
	Fingerprint string

	// Report content

	// Body holds the trace or message payload.
	Body Body

	// Request is the redacted snapshot of the inbound HTTP request, if one
	// was supplied at capture time.
	Request *RequestInfo

	// Context is the matched route path, if resolvable.
	Context string

	// Person identifies the affected user, if resolvable.
	Person *Person

	// Server describes the reporting host.
	Server ServerInfo

	// Extra holds caller-supplied fields merged into the envelope at marshal
	// time. Keys colliding with envelope fields are dropped at build time.
	Extra map[string]any
}

// reservedItemFields are envelope keys that caller-supplied extras can never
// override.
var reservedItemFields = map[string]struct{}{
	"timestamp":    {},
	"environment":  {},
	"level":        {},
	"language":     {},
	"framework":    {},
	"uuid":         {},
	"notifier":     {},
	"code_version": {},
	"fingerprint":  {},
	"body":         {},
	"request":      {},
	"context":      {},
	"person":       {},
	"server":       {},
}

// MarshalJSON flattens the envelope and merges extra fields. Envelope fields
// always win over extras.
func (it *Item) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 14+len(it.Extra))
	for k, v := range it.Extra {
		m[k] = v
	}
	m["timestamp"] = it.Timestamp
	m["environment"] = it.Environment
	m["level"] = it.Level
	m["language"] = Language
	m["uuid"] = it.UUID
	m["notifier"] = it.Notifier
	m["body"] = it.Body
	m["server"] = it.Server
	if it.Framework != "" {
		m["framework"] = it.Framework
	}
	if it.CodeVersion != "" {
		m["code_version"] = it.CodeVersion
	}
	if it.Fingerprint != "" {
		m["fingerprint"] = it.Fingerprint
	}
	if it.Request != nil {
		m["request"] = it.Request
	}
	if it.Context != "" {
		m["context"] = it.Context
	}
	if it.Person != nil {
		m["person"] = it.Person
	}
	return json.Marshal(m)
}

// RequestInfo is the normalized, redacted snapshot of an inbound HTTP
// request. All values are already scrubbed.
type RequestInfo struct {
	// URL is the reconstructed full request URL.
	URL string

	// Method is the HTTP method.
	Method string

	// Query is the parsed, scrubbed query string mapping.
	Query map[string][]string

	// Headers is the flattened, scrubbed header mapping.
	Headers map[string]string

	// UserIP is the resolved client IP, if any.
	UserIP string

	// Params holds scrubbed structured body parameters. They are attached
	// under a key named for the HTTP method ("POST", "PUT", ...).
	Params map[string]any

	// RawBody holds the body verbatim when it was not a structured mapping.
	RawBody string
}

// MarshalJSON emits the wire shape: the query mapping under "GET" and body
// parameters under a key named for the HTTP method.
func (ri *RequestInfo) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"url":     ri.URL,
		"method":  ri.Method,
		"GET":     ri.Query,
		"headers": ri.Headers,
	}
	if ri.UserIP != "" {
		m["user_ip"] = ri.UserIP
	}
	if ri.Params != nil {
		m[ri.Method] = ri.Params
	}
	if ri.RawBody != "" {
		m["body"] = ri.RawBody
	}
	return json.Marshal(m)
}

// validateBody enforces the one-body-shape invariant.
func (b Body) validate() error {
	if (b.Trace == nil) == (b.Message == nil) {
		return fmt.Errorf("item body must hold exactly one of trace or message")
	}
	return nil
}
