// parse.go provides the default exception parser. Parsing is pluggable via
// WithErrorParser; the dispatcher treats it as an opaque collaborator.

package faultline

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrorParser extracts a trace from an error value. A non-nil error means the
// value could not be parsed; the item is not enqueued in that case.
type ErrorParser func(err error) (*Trace, error)

// parseError is the default ErrorParser. The class is the dynamic error
// type, the message is err.Error(), and frames come from the calling
// goroutine's stack with client-internal frames skipped.
func parseError(err error) (*Trace, error) {
	if err == nil {
		return nil, ErrNotError
	}
	return &Trace{
		Frames: callerFrames(),
		Exception: ExceptionInfo{
			Class:   errorClass(err),
			Message: err.Error(),
		},
	}, nil
}

// errorClass names the dynamic type of err, without the pointer marker.
func errorClass(err error) string {
	class := fmt.Sprintf("%T", err)
	class = strings.TrimPrefix(class, "*")
	if class == "errors.errorString" {
		return "error"
	}
	return class
}

const maxFrames = 32

// callerFrames walks the current stack, dropping runtime and faultline
// internals so the trace starts at the caller of the capture operation.
func callerFrames() []Frame {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	var out []Frame
	for {
		f, more := frames.Next()
		if !internalFrame(f.Function) {
			out = append(out, Frame{
				Filename: f.File,
				Lineno:   f.Line,
				Method:   f.Function,
			})
		}
		if !more {
			break
		}
	}
	return out
}

// internalFrame reports whether a function belongs to this library or the
// runtime and should be hidden from traces.
func internalFrame(fn string) bool {
	if strings.HasPrefix(fn, "runtime.") {
		return true
	}
	return strings.Contains(fn, "faultlinehq/faultline-go/pkg/faultline") &&
		!strings.Contains(fn, "_test")
}
