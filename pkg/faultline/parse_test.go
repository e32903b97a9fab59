package faultline

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestParseError_BasicError(t *testing.T) {
	trace, err := parseError(errors.New("something broke"))
	if err != nil {
		t.Fatalf("parseError: %v", err)
	}

	if trace.Exception.Class != "error" {
		t.Errorf("class = %q, want error", trace.Exception.Class)
	}
	if trace.Exception.Message != "something broke" {
		t.Errorf("message = %q", trace.Exception.Message)
	}
	if len(trace.Frames) == 0 {
		t.Error("trace has no frames")
	}
}

func TestParseError_TypedError(t *testing.T) {
	typed := &fs.PathError{Op: "open", Path: "/nope", Err: fs.ErrNotExist}

	trace, err := parseError(typed)
	if err != nil {
		t.Fatalf("parseError: %v", err)
	}
	if trace.Exception.Class != "fs.PathError" {
		t.Errorf("class = %q, want fs.PathError", trace.Exception.Class)
	}
}

func TestParseError_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("query users: %w", errors.New("conn refused"))

	trace, err := parseError(wrapped)
	if err != nil {
		t.Fatalf("parseError: %v", err)
	}
	if trace.Exception.Class != "fmt.wrapError" {
		t.Errorf("class = %q, want fmt.wrapError", trace.Exception.Class)
	}
	if trace.Exception.Message != "query users: conn refused" {
		t.Errorf("message = %q", trace.Exception.Message)
	}
}

func TestParseError_NilFailsFast(t *testing.T) {
	if _, err := parseError(nil); !errors.Is(err, ErrNotError) {
		t.Errorf("error = %v, want ErrNotError", err)
	}
}

func TestCallerFrames_SkipsRuntime(t *testing.T) {
	trace, err := parseError(errors.New("boom"))
	if err != nil {
		t.Fatalf("parseError: %v", err)
	}

	for _, f := range trace.Frames {
		if strings.HasPrefix(f.Method, "runtime.") {
			t.Errorf("runtime frame leaked into trace: %s", f.Method)
		}
	}
}

func TestCallerFrames_IncludesTestCaller(t *testing.T) {
	trace, err := parseError(errors.New("boom"))
	if err != nil {
		t.Fatalf("parseError: %v", err)
	}

	var found bool
	for _, f := range trace.Frames {
		if strings.Contains(f.Method, "TestCallerFrames_IncludesTestCaller") {
			found = true
			if f.Filename == "" || f.Lineno == 0 {
				t.Errorf("caller frame missing location: %+v", f)
			}
		}
	}
	if !found {
		t.Error("trace does not reach back to the capture call site")
	}
}

func TestErrorClass(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"errorString", errors.New("x"), "error"},
		{"wrapError", fmt.Errorf("w: %w", errors.New("x")), "fmt.wrapError"},
		{"pointer type trimmed", &fs.PathError{Op: "open", Err: fs.ErrNotExist}, "fs.PathError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorClass(tt.err); got != tt.want {
				t.Errorf("errorClass() = %q, want %q", got, tt.want)
			}
		})
	}
}
