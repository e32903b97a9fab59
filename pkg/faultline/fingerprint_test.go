package faultline

import "testing"

func sampleTrace(class string, methods ...string) *Trace {
	trace := &Trace{Exception: ExceptionInfo{Class: class, Message: "msg"}}
	for i, m := range methods {
		trace.Frames = append(trace.Frames, Frame{
			Filename: "/app/main.go",
			Method:   m,
			Lineno:   10 + i,
		})
	}
	return trace
}

func TestTraceFingerprint_Stable(t *testing.T) {
	a := TraceFingerprint(sampleTrace("error", "main.run", "main.main"))
	b := TraceFingerprint(sampleTrace("error", "main.run", "main.main"))

	if a != b {
		t.Errorf("same trace shape hashed differently: %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Errorf("fingerprint length = %d, want 32 hex chars", len(a))
	}
}

func TestTraceFingerprint_IgnoresMessageAndLines(t *testing.T) {
	a := sampleTrace("error", "main.run")
	a.Exception.Message = "timeout after 30s"
	a.Frames[0].Lineno = 100

	b := sampleTrace("error", "main.run")
	b.Exception.Message = "timeout after 45s"
	b.Frames[0].Lineno = 200

	if TraceFingerprint(a) != TraceFingerprint(b) {
		t.Error("messages and line numbers must not affect grouping")
	}
}

func TestTraceFingerprint_ClassAndFramesDiscriminate(t *testing.T) {
	base := TraceFingerprint(sampleTrace("error", "main.run"))

	if got := TraceFingerprint(sampleTrace("fs.PathError", "main.run")); got == base {
		t.Error("different classes must hash differently")
	}
	if got := TraceFingerprint(sampleTrace("error", "main.other")); got == base {
		t.Error("different call sites must hash differently")
	}
}

func TestTraceFingerprint_OnlyFirstThreeFramesMatter(t *testing.T) {
	a := TraceFingerprint(sampleTrace("error", "f1", "f2", "f3", "f4"))
	b := TraceFingerprint(sampleTrace("error", "f1", "f2", "f3", "different"))

	if a != b {
		t.Error("frames beyond the third must not affect grouping")
	}
}

func TestTraceFingerprint_NilTrace(t *testing.T) {
	if got := TraceFingerprint(nil); got != "" {
		t.Errorf("nil trace fingerprint = %q, want empty", got)
	}
}

func TestMessageFingerprint_NormalizesDigits(t *testing.T) {
	a := MessageFingerprint(LevelError, &Message{Body: "request 123 failed"})
	b := MessageFingerprint(LevelError, &Message{Body: "request 456 failed"})

	if a != b {
		t.Error("digit runs must not affect grouping")
	}
}

func TestMessageFingerprint_LevelDiscriminates(t *testing.T) {
	a := MessageFingerprint(LevelError, &Message{Body: "disk almost full"})
	b := MessageFingerprint(LevelWarning, &Message{Body: "disk almost full"})

	if a == b {
		t.Error("levels must hash differently")
	}
}

func TestMessageFingerprint_NilMessage(t *testing.T) {
	if got := MessageFingerprint(LevelError, nil); got != "" {
		t.Errorf("nil message fingerprint = %q, want empty", got)
	}
}

func TestShortHash(t *testing.T) {
	if got := shortHash("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortHash = %q", got)
	}
	if got := shortHash("abc"); got != "abc" {
		t.Errorf("short input = %q, want unchanged", got)
	}
}
