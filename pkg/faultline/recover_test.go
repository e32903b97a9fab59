package faultline

import (
	"context"
	"errors"
	"testing"
)

func TestRecover_CapturesPanicAsCritical(t *testing.T) {
	c, transport := newRecordedClient(t)

	func() {
		defer Recover(context.Background(), c)
		panic("worker exploded")
	}()

	item := lastItem(t, transport)
	if item.Level != LevelCritical {
		t.Errorf("level = %q, want critical", item.Level)
	}
	if item.Body.Trace == nil || item.Body.Trace.Exception.Message != "panic: worker exploded" {
		t.Errorf("trace = %+v", item.Body.Trace)
	}
}

func TestRecover_PreservesErrorPanics(t *testing.T) {
	c, transport := newRecordedClient(t)
	sentinel := errors.New("db gone")

	func() {
		defer Recover(context.Background(), c)
		panic(sentinel)
	}()

	if item := lastItem(t, transport); item.Body.Trace.Exception.Message != "db gone" {
		t.Errorf("message = %q", item.Body.Trace.Exception.Message)
	}
}

func TestRecover_DoesNotRepanic(t *testing.T) {
	c, _ := newRecordedClient(t)

	// The panic is swallowed, so control returns to the caller normally.
	func() {
		defer Recover(context.Background(), c)
		panic("value")
	}()
}

func TestRecover_NoPanicIsNoop(t *testing.T) {
	c, transport := newRecordedClient(t)

	func() {
		defer Recover(context.Background(), c)
	}()

	if len(transport.getBatches()) != 0 {
		t.Error("clean return must not capture anything")
	}
}
