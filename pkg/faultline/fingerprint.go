// fingerprint.go generates stable hashes for grouping similar reports.

package faultline

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// TraceFingerprint generates a grouping hash for a trace body.
// The fingerprint is based on:
//   - the exception class
//   - the first 3 frame methods
//
// It ignores variable data like messages, timestamps, UUIDs, and line
// numbers, so repeated occurrences of the same failure hash identically.
// The collector may override it with its own grouping.
func TraceFingerprint(trace *Trace) string {
	if trace == nil {
		return ""
	}

	parts := []string{trace.Exception.Class}
	for i, f := range trace.Frames {
		if i >= 3 {
			break
		}
		parts = append(parts, f.Method)
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))

	// Hex-encoded first 16 bytes (32 hex chars)
	return hex.EncodeToString(hash[:16])
}

// MessageFingerprint generates a grouping hash for a message body, based on
// the level and the message text with digit runs normalized away.
func MessageFingerprint(level Level, msg *Message) string {
	if msg == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(string(level))
	b.WriteString("|")
	for _, r := range msg.Body {
		if r >= '0' && r <= '9' {
			continue
		}
		b.WriteRune(r)
	}

	hash := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(hash[:16])
}

// shortHash is a compact fingerprint form used in diagnostics.
func shortHash(fingerprint string) string {
	if len(fingerprint) <= 8 {
		return fingerprint
	}
	return fingerprint[:8]
}
