// scrub.go implements redaction of sensitive header and parameter values.
//
// All scrub functions are copy-producing: inputs are never mutated. Matching
// is by exact key against the redact set; matching non-empty values are
// replaced with a mask of '*' repeated to the length of the value's string
// form. Empty values are left as-is even when their key matches.

package faultline

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const maskChar = "*"

// maskValue builds a same-length mask for the string form of v.
func maskValue(v any) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return strings.Repeat(maskChar, len(s))
}

// ScrubHeaders returns a copy of h with values of redacted keys masked.
// Keys in the redact set are expected in canonical MIME form, matching how
// net/http stores them.
func ScrubHeaders(h http.Header, redact map[string]struct{}) http.Header {
	out := make(http.Header, len(h))
	for k, vals := range h {
		if _, hit := redact[k]; !hit {
			out[k] = append([]string(nil), vals...)
			continue
		}
		masked := make([]string, len(vals))
		for i, v := range vals {
			if v == "" {
				continue
			}
			masked[i] = strings.Repeat(maskChar, len(v))
		}
		out[k] = masked
	}
	return out
}

// ScrubValues returns a copy of v (query or form parameters) with values of
// redacted keys masked.
func ScrubValues(v url.Values, redact map[string]struct{}) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		if _, hit := redact[k]; !hit {
			out[k] = append([]string(nil), vals...)
			continue
		}
		masked := make([]string, len(vals))
		for i, val := range vals {
			if val == "" {
				continue
			}
			masked[i] = strings.Repeat(maskChar, len(val))
		}
		out[k] = masked
	}
	return out
}

// ScrubParams returns a copy of a structured body mapping with values of
// redacted keys masked. Only top-level keys are matched.
func ScrubParams(params map[string]any, redact map[string]struct{}) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		if _, hit := redact[k]; !hit {
			out[k] = v
			continue
		}
		if isEmptyValue(v) {
			out[k] = v
			continue
		}
		out[k] = maskValue(v)
	}
	return out
}

// isEmptyValue reports whether a parameter value should skip masking.
func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	default:
		return false
	}
}
