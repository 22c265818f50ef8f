// Package timefmt normalizes the timestamp representations accepted from the VR client
// into one canonical RFC 3339 UTC form.
package timefmt

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatError reports a timestamp value that looked numeric but could not be parsed.
type FormatError struct {
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("timefmt: invalid timestamp %q: %v", e.Value, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Normalize converts any accepted timestamp representation into an RFC 3339 UTC string.
//
// Accepted inputs:
//   - float64/float32/int/int64/json.Number: seconds since the Unix epoch
//   - a string of digits, optionally with one decimal point: parsed as epoch seconds
//   - any other string: assumed already canonical and returned unchanged, except that
//     a zone-less RFC 3339 timestamp gets a UTC designator appended
//   - time.Time: formatted in UTC
//   - nil: empty string
//
// The only error is a *FormatError for a numeric-looking string that fails to parse.
// No current caller can produce one past the shape check, but future input sources may.
func Normalize(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case float64:
		return fromEpoch(t), nil
	case float32:
		return fromEpoch(float64(t)), nil
	case int:
		return fromEpoch(float64(t)), nil
	case int64:
		return fromEpoch(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return "", &FormatError{Value: t.String(), Err: err}
		}
		return fromEpoch(f), nil
	case string:
		if !looksNumeric(t) {
			return withZone(t), nil
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return "", &FormatError{Value: t, Err: err}
		}
		return fromEpoch(f), nil
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// looksNumeric reports whether s is all digits with at most one decimal point.
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	dots := 0
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}

// fromEpoch formats seconds since the Unix epoch as RFC 3339 UTC,
// preserving sub-second precision.
func fromEpoch(sec float64) string {
	ns := int64(math.Round(sec * float64(time.Second)))
	return time.Unix(0, ns).UTC().Format(time.RFC3339Nano)
}

// withZone appends a UTC designator to a zone-less RFC 3339 timestamp.
// Any string that does not parse as a zone-less timestamp is returned unchanged.
func withZone(s string) string {
	if strings.HasSuffix(s, "Z") || zoneRFC3339(s) {
		return s
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.999999999"} {
		if _, err := time.Parse(layout, s); err == nil {
			return s + "Z"
		}
	}
	return s
}

// zoneRFC3339 reports whether s parses as RFC 3339 with an explicit zone offset.
func zoneRFC3339(s string) bool {
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}
