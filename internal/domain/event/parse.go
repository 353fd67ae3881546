package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp")

// accepted input layouts, most specific first. Values without an offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NormalizeTime is the single storage form for timestamps: UTC, millisecond precision.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidTimestamp
	}

	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return NormalizeTime(t), nil
		}
	}

	return time.Time{}, ErrInvalidTimestamp
}

// ParseCapacity accepts a JSON integer or a numeric string and reports whether
// the value is a positive integer.
func ParseCapacity(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}

		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 || n > math.MaxInt32 {
			return 0, false
		}
		return n, true
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}

	if f != math.Trunc(f) || f <= 0 || f > math.MaxInt32 {
		return 0, false
	}

	return int(f), true
}
