package types

import (
	"fmt"
	"strings"
	"time"
)

// Accepted layouts for data_emitere / data_primire. The fractional part is optional when
// parsing even though the layouts omit it.
var timestampLayouts = []string{
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-0700",
}

// ParseTimestamp parses "YYYY-MM-DD HH:MM:SS.ffffff±HH:MM" into an offset-aware time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q: %w", s, firstErr)
}

// EpochSeconds converts a timestamp string to Unix seconds, dropping the sub-second part.
func EpochSeconds(s string) (int64, error) {
	t, err := ParseTimestamp(s)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}
