package timeparser

import (
	"fmt"
	"strings"
	"time"
)

// ParseClock attempts to parse a time-of-day string with multiple formats.
// The returned time carries no meaningful date.
func ParseClock(clockStr string) (time.Time, error) {
	formats := []string{
		"15:04:05",   // HH:mm:ss
		"15:04",      // HH:mm
		"3:04:05 PM", // h:mm:ss AM/PM
		"3:04 PM",    // h:mm AM/PM
		time.RFC3339, // full timestamp, time part only
	}

	clockStr = strings.TrimSpace(clockStr)

	var lastErr error
	for _, format := range formats {
		t, err := time.Parse(format, clockStr)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, fmt.Errorf("failed to parse time of day '%s': %w", clockStr, lastErr)
}

// StripMeridiem keeps only the clock part of "7:25:00 AM" style values
func StripMeridiem(clockStr string) string {
	fields := strings.Fields(clockStr)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
