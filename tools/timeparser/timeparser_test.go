package timeparser_test

import (
	"testing"

	"github.com/septivank/petdoor-curfew-worker/tools/timeparser"
)

func TestParseClock_Formats(t *testing.T) {
	testCases := []struct {
		input  string
		hour   int
		minute int
		second int
	}{
		{"07:25:00", 7, 25, 0},
		{"7:25:00", 7, 25, 0},
		{"16:30", 16, 30, 0},
		{"4:10:00 PM", 16, 10, 0},
		{"12:05:10 AM", 0, 5, 10},
		{"  08:30:00 ", 8, 30, 0},
		{"2025-12-29T07:41:12+00:00", 7, 41, 12},
	}

	for _, tc := range testCases {
		result, err := timeparser.ParseClock(tc.input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.input, err)
			continue
		}
		if result.Hour() != tc.hour || result.Minute() != tc.minute || result.Second() != tc.second {
			t.Errorf("%q: expected %02d:%02d:%02d, got %s", tc.input, tc.hour, tc.minute, tc.second, result.Format("15:04:05"))
		}
	}
}

func TestParseClock_Invalid(t *testing.T) {
	for _, input := range []string{"", "invalid-time", "25:00:00", "07:61"} {
		if _, err := timeparser.ParseClock(input); err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}

func TestStripMeridiem(t *testing.T) {
	if got := timeparser.StripMeridiem("4:10:00 PM"); got != "4:10:00" {
		t.Errorf("Expected 4:10:00, got %s", got)
	}
	if got := timeparser.StripMeridiem("07:25:00"); got != "07:25:00" {
		t.Errorf("Expected 07:25:00, got %s", got)
	}
	if got := timeparser.StripMeridiem("   "); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}
