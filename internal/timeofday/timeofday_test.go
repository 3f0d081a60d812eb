package timeofday_test

import (
	"testing"
	"time"

	"github.com/septivank/petdoor-curfew-worker/internal/timeofday"
)

func TestToLocal_WrapsPastMidnight(t *testing.T) {
	conv := timeofday.NewConverter(90 * time.Minute)

	result := conv.ToLocal(timeofday.New(23, 45, 0))

	if result.String() != "01:15" {
		t.Errorf("Expected 01:15, got %s", result)
	}
}

func TestToLocal_WrapsBeforeMidnight(t *testing.T) {
	conv := timeofday.NewConverter(-5 * time.Hour)

	result := conv.ToLocal(timeofday.New(2, 30, 0))

	if result.String() != "21:30" {
		t.Errorf("Expected 21:30, got %s", result)
	}
}

func TestToLocal_ZeroOffset(t *testing.T) {
	conv := timeofday.NewConverter(0)
	in := timeofday.MustParse("07:25:00")

	if got := conv.ToLocal(in); got != in {
		t.Errorf("Expected %s, got %s", in.Clock(), got.Clock())
	}
}

func TestConverterAt_UsesZoneOffset(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	winter := timeofday.ConverterAt(paris, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC))
	if winter.Offset != time.Hour {
		t.Errorf("Expected winter offset 1h, got %v", winter.Offset)
	}

	summer := timeofday.ConverterAt(paris, time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC))
	if summer.Offset != 2*time.Hour {
		t.Errorf("Expected summer offset 2h, got %v", summer.Offset)
	}
}

func TestNew_Normalizes(t *testing.T) {
	testCases := []struct {
		hour, minute, second int
		expected             string
	}{
		{24, 0, 0, "00:00:00"},
		{25, 30, 0, "01:30:00"},
		{-1, 0, 0, "23:00:00"},
		{7, 90, 0, "08:30:00"},
	}

	for _, tc := range testCases {
		got := timeofday.New(tc.hour, tc.minute, tc.second).Clock()
		if got != tc.expected {
			t.Errorf("New(%d, %d, %d): expected %s, got %s", tc.hour, tc.minute, tc.second, tc.expected, got)
		}
	}
}

func TestEarliestLatest(t *testing.T) {
	a := timeofday.MustParse("07:00")
	b := timeofday.MustParse("07:25")

	if timeofday.Earliest(a, b) != a || timeofday.Earliest(b, a) != a {
		t.Error("Expected Earliest to return 07:00")
	}
	if timeofday.Latest(a, b) != b || timeofday.Latest(b, a) != b {
		t.Error("Expected Latest to return 07:25")
	}
}

func TestUnmarshalText(t *testing.T) {
	var tod timeofday.TimeOfDay
	if err := tod.UnmarshalText([]byte("16:30")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tod.String() != "16:30" {
		t.Errorf("Expected 16:30, got %s", tod)
	}

	if err := tod.UnmarshalText([]byte("half past four")); err == nil {
		t.Error("Expected error for malformed value")
	}
}
