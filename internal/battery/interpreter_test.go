package battery_test

import (
	"errors"
	"testing"

	"github.com/septivank/petdoor-curfew-worker/internal/battery"
	"github.com/septivank/petdoor-curfew-worker/internal/errs"
)

func newVoltageInterpreter(t *testing.T, threshold int) *battery.Interpreter {
	t.Helper()
	enc, err := battery.ParseEncoding("voltage", battery.DefaultEmptyVoltage, battery.DefaultFullVoltage)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	interp, err := battery.NewInterpreter(enc, threshold)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return interp
}

func TestInterpret_VoltageReadings(t *testing.T) {
	interp := newVoltageInterpreter(t, 0)

	testCases := []struct {
		raw     float64
		percent int
	}{
		{4.849, 0},
		{5.679, 100},
		{5.188, 41},
		{3.916, 0},
		{5.9, 100},
	}

	for _, tc := range testCases {
		estimate := interp.Interpret(tc.raw)
		if estimate.Percent != tc.percent {
			t.Errorf("raw %.3f: expected %d%%, got %d%%", tc.raw, tc.percent, estimate.Percent)
		}
		if estimate.Encoding != "voltage" {
			t.Errorf("Expected encoding voltage, got %s", estimate.Encoding)
		}
	}
}

func TestInterpret_Tenths(t *testing.T) {
	interp, err := battery.NewInterpreter(battery.Tenths{}, 20)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	estimate := interp.Interpret(3)

	if estimate.Percent != 30 {
		t.Errorf("Expected 30%%, got %d%%", estimate.Percent)
	}
	if estimate.Alert {
		t.Error("Expected no alert at 30% with threshold 20")
	}
}

func TestInterpret_PercentagePassthrough(t *testing.T) {
	interp, err := battery.NewInterpreter(battery.Percentage{}, 25)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	estimate := interp.Interpret(22.4)

	if estimate.Percent != 22 {
		t.Errorf("Expected 22%%, got %d%%", estimate.Percent)
	}
	if !estimate.Alert {
		t.Error("Expected alert at 22% with threshold 25")
	}
}

func TestInterpret_AlertBoundaries(t *testing.T) {
	interp, err := battery.NewInterpreter(battery.Percentage{}, 30)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	testCases := []struct {
		raw   float64
		alert bool
	}{
		{0, false},
		{1, true},
		{30, true},
		{31, false},
		{100, false},
	}

	for _, tc := range testCases {
		if got := interp.Interpret(tc.raw).Alert; got != tc.alert {
			t.Errorf("raw %.0f: expected alert=%v, got %v", tc.raw, tc.alert, got)
		}
	}
}

func TestInterpret_ZeroThresholdNeverAlerts(t *testing.T) {
	interp := newVoltageInterpreter(t, 0)

	for _, raw := range []float64{0, 4.849, 4.86, 5.679} {
		if interp.Interpret(raw).Alert {
			t.Errorf("raw %.3f: expected no alert with threshold 0", raw)
		}
	}
}

func TestParseEncoding(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{"percentage", "percentage"},
		{"Tenths", "tenths"},
		{"voltage", "voltage"},
		{"", "voltage"},
	}

	for _, tc := range testCases {
		enc, err := battery.ParseEncoding(tc.name, battery.DefaultEmptyVoltage, battery.DefaultFullVoltage)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.name, err)
			continue
		}
		if enc.Name() != tc.expected {
			t.Errorf("%q: expected %s, got %s", tc.name, tc.expected, enc.Name())
		}
	}
}

func TestParseEncoding_Invalid(t *testing.T) {
	if _, err := battery.ParseEncoding("millivolts", 0, 0); !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
	if _, err := battery.ParseEncoding("voltage", 5.6, 4.8); !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for inverted references, got %v", err)
	}
}

func TestNewInterpreter_InvalidThreshold(t *testing.T) {
	for _, threshold := range []int{-1, 101} {
		if _, err := battery.NewInterpreter(battery.Percentage{}, threshold); !errors.Is(err, errs.ErrConfiguration) {
			t.Errorf("threshold %d: expected ErrConfiguration, got %v", threshold, err)
		}
	}
	if _, err := battery.NewInterpreter(nil, 10); err == nil {
		t.Error("Expected error for nil encoding")
	}
}
