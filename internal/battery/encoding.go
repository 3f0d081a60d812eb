package battery

import (
	"fmt"
	"math"
	"strings"

	"github.com/septivank/petdoor-curfew-worker/internal/errs"
)

// Reference voltages observed on the door: 5.679 reads full, 4.849 and below read empty.
const (
	DefaultEmptyVoltage = 4.849
	DefaultFullVoltage  = 5.679
)

// Encoding converts raw battery telemetry into a charge percentage.
// The active encoding depends on the firmware the door reports with.
type Encoding interface {
	Name() string
	Percent(raw float64) float64
}

// Percentage is telemetry already expressed as 0-100
type Percentage struct{}

func (Percentage) Name() string { return "percentage" }

func (Percentage) Percent(raw float64) float64 { return raw }

// Tenths is telemetry on a 0-10 scale
type Tenths struct{}

func (Tenths) Name() string { return "tenths" }

func (Tenths) Percent(raw float64) float64 { return raw * 10 }

// Voltage interpolates linearly between an empty and a full reference voltage
type Voltage struct {
	Empty float64
	Full  float64
}

func (Voltage) Name() string { return "voltage" }

func (v Voltage) Percent(raw float64) float64 {
	return (raw - v.Empty) / (v.Full - v.Empty) * 100
}

// ParseEncoding selects an encoding by name
func ParseEncoding(name string, emptyVoltage, fullVoltage float64) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "percentage", "percent":
		return Percentage{}, nil
	case "tenths":
		return Tenths{}, nil
	case "voltage", "":
		if fullVoltage <= emptyVoltage {
			return nil, fmt.Errorf("%w: full voltage %.3f must be above empty voltage %.3f",
				errs.ErrConfiguration, fullVoltage, emptyVoltage)
		}
		return Voltage{Empty: emptyVoltage, Full: fullVoltage}, nil
	default:
		return nil, fmt.Errorf("%w: unknown battery encoding %q", errs.ErrConfiguration, name)
	}
}

func clampPercent(p float64) int {
	return int(math.Min(100, math.Max(0, math.Round(p))))
}
