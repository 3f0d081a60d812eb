// Package battery normalises door battery telemetry and decides when to alert.
package battery

import (
	"fmt"

	"github.com/septivank/petdoor-curfew-worker/internal/errs"
)

// Estimate is a normalised battery reading
type Estimate struct {
	Raw      float64
	Percent  int
	Encoding string
	Alert    bool
}

// Interpreter applies one encoding and an alert threshold
type Interpreter struct {
	encoding       Encoding
	alertThreshold int
}

// NewInterpreter creates an interpreter; alertThreshold is a percentage
func NewInterpreter(encoding Encoding, alertThreshold int) (*Interpreter, error) {
	if encoding == nil {
		return nil, fmt.Errorf("%w: battery encoding is required", errs.ErrConfiguration)
	}
	if alertThreshold < 0 || alertThreshold > 100 {
		return nil, fmt.Errorf("%w: battery alert threshold must be between 0-100, got: %d", errs.ErrConfiguration, alertThreshold)
	}
	return &Interpreter{
		encoding:       encoding,
		alertThreshold: alertThreshold,
	}, nil
}

// Interpret converts raw telemetry into an estimate.
// A zero percentage means no reading and never alerts.
func (i *Interpreter) Interpret(raw float64) Estimate {
	percent := clampPercent(i.encoding.Percent(raw))
	return Estimate{
		Raw:      raw,
		Percent:  percent,
		Encoding: i.encoding.Name(),
		Alert:    percent > 0 && percent <= i.alertThreshold,
	}
}

