package validator

import (
	"fmt"
	"strings"

	"github.com/septivank/petdoor-curfew-worker/internal/timeofday"
	"github.com/septivank/petdoor-curfew-worker/tools/timeparser"
)

// ValidationResult holds validation outcome
type ValidationResult struct {
	IsValid bool
	Reason  string
}

// SunData is the raw payload returned by the sun-time source
type SunData struct {
	Status  string
	Sunrise string
	Sunset  string
}

// Validator checks sun-time payloads before they reach the curfew calculator
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSunData parses sunrise and sunset as UTC times of day.
// Any AM/PM suffix is dropped; sunset stays on the 12-hour clock.
func (v *Validator) ValidateSunData(data SunData) (timeofday.TimeOfDay, timeofday.TimeOfDay, ValidationResult) {
	result := ValidationResult{IsValid: true}

	if data.Status != "" && !strings.EqualFold(data.Status, "OK") {
		result.IsValid = false
		result.Reason = fmt.Sprintf("sun-time source returned status %q", data.Status)
		return 0, 0, result
	}

	sunrise, reason := parseEvent("sunrise", data.Sunrise)
	if reason != "" {
		result.IsValid = false
		result.Reason = reason
		return 0, 0, result
	}

	sunset, reason := parseEvent("sunset", data.Sunset)
	if reason != "" {
		result.IsValid = false
		result.Reason = reason
		return sunrise, 0, result
	}

	return sunrise, sunset, result
}

func parseEvent(name, value string) (timeofday.TimeOfDay, string) {
	clock := timeparser.StripMeridiem(value)
	if clock == "" {
		return 0, fmt.Sprintf("empty %s value", name)
	}

	t, err := timeofday.Parse(clock)
	if err != nil {
		return 0, fmt.Sprintf("invalid %s value: %v", name, err)
	}

	return t, ""
}
