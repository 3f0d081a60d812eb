package validator_test

import (
	"testing"

	"github.com/septivank/petdoor-curfew-worker/internal/validator"
)

func TestValidateSunData_ValidData(t *testing.T) {
	v := validator.NewValidator()

	sunrise, sunset, result := v.ValidateSunData(validator.SunData{
		Status:  "OK",
		Sunrise: "7:25:00 AM",
		Sunset:  "4:10:00 PM",
	})

	if !result.IsValid {
		t.Fatalf("Expected valid result, got invalid: %s", result.Reason)
	}
	if sunrise.Clock() != "07:25:00" {
		t.Errorf("Expected sunrise 07:25:00, got %s", sunrise.Clock())
	}
	if sunset.Clock() != "04:10:00" {
		t.Errorf("Expected sunset kept on 12-hour clock 04:10:00, got %s", sunset.Clock())
	}
}

func TestValidateSunData_BareClock(t *testing.T) {
	v := validator.NewValidator()

	sunrise, sunset, result := v.ValidateSunData(validator.SunData{
		Sunrise: "07:25:00",
		Sunset:  "04:10:00",
	})

	if !result.IsValid {
		t.Fatalf("Expected valid result, got invalid: %s", result.Reason)
	}
	if sunrise.String() != "07:25" || sunset.String() != "04:10" {
		t.Errorf("Unexpected values %s / %s", sunrise, sunset)
	}
}

func TestValidateSunData_BadStatus(t *testing.T) {
	v := validator.NewValidator()

	_, _, result := v.ValidateSunData(validator.SunData{
		Status:  "INVALID_REQUEST",
		Sunrise: "7:25:00 AM",
		Sunset:  "4:10:00 PM",
	})

	if result.IsValid {
		t.Error("Expected invalid result for non-OK status")
	}
}

func TestValidateSunData_EmptySunrise(t *testing.T) {
	v := validator.NewValidator()

	_, _, result := v.ValidateSunData(validator.SunData{Status: "OK", Sunset: "4:10:00 PM"})

	if result.IsValid {
		t.Error("Expected invalid result for empty sunrise")
	}
	if result.Reason != "empty sunrise value" {
		t.Errorf("Expected 'empty sunrise value', got '%s'", result.Reason)
	}
}

func TestValidateSunData_MalformedSunset(t *testing.T) {
	v := validator.NewValidator()

	_, _, result := v.ValidateSunData(validator.SunData{Status: "OK", Sunrise: "7:25:00 AM", Sunset: "dusk"})

	if result.IsValid {
		t.Error("Expected invalid result for malformed sunset")
	}
}
