// Package curfew turns sunrise and sunset into the door's daily lock window.
package curfew

import (
	"time"

	"github.com/septivank/petdoor-curfew-worker/internal/season"
	"github.com/septivank/petdoor-curfew-worker/internal/timeofday"
)

// Window is the curfew pushed to the door, in local time
type Window struct {
	Enabled    bool
	UnlockTime timeofday.TimeOfDay
	LockTime   timeofday.TimeOfDay
}

// Calculator computes curfew windows for a fixed local offset
type Calculator struct {
	converter timeofday.Converter
}

// NewCalculator creates a calculator that converts sun times with converter
func NewCalculator(converter timeofday.Converter) *Calculator {
	return &Calculator{converter: converter}
}

// Compute derives the window from raw UTC sun times and the active rule.
// sunset is expected on a 12-hour clock, as the sun-time source delivers it.
func (c *Calculator) Compute(sunrise, sunset timeofday.TimeOfDay, rule season.Rule) Window {
	return Window{
		Enabled:    true,
		UnlockTime: c.UnlockTime(sunrise, rule),
		LockTime:   c.LockTime(sunset, rule),
	}
}

// UnlockTime extends the morning by the sunrise delta, never past the ceiling
func (c *Calculator) UnlockTime(sunrise timeofday.TimeOfDay, rule season.Rule) timeofday.TimeOfDay {
	unlock := c.converter.ToLocal(sunrise).Add(rule.SunriseOffset())
	return timeofday.Earliest(unlock, rule.UnlockCeiling)
}

// LockTime shortens the evening by the sunset delta, never before the floor
func (c *Calculator) LockTime(sunset timeofday.TimeOfDay, rule season.Rule) timeofday.TimeOfDay {
	lock := c.converter.ToLocal(afternoon(sunset)).Add(-rule.SunsetOffset())
	return timeofday.Latest(lock, rule.LockFloor)
}

// afternoon moves a 12-hour clock value into the afternoon. Unlike a plain
// +12h, a 12:xx value is left alone so a midday sunset is not pushed to midnight.
func afternoon(t timeofday.TimeOfDay) timeofday.TimeOfDay {
	if t.Hour() < 12 {
		return t.Add(12 * time.Hour)
	}
	return t
}
