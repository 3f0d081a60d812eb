// Package timeofday models wall-clock values without a date and converts them
// between UTC and the local frame used for device commands.
package timeofday

import (
	"fmt"
	"time"

	"github.com/septivank/petdoor-curfew-worker/tools/timeparser"
)

const day = 24 * time.Hour

// TimeOfDay is an offset from midnight, always within [00:00:00, 24:00:00)
type TimeOfDay time.Duration

// New builds a TimeOfDay, wrapping out-of-range components around midnight
func New(hour, minute, second int) TimeOfDay {
	d := time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second
	return normalize(d)
}

// FromTime keeps only the clock part of t
func FromTime(t time.Time) TimeOfDay {
	return New(t.Hour(), t.Minute(), t.Second())
}

// Parse reads "HH:MM:SS", "HH:MM" or "h:mm:ss AM" values
func Parse(s string) (TimeOfDay, error) {
	t, err := timeparser.ParseClock(s)
	if err != nil {
		return 0, err
	}
	return FromTime(t), nil
}

// MustParse is Parse for static tables; it panics on malformed input
func MustParse(s string) TimeOfDay {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func normalize(d time.Duration) TimeOfDay {
	d %= day
	if d < 0 {
		d += day
	}
	return TimeOfDay(d)
}

// Add shifts t by d, wrapping past midnight in either direction
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return normalize(time.Duration(t) + d)
}

func (t TimeOfDay) Hour() int {
	return int(time.Duration(t) / time.Hour)
}

func (t TimeOfDay) Minute() int {
	return int(time.Duration(t) % time.Hour / time.Minute)
}

func (t TimeOfDay) Second() int {
	return int(time.Duration(t) % time.Minute / time.Second)
}

func (t TimeOfDay) Before(u TimeOfDay) bool { return t < u }

func (t TimeOfDay) After(u TimeOfDay) bool { return t > u }

// Earliest returns the smaller of a and b
func Earliest(a, b TimeOfDay) TimeOfDay {
	if a.Before(b) {
		return a
	}
	return b
}

// Latest returns the larger of a and b
func Latest(a, b TimeOfDay) TimeOfDay {
	if a.After(b) {
		return a
	}
	return b
}

// String formats as HH:MM, the form the device expects
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Clock formats as HH:MM:SS
func (t TimeOfDay) Clock() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.Clock()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
