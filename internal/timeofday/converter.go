package timeofday

import "time"

// Converter moves time-of-day values from UTC into a fixed local offset.
// The same offset is applied to every value of a run.
type Converter struct {
	Offset time.Duration
}

// NewConverter returns a converter for a fixed offset east of UTC
func NewConverter(offset time.Duration) Converter {
	return Converter{Offset: offset}
}

// ConverterAt resolves the offset loc observes at instant, so a run that starts
// during daylight saving time converts every value with the summer offset.
func ConverterAt(loc *time.Location, instant time.Time) Converter {
	_, seconds := instant.In(loc).Zone()
	return Converter{Offset: time.Duration(seconds) * time.Second}
}

// ToLocal converts a UTC time of day into the local frame
func (c Converter) ToLocal(utc TimeOfDay) TimeOfDay {
	return utc.Add(c.Offset)
}
