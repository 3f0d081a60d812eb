// Package event defines the notifications a run emits to optional sinks.
package event

import "time"

// Event types
const (
	BatteryReading = "battery.reading"
	BatteryLow     = "battery.low"
	CurfewApplied  = "curfew.applied"
	CurfewFailed   = "curfew.failed"
)

// DoorEvent is published after each notable step of a run
type DoorEvent struct {
	Type           string    `json:"type"`
	RunID          string    `json:"run_id"`
	DeviceID       int64     `json:"device_id,omitempty"`
	DeviceName     string    `json:"device_name,omitempty"`
	Season         string    `json:"season,omitempty"`
	UnlockTime     string    `json:"unlock_time,omitempty"`
	LockTime       string    `json:"lock_time,omitempty"`
	BatteryRaw     *float64  `json:"battery_raw,omitempty"`
	BatteryPercent *int      `json:"battery_percent,omitempty"`
	Error          string    `json:"error,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
