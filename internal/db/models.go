package db

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses
const (
	RunStatusApplied = "applied"
	RunStatusFailed  = "failed"
)

// BatteryReading represents one battery observation in the database
type BatteryReading struct {
	ID         uuid.UUID
	RunID      uuid.UUID
	DeviceID   int64
	DeviceName string
	RawValue   float64
	Percent    int
	Encoding   string
	Alerted    bool
	ReadAt     time.Time
}

// CurfewRun represents one curfew computation and push in the database
type CurfewRun struct {
	ID          uuid.UUID
	DeviceID    *int64
	Season      string
	SunriseRaw  *string
	SunsetRaw   *string
	UnlockTime  *string
	LockTime    *string
	Status      string
	ErrorReason *string
	StartedAt   time.Time
	FinishedAt  time.Time
}
