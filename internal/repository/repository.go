package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/septivank/petdoor-curfew-worker/internal/db"
)

const schema = `
	CREATE TABLE IF NOT EXISTS curfew_runs (
		id            UUID PRIMARY KEY,
		device_id     BIGINT,
		season        TEXT NOT NULL,
		sunrise_raw   TEXT,
		sunset_raw    TEXT,
		unlock_time   TEXT,
		lock_time     TEXT,
		status        TEXT NOT NULL,
		error_reason  TEXT,
		started_at    TIMESTAMPTZ NOT NULL,
		finished_at   TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS battery_readings (
		id           UUID PRIMARY KEY,
		run_id       UUID NOT NULL,
		device_id    BIGINT NOT NULL,
		device_name  TEXT NOT NULL,
		raw_value    DOUBLE PRECISION NOT NULL,
		percent      INTEGER NOT NULL,
		encoding     TEXT NOT NULL,
		alerted      BOOLEAN NOT NULL,
		read_at      TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS battery_readings_device_read_at
		ON battery_readings (device_id, read_at DESC);
`

// Repository journals runs and battery readings
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the journal tables when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create journal schema: %w", err)
	}
	return nil
}

// RecordBattery inserts a battery reading
func (r *Repository) RecordBattery(ctx context.Context, reading *db.BatteryReading) error {
	query := `
		INSERT INTO battery_readings (
			id, run_id, device_id, device_name, raw_value,
			percent, encoding, alerted, read_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		reading.ID,
		reading.RunID,
		reading.DeviceID,
		reading.DeviceName,
		reading.RawValue,
		reading.Percent,
		reading.Encoding,
		reading.Alerted,
		reading.ReadAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert battery reading: %w", err)
	}

	return nil
}

// RecordRun inserts the outcome of a run
func (r *Repository) RecordRun(ctx context.Context, run *db.CurfewRun) error {
	query := `
		INSERT INTO curfew_runs (
			id, device_id, season, sunrise_raw, sunset_raw, unlock_time,
			lock_time, status, error_reason, started_at, finished_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.DeviceID,
		run.Season,
		run.SunriseRaw,
		run.SunsetRaw,
		run.UnlockTime,
		run.LockTime,
		run.Status,
		run.ErrorReason,
		run.StartedAt,
		run.FinishedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert curfew run: %w", err)
	}

	return nil
}

// RecentBatteryPercents returns the latest percentages of a device, newest first
func (r *Repository) RecentBatteryPercents(ctx context.Context, deviceID int64, limit int) ([]int, error) {
	query := `
		SELECT percent
		FROM battery_readings
		WHERE device_id = $1 AND percent > 0
		ORDER BY read_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent battery readings: %w", err)
	}
	defer rows.Close()

	var percents []int
	for rows.Next() {
		var percent int
		if err := rows.Scan(&percent); err != nil {
			return nil, fmt.Errorf("failed to scan percent: %w", err)
		}
		percents = append(percents, percent)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return percents, nil
}
