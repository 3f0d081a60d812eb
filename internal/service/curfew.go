package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/septivank/petdoor-curfew-worker/internal/battery"
	"github.com/septivank/petdoor-curfew-worker/internal/curfew"
	"github.com/septivank/petdoor-curfew-worker/internal/db"
	"github.com/septivank/petdoor-curfew-worker/internal/errs"
	"github.com/septivank/petdoor-curfew-worker/internal/event"
	"github.com/septivank/petdoor-curfew-worker/internal/logging"
	"github.com/septivank/petdoor-curfew-worker/internal/notify"
	"github.com/septivank/petdoor-curfew-worker/internal/season"
	"github.com/septivank/petdoor-curfew-worker/internal/sunapi"
	"github.com/septivank/petdoor-curfew-worker/internal/surepet"
	"github.com/septivank/petdoor-curfew-worker/internal/timeofday"
	"github.com/septivank/petdoor-curfew-worker/internal/validator"
	"go.uber.org/zap"
)

// DeviceSession is an authenticated handle on the device API
type DeviceSession interface {
	ListDevices(ctx context.Context) ([]surepet.Device, error)
	PushCurfew(ctx context.Context, deviceID int64, window curfew.Window) error
}

// DeviceLogin authenticates and returns a session
type DeviceLogin func(ctx context.Context) (DeviceSession, error)

// SunSource provides today's raw sun times
type SunSource interface {
	Fetch(ctx context.Context, coords sunapi.Coordinates) (*sunapi.SunTimes, error)
}

// Notifier delivers alert messages
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// Journal records run outcomes
type Journal interface {
	RecordBattery(ctx context.Context, reading *db.BatteryReading) error
	RecordRun(ctx context.Context, run *db.CurfewRun) error
	RecentBatteryPercents(ctx context.Context, deviceID int64, limit int) ([]int, error)
}

// EventSink receives door events
type EventSink interface {
	Name() string
	Publish(ctx context.Context, ev event.DoorEvent) error
}

// Deps holds everything a CurfewService needs. Notifier, Journal and Sinks are optional.
type Deps struct {
	Login       DeviceLogin
	Sun         SunSource
	Notifier    Notifier
	Journal     Journal
	Sinks       []EventSink
	Policy      *season.Policy
	Season      season.Season
	Interpreter *battery.Interpreter
	Validator   *validator.Validator
	Converter   func(now time.Time) timeofday.Converter
	Coordinates sunapi.Coordinates
	NameMarker  string
	Now         func() time.Time
	Logger      *zap.Logger
}

// RunReport summarises a successful run
type RunReport struct {
	RunID    string
	DeviceID int64
	Device   string
	Battery  battery.Estimate
	Window   curfew.Window
}

// CurfewService performs one curfew update per Run
type CurfewService struct {
	deps Deps
}

// NewCurfewService creates a new curfew service
func NewCurfewService(deps Deps) *CurfewService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Validator == nil {
		deps.Validator = validator.NewValidator()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &CurfewService{deps: deps}
}

// run carries the state of a single Run call
type run struct {
	id      uuid.UUID
	started time.Time
	logger  *zap.Logger
	record  db.CurfewRun
}

// Run logs in, checks the door battery and pushes today's curfew.
// Nothing is pushed unless every step before the push succeeded.
func (s *CurfewService) Run(ctx context.Context) (*RunReport, error) {
	r := &run{
		id:      uuid.New(),
		started: s.deps.Now(),
	}
	r.logger = logging.WithRunID(s.deps.Logger, r.id.String())
	r.record = db.CurfewRun{
		ID:        r.id,
		Season:    string(s.deps.Season),
		StartedAt: r.started,
	}

	report, err := s.run(ctx, r)
	if err != nil {
		s.finish(ctx, r, err)
		return nil, err
	}

	s.finish(ctx, r, nil)
	return report, nil
}

func (s *CurfewService) run(ctx context.Context, r *run) (*RunReport, error) {
	rule, err := s.deps.Policy.Lookup(s.deps.Season)
	if err != nil {
		return nil, err
	}
	converter := s.deps.Converter(r.started)

	r.logger.Info("starting curfew run",
		zap.String("season", string(rule.Season)),
		zap.Duration("local_offset", converter.Offset),
	)

	session, err := s.deps.Login(ctx)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	r.logger.Debug("logged in")

	devices, err := session.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	device, err := surepet.FindByName(devices, s.deps.NameMarker)
	if err != nil {
		return nil, err
	}
	r.record.DeviceID = &device.ID
	r.logger.Info("device selected",
		zap.Int64("device_id", device.ID),
		zap.String("device_name", device.Name),
	)

	estimate := s.checkBattery(ctx, r, device)

	sun, err := s.deps.Sun.Fetch(ctx, s.deps.Coordinates)
	if err != nil {
		return nil, fmt.Errorf("fetch sun times: %w", err)
	}
	r.record.SunriseRaw = &sun.Sunrise
	r.record.SunsetRaw = &sun.Sunset

	sunrise, sunset, result := s.deps.Validator.ValidateSunData(validator.SunData{
		Status:  sun.Status,
		Sunrise: sun.Sunrise,
		Sunset:  sun.Sunset,
	})
	if !result.IsValid {
		return nil, fmt.Errorf("%w: %s", errs.ErrUpstreamUnavailable, result.Reason)
	}

	window := curfew.NewCalculator(converter).Compute(sunrise, sunset, rule)
	unlock, lock := window.UnlockTime.String(), window.LockTime.String()
	r.record.UnlockTime = &unlock
	r.record.LockTime = &lock

	r.logger.Info("curfew computed",
		zap.String("sunrise_utc", sunrise.Clock()),
		zap.String("sunset_utc", sunset.Clock()),
		zap.String("unlock_time", unlock),
		zap.String("lock_time", lock),
	)

	if err := session.PushCurfew(ctx, device.ID, window); err != nil {
		return nil, fmt.Errorf("push curfew: %w", err)
	}

	r.logger.Info("curfew pushed", zap.Int64("device_id", device.ID))

	s.publish(ctx, r, event.DoorEvent{
		Type:       event.CurfewApplied,
		DeviceID:   device.ID,
		DeviceName: device.Name,
		Season:     string(rule.Season),
		UnlockTime: unlock,
		LockTime:   lock,
	})

	return &RunReport{
		RunID:    r.id.String(),
		DeviceID: device.ID,
		Device:   device.Name,
		Battery:  estimate,
		Window:   window,
	}, nil
}

// checkBattery interprets the door telemetry and sends the alert email.
// Every side effect here is best-effort.
func (s *CurfewService) checkBattery(ctx context.Context, r *run, device surepet.Device) battery.Estimate {
	estimate := s.deps.Interpreter.Interpret(device.Status.Battery)

	fields := []zap.Field{
		zap.Float64("battery_raw", estimate.Raw),
		zap.Int("battery_percent", estimate.Percent),
		zap.String("encoding", estimate.Encoding),
		zap.Bool("alert", estimate.Alert),
	}
	if s.deps.Journal != nil && estimate.Percent > 0 {
		previous, err := s.deps.Journal.RecentBatteryPercents(ctx, device.ID, 1)
		if err != nil {
			r.logger.Warn("failed to read previous battery reading", zap.Error(err))
		} else if len(previous) > 0 {
			fields = append(fields, zap.Int("battery_change", estimate.Percent-previous[0]))
		}
	}
	r.logger.Info("battery estimated", fields...)

	if s.deps.Journal != nil {
		err := s.deps.Journal.RecordBattery(ctx, &db.BatteryReading{
			ID:         uuid.New(),
			RunID:      r.id,
			DeviceID:   device.ID,
			DeviceName: device.Name,
			RawValue:   estimate.Raw,
			Percent:    estimate.Percent,
			Encoding:   estimate.Encoding,
			Alerted:    estimate.Alert,
			ReadAt:     s.deps.Now(),
		})
		if err != nil {
			r.logger.Warn("failed to journal battery reading", zap.Error(err))
		}
	}

	raw, percent := estimate.Raw, estimate.Percent
	reading := event.DoorEvent{
		Type:           event.BatteryReading,
		DeviceID:       device.ID,
		DeviceName:     device.Name,
		BatteryRaw:     &raw,
		BatteryPercent: &percent,
	}
	s.publish(ctx, r, reading)

	if !estimate.Alert {
		return estimate
	}

	if s.deps.Notifier == nil {
		r.logger.Warn("battery low but mail is not configured", zap.Int("battery_percent", estimate.Percent))
	} else {
		subject, body := notify.LowBatteryAlert(device.Name, estimate.Percent)
		if err := s.deps.Notifier.Send(ctx, subject, body); err != nil {
			r.logger.Error("failed to send low battery alert", zap.Error(err))
		}
	}

	low := reading
	low.Type = event.BatteryLow
	s.publish(ctx, r, low)

	return estimate
}

func (s *CurfewService) publish(ctx context.Context, r *run, ev event.DoorEvent) {
	ev.RunID = r.id.String()
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = s.deps.Now()
	}
	for _, sink := range s.deps.Sinks {
		if err := sink.Publish(ctx, ev); err != nil {
			r.logger.Warn("failed to publish door event",
				zap.String("sink", sink.Name()),
				zap.String("type", ev.Type),
				zap.Error(err),
			)
		}
	}
}

// finish journals the run outcome and reports failures to the sinks
func (s *CurfewService) finish(ctx context.Context, r *run, runErr error) {
	r.record.FinishedAt = s.deps.Now()
	r.record.Status = db.RunStatusApplied

	if runErr != nil {
		r.record.Status = db.RunStatusFailed
		reason := runErr.Error()
		r.record.ErrorReason = &reason

		if errors.Is(runErr, context.Canceled) {
			return
		}

		r.logger.Error("curfew run failed", zap.Error(runErr))

		ev := event.DoorEvent{
			Type:   event.CurfewFailed,
			Season: r.record.Season,
			Error:  reason,
		}
		if r.record.DeviceID != nil {
			ev.DeviceID = *r.record.DeviceID
		}
		s.publish(ctx, r, ev)
	}

	if s.deps.Journal != nil {
		if err := s.deps.Journal.RecordRun(ctx, &r.record); err != nil {
			r.logger.Warn("failed to journal curfew run", zap.Error(err))
		}
	}
}

// SurepetLogin adapts a surepet client to DeviceLogin
func SurepetLogin(client *surepet.Client, creds surepet.Credentials) DeviceLogin {
	return func(ctx context.Context) (DeviceSession, error) {
		session, err := client.Login(ctx, creds)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}
