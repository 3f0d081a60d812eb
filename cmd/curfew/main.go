package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/septivank/petdoor-curfew-worker/internal/config"
	"github.com/septivank/petdoor-curfew-worker/internal/errs"
	"github.com/septivank/petdoor-curfew-worker/internal/service"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	os.Exit(run())
}

func run() int {
	envPath := loadEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return errs.ExitCode(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		return 1
	}
	defer logger.Sync()

	if envPath != "" {
		logger.Debug("loaded environment file", zap.String("path", envPath))
	}

	// Interrupt ends the process cleanly and silently
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var curfewService *service.CurfewService
	app := fx.New(
		fx.Supply(cfg, logger),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))}
		}),
		fx.Provide(
			ProvidePolicy,
			ProvideInterpreter,
			ProvideSunClient,
			ProvideDeviceLogin,
			ProvideNotifier,
			ProvideJournal,
			ProvideSinks,
			ProvideCurfewService,
		),
		fx.Populate(&curfewService),
	)
	if err := app.Err(); err != nil {
		logger.Error("failed to build application", zap.Error(err))
		return 1
	}

	startCtx, startCancel := context.WithTimeout(ctx, 30*time.Second)
	defer startCancel()

	if err := app.Start(startCtx); err != nil {
		if ctx.Err() != nil {
			return 0
		}
		logger.Error("failed to start application", zap.Error(err))
		return 1
	}

	code := 0
	if cfg.Schedule == "" {
		code = runOnce(ctx, curfewService, logger)
	} else {
		runScheduled(ctx, cfg.Schedule, curfewService, logger)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		logger.Warn("error stopping app", zap.Error(err))
	}

	return code
}

func runOnce(ctx context.Context, svc *service.CurfewService, logger *zap.Logger) int {
	report, err := svc.Run(ctx)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return 0
		}
		return errs.ExitCode(err)
	}

	logger.Info("curfew run complete",
		zap.String("run_id", report.RunID),
		zap.String("device", report.Device),
		zap.String("unlock_time", report.Window.UnlockTime.String()),
		zap.String("lock_time", report.Window.LockTime.String()),
		zap.Int("battery_percent", report.Battery.Percent),
	)
	return 0
}

// runScheduled performs one independent run per cron tick until ctx is done
func runScheduled(ctx context.Context, schedule string, svc *service.CurfewService, logger *zap.Logger) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(schedule, func() {
		runOnce(ctx, svc, logger)
	})
	if err != nil {
		logger.Error("invalid schedule", zap.String("schedule", schedule), zap.Error(err))
		return
	}

	logger.Info("curfew scheduler started", zap.String("schedule", schedule))
	c.Start()

	<-ctx.Done()

	<-c.Stop().Done()
}

// loadEnv loads the first .env found near the working directory or the executable
func loadEnv() string {
	envPaths := []string{
		".env",       // current working directory
		"../../.env", // running from bin/
	}

	if exe, err := os.Executable(); err == nil {
		envPaths = append(envPaths, filepath.Join(filepath.Dir(exe), ".env"))
	}

	if workDir, err := os.Getwd(); err == nil {
		parentDir := filepath.Dir(workDir)
		envPaths = append(envPaths,
			filepath.Join(parentDir, ".env"),
			filepath.Join(filepath.Dir(parentDir), ".env"),
		)
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			absPath, _ := filepath.Abs(envPath)
			return absPath
		}
	}

	return ""
}
