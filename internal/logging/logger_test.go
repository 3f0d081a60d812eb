package logging_test

import (
	"testing"

	"github.com/septivank/petdoor-curfew-worker/internal/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Levels(t *testing.T) {
	logger, err := logging.NewLogger("petdoor-curfew-worker", "debug")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Error("Expected debug level to be enabled")
	}

	logger, err = logging.NewLogger("petdoor-curfew-worker", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Error("Expected default level to be info")
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := logging.NewLogger("petdoor-curfew-worker", "chatty"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestWithRunID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	logging.WithRunID(zap.New(core), "run-1").Info("curfew pushed")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["run_id"]; got != "run-1" {
		t.Errorf("Expected run_id run-1, got %v", got)
	}
}
