package mqttstate_test

import (
	"context"
	"testing"
	"time"

	"github.com/septivank/petdoor-curfew-worker/internal/event"
	"github.com/septivank/petdoor-curfew-worker/internal/mqttstate"
	"go.uber.org/zap"
)

func TestTopic(t *testing.T) {
	got := mqttstate.Topic("home/petdoor", event.DoorEvent{Type: event.CurfewApplied})
	if got != "home/petdoor/curfew/applied" {
		t.Errorf("Expected home/petdoor/curfew/applied, got %s", got)
	}
}

func TestPublish_NotConnected(t *testing.T) {
	client := mqttstate.NewClient("tcp://127.0.0.1:1883", "test", "home/petdoor/", time.Second, zap.NewNop())

	if err := client.Publish(context.Background(), event.DoorEvent{Type: event.BatteryReading}); err == nil {
		t.Error("Expected error when publishing before Connect")
	}
	client.Disconnect()
}
