package mq_test

import (
	"testing"

	"github.com/septivank/petdoor-curfew-worker/internal/event"
	"github.com/septivank/petdoor-curfew-worker/internal/mq"
)

func TestRoutingKey(t *testing.T) {
	testCases := map[string]string{
		event.CurfewApplied:  "petdoor.curfew.applied",
		event.CurfewFailed:   "petdoor.curfew.failed",
		event.BatteryLow:     "petdoor.battery.low",
		event.BatteryReading: "petdoor.battery.reading",
	}

	for eventType, expected := range testCases {
		if got := mq.RoutingKey(event.DoorEvent{Type: eventType}); got != expected {
			t.Errorf("%s: expected %s, got %s", eventType, expected, got)
		}
	}
}
