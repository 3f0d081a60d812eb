package sunapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/septivank/petdoor-curfew-worker/internal/errs"
	"github.com/septivank/petdoor-curfew-worker/internal/sunapi"
	"go.uber.org/zap"
)

func TestFetch_ParsesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("lat"); got != "49.41794" {
			t.Errorf("Expected lat 49.41794, got %s", got)
		}
		if got := r.URL.Query().Get("lng"); got != "2.82606" {
			t.Errorf("Expected lng 2.82606, got %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":{"sunrise":"7:25:00 AM","sunset":"4:10:00 PM","day_length":"8:45:00"},"status":"OK"}`))
	}))
	defer server.Close()

	client := sunapi.NewClient(server.URL, 5*time.Second, zap.NewNop())

	times, err := client.Fetch(context.Background(), sunapi.Coordinates{Latitude: 49.41794, Longitude: 2.82606})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if times.Status != "OK" || times.Sunrise != "7:25:00 AM" || times.Sunset != "4:10:00 PM" {
		t.Errorf("Unexpected result %+v", times)
	}
}

func TestFetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := sunapi.NewClient(server.URL, 5*time.Second, zap.NewNop())

	_, err := client.Fetch(context.Background(), sunapi.Coordinates{})
	if !errors.Is(err, errs.ErrUpstreamUnavailable) {
		t.Errorf("Expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestFetch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	client := sunapi.NewClient(endpoint, time.Second, zap.NewNop())

	_, err := client.Fetch(context.Background(), sunapi.Coordinates{})
	if !errors.Is(err, errs.ErrUpstreamUnavailable) {
		t.Errorf("Expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestFetch_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	client := sunapi.NewClient(server.URL, 5*time.Second, zap.NewNop())

	_, err := client.Fetch(context.Background(), sunapi.Coordinates{})
	if !errors.Is(err, errs.ErrUpstreamUnavailable) {
		t.Errorf("Expected ErrUpstreamUnavailable, got %v", err)
	}
}
