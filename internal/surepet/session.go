package surepet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/septivank/petdoor-curfew-worker/internal/curfew"
	"github.com/septivank/petdoor-curfew-worker/internal/errs"
	"go.uber.org/zap"
)

// Device is a snapshot of one device on the account
type Device struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Status DeviceStatus `json:"status"`
}

// DeviceStatus holds the telemetry the door reports.
// Battery units depend on the firmware revision.
type DeviceStatus struct {
	Battery float64 `json:"battery"`
}

type startResponse struct {
	Data struct {
		Devices []Device `json:"devices"`
	} `json:"data"`
}

type curfewEntry struct {
	Enabled    bool   `json:"enabled"`
	UnlockTime string `json:"unlock_time"`
	LockTime   string `json:"lock_time"`
}

type controlRequest struct {
	Curfew []curfewEntry `json:"curfew"`
}

// Session is an authenticated API handle
type Session struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func newSession(c *Client, token string) *Session {
	return &Session{
		baseURL:    c.baseURL,
		httpClient: bearerClient(c.httpClient, token),
		logger:     c.logger,
	}
}

// ListDevices returns every device on the account
func (s *Session) ListDevices(ctx context.Context) ([]Device, error) {
	const path = "/api/me/start"

	req, err := newRequest(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.do(req, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded startResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &errs.APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Message:    "decoding response",
			Kind:       errs.ErrUpstream,
			Err:        err,
		}
	}

	return decoded.Data.Devices, nil
}

// PushCurfew replaces the curfew of deviceID with window
func (s *Session) PushCurfew(ctx context.Context, deviceID int64, window curfew.Window) error {
	path := fmt.Sprintf("/api/device/%d/control", deviceID)

	body, err := json.Marshal(controlRequest{
		Curfew: []curfewEntry{{
			Enabled:    window.Enabled,
			UnlockTime: window.UnlockTime.String(),
			LockTime:   window.LockTime.String(),
		}},
	})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := newRequest(ctx, http.MethodPut, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	resp, err := s.do(req, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return nil
}

func (s *Session) do(req *http.Request, path string) (*http.Response, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errs.Unavailable(path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, errs.FromStatus(resp.StatusCode, path, string(body))
	}

	s.logger.Debug("device API request",
		zap.String("method", req.Method),
		zap.String("endpoint", path),
		zap.Int("status_code", resp.StatusCode),
	)

	return resp, nil
}

// FindByName returns the first device whose name contains marker, ignoring case
func FindByName(devices []Device, marker string) (Device, error) {
	needle := strings.ToLower(marker)
	for _, device := range devices {
		if strings.Contains(strings.ToLower(device.Name), needle) {
			return device, nil
		}
	}
	return Device{}, fmt.Errorf("%w: no device name contains %q (%d devices listed)", errs.ErrDeviceNotFound, marker, len(devices))
}
