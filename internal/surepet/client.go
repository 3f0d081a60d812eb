// Package surepet talks to the pet-door cloud API.
//
// A Client can only log in; every device call lives on the Session that a
// successful Login returns, so unauthenticated device calls cannot be written.
package surepet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/septivank/petdoor-curfew-worker/internal/errs"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the production API
const DefaultBaseURL = "https://app.api.surehub.io"

// Credentials authenticate the account owning the door
type Credentials struct {
	Email    string
	Password string
}

// Client is an unauthenticated API client
type Client struct {
	baseURL        string
	clientDeviceID string
	httpClient     *http.Client
	logger         *zap.Logger
}

// NewClient creates a new API client. clientDeviceID identifies this agent
// to the API and is unrelated to the door's id.
func NewClient(baseURL, clientDeviceID string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if clientDeviceID == "" {
		clientDeviceID = "1"
	}
	return &Client{
		baseURL:        baseURL,
		clientDeviceID: clientDeviceID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type loginRequest struct {
	DeviceID     string `json:"device_id"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type loginResponse struct {
	Data *struct {
		Token string `json:"token"`
	} `json:"data"`
	Error json.RawMessage `json:"error"`
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	const path = "/api/auth/login"

	body, err := json.Marshal(loginRequest{
		DeviceID:     c.clientDeviceID,
		EmailAddress: creds.Email,
		Password:     creds.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := newRequest(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Unavailable(path, err)
	}
	defer resp.Body.Close()

	var decoded loginResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden ||
		(decodeErr == nil && len(decoded.Error) > 0 && string(decoded.Error) != "null") {
		return nil, &errs.APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Message:    "login rejected",
			Kind:       errs.ErrAuthentication,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errs.FromStatus(resp.StatusCode, path, "login failed")
	}
	if decodeErr != nil {
		return nil, &errs.APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Message:    "decoding response",
			Kind:       errs.ErrUpstream,
			Err:        decodeErr,
		}
	}
	if decoded.Data == nil || decoded.Data.Token == "" {
		return nil, &errs.APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Message:    "response carried no token",
			Kind:       errs.ErrAuthentication,
		}
	}

	c.logger.Debug("logged in to device API")

	return newSession(c, decoded.Data.Token), nil
}

func newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// bearerClient wraps base so every request carries token
func bearerClient(base *http.Client, token string) *http.Client {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	client.Timeout = base.Timeout
	return client
}
