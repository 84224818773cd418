// Package publish registers an uploaded APK with the app-update API.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/williamokano/apk_releaser/pkg/envfile"
)

// Env file keys and their defaults
const (
	KeyBaseURL     = "APP_UPDATE_API_BASE_URL"
	KeyPublishPath = "APP_UPDATE_PUBLISH_PATH"
	KeyToken       = "APP_UPDATE_API_TOKEN"

	DefaultBaseURL     = "http://127.0.0.1:3008"
	DefaultPublishPath = "/api/app-updates/publish"
	DefaultTimeout     = 20 * time.Second
)

// maxErrorBody bounds how much of a failed response is kept
const maxErrorBody = 64 << 10

// HTTPError is returned when the API answers with a non-2xx status
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := e.Body
	if body == "" {
		body = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("publish failed: HTTP %d: %s", e.StatusCode, body)
}

// ConnError is returned when the API cannot be reached
type ConnError struct {
	Endpoint string
	Err      error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("cannot reach publish API at %s: %v", e.Endpoint, e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// Response holds the fields of a successful publish answer worth reporting
type Response struct {
	ID          any    `json:"id"`
	Version     string `json:"version"`
	ForceUpdate *bool  `json:"forceUpdate"`
}

// Endpoint joins the configured base URL and publish path
func Endpoint(env envfile.Values) string {
	base := env.GetDefault(KeyBaseURL, DefaultBaseURL)
	path := env.GetDefault(KeyPublishPath, DefaultPublishPath)
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Client posts payloads to the publish endpoint
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a client. A nil httpClient gets one with DefaultTimeout.
func NewClient(endpoint, token string, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: httpClient,
		logger:     logger.With().Str("endpoint", endpoint).Logger(),
	}
}

// Publish sends the payload and decodes the API's answer
func (c *Client) Publish(ctx context.Context, payload Payload) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Info().Str("version", payload.Version).Msg("Publishing version")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnError{Endpoint: c.endpoint, Err: err}
	}

	var out Response
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode publish response: %w", err)
		}
	}
	return &out, nil
}
