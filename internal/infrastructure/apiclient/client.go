// Package apiclient talks to the remote defect-tracking API. Every method is
// a single request/response exchange: there are no retries, and responses
// are decoded into explicit types at this boundary.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/controlsys/defect-web/internal/core/domain"
	"github.com/controlsys/defect-web/internal/pkg/metrics"
	"github.com/controlsys/defect-web/pkg/logger"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// Config captures the settings for reaching the remote API.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client implements ports.AuthAPI and ports.DashboardAPI over HTTP.
type Client struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger
}

// New validates the base URL and returns a Client. A default timeout is
// applied when none is provided.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base url %q", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		base: base,
		http: hc,
		log:  logger.Component(log, "apiclient"),
	}, nil
}

// do sends one request and returns the status and body. A missing response
// is reported as domain.ErrConnection.
func (c *Client) do(ctx context.Context, endpoint, method, path, token string, in any) (int, []byte, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: encode request: %w", endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), body)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(endpoint, "transport").Observe(time.Since(start).Seconds())
		c.log.Warn().Err(err).Str("endpoint", endpoint).Msg("remote api unreachable")
		return 0, nil, fmt.Errorf("%s: %w: %w", endpoint, domain.ErrConnection, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.UpstreamRequestDuration.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w: read body: %w", endpoint, domain.ErrConnection, err)
	}

	c.log.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("remote api call")

	return resp.StatusCode, data, nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}

// detail extracts the server's {"detail": "..."} message. Non-string
// details (e.g. field error lists) yield an empty string.
func detail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err != nil {
		return ""
	}
	return s
}

func malformed(endpoint string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", endpoint, domain.ErrMalformedResponse)
	}
	return fmt.Errorf("%s: %w: %w", endpoint, domain.ErrMalformedResponse, cause)
}

// decodeUser accepts either {"user": {...}} or a bare user object.
func decodeUser(data []byte) (*domain.UserProfile, error) {
	var wrapped struct {
		User *domain.UserProfile `json:"user"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.User != nil {
		return wrapped.User, nil
	}

	var bare domain.UserProfile
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, err
	}
	if bare.Username == "" && bare.ID == 0 {
		return nil, nil
	}
	return &bare, nil
}

// getJSON fetches a bearer-authenticated resource into out.
func (c *Client) getJSON(ctx context.Context, endpoint, path, token string, out any) error {
	status, data, err := c.do(ctx, endpoint, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}
	if !success(status) {
		return &domain.APIError{Endpoint: endpoint, Status: status, Detail: detail(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return malformed(endpoint, err)
	}
	return nil
}

// Ping checks the remote API's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	status, _, err := c.do(ctx, "health", http.MethodGet, "/health", "", nil)
	if err != nil {
		return err
	}
	if !success(status) {
		return fmt.Errorf("health: status %d", status)
	}
	return nil
}
