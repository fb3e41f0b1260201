package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTimeout bounds a whole generation call, measured from call start.
	DefaultTimeout = 120 * time.Second
	// DefaultHealthTimeout bounds a health probe. It is capped by the
	// generation timeout.
	DefaultHealthTimeout = 5 * time.Second
	// DefaultLogLines is the number of log lines requested when none is given.
	DefaultLogLines = 50

	requestIDHeader = "X-Request-ID"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the generation timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHealthTimeout sets the health probe timeout.
func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) { c.healthTimeout = d }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHeaders adds headers applied to every request.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) { c.headers = h }
}

// Client talks to the generation backend over HTTP. It holds no per-call
// state and is safe for concurrent use.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	headers       map[string]string
	timeout       time.Duration
	healthTimeout time.Duration
	log           *slog.Logger

	clientOnce    sync.Once
	defaultClient *http.Client
}

// New creates a Client for the backend at baseURL. A trailing slash on
// baseURL is ignored.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		timeout:       DefaultTimeout,
		healthTimeout: DefaultHealthTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}

	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the generation timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

// HealthTimeout returns the effective health probe timeout.
func (c *Client) HealthTimeout() time.Duration {
	if c.timeout > 0 && c.healthTimeout > c.timeout {
		return c.timeout
	}

	return c.healthTimeout
}

// client returns the configured HTTP client or a cached default. Deadlines
// come from the per-call context, so the default has no client timeout.
func (c *Client) client() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}

	c.clientOnce.Do(func() {
		c.defaultClient = &http.Client{}
	})

	return c.defaultClient
}

// NewRequest builds an *http.Request against the base URL with the custom
// headers and a fresh request ID applied.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	req.Header.Set(requestIDHeader, uuid.NewString())

	return req, nil
}

// Generate sends one POST /generate and returns the backend's result
// verbatim. Every failure is a *GenerationError.
func (c *Client) Generate(ctx context.Context, gr GenerationRequest) (GenerationResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(gr)
	if err != nil {
		c.log.ErrorContext(ctx, "api request error", "path", "/generate", "error", err)
		return GenerationResult{}, requestError(fmt.Errorf("marshal payload: %w", err))
	}

	req, err := c.NewRequest(ctx, http.MethodPost, "/generate", bytes.NewReader(payload))
	if err != nil {
		c.log.ErrorContext(ctx, "api request error", "path", "/generate", "error", err)
		return GenerationResult{}, requestError(fmt.Errorf("build request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return GenerationResult{}, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return GenerationResult{}, serverError(resp.StatusCode, readDetail(resp))
	}

	var result GenerationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if ctx.Err() != nil {
			return GenerationResult{}, noResponseError(fmt.Errorf("read response: %w", err))
		}

		return GenerationResult{}, requestError(fmt.Errorf("decode response: %w", err))
	}

	return result, nil
}

// CheckHealth probes GET /health. Any failure is reported as ErrUnreachable.
func (c *Client) CheckHealth(ctx context.Context) (Health, error) {
	if d := c.HealthTimeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	var h Health
	if err := c.getJSON(ctx, "/health", &h); err != nil {
		return Health{}, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	return h, nil
}

// Logs fetches the most recent backend log lines. Non-positive lines falls
// back to DefaultLogLines.
func (c *Client) Logs(ctx context.Context, lines int) (LogsResponse, error) {
	if lines <= 0 {
		lines = DefaultLogLines
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	q := url.Values{"lines": []string{strconv.Itoa(lines)}}

	var lr LogsResponse
	if err := c.getJSON(ctx, "/logs?"+q.Encode(), &lr); err != nil {
		return LogsResponse{}, fmt.Errorf("could not fetch logs: %w", err)
	}

	return lr, nil
}

// Info fetches the backend's descriptive root document.
func (c *Client) Info(ctx context.Context) (Info, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var info Info
	if err := c.getJSON(ctx, "/", &info); err != nil {
		return Info{}, fmt.Errorf("could not fetch API information: %w", err)
	}

	return info, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.timeout)
}

// do sends req and logs both sides of the exchange.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	id := req.Header.Get(requestIDHeader)

	c.log.InfoContext(ctx, "api request",
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", id,
	)

	start := time.Now()

	resp, err := c.client().Do(req) //nolint:gosec // URL is built from the configured base URL.
	if err != nil {
		c.log.ErrorContext(ctx, "api response error",
			"method", req.Method,
			"path", req.URL.Path,
			"request_id", id,
			"duration", time.Since(start),
			"error", err,
		)

		return nil, err
	}

	level := slog.LevelInfo
	if resp.StatusCode >= 400 {
		level = slog.LevelError
	}

	c.log.Log(ctx, level, "api response",
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", id,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return resp, nil
}

// getJSON issues a GET to path, checks for a 2xx status, and decodes the
// body into dest.
func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readDetail(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// classifyTransportError maps an error from http.Client.Do into the
// taxonomy. A request that was abandoned by its caller is a request
// failure; everything else means the backend did not answer.
func classifyTransportError(err error) *GenerationError {
	if errors.Is(err, context.Canceled) {
		return requestError(err)
	}

	return noResponseError(err)
}

// readDetail extracts the server-provided detail from an error response,
// falling back to the status text.
func readDetail(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var eb errorBody
	if len(bytes.TrimSpace(body)) > 0 && json.Unmarshal(body, &eb) == nil {
		switch d := eb.Detail.(type) {
		case nil:
		case string:
			if d != "" {
				return d
			}
		default:
			if raw, err := json.Marshal(d); err == nil {
				return string(raw)
			}
		}
	}

	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}

	return resp.Status
}
