// Package upstream is the HTTP client shared by the clients of external services.
// It retries transient failures with exponential backoff and records metrics.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/VxVxN/stockinsight/internal/metrics"
)

const (
	DefaultTimeout   = 20 * time.Second
	DefaultMaxTries  = 3
	DefaultUserAgent = "Mozilla/5.0 (compatible; stockinsight/1.0)"

	maxBodySize = 10 * 1024 * 1024
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected HTTP status %d", e.Service, e.Code)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

type Client struct {
	service      string
	httpClient   *http.Client
	userAgent    string
	maxTries     uint
	initialDelay time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) { client.httpClient = c }
}

func WithMaxTries(n uint) Option {
	return func(client *Client) {
		if n > 0 {
			client.maxTries = n
		}
	}
}

func WithInitialDelay(d time.Duration) Option {
	return func(client *Client) { client.initialDelay = d }
}

func WithUserAgent(ua string) Option {
	return func(client *Client) {
		if ua != "" {
			client.userAgent = ua
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(client *Client) { client.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(client *Client) { client.logger = l }
}

func New(service string, opts ...Option) *Client {
	c := &Client{
		service:      service,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		userAgent:    DefaultUserAgent,
		maxTries:     DefaultMaxTries,
		initialDelay: 500 * time.Millisecond,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends the request built by newRequest and returns the response body.
// newRequest is invoked once per attempt so request bodies can be replayed.
func (c *Client) Do(ctx context.Context, newRequest func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	start := time.Now()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialDelay
	policy.MaxInterval = c.initialDelay * 10

	notify := func(err error, wait time.Duration) {
		c.metrics.ObserveRetry(c.service)
		c.logger.Warn("Retrying upstream request",
			"service", c.service,
			"backoff", wait,
			"error", err)
	}

	operation := func() ([]byte, error) {
		req, err := newRequest(ctx)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}
		return c.attempt(req)
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify))

	c.metrics.ObserveUpstream(c.service, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	return body, nil
}

func (c *Client) attempt(req *http.Request) ([]byte, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, backoff.Permanent(ctxErr)
		}
		return nil, fmt.Errorf("%s: request failed: %w", c.service, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read body: %w", c.service, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Service: c.service, Code: resp.StatusCode, Body: string(body)}
		if statusErr.Temporary() {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	return body, nil
}

// IsStatus reports whether err carries an upstream HTTP status equal to code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == code
}
