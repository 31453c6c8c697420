// Package api implements the EduBase request pipeline: the single outbound
// gateway every call to the platform goes through. It attaches the current
// credential at send time, normalizes wrapped response envelopes, and
// classifies every failure into a fixed taxonomy with centralized side
// effects (user notification, forced logout on 401). Callers still receive
// the classified error and may add call-specific handling on top.
package api

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
	"strings"
	"time"

	"github.com/edubase/edubase-client/pkg/circuitbreaker"
	"github.com/edubase/edubase-client/pkg/retry"
)

// Notifier is the surface user-facing failure messages are raised on.
type Notifier interface {
	Error(message string)
}

// Config contains configuration for the pipeline client.
type Config struct {
	// BaseURL is the platform API base URL.
	BaseURL string

	// Timeout is the fixed upper bound per request. On expiry the call is
	// classified as a transport failure.
	Timeout time.Duration

	// Retry controls transparent retries of transport failures. Only GET
	// requests are retried; mutations go out exactly once.
	Retry retry.Config

	// UserAgent is sent with every request.
	UserAgent string

	// Metrics enables pipeline instrumentation when non-nil.
	Metrics *Metrics

	// Breaker, when non-nil, fails calls fast while the backend keeps
	// erroring instead of waiting out the timeout on each one.
	Breaker *circuitbreaker.CircuitBreaker

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults for the given base URL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Timeout:   15 * time.Second,
		Retry:     retry.DefaultConfig(),
		UserAgent: "edubase-client",
	}
}

// Client is the request pipeline.
type Client struct {
	config Config
	tokens TokenSource
	notify Notifier
	logger *slog.Logger
	send   RoundTripFunc

	// onUnauthorized is invoked after a 401 is classified and notified.
	// The wiring points it at the session manager's logout plus a forced
	// navigation to the login route. Set before the first request.
	onUnauthorized func()
}

// NewClient creates a pipeline client. The middleware chain is composed here,
// in order: request-id, bearer-auth, instrumentation, circuit breaker,
// logging, transport.
func NewClient(config Config, tokens TokenSource, notify Notifier) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	c := &Client{
		config: config,
		tokens: tokens,
		notify: notify,
		logger: config.Logger,
	}

	httpClient := &http.Client{Timeout: config.Timeout}
	base := func(req *http.Request) (*http.Response, error) {
		return httpClient.Do(req)
	}

	mws := []Middleware{RequestID(), BearerAuth(tokens)}
	if config.Metrics != nil {
		mws = append(mws, Instrument(config.Metrics))
	}
	if config.Breaker != nil {
		mws = append(mws, CircuitBreak(config.Breaker))
	}
	mws = append(mws, Logging(c.logger))

	c.send = Chain(base, mws...)
	return c
}

// OnUnauthorized sets the hook run when a 401 invalidates the session.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// Do sends a request with an optional JSON body through the full pipeline and
// decodes the (unwrapped) payload into out. The typed helpers below cover the
// common cases.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	_, err := c.do(ctx, method, path, body, nil, out)
	return err
}

// Get performs a GET and decodes the (unwrapped) payload into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	_, err := c.do(ctx, http.MethodGet, path, nil, nil, out)
	return err
}

// GetList performs a GET against a paginated endpoint, returning pagination
// meta when the response carried it.
func (c *Client) GetList(ctx context.Context, path string, out any) (*Meta, error) {
	return c.do(ctx, http.MethodGet, path, nil, nil, out)
}

// Post sends a JSON body and decodes the payload into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	_, err := c.do(ctx, http.MethodPost, path, body, nil, out)
	return err
}

// PostForm sends form-encoded parameters, the convention of the backend's
// token grant endpoint.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	_, err := c.do(ctx, http.MethodPost, path, nil, form, out)
	return err
}

// Put sends a JSON body and decodes the payload into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	_, err := c.do(ctx, http.MethodPut, path, body, nil, out)
	return err
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// PIPELINE CORE
// ══════════════════════════════════════════════════════════════════════════════

// buildError marks request-construction failures, which are neither transport
// failures nor retryable.
type buildError struct {
	err error
}

func (e *buildError) Error() string { return e.err.Error() }
func (e *buildError) Unwrap() error { return e.err }

func (c *Client) do(ctx context.Context, method, path string, body any, form url.Values, out any) (*Meta, error) {
	var (
		status   int
		respBody []byte
	)

	attempt := func(ctx context.Context) error {
		req, err := c.newRequest(ctx, method, path, body, form)
		if err != nil {
			return &buildError{err: err}
		}

		resp, err := c.send(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		status, respBody = resp.StatusCode, b
		return nil
	}

	cfg := c.config.Retry
	if method != http.MethodGet {
		cfg.MaxAttempts = 1
	}
	cfg.RetryIf = func(err error) bool {
		var be *buildError
		return !errors.As(err, &be)
	}
	cfg.OnRetry = func(n int, err error, delay time.Duration) {
		c.logger.Debug("retrying request", "method", method, "path", path,
			"attempt", n, "delay", delay, "error", err)
	}

	if err := retry.Do(ctx, cfg, attempt); err != nil {
		var be *buildError
		if errors.As(err, &be) {
			return nil, be.err
		}
		return nil, c.fail(&Error{Kind: ErrTransport, Message: msgNetworkError, Err: err})
	}

	if status >= 400 {
		return nil, c.fail(classify(status, respBody))
	}

	return c.normalize(respBody, out)
}

// normalize applies the envelope rules: a wrapped body with a non-zero code is
// a logical failure even though the transport succeeded; otherwise the payload
// is unwrapped (or returned as-is) into out.
func (c *Client) normalize(body []byte, out any) (*Meta, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	if env, ok := parseEnvelope(body); ok {
		if *env.Code != 0 {
			msg := env.message()
			if msg == "" {
				msg = msgRequestFailed
			}
			return nil, c.fail(&Error{Kind: ErrLogical, Code: *env.Code, Message: msg})
		}
		if out != nil && len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return nil, fmt.Errorf("decode payload: %w", err)
			}
		}
		return env.meta(), nil
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
	}
	return nil, nil
}

// fail runs the centralized side effects for a classified failure and returns
// it: raise the notification, then on 401 invalidate the session. The error is
// always re-raised to the caller, never swallowed.
func (c *Client) fail(e *Error) error {
	c.logger.Warn("api call failed", "kind", fmt.Sprint(e.Kind),
		"status", e.Status, "message", e.Message)

	if c.notify != nil {
		c.notify.Error(e.Message)
	}
	if errors.Is(e, ErrUnauthorized) && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	return e
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, form url.Values) (*http.Request, error) {
	fullURL := c.config.BaseURL + path

	var reader io.Reader
	contentType := ""
	switch {
	case form != nil:
		reader = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case body != nil:
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	return req, nil
}
