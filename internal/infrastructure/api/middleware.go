package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/edubase/edubase-client/pkg/circuitbreaker"
)

// TokenSource provides the current bearer credential. The pipeline reads it
// per request at send time, never caching a value across requests, so a
// credential change between two queued requests is reflected in each.
type TokenSource interface {
	Get() (string, bool)
}

// RoundTripFunc sends one HTTP request.
type RoundTripFunc func(req *http.Request) (*http.Response, error)

// Middleware wraps a RoundTripFunc with cross-cutting behavior.
type Middleware func(next RoundTripFunc) RoundTripFunc

// Chain composes middlewares around a base transport. The first middleware is
// outermost: Chain(base, a, b) sends requests through a, then b, then base.
func Chain(base RoundTripFunc, mws ...Middleware) RoundTripFunc {
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

// RequestID stamps every outgoing request with a unique X-Request-ID header
// for correlation with backend logs.
func RequestID() Middleware {
	return func(next RoundTripFunc) RoundTripFunc {
		return func(req *http.Request) (*http.Response, error) {
			req.Header.Set("X-Request-ID", uuid.NewString())
			return next(req)
		}
	}
}

// BearerAuth attaches the current credential as a bearer authorization header.
// The token source is consulted when the request is sent, not when the call
// was constructed.
func BearerAuth(tokens TokenSource) Middleware {
	return func(next RoundTripFunc) RoundTripFunc {
		return func(req *http.Request) (*http.Response, error) {
			if token, ok := tokens.Get(); ok {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			return next(req)
		}
	}
}

// Instrument records request counts and durations.
func Instrument(m *Metrics) Middleware {
	return func(next RoundTripFunc) RoundTripFunc {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)

			outcome := "transport_error"
			if err == nil {
				outcome = strconv.Itoa(resp.StatusCode)
			}
			m.Requests.WithLabelValues(req.Method, outcome).Inc()
			m.Duration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

			return resp, err
		}
	}
}

// errUpstream marks a 5xx response inside the breaker callback so it counts
// against the circuit. The response itself is still handed to the caller for
// normal classification.
var errUpstream = errors.New("upstream failure")

// CircuitBreak routes requests through a circuit breaker. Transport errors
// and 5xx responses count as failures; while the circuit is open, requests
// fail fast without reaching the backend.
func CircuitBreak(cb *circuitbreaker.CircuitBreaker) Middleware {
	return func(next RoundTripFunc) RoundTripFunc {
		return func(req *http.Request) (*http.Response, error) {
			var resp *http.Response
			err := cb.Execute(req.Context(), func(context.Context) error {
				var sendErr error
				resp, sendErr = next(req)
				if sendErr != nil {
					return sendErr
				}
				if resp.StatusCode >= http.StatusInternalServerError {
					return errUpstream
				}
				return nil
			})

			if resp != nil {
				return resp, nil
			}
			return nil, err
		}
	}
}

// Logging emits a debug line per request with its duration and status.
func Logging(logger *slog.Logger) Middleware {
	return func(next RoundTripFunc) RoundTripFunc {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)

			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"duration", time.Since(start),
			}
			if err != nil {
				logger.Debug("api request failed", append(attrs, "error", err)...)
			} else {
				logger.Debug("api request", append(attrs, "status", resp.StatusCode)...)
			}

			return resp, err
		}
	}
}
