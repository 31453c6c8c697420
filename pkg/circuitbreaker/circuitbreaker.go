// Package circuitbreaker implements the circuit breaker pattern. It sits in
// front of the platform API transport and stops hammering a backend that is
// already failing: after a run of consecutive failures the circuit opens and
// calls fail fast until a cooldown passes.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the current circuit state.
type State int

const (
	// StateClosed allows requests through.
	StateClosed State = iota
	// StateOpen rejects requests without calling the backend.
	StateOpen
	// StateHalfOpen lets a limited number of probe requests through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned when the circuit rejects a call.
var ErrOpen = errors.New("circuit breaker is open")

// Config holds circuit breaker settings.
type Config struct {
	// Name identifies the breaker in logs.
	Name string

	// FailureThreshold is the consecutive-failure count that opens the circuit.
	FailureThreshold int

	// SuccessThreshold is the consecutive-success count in half-open state
	// that closes the circuit again.
	SuccessThreshold int

	// Cooldown is how long the circuit stays open before probing.
	Cooldown time.Duration

	// MaxProbes limits concurrent requests in half-open state.
	MaxProbes int

	// OnStateChange is called on every transition.
	OnStateChange func(name string, from, to State)

	// IsFailure decides whether an error counts against the circuit.
	// When nil every non-nil error counts.
	IsFailure func(error) bool
}

// DefaultConfig returns settings suited to the platform API: open after a
// short run of failures, probe again after half a minute.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
		MaxProbes:        1,
	}
}

// Counts tracks request outcomes since the last state change.
type Counts struct {
	Requests             int
	ConsecutiveSuccesses int
	ConsecutiveFailures  int
}

// CircuitBreaker guards calls to a single backend.
type CircuitBreaker struct {
	config Config

	mu          sync.Mutex
	state       State
	counts      Counts
	openedAt    time.Time
	probesInUse int
}

// New creates a circuit breaker. Zero-valued config fields fall back to
// DefaultConfig values.
func New(config Config) *CircuitBreaker {
	def := DefaultConfig(config.Name)
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = def.FailureThreshold
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = def.SuccessThreshold
	}
	if config.Cooldown <= 0 {
		config.Cooldown = def.Cooldown
	}
	if config.MaxProbes <= 0 {
		config.MaxProbes = def.MaxProbes
	}

	return &CircuitBreaker{config: config, state: StateClosed}
}

// Execute runs fn if the circuit allows it and records the outcome.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.afterRequest(err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil

	case StateOpen:
		if time.Since(cb.openedAt) >= cb.config.Cooldown {
			cb.setState(StateHalfOpen)
			cb.probesInUse = 1
			return nil
		}
		return ErrOpen

	case StateHalfOpen:
		if cb.probesInUse < cb.config.MaxProbes {
			cb.probesInUse++
			return nil
		}
		return ErrOpen

	default:
		return ErrOpen
	}
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.counts.Requests++

	// A completed probe frees its slot; MaxProbes limits in-flight probes,
	// not the total admitted while half-open.
	if cb.state == StateHalfOpen && cb.probesInUse > 0 {
		cb.probesInUse--
	}

	failed := err != nil
	if failed && cb.config.IsFailure != nil {
		failed = cb.config.IsFailure(err)
	}

	if failed {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
}

func (cb *CircuitBreaker) onSuccess() {
	cb.counts.ConsecutiveSuccesses++
	cb.counts.ConsecutiveFailures = 0

	if cb.state == StateHalfOpen && cb.counts.ConsecutiveSuccesses >= cb.config.SuccessThreshold {
		cb.setState(StateClosed)
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.counts.ConsecutiveFailures++
	cb.counts.ConsecutiveSuccesses = 0

	switch cb.state {
	case StateClosed:
		if cb.counts.ConsecutiveFailures >= cb.config.FailureThreshold {
			cb.openedAt = time.Now()
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		// A failed probe reopens the circuit immediately.
		cb.openedAt = time.Now()
		cb.setState(StateOpen)
	}
}

func (cb *CircuitBreaker) setState(newState State) {
	if cb.state == newState {
		return
	}

	oldState := cb.state
	cb.state = newState
	cb.counts = Counts{}
	cb.probesInUse = 0

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, oldState, newState)
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Counts returns the outcome counters since the last state change.
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.counts
}

// Reset returns the circuit to the closed state with cleared counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.counts = Counts{}
	cb.probesInUse = 0
}
