// Package resilience provides the fault-tolerance primitives used around the
// object store and the message bus: a circuit breaker, exponential-backoff
// retry, and a context-based timeout wrapper.
package resilience

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the circuit breaker is in the Open state.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the current phase of a circuit breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
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

// CircuitBreakerConfig controls failure thresholds and recovery timing.
// OnStateChange, if set, is called with the lock released after every
// transition.
type CircuitBreakerConfig struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	HalfOpenMaxRequests int
	OnStateChange       func(name string, from, to State)
}

func defaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold:    5,
		ResetTimeout:        30 * time.Second,
		HalfOpenMaxRequests: 1,
	}
}

// CircuitBreaker tracks consecutive failures and trips open when the
// threshold is reached. After ResetTimeout it admits a limited number of
// half-open probes; one success closes it again.
type CircuitBreaker struct {
	name                string
	cfg                 CircuitBreakerConfig
	mu                  sync.Mutex
	state               State
	logger              *slog.Logger
	now                 func() time.Time
	consecutiveFailures int
	openedAt            time.Time
	halfOpenRequests    int
}

// NewCircuitBreaker creates a CircuitBreaker with the given config, filling
// in defaults for zero values.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	defaults := defaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = defaults.ResetTimeout
	}
	if cfg.HalfOpenMaxRequests <= 0 {
		cfg.HalfOpenMaxRequests = defaults.HalfOpenMaxRequests
	}
	return &CircuitBreaker{
		name:   name,
		cfg:    cfg,
		state:  StateClosed,
		logger: slog.Default().With("component", "circuit-breaker", "name", name),
		now:    time.Now,
	}
}

// Execute runs fn if the circuit allows it, recording success or failure.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}
	err := fn()
	cb.afterRequest(err)
	return err
}

// GetState returns the current State of the circuit breaker.
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	switch cb.state {
	case StateOpen:
		elapsed := cb.now().Sub(cb.openedAt)
		if elapsed < cb.cfg.ResetTimeout {
			cb.mu.Unlock()
			return fmt.Errorf("%w: %s (retry after %v)", ErrCircuitOpen, cb.name, cb.cfg.ResetTimeout-elapsed)
		}
		cb.halfOpenRequests = 1
		notify := cb.setState(StateHalfOpen)
		cb.mu.Unlock()
		notify()
		return nil
	case StateHalfOpen:
		defer cb.mu.Unlock()
		if cb.halfOpenRequests >= cb.cfg.HalfOpenMaxRequests {
			return fmt.Errorf("%w: %s (half-open probe limit reached)", ErrCircuitOpen, cb.name)
		}
		cb.halfOpenRequests++
		return nil
	}
	cb.mu.Unlock()
	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	notify := func() {}
	if err == nil {
		cb.consecutiveFailures = 0
		if cb.state == StateHalfOpen {
			notify = cb.setState(StateClosed)
		}
	} else {
		cb.consecutiveFailures++
		switch cb.state {
		case StateClosed:
			if cb.consecutiveFailures >= cb.cfg.FailureThreshold {
				cb.openedAt = cb.now()
				notify = cb.setState(StateOpen)
			}
		case StateHalfOpen:
			cb.openedAt = cb.now()
			notify = cb.setState(StateOpen)
		}
	}
	cb.mu.Unlock()
	notify()
}

// setState must be called with mu held. The returned func runs the
// OnStateChange hook and must be called after unlocking.
func (cb *CircuitBreaker) setState(to State) func() {
	from := cb.state
	cb.state = to
	cb.logger.Info("circuit state changed",
		"from", from.String(),
		"to", to.String(),
		"consecutive_failures", cb.consecutiveFailures,
	)
	if to != StateHalfOpen {
		cb.halfOpenRequests = 0
	}
	hook := cb.cfg.OnStateChange
	return func() {
		if hook != nil {
			hook(cb.name, from, to)
		}
	}
}
