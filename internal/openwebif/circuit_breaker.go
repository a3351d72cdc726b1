// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"errors"
	"sync"
	"time"

	"github.com/ManuGH/sportsdvr/internal/metrics"
)

// State is the circuit breaker state, also used as the metrics label.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker stops calling the receiver after consecutive host failures.
// Once resetTimeout has passed a single probe call is let through; its outcome
// closes or reopens the circuit. Only errors accepted by isFailure count.
type CircuitBreaker struct {
	component    string
	threshold    int
	resetTimeout time.Duration
	isFailure    func(error) bool
	now          func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// NewCircuitBreaker reports its state under the given metrics component.
func NewCircuitBreaker(component string, threshold int, resetTimeout time.Duration) *CircuitBreaker {
	cb := &CircuitBreaker{
		component:    component,
		threshold:    max(threshold, 1),
		resetTimeout: resetTimeout,
		isFailure:    func(err error) bool { return err != nil },
		now:          time.Now,
		state:        StateClosed,
	}
	metrics.SetCircuitBreakerState(component, string(StateClosed))
	return cb
}

// Execute runs fn unless the circuit is open or a probe is already running.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.acquire() {
		return ErrCircuitOpen
	}
	err := fn()
	cb.release(err != nil && cb.isFailure(err))
	return err
}

func (cb *CircuitBreaker) acquire() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Sub(cb.openedAt) <= cb.resetTimeout {
			return false
		}
		cb.transition(StateHalfOpen)
	}
	if cb.probing {
		return false
	}
	cb.probing = true
	return true
}

func (cb *CircuitBreaker) release(failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	probe := cb.state == StateHalfOpen
	if probe {
		cb.probing = false
	}
	if !failed {
		cb.failures = 0
		cb.transition(StateClosed)
		return
	}
	cb.failures++
	if probe || cb.failures >= cb.threshold {
		cb.openedAt = cb.now()
		cb.transition(StateOpen)
	}
}

// transition must be called with mu held.
func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		return
	}
	cb.state = to
	metrics.SetCircuitBreakerState(cb.component, string(to))
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
