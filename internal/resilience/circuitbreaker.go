// Package resilience keeps sentence classification running when an LLM
// backend misbehaves. The classifier issues one completion call per sentence,
// so a dead backend would otherwise be retried for every sentence of a
// transcript. [CircuitBreaker] sheds those calls once a backend has failed
// repeatedly, and [FallbackGroup] routes each classification to the next
// healthy backend in the chain.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by [CircuitBreaker.Execute] while the breaker is
// open and the cooldown has not yet elapsed.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the operating mode of a [CircuitBreaker].
type State int

const (
	// StateClosed forwards every call. This is the normal mode.
	StateClosed State = iota

	// StateOpen rejects calls immediately with [ErrCircuitOpen]. The breaker
	// enters this mode after too many consecutive completion failures and
	// leaves it when the cooldown elapses.
	StateOpen

	// StateHalfOpen lets a small number of trial calls through after the
	// cooldown. If they succeed the breaker closes; a single failure re-opens
	// it.
	StateHalfOpen
)

// String returns the human-readable name of the state.
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

// CircuitBreakerConfig holds tuning knobs for a [CircuitBreaker].
type CircuitBreakerConfig struct {
	// Name labels the backend in log messages, e.g. "openai".
	Name string

	// MaxFailures is the number of consecutive completion failures before the
	// breaker opens. Default: 5.
	MaxFailures int

	// ResetTimeout is the cooldown before an open breaker admits trial calls
	// again. Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMax is how many trial calls the half-open state admits before
	// the breaker decides to close or re-open. Default: 3.
	HalfOpenMax int
}

// CircuitBreaker guards a single LLM backend. Classification traffic is bursty
// (a whole transcript of sentences at once), so the breaker counts consecutive
// failures rather than a failure rate: a backend that rejects every completion
// trips the breaker within one transcript instead of degrading the run
// sentence by sentence.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int

	mu              sync.Mutex
	state           State
	consecutiveFail int
	lastFailure     time.Time
	halfOpenCalls   int
	halfOpenFails   int
}

// NewCircuitBreaker creates a [CircuitBreaker] with the supplied configuration.
// Zero-value config fields get defaults.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = 3
	}
	return &CircuitBreaker{
		name:         cfg.Name,
		maxFailures:  cfg.MaxFailures,
		resetTimeout: cfg.ResetTimeout,
		halfOpenMax:  cfg.HalfOpenMax,
		state:        StateClosed,
	}
}

// Execute runs fn if the breaker admits the call. In the open state it returns
// [ErrCircuitOpen] without calling fn, which is cheap enough to do once per
// sentence.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	inHalfOpen, err := cb.admit()
	if err != nil {
		return err
	}

	err = fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.onFailure(inHalfOpen)
	} else {
		cb.onSuccess(inHalfOpen)
	}
	return err
}

// admit decides whether a call may proceed and reserves a half-open slot for
// it. The returned flag tells the caller which accounting applies afterwards.
func (cb *CircuitBreaker) admit() (inHalfOpen bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastFailure) < cb.resetTimeout {
			return false, ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.halfOpenCalls = 0
		cb.halfOpenFails = 0
		slog.Info("llm backend breaker half-open, admitting trial completions",
			"backend", cb.name)

	case StateHalfOpen:
		if cb.halfOpenCalls >= cb.halfOpenMax {
			// Trial budget spent, further sentences wait for the verdict.
			return false, ErrCircuitOpen
		}
	}

	if cb.state == StateHalfOpen {
		cb.halfOpenCalls++
		return true, nil
	}
	return false, nil
}

// onFailure handles failure accounting. Must be called with cb.mu held.
func (cb *CircuitBreaker) onFailure(inHalfOpen bool) {
	cb.lastFailure = time.Now()

	if inHalfOpen {
		cb.halfOpenFails++
		// One failed trial completion is enough to re-open.
		cb.state = StateOpen
		cb.consecutiveFail = cb.maxFailures
		slog.Warn("llm backend breaker re-opened after failed trial",
			"backend", cb.name)
		return
	}

	cb.consecutiveFail++
	if cb.consecutiveFail >= cb.maxFailures {
		cb.state = StateOpen
		slog.Warn("llm backend breaker opened, shedding classification calls",
			"backend", cb.name,
			"consecutive_failures", cb.consecutiveFail)
	}
}

// onSuccess handles success accounting. Must be called with cb.mu held.
func (cb *CircuitBreaker) onSuccess(inHalfOpen bool) {
	if inHalfOpen {
		successes := cb.halfOpenCalls - cb.halfOpenFails
		if successes >= cb.halfOpenMax {
			cb.state = StateClosed
			cb.consecutiveFail = 0
			cb.halfOpenCalls = 0
			cb.halfOpenFails = 0
			slog.Info("llm backend breaker closed, backend healthy again",
				"backend", cb.name)
		}
		return
	}

	cb.consecutiveFail = 0
}

// State returns the current [State]. An open breaker whose cooldown has
// elapsed reports [StateHalfOpen]; the transition itself happens on the next
// [CircuitBreaker.Execute].
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && time.Since(cb.lastFailure) >= cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Reset forces the breaker back to [StateClosed], clearing all counters.
// Used when a config reload swaps in fresh backend credentials.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.consecutiveFail = 0
	cb.halfOpenCalls = 0
	cb.halfOpenFails = 0
	slog.Info("llm backend breaker reset", "backend", cb.name)
}
