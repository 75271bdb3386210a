package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when every backend in a [FallbackGroup] either
// failed or has an open circuit breaker. For the classifier this means the
// sentence goes unclassified; analysis itself continues on pattern results.
var ErrAllFailed = errors.New("all providers failed")

// FallbackConfig configures the circuit breaker created for each backend in a
// [FallbackGroup].
type FallbackConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

// fallbackEntry pairs a backend with its dedicated circuit breaker.
type fallbackEntry[T any] struct {
	name    string
	value   T
	breaker *CircuitBreaker
}

// FallbackGroup chains a primary backend with zero or more fallbacks of the
// same type. Each classification call walks the chain in registration order,
// skipping entries whose breaker is open, until one backend answers.
//
// FallbackGroup is safe for concurrent use once assembled; [FallbackGroup.AddFallback]
// must happen before the first call.
type FallbackGroup[T any] struct {
	entries []fallbackEntry[T]
	cfg     FallbackConfig
}

// NewFallbackGroup creates a [FallbackGroup] with primary as the first entry.
// Additional backends are registered via [FallbackGroup.AddFallback].
func NewFallbackGroup[T any](primary T, primaryName string, cfg FallbackConfig) *FallbackGroup[T] {
	fg := &FallbackGroup[T]{cfg: cfg}
	fg.entries = append(fg.entries, fg.newEntry(primaryName, primary))
	return fg
}

// AddFallback appends a fallback backend. Fallbacks are tried in the order
// they are added, after the primary.
func (fg *FallbackGroup[T]) AddFallback(name string, fallback T) {
	fg.entries = append(fg.entries, fg.newEntry(name, fallback))
}

func (fg *FallbackGroup[T]) newEntry(name string, value T) fallbackEntry[T] {
	cbCfg := fg.cfg.CircuitBreaker
	cbCfg.Name = name
	return fallbackEntry[T]{
		name:    name,
		value:   value,
		breaker: NewCircuitBreaker(cbCfg),
	}
}

// Execute tries fn against each backend in order until one succeeds. Entries
// with an open breaker are skipped without a network call. Returns
// [ErrAllFailed] wrapped with the last error if the whole chain fails.
func (fg *FallbackGroup[T]) Execute(fn func(T) error) error {
	var lastErr error
	for i := range fg.entries {
		entry := &fg.entries[i]
		err := entry.breaker.Execute(func() error {
			return fn(entry.value)
		})
		if err == nil {
			return nil
		}
		lastErr = err
		logChainStep(entry.name, err)
	}
	return fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}

// ExecuteWithResult tries fn against each backend until one succeeds,
// returning the result value. Package-level because Go does not support
// method-level type parameters.
func ExecuteWithResult[T any, R any](fg *FallbackGroup[T], fn func(T) (R, error)) (R, error) {
	var (
		lastErr error
		zero    R
	)
	for i := range fg.entries {
		entry := &fg.entries[i]
		var result R
		err := entry.breaker.Execute(func() error {
			var innerErr error
			result, innerErr = fn(entry.value)
			return innerErr
		})
		if err == nil {
			return result, nil
		}
		lastErr = err
		logChainStep(entry.name, err)
	}
	return zero, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}

// logChainStep records why the chain moved past a backend. Open breakers log
// at debug, once per sentence that would be too noisy at warn.
func logChainStep(name string, err error) {
	if errors.Is(err, ErrCircuitOpen) {
		slog.Debug("skipping llm backend, breaker open", "backend", name)
		return
	}
	slog.Warn("llm backend failed, trying next in chain",
		"backend", name, "error", err)
}
