package resilience

import (
	"errors"
	"testing"
	"time"
)

var errBackendDown = errors.New("completion rejected")

// failCompletions runs n failing calls through the breaker, mimicking a
// backend that rejects every sentence of a transcript.
func failCompletions(cb *CircuitBreaker, n int) {
	for range n {
		_ = cb.Execute(func() error { return errBackendDown })
	}
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "openai"})
	if cb.maxFailures != 5 {
		t.Errorf("maxFailures = %d, want 5", cb.maxFailures)
	}
	if cb.resetTimeout != 30*time.Second {
		t.Errorf("resetTimeout = %v, want 30s", cb.resetTimeout)
	}
	if cb.halfOpenMax != 3 {
		t.Errorf("halfOpenMax = %d, want 3", cb.halfOpenMax)
	}
	if cb.State() != StateClosed {
		t.Errorf("initial state = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_ClosedForwardsCompletions(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "openai", MaxFailures: 3})

	calls := 0
	for range 4 {
		err := cb.Execute(func() error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 4 {
		t.Fatalf("backend saw %d completions, want 4", calls)
	}
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "ollama",
		MaxFailures:  3,
		ResetTimeout: time.Hour, // never cools down within the test
	})

	failCompletions(cb, 3)
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open after 3 straight failures", cb.State())
	}

	// The next sentence is shed without reaching the backend.
	reached := false
	err := cb.Execute(func() error {
		reached = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if reached {
		t.Fatal("open breaker forwarded a completion to the backend")
	}
}

func TestCircuitBreaker_SuccessClearsFailureStreak(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "ollama", MaxFailures: 3})

	failCompletions(cb, 2)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed after recovered completion", cb.State())
	}

	// The streak restarted, so two more failures still do not open it.
	failCompletions(cb, 2)
	if cb.State() != StateClosed {
		t.Fatal("breaker opened on a non-consecutive failure streak")
	}
}

func TestCircuitBreaker_CooldownAdmitsTrials(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "groq",
		MaxFailures:  2,
		ResetTimeout: 10 * time.Millisecond,
		HalfOpenMax:  2,
	})

	failCompletions(cb, 2)
	if cb.State() != StateOpen {
		t.Fatal("expected open")
	}

	time.Sleep(15 * time.Millisecond)

	if cb.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open after cooldown", cb.State())
	}
}

func TestCircuitBreaker_ClosesAfterSuccessfulTrials(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "groq",
		MaxFailures:  2,
		ResetTimeout: 10 * time.Millisecond,
		HalfOpenMax:  2,
	})

	failCompletions(cb, 2)
	time.Sleep(15 * time.Millisecond)

	for i := range 2 {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("trial completion %d: unexpected error: %v", i, err)
		}
	}

	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed after successful trials", cb.State())
	}
}

func TestCircuitBreaker_ReopensOnFailedTrial(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "mistral",
		MaxFailures:  2,
		ResetTimeout: 10 * time.Millisecond,
		HalfOpenMax:  3,
	})

	failCompletions(cb, 2)
	time.Sleep(15 * time.Millisecond)

	if err := cb.Execute(func() error { return errBackendDown }); err == nil {
		t.Fatal("expected error from failing trial completion")
	}

	// Open again, not half-open, since lastFailure was just refreshed.
	cb.mu.Lock()
	s := cb.state
	cb.mu.Unlock()
	if s != StateOpen {
		t.Fatalf("state = %v, want open after failed trial", s)
	}
}

func TestCircuitBreaker_ResetAfterConfigReload(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "openai",
		MaxFailures:  2,
		ResetTimeout: time.Hour,
	})

	failCompletions(cb, 2)
	if cb.State() != StateOpen {
		t.Fatal("expected open")
	}

	cb.Reset()
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed after reset", cb.State())
	}

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("unexpected error after reset: %v", err)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
