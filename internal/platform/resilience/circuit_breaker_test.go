package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(now *time.Time) *CircuitBreaker {
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   1,
	})
	b.now = func() time.Time { return *now }
	return b
}

func TestCircuitBreaker_Transitions(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&now)

	var transitions []string
	b.OnStateChange(func(from, to CircuitState) {
		transitions = append(transitions, string(from)+"->"+string(to))
	})

	require.NoError(t, b.Allow())
	b.RecordFailure()
	assert.Equal(t, CircuitStateClosed, b.State())

	b.RecordFailure()
	assert.Equal(t, CircuitStateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	now = now.Add(6 * time.Second)
	require.NoError(t, b.Allow())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen, "only one probe admitted")

	b.RecordSuccess()
	assert.Equal(t, CircuitStateClosed, b.State())
	assert.Equal(t, []string{"closed->open", "open->half_open", "half_open->closed"}, transitions)
}

func TestCircuitBreaker_Execute(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&now)
	errNotFound := errors.New("not found")
	errUpstream := errors.New("upstream 503")

	isFailure := func(err error) bool { return !errors.Is(err, errNotFound) }

	for i := 0; i < 3; i++ {
		err := b.Execute(func() error { return errNotFound }, isFailure)
		assert.ErrorIs(t, err, errNotFound)
	}
	assert.Equal(t, CircuitStateClosed, b.State(), "client errors do not trip the breaker")

	for i := 0; i < 2; i++ {
		_ = b.Execute(func() error { return errUpstream }, isFailure)
	}
	assert.Equal(t, CircuitStateOpen, b.State())

	called := false
	err := b.Execute(func() error { called = true; return nil }, isFailure)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_DisabledPassesThrough(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{Enabled: false, FailureThreshold: 1})
	boom := errors.New("boom")
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, b.Execute(func() error { return boom }, nil), boom)
	}
	assert.Equal(t, CircuitStateClosed, b.State())
}
