package httpclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(3, time.Minute)
	cb.now = func() time.Time { return now }

	t.Run("opens after threshold failures", func(t *testing.T) {
		assert.Equal(t, CircuitClosed, cb.State())
		cb.RecordFailure()
		cb.RecordFailure()
		assert.True(t, cb.Allow())
		cb.RecordFailure()
		assert.Equal(t, CircuitOpen, cb.State())
		assert.False(t, cb.Allow())
	})

	t.Run("allows a single probe after the timeout", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		assert.True(t, cb.Allow())
		assert.Equal(t, CircuitHalfOpen, cb.State())
		assert.False(t, cb.Allow(), "only one probe in flight")
	})

	t.Run("failed probe reopens", func(t *testing.T) {
		cb.RecordFailure()
		assert.Equal(t, CircuitOpen, cb.State())
	})

	t.Run("successful probe closes", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		assert.True(t, cb.Allow())
		cb.RecordSuccess()
		assert.Equal(t, CircuitClosed, cb.State())
		assert.Equal(t, 0, cb.Failures())
	})
}

func TestCircuitBreaker_Disabled(t *testing.T) {
	cb := NewCircuitBreaker(0, time.Minute)
	for i := 0; i < 10; i++ {
		cb.RecordFailure()
	}
	assert.Equal(t, CircuitClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitState_String(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(42).String())
}
