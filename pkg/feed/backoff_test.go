package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_NextOnSuccess(t *testing.T) {
	b := NewBackoff(time.Hour, 5*time.Minute, 0) // no jitter for deterministic checks

	t.Run("default interval without max-age", func(t *testing.T) {
		assert.Equal(t, time.Hour, b.NextOnSuccess(0))
	})

	t.Run("origin max-age wins", func(t *testing.T) {
		assert.Equal(t, 30*time.Minute, b.NextOnSuccess(1800))
	})

	t.Run("tiny max-age clamped up", func(t *testing.T) {
		assert.Equal(t, MinInterval, b.NextOnSuccess(5))
	})

	t.Run("huge max-age clamped down", func(t *testing.T) {
		assert.Equal(t, MaxInterval, b.NextOnSuccess(int(30*24*time.Hour/time.Second)))
	})
}

func TestBackoff_NextOnFailure(t *testing.T) {
	b := NewBackoff(time.Hour, 5*time.Minute, 0)

	tests := []struct {
		failures int
		want     time.Duration
	}{
		{1, 10 * time.Minute},
		{2, 20 * time.Minute},
		{3, 40 * time.Minute},
		{4, 80 * time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.NextOnFailure(tt.failures), "failures=%d", tt.failures)
	}

	t.Run("caps at max interval", func(t *testing.T) {
		assert.Equal(t, MaxInterval, b.NextOnFailure(12))
	})

	t.Run("counter keeps growing without overflow", func(t *testing.T) {
		assert.Equal(t, MaxInterval, b.NextOnFailure(100))
		assert.Equal(t, MaxInterval, b.NextOnFailure(100000))
	})

	t.Run("zero treated as first failure", func(t *testing.T) {
		assert.Equal(t, b.NextOnFailure(1), b.NextOnFailure(0))
	})
}

func TestBackoff_Jitter(t *testing.T) {
	b := NewBackoff(time.Hour, 5*time.Minute, 0.1)

	for range 100 {
		got := b.NextOnSuccess(0)
		assert.GreaterOrEqual(t, got, 54*time.Minute)
		assert.LessOrEqual(t, got, 66*time.Minute)
	}
}

func TestBackoff_JitterNeverEscapesBounds(t *testing.T) {
	b := NewBackoff(time.Hour, 5*time.Minute, 0.5)

	for range 100 {
		got := b.NextOnFailure(50) // deep into the cap
		assert.LessOrEqual(t, got, MaxInterval)
		assert.GreaterOrEqual(t, got, MinInterval)
	}
}

func TestNewBackoff_Defaults(t *testing.T) {
	b := NewBackoff(0, 0, 0.1)
	assert.Equal(t, time.Hour, b.DefaultInterval)
	assert.Equal(t, 5*time.Minute, b.BaseInterval)
}
