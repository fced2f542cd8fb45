package retry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoffRespectsMaxAttempts(t *testing.T) {
	b := NewExponentialBackoff()
	b.MaxAttempts = 3

	for attempt := 0; attempt < 3; attempt++ {
		_, ok := b.NextDelay(attempt)
		assert.True(t, ok)
	}
	_, ok := b.NextDelay(3)
	assert.False(t, ok)
}

func TestExponentialBackoffGrowsAndCaps(t *testing.T) {
	b := &ExponentialBackoff{
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     50 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       0,
		MaxAttempts:  10,
	}

	d0, _ := b.NextDelay(0)
	d3, _ := b.NextDelay(3)
	assert.Equal(t, 10*time.Millisecond, d0)
	assert.Equal(t, 50*time.Millisecond, d3) // capped
}

func TestRetrySucceedsEventually(t *testing.T) {
	b := &ExponentialBackoff{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1, MaxAttempts: 5}
	calls := 0
	err := Retry(context.Background(), b, func() error {
		calls++
		if calls < 3 {
			return stderrors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhausted(t *testing.T) {
	b := &ExponentialBackoff{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1, MaxAttempts: 2}
	calls := 0
	err := Retry(context.Background(), b, func() error {
		calls++
		return stderrors.New("still failing")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls) // attempt 0,1 retried, attempt 2 exhausts backoff
}
