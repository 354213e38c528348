package v1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()

	limiter := newRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.allow("10.0.0.1"))
	}
	assert.False(t, limiter.allow("10.0.0.1"))

	// Other clients have their own budget.
	assert.True(t, limiter.allow("10.0.0.2"))
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	t.Parallel()

	limiter := newRateLimiter(2, time.Minute)

	current := time.Now()
	limiter.now = func() time.Time { return current }

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.1"))
	assert.False(t, limiter.allow("10.0.0.1"))

	// A fresh window resets the budget.
	current = current.Add(time.Minute)
	assert.True(t, limiter.allow("10.0.0.1"))
}
