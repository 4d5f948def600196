package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowsWithinLimit(t *testing.T) {
	limiter := NewLimiter(time.Minute, 3)

	for i := 0; i < 3; i++ {
		result := limiter.Allow("shop-a")
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 2-i, result.Remaining)
	}

	result := limiter.Allow("shop-a")
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
}

func TestLimiter_IdentifiersAreIndependent(t *testing.T) {
	limiter := NewLimiter(time.Minute, 1)

	assert.True(t, limiter.Allow("shop-a").Allowed)
	assert.False(t, limiter.Allow("shop-a").Allowed)
	assert.True(t, limiter.Allow("shop-b").Allowed)
}

func TestLimiter_WindowResets(t *testing.T) {
	limiter := NewLimiter(time.Minute, 1)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("shop-a").Allowed)
	assert.False(t, limiter.Allow("shop-a").Allowed)

	now = now.Add(time.Minute + time.Second)
	assert.True(t, limiter.Allow("shop-a").Allowed)
}

func TestLimiter_SweepsExpiredEntries(t *testing.T) {
	limiter := NewLimiter(time.Minute, 5)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	for i := 0; i < cleanupThreshold; i++ {
		limiter.Allow(string(rune('a'+i%26)) + string(rune('0'+i%10)) + time.Duration(i).String())
	}

	now = now.Add(2 * time.Minute)
	limiter.Allow("fresh")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.LessOrEqual(t, len(limiter.entries), 2)
}
