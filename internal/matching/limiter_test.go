// internal/matching/limiter_test.go

package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSwipeLimiterBurst(t *testing.T) {
	l := NewSwipeLimiter(2)

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1), "burst exhausted")

	assert.True(t, l.Allow(2), "limits are per user")
}

func TestSwipeLimiterCleanup(t *testing.T) {
	l := NewSwipeLimiter(10)
	l.Allow(1)
	l.Allow(2)

	l.Cleanup(time.Nanosecond)

	l.mu.Lock()
	remaining := len(l.limiters)
	l.mu.Unlock()
	assert.Equal(t, 0, remaining)
}
