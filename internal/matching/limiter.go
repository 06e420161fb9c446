// internal/matching/limiter.go

package matching

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SwipeLimiter throttles swipe bursts per user. This is abuse
// protection, separate from the daily like budget.
type SwipeLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*userLimiter
	rate     rate.Limit
	burst    int
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewSwipeLimiter(perMinute int) *SwipeLimiter {
	return &SwipeLimiter{
		limiters: make(map[int64]*userLimiter),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
	}
}

// Allow reports whether userID may swipe right now
func (l *SwipeLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	ul, ok := l.limiters[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[userID] = ul
	}
	ul.lastSeen = time.Now()

	return ul.limiter.Allow()
}

// Cleanup drops limiters idle for longer than maxIdle
func (l *SwipeLimiter) Cleanup(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	for id, ul := range l.limiters {
		if ul.lastSeen.Before(cutoff) {
			delete(l.limiters, id)
		}
	}
}

// StartCleanup runs Cleanup on a ticker until stop is closed
func (l *SwipeLimiter) StartCleanup(interval, maxIdle time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Cleanup(maxIdle)
			case <-stop:
				return
			}
		}
	}()
}
