package v1

import (
	"sync"
	"time"
)

type rateWindow struct {
	start time.Time
	count int
}

// rateLimiter is a fixed-window counter keyed by client. Counters
// are process-local; the state is owned by the handler that created
// the limiter, not by a package global.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]rateWindow
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		windows: make(map[string]rateWindow),
	}
}

// allow records an attempt for key and reports whether it is still
// within the budget for the current window.
func (l *rateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		l.windows[key] = rateWindow{start: now, count: 1}
		return true
	}

	w.count++
	l.windows[key] = w
	return w.count <= l.limit
}

// prune drops expired windows. Called with the mutex held.
func (l *rateLimiter) prune(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
}
