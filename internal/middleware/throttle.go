package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitso-en/photovault/internal/response"
)

// Throttle enforces a per-actor fixed-window rate for a route group.
// State is in-process; each actor gets limit requests per window.
// Anonymous requests share one bucket per client IP.
type Throttle struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*throttleBucket
}

type throttleBucket struct {
	count    int
	windowAt time.Time
}

// NewThrottle creates a rate limiter allowing limit requests per window.
func NewThrottle(limit int, window time.Duration) *Throttle {
	return &Throttle{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*throttleBucket),
	}
}

// Handler is the gin middleware applying the limit.
func (t *Throttle) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if actor := GetActor(c); actor.Authenticated {
			key = actor.ID.String()
		}

		if !t.allow(key) {
			c.Header("Retry-After", t.window.String())
			response.TooManyRequests(c, "rate limit exceeded, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (t *Throttle) allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	b, ok := t.buckets[key]
	if !ok || now.Sub(b.windowAt) >= t.window {
		t.buckets[key] = &throttleBucket{count: 1, windowAt: now}
		return true
	}
	if b.count >= t.limit {
		return false
	}
	b.count++
	return true
}
