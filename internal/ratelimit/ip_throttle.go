package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IPThrottle is a token bucket per client IP for unauthenticated endpoints.
type IPThrottle struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	perSecond rate.Limit
	burst     int
	ttl       time.Duration
	now       func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewIPThrottle builds a throttle; perSecond <= 0 disables it.
func NewIPThrottle(perSecond float64, burst int) *IPThrottle {
	if burst <= 0 {
		burst = 1
	}
	return &IPThrottle{
		buckets:   make(map[string]*bucket),
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		ttl:       5 * time.Minute,
		now:       time.Now,
	}
}

// Allow consumes one token for ip.
func (t *IPThrottle) Allow(ip string) bool {
	if t == nil || t.perSecond <= 0 {
		return true
	}
	if ip == "" {
		ip = "unknown"
	}
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(t.perSecond, t.burst)}
		t.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// Sweep drops buckets idle for longer than the ttl and reports how many were removed.
func (t *IPThrottle) Sweep() int {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for ip, b := range t.buckets {
		if now.Sub(b.seen) > t.ttl {
			delete(t.buckets, ip)
			removed++
		}
	}
	return removed
}
