package http

import (
	"sync"
	"time"
)

type visitor struct {
	tokens   float64
	refilled time.Time
	lastSeen time.Time
}

// RateLimiter is a token bucket limiter keyed by client identifier. Buckets
// refill continuously and idle clients are pruned after the configured TTL.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	burst     float64
	perSecond float64
	ttl       time.Duration
	now       func() time.Time
}

// NewRateLimiter constructs a rate limiter with the provided settings.
func NewRateLimiter(burst int, perSecond float64, ttl time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors:  make(map[string]*visitor),
		burst:     float64(burst),
		perSecond: perSecond,
		ttl:       ttl,
		now:       time.Now,
	}

	if ttl > 0 {
		ticker := time.NewTicker(ttl)
		go func() {
			for range ticker.C {
				rl.pruneStale()
			}
		}()
	}

	return rl
}

// Allow consumes a token for the provided key if one is available.
func (rl *RateLimiter) Allow(key string) bool {
	if key == "" {
		key = "unknown"
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{tokens: rl.burst, refilled: now, lastSeen: now}
		rl.visitors[key] = v
	}

	elapsed := now.Sub(v.refilled).Seconds()
	if elapsed > 0 {
		v.tokens += elapsed * rl.perSecond
		if v.tokens > rl.burst {
			v.tokens = rl.burst
		}
		v.refilled = now
	}

	v.lastSeen = now

	if v.tokens < 1 {
		return false
	}

	v.tokens--
	return true
}

func (rl *RateLimiter) pruneStale() {
	if rl.ttl <= 0 {
		return
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.ttl {
			delete(rl.visitors, key)
		}
	}
}
