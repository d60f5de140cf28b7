package ratelimiter

import (
	"sync"
	"time"
)

// bucket is a token bucket for a single identity.
type bucket struct {
	tokens     float64
	lastRefill time.Time
	timer      *time.Timer
	mu         sync.Mutex
}

// UserRateLimiter hands out one token bucket per identity and forgets
// identities that were idle for expirationTime.
type UserRateLimiter struct {
	buckets        map[string]*bucket
	mu             sync.RWMutex
	rate           float64 // tokens per second
	capacity       float64
	expirationTime time.Duration
}

func New(rate float64, capacity float64, expirationTime time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		buckets:        make(map[string]*bucket),
		rate:           rate,
		capacity:       capacity,
		expirationTime: expirationTime,
	}
}

func OnceInSecond() *UserRateLimiter { return New(1, 1, time.Hour) }
func OnceInMinute() *UserRateLimiter { return New(1.0/60, 1, time.Hour) }
func Rps10() *UserRateLimiter        { return New(10, 10, time.Hour) }
func Rps100() *UserRateLimiter       { return New(100, 100, time.Hour) }

func (l *UserRateLimiter) forget(identity string) {
	l.mu.Lock()
	delete(l.buckets, identity)
	l.mu.Unlock()
}

func (l *UserRateLimiter) touch(identity string, b *bucket) {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(l.expirationTime, func() { l.forget(identity) })
}

func (l *UserRateLimiter) get(identity string) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[identity]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok = l.buckets[identity]; ok {
		return b
	}
	b = &bucket{tokens: l.capacity, lastRefill: time.Now()}
	l.buckets[identity] = b
	return b
}

// Allow consumes one token of identity's bucket if available.
func (l *UserRateLimiter) Allow(identity string) bool {
	b := l.get(identity)

	b.mu.Lock()
	defer b.mu.Unlock()
	l.touch(identity, b)

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Stop cancels all expiration timers.
func (l *UserRateLimiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.buckets {
		b.mu.Lock()
		if b.timer != nil {
			b.timer.Stop()
		}
		b.mu.Unlock()
	}
}

func (l *UserRateLimiter) size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}
