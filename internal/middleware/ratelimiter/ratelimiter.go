package ratelimiter

import (
	"sync"
	"time"
)

// Bucket implements a token bucket for a single identity
type Bucket struct {
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
	mu         sync.Mutex
	timer      *time.Timer
	identity   string   // Reference to identity for cleanup
	parent     *Limiter // Reference to parent for cleanup
}

// Limiter manages per-identity token buckets. Identities that stay
// quiet for expirationTime get their bucket dropped.
type Limiter struct {
	buckets        map[string]*Bucket
	mu             sync.RWMutex
	rate           float64
	capacity       float64
	expirationTime time.Duration
}

// New creates a Limiter refilling rate tokens per second up to capacity
func New(rate float64, capacity float64, expirationTime time.Duration) *Limiter {
	return &Limiter{
		buckets:        make(map[string]*Bucket),
		rate:           rate,
		capacity:       capacity,
		expirationTime: expirationTime,
	}
}

// cleanup removes a specific bucket
func (l *Limiter) cleanup(identity string) {
	l.mu.Lock()
	delete(l.buckets, identity)
	l.mu.Unlock()
}

// resetTimer resets the expiration timer for a bucket
func (b *Bucket) resetTimer() {
	if b.timer != nil {
		b.timer.Stop()
	}

	b.timer = time.AfterFunc(b.parent.expirationTime, func() {
		b.parent.cleanup(b.identity)
	})
}

// getBucket gets or creates a bucket for an identity
func (l *Limiter) getBucket(identity string) *Bucket {
	// First try read-only lookup
	l.mu.RLock()
	bucket, exists := l.buckets[identity]
	l.mu.RUnlock()

	if exists {
		bucket.resetTimer()
		return bucket
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	bucket, exists = l.buckets[identity]
	if exists {
		bucket.resetTimer()
		return bucket
	}

	bucket = &Bucket{
		tokens:     l.capacity,
		capacity:   l.capacity,
		rate:       l.rate,
		lastRefill: time.Now(),
		identity:   identity,
		parent:     l,
	}
	l.buckets[identity] = bucket
	bucket.resetTimer()

	return bucket
}

func (b *Bucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()

	// Refill tokens based on elapsed time
	b.tokens += elapsed * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}

	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}

	return false
}

// Allow checks if a request should be allowed for a given identity
func (l *Limiter) Allow(identity string) bool {
	return l.getBucket(identity).Allow()
}

// Stop cleans up all timers
func (l *Limiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, bucket := range l.buckets {
		if bucket.timer != nil {
			bucket.timer.Stop()
		}
	}
}
