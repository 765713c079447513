package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// cleanupInterval is how often idle client buckets are evicted, and how
// long a bucket may sit unused before eviction.
const cleanupInterval = 5 * time.Minute

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int
	BurstSize         int
	Logger            *zap.Logger
}

// TokenBucket represents a single client's token bucket
type TokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
}

func newTokenBucket(rate, capacity int) *TokenBucket {
	return &TokenBucket{
		tokens:     float64(capacity),
		capacity:   float64(capacity),
		rate:       float64(rate),
		lastRefill: time.Now(),
	}
}

func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.tokens += now.Sub(tb.lastRefill).Seconds() * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now

	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}

// idleSince reports whether the bucket has seen no request since the
// cutoff.
func (tb *TokenBucket) idleSince(cutoff time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastRefill.Before(cutoff)
}

// bucketRegistry holds one bucket per client IP.
type bucketRegistry struct {
	mu      sync.Mutex
	buckets map[string]*TokenBucket
	rate    int
	burst   int
}

func newBucketRegistry(rate, burst int) *bucketRegistry {
	return &bucketRegistry{
		buckets: make(map[string]*TokenBucket),
		rate:    rate,
		burst:   burst,
	}
}

func (r *bucketRegistry) get(host string) *TokenBucket {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket, ok := r.buckets[host]
	if !ok {
		bucket = newTokenBucket(r.rate, r.burst)
		r.buckets[host] = bucket
	}
	return bucket
}

// sweep evicts buckets idle since the cutoff so the map does not grow
// with every client ever seen.
func (r *bucketRegistry) sweep(cutoff time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for host, bucket := range r.buckets {
		if bucket.idleSince(cutoff) {
			delete(r.buckets, host)
		}
	}
}

func (r *bucketRegistry) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		r.sweep(time.Now().Add(-cleanupInterval))
	}
}

// RateLimit limits requests per client IP with a token bucket.
func RateLimit(config RateLimitConfig) func(http.Handler) http.Handler {
	registry := newBucketRegistry(config.RequestsPerSecond, config.BurstSize)
	go registry.cleanup()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !registry.get(host).allow() {
				config.Logger.Warn("Rate limit exceeded",
					zap.String("client", host),
					zap.String("path", r.URL.Path))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
