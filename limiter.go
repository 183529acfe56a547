package buildsite

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/eringen/buildsite/poll"
)

// LoginLimiter rate-limits login attempts per IP address.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	sweeper  *poll.Task
}

// NewLoginLimiter creates a LoginLimiter that allows max attempts per window.
// Expired entries are swept every window until Close.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
	}
	l.sweeper = poll.Every(context.Background(), window, func(context.Context) { l.sweep() }, poll.Deferred())
	return l
}

// Close stops the background sweep.
func (l *LoginLimiter) Close() {
	l.sweeper.Stop()
}

func (l *LoginLimiter) sweep() {
	cutoff := time.Now().Add(-l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, hits := range l.attempts {
		kept := prune(hits, cutoff)
		if len(kept) == 0 {
			delete(l.attempts, ip)
		} else {
			l.attempts[ip] = kept
		}
	}
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Allow checks if the IP has not exceeded the rate limit and records the attempt.
func (l *LoginLimiter) Allow(ip string) bool {
	if !l.Check(ip) {
		return false
	}
	l.Record(ip)
	return true
}

// Check returns true if the IP has not exceeded the rate limit.
// It does not record an attempt; call Record separately on failure.
func (l *LoginLimiter) Check(ip string) bool {
	cutoff := time.Now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := prune(l.attempts[ip], cutoff)
	l.attempts[ip] = kept
	return len(kept) < l.max
}

// Record registers a failed login attempt for the given IP.
func (l *LoginLimiter) Record(ip string) {
	l.mu.Lock()
	l.attempts[ip] = append(l.attempts[ip], time.Now())
	l.mu.Unlock()
}

// LikeLimiter allows one like per client IP per post within a window.
type LikeLimiter struct {
	seen *cache.Cache
}

// NewLikeLimiter creates a LikeLimiter remembering likes for window.
func NewLikeLimiter(window time.Duration) *LikeLimiter {
	return &LikeLimiter{seen: cache.New(window, 2*window)}
}

// Allow reports whether ip may like post and, if so, records the like.
func (l *LikeLimiter) Allow(ip, post string) bool {
	return l.seen.Add(ip+"|"+post, struct{}{}, cache.DefaultExpiration) == nil
}

// Forget drops every record for post, e.g. after the post is deleted.
func (l *LikeLimiter) Forget(post string) {
	suffix := "|" + post
	for key := range l.seen.Items() {
		if strings.HasSuffix(key, suffix) {
			l.seen.Delete(key)
		}
	}
}
