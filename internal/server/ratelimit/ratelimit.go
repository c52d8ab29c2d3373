// Package ratelimit throttles API clients with one token bucket per client,
// route rule and method.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

type bucket struct {
	size     float64
	perSec   float64
	tokens   float64
	refilled time.Time
	seen     time.Time
}

func newBucket(size int, perSec float64, now time.Time) *bucket {
	return &bucket{size: float64(size), perSec: perSec, tokens: float64(size), refilled: now, seen: now}
}

func (b *bucket) refill(now time.Time) {
	b.tokens = min(b.size, b.tokens+now.Sub(b.refilled).Seconds()*b.perSec)
	b.refilled = now
}

// take consumes a token if one is left and reports the remaining tokens and
// when the bucket is full again.
func (b *bucket) take(now time.Time) (bool, int, time.Time) {
	b.refill(now)
	b.seen = now
	ok := b.tokens >= 1
	if ok {
		b.tokens--
	}
	reset := now
	if b.tokens < b.size {
		reset = now.Add(time.Duration((b.size - b.tokens) / b.perSec * float64(time.Second)))
	}
	return ok, int(b.tokens), reset
}

// Info describes the limit applied to one request. Limit is 0 when the
// request was not metered.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter meters requests per client.
type Limiter struct {
	cfg   Config
	now   func() time.Time
	allow map[string]bool
	deny  map[string]bool

	mu      sync.Mutex
	buckets map[string]*bucket

	stopOnce sync.Once
	stop     chan struct{}
}

func set(list []string) map[string]bool {
	m := make(map[string]bool, len(list))
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			m[v] = true
		}
	}
	return m
}

// NewLimiter creates a Limiter. A nil config meters every route at 600 requests a minute.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = &Config{Enabled: true, DefaultLimit: 600, DefaultWindow: time.Minute, CleanupInterval: 5 * time.Minute, IdleTTL: time.Hour}
	}
	l := &Limiter{
		cfg:     *cfg,
		now:     time.Now,
		allow:   set(cfg.Allowlist),
		deny:    set(cfg.Denylist),
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go l.sweepLoop(cfg.CleanupInterval)
	}
	return l
}

// Allow meters one request from clientID.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.cfg.Enabled || l.allow[clientID] {
		return true, Info{Allowed: true}
	}
	if l.deny[clientID] {
		return false, Info{}
	}

	rule, ok := Match(path, method, l.cfg.Rules)
	if !ok {
		rule = Rule{Method: method, Prefix: "*", Limit: l.cfg.DefaultLimit, Window: l.cfg.DefaultWindow}
	}
	if rule.Limit <= 0 {
		return true, Info{Allowed: true}
	}
	size := rule.Burst
	if size <= 0 {
		size = rule.Limit
	}

	key := clientID + " " + method + " " + rule.Prefix
	if rule.Prefix == "*" {
		key = clientID + " " + method + " " + path
	}
	now := l.now()

	l.mu.Lock()
	b, exists := l.buckets[key]
	if !exists {
		b = newBucket(size, float64(rule.Limit)/rule.Window.Seconds(), now)
		l.buckets[key] = b
	}
	allowed, remaining, reset := b.take(now)
	l.mu.Unlock()

	info := Info{Allowed: allowed, Limit: rule.Limit, Remaining: remaining, ResetTime: reset}
	if !allowed {
		info.RetryAfter = max(reset.Sub(now), 0)
	}
	return allowed, info
}

func (l *Limiter) sweepLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets idle for longer than IdleTTL.
func (l *Limiter) sweep() int {
	ttl := l.cfg.IdleTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	cutoff := l.now().Add(-ttl)

	l.mu.Lock()
	defer l.mu.Unlock()
	dropped := 0
	for key, b := range l.buckets {
		if b.seen.Before(cutoff) {
			delete(l.buckets, key)
			dropped++
		}
	}
	return dropped
}

// Stop ends the background sweep. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
