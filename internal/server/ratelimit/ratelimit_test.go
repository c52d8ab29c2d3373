package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *clock) {
	t.Helper()
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	t.Cleanup(l.Stop)
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l.now = c.now
	return l, c
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("10.0.0.1", "/applicants/a1", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("10.0.0.1", "/applicants/a1", "GET")
	assert.False(t, allowed)
	assert.Zero(t, info.Remaining)
	assert.Positive(t, info.RetryAfter)

	allowed, _ = l.Allow("10.0.0.2", "/applicants/a1", "GET")
	assert.True(t, allowed, "clients are metered separately")
}

func TestLimiter_Refill(t *testing.T) {
	l, c := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})

	for i := 0; i < 60; i++ {
		l.Allow("c", "/slots/available", "GET")
	}
	allowed, _ := l.Allow("c", "/slots/available", "GET")
	require.False(t, allowed)

	c.advance(time.Second)
	allowed, _ = l.Allow("c", "/slots/available", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("c", "/slots/available", "GET")
	assert.False(t, allowed)
}

func TestLimiter_RuleBurstAndPrefix(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:      true,
		DefaultLimit: 1000, DefaultWindow: time.Minute,
		Rules: []Rule{
			{Method: "POST", Prefix: "/applicants/", Limit: 100, Window: time.Minute, Burst: 3},
		},
	})

	// Every applicant path shares one bucket per client.
	for _, p := range []string{"/applicants/a/submit", "/applicants/b/signature", "/applicants/a/answers/q1"} {
		allowed, info := l.Allow("c", p, "POST")
		require.True(t, allowed)
		assert.Equal(t, 100, info.Limit)
	}
	allowed, _ := l.Allow("c", "/applicants/c/submit", "POST")
	assert.False(t, allowed)

	allowed, info := l.Allow("c", "/applicants/a", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_Lists(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour,
		Allowlist: []string{"10.0.0.9"},
		Denylist:  []string{"10.0.0.66"},
	})

	for i := 0; i < 5; i++ {
		allowed, info := l.Allow("10.0.0.9", "/x", "GET")
		assert.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
	allowed, _ := l.Allow("10.0.0.66", "/x", "GET")
	assert.False(t, allowed)
}

func TestLimiter_DisabledAndHealth(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Hour})
	for i := 0; i < 3; i++ {
		allowed, _ := l.Allow("c", "/x", "POST")
		assert.True(t, allowed)
	}

	l, _ = newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})
	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("c", "/health", "GET")
		assert.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/x", "GET"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, allowed)
}

func TestLimiter_SweepDropsIdleBuckets(t *testing.T) {
	l, c := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, IdleTTL: time.Hour})

	l.Allow("old", "/x", "GET")
	c.advance(2 * time.Hour)
	l.Allow("fresh", "/x", "GET")

	assert.Equal(t, 1, l.sweep())
	assert.Len(t, l.buckets, 1)
}

func TestMatch(t *testing.T) {
	rules := DefaultRules()

	r, ok := Match("/staff/login", "POST", rules)
	require.True(t, ok)
	assert.Equal(t, 10, r.Limit)

	r, ok = Match("/staff/publish", "POST", rules)
	require.True(t, ok)
	assert.Equal(t, 6, r.Limit)

	r, ok = Match("/staff/applicants/a1/decision", "POST", rules)
	require.True(t, ok)
	assert.Equal(t, "/staff/", r.Prefix)

	_, ok = Match("/catalog/fields", "GET", rules)
	assert.False(t, ok)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_WHITELIST", "127.0.0.1,10.0.0.1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.DefaultWindow)
	assert.Equal(t, []string{"127.0.0.1", "10.0.0.1"}, cfg.Allowlist)
	assert.NotEmpty(t, cfg.Rules)

	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "0")
	_, err = LoadConfig()
	assert.Error(t, err)
}
