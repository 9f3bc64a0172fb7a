package ratelimit

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestFixedWindowLimiterBlocksAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(mr.Addr(), "", "test:ratelimit", 2, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	t.Cleanup(func() { _ = limiter.Close() })
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, "198.51.100.7")
		if err != nil || !d.Allowed {
			t.Fatalf("request %d should pass: %+v, %v", i+1, d, err)
		}
	}
	d, err := limiter.Allow(ctx, "198.51.100.7")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed || d.Remaining != 0 {
		t.Fatalf("third request should be blocked: %+v", d)
	}
	if d.RetryAfter <= 0 || d.RetryAfter > time.Minute {
		t.Fatalf("retry after = %v", d.RetryAfter)
	}

	// Keys are independent.
	if d, _ := limiter.Allow(ctx, "198.51.100.8"); !d.Allowed || d.Remaining != 1 {
		t.Fatalf("other key should pass with one remaining: %+v", d)
	}
}

func TestFixedWindowLimiterNewWindowResets(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(mr.Addr(), "", "", 1, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	if d, _ := limiter.Allow(ctx, "k"); !d.Allowed {
		t.Fatalf("first request should pass")
	}
	if d, _ := limiter.Allow(ctx, "k"); d.Allowed {
		t.Fatalf("second request in window should be blocked")
	}
	now = now.Add(time.Minute)
	if d, _ := limiter.Allow(ctx, "k"); !d.Allowed {
		t.Fatalf("request in next window should pass")
	}
	if !mr.Exists(defaultPrefix + ":k:" + itoa(now.UnixMilli()/time.Minute.Milliseconds())) {
		t.Fatalf("expected default prefix key in redis, keys=%v", mr.Keys())
	}
}

func TestFixedWindowLimiterFailsClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(mr.Addr(), "", "test:ratelimit", 1, time.Second)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	mr.Close()
	d, err := limiter.Allow(context.Background(), "k")
	if err == nil || d.Allowed {
		t.Fatalf("limiter should fail closed, got %+v, %v", d, err)
	}
}

func TestNewRedisFixedWindowLimiterValidation(t *testing.T) {
	if l, err := NewRedisFixedWindowLimiter("", "", "", 1, time.Second); err == nil || l != nil {
		t.Fatalf("expected error for empty addr")
	}
	if _, err := NewRedisFixedWindowLimiter("localhost:6379", "", "", 0, time.Second); err == nil {
		t.Fatalf("expected error for zero limit")
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
