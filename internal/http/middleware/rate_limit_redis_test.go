package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisLimiterForTest(t *testing.T) (*RedisFixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisFixedWindowLimiter(client, "test-rl"), mr
}

func TestRedisFixedWindowLimiter(t *testing.T) {
	l, _ := newRedisLimiterForTest(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := l.Allow(ctx, "login:10.0.0.1", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	allowed, retryAfter, err := l.Allow(ctx, "login:10.0.0.1", 3, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("fourth request must be rejected")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %v", retryAfter)
	}

	if allowed, _, _ := l.Allow(ctx, "login:10.0.0.2", 3, time.Minute); !allowed {
		t.Fatal("independent key must be allowed")
	}
}

func TestRedisFixedWindowLimiterWindowExpiry(t *testing.T) {
	l, mr := newRedisLimiterForTest(t)
	ctx := context.Background()

	if allowed, _, _ := l.Allow(ctx, "k", 1, time.Second); !allowed {
		t.Fatal("first request must pass")
	}
	if allowed, _, _ := l.Allow(ctx, "k", 1, time.Second); allowed {
		t.Fatal("second request inside the window must fail")
	}

	mr.FastForward(2 * time.Second)
	if allowed, _, _ := l.Allow(ctx, "k", 1, time.Second); !allowed {
		t.Fatal("request after expiry must pass")
	}
}

func TestRedisFixedWindowLimiterNilClient(t *testing.T) {
	l := NewRedisFixedWindowLimiter(nil, "")
	if _, _, err := l.Allow(context.Background(), "k", 1, time.Second); err == nil {
		t.Fatal("expected error for nil client")
	}
}
