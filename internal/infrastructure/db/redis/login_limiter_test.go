package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginLimiter(client), mr
}

func TestLoginLimiter_ThresholdReached(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()
	email := "bob@multihub.local"

	throttled, err := limiter.TooManyFailures(ctx, email)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if throttled {
		t.Fatalf("fresh email should not be throttled")
	}

	for i := 0; i < maxFailures; i++ {
		if err := limiter.RecordFailure(ctx, email); err != nil {
			t.Fatalf("record failure %d: %v", i, err)
		}
	}

	throttled, err = limiter.TooManyFailures(ctx, email)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !throttled {
		t.Fatalf("expected throttle after %d failures", maxFailures)
	}

	// A different email is unaffected.
	throttled, err = limiter.TooManyFailures(ctx, "other@multihub.local")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if throttled {
		t.Fatalf("unrelated email should not be throttled")
	}
}

func TestLoginLimiter_ResetClearsCount(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()
	email := "bob@multihub.local"

	for i := 0; i < maxFailures; i++ {
		if err := limiter.RecordFailure(ctx, email); err != nil {
			t.Fatalf("record failure: %v", err)
		}
	}
	if err := limiter.Reset(ctx, email); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	throttled, err := limiter.TooManyFailures(ctx, email)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if throttled {
		t.Fatalf("reset should clear the throttle")
	}
}

func TestLoginLimiter_WindowExpires(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()
	email := "bob@multihub.local"

	for i := 0; i < maxFailures; i++ {
		if err := limiter.RecordFailure(ctx, email); err != nil {
			t.Fatalf("record failure: %v", err)
		}
	}

	mr.FastForward(failureWindow)

	throttled, err := limiter.TooManyFailures(ctx, email)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if throttled {
		t.Fatalf("throttle should lapse after the failure window")
	}
}
