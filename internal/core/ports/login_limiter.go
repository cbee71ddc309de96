package ports

import "context"

// LoginLimiter tracks failed login attempts per email (Redis-backed).
// The auth service treats limiter errors as fail-open: a broken limiter
// must never lock everyone out.
type LoginLimiter interface {
	TooManyFailures(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
