package service

import (
	"context"
	"errors"
	"time"

	"formcraft/internal/domain"
)

// withDeadline runs fn under the request timeout. An expired deadline is
// reported as TIMEOUT whatever the lower layer made of it.
func withDeadline[T any](ctx context.Context, timeout time.Duration, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := fn(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && domain.KindOf(err) != domain.CodeTimeout {
		var zero T
		return zero, domain.NewTimeoutError(op+" timed out", err)
	}
	return result, err
}
