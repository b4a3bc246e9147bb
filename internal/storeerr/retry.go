package storeerr

import (
	"context"
	"errors"
	"time"
)

var retryPause = 50 * time.Millisecond

// Do runs fn and retries it once when the failure is transient. The returned
// error is always classified when the kind is known.
func Do(ctx context.Context, op string, fn func(context.Context) error) error {
	err := Classify(op, fn(ctx))
	if !errors.Is(err, ErrTransient) {
		return err
	}

	timer := time.NewTimer(retryPause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return err
	case <-timer.C:
	}

	return Classify(op, fn(ctx))
}

// Value is Do for calls that return a result.
func Value[T any](ctx context.Context, op string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
