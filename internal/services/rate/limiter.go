// Package rate caps how fast a brand can express interest in listings.
package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WindowStore counts hits in fixed windows that open on the first hit.
type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)
}

// Window is one counting window on a brand's interest requests.
type Window struct {
	Name  string
	Span  time.Duration
	Limit int
}

type Limiter struct {
	store   WindowStore
	windows []Window
}

// NewLimiter enables the burst and the per-minute windows. A limit of zero turns
// that window off.
func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	return NewWindowLimiter(store,
		Window{Name: "10s", Span: 10 * time.Second, Limit: per10Sec},
		Window{Name: "min", Span: time.Minute, Limit: perMinute},
	)
}

func NewWindowLimiter(store WindowStore, windows ...Window) *Limiter {
	active := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w.Limit > 0 && w.Span > 0 {
			active = append(active, w)
		}
	}
	return &Limiter{store: store, windows: active}
}

// AllowInterest counts the request in every window. When any window is over its
// limit the brand waits until the longest blocking window closes.
func (l *Limiter) AllowInterest(ctx context.Context, brandID uuid.UUID) (int64, bool, error) {
	if brandID == uuid.Nil {
		return 0, false, fmt.Errorf("invalid brand id")
	}
	if len(l.windows) == 0 {
		return 0, true, nil
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	var wait time.Duration
	for _, w := range l.windows {
		count, remaining, err := l.store.IncrementWindow(ctx, windowKey(brandID, w), w.Span)
		if err != nil {
			return 0, false, fmt.Errorf("count %s interest window: %w", w.Name, err)
		}
		if count > int64(w.Limit) && remaining > wait {
			wait = remaining
		}
	}
	if wait > 0 {
		return retryAfterSeconds(wait), false, nil
	}
	return 0, true, nil
}

func windowKey(brandID uuid.UUID, w Window) string {
	return "rate:interest:" + w.Name + ":" + brandID.String()
}

// retryAfterSeconds rounds up so clients never retry inside the window.
func retryAfterSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Second - 1) / time.Second)
}
