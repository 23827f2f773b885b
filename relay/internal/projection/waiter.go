package projection

import (
	"context"
	"time"
)

// Waiter polls a predicate until it holds, with a hard attempt ceiling.
// Freshly created sub-resources may not be visible in the read model yet
// (eventual consistency); callers wait a bounded amount before reading
// enrichment data, and proceed without it when the budget runs out.
type Waiter struct {
	attempts int
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewWaiter creates a waiter with the given attempt budget and poll interval.
func NewWaiter(attempts int, interval time.Duration) *Waiter {
	if attempts < 1 {
		attempts = 1
	}
	return &Waiter{
		attempts: attempts,
		interval: interval,
		sleep:    sleepContext,
	}
}

// WithSleep replaces the sleep function. Tests use this to avoid real
// sleeping.
func (w *Waiter) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Waiter {
	w.sleep = sleep
	return w
}

// Wait polls predicate up to the attempt budget, sleeping the configured
// interval between attempts. Returns true as soon as the predicate holds,
// false when the budget is exhausted. Predicate errors abort the wait.
func (w *Waiter) Wait(ctx context.Context, predicate func(ctx context.Context) (bool, error)) (bool, error) {
	for attempt := 0; attempt < w.attempts; attempt++ {
		if attempt > 0 {
			if err := w.sleep(ctx, w.interval); err != nil {
				return false, err
			}
		}
		ok, err := predicate(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
