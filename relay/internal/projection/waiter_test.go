package projection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(context.Context, time.Duration) error { return nil }

func TestWaiter_ImmediateSuccess(t *testing.T) {
	w := NewWaiter(5, time.Second).WithSleep(func(context.Context, time.Duration) error {
		t.Fatal("should not sleep before the first attempt")
		return nil
	})

	ok, err := w.Wait(context.Background(), func(context.Context) (bool, error) {
		return true, nil
	})

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWaiter_SucceedsMidBudget(t *testing.T) {
	calls := 0
	w := NewWaiter(5, time.Millisecond).WithSleep(noSleep)

	ok, err := w.Wait(context.Background(), func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, calls)
}

func TestWaiter_BudgetExhausted(t *testing.T) {
	calls := 0
	w := NewWaiter(4, time.Millisecond).WithSleep(noSleep)

	ok, err := w.Wait(context.Background(), func(context.Context) (bool, error) {
		calls++
		return false, nil
	})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 4, calls)
}

func TestWaiter_PredicateErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	w := NewWaiter(5, time.Millisecond).WithSleep(noSleep)

	ok, err := w.Wait(context.Background(), func(context.Context) (bool, error) {
		calls++
		return false, boom
	})

	require.ErrorIs(t, err, boom)
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

func TestWaiter_ContextCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWaiter(3, time.Hour)
	ok, err := w.Wait(ctx, func(context.Context) (bool, error) {
		return false, nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}

func TestNewWaiter_MinimumOneAttempt(t *testing.T) {
	w := NewWaiter(0, time.Millisecond).WithSleep(noSleep)

	calls := 0
	_, err := w.Wait(context.Background(), func(context.Context) (bool, error) {
		calls++
		return false, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
