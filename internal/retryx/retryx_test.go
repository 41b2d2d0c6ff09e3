package retryx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fast keeps test runs instant while preserving the attempt bound.
var fast = Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}

func TestDoRetriesTransientUntilSuccess(t *testing.T) {
	attempts := 0
	err := fast.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return Transient(errors.New("rate limited"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsAfterMaxAttempts(t *testing.T) {
	attempts := 0
	err := fast.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Transient(errors.New("server error"))
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoPermanentErrorFailsImmediately(t *testing.T) {
	attempts := 0
	permanent := errors.New("not found")
	err := fast.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestDoHonorsCancellationBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := Policy{MaxAttempts: 5, BaseDelay: 10 * time.Millisecond}.Do(ctx, func(ctx context.Context) error {
		attempts++
		cancel()
		return Transient(errors.New("transient"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "no further attempt after cancellation")
}

func TestDoDegeneratePolicyStillRunsOnce(t *testing.T) {
	attempts := 0
	err := Policy{}.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}
