package resilience_test

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/chris-alexander-pop/notifyfabric/pkg/errors"
	"github.com/chris-alexander-pop/notifyfabric/pkg/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunNilExecutor(t *testing.T) {
	err := resilience.Run(context.Background(), resilience.Config{}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArgument))
}

func TestRunNonTransientNeverRetries(t *testing.T) {
	calls := 0
	err := resilience.Run(context.Background(), resilience.Config{Delay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return apperrors.New(apperrors.CodeNotFound, "nope", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRunTransientRetriesExactlyOnce(t *testing.T) {
	calls := 0
	err := resilience.Run(context.Background(), resilience.Config{Delay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return apperrors.New(apperrors.CodeTransient, "blip", nil)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRunTransientFailsAfterSecondAttempt(t *testing.T) {
	calls := 0
	err := resilience.Run(context.Background(), resilience.Config{Delay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return apperrors.New(apperrors.CodeTransient, "blip", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestRunRespectsCancellationDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := resilience.Run(ctx, resilience.Config{Delay: time.Second}, func(ctx context.Context) error {
		calls++
		return apperrors.New(apperrors.CodeTransient, "blip", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRunValue(t *testing.T) {
	calls := 0
	val, err := resilience.RunValue(context.Background(), resilience.Config{Delay: time.Millisecond}, func(ctx context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", apperrors.New(apperrors.CodeTransient, "blip", nil)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
}
