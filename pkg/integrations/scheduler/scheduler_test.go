package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestScheduler_RequiresConfig(t *testing.T) {
	_, err := New()
	assert.ErrorIs(t, err, ErrInvalidSchedulerConfig)

	_, err = New(
		WithContext(context.Background()),
		WithLogger(testLogger()),
		WithInterval(-time.Second),
		WithHandler(func() error { return nil }),
	)
	assert.ErrorIs(t, err, ErrInvalidSchedulerConfig)
}

func TestScheduler_InvokesHandler(t *testing.T) {
	var calls atomic.Int32
	s, err := New(
		WithContext(context.Background()),
		WithLogger(testLogger()),
		WithInterval(10*time.Millisecond),
		WithHandler(func() error {
			calls.Add(1)
			return nil
		}),
	)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	s, err := New(
		WithContext(ctx),
		WithLogger(testLogger()),
		WithInterval(10*time.Millisecond),
		WithHandler(func() error {
			calls.Add(1)
			return nil
		}),
	)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	cancel()
	time.Sleep(30 * time.Millisecond)
	seen := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, seen, calls.Load())
}
