package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imobia/backend/internal/infrastructure/config"
)

func TestBillingScheduler_Start(t *testing.T) {
	t.Run("disabled scheduler does not start", func(t *testing.T) {
		s := NewBillingScheduler(nil, nil, config.SchedulerConfig{
			Enabled:   false,
			BillingAt: "06:00",
		}, 50, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))
		assert.False(t, s.isRunning)
	})

	t.Run("invalid run time is rejected", func(t *testing.T) {
		s := NewBillingScheduler(nil, nil, config.SchedulerConfig{
			Enabled:   true,
			BillingAt: "25:99",
		}, 50, zap.NewNop())

		err := s.Start(context.Background())
		require.Error(t, err)
		assert.False(t, s.isRunning)
	})

	t.Run("start and stop lifecycle", func(t *testing.T) {
		s := NewBillingScheduler(nil, nil, config.SchedulerConfig{
			Enabled:    true,
			BillingAt:  "06:00",
			JobTimeout: time.Minute,
		}, 50, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))
		assert.True(t, s.isRunning)

		// Second start is a no-op.
		require.NoError(t, s.Start(context.Background()))

		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, s.Stop(stopCtx))
		assert.False(t, s.isRunning)
	})

	t.Run("stop without start is a no-op", func(t *testing.T) {
		s := NewBillingScheduler(nil, nil, config.SchedulerConfig{}, 50, zap.NewNop())
		require.NoError(t, s.Stop(context.Background()))
	})
}
