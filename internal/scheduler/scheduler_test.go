package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStart_WithoutReportFunction(t *testing.T) {
	s := New("0 21 * * *", zap.NewNop())

	require.NoError(t, s.Start())
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := New("not a cron spec", zap.NewNop())
	s.SetReportFunction(func(ctx context.Context) error { return nil })

	require.Error(t, s.Start())
	s.Stop()
}

func TestRun_FiresReport(t *testing.T) {
	s := New("@every 1s", zap.NewNop())
	var calls atomic.Int32
	s.SetReportFunction(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	assert.True(t, s.IsRunning())

	cancel()
	require.NoError(t, <-done)
}

func TestRun_WithoutReportFunctionReturns(t *testing.T) {
	s := New("0 21 * * *", zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run blocked without a report job")
	}
	assert.False(t, s.IsRunning())
}
