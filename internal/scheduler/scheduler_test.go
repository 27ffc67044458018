package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/ingest"
	"github.com/netra-news/backend/internal/metrics"
)

type countingLoader struct {
	runs    atomic.Int32
	err     error
	observe func(ctx context.Context)
}

func (c *countingLoader) LoadAll(ctx context.Context) (ingest.Summary, error) {
	c.runs.Add(1)
	if c.observe != nil {
		c.observe(ctx)
	}
	return ingest.Summary{Inserted: 1}, c.err
}

func TestRunOnceExecutesSinglePass(t *testing.T) {
	t.Parallel()
	metrics.Init()

	loader := &countingLoader{}
	s := New(loader, zap.NewNop(), time.Hour, time.Minute)
	s.RunOnce(context.Background())
	require.Equal(t, int32(1), loader.runs.Load())
}

func TestRunOnceAppliesTimeout(t *testing.T) {
	t.Parallel()
	metrics.Init()

	var deadlineSet atomic.Bool
	loader := &countingLoader{observe: func(ctx context.Context) {
		_, ok := ctx.Deadline()
		deadlineSet.Store(ok)
	}}
	s := New(loader, zap.NewNop(), time.Hour, time.Minute)
	s.RunOnce(context.Background())
	require.True(t, deadlineSet.Load())
}

func TestRunOnceSurvivesLoaderError(t *testing.T) {
	t.Parallel()
	metrics.Init()

	loader := &countingLoader{err: errors.New("database down")}
	s := New(loader, zap.NewNop(), time.Hour, time.Minute)
	s.RunOnce(context.Background())
	s.RunOnce(context.Background())
	require.Equal(t, int32(2), loader.runs.Load())
}

func TestRunFiresImmediatelyAndStopsOnCancel(t *testing.T) {
	t.Parallel()
	metrics.Init()

	loader := &countingLoader{}
	s := New(loader, zap.NewNop(), time.Hour, time.Minute)
	s.tickPeriod = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return loader.runs.Load() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}

func TestRunHonorsInterval(t *testing.T) {
	t.Parallel()
	metrics.Init()

	loader := &countingLoader{}
	s := New(loader, zap.NewNop(), 25*time.Millisecond, time.Minute)
	s.tickPeriod = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = s.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return loader.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}
