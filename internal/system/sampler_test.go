package system

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/magicaleks/sysmon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCollector struct {
	calls atomic.Int64
	err   error
}

func (c *countingCollector) Collect(context.Context) (domain.Snapshot, error) {
	n := c.calls.Add(1)
	if c.err != nil {
		return domain.Snapshot{}, c.err
	}
	return domain.Snapshot{CPUPercent: float64(n)}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSamplerFallsThroughBeforeFirstSample(t *testing.T) {
	inner := &countingCollector{}
	s := NewSampler(inner, time.Hour, discardLogger())

	snap, err := s.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, snap.CPUPercent)

	_, ok := s.Last()
	assert.False(t, ok, "synchronous fallthrough does not prime the cache")
}

func TestSamplerServesCachedSnapshot(t *testing.T) {
	inner := &countingCollector{}
	s := NewSampler(inner, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	require.Eventually(t, func() bool {
		_, ok := s.Last()
		return ok
	}, time.Second, 5*time.Millisecond)

	before := inner.calls.Load()
	for i := 0; i < 5; i++ {
		snap, err := s.Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1.0, snap.CPUPercent)
	}
	assert.Equal(t, before, inner.calls.Load())
}

func TestSamplerRefreshesOnTick(t *testing.T) {
	inner := &countingCollector{}
	s := NewSampler(inner, 10*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	require.Eventually(t, func() bool {
		snap, ok := s.Last()
		return ok && snap.CPUPercent >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSamplerFailureKeepsFallthrough(t *testing.T) {
	inner := &countingCollector{err: errors.New("boom")}
	s := NewSampler(inner, 10*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	require.Eventually(t, func() bool { return inner.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	_, err := s.Collect(context.Background())
	assert.Error(t, err)
}
