package system

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magicaleks/sysmon/internal/domain"
)

// Sampler collects in the background and serves the last successful
// snapshot. This is an opt-in alternative to collecting on every request.
type Sampler struct {
	collector domain.Collector
	interval  time.Duration
	logger    *slog.Logger

	mu   sync.RWMutex
	last *domain.Snapshot
}

func NewSampler(collector domain.Collector, interval time.Duration, logger *slog.Logger) *Sampler {
	return &Sampler{
		collector: collector,
		interval:  interval,
		logger:    logger,
	}
}

// Start runs the sampling loop until ctx is cancelled.
func (s *Sampler) Start(ctx context.Context) {
	go s.loop(ctx)
}

// Collect returns the cached snapshot, or collects synchronously when no
// sample has landed yet.
func (s *Sampler) Collect(ctx context.Context) (domain.Snapshot, error) {
	if snap, ok := s.Last(); ok {
		return snap, nil
	}
	return s.collector.Collect(ctx)
}

func (s *Sampler) Last() (domain.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return domain.Snapshot{}, false
	}
	return *s.last, true
}

func (s *Sampler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sample(ctx)

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.sample(ctx) {
				if failures%20 == 0 {
					s.logger.Warn("background sample failed", "failures", failures+1)
				}
				failures++
				continue
			}
			failures = 0
		}
	}
}

func (s *Sampler) sample(ctx context.Context) bool {
	snap, err := s.collector.Collect(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Debug("sample failed", "err", err)
		}
		return false
	}

	s.mu.Lock()
	s.last = &snap
	s.mu.Unlock()
	return true
}
