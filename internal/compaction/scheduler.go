package compaction

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// MergeFunc performs one merge pass. The engine supplies this; the
// scheduler knows nothing about segments, indexes, or storage.
type MergeFunc func(ctx context.Context) error

// Scheduler runs merge on a fixed interval in the background until
// stopped. A zero interval disables automatic scheduling; callers can
// still invoke MergeFunc directly (e.g. via an explicit engine.Merge
// call) without ever starting a Scheduler.
type Scheduler struct {
	interval time.Duration
	merge    MergeFunc
	log      *zap.SugaredLogger

	stop chan struct{}
	done chan struct{}
}

// New creates a Scheduler that invokes merge every interval once Start is
// called.
func New(interval time.Duration, merge MergeFunc, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{interval: interval, merge: merge, log: log}
}

// Start begins the background ticker loop. It is a no-op if interval is
// zero or the scheduler is already running. The loop exits when ctx is
// canceled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 || s.stop != nil {
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				if err := s.merge(ctx); err != nil {
					s.log.Errorw("scheduled compaction failed", "error", err)
				}
			}
		}
	}()
}

// Stop halts the background loop and waits for it to exit. Stop is safe
// to call even if Start was never called or already returned.
func (s *Scheduler) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
}
