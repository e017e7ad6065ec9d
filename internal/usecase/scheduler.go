package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sportzhub/livescore/internal/platform/logging"
)

const defaultSyncInterval = 5 * time.Minute

type syncRunner interface {
	SyncOnce(ctx context.Context) (SyncResult, error)
}

// Scheduler drives repeated sync cycles: one immediately on Start, then one
// per interval until Stop. A failing or panicking cycle is contained at the
// cycle boundary so the next tick always fires. If a cycle is still running
// when the next tick arrives, that tick is skipped rather than overlapped.
type Scheduler struct {
	runner   syncRunner
	clock    clockwork.Clock
	interval time.Duration
	logger   *logging.Logger

	running  atomic.Bool
	inFlight atomic.Bool
	cycleWG  sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewScheduler(runner syncRunner, clock clockwork.Clock, interval time.Duration, logger *logging.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Scheduler{
		runner:   runner,
		clock:    clock,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() error {
	if s.runner == nil {
		return fmt.Errorf("%w: sync runner is not configured", ErrDependencyUnavailable)
	}
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: scheduler is already running", ErrInvalidInput)
	}

	s.logger.Info("starting live sync", "interval", s.interval.String())
	go s.loop()
	return nil
}

// Stop halts the timer and waits for the loop and any in-flight cycle to
// finish. Safe to call more than once.
func (s *Scheduler) Stop() {
	if !s.running.Load() {
		return
	}
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.done
	s.running.Store(false)
}

func (s *Scheduler) Running() bool {
	return s.running.Load()
}

func (s *Scheduler) loop() {
	defer close(s.done)

	s.spawnCycle()

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			s.spawnCycle()
		case <-s.stopCh:
			s.cycleWG.Wait()
			return
		}
	}
}

func (s *Scheduler) spawnCycle() {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("previous sync cycle still running, skipping tick")
		return
	}

	s.cycleWG.Add(1)
	go func() {
		defer s.cycleWG.Done()
		defer s.inFlight.Store(false)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("sync cycle panicked", "panic", fmt.Sprintf("%v", rec))
			}
		}()

		if _, err := s.runner.SyncOnce(context.Background()); err != nil {
			s.logger.Error("sync cycle failed", "error", err)
		}
	}()
}
