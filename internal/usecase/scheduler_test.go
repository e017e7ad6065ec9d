package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sportzhub/livescore/internal/platform/logging"
)

type stubRunner struct {
	calls   atomic.Int64
	started chan struct{}
	gate    chan struct{}
	err     error
	panics  bool
}

func (r *stubRunner) SyncOnce(context.Context) (SyncResult, error) {
	r.calls.Add(1)
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.gate != nil {
		<-r.gate
	}
	if r.panics {
		panic("sync exploded")
	}
	return SyncResult{}, r.err
}

func waitForCall(t *testing.T, started chan struct{}) {
	t.Helper()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a sync cycle")
	}
}

func waitForIdle(t *testing.T, s *Scheduler) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.inFlight.Load() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the cycle to finish")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSchedulerRunsImmediatelyAndOnEachTick(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{started: make(chan struct{}, 8)}
	clock := clockwork.NewFakeClock()
	s := NewScheduler(runner, clock, time.Minute, logging.NewNop())

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	waitForCall(t, runner.started)
	waitForIdle(t, s)

	clock.BlockUntil(1)
	clock.Advance(time.Minute)
	waitForCall(t, runner.started)
	waitForIdle(t, s)

	clock.Advance(time.Minute)
	waitForCall(t, runner.started)

	if got := runner.calls.Load(); got != 3 {
		t.Fatalf("got %d cycles, want 3", got)
	}
}

func TestSchedulerSurvivesFailingAndPanickingCycles(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{started: make(chan struct{}, 8), err: errors.New("source down"), panics: true}
	clock := clockwork.NewFakeClock()
	s := NewScheduler(runner, clock, time.Minute, logging.NewNop())

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	waitForCall(t, runner.started)
	waitForIdle(t, s)

	clock.BlockUntil(1)
	clock.Advance(time.Minute)
	waitForCall(t, runner.started)

	if got := runner.calls.Load(); got != 2 {
		t.Fatalf("got %d cycles after panics, want 2", got)
	}
}

func TestSchedulerSkipsTickWhileCycleRuns(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{started: make(chan struct{}, 8), gate: make(chan struct{})}
	s := NewScheduler(runner, clockwork.NewFakeClock(), time.Minute, logging.NewNop())

	s.spawnCycle()
	waitForCall(t, runner.started)

	// The first cycle is parked on the gate, so the guard must reject this.
	s.spawnCycle()

	close(runner.gate)
	s.cycleWG.Wait()

	if got := runner.calls.Load(); got != 1 {
		t.Fatalf("got %d cycles, want the overlapping one skipped", got)
	}

	s.spawnCycle()
	waitForCall(t, runner.started)
	s.cycleWG.Wait()

	if got := runner.calls.Load(); got != 2 {
		t.Fatalf("got %d cycles, want the guard released after the first finished", got)
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{}
	s := NewScheduler(runner, clockwork.NewFakeClock(), time.Minute, logging.NewNop())

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Fatal("second Start should fail while running")
	}

	s.Stop()
	s.Stop()

	if s.Running() {
		t.Fatal("scheduler still reports running after Stop")
	}
}

func TestSchedulerRequiresRunner(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, clockwork.NewFakeClock(), time.Minute, logging.NewNop())
	if err := s.Start(); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("got %v, want ErrDependencyUnavailable", err)
	}
}
