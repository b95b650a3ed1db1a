package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
	"github.com/riskibarqy/matchday-predictor/internal/usecase"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls   atomic.Int32
	release chan struct{}
	started chan struct{}
	err     error
	mu      sync.Mutex
	inputs  []usecase.RunCycleInput
}

func (r *countingRunner) RunCycle(ctx context.Context, input usecase.RunCycleInput) (usecase.CycleResult, error) {
	r.calls.Add(1)
	r.mu.Lock()
	r.inputs = append(r.inputs, input)
	r.mu.Unlock()
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
		}
	}
	return usecase.CycleResult{CycleID: "c", Ran: true}, r.err
}

func TestSchedulerTickBroadcasts(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, time.Hour, false, logging.NewNop())

	require.True(t, s.Tick(context.Background()))
	require.Equal(t, []usecase.RunCycleInput{{Broadcast: true}}, runner.inputs)
}

func TestSchedulerTickSkipsWhileRunning(t *testing.T) {
	runner := &countingRunner{release: make(chan struct{}), started: make(chan struct{}, 1)}
	s := NewScheduler(runner, time.Hour, false, logging.NewNop())

	done := make(chan bool, 1)
	go func() { done <- s.Tick(context.Background()) }()
	<-runner.started

	if s.Tick(context.Background()) {
		t.Fatalf("expected overlapping tick to be skipped")
	}
	close(runner.release)
	require.True(t, <-done)
	require.Equal(t, int32(1), runner.calls.Load())
}

func TestSchedulerTickSurvivesErrors(t *testing.T) {
	runner := &countingRunner{err: errors.New("providers down")}
	s := NewScheduler(runner, time.Hour, false, logging.NewNop())

	require.True(t, s.Tick(context.Background()))
	require.True(t, s.Tick(context.Background()))
	require.Equal(t, int32(2), runner.calls.Load())
}

func TestSchedulerRunOnStartAndStop(t *testing.T) {
	runner := &countingRunner{started: make(chan struct{}, 4)}
	s := NewScheduler(runner, time.Hour, true, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()

	select {
	case <-runner.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected cycle on start")
	}
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler did not stop on cancel")
	}
	require.Equal(t, int32(1), runner.calls.Load())
}

func TestSchedulerRunsOnInterval(t *testing.T) {
	runner := &countingRunner{started: make(chan struct{}, 8)}
	s := NewScheduler(runner, 20*time.Millisecond, false, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-runner.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("expected interval cycle %d", i+1)
		}
	}
}
