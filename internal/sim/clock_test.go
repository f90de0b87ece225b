package sim

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freight-sim/backend/internal/models"
	"github.com/freight-sim/backend/internal/testutil"
)

type countingStepper struct {
	steps atomic.Uint64
	last  atomic.Value
}

func (s *countingStepper) Step(now time.Time) StepResult {
	n := s.steps.Add(1)
	s.last.Store(now)
	return StepResult{Frame: models.Frame{Tick: n, Timestamp: now}}
}

func TestClockTickOnceNotifiesListeners(t *testing.T) {
	stepper := &countingStepper{}
	clock := NewClock(stepper, time.Second)
	clock.SetTimeSource(func() time.Time { return testutil.T0 })

	var got []models.Frame
	clock.AddListener(func(f models.Frame) { got = append(got, f) })
	clock.AddListener(func(f models.Frame) { got = append(got, f) })

	result := clock.TickOnce()

	assert.Equal(t, uint64(1), result.Frame.Tick)
	require.Len(t, got, 2)
	assert.Equal(t, testutil.T0, got[0].Timestamp)
	assert.Equal(t, time.Second, clock.Interval())
}

func TestClockRunStopsOnCancel(t *testing.T) {
	stepper := &countingStepper{}
	clock := NewClock(stepper, 5*time.Millisecond)

	var mu sync.Mutex
	var ticks []uint64
	clock.AddListener(func(f models.Frame) {
		mu.Lock()
		defer mu.Unlock()
		ticks = append(ticks, f.Tick)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- clock.Run(ctx) }()

	require.Eventually(t, func() bool { return stepper.steps.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("clock did not stop")
	}

	stopped := stepper.steps.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, stepper.steps.Load())

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(ticks); i++ {
		assert.Equal(t, ticks[i-1]+1, ticks[i], "ticks must be sequential")
	}
}

func TestClockDrivesEngine(t *testing.T) {
	train := testutil.NewTrain("TRN-1", "Mover", testutil.ScenarioRoute, 60)
	e := newScenarioEngine(t, hourlyParams(), testutil.NewScriptedRand(0.99), train)
	clock := NewClock(e, time.Second)
	now := testutil.T0
	clock.SetTimeSource(func() time.Time {
		now = now.Add(time.Hour)
		return now
	})

	clock.TickOnce()
	clock.TickOnce()

	frame := e.Frame()
	assert.Equal(t, uint64(2), frame.Tick)
	assert.Equal(t, testutil.T0.Add(2*time.Hour), frame.Timestamp)
	assert.InDelta(t, 0.174, frame.Trains[0].LegProgress, 0.001)
}
