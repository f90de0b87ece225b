package sim

import (
	"context"
	"sync"
	"time"

	"github.com/freight-sim/backend/internal/models"
)

// Stepper advances the world by one tick.
type Stepper interface {
	Step(now time.Time) StepResult
}

// Clock drives a Stepper on a fixed wall-clock interval and hands every
// resulting frame to the registered listeners. There is one clock per
// process, shared by all subscribers.
type Clock struct {
	mu        sync.Mutex
	stepper   Stepper
	interval  time.Duration
	now       func() time.Time
	listeners []func(models.Frame)
}

// NewClock constructs a clock ticking every interval.
func NewClock(stepper Stepper, interval time.Duration) *Clock {
	return &Clock{
		stepper:  stepper,
		interval: interval,
		now:      time.Now,
	}
}

// SetTimeSource overrides the wall clock used to stamp ticks.
func (c *Clock) SetTimeSource(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// AddListener registers a callback invoked after every tick.
func (c *Clock) AddListener(fn func(models.Frame)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Interval returns the tick interval.
func (c *Clock) Interval() time.Duration {
	return c.interval
}

// TickOnce runs a single step synchronously and notifies listeners.
func (c *Clock) TickOnce() StepResult {
	c.mu.Lock()
	now := c.now
	listeners := append([]func(models.Frame){}, c.listeners...)
	c.mu.Unlock()

	result := c.stepper.Step(now())
	for _, fn := range listeners {
		fn(result.Frame)
	}
	return result
}

// Run ticks until ctx is cancelled. Steps never overlap.
func (c *Clock) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.TickOnce()
		}
	}
}
