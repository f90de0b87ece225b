// Package sim owns the simulated fleet: it advances trains tick by tick and
// projects immutable snapshots of the result.
//
// All mutation goes through Engine.Step, which holds the write lock for the
// whole step and projects the next frame before releasing it. Readers only
// ever see published frames.
package sim

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freight-sim/backend/internal/cargo"
	"github.com/freight-sim/backend/internal/catalog"
	"github.com/freight-sim/backend/internal/geo"
	"github.com/freight-sim/backend/internal/logging"
	"github.com/freight-sim/backend/internal/models"
)

// EventSink receives cargo lifecycle events after each step. Record must not
// block.
type EventSink interface {
	Record(events []models.CargoEvent)
}

// Metrics receives per-step measurements.
type Metrics interface {
	ObserveTick(d time.Duration, skipped int)
	SetFleet(trains int, cargo map[models.CargoStatus]int)
}

// StepResult is the outcome of one Engine.Step.
type StepResult struct {
	Frame  models.Frame
	Events []models.CargoEvent
	Errors []error
}

// Engine is the single owner of fleet state.
type Engine struct {
	mu      sync.RWMutex
	catalog *catalog.Catalog
	params  Params
	hours   float64
	rng     Rand
	ids     *cargo.Generator
	trains  []*models.Train
	tick    uint64
	frame   models.Frame

	sink    EventSink
	metrics Metrics
	log     logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithEventSink forwards cargo events to sink.
func WithEventSink(sink EventSink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithMetrics reports tick timings and fleet counts to m.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the engine logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithIDGenerator sets the airway bill generator.
func WithIDGenerator(g *cargo.Generator) Option {
	return func(e *Engine) { e.ids = g }
}

// NewEngine validates params and builds a fresh fleet from the catalog.
func NewEngine(cat *catalog.Catalog, p Params, rng Rand, now time.Time, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e := newEngine(cat, p, rng, opts)
	trains, err := NewFleet(cat, p, rng, e.ids, now)
	if err != nil {
		return nil, err
	}
	if err := e.adopt(trains, now); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithTrains runs the given trains instead of generating a fleet.
// Every station referenced by a route must exist in the catalog.
func NewEngineWithTrains(cat *catalog.Catalog, p Params, rng Rand, trains []*models.Train, now time.Time, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e := newEngine(cat, p, rng, opts)
	if err := e.adopt(trains, now); err != nil {
		return nil, err
	}
	return e, nil
}

func newEngine(cat *catalog.Catalog, p Params, rng Rand, opts []Option) *Engine {
	e := &Engine{
		catalog: cat,
		params:  p,
		hours:   p.HoursPerTick(),
		rng:     rng,
		ids:     cargo.NewGenerator(),
		log:     logging.Noop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) adopt(trains []*models.Train, now time.Time) error {
	for _, t := range trains {
		for _, code := range t.Route {
			if _, ok := e.catalog.Station(code); !ok {
				return models.NewConfigError("train "+t.ID, "route references unknown station %q", code)
			}
		}
		if t.Route.Legs() > 0 && (t.CurrentLegIndex < 0 || t.CurrentLegIndex >= t.Route.Legs()) {
			return models.NewConfigError("train "+t.ID, "leg index %d outside route of %d legs", t.CurrentLegIndex, t.Route.Legs())
		}
	}
	e.trains = trains
	e.frame = e.project(now)
	e.reportFleet()
	return nil
}

// Params returns the engine settings.
func (e *Engine) Params() Params {
	return e.params
}

// Catalog returns the station and route catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Frame returns the most recently published frame.
func (e *Engine) Frame() models.Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frame
}

// Tick returns the number of completed steps.
func (e *Engine) Tick() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tick
}

// Step advances every train by one tick and publishes a new frame. Trains
// that fail are reported in Errors along with any events they produced
// before failing.
func (e *Engine) Step(now time.Time) StepResult {
	started := time.Now()

	e.mu.Lock()
	e.tick++
	var result StepResult
	for _, t := range e.trains {
		events, err := e.safeStepTrain(t, now)
		// a step that fails midway still reports the transitions it made
		result.Events = append(result.Events, events...)
		if err != nil {
			result.Errors = append(result.Errors, &TickError{TrainID: t.ID, Tick: e.tick, Err: err})
		}
	}
	e.frame = e.project(now)
	result.Frame = e.frame
	e.reportFleet()
	e.mu.Unlock()

	for _, err := range result.Errors {
		e.log.Warn(context.Background(), "train update skipped", logging.Err(err))
	}
	if e.sink != nil && len(result.Events) > 0 {
		e.sink.Record(result.Events)
	}
	if e.metrics != nil {
		e.metrics.ObserveTick(time.Since(started), len(result.Errors))
	}
	return result
}

func (e *Engine) safeStepTrain(t *models.Train, now time.Time) (events []models.CargoEvent, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step panicked: %v", r)
		}
	}()
	err = e.stepTrain(t, now, &events)
	return events, err
}

// stepTrain resolves stations before touching t, so a failed lookup leaves
// the train as it was. On arrival the train is parked at the station before
// any cargo is handled.
func (e *Engine) stepTrain(t *models.Train, now time.Time, events *[]models.CargoEvent) error {
	legs := t.Route.Legs()
	if legs == 0 {
		return nil
	}

	if t.DwellRemaining > 0 {
		t.DwellRemaining = math.Max(0, t.DwellRemaining-e.hours)
		t.DisplaySpeed = 0
		t.LastUpdated = now
		return nil
	}

	leg, progress := t.CurrentLegIndex, t.LegProgress
	if leg < 0 || leg >= legs {
		return fmt.Errorf("%w: %d of %d", ErrInvalidLeg, leg, legs)
	}
	if progress >= 1 {
		leg = (leg + 1) % legs
		progress = 0
	}

	fromCode, toCode := t.Route[leg], t.Route[leg+1]
	from, to, ok := e.catalog.Resolve(fromCode, toCode)
	if !ok {
		return fmt.Errorf("%w: leg %s -> %s", ErrStationNotFound, fromCode, toCode)
	}

	progress += t.Speed * e.hours / geo.DistanceKm(from, to)
	t.CurrentLegIndex = leg

	if progress >= 1 {
		t.LegProgress = 1
		t.DwellRemaining = e.drawDwellHours()
		t.DisplaySpeed = 0
		t.LastUpdated = now
		e.arrive(t, leg+1, now, events)
	} else {
		t.LegProgress = progress
		if progress > e.params.TransitThreshold {
			e.depart(t, fromCode, now, events)
		}
		e.maybeChangeSpeed(t)
		t.DisplaySpeed = t.Speed
	}
	t.LastUpdated = now
	return nil
}

// arrive delivers cargo bound for route[at] and picks up new cargo there.
func (e *Engine) arrive(t *models.Train, at int, now time.Time, events *[]models.CargoEvent) {
	code := t.Route[at]
	for _, car := range t.Cars {
		for _, item := range car.Cargo {
			if item.Destination == code && cargo.Deliver(item, code, now) {
				*events = append(*events, newEvent(t, car, item, code, now))
			}
		}
		if e.rng.Float64() < e.params.PickupProbability {
			if item := e.ids.PickUp(t.Route, at, e.rng, now); item != nil {
				car.Cargo = append(car.Cargo, item)
				*events = append(*events, newEvent(t, car, item, code, now))
			}
		}
	}
}

// depart marks cargo boarded at the leg origin as in transit.
func (e *Engine) depart(t *models.Train, origin string, now time.Time, events *[]models.CargoEvent) {
	for _, car := range t.Cars {
		for _, item := range car.Cargo {
			if item.Origin == origin && cargo.MarkInTransit(item, now) {
				*events = append(*events, newEvent(t, car, item, origin, now))
			}
		}
	}
}

func (e *Engine) maybeChangeSpeed(t *models.Train) {
	if e.rng.Float64() >= e.params.SpeedChangeProbability {
		return
	}
	delta := (e.rng.Float64()*2 - 1) * e.params.SpeedDeltaKmh
	t.Speed = math.Min(e.params.MaxSpeedKmh, math.Max(e.params.MinSpeedKmh, t.Speed+delta))
}

func (e *Engine) drawDwellHours() float64 {
	span := e.params.MaxDwellMinutes - e.params.MinDwellMinutes
	return (e.params.MinDwellMinutes + e.rng.Float64()*span) / 60
}

func (e *Engine) project(now time.Time) models.Frame {
	frame := models.Frame{
		Tick:      e.tick,
		Timestamp: now,
		Trains:    make([]models.TrainSnapshot, 0, len(e.trains)),
	}
	for _, t := range e.trains {
		frame.Trains = append(frame.Trains, ProjectTrain(t, e.catalog))
	}
	return frame
}

func (e *Engine) reportFleet() {
	if e.metrics == nil {
		return
	}
	counts := make(map[models.CargoStatus]int, 3)
	for _, t := range e.trains {
		for status, n := range t.CargoCount() {
			counts[status] += n
		}
	}
	e.metrics.SetFleet(len(e.trains), counts)
}

func newEvent(t *models.Train, car *models.Car, item *models.CargoItem, station string, now time.Time) models.CargoEvent {
	return models.CargoEvent{
		ID:        uuid.NewString(),
		CargoID:   item.ID,
		TrainID:   t.ID,
		CarID:     car.ID,
		Status:    item.Status,
		Station:   station,
		Timestamp: now,
	}
}
