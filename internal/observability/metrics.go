// Package observability bundles the Prometheus metrics exported by the
// simulator and its stream transports.
package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freight-sim/backend/internal/models"
)

// SimCollector holds simulation, stream and journal metrics.
type SimCollector struct {
	gatherer prometheus.Gatherer

	Ticks         prometheus.Counter
	TickDurations prometheus.Histogram
	TickErrors    prometheus.Counter
	Trains        prometheus.Gauge
	CargoItems    *prometheus.GaugeVec

	Subscribers *prometheus.GaugeVec
	FramesSent  *prometheus.CounterVec

	JournalDropped prometheus.Counter
}

// NewSimCollector registers every metric against reg, defaulting to the
// global registry when reg is nil. Registering twice on the same registry
// reuses the existing collectors.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &SimCollector{gatherer: gatherer}
	var err error

	if c.Ticks, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_ticks_total",
		Help: "Number of simulation steps executed.",
	}), "sim_ticks_total"); err != nil {
		return nil, err
	}
	if c.TickDurations, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Wall-clock time spent advancing and projecting the fleet per tick.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}), "sim_tick_duration_seconds"); err != nil {
		return nil, err
	}
	if c.TickErrors, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_tick_errors_total",
		Help: "Train updates skipped because of an error during a tick.",
	}), "sim_tick_errors_total"); err != nil {
		return nil, err
	}
	if c.Trains, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_trains",
		Help: "Number of trains in the simulated fleet.",
	}), "sim_trains"); err != nil {
		return nil, err
	}
	if c.CargoItems, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_cargo_items",
		Help: "Airway bills currently tracked, labeled by lifecycle status.",
	}, []string{"status"}), "sim_cargo_items"); err != nil {
		return nil, err
	}
	if c.Subscribers, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stream_subscribers",
		Help: "Connected stream subscribers, labeled by transport.",
	}, []string{"transport"}), "stream_subscribers"); err != nil {
		return nil, err
	}
	if c.FramesSent, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stream_frames_sent_total",
		Help: "Payloads delivered to subscribers, labeled by transport.",
	}, []string{"transport"}), "stream_frames_sent_total"); err != nil {
		return nil, err
	}
	if c.JournalDropped, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "journal_events_dropped_total",
		Help: "Cargo events dropped because the journal buffer was full.",
	}), "journal_events_dropped_total"); err != nil {
		return nil, err
	}

	return c, nil
}

// ObserveTick records one completed step.
func (c *SimCollector) ObserveTick(d time.Duration, skipped int) {
	if c == nil {
		return
	}
	c.Ticks.Inc()
	c.TickDurations.Observe(d.Seconds())
	if skipped > 0 {
		c.TickErrors.Add(float64(skipped))
	}
}

// SetFleet publishes fleet size and cargo counts by status.
func (c *SimCollector) SetFleet(trains int, cargo map[models.CargoStatus]int) {
	if c == nil {
		return
	}
	c.Trains.Set(float64(trains))
	for _, s := range []models.CargoStatus{models.CargoStatusLoaded, models.CargoStatusInTransit, models.CargoStatusDelivered} {
		c.CargoItems.WithLabelValues(string(s)).Set(float64(cargo[s]))
	}
}

// SubscriberConnected increments the subscriber gauge for transport and
// returns the matching decrement.
func (c *SimCollector) SubscriberConnected(transport string) func() {
	if c == nil {
		return func() {}
	}
	g := c.Subscribers.WithLabelValues(transport)
	g.Inc()
	return g.Dec
}

// FrameSent counts one delivered payload.
func (c *SimCollector) FrameSent(transport string) {
	if c == nil {
		return
	}
	c.FramesSent.WithLabelValues(transport).Inc()
}

// EventsDropped counts journal events lost to back-pressure.
func (c *SimCollector) EventsDropped(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.JournalDropped.Add(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (c *SimCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T, name string) (T, error) {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return collector, nil
}
