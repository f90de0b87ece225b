// Package stream shares the latest fleet frame with every connected
// subscriber. There is one hub per process; subscribers read from it on
// their own cadence and filter what they read with their own criteria.
package stream

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freight-sim/backend/internal/filter"
	"github.com/freight-sim/backend/internal/models"
)

// Transport names a subscriber delivery mechanism.
type Transport string

const (
	TransportSSE       Transport = "sse"
	TransportWebSocket Transport = "websocket"
)

// Metrics receives subscriber lifecycle updates.
type Metrics interface {
	SubscriberConnected(transport string) func()
	FrameSent(transport string)
}

// FrameSource yields the most recently projected frame.
type FrameSource interface {
	Frame() models.Frame
}

// Subscription is one connected client. Its criteria are fixed for the
// lifetime of the connection.
type Subscription struct {
	ID          string
	Transport   Transport
	Criteria    filter.Criteria
	ConnectedAt time.Time

	hub      *Hub
	release  func()
	closeOne sync.Once
}

// Hub stores the latest published frame and tracks subscribers.
type Hub struct {
	mu          sync.RWMutex
	latest      models.Frame
	published   bool
	source      FrameSource
	stations    []models.Station
	subscribers map[string]*Subscription
	metrics     Metrics
}

// NewHub creates a hub serving stations as the payload catalog. Until the
// first Publish, Latest falls back to source.
func NewHub(source FrameSource, stations []models.Station, metrics Metrics) *Hub {
	return &Hub{
		source:      source,
		stations:    stations,
		subscribers: make(map[string]*Subscription),
		metrics:     metrics,
	}
}

// Publish replaces the shared frame. Frames are never mutated afterwards.
func (h *Hub) Publish(frame models.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = frame
	h.published = true
}

// Latest returns the shared frame.
func (h *Hub) Latest() models.Frame {
	h.mu.RLock()
	frame, ok := h.latest, h.published
	h.mu.RUnlock()
	if !ok && h.source != nil {
		return h.source.Frame()
	}
	return frame
}

// Payload filters the latest frame with c.
func (h *Hub) Payload(c filter.Criteria) models.Payload {
	frame := h.Latest()
	trains := filter.Apply(frame.Trains, c)
	if trains == nil {
		trains = []models.TrainSnapshot{}
	}
	return models.Payload{
		Timestamp:      frame.Timestamp,
		Tick:           frame.Tick,
		FiltersApplied: c.Applied(),
		Trains:         trains,
		StationCatalog: h.stations,
	}
}

// Subscribe registers a subscriber. Close must be called on disconnect.
func (h *Hub) Subscribe(transport Transport, c filter.Criteria) *Subscription {
	sub := &Subscription{
		ID:          uuid.NewString(),
		Transport:   transport,
		Criteria:    c,
		ConnectedAt: time.Now(),
		hub:         h,
	}
	if h.metrics != nil {
		sub.release = h.metrics.SubscriberConnected(string(transport))
	}

	h.mu.Lock()
	h.subscribers[sub.ID] = sub
	h.mu.Unlock()
	return sub
}

// Next returns the payload for this subscriber's criteria and counts it as
// sent.
func (s *Subscription) Next() models.Payload {
	p := s.hub.Payload(s.Criteria)
	if s.hub.metrics != nil {
		s.hub.metrics.FrameSent(string(s.Transport))
	}
	return p
}

// Close removes the subscription from its hub. It is safe to call twice.
func (s *Subscription) Close() {
	s.closeOne.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subscribers, s.ID)
		s.hub.mu.Unlock()
		if s.release != nil {
			s.release()
		}
	})
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// SubscriberInfo describes one subscriber for diagnostics.
type SubscriberInfo struct {
	ID          string                `json:"id"`
	Transport   Transport             `json:"transport"`
	Filters     models.AppliedFilters `json:"filters"`
	ConnectedAt time.Time             `json:"connectedAt"`
}

// Subscribers lists connected subscribers, oldest first.
func (h *Hub) Subscribers() []SubscriberInfo {
	h.mu.RLock()
	out := make([]SubscriberInfo, 0, len(h.subscribers))
	for _, s := range h.subscribers {
		out = append(out, SubscriberInfo{
			ID:          s.ID,
			Transport:   s.Transport,
			Filters:     s.Criteria.Applied(),
			ConnectedAt: s.ConnectedAt,
		})
	}
	h.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ConnectedAt.Equal(out[j].ConnectedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ConnectedAt.Before(out[j].ConnectedAt)
	})
	return out
}

// Stations returns the payload station catalog.
func (h *Hub) Stations() []models.Station {
	return h.stations
}
