// Package cargo owns the airway bill lifecycle: generation and the
// LOADED -> IN_TRANSIT -> DELIVERED transitions.
package cargo

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/freight-sim/backend/internal/models"
)

const (
	minPieces   = 1
	maxPieces   = 40
	minWeightKg = 200.0
	maxWeightKg = 20000.0
)

// Rand is the random source used for generation. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Generator issues airway bills with process-unique identifiers.
type Generator struct {
	seq atomic.Uint64
}

// NewGenerator creates a generator starting at AWB-000001.
func NewGenerator() *Generator {
	return &Generator{}
}

// NextID returns the next airway bill number.
func (g *Generator) NextID() string {
	return fmt.Sprintf("AWB-%06d", g.seq.Add(1))
}

// New creates a LOADED item travelling from route[origin] to route[dest].
// It requires 0 <= origin < dest <= len(route)-1.
func (g *Generator) New(route models.Route, origin, dest int, rng Rand, now time.Time) (*models.CargoItem, error) {
	if origin < 0 || dest >= len(route) || origin >= dest {
		return nil, fmt.Errorf("invalid cargo legs origin=%d destination=%d for route of %d stations", origin, dest, len(route))
	}
	return &models.CargoItem{
		ID:          g.NextID(),
		Origin:      route[origin],
		Destination: route[dest],
		Pieces:      minPieces + rng.Intn(maxPieces-minPieces+1),
		WeightKg:    roundWeight(minWeightKg + rng.Float64()*(maxWeightKg-minWeightKg)),
		Status:      models.CargoStatusLoaded,
		CreatedAt:   now,
		LastUpdated: now,
	}, nil
}

// Random creates an item for a random origin/destination pair along route.
func (g *Generator) Random(route models.Route, rng Rand, now time.Time) (*models.CargoItem, error) {
	if len(route) < 2 {
		return nil, fmt.Errorf("route of %d stations cannot carry cargo", len(route))
	}
	last := len(route) - 1
	origin := rng.Intn(last)
	dest := origin + 1 + rng.Intn(last-origin)
	return g.New(route, origin, dest, rng, now)
}

// PickUp creates an item originating at route[at], destined for a random
// later station. It returns nil when at is the final station.
func (g *Generator) PickUp(route models.Route, at int, rng Rand, now time.Time) *models.CargoItem {
	last := len(route) - 1
	if at < 0 || at >= last {
		return nil
	}
	dest := at + 1 + rng.Intn(last-at)
	item, err := g.New(route, at, dest, rng, now)
	if err != nil {
		return nil
	}
	return item
}

// MarkInTransit moves a LOADED item to IN_TRANSIT. Any other status is left
// alone. It reports whether the item changed.
func MarkInTransit(item *models.CargoItem, now time.Time) bool {
	if item.Status != models.CargoStatusLoaded {
		return false
	}
	item.Status = models.CargoStatusInTransit
	item.LastUpdated = now
	return true
}

// Deliver offloads a not yet delivered item at station. Delivered items are
// frozen, so calling Deliver again is a no-op.
func Deliver(item *models.CargoItem, station string, now time.Time) bool {
	if item.Status == models.CargoStatusDelivered {
		return false
	}
	deliveredAt := now
	offload := station
	item.Status = models.CargoStatusDelivered
	item.DeliveredAt = &deliveredAt
	item.OffloadStation = &offload
	item.LastUpdated = now
	return true
}

func roundWeight(w float64) float64 {
	return float64(int64(w*10+0.5)) / 10
}
