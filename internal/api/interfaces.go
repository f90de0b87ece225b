// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/freight-sim/backend/internal/filter"
	"github.com/freight-sim/backend/internal/journal"
	"github.com/freight-sim/backend/internal/models"
	"github.com/freight-sim/backend/internal/stream"
)

// StreamHandler pushes filtered fleet payloads to long-lived subscribers
type StreamHandler interface {
	HandleStream(c echo.Context) error
	HandleWebSocket(c echo.Context) error
	HandleSubscribers(c echo.Context) error
}

// SnapshotHandler serves one-shot filtered payloads
type SnapshotHandler interface {
	HandleSnapshot(c echo.Context) error
	HandleSnapshotMsgpack(c echo.Context) error
}

// CatalogHandler serves the station and route catalog
type CatalogHandler interface {
	HandleStations(c echo.Context) error
	HandleRoutes(c echo.Context) error
}

// CargoHandler serves airway bill history and delivery statistics
type CargoHandler interface {
	HandleCargoHistory(c echo.Context) error
	HandleDeliveryStats(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// FleetHub is the shared frame store the handlers read from.
// *stream.Hub implements it.
type FleetHub interface {
	Latest() models.Frame
	Payload(c filter.Criteria) models.Payload
	Subscribe(transport stream.Transport, c filter.Criteria) *stream.Subscription
	Subscribers() []stream.SubscriberInfo
	Count() int
}

// EventJournal is the queryable cargo event log. *journal.Journal
// implements it.
type EventJournal interface {
	History(ctx context.Context, cargoID string) ([]models.CargoEvent, error)
	DeliveriesByStation(ctx context.Context) ([]journal.StationDeliveries, error)
	Count(ctx context.Context) (int64, error)
}
