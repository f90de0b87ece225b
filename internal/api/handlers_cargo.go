// handlers_cargo.go - Airway bill history and delivery statistics
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/freight-sim/backend/internal/models"
)

// CargoHandlerImpl implements the CargoHandler interface
type CargoHandlerImpl struct {
	hub     FleetHub
	journal EventJournal
}

// NewCargoHandler creates a new cargo handler. journal may be nil when the
// event journal is disabled.
func NewCargoHandler(hub FleetHub, journal EventJournal) CargoHandler {
	return &CargoHandlerImpl{hub: hub, journal: journal}
}

// CargoLocation is where an airway bill currently rides
type CargoLocation struct {
	TrainID   string           `json:"trainId"`
	TrainName string           `json:"trainName"`
	CarID     string           `json:"carId"`
	Item      models.CargoItem `json:"item"`
}

// HandleCargoHistory returns the journaled events and current position of
// one airway bill
func (h *CargoHandlerImpl) HandleCargoHistory(c echo.Context) error {
	// airway bills are issued upper case; the live lookup and the journal
	// query both use the normalised id
	id := strings.ToUpper(strings.TrimSpace(c.Param("id")))
	if id == "" {
		return NewInvalidParameterError("id", "must not be blank", nil)
	}

	current := locateCargo(h.hub.Latest(), id)

	events := []models.CargoEvent{}
	if h.journal != nil {
		found, err := h.journal.History(c.Request().Context(), id)
		if err != nil {
			return NewJournalError("cargo history query", err)
		}
		events = found
	}

	if current == nil && len(events) == 0 {
		return NewCargoNotFoundError(id)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"cargoId": id,
		"current": current,
		"events":  events,
	})
}

// HandleDeliveryStats returns delivered item counts per offload station.
// An optional limit keeps only the busiest stations.
func (h *CargoHandlerImpl) HandleDeliveryStats(c echo.Context) error {
	if h.journal == nil {
		return NewJournalDisabledError()
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return NewInvalidParameterError("limit", "must be a non-negative integer", err)
		}
		limit = n
	}

	ctx := c.Request().Context()
	stations, err := h.journal.DeliveriesByStation(ctx)
	if err != nil {
		return NewJournalError("delivery stats query", err)
	}
	events, err := h.journal.Count(ctx)
	if err != nil {
		return NewJournalError("event count", err)
	}

	var delivered int64
	for _, s := range stations {
		delivered += s.Delivered
	}
	if limit > 0 && len(stations) > limit {
		stations = stations[:limit]
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"delivered": delivered,
		"events":    events,
		"stations":  stations,
	})
}

func locateCargo(frame models.Frame, id string) *CargoLocation {
	for _, t := range frame.Trains {
		for _, car := range t.Cars {
			for _, item := range car.Cargo {
				if item.ID == id {
					return &CargoLocation{TrainID: t.ID, TrainName: t.Name, CarID: car.ID, Item: item}
				}
			}
		}
	}
	return nil
}
