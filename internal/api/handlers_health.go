// handlers_health.go - Health check handlers
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	hub     FleetHub
	journal EventJournal
}

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Status      string    `json:"status"`
	Version     string    `json:"version"`
	Tick        uint64    `json:"tick"`
	SimTime     time.Time `json:"simTime"`
	Trains      int       `json:"trains"`
	Subscribers int       `json:"subscribers"`
	// JournalEvents is nil when the journal is disabled.
	JournalEvents *int64 `json:"journalEvents"`
}

// NewHealthHandler creates a new health handler. journal may be nil.
func NewHealthHandler(version string, hub FleetHub, journal EventJournal) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		hub:     hub,
		journal: journal,
	}
}

// HandleHealth reports the simulation position and stream load. A journal
// that cannot be queried degrades the status instead of failing the check.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	frame := h.hub.Latest()
	resp := HealthResponse{
		Status:      "ok",
		Version:     h.version,
		Tick:        frame.Tick,
		SimTime:     frame.Timestamp,
		Trains:      len(frame.Trains),
		Subscribers: h.hub.Count(),
	}
	if h.journal != nil {
		n, err := h.journal.Count(c.Request().Context())
		if err != nil {
			resp.Status = "degraded"
		} else {
			resp.JournalEvents = &n
		}
	}
	return c.JSON(http.StatusOK, resp)
}
