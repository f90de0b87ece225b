// handlers_snapshot.go - One-shot fleet snapshots
package api

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/freight-sim/backend/internal/filter"
)

// SnapshotHandlerImpl implements the SnapshotHandler interface
type SnapshotHandlerImpl struct {
	hub FleetHub
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(hub FleetHub) SnapshotHandler {
	return &SnapshotHandlerImpl{hub: hub}
}

// HandleSnapshot returns the latest filtered payload as JSON
func (h *SnapshotHandlerImpl) HandleSnapshot(c echo.Context) error {
	payload := h.hub.Payload(filter.FromValues(c.QueryParams()))
	return c.JSON(http.StatusOK, payload)
}

// HandleSnapshotMsgpack returns the latest filtered payload in MessagePack
// format, keyed by the same field names as the JSON form
func (h *SnapshotHandlerImpl) HandleSnapshotMsgpack(c echo.Context) error {
	payload := h.hub.Payload(filter.FromValues(c.QueryParams()))

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(payload); err != nil {
		return NewEncodingError("msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", buf.Bytes())
}
