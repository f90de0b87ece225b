// handlers_stream.go - Server-Sent Events fleet stream
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/freight-sim/backend/internal/filter"
	"github.com/freight-sim/backend/internal/logging"
	"github.com/freight-sim/backend/internal/models"
	"github.com/freight-sim/backend/internal/stream"
)

// StreamHandlerImpl implements the StreamHandler interface
type StreamHandlerImpl struct {
	hub            FleetHub
	interval       time.Duration
	upgrader       websocket.Upgrader
	maxMessageSize int64
	log            logging.Logger
}

// NewStreamHandler creates a stream handler that emits one payload on
// connect and then one per interval.
func NewStreamHandler(hub FleetHub, interval time.Duration, maxMessageSize int64, log logging.Logger) StreamHandler {
	if log == nil {
		log = logging.Noop()
	}
	return &StreamHandlerImpl{
		hub:      hub,
		interval: interval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// CORS middleware decides who may call the API
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		maxMessageSize: maxMessageSize,
		log:            log,
	}
}

// HandleStream streams filtered fleet payloads via SSE until the client
// goes away
func (h *StreamHandlerImpl) HandleStream(c echo.Context) error {
	criteria := filter.FromValues(c.QueryParams())
	ctx := c.Request().Context()

	// Set SSE headers
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	sub := h.hub.Subscribe(stream.TransportSSE, criteria)
	defer sub.Close()
	log := h.log.With(logging.String("subscriber", sub.ID), logging.String("transport", string(sub.Transport)))
	log.Info(ctx, "subscriber connected")
	defer log.Info(ctx, "subscriber disconnected")

	if err := h.sendSSEData(c, sub.Next()); err != nil {
		return nil
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := h.sendSSEData(c, sub.Next()); err != nil {
				log.Debug(ctx, "stream write failed", logging.Err(err))
				return nil
			}
		}
	}
}

// sendSSEData writes one event. An unencodable payload is skipped rather
// than ending the stream; only write failures are returned.
func (h *StreamHandlerImpl) sendSSEData(c echo.Context, payload models.Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error(c.Request().Context(), "payload encoding failed", logging.Uint64("tick", payload.Tick), logging.Err(err))
		return nil
	}
	if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", data); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}

// HandleSubscribers lists connected stream subscribers
func (h *StreamHandlerImpl) HandleSubscribers(c echo.Context) error {
	subs := h.hub.Subscribers()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":       len(subs),
		"subscribers": subs,
	})
}
