package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/freight-sim/backend/internal/filter"
	"github.com/freight-sim/backend/internal/logging"
	"github.com/freight-sim/backend/internal/stream"
)

// WebSocket message types for the fleet stream
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeSnapshot  = "snapshot"
	MsgTypePong      = "pong"
	MsgTypeError     = "error"
)

const writeWait = 10 * time.Second

// WSMessage is the envelope for every websocket frame
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WSErrorResponse is sent for messages the server does not understand
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// wsConn serialises writes; gorilla connections allow one writer at a time.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (w *wsConn) send(msgType, id string, payload interface{}) error {
	msg := WSMessage{Type: msgType, ID: id, Timestamp: time.Now().UnixMilli()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		msg.Payload = data
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return w.ws.WriteJSON(msg)
}

// close sends a close frame; the connection itself is closed by the caller.
func (w *wsConn) close(code int, reason string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
}

// HandleWebSocket upgrades the connection and streams filtered fleet
// payloads on the shared cadence. Clients may send ping messages.
func (h *StreamHandlerImpl) HandleWebSocket(c echo.Context) error {
	criteria := filter.FromValues(c.QueryParams())

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()
	if h.maxMessageSize > 0 {
		ws.SetReadLimit(h.maxMessageSize)
	}

	sub := h.hub.Subscribe(stream.TransportWebSocket, criteria)
	defer sub.Close()

	// the request context outlives the hijack and is cancelled on server
	// shutdown; readLoop cancels it when the client goes away
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	log := h.log.With(logging.String("subscriber", sub.ID), logging.String("transport", string(sub.Transport)))
	log.Info(ctx, "subscriber connected")
	defer log.Info(ctx, "subscriber disconnected")

	conn := &wsConn{ws: ws}
	if err := conn.send(MsgTypeConnected, sub.ID, criteria.Applied()); err != nil {
		return nil
	}

	go h.readLoop(conn, log, cancel)

	if err := h.sendSnapshot(conn, sub, log); err != nil {
		return nil
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if c.Request().Context().Err() != nil {
				conn.close(websocket.CloseGoingAway, "server shutting down")
			}
			return nil
		case <-ticker.C:
			if err := h.sendSnapshot(conn, sub, log); err != nil {
				return nil
			}
		}
	}
}

func (h *StreamHandlerImpl) sendSnapshot(conn *wsConn, sub *stream.Subscription, log logging.Logger) error {
	err := conn.send(MsgTypeSnapshot, sub.ID, sub.Next())
	if err != nil {
		log.Debug(context.Background(), "stream write failed", logging.Err(err))
	}
	return err
}

// readLoop answers pings and cancels the stream when the client goes away.
func (h *StreamHandlerImpl) readLoop(conn *wsConn, log logging.Logger, cancel context.CancelFunc) {
	defer cancel()
	for {
		var msg WSMessage
		if err := conn.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn(context.Background(), "websocket connection error", logging.Err(err))
			}
			return
		}

		switch msg.Type {
		case MsgTypePing:
			err := conn.send(MsgTypePong, msg.ID, nil)
			if err != nil {
				return
			}
		default:
			err := conn.send(MsgTypeError, msg.ID, WSErrorResponse{
				Message: "Unknown message type: " + msg.Type,
				Code:    "INVALID_TYPE",
			})
			if err != nil {
				return
			}
		}
	}
}
