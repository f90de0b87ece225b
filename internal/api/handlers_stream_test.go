package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freight-sim/backend/internal/filter"
	"github.com/freight-sim/backend/internal/models"
	"github.com/freight-sim/backend/internal/stream"
)

func TestHandleStreamSendsImmediatelyAndOnCadence(t *testing.T) {
	f := newFixture(t)
	h := NewStreamHandler(f.hub, 20*time.Millisecond, 0, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/stream?status=DELIVERED", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.HandleStream(c))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, 0, f.hub.Count(), "subscription released on disconnect")

	var payloads []models.Payload
	scanner := bufio.NewScanner(strings.NewReader(rec.Body.String()))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var p models.Payload
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &p))
		payloads = append(payloads, p)
	}

	require.GreaterOrEqual(t, len(payloads), 2)
	for _, p := range payloads {
		require.Len(t, p.Trains, 1)
		assert.Equal(t, "AWB-1", p.Trains[0].Cars[0].Cargo[0].ID)
		require.NotNil(t, p.FiltersApplied.Status)
		assert.Equal(t, "DELIVERED", *p.FiltersApplied.Status)
	}
}

func TestHandleSubscribers(t *testing.T) {
	f := newFixture(t)
	h := NewStreamHandler(f.hub, time.Second, 0, nil)
	sub := f.hub.Subscribe(stream.TransportSSE, filter.Criteria{Station: "KC"})
	defer sub.Close()

	c, rec := get("/api/subscribers")
	require.NoError(t, h.HandleSubscribers(c))
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Contains(t, rec.Body.String(), `"station":"KC"`)
}

func TestWebSocketStream(t *testing.T) {
	f := newFixture(t)
	e := echo.New()
	RegisterRoutes(e, NewHandlers(&Dependencies{
		Hub:              f.hub,
		Catalog:          f.cat,
		TickInterval:     20 * time.Millisecond,
		WSMaxMessageSize: 4096,
	}))
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/stream?trainName=prairie"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	var hello WSMessage
	require.NoError(t, ws.ReadJSON(&hello))
	assert.Equal(t, MsgTypeConnected, hello.Type)
	assert.NotEmpty(t, hello.ID)
	assert.Contains(t, string(hello.Payload), `"trainName":"prairie"`)

	var first WSMessage
	require.NoError(t, ws.ReadJSON(&first))
	require.Equal(t, MsgTypeSnapshot, first.Type)
	var p models.Payload
	require.NoError(t, json.Unmarshal(first.Payload, &p))
	require.Len(t, p.Trains, 1)
	assert.Equal(t, "TRN-1", p.Trains[0].ID)
	assert.Equal(t, 1, f.hub.Count())

	require.NoError(t, ws.WriteJSON(WSMessage{Type: MsgTypePing, ID: "p1"}))
	require.NoError(t, ws.WriteJSON(WSMessage{Type: "teleport", ID: "x1"}))

	seen := map[string]bool{}
	snapshots := 0
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for !(seen[MsgTypePong] && seen[MsgTypeError] && snapshots >= 2) {
		var msg WSMessage
		require.NoError(t, ws.ReadJSON(&msg))
		seen[msg.Type] = true
		switch msg.Type {
		case MsgTypeSnapshot:
			snapshots++
		case MsgTypePong:
			assert.Equal(t, "p1", msg.ID)
		case MsgTypeError:
			assert.Contains(t, string(msg.Payload), "INVALID_TYPE")
		}
	}

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	ws.Close()

	assert.Eventually(t, func() bool { return f.hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
