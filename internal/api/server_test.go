package api

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownEndsOpenStreams(t *testing.T) {
	f := newFixture(t)
	e := echo.New()
	RegisterRoutes(e, NewHandlers(&Dependencies{
		Hub:          f.hub,
		Catalog:      f.cat,
		TickInterval: 20 * time.Millisecond,
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewServer(ctx, ServerConfig{IdleTimeout: time.Minute}, e)
	served := make(chan error, 1)
	go func() { served <- s.Serve(ln) }()
	base := "http://" + ln.Addr().String()

	resp, err := http.Get(base + "/api/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "data: "))

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(base, "http")+"/api/ws/stream", nil)
	require.NoError(t, err)
	defer ws.Close()
	var hello WSMessage
	require.NoError(t, ws.ReadJSON(&hello))
	require.Equal(t, MsgTypeConnected, hello.Type)
	require.Eventually(t, func() bool { return f.hub.Count() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 3*time.Second)
	defer stop()
	started := time.Now()
	require.NoError(t, s.Shutdown(shutdownCtx))
	assert.Less(t, time.Since(started), 2*time.Second)
	assert.ErrorIs(t, <-served, http.ErrServerClosed)

	// the SSE response is finished rather than left hanging
	_, _ = io.ReadAll(resp.Body)

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, _, err := ws.ReadMessage()
		if err == nil {
			continue
		}
		var closeErr *websocket.CloseError
		require.True(t, errors.As(err, &closeErr), "got %v", err)
		assert.Equal(t, websocket.CloseGoingAway, closeErr.Code)
		break
	}

	assert.Eventually(t, func() bool { return f.hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
