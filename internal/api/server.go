// server.go - HTTP server construction
package api

import (
	"context"
	"net"
	"net/http"
	"time"
)

// ServerConfig holds the http.Server timeouts
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates an http.Server whose request contexts derive from ctx.
// Cancelling ctx ends every open SSE and websocket stream, which lets
// Shutdown drain instead of waiting on long-lived connections.
func NewServer(ctx context.Context, cfg ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}
