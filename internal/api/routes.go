// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/freight-sim/backend/internal/catalog"
	"github.com/freight-sim/backend/internal/logging"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Hub     FleetHub
	Catalog *catalog.Catalog
	// Journal is nil when the cargo event journal is disabled.
	Journal EventJournal
	// Metrics serves the Prometheus exposition; nil disables /metrics.
	Metrics http.Handler

	TickInterval     time.Duration
	WSMaxMessageSize int64
	Version          string
	Logger           logging.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Stream   StreamHandler
	Snapshot SnapshotHandler
	Catalog  CatalogHandler
	Cargo    CargoHandler
	Metrics  http.Handler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version, deps.Hub, deps.Journal),
		Stream:   NewStreamHandler(deps.Hub, deps.TickInterval, deps.WSMaxMessageSize, deps.Logger),
		Snapshot: NewSnapshotHandler(deps.Hub),
		Catalog:  NewCatalogHandler(deps.Catalog),
		Cargo:    NewCargoHandler(deps.Hub, deps.Journal),
		Metrics:  deps.Metrics,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Live fleet streams
	apiGroup.GET("/stream", handlers.Stream.HandleStream)
	apiGroup.GET("/ws/stream", handlers.Stream.HandleWebSocket)
	apiGroup.GET("/subscribers", handlers.Stream.HandleSubscribers)

	// One-shot snapshots
	apiGroup.GET("/snapshot", handlers.Snapshot.HandleSnapshot)
	apiGroup.GET("/snapshot/msgpack", handlers.Snapshot.HandleSnapshotMsgpack)

	// Catalog
	apiGroup.GET("/stations", handlers.Catalog.HandleStations)
	apiGroup.GET("/routes", handlers.Catalog.HandleRoutes)

	// Cargo journal
	apiGroup.GET("/cargo/:id/history", handlers.Cargo.HandleCargoHistory)
	apiGroup.GET("/stats/deliveries", handlers.Cargo.HandleDeliveryStats)

	if handlers.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(handlers.Metrics))
	}
}

// MiddlewareConfig selects the optional middleware
type MiddlewareConfig struct {
	EnableRequestLogging bool
	EnableCORS           bool
	AllowOrigins         string
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" ||
				path == "/metrics" ||
				strings.HasSuffix(path, "/stream")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.EnableCORS {
		origins := strings.Split(cfg.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
