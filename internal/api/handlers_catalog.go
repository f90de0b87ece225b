// handlers_catalog.go - Station and route catalog
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freight-sim/backend/internal/catalog"
	"github.com/freight-sim/backend/internal/geo"
	"github.com/freight-sim/backend/internal/models"
)

// CatalogHandlerImpl implements the CatalogHandler interface
type CatalogHandlerImpl struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(cat *catalog.Catalog) CatalogHandler {
	return &CatalogHandlerImpl{catalog: cat}
}

// RouteInfo describes one catalog route
type RouteInfo struct {
	ID         int          `json:"id"`
	Stations   models.Route `json:"stations"`
	Legs       int          `json:"legs"`
	DistanceKm float64      `json:"distanceKm"`
}

// HandleStations returns every station sorted by code
func (h *CatalogHandlerImpl) HandleStations(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Stations())
}

// HandleRoutes returns every route with its length
func (h *CatalogHandlerImpl) HandleRoutes(c echo.Context) error {
	routes := h.catalog.Routes()
	out := make([]RouteInfo, 0, len(routes))
	for i, r := range routes {
		var km float64
		for leg := 0; leg < r.Legs(); leg++ {
			if a, b, ok := h.catalog.Resolve(r[leg], r[leg+1]); ok {
				km += geo.DistanceKm(a, b)
			}
		}
		out = append(out, RouteInfo{
			ID:         i,
			Stations:   r,
			Legs:       r.Legs(),
			DistanceKm: geo.Round(km, 1),
		})
	}
	return c.JSON(http.StatusOK, out)
}
