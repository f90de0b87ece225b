// Package catalog holds the immutable station registry and route catalog.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/freight-sim/backend/internal/models"
)

// Catalog resolves station codes and lists the routes trains may run.
// It is never mutated after New returns.
type Catalog struct {
	stations map[string]models.Station
	ordered  []models.Station
	routes   []models.Route
}

// File is the YAML layout of a catalog file.
type File struct {
	Stations []models.Station `yaml:"stations"`
	Routes   [][]string       `yaml:"routes"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(DefaultStations, DefaultRoutes)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// New validates stations and routes and builds a Catalog. Any unknown
// station reference, duplicate code or short route is a configuration error.
func New(stations []models.Station, routes []models.Route) (*Catalog, error) {
	if len(stations) == 0 {
		return nil, models.NewConfigError("stations", "at least one station is required")
	}
	if len(routes) == 0 {
		return nil, models.NewConfigError("routes", "at least one route is required")
	}

	v := validator.New()
	c := &Catalog{
		stations: make(map[string]models.Station, len(stations)),
		ordered:  make([]models.Station, 0, len(stations)),
		routes:   make([]models.Route, 0, len(routes)),
	}

	for i, st := range stations {
		if err := v.Struct(st); err != nil {
			cfgErr := models.NewConfigError(fmt.Sprintf("stations[%d]", i), "invalid station %q", st.Code)
			cfgErr.Err = err
			return nil, cfgErr
		}
		if _, dup := c.stations[st.Code]; dup {
			return nil, models.NewConfigError(fmt.Sprintf("stations[%d]", i), "duplicate station code %q", st.Code)
		}
		c.stations[st.Code] = st
		c.ordered = append(c.ordered, st)
	}

	for i, r := range routes {
		field := fmt.Sprintf("routes[%d]", i)
		if len(r) < 2 {
			return nil, models.NewConfigError(field, "route needs at least 2 stations, got %d", len(r))
		}
		seen := make(map[string]struct{}, len(r))
		for _, code := range r {
			if _, ok := c.stations[code]; !ok {
				return nil, models.NewConfigError(field, "unknown station %q", code)
			}
			if _, dup := seen[code]; dup {
				return nil, models.NewConfigError(field, "station %q appears twice", code)
			}
			seen[code] = struct{}{}
		}
		c.routes = append(c.routes, r.Clone())
	}

	sort.SliceStable(c.ordered, func(i, j int) bool { return c.ordered[i].Code < c.ordered[j].Code })
	return c, nil
}

// LoadFile reads a YAML catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		cfgErr := models.NewConfigError("catalogFile", "failed to parse %s", path)
		cfgErr.Err = err
		return nil, cfgErr
	}

	routes := make([]models.Route, len(f.Routes))
	for i, r := range f.Routes {
		routes[i] = models.Route(r)
	}
	return New(f.Stations, routes)
}

// Station looks up a station by code.
func (c *Catalog) Station(code string) (models.Station, bool) {
	st, ok := c.stations[code]
	return st, ok
}

// Stations returns all stations sorted by code. The slice is a copy.
func (c *Catalog) Stations() []models.Station {
	out := make([]models.Station, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Routes returns copies of all routes in catalog order.
func (c *Catalog) Routes() []models.Route {
	out := make([]models.Route, len(c.routes))
	for i, r := range c.routes {
		out[i] = r.Clone()
	}
	return out
}

// Route returns route i modulo the number of routes.
func (c *Catalog) Route(i int) models.Route {
	if i < 0 {
		i = -i
	}
	return c.routes[i%len(c.routes)].Clone()
}

// Resolve returns the station pair for a leg.
func (c *Catalog) Resolve(from, to string) (models.Station, models.Station, bool) {
	a, okA := c.stations[from]
	b, okB := c.stations[to]
	return a, b, okA && okB
}
