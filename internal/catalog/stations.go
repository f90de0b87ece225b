package catalog

import "github.com/freight-sim/backend/internal/models"

// DefaultStations is the built-in station registry.
var DefaultStations = []models.Station{
	{Code: "LA", Name: "Los Angeles Intermodal", City: "Los Angeles", State: "CA", Latitude: 34.0522, Longitude: -118.2437},
	{Code: "KC", Name: "Kansas City Yard", City: "Kansas City", State: "MO", Latitude: 39.0997, Longitude: -94.5786},
	{Code: "CHI", Name: "Chicago Hub", City: "Chicago", State: "IL", Latitude: 41.8781, Longitude: -87.6298},
	{Code: "NYC", Name: "New York Terminal", City: "New York", State: "NY", Latitude: 40.7128, Longitude: -74.0060},
	{Code: "DAL", Name: "Dallas Freight Center", City: "Dallas", State: "TX", Latitude: 32.7767, Longitude: -96.7970},
	{Code: "HOU", Name: "Houston Port Rail", City: "Houston", State: "TX", Latitude: 29.7604, Longitude: -95.3698},
	{Code: "ATL", Name: "Atlanta Junction", City: "Atlanta", State: "GA", Latitude: 33.7490, Longitude: -84.3880},
	{Code: "DEN", Name: "Denver Rail Yard", City: "Denver", State: "CO", Latitude: 39.7392, Longitude: -104.9903},
	{Code: "SEA", Name: "Seattle Harbor Rail", City: "Seattle", State: "WA", Latitude: 47.6062, Longitude: -122.3321},
	{Code: "PHX", Name: "Phoenix Logistics Park", City: "Phoenix", State: "AZ", Latitude: 33.4484, Longitude: -112.0740},
	{Code: "MEM", Name: "Memphis Transfer", City: "Memphis", State: "TN", Latitude: 35.1495, Longitude: -90.0490},
	{Code: "STL", Name: "St. Louis Gateway", City: "St. Louis", State: "MO", Latitude: 38.6270, Longitude: -90.1994},
	{Code: "OMA", Name: "Omaha Classification Yard", City: "Omaha", State: "NE", Latitude: 41.2565, Longitude: -95.9345},
	{Code: "SLC", Name: "Salt Lake Terminal", City: "Salt Lake City", State: "UT", Latitude: 40.7608, Longitude: -111.8910},
	{Code: "ELP", Name: "El Paso Border Yard", City: "El Paso", State: "TX", Latitude: 31.7619, Longitude: -106.4850},
}

// DefaultRoutes is the built-in route catalog.
var DefaultRoutes = []models.Route{
	{"LA", "KC", "CHI", "NYC"},
	{"SEA", "DEN", "KC", "MEM", "ATL"},
	{"HOU", "DAL", "KC", "CHI"},
	{"LA", "PHX", "ELP", "DAL", "ATL"},
	{"CHI", "STL", "MEM", "HOU"},
	{"SLC", "DEN", "OMA", "CHI"},
}
