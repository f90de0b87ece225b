package models

import (
	"strings"
	"time"
)

// CargoStatus is the lifecycle state of an airway bill.
type CargoStatus string

const (
	CargoStatusLoaded    CargoStatus = "LOADED"
	CargoStatusInTransit CargoStatus = "IN_TRANSIT"
	CargoStatusDelivered CargoStatus = "DELIVERED"
)

// rank orders statuses so transitions can be checked for monotonicity.
func (s CargoStatus) rank() int {
	switch s {
	case CargoStatusLoaded:
		return 0
	case CargoStatusInTransit:
		return 1
	case CargoStatusDelivered:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is one of the three lifecycle states.
func (s CargoStatus) Valid() bool {
	return s.rank() >= 0
}

// Before reports whether s precedes other in the lifecycle.
func (s CargoStatus) Before(other CargoStatus) bool {
	return s.Valid() && other.Valid() && s.rank() < other.rank()
}

// ParseCargoStatus normalises case and surrounding space. The boolean is
// false for anything that is not a lifecycle state.
func ParseCargoStatus(raw string) (CargoStatus, bool) {
	s := CargoStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// CargoItem is a single airway bill carried in a car.
type CargoItem struct {
	ID             string      `json:"id"`
	Origin         string      `json:"origin"`
	Destination    string      `json:"destination"`
	Pieces         int         `json:"pieces"`
	WeightKg       float64     `json:"weightKg"`
	Status         CargoStatus `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
	LastUpdated    time.Time   `json:"lastUpdated"`
	DeliveredAt    *time.Time  `json:"deliveredAt"`
	OffloadStation *string     `json:"offloadStation"`
}

// Clone returns a deep copy of the item.
func (c *CargoItem) Clone() CargoItem {
	out := *c
	if c.DeliveredAt != nil {
		t := *c.DeliveredAt
		out.DeliveredAt = &t
	}
	if c.OffloadStation != nil {
		s := *c.OffloadStation
		out.OffloadStation = &s
	}
	return out
}

// OffloadCode returns the offload station or "" while undelivered.
func (c CargoItem) OffloadCode() string {
	if c.OffloadStation == nil {
		return ""
	}
	return *c.OffloadStation
}

// CargoEvent records a cargo lifecycle step for the journal.
type CargoEvent struct {
	ID        string      `json:"id"`
	CargoID   string      `json:"cargoId"`
	TrainID   string      `json:"trainId"`
	CarID     string      `json:"carId"`
	Status    CargoStatus `json:"status"`
	Station   string      `json:"station"`
	Timestamp time.Time   `json:"timestamp"`
}
