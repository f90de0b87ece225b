package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrStationNotFound is returned when a leg references an unknown station.
	ErrStationNotFound = errors.New("station not found")
	// ErrInvalidLeg is returned when a train's leg index is outside its route.
	ErrInvalidLeg = errors.New("invalid leg index")
)

// TickError reports a train whose update was skipped for one tick. The
// rest of the fleet still advances.
type TickError struct {
	TrainID string
	Tick    uint64
	Err     error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d: train %s skipped: %v", e.Tick, e.TrainID, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}
