package services

import (
	"errors"
	"fmt"
	"strings"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
)

// ErrSchedulingConflict is matched by every SchedulingConflictError.
var ErrSchedulingConflict = errors.New("scheduling conflict")

// ConflictRequest describes a prospective booking.
//
// A nil Window disables the check. ExcludeDeliveryID lets a delivery being
// reassigned skip comparison with its own current booking.
type ConflictRequest struct {
	DriverID          *kernel.UUID
	VehicleID         *kernel.UUID
	Window            *kernel.TimeWindow
	ExcludeDeliveryID *kernel.UUID
}

// Conflict summarises an existing delivery that overlaps a request.
type Conflict struct {
	DeliveryID    kernel.UUID
	DriverID      *kernel.UUID
	VehicleID     *kernel.UUID
	Status        delivery.Status
	Window        kernel.TimeWindow
	PickupAddress string
	DropAddress   string
	SharesDriver  bool
	SharesVehicle bool
}

// SchedulingConflictError carries every delivery the request collided with.
type SchedulingConflictError struct {
	Conflicts []Conflict
}

func (e *SchedulingConflictError) Error() string {
	ids := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		ids = append(ids, c.DeliveryID.String())
	}
	return fmt.Sprintf("%s: overlaps %s", ErrSchedulingConflict, strings.Join(ids, ", "))
}

func (e *SchedulingConflictError) Unwrap() error {
	return ErrSchedulingConflict
}

// ConflictDetector finds bookings that would double-book a driver or vehicle.
//
// A candidate conflicts with a request when all of the following hold:
//   - it is assigned, on_route or picked_up
//   - both of its scheduled times are set
//   - it holds the requested driver or the requested vehicle
//   - it is not the excluded delivery
//   - its window overlaps the requested one (closed intervals, see kernel.TimeWindow.Overlaps)
//
// Example:
//
//	active, _ := repo.GetActiveHolding(ctx, &driverID, &vehicleID)
//	err := services.NewConflictDetector().Check(services.ConflictRequest{
//	    DriverID:  &driverID,
//	    VehicleID: &vehicleID,
//	    Window:    d.Schedule(),
//	}, active)
//	if errors.Is(err, services.ErrSchedulingConflict) {
//	    // reject the assignment
//	}
type ConflictDetector struct{}

func NewConflictDetector() ConflictDetector {
	return ConflictDetector{}
}

// Detect returns the overlapping candidates in input order.
func (ConflictDetector) Detect(req ConflictRequest, candidates []*delivery.Delivery) []Conflict {
	if req.Window == nil || (req.DriverID == nil && req.VehicleID == nil) {
		return nil
	}

	var conflicts []Conflict
	for _, c := range candidates {
		if c.Validate() != nil || !c.Status().IsActive() {
			continue
		}
		if req.ExcludeDeliveryID != nil && c.ID().IsEqual(*req.ExcludeDeliveryID) {
			continue
		}
		if !c.HoldsAnyOf(req.DriverID, req.VehicleID) {
			continue
		}
		window := c.Schedule()
		if window == nil || !window.Overlaps(*req.Window) {
			continue
		}

		conflicts = append(conflicts, Conflict{
			DeliveryID:    c.ID(),
			DriverID:      c.DriverID(),
			VehicleID:     c.VehicleID(),
			Status:        c.Status(),
			Window:        *window,
			PickupAddress: c.Pickup().Address(),
			DropAddress:   c.Drop().Address(),
			SharesDriver:  c.HoldsAnyOf(req.DriverID, nil),
			SharesVehicle: c.HoldsAnyOf(nil, req.VehicleID),
		})
	}
	return conflicts
}

// Check wraps Detect and returns a *SchedulingConflictError when anything overlaps.
func (d ConflictDetector) Check(req ConflictRequest, candidates []*delivery.Delivery) error {
	if conflicts := d.Detect(req, candidates); len(conflicts) > 0 {
		return &SchedulingConflictError{Conflicts: conflicts}
	}
	return nil
}
