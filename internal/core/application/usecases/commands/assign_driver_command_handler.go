package commands

import (
	"context"

	"fleet/internal/core/ports"
)

// AssignDriverCommandHandler assigns a driver and vehicle to a delivery.
//
// The conflict check and the write are not serialized against a concurrent
// assignment of the same driver or vehicle; two simultaneous requests may both
// pass the check. The delivery row itself is version-guarded, so concurrent
// assignments of the same delivery still resolve to one winner.
type AssignDriverCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

func NewAssignDriverCommandHandler(uowFactory UoWFactory, clock ports.Clock) AssignDriverCommandHandler {
	return AssignDriverCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle loads and assigns the delivery, rejects overlapping bookings with a
// services.SchedulingConflictError and marks the vehicle in_use.
// A previously assigned vehicle is not released by reassignment.
// Driver ids come from the identity provider and are not looked up.
func (h AssignDriverCommandHandler) Handle(ctx context.Context, cmd AssignDriverCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveryRepo := uow.DeliveryRepository()

	d, err := deliveryRepo.Get(ctx, cmd.DeliveryID())
	if err != nil {
		return err
	}

	driverID := cmd.DriverID()
	if err = d.Assign(driverID, cmd.VehicleID(), h.clock.Now()); err != nil {
		return err
	}

	if err = checkConflicts(ctx, deliveryRepo, d, &driverID, cmd.VehicleID()); err != nil {
		return err
	}

	if err = deliveryRepo.Update(ctx, d); err != nil {
		return err
	}

	if vehicleID := cmd.VehicleID(); vehicleID != nil {
		if err = NewVehicleLedger(uow.VehicleRepository()).MarkInUse(ctx, *vehicleID); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
