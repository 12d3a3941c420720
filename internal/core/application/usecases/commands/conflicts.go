package commands

import (
	"context"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/services"
	"fleet/internal/core/ports"
)

// checkConflicts runs the conflict detector for d's schedule against the active
// deliveries holding driverID or vehicleID. d itself is excluded so reassignment
// and rescheduling never collide with the delivery's own booking.
func checkConflicts(
	ctx context.Context,
	repo ports.DeliveryRepository,
	d *delivery.Delivery,
	driverID, vehicleID *kernel.UUID,
) error {
	window := d.Schedule()
	if window == nil || (driverID == nil && vehicleID == nil) {
		return nil
	}

	active, err := repo.GetActiveHolding(ctx, driverID, vehicleID)
	if err != nil {
		return err
	}

	self := d.ID()
	return services.NewConflictDetector().Check(services.ConflictRequest{
		DriverID:          driverID,
		VehicleID:         vehicleID,
		Window:            window,
		ExcludeDeliveryID: &self,
	}, active)
}
