package commands

import (
	"context"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/ports"
)

// CreateDeliveryCommandHandler persists new deliveries. When the command carries a
// driver the delivery is assigned in the same transaction: the conflict detector
// runs first, then the vehicle is marked in_use.
//
// Example:
//
//	handler := NewCreateDeliveryCommandHandler(uowFactory, clock)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    var conflict *services.SchedulingConflictError
//	    if errors.As(err, &conflict) {
//	        // report conflict.Conflicts to the caller
//	    }
//	    return err
//	}
type CreateDeliveryCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

func NewCreateDeliveryCommandHandler(uowFactory UoWFactory, clock ports.Clock) CreateDeliveryCommandHandler {
	return CreateDeliveryCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle processes the delivery creation command.
func (h CreateDeliveryCommandHandler) Handle(ctx context.Context, cmd CreateDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := h.clock.Now()
	d, err := delivery.NewDelivery(cmd.deliveryParams(), now)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveryRepo := uow.DeliveryRepository()

	if driverID := cmd.DriverID(); driverID != nil {
		if err = checkConflicts(ctx, deliveryRepo, d, driverID, cmd.VehicleID()); err != nil {
			return err
		}
		if err = d.Assign(*driverID, cmd.VehicleID(), now); err != nil {
			return err
		}
	}

	if err = deliveryRepo.Add(ctx, d); err != nil {
		return err
	}

	if vehicleID := cmd.VehicleID(); vehicleID != nil {
		if err = NewVehicleLedger(uow.VehicleRepository()).MarkInUse(ctx, *vehicleID); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
