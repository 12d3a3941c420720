package commands

import (
	"context"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/ports"
)

// UpdateDeliveryDetailsCommandHandler applies a typed patch.
// Moving the schedule of an assigned delivery re-runs the conflict detector for its
// current driver and vehicle, excluding the delivery itself.
type UpdateDeliveryDetailsCommandHandler struct {
	uowFactory DeliveryUoWFactory
	clock      ports.Clock
}

func NewUpdateDeliveryDetailsCommandHandler(
	uowFactory DeliveryUoWFactory,
	clock ports.Clock,
) UpdateDeliveryDetailsCommandHandler {
	return UpdateDeliveryDetailsCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h UpdateDeliveryDetailsCommandHandler) Handle(ctx context.Context, cmd UpdateDeliveryDetailsCommand) error {
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

	if err = requireVisible(cmd.Actor(), d); err != nil {
		return err
	}

	scheduleChanged, err := d.ApplyPatch(cmd.Patch(), h.clock.Now())
	if err != nil {
		return err
	}

	if scheduleChanged && d.Status() == delivery.Assigned {
		if err = checkConflicts(ctx, deliveryRepo, d, d.DriverID(), d.VehicleID()); err != nil {
			return err
		}
	}

	if err = deliveryRepo.Update(ctx, d); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
