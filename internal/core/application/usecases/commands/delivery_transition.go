package commands

import (
	"context"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
)

// transitionDelivery loads a delivery, lets change move it, writes it back with the
// optimistic status/version guard and releases its vehicle when the new status is
// terminal. Everything commits together or not at all.
func transitionDelivery(
	ctx context.Context,
	uowFactory UoWFactory,
	deliveryID kernel.UUID,
	change func(d *delivery.Delivery) error,
) error {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveryRepo := uow.DeliveryRepository()

	d, err := deliveryRepo.Get(ctx, deliveryID)
	if err != nil {
		return err
	}

	if err = change(d); err != nil {
		return err
	}

	if err = deliveryRepo.Update(ctx, d); err != nil {
		return err
	}

	if d.ReleasesVehicle() {
		if err = NewVehicleLedger(uow.VehicleRepository()).Release(ctx, *d.VehicleID()); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
