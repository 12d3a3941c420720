package commands

import (
	"context"

	"fleet/internal/core/domain/model/vehicle"
)

type SetVehicleStatusCommandHandler struct {
	uowFactory VehicleUoWFactory
}

func NewSetVehicleStatusCommandHandler(uowFactory VehicleUoWFactory) SetVehicleStatusCommandHandler {
	return SetVehicleStatusCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h SetVehicleStatusCommandHandler) Handle(ctx context.Context, cmd SetVehicleStatusCommand) error {
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

	ledger := NewVehicleLedger(uow.VehicleRepository())

	var err error
	switch cmd.Status() {
	case vehicle.StatusAvailable:
		err = ledger.MarkAvailable(ctx, cmd.VehicleID())
	case vehicle.StatusInUse:
		err = ledger.MarkInUse(ctx, cmd.VehicleID())
	case vehicle.StatusMaintenance:
		err = ledger.MarkMaintenance(ctx, cmd.VehicleID())
	default:
		err = cmd.Status().Validate()
	}
	if err != nil {
		return err
	}

	return uow.Commit(ctx)
}
