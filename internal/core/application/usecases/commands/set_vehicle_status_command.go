package commands

import (
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/vehicle"
	"fleet/internal/pkg/guard"
)

var ErrSetVehicleStatusCommandIsNotConstructed = errors.New(
	"SetVehicleStatusCommand must be created via NewSetVehicleStatusCommand constructor",
)

// SetVehicleStatusCommand is the admin ledger edit. It is not reconciled with
// deliveries: forcing maintenance on a vehicle mid-delivery is allowed.
type SetVehicleStatusCommand struct {
	vehicleID kernel.UUID
	status    vehicle.Status

	guard guard.ConstructorGuard
}

func NewSetVehicleStatusCommand(
	actor kernel.Actor,
	vehicleID kernel.UUID,
	status vehicle.Status,
) (SetVehicleStatusCommand, error) {
	if err := requireRole(actor, "set vehicle status", kernel.RoleAdmin); err != nil {
		return SetVehicleStatusCommand{}, err
	}
	if err := errors.Join(vehicleID.Validate(), status.Validate()); err != nil {
		return SetVehicleStatusCommand{}, err
	}

	return SetVehicleStatusCommand{
		vehicleID: vehicleID,
		status:    status,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c SetVehicleStatusCommand) Validate() error {
	return c.guard.Validate(ErrSetVehicleStatusCommandIsNotConstructed)
}

func (c SetVehicleStatusCommand) VehicleID() kernel.UUID { return c.vehicleID }

func (c SetVehicleStatusCommand) Status() vehicle.Status { return c.status }
