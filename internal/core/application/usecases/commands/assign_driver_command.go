package commands

import (
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrAssignDriverCommandIsNotConstructed = errors.New(
	"AssignDriverCommand must be created via NewAssignDriverCommand constructor",
)

// AssignDriverCommand sets the driver and, optionally, the vehicle of a pending or
// assigned delivery. Admin only.
type AssignDriverCommand struct {
	deliveryID kernel.UUID
	driverID   kernel.UUID
	vehicleID  *kernel.UUID

	guard guard.ConstructorGuard
}

func NewAssignDriverCommand(
	actor kernel.Actor,
	deliveryID, driverID kernel.UUID,
	vehicleID *kernel.UUID,
) (AssignDriverCommand, error) {
	if err := requireRole(actor, "assign driver", kernel.RoleAdmin); err != nil {
		return AssignDriverCommand{}, err
	}

	if err := errors.Join(
		deliveryID.Validate(),
		checkAssignment(&driverID, vehicleID),
	); err != nil {
		return AssignDriverCommand{}, err
	}

	return AssignDriverCommand{
		deliveryID: deliveryID,
		driverID:   driverID,
		vehicleID:  vehicleID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c AssignDriverCommand) Validate() error {
	return c.guard.Validate(ErrAssignDriverCommandIsNotConstructed)
}

func (c AssignDriverCommand) DeliveryID() kernel.UUID { return c.deliveryID }

func (c AssignDriverCommand) DriverID() kernel.UUID { return c.driverID }

func (c AssignDriverCommand) VehicleID() *kernel.UUID { return c.vehicleID }
