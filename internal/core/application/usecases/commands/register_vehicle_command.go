package commands

import (
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrRegisterVehicleCommandIsNotConstructed = errors.New(
	"RegisterVehicleCommand must be created via NewRegisterVehicleCommand constructor",
)

// RegisterVehicleCommand adds a vehicle to the fleet. Admin only.
type RegisterVehicleCommand struct {
	vehicleID kernel.UUID
	number    string
	kind      string
	capacity  float64

	guard guard.ConstructorGuard
}

// NewRegisterVehicleCommand checks the caller and id; number, kind and capacity
// are validated by the vehicle aggregate.
func NewRegisterVehicleCommand(
	actor kernel.Actor,
	vehicleID kernel.UUID,
	number, kind string,
	capacity float64,
) (RegisterVehicleCommand, error) {
	if err := requireRole(actor, "register vehicle", kernel.RoleAdmin); err != nil {
		return RegisterVehicleCommand{}, err
	}
	if err := vehicleID.Validate(); err != nil {
		return RegisterVehicleCommand{}, err
	}

	return RegisterVehicleCommand{
		vehicleID: vehicleID,
		number:    number,
		kind:      kind,
		capacity:  capacity,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RegisterVehicleCommand) Validate() error {
	return c.guard.Validate(ErrRegisterVehicleCommandIsNotConstructed)
}

func (c RegisterVehicleCommand) VehicleID() kernel.UUID { return c.vehicleID }

func (c RegisterVehicleCommand) Number() string { return c.number }

func (c RegisterVehicleCommand) Kind() string { return c.kind }

func (c RegisterVehicleCommand) Capacity() float64 { return c.capacity }
