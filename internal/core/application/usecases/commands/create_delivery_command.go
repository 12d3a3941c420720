package commands

import (
	"errors"
	"time"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrCreateDeliveryCommandIsNotConstructed = errors.New(
	"CreateDeliveryCommand must be created via NewCreateDeliveryCommand constructor",
)

// CreateDeliveryParams is the caller-supplied input of CreateDeliveryCommand.
// CustomerID is ignored for customers, who always create deliveries for themselves.
// DriverID and VehicleID are an admin-only up-front assignment.
type CreateDeliveryParams struct {
	DeliveryID           kernel.UUID
	CustomerID           kernel.UUID
	RouteID              *kernel.UUID
	Pickup               kernel.Place
	Drop                 kernel.Place
	ScheduledPickup      *time.Time
	ScheduledDelivery    *time.Time
	Priority             delivery.Priority
	PackageDetails       string
	RequestedVehicleType string
	DriverID             *kernel.UUID
	VehicleID            *kernel.UUID
}

// CreateDeliveryCommand places a new delivery, optionally assigning it right away.
//
// Example:
//
//	cmd, err := NewCreateDeliveryCommand(actor, CreateDeliveryParams{
//	    DeliveryID: kernel.NewUUID(),
//	    Pickup:     pickup,
//	    Drop:       drop,
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid delivery: %w", err)
//	}
//	err = handler.Handle(ctx, cmd)
type CreateDeliveryCommand struct {
	params CreateDeliveryParams

	guard guard.ConstructorGuard
}

// NewCreateDeliveryCommand validates the request and the actor's right to make it.
func NewCreateDeliveryCommand(actor kernel.Actor, p CreateDeliveryParams) (CreateDeliveryCommand, error) {
	if err := requireRole(actor, "create delivery", kernel.RoleCustomer, kernel.RoleAdmin); err != nil {
		return CreateDeliveryCommand{}, err
	}

	if actor.IsCustomer() {
		p.CustomerID = actor.ID
		if p.DriverID != nil || p.VehicleID != nil {
			return CreateDeliveryCommand{}, errs.NewAccessDeniedError(
				"assign driver", "only admins assign drivers and vehicles",
			)
		}
	}
	if p.Priority == delivery.PriorityUnknown {
		p.Priority = delivery.DefaultPriority
	}

	if err := errors.Join(
		p.DeliveryID.Validate(),
		p.CustomerID.Validate(),
		p.Pickup.Validate(),
		p.Drop.Validate(),
		p.Priority.Validate(),
		checkAssignment(p.DriverID, p.VehicleID),
	); err != nil {
		return CreateDeliveryCommand{}, err
	}

	return CreateDeliveryCommand{
		params: p,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCreateDeliveryCommandIsNotConstructed)
}

func (c CreateDeliveryCommand) DeliveryID() kernel.UUID { return c.params.DeliveryID }

func (c CreateDeliveryCommand) DriverID() *kernel.UUID { return c.params.DriverID }

func (c CreateDeliveryCommand) VehicleID() *kernel.UUID { return c.params.VehicleID }

func (c CreateDeliveryCommand) deliveryParams() delivery.NewDeliveryParams {
	return delivery.NewDeliveryParams{
		ID:                   c.params.DeliveryID,
		CustomerID:           c.params.CustomerID,
		RouteID:              c.params.RouteID,
		Pickup:               c.params.Pickup,
		Drop:                 c.params.Drop,
		ScheduledPickup:      c.params.ScheduledPickup,
		ScheduledDelivery:    c.params.ScheduledDelivery,
		Priority:             c.params.Priority,
		PackageDetails:       c.params.PackageDetails,
		RequestedVehicleType: c.params.RequestedVehicleType,
	}
}

// checkAssignment rejects a vehicle without a driver: it would leave a pending
// delivery holding a vehicle.
func checkAssignment(driverID, vehicleID *kernel.UUID) error {
	if vehicleID != nil && driverID == nil {
		return errs.NewValueIsRequiredErrorWithCause("driver_id", errors.New("a vehicle is assigned together with a driver"))
	}

	var err error
	if driverID != nil {
		err = errors.Join(err, driverID.Validate())
	}
	if vehicleID != nil {
		err = errors.Join(err, vehicleID.Validate())
	}
	return err
}
