package commands

import (
	"errors"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrUpdateDeliveryStatusCommandIsNotConstructed = errors.New(
	"UpdateDeliveryStatusCommand must be created via NewUpdateDeliveryStatusCommand constructor",
)

// UpdateDeliveryStatusCommand moves a delivery along one lifecycle edge.
// Drivers may move only deliveries assigned to them; admins any.
type UpdateDeliveryStatusCommand struct {
	actor      kernel.Actor
	deliveryID kernel.UUID
	status     delivery.Status

	guard guard.ConstructorGuard
}

func NewUpdateDeliveryStatusCommand(
	actor kernel.Actor,
	deliveryID kernel.UUID,
	status delivery.Status,
) (UpdateDeliveryStatusCommand, error) {
	if err := requireRole(actor, "update delivery status", kernel.RoleDriver, kernel.RoleAdmin); err != nil {
		return UpdateDeliveryStatusCommand{}, err
	}

	if err := errors.Join(
		deliveryID.Validate(),
		status.Validate(),
	); err != nil {
		return UpdateDeliveryStatusCommand{}, err
	}

	return UpdateDeliveryStatusCommand{
		actor:      actor,
		deliveryID: deliveryID,
		status:     status,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateDeliveryStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDeliveryStatusCommandIsNotConstructed)
}

func (c UpdateDeliveryStatusCommand) Actor() kernel.Actor { return c.actor }

func (c UpdateDeliveryStatusCommand) DeliveryID() kernel.UUID { return c.deliveryID }

func (c UpdateDeliveryStatusCommand) Status() delivery.Status { return c.status }
