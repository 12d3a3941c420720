package commands

import (
	"errors"
	"strings"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrCancelDeliveryCommandIsNotConstructed = errors.New(
	"CancelDeliveryCommand must be created via NewCancelDeliveryCommand constructor",
)

// CancelDeliveryCommand cancels a pending or assigned delivery on behalf of its
// customer or an admin.
type CancelDeliveryCommand struct {
	actor      kernel.Actor
	deliveryID kernel.UUID
	reason     string

	guard guard.ConstructorGuard
}

func NewCancelDeliveryCommand(actor kernel.Actor, deliveryID kernel.UUID, reason string) (CancelDeliveryCommand, error) {
	if err := requireRole(actor, "cancel delivery", kernel.RoleCustomer, kernel.RoleAdmin); err != nil {
		return CancelDeliveryCommand{}, err
	}
	if err := deliveryID.Validate(); err != nil {
		return CancelDeliveryCommand{}, err
	}

	return CancelDeliveryCommand{
		actor:      actor,
		deliveryID: deliveryID,
		reason:     strings.TrimSpace(reason),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c CancelDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCancelDeliveryCommandIsNotConstructed)
}

func (c CancelDeliveryCommand) Actor() kernel.Actor { return c.actor }

func (c CancelDeliveryCommand) DeliveryID() kernel.UUID { return c.deliveryID }

func (c CancelDeliveryCommand) Reason() string { return c.reason }
