package commands

import (
	"errors"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrUpdateDeliveryDetailsCommandIsNotConstructed = errors.New(
	"UpdateDeliveryDetailsCommand must be created via NewUpdateDeliveryDetailsCommand constructor",
)

// UpdateDeliveryDetailsCommand edits the mutable fields of a pending or assigned
// delivery. Status, driver and vehicle cannot be reached through it.
type UpdateDeliveryDetailsCommand struct {
	actor      kernel.Actor
	deliveryID kernel.UUID
	patch      delivery.Patch

	guard guard.ConstructorGuard
}

func NewUpdateDeliveryDetailsCommand(
	actor kernel.Actor,
	deliveryID kernel.UUID,
	patch delivery.Patch,
) (UpdateDeliveryDetailsCommand, error) {
	if err := requireRole(actor, "update delivery", kernel.RoleCustomer, kernel.RoleAdmin); err != nil {
		return UpdateDeliveryDetailsCommand{}, err
	}

	var patchErr error
	if patch.IsEmpty() {
		patchErr = errs.NewValueIsRequiredErrorWithCause("patch", errors.New("nothing to update"))
	}
	if err := errors.Join(deliveryID.Validate(), patchErr); err != nil {
		return UpdateDeliveryDetailsCommand{}, err
	}

	return UpdateDeliveryDetailsCommand{
		actor:      actor,
		deliveryID: deliveryID,
		patch:      patch,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateDeliveryDetailsCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDeliveryDetailsCommandIsNotConstructed)
}

func (c UpdateDeliveryDetailsCommand) Actor() kernel.Actor { return c.actor }

func (c UpdateDeliveryDetailsCommand) DeliveryID() kernel.UUID { return c.deliveryID }

func (c UpdateDeliveryDetailsCommand) Patch() delivery.Patch { return c.patch }
