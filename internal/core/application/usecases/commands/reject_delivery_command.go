package commands

import (
	"errors"
	"strings"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrRejectDeliveryCommandIsNotConstructed = errors.New(
	"RejectDeliveryCommand must be created via NewRejectDeliveryCommand constructor",
)

// RejectDeliveryCommand is the admin force-cancel, valid from any non-terminal status.
type RejectDeliveryCommand struct {
	deliveryID kernel.UUID
	reason     string

	guard guard.ConstructorGuard
}

func NewRejectDeliveryCommand(actor kernel.Actor, deliveryID kernel.UUID, reason string) (RejectDeliveryCommand, error) {
	if err := requireRole(actor, "reject delivery", kernel.RoleAdmin); err != nil {
		return RejectDeliveryCommand{}, err
	}
	if err := deliveryID.Validate(); err != nil {
		return RejectDeliveryCommand{}, err
	}

	return RejectDeliveryCommand{
		deliveryID: deliveryID,
		reason:     strings.TrimSpace(reason),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c RejectDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrRejectDeliveryCommandIsNotConstructed)
}

func (c RejectDeliveryCommand) DeliveryID() kernel.UUID { return c.deliveryID }

func (c RejectDeliveryCommand) Reason() string { return c.reason }
