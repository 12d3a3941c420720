package commands

import (
	"context"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/ports"
)

// UpdateDeliveryStatusCommandHandler applies a generic status transition.
//
// Entering picked_up or delivered stamps the matching actual time once; entering
// delivered or cancelled returns an in-use vehicle to available. An illegal edge
// fails with delivery.InvalidTransitionError and nothing is written. A concurrent
// writer that got there first surfaces as errs.VersionIsInvalidError.
type UpdateDeliveryStatusCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

func NewUpdateDeliveryStatusCommandHandler(uowFactory UoWFactory, clock ports.Clock) UpdateDeliveryStatusCommandHandler {
	return UpdateDeliveryStatusCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h UpdateDeliveryStatusCommandHandler) Handle(ctx context.Context, cmd UpdateDeliveryStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return transitionDelivery(ctx, h.uowFactory, cmd.DeliveryID(), func(d *delivery.Delivery) error {
		if err := requireVisible(cmd.Actor(), d); err != nil {
			return err
		}
		return d.TransitionTo(cmd.Status(), h.clock.Now())
	})
}
