package commands

import (
	"context"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/ports"
)

// CancelDeliveryCommandHandler cancels a delivery that has not started moving.
// Customers can only reach their own deliveries.
type CancelDeliveryCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

func NewCancelDeliveryCommandHandler(uowFactory UoWFactory, clock ports.Clock) CancelDeliveryCommandHandler {
	return CancelDeliveryCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h CancelDeliveryCommandHandler) Handle(ctx context.Context, cmd CancelDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return transitionDelivery(ctx, h.uowFactory, cmd.DeliveryID(), func(d *delivery.Delivery) error {
		if err := requireVisible(cmd.Actor(), d); err != nil {
			return err
		}
		return d.Cancel(cmd.Reason(), h.clock.Now())
	})
}
