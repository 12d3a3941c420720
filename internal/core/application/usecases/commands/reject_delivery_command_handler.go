package commands

import (
	"context"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/ports"
)

type RejectDeliveryCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

func NewRejectDeliveryCommandHandler(uowFactory UoWFactory, clock ports.Clock) RejectDeliveryCommandHandler {
	return RejectDeliveryCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h RejectDeliveryCommandHandler) Handle(ctx context.Context, cmd RejectDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return transitionDelivery(ctx, h.uowFactory, cmd.DeliveryID(), func(d *delivery.Delivery) error {
		return d.Reject(cmd.Reason(), h.clock.Now())
	})
}
