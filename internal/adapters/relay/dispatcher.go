package relay

import (
	"context"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/logger"
)

var _ ports.EventDispatcher = (*Dispatcher)(nil)

// Dispatcher routes committed domain events to the relay and, when configured,
// to the message broker.
type Dispatcher struct {
	relay     ports.Relay
	publisher ports.EventPublisher
	log       logger.Logger
}

// NewDispatcher builds a dispatcher. publisher may be nil when no broker is configured.
func NewDispatcher(relay ports.Relay, publisher ports.EventPublisher, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		relay:     relay,
		publisher: publisher,
		log:       log.With(logger.String("component", "event_dispatcher")),
	}
}

// Dispatch publishes every event on its delivery channel and on ChannelAll.
func (d *Dispatcher) Dispatch(ctx context.Context, events []kernel.DomainEvent) {
	if len(events) == 0 {
		return
	}

	for _, event := range events {
		payload := Payload(event)
		d.relay.Publish(DeliveryChannel(event.AggregateID()), event.EventName(), payload)
		d.relay.Publish(ChannelAll, event.EventName(), payload)
	}

	if d.publisher == nil {
		return
	}
	if err := d.publisher.Publish(ctx, events...); err != nil {
		d.log.Warn("domain events not published",
			logger.Int("count", len(events)),
			logger.Error(err),
		)
	}
}

// Payload returns the data subscribers receive for event.
// Position events carry the bare sample.
func Payload(event kernel.DomainEvent) any {
	if e, ok := event.(tracking.PositionRecordedEvent); ok {
		return e.Sample
	}
	return event
}
