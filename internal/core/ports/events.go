package ports

import (
	"context"

	"fleet/internal/core/domain/model/kernel"
)

// EventDispatcher receives domain events after the transaction that produced them committed.
// Dispatch never fails the business operation; implementations log what they cannot deliver.
type EventDispatcher interface {
	Dispatch(ctx context.Context, events []kernel.DomainEvent)
}

// Relay fans a payload out to the live subscribers of a channel.
// Publishing to a channel nobody listens to is a no-op, and Publish never blocks on a subscriber.
type Relay interface {
	Publish(channel, event string, payload any)
}

// EventPublisher forwards domain events to the message broker for other services.
type EventPublisher interface {
	Publish(ctx context.Context, events ...kernel.DomainEvent) error
}
