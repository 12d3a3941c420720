package delivery

import (
	"time"

	"fleet/internal/core/domain/model/kernel"
)

const (
	EventCreated        = "delivery-created"
	EventDriverAssigned = "driver-assigned"
	EventStatusChanged  = "status-changed"
)

// CreatedEvent is recorded once, when a delivery is first constructed.
type CreatedEvent struct {
	DeliveryID kernel.UUID `json:"delivery_id"`
	CustomerID kernel.UUID `json:"customer_id"`
	Priority   Priority    `json:"priority"`
	At         time.Time   `json:"at"`
}

func (e CreatedEvent) EventName() string        { return EventCreated }
func (e CreatedEvent) AggregateID() kernel.UUID { return e.DeliveryID }
func (e CreatedEvent) OccurredAt() time.Time    { return e.At }

// DriverAssignedEvent is recorded on first assignment and on every reassignment.
type DriverAssignedEvent struct {
	DeliveryID kernel.UUID  `json:"delivery_id"`
	CustomerID kernel.UUID  `json:"customer_id"`
	DriverID   kernel.UUID  `json:"driver_id"`
	VehicleID  *kernel.UUID `json:"vehicle_id,omitempty"`
	At         time.Time    `json:"at"`
}

func (e DriverAssignedEvent) EventName() string        { return EventDriverAssigned }
func (e DriverAssignedEvent) AggregateID() kernel.UUID { return e.DeliveryID }
func (e DriverAssignedEvent) OccurredAt() time.Time    { return e.At }

// StatusChangedEvent is recorded for every status change, including the one
// implied by assignment.
type StatusChangedEvent struct {
	DeliveryID kernel.UUID  `json:"delivery_id"`
	CustomerID kernel.UUID  `json:"customer_id"`
	DriverID   *kernel.UUID `json:"driver_id,omitempty"`
	VehicleID  *kernel.UUID `json:"vehicle_id,omitempty"`
	From       Status       `json:"from"`
	To         Status       `json:"to"`
	Reason     string       `json:"reason,omitempty"`
	At         time.Time    `json:"at"`
}

func (e StatusChangedEvent) EventName() string        { return EventStatusChanged }
func (e StatusChangedEvent) AggregateID() kernel.UUID { return e.DeliveryID }
func (e StatusChangedEvent) OccurredAt() time.Time    { return e.At }
