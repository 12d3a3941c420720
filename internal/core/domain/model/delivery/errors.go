package delivery

import (
	"errors"
	"fmt"

	"fleet/internal/core/domain/model/kernel"
)

var (
	ErrInvalidTransition        = errors.New("invalid status transition")
	ErrInvalidTrackingState     = errors.New("delivery is not in transit")
	ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery or RestoreDelivery")
)

// InvalidTransitionError names the status the delivery is in and the one that was requested.
type InvalidTransitionError struct {
	Current   Status
	Requested Status
}

func NewInvalidTransitionError(current, requested Status) *InvalidTransitionError {
	return &InvalidTransitionError{Current: current, Requested: requested}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.Current, e.Requested)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// InvalidTrackingStateError rejects a position report for a delivery that is not on_route or picked_up.
type InvalidTrackingStateError struct {
	DeliveryID kernel.UUID
	Status     Status
}

func NewInvalidTrackingStateError(id kernel.UUID, status Status) *InvalidTrackingStateError {
	return &InvalidTrackingStateError{DeliveryID: id, Status: status}
}

func (e *InvalidTrackingStateError) Error() string {
	return fmt.Sprintf("%s: delivery %s is %s", ErrInvalidTrackingState, e.DeliveryID, e.Status)
}

func (e *InvalidTrackingStateError) Unwrap() error {
	return ErrInvalidTrackingState
}
