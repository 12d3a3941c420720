package delivery

import (
	"fmt"
	"strings"

	"fleet/internal/pkg/errs"
)

// Status is the position of a delivery in its lifecycle.
type Status int

const (
	// Unknown catches uninitialised values; it is never persisted.
	Unknown Status = iota
	Pending
	Assigned
	OnRoute
	PickedUp
	Delivered
	Cancelled
)

var statusNames = map[Status]string{
	Pending:   "pending",
	Assigned:  "assigned",
	OnRoute:   "on_route",
	PickedUp:  "picked_up",
	Delivered: "delivered",
	Cancelled: "cancelled",
}

// transitions is the complete edge set of the lifecycle graph.
var transitions = map[Status][]Status{
	Pending:   {Assigned, Cancelled},
	Assigned:  {OnRoute, Cancelled},
	OnRoute:   {PickedUp, Cancelled},
	PickedUp:  {Delivered, Cancelled},
	Delivered: nil,
	Cancelled: nil,
}

// ParseStatus accepts the wire names ("pending", "on_route", ...).
func ParseStatus(s string) (Status, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for st, name := range statusNames {
		if name == needle {
			return st, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// AllStatuses lists the valid statuses in lifecycle order.
func AllStatuses() []Status {
	return []Status{Pending, Assigned, OnRoute, PickedUp, Delivered, Cancelled}
}

// ActiveStatuses are the statuses in which a delivery holds its driver and vehicle.
func ActiveStatuses() []Status {
	return []Status{Assigned, OnRoute, PickedUp}
}

// TrackableStatuses are the statuses in which position reports are accepted.
func TrackableStatuses() []Status {
	return []Status{OnRoute, PickedUp}
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the status by name in JSON payloads.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

func (s Status) IsActive() bool {
	return s == Assigned || s == OnRoute || s == PickedUp
}

func (s Status) IsTrackable() bool {
	return s == OnRoute || s == PickedUp
}

// AllowedTransitions returns the statuses reachable in one step.
func (s Status) AllowedTransitions() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// TransitionTo returns next when the edge s -> next exists.
func (s Status) TransitionTo(next Status) (Status, error) {
	if err := next.Validate(); err != nil {
		return Unknown, err
	}
	if !s.CanTransitionTo(next) {
		return Unknown, NewInvalidTransitionError(s, next)
	}
	return next, nil
}

// Assign returns Assigned when assignment is allowed from s: first assignment
// from pending or reassignment while still assigned.
func (s Status) Assign() (Status, error) {
	if s != Pending && s != Assigned {
		return Unknown, NewInvalidTransitionError(s, Assigned)
	}
	return Assigned, nil
}

// Cancel returns Cancelled for the statuses a customer may still cancel from.
func (s Status) Cancel() (Status, error) {
	if s != Pending && s != Assigned {
		return Unknown, NewInvalidTransitionError(s, Cancelled)
	}
	return Cancelled, nil
}
