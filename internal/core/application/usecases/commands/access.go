package commands

import (
	"fmt"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
)

func requireRole(actor kernel.Actor, action string, roles ...kernel.Role) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !actor.HasAnyRole(roles...) {
		return errs.NewAccessDeniedError(action, fmt.Sprintf("role %s is not allowed", actor.Role))
	}
	return nil
}

// requireVisible hides deliveries the actor may not touch behind the same error a
// missing delivery produces.
func requireVisible(actor kernel.Actor, d *delivery.Delivery) error {
	if d.VisibleTo(actor) {
		return nil
	}
	return errs.NewObjectNotFoundError("delivery", d.ID())
}
