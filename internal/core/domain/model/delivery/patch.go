package delivery

import (
	"time"

	"fleet/internal/core/domain/model/kernel"
)

// Patch lists the fields that may change after creation. A nil field is left as is.
// Status, driver and vehicle are intentionally absent.
type Patch struct {
	Pickup               *kernel.Place
	Drop                 *kernel.Place
	ScheduledPickup      *time.Time
	ScheduledDelivery    *time.Time
	Priority             *Priority
	PackageDetails       *string
	RequestedVehicleType *string
	RouteID              *kernel.UUID
}

func (p Patch) IsEmpty() bool {
	return p.Pickup == nil &&
		p.Drop == nil &&
		p.ScheduledPickup == nil &&
		p.ScheduledDelivery == nil &&
		p.Priority == nil &&
		p.PackageDetails == nil &&
		p.RequestedVehicleType == nil &&
		p.RouteID == nil
}

// TouchesSchedule reports whether applying the patch may move the committed window.
func (p Patch) TouchesSchedule() bool {
	return p.ScheduledPickup != nil || p.ScheduledDelivery != nil
}
