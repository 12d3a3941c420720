package delivery

import (
	"errors"
	"fmt"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
)

// NewDeliveryParams carries what a customer or admin supplies when placing a delivery.
// Driver and vehicle are not part of it: an up-front assignment is applied with Assign
// right after construction so it goes through the same checks as a later one.
type NewDeliveryParams struct {
	ID                   kernel.UUID
	CustomerID           kernel.UUID
	RouteID              *kernel.UUID
	Pickup               kernel.Place
	Drop                 kernel.Place
	ScheduledPickup      *time.Time
	ScheduledDelivery    *time.Time
	Priority             Priority
	PackageDetails       string
	RequestedVehicleType string
}

// RestoreParams is the full persisted state of a delivery.
type RestoreParams struct {
	NewDeliveryParams
	DriverID       *kernel.UUID
	VehicleID      *kernel.UUID
	Status         Status
	ActualPickup   *time.Time
	ActualDelivery *time.Time
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Delivery is the aggregate root for one shipment from pickup to drop.
//
// Invariants:
//   - customer, pickup and drop are always set
//   - a delivery with a driver is never pending
//   - when both scheduled times are set, pickup is not after delivery
//   - status changes only along the lifecycle graph (see Status)
type Delivery struct {
	id         kernel.UUID
	customerID kernel.UUID
	driverID   *kernel.UUID
	vehicleID  *kernel.UUID
	routeID    *kernel.UUID

	pickup kernel.Place
	drop   kernel.Place

	scheduledPickup   *time.Time
	scheduledDelivery *time.Time
	actualPickup      *time.Time
	actualDelivery    *time.Time

	priority             Priority
	packageDetails       string
	requestedVehicleType string

	status Status

	// version and persistedStatus describe the row this aggregate was read from;
	// repositories use them as the optimistic concurrency predicate.
	version         int
	persistedStatus Status

	createdAt time.Time
	updatedAt time.Time

	events        []kernel.DomainEvent
	isConstructed bool
}

// NewDelivery creates a pending delivery and records a CreatedEvent.
//
// Example:
//
//	pickup, _ := kernel.NewPlaceFromCoordinates("Dock 4", 52.52, 13.40)
//	drop, _ := kernel.NewPlaceFromCoordinates("Alexanderplatz 1", 52.52, 13.41)
//	d, err := delivery.NewDelivery(delivery.NewDeliveryParams{
//	    ID:         kernel.NewUUID(),
//	    CustomerID: customerID,
//	    Pickup:     pickup,
//	    Drop:       drop,
//	}, time.Now())
func NewDelivery(p NewDeliveryParams, now time.Time) (*Delivery, error) {
	if p.Priority == PriorityUnknown {
		p.Priority = DefaultPriority
	}

	d := &Delivery{
		status:        Pending,
		createdAt:     now.UTC(),
		updatedAt:     now.UTC(),
		isConstructed: true,
	}
	if err := d.apply(p); err != nil {
		return nil, err
	}

	d.record(CreatedEvent{
		DeliveryID: d.id,
		CustomerID: d.customerID,
		Priority:   d.priority,
		At:         d.createdAt,
	})
	return d, nil
}

// RestoreDelivery rebuilds a delivery from persistence without recording events.
func RestoreDelivery(p RestoreParams) (*Delivery, error) {
	d := &Delivery{
		driverID:        p.DriverID,
		vehicleID:       p.VehicleID,
		actualPickup:    utcPtr(p.ActualPickup),
		actualDelivery:  utcPtr(p.ActualDelivery),
		status:          p.Status,
		persistedStatus: p.Status,
		version:         p.Version,
		createdAt:       p.CreatedAt.UTC(),
		updatedAt:       p.UpdatedAt.UTC(),
		isConstructed:   true,
	}

	if err := errors.Join(
		d.apply(p.NewDeliveryParams),
		p.Status.Validate(),
		checkOptionalID("driver_id", p.DriverID),
		checkOptionalID("vehicle_id", p.VehicleID),
	); err != nil {
		return nil, err
	}
	if p.DriverID != nil && p.Status == Pending {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("delivery %s has a driver but is pending", d.id),
		)
	}
	return d, nil
}

func (d *Delivery) apply(p NewDeliveryParams) error {
	return errors.Join(
		d.setID(p.ID),
		d.setCustomer(p.CustomerID),
		checkOptionalID("route_id", p.RouteID),
		d.setPickup(p.Pickup),
		d.setDrop(p.Drop),
		d.setSchedule(p.ScheduledPickup, p.ScheduledDelivery),
		d.setPriority(p.Priority),
		d.setDetails(p.PackageDetails, p.RequestedVehicleType),
		d.setRoute(p.RouteID),
	)
}

// Validate reports whether the aggregate was built by NewDelivery or RestoreDelivery.
func (d *Delivery) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDeliveryIsNotConstructed
	}
	return nil
}

func (d *Delivery) ID() kernel.UUID               { return d.id }
func (d *Delivery) CustomerID() kernel.UUID       { return d.customerID }
func (d *Delivery) DriverID() *kernel.UUID        { return d.driverID }
func (d *Delivery) VehicleID() *kernel.UUID       { return d.vehicleID }
func (d *Delivery) RouteID() *kernel.UUID         { return d.routeID }
func (d *Delivery) Pickup() kernel.Place          { return d.pickup }
func (d *Delivery) Drop() kernel.Place            { return d.drop }
func (d *Delivery) ScheduledPickup() *time.Time   { return d.scheduledPickup }
func (d *Delivery) ScheduledDelivery() *time.Time { return d.scheduledDelivery }
func (d *Delivery) ActualPickup() *time.Time      { return d.actualPickup }
func (d *Delivery) ActualDelivery() *time.Time    { return d.actualDelivery }
func (d *Delivery) Priority() Priority            { return d.priority }
func (d *Delivery) PackageDetails() string        { return d.packageDetails }
func (d *Delivery) RequestedVehicleType() string  { return d.requestedVehicleType }
func (d *Delivery) Status() Status                { return d.status }
func (d *Delivery) Version() int                  { return d.version }
func (d *Delivery) PersistedStatus() Status       { return d.persistedStatus }
func (d *Delivery) CreatedAt() time.Time          { return d.createdAt }
func (d *Delivery) UpdatedAt() time.Time          { return d.updatedAt }

// Schedule returns the committed window, or nil when either end is missing.
// Deliveries without a schedule never take part in conflict detection.
func (d *Delivery) Schedule() *kernel.TimeWindow {
	w, err := kernel.NewOptionalTimeWindow(d.scheduledPickup, d.scheduledDelivery)
	if err != nil {
		return nil
	}
	return w
}

func (d *Delivery) IsEqual(other *Delivery) bool {
	return other != nil && d.id.IsEqual(other.id)
}

func (d *Delivery) IsOwnedBy(customerID kernel.UUID) bool {
	return d.customerID.IsEqual(customerID)
}

func (d *Delivery) IsAssignedTo(driverID kernel.UUID) bool {
	return d.driverID != nil && d.driverID.IsEqual(driverID)
}

// VisibleTo applies the read rule: admins see everything, customers their own
// deliveries, drivers the ones assigned to them.
func (d *Delivery) VisibleTo(actor kernel.Actor) bool {
	switch actor.Role {
	case kernel.RoleAdmin:
		return true
	case kernel.RoleCustomer:
		return d.IsOwnedBy(actor.ID)
	case kernel.RoleDriver:
		return d.IsAssignedTo(actor.ID)
	default:
		return false
	}
}

// HoldsAnyOf reports whether the delivery references the given driver or vehicle.
func (d *Delivery) HoldsAnyOf(driverID, vehicleID *kernel.UUID) bool {
	if driverID != nil && d.driverID != nil && d.driverID.IsEqual(*driverID) {
		return true
	}
	return vehicleID != nil && d.vehicleID != nil && d.vehicleID.IsEqual(*vehicleID)
}

// Assign sets driver and vehicle and moves the delivery to assigned.
// Allowed from pending and, for reassignment, from assigned.
func (d *Delivery) Assign(driverID kernel.UUID, vehicleID *kernel.UUID, now time.Time) error {
	if err := errors.Join(
		driverID.Validate(),
		checkOptionalID("vehicle_id", vehicleID),
	); err != nil {
		return err
	}

	next, err := d.status.Assign()
	if err != nil {
		return err
	}

	previous := d.status
	d.driverID = &driverID
	d.vehicleID = vehicleID
	d.status = next
	d.touch(now)

	d.record(DriverAssignedEvent{
		DeliveryID: d.id,
		CustomerID: d.customerID,
		DriverID:   driverID,
		VehicleID:  vehicleID,
		At:         d.updatedAt,
	})
	if previous != next {
		d.recordStatusChange(previous, "")
	}
	return nil
}

// TransitionTo moves the delivery along one edge of the lifecycle graph and
// applies the timestamp side effects of the target status.
func (d *Delivery) TransitionTo(next Status, now time.Time) error {
	return d.transition(next, now, "")
}

// Cancel is the customer-facing cancellation: only pending and assigned deliveries qualify.
func (d *Delivery) Cancel(reason string, now time.Time) error {
	if _, err := d.status.Cancel(); err != nil {
		return err
	}
	return d.transition(Cancelled, now, reason)
}

// Reject is the administrative cancellation, allowed from any non-terminal status.
func (d *Delivery) Reject(reason string, now time.Time) error {
	return d.transition(Cancelled, now, reason)
}

func (d *Delivery) transition(next Status, now time.Time, reason string) error {
	target, err := d.status.TransitionTo(next)
	if err != nil {
		return err
	}
	if target == Assigned && d.driverID == nil {
		return errs.NewValueIsRequiredErrorWithCause(
			"driver_id",
			errors.New("a delivery cannot become assigned without a driver"),
		)
	}

	previous := d.status
	d.status = target
	d.touch(now)

	switch target {
	case PickedUp:
		if d.actualPickup == nil {
			stamp := d.updatedAt
			d.actualPickup = &stamp
		}
	case Delivered:
		if d.actualDelivery == nil {
			stamp := d.updatedAt
			d.actualDelivery = &stamp
		}
	}

	d.recordStatusChange(previous, reason)
	return nil
}

// ReleasesVehicle reports whether the current status returns the assigned vehicle
// to the available pool.
func (d *Delivery) ReleasesVehicle() bool {
	return d.status.IsTerminal() && d.vehicleID != nil
}

// EnsureTrackable rejects position reports unless the delivery is on_route or picked_up.
func (d *Delivery) EnsureTrackable() error {
	if !d.status.IsTrackable() {
		return NewInvalidTrackingStateError(d.id, d.status)
	}
	return nil
}

// EnsureDeletable allows hard deletion of pending deliveries only.
func (d *Delivery) EnsureDeletable() error {
	if d.status != Pending {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("only pending deliveries can be deleted, delivery %s is %s", d.id, d.status),
		)
	}
	return nil
}

// ApplyPatch changes the editable details of a pending or assigned delivery.
// It reports whether the schedule changed so the caller can re-run conflict detection.
func (d *Delivery) ApplyPatch(p Patch, now time.Time) (bool, error) {
	if d.status != Pending && d.status != Assigned {
		return false, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("delivery %s is %s and can no longer be edited", d.id, d.status),
		)
	}
	if p.IsEmpty() {
		return false, errs.NewValueIsRequiredError("patch")
	}

	next := *d
	pickupTime, deliveryTime := d.scheduledPickup, d.scheduledDelivery
	if p.ScheduledPickup != nil {
		pickupTime = p.ScheduledPickup
	}
	if p.ScheduledDelivery != nil {
		deliveryTime = p.ScheduledDelivery
	}

	var err error
	if p.Pickup != nil {
		err = errors.Join(err, next.setPickup(*p.Pickup))
	}
	if p.Drop != nil {
		err = errors.Join(err, next.setDrop(*p.Drop))
	}
	if p.Priority != nil {
		err = errors.Join(err, next.setPriority(*p.Priority))
	}
	if p.RouteID != nil {
		err = errors.Join(err, checkOptionalID("route_id", p.RouteID), next.setRoute(p.RouteID))
	}
	details, vehicleType := d.packageDetails, d.requestedVehicleType
	if p.PackageDetails != nil {
		details = *p.PackageDetails
	}
	if p.RequestedVehicleType != nil {
		vehicleType = *p.RequestedVehicleType
	}
	err = errors.Join(err,
		next.setDetails(details, vehicleType),
		next.setSchedule(pickupTime, deliveryTime),
	)
	if err != nil {
		return false, err
	}

	scheduleChanged := !timeEqual(d.scheduledPickup, next.scheduledPickup) ||
		!timeEqual(d.scheduledDelivery, next.scheduledDelivery)

	next.touch(now)
	*d = next
	return scheduleChanged, nil
}

// Persisted is called by repositories after a successful write so the next write
// uses the new row version as its concurrency predicate.
func (d *Delivery) Persisted(version int) {
	d.version = version
	d.persistedStatus = d.status
}

func (d *Delivery) DomainEvents() []kernel.DomainEvent {
	out := make([]kernel.DomainEvent, len(d.events))
	copy(out, d.events)
	return out
}

func (d *Delivery) ClearDomainEvents() {
	d.events = nil
}

func (d *Delivery) record(e kernel.DomainEvent) {
	d.events = append(d.events, e)
}

func (d *Delivery) recordStatusChange(from Status, reason string) {
	d.record(StatusChangedEvent{
		DeliveryID: d.id,
		CustomerID: d.customerID,
		DriverID:   d.driverID,
		VehicleID:  d.vehicleID,
		From:       from,
		To:         d.status,
		Reason:     reason,
		At:         d.updatedAt,
	})
}

func (d *Delivery) touch(now time.Time) {
	d.updatedAt = now.UTC()
}

func (d *Delivery) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Delivery) setCustomer(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customer_id", err)
	}
	d.customerID = id
	return nil
}

func (d *Delivery) setRoute(id *kernel.UUID) error {
	d.routeID = id
	return nil
}

func (d *Delivery) setPickup(p kernel.Place) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("pickup: %w", err)
	}
	d.pickup = p
	return nil
}

func (d *Delivery) setDrop(p kernel.Place) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	d.drop = p
	return nil
}

func (d *Delivery) setSchedule(pickup, delivery *time.Time) error {
	if pickup != nil && delivery != nil && delivery.Before(*pickup) {
		return errs.NewValueIsInvalidErrorWithCause(
			"scheduled_delivery_time",
			fmt.Errorf("%s is before scheduled pickup %s",
				delivery.UTC().Format(time.RFC3339), pickup.UTC().Format(time.RFC3339)),
		)
	}
	d.scheduledPickup = utcPtr(pickup)
	d.scheduledDelivery = utcPtr(delivery)
	return nil
}

func (d *Delivery) setPriority(p Priority) error {
	if err := p.Validate(); err != nil {
		return err
	}
	d.priority = p
	return nil
}

func (d *Delivery) setDetails(packageDetails, requestedVehicleType string) error {
	d.packageDetails = packageDetails
	d.requestedVehicleType = requestedVehicleType
	return nil
}

func checkOptionalID(name string, id *kernel.UUID) error {
	if id == nil {
		return nil
	}
	if err := id.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
