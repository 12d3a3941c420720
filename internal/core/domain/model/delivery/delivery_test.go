package delivery_test

import (
	"testing"
	"time"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func mustPlace(t *testing.T, address string, lat, lng float64) kernel.Place {
	t.Helper()
	p, err := kernel.NewPlaceFromCoordinates(address, lat, lng)
	require.NoError(t, err)
	return p
}

func newPending(t *testing.T) *delivery.Delivery {
	t.Helper()
	d, err := delivery.NewDelivery(delivery.NewDeliveryParams{
		ID:                kernel.NewUUID(),
		CustomerID:        kernel.NewUUID(),
		Pickup:            mustPlace(t, "Warehouse 4", 52.52, 13.40),
		Drop:              mustPlace(t, "Alexanderplatz 1", 52.521, 13.413),
		ScheduledPickup:   ptr(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)),
		ScheduledDelivery: ptr(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)),
		PackageDetails:    "2 pallets",
	}, t0)
	require.NoError(t, err)
	return d
}

func newInStatus(t *testing.T, status delivery.Status) *delivery.Delivery {
	t.Helper()
	d := newPending(t)
	if status == delivery.Pending {
		return d
	}
	if status == delivery.Cancelled {
		require.NoError(t, d.Cancel("", t0))
		return d
	}

	vehicleID := kernel.NewUUID()
	require.NoError(t, d.Assign(kernel.NewUUID(), &vehicleID, t0))
	path := []delivery.Status{delivery.OnRoute, delivery.PickedUp, delivery.Delivered}
	for _, next := range path {
		if d.Status() == status {
			break
		}
		require.NoError(t, d.TransitionTo(next, t0))
	}
	require.Equal(t, status, d.Status())
	d.ClearDomainEvents()
	return d
}

func TestNewDelivery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		d := newPending(t)

		require.NoError(t, d.Validate())
		assert.Equal(t, delivery.Pending, d.Status())
		assert.Equal(t, delivery.PriorityMedium, d.Priority())
		assert.Nil(t, d.DriverID())
		assert.Nil(t, d.VehicleID())
		assert.Equal(t, "2 pallets", d.PackageDetails())
		require.NotNil(t, d.Schedule())
		assert.Equal(t, 2*time.Hour, d.Schedule().Duration())

		events := d.DomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, delivery.EventCreated, events[0].EventName())
		assert.True(t, d.ID().IsEqual(events[0].AggregateID()))
	})

	t.Run("missing parties and places are all reported", func(t *testing.T) {
		_, err := delivery.NewDelivery(delivery.NewDeliveryParams{}, t0)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "customer_id")
		assert.Contains(t, err.Error(), "pickup")
		assert.Contains(t, err.Error(), "drop")
	})

	t.Run("delivery scheduled before pickup", func(t *testing.T) {
		_, err := delivery.NewDelivery(delivery.NewDeliveryParams{
			ID:                kernel.NewUUID(),
			CustomerID:        kernel.NewUUID(),
			Pickup:            mustPlace(t, "A", 1, 1),
			Drop:              mustPlace(t, "B", 2, 2),
			ScheduledPickup:   ptr(t0.Add(2 * time.Hour)),
			ScheduledDelivery: ptr(t0),
		}, t0)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("half a schedule disables the window", func(t *testing.T) {
		d, err := delivery.NewDelivery(delivery.NewDeliveryParams{
			ID:              kernel.NewUUID(),
			CustomerID:      kernel.NewUUID(),
			Pickup:          mustPlace(t, "A", 1, 1),
			Drop:            mustPlace(t, "B", 2, 2),
			ScheduledPickup: ptr(t0),
		}, t0)
		require.NoError(t, err)
		assert.Nil(t, d.Schedule())
	})
}

func TestDelivery_ZeroValueIsInvalid(t *testing.T) {
	var d *delivery.Delivery
	require.ErrorIs(t, d.Validate(), delivery.ErrDeliveryIsNotConstructed)
	require.ErrorIs(t, (&delivery.Delivery{}).Validate(), delivery.ErrDeliveryIsNotConstructed)
}

func TestDelivery_Assign(t *testing.T) {
	t.Run("pending becomes assigned", func(t *testing.T) {
		d := newPending(t)
		d.ClearDomainEvents()
		driverID, vehicleID := kernel.NewUUID(), kernel.NewUUID()

		require.NoError(t, d.Assign(driverID, &vehicleID, t0.Add(time.Minute)))

		assert.Equal(t, delivery.Assigned, d.Status())
		assert.True(t, d.IsAssignedTo(driverID))
		assert.True(t, kernel.IsEqualPtr(&vehicleID, d.VehicleID()))

		events := d.DomainEvents()
		require.Len(t, events, 2)
		assigned, ok := events[0].(delivery.DriverAssignedEvent)
		require.True(t, ok)
		assert.True(t, assigned.DriverID.IsEqual(driverID))
		changed, ok := events[1].(delivery.StatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, delivery.Pending, changed.From)
		assert.Equal(t, delivery.Assigned, changed.To)
	})

	t.Run("reassignment keeps status and records only the assignment", func(t *testing.T) {
		d := newInStatus(t, delivery.Assigned)
		other := kernel.NewUUID()

		require.NoError(t, d.Assign(other, nil, t0))

		assert.Equal(t, delivery.Assigned, d.Status())
		assert.True(t, d.IsAssignedTo(other))
		assert.Nil(t, d.VehicleID())
		require.Len(t, d.DomainEvents(), 1)
	})

	t.Run("in-transit delivery cannot be reassigned", func(t *testing.T) {
		d := newInStatus(t, delivery.OnRoute)
		before := *d.DriverID()

		err := d.Assign(kernel.NewUUID(), nil, t0)

		require.ErrorIs(t, err, delivery.ErrInvalidTransition)
		assert.True(t, d.IsAssignedTo(before))
		assert.Equal(t, delivery.OnRoute, d.Status())
	})

	t.Run("invalid driver id", func(t *testing.T) {
		d := newPending(t)
		require.Error(t, d.Assign(kernel.UUID{}, nil, t0))
		assert.Equal(t, delivery.Pending, d.Status())
	})
}

func TestDelivery_TransitionTo_HappyPathStampsTimes(t *testing.T) {
	d := newInStatus(t, delivery.Assigned)
	pickupAt := t0.Add(90 * time.Minute)
	deliveredAt := t0.Add(150 * time.Minute)

	require.NoError(t, d.TransitionTo(delivery.OnRoute, t0.Add(time.Hour)))
	assert.Nil(t, d.ActualPickup())

	require.NoError(t, d.TransitionTo(delivery.PickedUp, pickupAt))
	require.NotNil(t, d.ActualPickup())
	assert.Equal(t, pickupAt, *d.ActualPickup())
	assert.False(t, d.ReleasesVehicle())

	require.NoError(t, d.TransitionTo(delivery.Delivered, deliveredAt))
	require.NotNil(t, d.ActualDelivery())
	assert.Equal(t, deliveredAt, *d.ActualDelivery())
	assert.True(t, d.ReleasesVehicle())

	err := d.TransitionTo(delivery.Delivered, deliveredAt.Add(time.Hour))
	require.ErrorIs(t, err, delivery.ErrInvalidTransition)
	assert.Equal(t, deliveredAt, *d.ActualDelivery(), "stamp must not move")
}

func TestDelivery_TransitionTo_KeepsPreExistingStamp(t *testing.T) {
	stamp := t0.Add(-time.Hour)
	restored, err := delivery.RestoreDelivery(delivery.RestoreParams{
		NewDeliveryParams: delivery.NewDeliveryParams{
			ID:         kernel.NewUUID(),
			CustomerID: kernel.NewUUID(),
			Pickup:     mustPlace(t, "A", 1, 1),
			Drop:       mustPlace(t, "B", 2, 2),
			Priority:   delivery.PriorityLow,
		},
		DriverID:     ptr(kernel.NewUUID()),
		Status:       delivery.OnRoute,
		ActualPickup: &stamp,
		Version:      3,
		CreatedAt:    t0,
		UpdatedAt:    t0,
	})
	require.NoError(t, err)
	assert.Empty(t, restored.DomainEvents())

	require.NoError(t, restored.TransitionTo(delivery.PickedUp, t0))
	assert.Equal(t, stamp, *restored.ActualPickup())
}

func TestDelivery_TransitionTo_RejectsNonEdges(t *testing.T) {
	d := newInStatus(t, delivery.Delivered)

	err := d.TransitionTo(delivery.OnRoute, t0)

	var transitionErr *delivery.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, delivery.Delivered, transitionErr.Current)
	assert.Equal(t, delivery.OnRoute, transitionErr.Requested)
	assert.Equal(t, delivery.Delivered, d.Status())
	assert.Empty(t, d.DomainEvents())
}

func TestDelivery_TransitionTo_AssignedNeedsDriver(t *testing.T) {
	d := newPending(t)
	err := d.TransitionTo(delivery.Assigned, t0)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	assert.Equal(t, delivery.Pending, d.Status())
}

func TestDelivery_Cancel(t *testing.T) {
	for _, s := range []delivery.Status{delivery.Pending, delivery.Assigned} {
		d := newInStatus(t, s)
		require.NoError(t, d.Cancel("customer changed plans", t0), s.String())
		assert.Equal(t, delivery.Cancelled, d.Status())

		events := d.DomainEvents()
		changed := events[len(events)-1].(delivery.StatusChangedEvent)
		assert.Equal(t, "customer changed plans", changed.Reason)
	}

	for _, s := range []delivery.Status{delivery.OnRoute, delivery.PickedUp, delivery.Delivered, delivery.Cancelled} {
		d := newInStatus(t, s)
		require.ErrorIs(t, d.Cancel("", t0), delivery.ErrInvalidTransition, s.String())
		assert.Equal(t, s, d.Status())
	}
}

func TestDelivery_Reject(t *testing.T) {
	d := newInStatus(t, delivery.PickedUp)
	require.NoError(t, d.Reject("damaged goods", t0))
	assert.Equal(t, delivery.Cancelled, d.Status())
	assert.True(t, d.ReleasesVehicle())

	require.ErrorIs(t, d.Reject("again", t0), delivery.ErrInvalidTransition)
}

func TestDelivery_EnsureTrackable(t *testing.T) {
	for _, s := range delivery.AllStatuses() {
		d := newInStatus(t, s)
		err := d.EnsureTrackable()
		if s.IsTrackable() {
			require.NoError(t, err, s.String())
			continue
		}
		require.ErrorIs(t, err, delivery.ErrInvalidTrackingState, s.String())
	}
}

func TestDelivery_EnsureDeletable(t *testing.T) {
	require.NoError(t, newPending(t).EnsureDeletable())
	require.ErrorIs(t, newInStatus(t, delivery.Assigned).EnsureDeletable(), errs.ErrValueIsInvalid)
	require.ErrorIs(t, newInStatus(t, delivery.Cancelled).EnsureDeletable(), errs.ErrValueIsInvalid)
}

func TestDelivery_VisibleTo(t *testing.T) {
	d := newInStatus(t, delivery.Assigned)
	owner := kernel.Actor{ID: d.CustomerID(), Role: kernel.RoleCustomer}
	driver := kernel.Actor{ID: *d.DriverID(), Role: kernel.RoleDriver}

	assert.True(t, d.VisibleTo(owner))
	assert.True(t, d.VisibleTo(driver))
	assert.True(t, d.VisibleTo(kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleAdmin}))
	assert.False(t, d.VisibleTo(kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}))
	assert.False(t, d.VisibleTo(kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleDriver}))
}

func TestDelivery_ApplyPatch(t *testing.T) {
	t.Run("details only", func(t *testing.T) {
		d := newPending(t)
		changed, err := d.ApplyPatch(delivery.Patch{
			PackageDetails: ptr("fragile"),
			Priority:       ptr(delivery.PriorityHigh),
		}, t0.Add(time.Minute))

		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, "fragile", d.PackageDetails())
		assert.Equal(t, delivery.PriorityHigh, d.Priority())
		assert.Equal(t, t0.Add(time.Minute), d.UpdatedAt())
	})

	t.Run("schedule change is reported", func(t *testing.T) {
		d := newPending(t)
		changed, err := d.ApplyPatch(delivery.Patch{
			ScheduledDelivery: ptr(time.Date(2025, 1, 1, 14, 0, 0, 0, time.UTC)),
		}, t0)

		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 4*time.Hour, d.Schedule().Duration())
	})

	t.Run("invalid patch leaves delivery untouched", func(t *testing.T) {
		d := newPending(t)
		_, err := d.ApplyPatch(delivery.Patch{
			PackageDetails:    ptr("changed"),
			ScheduledDelivery: ptr(time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)),
		}, t0)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, "2 pallets", d.PackageDetails())
	})

	t.Run("empty patch", func(t *testing.T) {
		_, err := newPending(t).ApplyPatch(delivery.Patch{}, t0)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("in-transit delivery is frozen", func(t *testing.T) {
		_, err := newInStatus(t, delivery.OnRoute).ApplyPatch(delivery.Patch{PackageDetails: ptr("x")}, t0)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestRestoreDelivery_RejectsPendingWithDriver(t *testing.T) {
	_, err := delivery.RestoreDelivery(delivery.RestoreParams{
		NewDeliveryParams: delivery.NewDeliveryParams{
			ID:         kernel.NewUUID(),
			CustomerID: kernel.NewUUID(),
			Pickup:     mustPlace(t, "A", 1, 1),
			Drop:       mustPlace(t, "B", 2, 2),
			Priority:   delivery.PriorityMedium,
		},
		DriverID: ptr(kernel.NewUUID()),
		Status:   delivery.Pending,
	})
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestDelivery_Persisted(t *testing.T) {
	d := newInStatus(t, delivery.Assigned)
	require.NoError(t, d.TransitionTo(delivery.OnRoute, t0))

	d.Persisted(7)

	assert.Equal(t, 7, d.Version())
	assert.Equal(t, delivery.OnRoute, d.PersistedStatus())
}
