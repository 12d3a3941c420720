package commands_test

import (
	"context"
	"testing"
	"time"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"
	"fleet/internal/core/domain/model/vehicle"
	"fleet/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDeliveryRepository struct{ mock.Mock }

func (m *MockDeliveryRepository) Add(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Update(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) Delete(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) GetActiveHolding(
	ctx context.Context,
	driverID, vehicleID *kernel.UUID,
) ([]*delivery.Delivery, error) {
	args := m.Called(ctx, driverID, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*delivery.Delivery), args.Error(1)
}

type MockVehicleRepository struct{ mock.Mock }

func (m *MockVehicleRepository) Add(ctx context.Context, v *vehicle.Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVehicleRepository) Get(ctx context.Context, id kernel.UUID) (*vehicle.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vehicle.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) UpdateStatus(ctx context.Context, v *vehicle.Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVehicleRepository) UpdateLocation(ctx context.Context, id kernel.UUID, point kernel.GeoPoint) error {
	args := m.Called(ctx, id, point)
	return args.Error(0)
}

type MockTrackingRepository struct{ mock.Mock }

func (m *MockTrackingRepository) Add(ctx context.Context, s *tracking.Sample) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockTrackingRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockPositionCache struct{ mock.Mock }

func (m *MockPositionCache) Get(ctx context.Context, id kernel.UUID) (tracking.Payload, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(tracking.Payload), args.Bool(1), args.Error(2)
}

func (m *MockPositionCache) Put(ctx context.Context, p tracking.Payload) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockUoW satisfies every unit of work flavour the handlers ask for.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) DeliveryRepository() ports.DeliveryRepository {
	args := m.Called()
	return args.Get(0).(ports.DeliveryRepository)
}

func (m *MockUoW) VehicleRepository() ports.VehicleRepository {
	args := m.Called()
	return args.Get(0).(ports.VehicleRepository)
}

func (m *MockUoW) TrackingRepository() ports.TrackingRepository {
	args := m.Called()
	return args.Get(0).(ports.TrackingRepository)
}

type uowFactory struct{ uow *MockUoW }

func (f uowFactory) Create() commands.UoW { return f.uow }

type deliveryUoWFactory struct{ uow *MockUoW }

func (f deliveryUoWFactory) Create() commands.DeliveryUoW { return f.uow }

type vehicleUoWFactory struct{ uow *MockUoW }

func (f vehicleUoWFactory) Create() commands.VehicleUoW { return f.uow }

type trackingUoWFactory struct{ uow *MockUoW }

func (f trackingUoWFactory) Create() commands.TrackingUoW { return f.uow }

type positionUoWFactory struct{ uow *MockUoW }

func (f positionUoWFactory) Create() commands.PositionUoW { return f.uow }

var now = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() ports.Clock {
	return ports.ClockFunc(func() time.Time { return now })
}

func at(hour int) *time.Time {
	t := time.Date(2025, 1, 1, hour, 0, 0, 0, time.UTC)
	return &t
}

func actor(role kernel.Role) kernel.Actor {
	return kernel.Actor{ID: kernel.NewUUID(), Role: role}
}

func place(t *testing.T, address string) kernel.Place {
	t.Helper()
	p, err := kernel.NewPlaceFromCoordinates(address, 52.52, 13.40)
	require.NoError(t, err)
	return p
}

type stored struct {
	customer kernel.UUID
	driver   *kernel.UUID
	vehicle  *kernel.UUID
	status   delivery.Status
	start    *time.Time
	end      *time.Time
}

// restored builds a delivery as a repository would return it.
func restored(t *testing.T, s stored) *delivery.Delivery {
	t.Helper()
	if s.customer == (kernel.UUID{}) {
		s.customer = kernel.NewUUID()
	}
	d, err := delivery.RestoreDelivery(delivery.RestoreParams{
		NewDeliveryParams: delivery.NewDeliveryParams{
			ID:                kernel.NewUUID(),
			CustomerID:        s.customer,
			Pickup:            place(t, "Dock 4"),
			Drop:              place(t, "Market Hall"),
			ScheduledPickup:   s.start,
			ScheduledDelivery: s.end,
			Priority:          delivery.PriorityMedium,
		},
		DriverID:  s.driver,
		VehicleID: s.vehicle,
		Status:    s.status,
		Version:   3,
		CreatedAt: now.Add(-time.Hour),
		UpdatedAt: now.Add(-time.Hour),
	})
	require.NoError(t, err)
	return d
}

func van(t *testing.T, status vehicle.Status) *vehicle.Vehicle {
	t.Helper()
	v, err := vehicle.RestoreVehicle(kernel.NewUUID(), "V7", "van", 800, status, nil)
	require.NoError(t, err)
	return v
}

func eventNames(d *delivery.Delivery) []string {
	names := make([]string, 0, len(d.DomainEvents()))
	for _, e := range d.DomainEvents() {
		names = append(names, e.EventName())
	}
	return names
}

func mockDelivery(match func(d *delivery.Delivery) bool) any {
	return mock.MatchedBy(match)
}

func ptr[T any](v T) *T { return &v }
