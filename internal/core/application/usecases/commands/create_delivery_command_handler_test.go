package commands_test

import (
	"errors"
	"testing"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/vehicle"
	"fleet/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateDeliveryCommandHandler_Handle_Pending(t *testing.T) {
	ctx := t.Context()
	customer := actor(kernel.RoleCustomer)
	cmd, err := commands.NewCreateDeliveryCommand(customer, commands.CreateDeliveryParams{
		DeliveryID:        kernel.NewUUID(),
		Pickup:            place(t, "Dock 4"),
		Drop:              place(t, "Market Hall"),
		ScheduledPickup:   at(10),
		ScheduledDelivery: at(12),
		PackageDetails:    "2 pallets",
	})
	require.NoError(t, err)

	uow, deliveryRepo := new(MockUoW), new(MockDeliveryRepository)
	var added *delivery.Delivery

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Add", ctx, mock.AnythingOfType("*delivery.Delivery")).
			Run(func(args mock.Arguments) { added = args.Get(1).(*delivery.Delivery) }).
			Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewCreateDeliveryCommandHandler(uowFactory{uow}, fixedClock())
	require.NoError(t, handler.Handle(ctx, cmd))

	require.NotNil(t, added)
	assert.Equal(t, delivery.Pending, added.Status())
	assert.True(t, added.IsOwnedBy(customer.ID))
	assert.Nil(t, added.DriverID())
	assert.Equal(t, []string{delivery.EventCreated}, eventNames(added))
	deliveryRepo.AssertNotCalled(t, "GetActiveHolding", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "VehicleRepository")
	uow.AssertExpectations(t)
	deliveryRepo.AssertExpectations(t)
}

func TestCreateDeliveryCommandHandler_Handle_WithAssignment(t *testing.T) {
	ctx := t.Context()
	v := van(t, vehicle.StatusAvailable)
	driverID, vehicleID := kernel.NewUUID(), v.ID()

	cmd, err := commands.NewCreateDeliveryCommand(actor(kernel.RoleAdmin), commands.CreateDeliveryParams{
		DeliveryID:        kernel.NewUUID(),
		CustomerID:        kernel.NewUUID(),
		Pickup:            place(t, "Dock 4"),
		Drop:              place(t, "Market Hall"),
		ScheduledPickup:   at(10),
		ScheduledDelivery: at(12),
		DriverID:          &driverID,
		VehicleID:         &vehicleID,
	})
	require.NoError(t, err)

	uow := new(MockUoW)
	deliveryRepo, vehicleRepo := new(MockDeliveryRepository), new(MockVehicleRepository)
	var added *delivery.Delivery

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("GetActiveHolding", ctx, &driverID, &vehicleID).Return([]*delivery.Delivery{}, nil).Once(),
		deliveryRepo.On("Add", ctx, mock.AnythingOfType("*delivery.Delivery")).
			Run(func(args mock.Arguments) { added = args.Get(1).(*delivery.Delivery) }).
			Return(nil).Once(),
		uow.On("VehicleRepository").Return(vehicleRepo).Once(),
		vehicleRepo.On("Get", ctx, vehicleID).Return(v, nil).Once(),
		vehicleRepo.On("UpdateStatus", ctx, v).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewCreateDeliveryCommandHandler(uowFactory{uow}, fixedClock())
	require.NoError(t, handler.Handle(ctx, cmd))

	require.NotNil(t, added)
	assert.Equal(t, delivery.Assigned, added.Status(), "a delivery created with a driver is never pending")
	assert.True(t, added.IsAssignedTo(driverID))
	assert.Equal(t, vehicle.StatusInUse, v.Status())
	assert.Equal(t,
		[]string{delivery.EventCreated, delivery.EventDriverAssigned, delivery.EventStatusChanged},
		eventNames(added),
	)
	uow.AssertExpectations(t)
	deliveryRepo.AssertExpectations(t)
	vehicleRepo.AssertExpectations(t)
}

func TestCreateDeliveryCommandHandler_Handle_Conflict(t *testing.T) {
	ctx := t.Context()
	driverID, vehicleID := kernel.NewUUID(), kernel.NewUUID()
	busy := restored(t, stored{driver: &driverID, vehicle: &vehicleID, status: delivery.OnRoute, start: at(11), end: at(13)})

	cmd, err := commands.NewCreateDeliveryCommand(actor(kernel.RoleAdmin), commands.CreateDeliveryParams{
		DeliveryID:        kernel.NewUUID(),
		CustomerID:        kernel.NewUUID(),
		Pickup:            place(t, "Dock 4"),
		Drop:              place(t, "Market Hall"),
		ScheduledPickup:   at(10),
		ScheduledDelivery: at(12),
		DriverID:          &driverID,
		VehicleID:         &vehicleID,
	})
	require.NoError(t, err)

	uow, deliveryRepo := new(MockUoW), new(MockDeliveryRepository)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("DeliveryRepository").Return(deliveryRepo).Once()
	deliveryRepo.On("GetActiveHolding", ctx, &driverID, &vehicleID).Return([]*delivery.Delivery{busy}, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewCreateDeliveryCommandHandler(uowFactory{uow}, fixedClock())
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, services.ErrSchedulingConflict)
	var conflict *services.SchedulingConflictError
	require.True(t, errors.As(err, &conflict))
	require.Len(t, conflict.Conflicts, 1)
	assert.True(t, busy.ID().IsEqual(conflict.Conflicts[0].DeliveryID))
	deliveryRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestCreateDeliveryCommandHandler_Handle_BeginFails(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewCreateDeliveryCommand(actor(kernel.RoleCustomer), commands.CreateDeliveryParams{
		DeliveryID: kernel.NewUUID(),
		Pickup:     place(t, "Dock 4"),
		Drop:       place(t, "Market Hall"),
	})
	require.NoError(t, err)

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(errors.New("connection refused")).Once()

	handler := commands.NewCreateDeliveryCommandHandler(uowFactory{uow}, fixedClock())
	err = handler.Handle(ctx, cmd)

	require.EqualError(t, err, "connection refused")
	uow.AssertNotCalled(t, "Rollback", mock.Anything)
}

func TestCreateDeliveryCommandHandler_Handle_NotConstructed(t *testing.T) {
	handler := commands.NewCreateDeliveryCommandHandler(uowFactory{new(MockUoW)}, fixedClock())

	err := handler.Handle(t.Context(), commands.CreateDeliveryCommand{})

	require.ErrorIs(t, err, commands.ErrCreateDeliveryCommandIsNotConstructed)
}
