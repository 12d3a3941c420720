package commands_test

import (
	"errors"
	"testing"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRecordPositionCommand_Validation(t *testing.T) {
	speed, heading := -1.0, 400.0

	_, err := commands.NewRecordPositionCommand(actor(kernel.RoleDriver), kernel.NewUUID(), 91, 0, &speed, &heading)

	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	assert.Contains(t, err.Error(), "lat")
	assert.Contains(t, err.Error(), "speed")
	assert.Contains(t, err.Error(), "heading")

	_, err = commands.NewRecordPositionCommand(actor(kernel.RoleCustomer), kernel.NewUUID(), 1, 1, nil, nil)
	require.ErrorIs(t, err, errs.ErrAccessDenied)
}

func TestRecordPositionCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	driver := actor(kernel.RoleDriver)
	vehicleID := kernel.NewUUID()
	d := restored(t, stored{driver: &driver.ID, vehicle: &vehicleID, status: delivery.OnRoute})
	speed := 42.5

	cmd, err := commands.NewRecordPositionCommand(driver, d.ID(), 52.53, 13.41, &speed, nil)
	require.NoError(t, err)

	uow := new(MockUoW)
	deliveryRepo, trackingRepo, vehicleRepo := new(MockDeliveryRepository), new(MockTrackingRepository), new(MockVehicleRepository)
	cache := new(MockPositionCache)
	var added *tracking.Sample

	point, err := kernel.NewGeoPoint(52.53, 13.41)
	require.NoError(t, err)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Get", ctx, d.ID()).Return(d, nil).Once(),
		uow.On("TrackingRepository").Return(trackingRepo).Once(),
		trackingRepo.On("Add", ctx, mock.AnythingOfType("*tracking.Sample")).
			Run(func(args mock.Arguments) { added = args.Get(1).(*tracking.Sample) }).
			Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("VehicleRepository").Return(vehicleRepo).Once(),
		vehicleRepo.On("UpdateLocation", ctx, vehicleID, point).Return(nil).Once(),
		cache.On("Put", ctx, mock.AnythingOfType("tracking.Payload")).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewRecordPositionCommandHandler(positionUoWFactory{uow}, cache, fixedClock(), logger.NewNop())
	payload, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)

	require.NotNil(t, added)
	assert.True(t, d.ID().IsEqual(payload.DeliveryID))
	assert.InDelta(t, 52.53, payload.Lat, 1e-9)
	assert.InDelta(t, 13.41, payload.Lng, 1e-9)
	assert.Equal(t, &speed, payload.Speed)
	assert.Nil(t, payload.Heading)
	assert.True(t, payload.Timestamp.Equal(now), "timestamp is server-assigned")
	require.Len(t, added.DomainEvents(), 1)
	assert.Equal(t, tracking.EventPositionRecorded, added.DomainEvents()[0].EventName())
	uow.AssertExpectations(t)
	vehicleRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRecordPositionCommandHandler_Handle_NotInTransit(t *testing.T) {
	for _, status := range []delivery.Status{delivery.Pending, delivery.Assigned, delivery.Delivered, delivery.Cancelled} {
		t.Run(status.String(), func(t *testing.T) {
			ctx := t.Context()
			s := stored{status: status}
			if status != delivery.Pending {
				s.driver = ptr(kernel.NewUUID())
			}
			d := restored(t, s)

			cmd, err := commands.NewRecordPositionCommand(actor(kernel.RoleAdmin), d.ID(), 1, 1, nil, nil)
			require.NoError(t, err)

			uow, deliveryRepo := new(MockUoW), new(MockDeliveryRepository)
			uow.On("Begin", ctx).Return(nil).Once()
			uow.On("DeliveryRepository").Return(deliveryRepo).Once()
			deliveryRepo.On("Get", ctx, d.ID()).Return(d, nil).Once()
			uow.On("Rollback", ctx).Return(nil).Once()

			handler := commands.NewRecordPositionCommandHandler(positionUoWFactory{uow}, nil, fixedClock(), logger.NewNop())
			_, err = handler.Handle(ctx, cmd)

			require.ErrorIs(t, err, delivery.ErrInvalidTrackingState)
			uow.AssertNotCalled(t, "TrackingRepository")
			uow.AssertNotCalled(t, "Commit", mock.Anything)
		})
	}
}

func TestRecordPositionCommandHandler_Handle_VehicleUpdateIsBestEffort(t *testing.T) {
	ctx := t.Context()
	vehicleID := kernel.NewUUID()
	d := restored(t, stored{driver: ptr(kernel.NewUUID()), vehicle: &vehicleID, status: delivery.PickedUp})

	cmd, err := commands.NewRecordPositionCommand(actor(kernel.RoleAdmin), d.ID(), 10, 20, nil, nil)
	require.NoError(t, err)

	uow := new(MockUoW)
	deliveryRepo, trackingRepo, vehicleRepo := new(MockDeliveryRepository), new(MockTrackingRepository), new(MockVehicleRepository)
	cache := new(MockPositionCache)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("DeliveryRepository").Return(deliveryRepo).Once()
	deliveryRepo.On("Get", ctx, d.ID()).Return(d, nil).Once()
	uow.On("TrackingRepository").Return(trackingRepo).Once()
	trackingRepo.On("Add", ctx, mock.Anything).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("VehicleRepository").Return(vehicleRepo).Once()
	vehicleRepo.On("UpdateLocation", ctx, vehicleID, mock.Anything).Return(errors.New("deadlock detected")).Once()
	cache.On("Put", ctx, mock.Anything).Return(errors.New("redis: connection refused")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	core, logs := observer.New(zap.WarnLevel)
	handler := commands.NewRecordPositionCommandHandler(positionUoWFactory{uow}, cache, fixedClock(), logger.FromZap(zap.New(core)))
	_, err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("vehicle location not updated").Len())
	assert.Equal(t, 1, logs.FilterMessage("latest position not cached").Len())
}

func TestRecordPositionCommandHandler_Handle_InsertFails(t *testing.T) {
	ctx := t.Context()
	d := restored(t, stored{driver: ptr(kernel.NewUUID()), status: delivery.OnRoute})

	cmd, err := commands.NewRecordPositionCommand(actor(kernel.RoleAdmin), d.ID(), 10, 20, nil, nil)
	require.NoError(t, err)

	uow := new(MockUoW)
	deliveryRepo, trackingRepo := new(MockDeliveryRepository), new(MockTrackingRepository)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("DeliveryRepository").Return(deliveryRepo).Once()
	deliveryRepo.On("Get", ctx, d.ID()).Return(d, nil).Once()
	uow.On("TrackingRepository").Return(trackingRepo).Once()
	trackingRepo.On("Add", ctx, mock.Anything).Return(errors.New("disk full")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewRecordPositionCommandHandler(positionUoWFactory{uow}, nil, fixedClock(), logger.NewNop())
	_, err = handler.Handle(ctx, cmd)

	require.EqualError(t, err, "disk full")
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	uow.AssertNotCalled(t, "VehicleRepository")
}
