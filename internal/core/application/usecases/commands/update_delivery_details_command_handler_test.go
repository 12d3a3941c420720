package commands_test

import (
	"testing"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/services"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewUpdateDeliveryDetailsCommand_EmptyPatch(t *testing.T) {
	_, err := commands.NewUpdateDeliveryDetailsCommand(actor(kernel.RoleAdmin), kernel.NewUUID(), delivery.Patch{})

	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestUpdateDeliveryDetailsCommandHandler_Handle_PendingWithoutConflictCheck(t *testing.T) {
	ctx := t.Context()
	customer := actor(kernel.RoleCustomer)
	d := restored(t, stored{customer: customer.ID, status: delivery.Pending})
	details := "fragile"

	cmd, err := commands.NewUpdateDeliveryDetailsCommand(customer, d.ID(), delivery.Patch{
		PackageDetails:    &details,
		ScheduledPickup:   at(10),
		ScheduledDelivery: at(12),
	})
	require.NoError(t, err)

	uow, deliveryRepo := new(MockUoW), new(MockDeliveryRepository)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Get", ctx, d.ID()).Return(d, nil).Once(),
		deliveryRepo.On("Update", ctx, d).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewUpdateDeliveryDetailsCommandHandler(deliveryUoWFactory{uow}, fixedClock())
	require.NoError(t, handler.Handle(ctx, cmd))

	assert.Equal(t, "fragile", d.PackageDetails())
	require.NotNil(t, d.Schedule())
	deliveryRepo.AssertNotCalled(t, "GetActiveHolding", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
}

func TestUpdateDeliveryDetailsCommandHandler_Handle_RescheduleConflicts(t *testing.T) {
	ctx := t.Context()
	driverID := kernel.NewUUID()
	d := restored(t, stored{driver: &driverID, status: delivery.Assigned, start: at(8), end: at(9)})
	busy := restored(t, stored{driver: &driverID, status: delivery.OnRoute, start: at(11), end: at(13)})

	cmd, err := commands.NewUpdateDeliveryDetailsCommand(actor(kernel.RoleAdmin), d.ID(), delivery.Patch{
		ScheduledPickup:   at(10),
		ScheduledDelivery: at(12),
	})
	require.NoError(t, err)

	uow, deliveryRepo := new(MockUoW), new(MockDeliveryRepository)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("DeliveryRepository").Return(deliveryRepo).Once()
	deliveryRepo.On("Get", ctx, d.ID()).Return(d, nil).Once()
	deliveryRepo.On("GetActiveHolding", ctx, &driverID, (*kernel.UUID)(nil)).
		Return([]*delivery.Delivery{d, busy}, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewUpdateDeliveryDetailsCommandHandler(deliveryUoWFactory{uow}, fixedClock())
	err = handler.Handle(ctx, cmd)

	var conflict *services.SchedulingConflictError
	require.ErrorAs(t, err, &conflict)
	require.Len(t, conflict.Conflicts, 1, "the delivery never conflicts with itself")
	assert.True(t, busy.ID().IsEqual(conflict.Conflicts[0].DeliveryID))
	deliveryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateDeliveryDetailsCommandHandler_Handle_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		actor  kernel.Actor
		status delivery.Status
		target error
	}{
		{name: "not the owner", actor: actor(kernel.RoleCustomer), status: delivery.Pending, target: errs.ErrObjectNotFound},
		{name: "already moving", actor: actor(kernel.RoleAdmin), status: delivery.OnRoute, target: errs.ErrValueIsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			s := stored{status: tt.status}
			if tt.status != delivery.Pending {
				s.driver = ptr(kernel.NewUUID())
			}
			d := restored(t, s)
			details := "x"

			cmd, err := commands.NewUpdateDeliveryDetailsCommand(tt.actor, d.ID(), delivery.Patch{PackageDetails: &details})
			require.NoError(t, err)

			uow, deliveryRepo := new(MockUoW), new(MockDeliveryRepository)
			uow.On("Begin", ctx).Return(nil).Once()
			uow.On("DeliveryRepository").Return(deliveryRepo).Once()
			deliveryRepo.On("Get", ctx, d.ID()).Return(d, nil).Once()
			uow.On("Rollback", ctx).Return(nil).Once()

			handler := commands.NewUpdateDeliveryDetailsCommandHandler(deliveryUoWFactory{uow}, fixedClock())

			require.ErrorIs(t, handler.Handle(ctx, cmd), tt.target)
			assert.Empty(t, d.PackageDetails())
		})
	}
}
