package commands

import (
	"context"

	"fleet/internal/core/domain/model/tracking"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/logger"
)

// RecordPositionCommandHandler is the tracking ingest path.
//
// The sample is written in its own transaction; its PositionRecorded event reaches
// the relay and the broker when that transaction commits. The vehicle's coarse
// location and the latest-position cache are refreshed afterwards on a best-effort
// basis: failures there are logged and never undo the sample.
type RecordPositionCommandHandler struct {
	uowFactory PositionUoWFactory
	cache      ports.LatestPositionCache
	clock      ports.Clock
	log        logger.Logger
}

// NewRecordPositionCommandHandler wires the ingest path. cache may be nil when no
// cache is configured.
func NewRecordPositionCommandHandler(
	uowFactory PositionUoWFactory,
	cache ports.LatestPositionCache,
	clock ports.Clock,
	log logger.Logger,
) RecordPositionCommandHandler {
	return RecordPositionCommandHandler{
		uowFactory: uowFactory,
		cache:      cache,
		clock:      clock,
		log:        log.With(logger.String("component", "record_position")),
	}
}

// Handle returns delivery.InvalidTrackingStateError, without writing anything, for
// deliveries that are not on_route or picked_up.
func (h RecordPositionCommandHandler) Handle(ctx context.Context, cmd RecordPositionCommand) (tracking.Payload, error) {
	if err := cmd.Validate(); err != nil {
		return tracking.Payload{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return tracking.Payload{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DeliveryRepository().Get(ctx, cmd.DeliveryID())
	if err != nil {
		return tracking.Payload{}, err
	}

	if err = requireVisible(cmd.Actor(), d); err != nil {
		return tracking.Payload{}, err
	}

	if err = d.EnsureTrackable(); err != nil {
		return tracking.Payload{}, err
	}

	sample, err := tracking.NewSample(d.ID(), d.DriverID(), d.VehicleID(), cmd.Reading(), h.clock.Now())
	if err != nil {
		return tracking.Payload{}, err
	}

	if err = uow.TrackingRepository().Add(ctx, sample); err != nil {
		return tracking.Payload{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return tracking.Payload{}, err
	}

	h.afterCommit(ctx, uow, sample)
	return sample.Payload(), nil
}

func (h RecordPositionCommandHandler) afterCommit(ctx context.Context, uow PositionUoW, sample *tracking.Sample) {
	if vehicleID := sample.VehicleID(); vehicleID != nil {
		ledger := NewVehicleLedger(uow.VehicleRepository())
		if err := ledger.UpdateLocation(ctx, *vehicleID, sample.Position()); err != nil {
			h.log.Warn("vehicle location not updated",
				logger.String("vehicle_id", vehicleID.String()),
				logger.Error(err),
			)
		}
	}

	if h.cache == nil {
		return
	}
	if err := h.cache.Put(ctx, sample.Payload()); err != nil {
		h.log.Warn("latest position not cached",
			logger.String("delivery_id", sample.DeliveryID().String()),
			logger.Error(err),
		)
	}
}
