package commands

import (
	"context"
)

type PurgeTrackingHistoryCommandHandler struct {
	uowFactory TrackingUoWFactory
}

func NewPurgeTrackingHistoryCommandHandler(uowFactory TrackingUoWFactory) PurgeTrackingHistoryCommandHandler {
	return PurgeTrackingHistoryCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle returns the number of deleted samples.
func (h PurgeTrackingHistoryCommandHandler) Handle(ctx context.Context, cmd PurgeTrackingHistoryCommand) (int64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deleted, err := uow.TrackingRepository().PurgeOlderThan(ctx, cmd.OlderThan())
	if err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}
	return deleted, nil
}
