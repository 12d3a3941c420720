package http

import (
	"fleet/internal/adapters/relay"
	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/application/usecases/queries"
	"fleet/internal/pkg/logger"
)

// Handlers groups the use cases the API exposes.
type Handlers struct {
	// Command handlers
	CreateDelivery        commands.CreateDeliveryCommandHandler
	AssignDriver          commands.AssignDriverCommandHandler
	UpdateDeliveryStatus  commands.UpdateDeliveryStatusCommandHandler
	UpdateDeliveryDetails commands.UpdateDeliveryDetailsCommandHandler
	CancelDelivery        commands.CancelDeliveryCommandHandler
	RejectDelivery        commands.RejectDeliveryCommandHandler
	DeleteDelivery        commands.DeleteDeliveryCommandHandler
	RecordPosition        commands.RecordPositionCommandHandler
	RegisterVehicle       commands.RegisterVehicleCommandHandler
	SetVehicleStatus      commands.SetVehicleStatusCommandHandler

	// Query handlers
	GetDelivery          queries.GetDeliveryQueryHandler
	ListDeliveries       queries.ListDeliveriesQueryHandler
	GetActiveDeliveries  queries.GetActiveDeliveriesQueryHandler
	GetDeliveryStats     queries.GetDeliveryStatsQueryHandler
	GetLatestPosition    queries.GetLatestPositionQueryHandler
	GetTrackingHistory   queries.GetTrackingHistoryQueryHandler
	GetRecentPositions   queries.GetRecentPositionsQueryHandler
	GetActiveRoster      queries.GetActiveRosterQueryHandler
	GetAvailableVehicles queries.GetAvailableVehiclesQueryHandler
}

// Server handles HTTP and websocket requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	h   Handlers
	hub *relay.Hub
	log logger.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
// hub backs the /ws relay endpoint.
func NewServer(h Handlers, hub *relay.Hub, log logger.Logger) *Server {
	return &Server{
		h:   h,
		hub: hub,
		log: log.With(logger.String("component", "http")),
	}
}
