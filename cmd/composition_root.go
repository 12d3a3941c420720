package cmd

import (
	"context"
	"time"

	httpin "fleet/internal/adapters/in/http"
	"fleet/internal/adapters/out/postgres"
	"fleet/internal/adapters/relay"
	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/application/usecases/queries"
	"fleet/internal/core/ports"
	"fleet/internal/jobs"
	"fleet/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	log        logger.Logger
	clock      ports.Clock
	publisher  ports.EventPublisher
	cache      ports.LatestPositionCache
	hub        *relay.Hub
	uowFactory *postgres.GormUnitOfWorkFactory
}

type Option func(*CompositionRoot)

// WithEventPublisher forwards committed domain events to a broker.
func WithEventPublisher(p ports.EventPublisher) Option {
	return func(c *CompositionRoot) { c.publisher = p }
}

// WithLatestPositionCache puts a cache in front of the latest-position read.
func WithLatestPositionCache(cache ports.LatestPositionCache) Option {
	return func(c *CompositionRoot) { c.cache = cache }
}

func WithClock(clock ports.Clock) Option {
	return func(c *CompositionRoot) { c.clock = clock }
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, log logger.Logger, opts ...Option) *CompositionRoot {
	c := &CompositionRoot{
		cfg:    cfg,
		gormDB: gormDB,
		log:    log,
		clock:  ports.ClockFunc(time.Now),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.hub = relay.NewHub(cfg.RelaySubscriberBuffer, log)
	dispatcher := relay.NewDispatcher(c.hub, c.publisher, log)
	c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, dispatcher)
	return c
}

func (c *CompositionRoot) Hub() *relay.Hub {
	return c.hub
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) deliveryUoW() commands.DeliveryUoWFactory {
	return FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) vehicleUoW() commands.VehicleUoWFactory {
	return FuncVehicleUoWFactory(func() commands.VehicleUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) trackingUoW() commands.TrackingUoWFactory {
	return FuncTrackingUoWFactory(func() commands.TrackingUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) positionUoW() commands.PositionUoWFactory {
	return FuncPositionUoWFactory(func() commands.PositionUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateDeliveryCommandHandler() commands.CreateDeliveryCommandHandler {
	return commands.NewCreateDeliveryCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateAssignDriverCommandHandler() commands.AssignDriverCommandHandler {
	return commands.NewAssignDriverCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateUpdateDeliveryStatusCommandHandler() commands.UpdateDeliveryStatusCommandHandler {
	return commands.NewUpdateDeliveryStatusCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateUpdateDeliveryDetailsCommandHandler() commands.UpdateDeliveryDetailsCommandHandler {
	return commands.NewUpdateDeliveryDetailsCommandHandler(c.deliveryUoW(), c.clock)
}

func (c *CompositionRoot) CreateCancelDeliveryCommandHandler() commands.CancelDeliveryCommandHandler {
	return commands.NewCancelDeliveryCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateRejectDeliveryCommandHandler() commands.RejectDeliveryCommandHandler {
	return commands.NewRejectDeliveryCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateDeleteDeliveryCommandHandler() commands.DeleteDeliveryCommandHandler {
	return commands.NewDeleteDeliveryCommandHandler(c.deliveryUoW())
}

func (c *CompositionRoot) CreateRecordPositionCommandHandler() commands.RecordPositionCommandHandler {
	return commands.NewRecordPositionCommandHandler(c.positionUoW(), c.cache, c.clock, c.log)
}

func (c *CompositionRoot) CreateRegisterVehicleCommandHandler() commands.RegisterVehicleCommandHandler {
	return commands.NewRegisterVehicleCommandHandler(c.vehicleUoW())
}

func (c *CompositionRoot) CreateSetVehicleStatusCommandHandler() commands.SetVehicleStatusCommandHandler {
	return commands.NewSetVehicleStatusCommandHandler(c.vehicleUoW())
}

func (c *CompositionRoot) CreatePurgeTrackingHistoryCommandHandler() commands.PurgeTrackingHistoryCommandHandler {
	return commands.NewPurgeTrackingHistoryCommandHandler(c.trackingUoW())
}

func (c *CompositionRoot) CreateGetDeliveryQueryHandler() queries.GetDeliveryQueryHandler {
	return queries.NewGetDeliveryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListDeliveriesQueryHandler() queries.ListDeliveriesQueryHandler {
	return queries.NewListDeliveriesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveDeliveriesQueryHandler() queries.GetActiveDeliveriesQueryHandler {
	return queries.NewGetActiveDeliveriesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetDeliveryStatsQueryHandler() queries.GetDeliveryStatsQueryHandler {
	return queries.NewGetDeliveryStatsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetLatestPositionQueryHandler() queries.GetLatestPositionQueryHandler {
	return queries.NewGetLatestPositionQueryHandler(c.gormDB, c.cache, c.log)
}

func (c *CompositionRoot) CreateGetTrackingHistoryQueryHandler() queries.GetTrackingHistoryQueryHandler {
	return queries.NewGetTrackingHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetRecentPositionsQueryHandler() queries.GetRecentPositionsQueryHandler {
	return queries.NewGetRecentPositionsQueryHandler(c.gormDB, c.clock)
}

func (c *CompositionRoot) CreateGetActiveRosterQueryHandler() queries.GetActiveRosterQueryHandler {
	return queries.NewGetActiveRosterQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAvailableVehiclesQueryHandler() queries.GetAvailableVehiclesQueryHandler {
	return queries.NewGetAvailableVehiclesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) Handlers() httpin.Handlers {
	return httpin.Handlers{
		CreateDelivery:        c.CreateCreateDeliveryCommandHandler(),
		AssignDriver:          c.CreateAssignDriverCommandHandler(),
		UpdateDeliveryStatus:  c.CreateUpdateDeliveryStatusCommandHandler(),
		UpdateDeliveryDetails: c.CreateUpdateDeliveryDetailsCommandHandler(),
		CancelDelivery:        c.CreateCancelDeliveryCommandHandler(),
		RejectDelivery:        c.CreateRejectDeliveryCommandHandler(),
		DeleteDelivery:        c.CreateDeleteDeliveryCommandHandler(),
		RecordPosition:        c.CreateRecordPositionCommandHandler(),
		RegisterVehicle:       c.CreateRegisterVehicleCommandHandler(),
		SetVehicleStatus:      c.CreateSetVehicleStatusCommandHandler(),

		GetDelivery:          c.CreateGetDeliveryQueryHandler(),
		ListDeliveries:       c.CreateListDeliveriesQueryHandler(),
		GetActiveDeliveries:  c.CreateGetActiveDeliveriesQueryHandler(),
		GetDeliveryStats:     c.CreateGetDeliveryStatsQueryHandler(),
		GetLatestPosition:    c.CreateGetLatestPositionQueryHandler(),
		GetTrackingHistory:   c.CreateGetTrackingHistoryQueryHandler(),
		GetRecentPositions:   c.CreateGetRecentPositionsQueryHandler(),
		GetActiveRoster:      c.CreateGetActiveRosterQueryHandler(),
		GetAvailableVehicles: c.CreateGetAvailableVehiclesQueryHandler(),
	}
}

func (c *CompositionRoot) TokenVerifier() *httpin.TokenVerifier {
	return httpin.NewTokenVerifier(c.cfg.JWTSecret)
}

// Router builds the echo instance serving the REST API and the /ws relay.
func (c *CompositionRoot) Router(ctx context.Context) (*echo.Echo, error) {
	server := httpin.NewServer(c.Handlers(), c.hub, c.log)
	return httpin.NewRouter(ctx, server, c.TokenVerifier(), c.log)
}

func (c *CompositionRoot) JobManager() *jobs.JobManager {
	retention := jobs.NewTrackingRetentionJob(
		c.CreatePurgeTrackingHistoryCommandHandler(),
		c.clock,
		c.cfg.TrackingRetentionSchedule,
		c.cfg.TrackingRetention(),
		c.log,
	)
	return jobs.NewJobManager(retention)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncDeliveryUoWFactory func() commands.DeliveryUoW

func (f FuncDeliveryUoWFactory) Create() commands.DeliveryUoW {
	return f()
}

type FuncVehicleUoWFactory func() commands.VehicleUoW

func (f FuncVehicleUoWFactory) Create() commands.VehicleUoW {
	return f()
}

type FuncTrackingUoWFactory func() commands.TrackingUoW

func (f FuncTrackingUoWFactory) Create() commands.TrackingUoW {
	return f()
}

type FuncPositionUoWFactory func() commands.PositionUoW

func (f FuncPositionUoWFactory) Create() commands.PositionUoW {
	return f()
}
