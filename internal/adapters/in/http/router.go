package http

import (
	"context"
	"net/http"

	"fleet/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewRouter builds the echo instance serving the API, the relay endpoint and
// the Swagger UI.
func NewRouter(ctx context.Context, s *Server, verifier *TokenVerifier, log logger.Logger) (*echo.Echo, error) {
	doc, err := LoadSpec(ctx)
	if err != nil {
		return nil, err
	}
	validate, err := ValidateRequests(doc)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewErrorHandler(log)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(log))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if err = MountSwagger(e, doc); err != nil {
		return nil, err
	}

	auth := Authenticate(verifier)
	e.GET("/ws", s.ServeWS, auth)

	api := e.Group("/api/v1", auth, validate)

	api.POST("/deliveries", s.CreateDelivery)
	api.GET("/deliveries", s.ListDeliveries)
	api.GET("/deliveries/active", s.GetActiveDeliveries)
	api.GET("/deliveries/stats", s.GetDeliveryStats)
	api.GET("/deliveries/:id", s.GetDelivery)
	api.PATCH("/deliveries/:id", s.UpdateDeliveryDetails)
	api.DELETE("/deliveries/:id", s.DeleteDelivery)
	api.POST("/deliveries/:id/assign", s.AssignDriver)
	api.PUT("/deliveries/:id/status", s.UpdateDeliveryStatus)
	api.POST("/deliveries/:id/cancel", s.CancelDelivery)
	api.POST("/deliveries/:id/reject", s.RejectDelivery)
	api.POST("/deliveries/:id/tracking", s.RecordPosition)
	api.GET("/deliveries/:id/tracking", s.GetTrackingHistory)
	api.GET("/deliveries/:id/tracking/latest", s.GetLatestPosition)

	api.GET("/tracking/recent", s.GetRecentPositions)
	api.GET("/tracking/roster", s.GetActiveRoster)

	api.POST("/vehicles", s.RegisterVehicle)
	api.GET("/vehicles/available", s.GetAvailableVehicles)
	api.PUT("/vehicles/:id/status", s.SetVehicleStatus)

	return e, nil
}

// RequestLogger writes one structured line per request.
func RequestLogger(log logger.Logger) echo.MiddlewareFunc {
	log = log.With(logger.String("component", "http"))

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []logger.Field{
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.Duration("latency", v.Latency),
				logger.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				log.Warn("request", append(fields, logger.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	})
}
