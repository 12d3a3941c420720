package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/services"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Kind is the stable machine-readable error category returned to clients.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindSchedulingConflict   Kind = "scheduling_conflict"
	KindInvalidTransition    Kind = "invalid_transition"
	KindInvalidTrackingState Kind = "invalid_tracking_state"
	KindConstraintViolation  Kind = "constraint_violation"
	KindStaleState           Kind = "stale_state"
	KindForbidden            Kind = "forbidden"
	KindUnauthorized         Kind = "unauthorized"
	KindBadRequest           Kind = "bad_request"
	KindInternal             Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindNotFound:             http.StatusNotFound,
	KindSchedulingConflict:   http.StatusConflict,
	KindInvalidTransition:    http.StatusConflict,
	KindInvalidTrackingState: http.StatusConflict,
	KindConstraintViolation:  http.StatusUnprocessableEntity,
	KindStaleState:           http.StatusConflict,
	KindForbidden:            http.StatusForbidden,
	KindUnauthorized:         http.StatusUnauthorized,
	KindBadRequest:           http.StatusBadRequest,
	KindInternal:             http.StatusInternalServerError,
}

// Error is the body of every failed response.
type Error struct {
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Status returns the HTTP status for the error kind.
func (e Error) Status() int {
	if code, ok := statusByKind[e.Kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// Classify turns an application error into its client-facing form.
// Storage and driver text never reaches Message.
func Classify(err error) Error {
	var (
		conflict   *services.SchedulingConflictError
		transition *delivery.InvalidTransitionError
		tracking   *delivery.InvalidTrackingStateError
		httpErr    *echo.HTTPError
	)

	switch {
	case errors.As(err, &httpErr):
		return fromHTTPError(httpErr)

	case errors.As(err, &conflict):
		return Error{
			Kind:    KindSchedulingConflict,
			Message: services.ErrSchedulingConflict.Error(),
			Details: map[string]any{"conflicts": conflictDetails(conflict.Conflicts)},
		}

	case errors.As(err, &transition):
		return Error{
			Kind:    KindInvalidTransition,
			Message: transition.Error(),
			Details: map[string]any{
				"current_status":   transition.Current.String(),
				"requested_status": transition.Requested.String(),
			},
		}

	case errors.As(err, &tracking):
		return Error{
			Kind:    KindInvalidTrackingState,
			Message: tracking.Error(),
			Details: map[string]any{
				"delivery_id": tracking.DeliveryID.String(),
				"status":      tracking.Status.String(),
			},
		}

	case errors.Is(err, errs.ErrAccessDenied):
		return Error{Kind: KindForbidden, Message: err.Error()}

	case errors.Is(err, errs.ErrVersionIsInvalid):
		return Error{Kind: KindStaleState, Message: "the delivery was changed by another request, reload and retry"}

	case errors.Is(err, errs.ErrObjectNotFound):
		return notFound(err)

	case errors.Is(err, errs.ErrObjectAlreadyExists):
		return alreadyExists(err)

	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrValueIsRequired):
		return Error{Kind: KindConstraintViolation, Message: flatten(err)}

	default:
		return Error{Kind: KindInternal, Message: http.StatusText(http.StatusInternalServerError)}
	}
}

func fromHTTPError(he *echo.HTTPError) Error {
	msg := http.StatusText(he.Code)
	if s, ok := he.Message.(string); ok && s != "" {
		msg = s
	}

	switch he.Code {
	case http.StatusUnauthorized:
		return Error{Kind: KindUnauthorized, Message: msg}
	case http.StatusForbidden:
		return Error{Kind: KindForbidden, Message: msg}
	case http.StatusNotFound:
		return Error{Kind: KindNotFound, Message: msg}
	}
	if he.Code >= http.StatusInternalServerError {
		return Error{Kind: KindInternal, Message: http.StatusText(http.StatusInternalServerError)}
	}
	return Error{Kind: KindBadRequest, Message: msg}
}

func notFound(err error) Error {
	var nf *errs.ObjectNotFoundError
	if errors.As(err, &nf) {
		return Error{
			Kind:    KindNotFound,
			Message: fmt.Sprintf("%s: %s", errs.ErrObjectNotFound, nf.ParamName),
			Details: map[string]any{"param": nf.ParamName, "id": fmt.Sprint(nf.ID)},
		}
	}
	return Error{Kind: KindNotFound, Message: errs.ErrObjectNotFound.Error()}
}

func alreadyExists(err error) Error {
	var ae *errs.ObjectAlreadyExistsError
	if errors.As(err, &ae) {
		return Error{
			Kind:    KindConstraintViolation,
			Message: fmt.Sprintf("%s: %s", errs.ErrObjectAlreadyExists, ae.ParamName),
			Details: map[string]any{"param": ae.ParamName, "value": fmt.Sprint(ae.Value)},
		}
	}
	return Error{Kind: KindConstraintViolation, Message: errs.ErrObjectAlreadyExists.Error()}
}

// flatten renders errors.Join output on one line.
func flatten(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}

func conflictDetails(conflicts []services.Conflict) []map[string]any {
	out := make([]map[string]any, 0, len(conflicts))
	for _, c := range conflicts {
		item := map[string]any{
			"delivery_id":             c.DeliveryID.String(),
			"status":                  c.Status.String(),
			"scheduled_pickup_time":   c.Window.Start(),
			"scheduled_delivery_time": c.Window.End(),
			"pickup_location":         c.PickupAddress,
			"drop_location":           c.DropAddress,
			"shares_driver":           c.SharesDriver,
			"shares_vehicle":          c.SharesVehicle,
		}
		if c.DriverID != nil {
			item["driver_id"] = c.DriverID.String()
		}
		if c.VehicleID != nil {
			item["vehicle_id"] = c.VehicleID.String()
		}
		out = append(out, item)
	}
	return out
}

// NewErrorHandler writes every error returned by a handler or middleware as an
// Error body. Internal errors are logged with their full text.
func NewErrorHandler(log logger.Logger) echo.HTTPErrorHandler {
	log = log.With(logger.String("component", "http"))

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		body := Classify(err)
		if body.Kind == KindInternal {
			log.Error("request failed",
				logger.String("method", c.Request().Method),
				logger.String("uri", c.Request().RequestURI),
				logger.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(body.Status())
		} else {
			err = c.JSON(body.Status(), body)
		}
		if err != nil {
			log.Warn("error response not written", logger.Error(err))
		}
	}
}
