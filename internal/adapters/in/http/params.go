package http

import (
	"fmt"
	"net/http"
	"time"

	"fleet/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

func invalidParam(name string, err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s parameter", name)).SetInternal(err)
}

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var raw uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &raw, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return kernel.UUID{}, invalidParam(name, err)
	}
	id, err := kernel.UUIDFromRaw(raw)
	if err != nil {
		return kernel.UUID{}, invalidParam(name, err)
	}
	return id, nil
}

func queryUUID(c echo.Context, name string) (*kernel.UUID, error) {
	var raw *uuid.UUID
	if err := runtime.BindQueryParameter("form", true, false, name, c.QueryParams(), &raw); err != nil {
		return nil, invalidParam(name, err)
	}
	id, err := kernel.UUIDPtrFromRaw(raw)
	if err != nil {
		return nil, invalidParam(name, err)
	}
	return id, nil
}

func queryInt(c echo.Context, name string) (*int, error) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, c.QueryParams(), &v); err != nil {
		return nil, invalidParam(name, err)
	}
	return v, nil
}

func queryString(c echo.Context, name string) (*string, error) {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, c.QueryParams(), &v); err != nil {
		return nil, invalidParam(name, err)
	}
	return v, nil
}

func queryTime(c echo.Context, name string) (*time.Time, error) {
	var v *time.Time
	if err := runtime.BindQueryParameter("form", true, false, name, c.QueryParams(), &v); err != nil {
		return nil, invalidParam(name, err)
	}
	return v, nil
}

// bindBody decodes the JSON body into dst.
func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	return nil
}
