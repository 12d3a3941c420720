package kernel

import (
	"errors"
	"fmt"
	"math"

	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

var ErrGeoPointIsNotConstructed = errors.New("GeoPoint must be created via NewGeoPoint")

// GeoPoint is a WGS84 coordinate pair.
//
// Example:
//
//	warehouse, err := kernel.NewGeoPoint(52.5200, 13.4050)
//	if err != nil {
//	    // lat or lng out of range
//	}
type GeoPoint struct {
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint validates both coordinates; every violation is reported, not just the first.
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	if err := errors.Join(
		checkCoordinate("lat", lat, MinLatitude, MaxLatitude),
		checkCoordinate("lng", lng, MinLongitude, MaxLongitude),
	); err != nil {
		return GeoPoint{}, err
	}

	return GeoPoint{
		lat:   lat,
		lng:   lng,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func checkCoordinate(name string, v, minValue, maxValue float64) error {
	if math.IsNaN(v) || v < minValue || v > maxValue {
		return errs.NewValueIsOutOfRangeError(name, v, minValue, maxValue)
	}
	return nil
}

func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

func (p GeoPoint) Lat() float64 { return p.lat }

func (p GeoPoint) Lng() float64 { return p.lng }

func (p GeoPoint) IsEqual(other GeoPoint) bool {
	return p.lat == other.lat && p.lng == other.lng
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.lat, p.lng)
}

// Place is a named address with its coordinates, e.g. a pickup or drop point.
type Place struct {
	address string
	point   GeoPoint
}

// NewPlace requires a non-empty address and a valid point.
func NewPlace(address string, point GeoPoint) (Place, error) {
	if address == "" {
		return Place{}, errs.NewValueIsRequiredError("address")
	}
	if err := point.Validate(); err != nil {
		return Place{}, err
	}
	return Place{address: address, point: point}, nil
}

// NewPlaceFromCoordinates is a shorthand for NewGeoPoint followed by NewPlace.
func NewPlaceFromCoordinates(address string, lat, lng float64) (Place, error) {
	point, err := NewGeoPoint(lat, lng)
	if err != nil {
		return Place{}, fmt.Errorf("%s: %w", address, err)
	}
	return NewPlace(address, point)
}

func (p Place) Address() string { return p.address }

func (p Place) Point() GeoPoint { return p.point }

func (p Place) Validate() error {
	if p.address == "" {
		return errs.NewValueIsRequiredError("address")
	}
	return p.point.Validate()
}
