package vehicle

import (
	"errors"
	"fmt"
	"strings"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
)

var ErrVehicleIsNotConstructed = errors.New("Vehicle must be created via NewVehicle or RestoreVehicle")

// Vehicle is the aggregate root for one fleet vehicle.
type Vehicle struct {
	id            kernel.UUID
	number        string
	kind          string
	capacity      float64
	status        Status
	location      *kernel.GeoPoint
	isConstructed bool
}

// NewVehicle registers an available vehicle. number is the plate or fleet number
// and must be unique across the fleet; uniqueness is enforced by the repository.
func NewVehicle(id kernel.UUID, number, kind string, capacity float64) (*Vehicle, error) {
	v := &Vehicle{
		status:        StatusAvailable,
		isConstructed: true,
	}

	if err := errors.Join(
		v.setID(id),
		v.setNumber(number),
		v.setKind(kind),
		v.setCapacity(capacity),
	); err != nil {
		return nil, err
	}
	return v, nil
}

// RestoreVehicle rebuilds a vehicle from persistence.
func RestoreVehicle(
	id kernel.UUID,
	number, kind string,
	capacity float64,
	status Status,
	location *kernel.GeoPoint,
) (*Vehicle, error) {
	v := &Vehicle{
		status:        status,
		location:      location,
		isConstructed: true,
	}

	if err := errors.Join(
		v.setID(id),
		v.setNumber(number),
		v.setKind(kind),
		v.setCapacity(capacity),
		status.Validate(),
	); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Vehicle) Validate() error {
	if v == nil || !v.isConstructed {
		return ErrVehicleIsNotConstructed
	}
	return nil
}

func (v *Vehicle) ID() kernel.UUID            { return v.id }
func (v *Vehicle) Number() string             { return v.number }
func (v *Vehicle) Kind() string               { return v.kind }
func (v *Vehicle) Capacity() float64          { return v.capacity }
func (v *Vehicle) Status() Status             { return v.status }
func (v *Vehicle) Location() *kernel.GeoPoint { return v.location }

func (v *Vehicle) IsAvailable() bool {
	return v.status == StatusAvailable
}

// MarkInUse, MarkAvailable and MarkMaintenance report whether the status changed.
func (v *Vehicle) MarkInUse() bool {
	return v.setStatus(StatusInUse)
}

func (v *Vehicle) MarkAvailable() bool {
	return v.setStatus(StatusAvailable)
}

func (v *Vehicle) MarkMaintenance() bool {
	return v.setStatus(StatusMaintenance)
}

// Release returns an in-use vehicle to the pool when its delivery ends.
// A vehicle an admin moved to maintenance stays there.
func (v *Vehicle) Release() bool {
	if v.status != StatusInUse {
		return false
	}
	return v.setStatus(StatusAvailable)
}

// SetStatus is the admin ledger edit.
func (v *Vehicle) SetStatus(s Status) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	return v.setStatus(s), nil
}

// UpdateLocation overwrites the last known position.
func (v *Vehicle) UpdateLocation(p kernel.GeoPoint) error {
	if err := p.Validate(); err != nil {
		return err
	}
	v.location = &p
	return nil
}

func (v *Vehicle) setStatus(s Status) bool {
	if v.status == s {
		return false
	}
	v.status = s
	return true
}

func (v *Vehicle) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	v.id = id
	return nil
}

func (v *Vehicle) setNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return errs.NewValueIsRequiredError("vehicle_number")
	}
	v.number = number
	return nil
}

func (v *Vehicle) setKind(kind string) error {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return errs.NewValueIsRequiredError("vehicle_type")
	}
	v.kind = kind
	return nil
}

func (v *Vehicle) setCapacity(capacity float64) error {
	if capacity < 0 {
		return errs.NewValueIsInvalidErrorWithCause("capacity", fmt.Errorf("%v is negative", capacity))
	}
	v.capacity = capacity
	return nil
}
