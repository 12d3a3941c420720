package tracking

import (
	"errors"
	"math"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
)

const (
	MinHeading = 0.0
	MaxHeading = 360.0

	EventPositionRecorded = "tracking-update"
)

var ErrSampleIsNotConstructed = errors.New("Sample must be created via NewSample or RestoreSample")

// Reading is what a driver's device reports.
type Reading struct {
	Position kernel.GeoPoint
	Speed    *float64
	Heading  *float64
}

// NewReading validates raw coordinates, a non-negative speed (km/h) and a heading in degrees.
func NewReading(lat, lng float64, speed, heading *float64) (Reading, error) {
	point, err := kernel.NewGeoPoint(lat, lng)
	if err = errors.Join(err, checkSpeed(speed), checkHeading(heading)); err != nil {
		return Reading{}, err
	}
	return Reading{Position: point, Speed: speed, Heading: heading}, nil
}

func checkSpeed(speed *float64) error {
	if speed != nil && (math.IsNaN(*speed) || *speed < 0) {
		return errs.NewValueIsOutOfRangeError("speed", *speed, 0, "+inf")
	}
	return nil
}

func checkHeading(heading *float64) error {
	if heading != nil && (math.IsNaN(*heading) || *heading < MinHeading || *heading > MaxHeading) {
		return errs.NewValueIsOutOfRangeError("heading", *heading, MinHeading, MaxHeading)
	}
	return nil
}

// Sample is one recorded position of a delivery in transit.
type Sample struct {
	id         kernel.UUID
	deliveryID kernel.UUID
	driverID   *kernel.UUID
	vehicleID  *kernel.UUID
	reading    Reading
	recordedAt time.Time

	events        []kernel.DomainEvent
	isConstructed bool
}

// NewSample stamps the reading with the server time, at the microsecond precision
// storage keeps, and records a PositionRecordedEvent.
func NewSample(deliveryID kernel.UUID, driverID, vehicleID *kernel.UUID, r Reading, now time.Time) (*Sample, error) {
	s, err := build(kernel.NewUUID(), deliveryID, driverID, vehicleID, r, now)
	if err != nil {
		return nil, err
	}
	s.events = append(s.events, PositionRecordedEvent{Sample: s.Payload()})
	return s, nil
}

// RestoreSample rebuilds a stored sample.
func RestoreSample(
	id, deliveryID kernel.UUID,
	driverID, vehicleID *kernel.UUID,
	r Reading,
	recordedAt time.Time,
) (*Sample, error) {
	return build(id, deliveryID, driverID, vehicleID, r, recordedAt)
}

func build(
	id, deliveryID kernel.UUID,
	driverID, vehicleID *kernel.UUID,
	r Reading,
	at time.Time,
) (*Sample, error) {
	if err := errors.Join(
		id.Validate(),
		deliveryID.Validate(),
		r.Position.Validate(),
		checkSpeed(r.Speed),
		checkHeading(r.Heading),
	); err != nil {
		return nil, err
	}
	if at.IsZero() {
		return nil, errs.NewValueIsRequiredError("timestamp")
	}

	return &Sample{
		id:            id,
		deliveryID:    deliveryID,
		driverID:      driverID,
		vehicleID:     vehicleID,
		reading:       r,
		recordedAt:    at.UTC().Truncate(time.Microsecond),
		isConstructed: true,
	}, nil
}

func (s *Sample) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrSampleIsNotConstructed
	}
	return nil
}

func (s *Sample) ID() kernel.UUID           { return s.id }
func (s *Sample) DeliveryID() kernel.UUID   { return s.deliveryID }
func (s *Sample) DriverID() *kernel.UUID    { return s.driverID }
func (s *Sample) VehicleID() *kernel.UUID   { return s.vehicleID }
func (s *Sample) Position() kernel.GeoPoint { return s.reading.Position }
func (s *Sample) Speed() *float64           { return s.reading.Speed }
func (s *Sample) Heading() *float64         { return s.reading.Heading }
func (s *Sample) RecordedAt() time.Time     { return s.recordedAt }

// Payload is the published shape of the sample.
func (s *Sample) Payload() Payload {
	return Payload{
		DeliveryID: s.deliveryID,
		Lat:        s.reading.Position.Lat(),
		Lng:        s.reading.Position.Lng(),
		Speed:      s.reading.Speed,
		Heading:    s.reading.Heading,
		Timestamp:  s.recordedAt,
	}
}

func (s *Sample) DomainEvents() []kernel.DomainEvent {
	out := make([]kernel.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Sample) ClearDomainEvents() {
	s.events = nil
}

// Payload is the wire form of a sample. Timestamp marshals as RFC 3339 (ISO-8601) UTC.
type Payload struct {
	DeliveryID kernel.UUID `json:"delivery_id"`
	Lat        float64     `json:"current_lat"`
	Lng        float64     `json:"current_lng"`
	Speed      *float64    `json:"speed,omitempty"`
	Heading    *float64    `json:"heading,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// PositionRecordedEvent announces an accepted sample.
type PositionRecordedEvent struct {
	Sample Payload
}

func (e PositionRecordedEvent) EventName() string        { return EventPositionRecorded }
func (e PositionRecordedEvent) AggregateID() kernel.UUID { return e.Sample.DeliveryID }
func (e PositionRecordedEvent) OccurredAt() time.Time    { return e.Sample.Timestamp }
