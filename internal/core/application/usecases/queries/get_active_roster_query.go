package queries

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrGetActiveRosterQueryIsNotConstructed = errors.New(
	"GetActiveRosterQuery must be created via NewGetActiveRosterQuery constructor",
)

// RosterEntry is where one driver in transit is right now.
//
// Lat and Lng come from the driver's newest tracking sample; when the delivery
// has no sample yet they fall back to the vehicle's last-known location, in
// which case RecordedAt is nil. Both may be nil if neither exists.
type RosterEntry struct {
	DriverID       kernel.UUID
	DeliveryID     kernel.UUID
	DeliveryStatus delivery.Status
	VehicleID      *kernel.UUID
	VehicleNumber  *string
	PickupLocation string
	DropLocation   string
	Lat            *float64
	Lng            *float64
	Speed          *float64
	Heading        *float64
	RecordedAt     *time.Time
}

// GetActiveRosterQuery lists drivers with an on_route or picked_up delivery,
// one entry per driver. Admin only.
type GetActiveRosterQuery struct {
	guard guard.ConstructorGuard
}

func NewGetActiveRosterQuery(actor kernel.Actor) (GetActiveRosterQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetActiveRosterQuery{}, err
	}
	if !actor.IsAdmin() {
		return GetActiveRosterQuery{}, errs.NewAccessDeniedError("active roster", "admin role required")
	}
	return GetActiveRosterQuery{guard: guard.NewConstructorGuard()}, nil
}

func (q GetActiveRosterQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveRosterQueryIsNotConstructed)
}

type GetActiveRosterQueryHandler struct {
	db *gorm.DB
}

func NewGetActiveRosterQueryHandler(db *gorm.DB) GetActiveRosterQueryHandler {
	return GetActiveRosterQueryHandler{db: db}
}

func (h GetActiveRosterQueryHandler) Handle(ctx context.Context, query GetActiveRosterQuery) ([]RosterEntry, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			d.driver_id,
			d.id,
			d.status,
			d.vehicle_id,
			v.vehicle_number,
			d.pickup_location,
			d.drop_location,
			COALESCE(t.current_lat, v.current_location_lat),
			COALESCE(t.current_lng, v.current_location_lng),
			t.speed,
			t.heading,
			t.recorded_at
		FROM deliveries d
		LEFT JOIN vehicles v ON v.id = d.vehicle_id
		LEFT JOIN LATERAL (
			SELECT current_lat, current_lng, speed, heading, recorded_at
			FROM tracking
			WHERE tracking.delivery_id = d.id
			ORDER BY recorded_at DESC
			LIMIT 1
		) t ON true
		WHERE d.status IN ? AND d.driver_id IS NOT NULL
	`, statusValues(delivery.TrackableStatuses()...)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]RosterEntry, 0)
	for rows.Next() {
		entry, scanErr := scanRosterEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return dedupeByDriver(entries), nil
}

func scanRosterEntry(row scanner) (RosterEntry, error) {
	var (
		entry                    RosterEntry
		driverID, deliveryID     uuid.UUID
		vehicleID                *uuid.UUID
		status                   int
		number                   sql.NullString
		lat, lng, speed, heading sql.NullFloat64
		recordedAt               sql.NullTime
	)

	if err := row.Scan(
		&driverID, &deliveryID, &status, &vehicleID, &number,
		&entry.PickupLocation, &entry.DropLocation,
		&lat, &lng, &speed, &heading, &recordedAt,
	); err != nil {
		return RosterEntry{}, err
	}

	driver, driverErr := kernel.UUIDFromRaw(driverID)
	deliveryRef, deliveryErr := kernel.UUIDFromRaw(deliveryID)
	vehicleRef, vehicleErr := kernel.UUIDPtrFromRaw(vehicleID)
	if err := errors.Join(driverErr, deliveryErr, vehicleErr); err != nil {
		return RosterEntry{}, err
	}

	entry.DriverID = driver
	entry.DeliveryID = deliveryRef
	entry.DeliveryStatus = delivery.Status(status)
	entry.VehicleID = vehicleRef
	if number.Valid {
		entry.VehicleNumber = &number.String
	}
	entry.Lat, entry.Lng = nullFloat(lat), nullFloat(lng)
	entry.Speed, entry.Heading = nullFloat(speed), nullFloat(heading)
	entry.RecordedAt = nullTime(recordedAt)
	return entry, nil
}

// dedupeByDriver keeps the freshest entry of every driver. An entry with a
// sample beats one without; between two without, the first wins. The result
// is ordered by driver id.
func dedupeByDriver(entries []RosterEntry) []RosterEntry {
	freshest := make(map[kernel.UUID]RosterEntry, len(entries))
	for _, e := range entries {
		current, seen := freshest[e.DriverID]
		if !seen || fresher(e, current) {
			freshest[e.DriverID] = e
		}
	}

	out := make([]RosterEntry, 0, len(freshest))
	for _, e := range freshest {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DriverID.String() < out[j].DriverID.String()
	})
	return out
}

func fresher(a, b RosterEntry) bool {
	switch {
	case a.RecordedAt == nil:
		return false
	case b.RecordedAt == nil:
		return true
	default:
		return a.RecordedAt.After(*b.RecordedAt)
	}
}
