package http

import (
	"time"

	"fleet/internal/core/application/usecases/queries"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"
)

type placeRequest struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

func (p *placeRequest) toPlace() (*kernel.Place, error) {
	if p == nil {
		return nil, nil
	}
	place, err := kernel.NewPlaceFromCoordinates(p.Address, p.Lat, p.Lng)
	if err != nil {
		return nil, err
	}
	return &place, nil
}

type newDeliveryRequest struct {
	CustomerID            *kernel.UUID  `json:"customer_id"`
	RouteID               *kernel.UUID  `json:"route_id"`
	Pickup                *placeRequest `json:"pickup"`
	Drop                  *placeRequest `json:"drop"`
	ScheduledPickupTime   *time.Time    `json:"scheduled_pickup_time"`
	ScheduledDeliveryTime *time.Time    `json:"scheduled_delivery_time"`
	Priority              string        `json:"priority"`
	PackageDetails        string        `json:"package_details"`
	RequestedVehicleType  string        `json:"requested_vehicle_type"`
	DriverID              *kernel.UUID  `json:"driver_id"`
	VehicleID             *kernel.UUID  `json:"vehicle_id"`
}

type deliveryPatchRequest struct {
	Pickup                *placeRequest `json:"pickup"`
	Drop                  *placeRequest `json:"drop"`
	ScheduledPickupTime   *time.Time    `json:"scheduled_pickup_time"`
	ScheduledDeliveryTime *time.Time    `json:"scheduled_delivery_time"`
	Priority              *string       `json:"priority"`
	PackageDetails        *string       `json:"package_details"`
	RequestedVehicleType  *string       `json:"requested_vehicle_type"`
	RouteID               *kernel.UUID  `json:"route_id"`
}

type assignmentRequest struct {
	DriverID  kernel.UUID  `json:"driver_id"`
	VehicleID *kernel.UUID `json:"vehicle_id"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type positionRequest struct {
	Lat     *float64 `json:"current_lat"`
	Lng     *float64 `json:"current_lng"`
	Speed   *float64 `json:"speed"`
	Heading *float64 `json:"heading"`
}

type newVehicleRequest struct {
	Number   string  `json:"vehicle_number"`
	Type     string  `json:"vehicle_type"`
	Capacity float64 `json:"capacity"`
}

type deliveryResponse struct {
	ID                    kernel.UUID  `json:"id"`
	CustomerID            kernel.UUID  `json:"customer_id"`
	DriverID              *kernel.UUID `json:"driver_id"`
	VehicleID             *kernel.UUID `json:"vehicle_id"`
	RouteID               *kernel.UUID `json:"route_id"`
	PickupLocation        string       `json:"pickup_location"`
	PickupLat             float64      `json:"pickup_lat"`
	PickupLng             float64      `json:"pickup_lng"`
	DropLocation          string       `json:"drop_location"`
	DropLat               float64      `json:"drop_lat"`
	DropLng               float64      `json:"drop_lng"`
	ScheduledPickupTime   *time.Time   `json:"scheduled_pickup_time"`
	ScheduledDeliveryTime *time.Time   `json:"scheduled_delivery_time"`
	ActualPickupTime      *time.Time   `json:"actual_pickup_time"`
	ActualDeliveryTime    *time.Time   `json:"actual_delivery_time"`
	Priority              string       `json:"priority"`
	PackageDetails        string       `json:"package_details"`
	RequestedVehicleType  string       `json:"requested_vehicle_type"`
	Status                string       `json:"status"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

func toDeliveryResponse(v queries.DeliveryView) deliveryResponse {
	return deliveryResponse{
		ID:                    v.ID,
		CustomerID:            v.CustomerID,
		DriverID:              v.DriverID,
		VehicleID:             v.VehicleID,
		RouteID:               v.RouteID,
		PickupLocation:        v.PickupLocation,
		PickupLat:             v.PickupLat,
		PickupLng:             v.PickupLng,
		DropLocation:          v.DropLocation,
		DropLat:               v.DropLat,
		DropLng:               v.DropLng,
		ScheduledPickupTime:   v.ScheduledPickupTime,
		ScheduledDeliveryTime: v.ScheduledDeliveryTime,
		ActualPickupTime:      v.ActualPickupTime,
		ActualDeliveryTime:    v.ActualDeliveryTime,
		Priority:              v.Priority.String(),
		PackageDetails:        v.PackageDetails,
		RequestedVehicleType:  v.RequestedVehicleType,
		Status:                v.Status.String(),
		CreatedAt:             v.CreatedAt,
		UpdatedAt:             v.UpdatedAt,
	}
}

func toDeliveryResponses(views []queries.DeliveryView) []deliveryResponse {
	out := make([]deliveryResponse, len(views))
	for i, v := range views {
		out[i] = toDeliveryResponse(v)
	}
	return out
}

type activeDeliveryResponse struct {
	deliveryResponse
	VehicleNumber      *string  `json:"vehicle_number"`
	VehicleType        *string  `json:"vehicle_type"`
	VehicleLocationLat *float64 `json:"vehicle_location_lat"`
	VehicleLocationLng *float64 `json:"vehicle_location_lng"`
}

func toActiveDeliveryResponses(views []queries.ActiveDeliveryView) []activeDeliveryResponse {
	out := make([]activeDeliveryResponse, len(views))
	for i, v := range views {
		out[i] = activeDeliveryResponse{
			deliveryResponse:   toDeliveryResponse(v.DeliveryView),
			VehicleNumber:      v.VehicleNumber,
			VehicleType:        v.VehicleType,
			VehicleLocationLat: v.VehicleLocationLat,
			VehicleLocationLng: v.VehicleLocationLng,
		}
	}
	return out
}

type recentPositionResponse struct {
	tracking.Payload
	PickupLocation string `json:"pickup_location"`
	DropLocation   string `json:"drop_location"`
	DeliveryStatus string `json:"delivery_status"`
}

func toRecentPositionResponses(views []queries.RecentPositionView) []recentPositionResponse {
	out := make([]recentPositionResponse, len(views))
	for i, v := range views {
		out[i] = recentPositionResponse{
			Payload:        v.Payload,
			PickupLocation: v.PickupLocation,
			DropLocation:   v.DropLocation,
			DeliveryStatus: v.DeliveryStatus.String(),
		}
	}
	return out
}

type rosterEntryResponse struct {
	DriverID       kernel.UUID  `json:"driver_id"`
	DeliveryID     kernel.UUID  `json:"delivery_id"`
	DeliveryStatus string       `json:"delivery_status"`
	VehicleID      *kernel.UUID `json:"vehicle_id"`
	VehicleNumber  *string      `json:"vehicle_number"`
	PickupLocation string       `json:"pickup_location"`
	DropLocation   string       `json:"drop_location"`
	Lat            *float64     `json:"current_lat"`
	Lng            *float64     `json:"current_lng"`
	Speed          *float64     `json:"speed"`
	Heading        *float64     `json:"heading"`
	RecordedAt     *time.Time   `json:"timestamp"`
}

func toRosterResponses(entries []queries.RosterEntry) []rosterEntryResponse {
	out := make([]rosterEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = rosterEntryResponse{
			DriverID:       e.DriverID,
			DeliveryID:     e.DeliveryID,
			DeliveryStatus: e.DeliveryStatus.String(),
			VehicleID:      e.VehicleID,
			VehicleNumber:  e.VehicleNumber,
			PickupLocation: e.PickupLocation,
			DropLocation:   e.DropLocation,
			Lat:            e.Lat,
			Lng:            e.Lng,
			Speed:          e.Speed,
			Heading:        e.Heading,
			RecordedAt:     e.RecordedAt,
		}
	}
	return out
}

type vehicleResponse struct {
	ID          kernel.UUID `json:"id"`
	Number      string      `json:"vehicle_number"`
	Type        string      `json:"vehicle_type"`
	Capacity    float64     `json:"capacity"`
	Status      string      `json:"status"`
	LocationLat *float64    `json:"current_location_lat"`
	LocationLng *float64    `json:"current_location_lng"`
}

func toVehicleResponse(v queries.VehicleView) vehicleResponse {
	return vehicleResponse{
		ID:          v.ID,
		Number:      v.Number,
		Type:        v.Type,
		Capacity:    v.Capacity,
		Status:      v.Status.String(),
		LocationLat: v.LocationLat,
		LocationLng: v.LocationLng,
	}
}

func toVehicleResponses(views []queries.VehicleView) []vehicleResponse {
	out := make([]vehicleResponse, len(views))
	for i, v := range views {
		out[i] = toVehicleResponse(v)
	}
	return out
}
