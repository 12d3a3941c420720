package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpin "fleet/internal/adapters/in/http"
	"fleet/internal/adapters/out/postgres/pgtest"
	"fleet/internal/adapters/relay"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

const testSecret = "integration-secret"

type deliveryBody struct {
	ID                 string     `json:"id"`
	Status             string     `json:"status"`
	DriverID           *string    `json:"driver_id"`
	VehicleID          *string    `json:"vehicle_id"`
	ActualPickupTime   *time.Time `json:"actual_pickup_time"`
	ActualDeliveryTime *time.Time `json:"actual_delivery_time"`
}

type errorBody struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type AppIntegrationTestSuite struct {
	suite.Suite
	database *pgtest.Database
	root     *CompositionRoot
	server   *httptest.Server
	verifier *httpin.TokenVerifier

	admin    kernel.Actor
	customer kernel.Actor
	driver   kernel.Actor
}

func (suite *AppIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	database, err := pgtest.Start(ctx)
	suite.Require().NoError(err)
	suite.database = database

	cfg := Config{
		JWTSecret:                 testSecret,
		TrackingRetentionDays:     30,
		TrackingRetentionSchedule: "0 0 3 * * *",
		RelaySubscriberBuffer:     64,
		ShutdownTimeout:           time.Second,
	}
	suite.root = NewCompositionRoot(cfg, database.DB, logger.NewNop())

	e, err := suite.root.Router(ctx)
	suite.Require().NoError(err)
	suite.server = httptest.NewServer(e)
	suite.verifier = suite.root.TokenVerifier()

	suite.admin = kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleAdmin}
	suite.customer = kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
	suite.driver = kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleDriver}
}

func (suite *AppIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())
}

func (suite *AppIntegrationTestSuite) TearDownSuite() {
	suite.root.Hub().Close()
	suite.server.Close()
	suite.Require().NoError(suite.database.Stop(context.Background()))
}

func (suite *AppIntegrationTestSuite) token(actor kernel.Actor) string {
	token, err := suite.verifier.Sign(actor, time.Hour)
	suite.Require().NoError(err)
	return token
}

func (suite *AppIntegrationTestSuite) do(actor kernel.Actor, method, path string, body any) (int, []byte) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, suite.server.URL+path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+suite.token(actor))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	return resp.StatusCode, raw
}

func (suite *AppIntegrationTestSuite) decode(raw []byte, v any) {
	suite.Require().NoError(json.Unmarshal(raw, v), string(raw))
}

func place(address string, lat, lng float64) map[string]any {
	return map[string]any{"address": address, "lat": lat, "lng": lng}
}

func (suite *AppIntegrationTestSuite) createDelivery(pickup, drop string) deliveryBody {
	status, raw := suite.do(suite.customer, http.MethodPost, "/api/v1/deliveries", map[string]any{
		"pickup":                  place("Warehouse 1", 52.52, 13.40),
		"drop":                    place("Main St 5", 52.50, 13.45),
		"scheduled_pickup_time":   pickup,
		"scheduled_delivery_time": drop,
		"priority":                "high",
	})
	suite.Require().Equal(http.StatusCreated, status, string(raw))

	var d deliveryBody
	suite.decode(raw, &d)
	return d
}

func (suite *AppIntegrationTestSuite) registerVehicle(number string) string {
	status, raw := suite.do(suite.admin, http.MethodPost, "/api/v1/vehicles", map[string]any{
		"vehicle_number": number,
		"vehicle_type":   "van",
		"capacity":       1200,
	})
	suite.Require().Equal(http.StatusCreated, status, string(raw))

	var v struct {
		ID string `json:"id"`
	}
	suite.decode(raw, &v)
	return v.ID
}

func (suite *AppIntegrationTestSuite) availableVehicleIDs() []string {
	status, raw := suite.do(suite.admin, http.MethodGet, "/api/v1/vehicles/available", nil)
	suite.Require().Equal(http.StatusOK, status, string(raw))

	var vehicles []struct {
		ID string `json:"id"`
	}
	suite.decode(raw, &vehicles)

	ids := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		ids = append(ids, v.ID)
	}
	return ids
}

func (suite *AppIntegrationTestSuite) setStatus(actor kernel.Actor, id, status string) (int, []byte) {
	return suite.do(actor, http.MethodPut, "/api/v1/deliveries/"+id+"/status", map[string]string{"status": status})
}

func (suite *AppIntegrationTestSuite) TestDeliveryLifecycle() {
	v7 := suite.registerVehicle("V7")

	first := suite.createDelivery("2025-01-01T10:00:00Z", "2025-01-01T12:00:00Z")
	suite.Equal("pending", first.Status)
	suite.Nil(first.DriverID)

	status, raw := suite.do(suite.admin, http.MethodPost, "/api/v1/deliveries/"+first.ID+"/assign", map[string]any{
		"driver_id":  suite.driver.ID.String(),
		"vehicle_id": v7,
	})
	suite.Require().Equal(http.StatusOK, status, string(raw))
	var assigned deliveryBody
	suite.decode(raw, &assigned)
	suite.Equal("assigned", assigned.Status)
	suite.NotContains(suite.availableVehicleIDs(), v7)

	second := suite.createDelivery("2025-01-01T11:00:00Z", "2025-01-01T13:00:00Z")
	status, raw = suite.do(suite.admin, http.MethodPost, "/api/v1/deliveries/"+second.ID+"/assign", map[string]any{
		"driver_id":  kernel.NewUUID().String(),
		"vehicle_id": v7,
	})
	suite.Require().Equal(http.StatusConflict, status, string(raw))
	var conflict errorBody
	suite.decode(raw, &conflict)
	suite.Equal("scheduling_conflict", conflict.Kind)
	suite.Require().Contains(conflict.Details, "conflicts")
	conflicts, ok := conflict.Details["conflicts"].([]any)
	suite.Require().True(ok)
	suite.Require().Len(conflicts, 1)
	suite.Equal(first.ID, conflicts[0].(map[string]any)["delivery_id"])

	status, raw = suite.setStatus(suite.driver, first.ID, "on_route")
	suite.Require().Equal(http.StatusOK, status, string(raw))

	status, raw = suite.setStatus(suite.driver, first.ID, "picked_up")
	suite.Require().Equal(http.StatusOK, status, string(raw))
	var pickedUp deliveryBody
	suite.decode(raw, &pickedUp)
	suite.NotNil(pickedUp.ActualPickupTime)

	status, raw = suite.setStatus(suite.driver, first.ID, "delivered")
	suite.Require().Equal(http.StatusOK, status, string(raw))
	var delivered deliveryBody
	suite.decode(raw, &delivered)
	suite.Equal("delivered", delivered.Status)
	suite.NotNil(delivered.ActualDeliveryTime)
	suite.Contains(suite.availableVehicleIDs(), v7)

	status, raw = suite.setStatus(suite.driver, first.ID, "on_route")
	suite.Require().Equal(http.StatusConflict, status, string(raw))
	var invalid errorBody
	suite.decode(raw, &invalid)
	suite.Equal("invalid_transition", invalid.Kind)
	suite.Equal("delivered", invalid.Details["current_status"])
	suite.Equal("on_route", invalid.Details["requested_status"])
}

func (suite *AppIntegrationTestSuite) TestTracking() {
	d := suite.createDelivery("2025-02-01T10:00:00Z", "2025-02-01T12:00:00Z")
	report := map[string]any{"current_lat": 52.51, "current_lng": 13.41, "speed": 32.5}

	status, raw := suite.do(suite.admin, http.MethodPost, "/api/v1/deliveries/"+d.ID+"/tracking", report)
	suite.Require().Equal(http.StatusConflict, status, string(raw))
	var pending errorBody
	suite.decode(raw, &pending)
	suite.Equal("invalid_tracking_state", pending.Kind)

	status, raw = suite.do(suite.admin, http.MethodPost, "/api/v1/deliveries/"+d.ID+"/assign", map[string]any{
		"driver_id": suite.driver.ID.String(),
	})
	suite.Require().Equal(http.StatusOK, status, string(raw))
	status, raw = suite.setStatus(suite.driver, d.ID, "on_route")
	suite.Require().Equal(http.StatusOK, status, string(raw))

	for i := 0; i < 3; i++ {
		status, raw = suite.do(suite.driver, http.MethodPost, "/api/v1/deliveries/"+d.ID+"/tracking", report)
		suite.Require().Equal(http.StatusCreated, status, string(raw))
	}

	status, raw = suite.do(suite.customer, http.MethodGet, "/api/v1/deliveries/"+d.ID+"/tracking?limit=2", nil)
	suite.Require().Equal(http.StatusOK, status, string(raw))
	var history []map[string]any
	suite.decode(raw, &history)
	suite.Len(history, 2)

	status, raw = suite.do(suite.customer, http.MethodGet, "/api/v1/deliveries/"+d.ID+"/tracking/latest", nil)
	suite.Require().Equal(http.StatusOK, status, string(raw))
	var latest map[string]any
	suite.decode(raw, &latest)
	suite.Equal(d.ID, latest["delivery_id"])
	suite.InDelta(52.51, latest["current_lat"], 1e-9)

	status, raw = suite.do(suite.admin, http.MethodGet, "/api/v1/tracking/roster", nil)
	suite.Require().Equal(http.StatusOK, status, string(raw))
	var roster []map[string]any
	suite.decode(raw, &roster)
	suite.Len(roster, 1)

	status, _ = suite.do(suite.customer, http.MethodGet, "/api/v1/tracking/roster", nil)
	suite.Equal(http.StatusForbidden, status)
}

func (suite *AppIntegrationTestSuite) TestRequestValidation() {
	status, raw := suite.do(suite.customer, http.MethodPost, "/api/v1/deliveries", map[string]any{
		"pickup": place("A", 1, 1),
	})
	suite.Equal(http.StatusBadRequest, status, string(raw))

	status, raw = suite.do(suite.customer, http.MethodPost, "/api/v1/deliveries", map[string]any{
		"pickup": place("A", 91, 1),
		"drop":   place("B", 1, 1),
	})
	suite.Equal(http.StatusUnprocessableEntity, status, string(raw))

	status, raw = suite.do(suite.customer, http.MethodGet, "/api/v1/deliveries/"+kernel.NewUUID().String(), nil)
	suite.Equal(http.StatusNotFound, status, string(raw))

	req, err := http.NewRequest(http.MethodGet, suite.server.URL+"/api/v1/deliveries", nil)
	suite.Require().NoError(err)
	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	_ = resp.Body.Close()
	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (suite *AppIntegrationTestSuite) dial(actor kernel.Actor) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(suite.server.URL, "http") + "/ws?token=" + suite.token(actor)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	suite.Require().NoError(err)
	_ = resp.Body.Close()
	return conn
}

func (suite *AppIntegrationTestSuite) readUntil(conn *websocket.Conn, event string) relay.Message {
	suite.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	for {
		var msg relay.Message
		suite.Require().NoError(conn.ReadJSON(&msg))
		if msg.Event == event {
			return msg
		}
	}
}

func (suite *AppIntegrationTestSuite) TestRelay() {
	d := suite.createDelivery("2025-03-01T10:00:00Z", "2025-03-01T12:00:00Z")
	status, raw := suite.do(suite.admin, http.MethodPost, "/api/v1/deliveries/"+d.ID+"/assign", map[string]any{
		"driver_id": suite.driver.ID.String(),
	})
	suite.Require().Equal(http.StatusOK, status, string(raw))

	watcher := suite.dial(suite.customer)
	defer watcher.Close()

	suite.Require().NoError(watcher.WriteJSON(httpin.ClientMessage{Action: httpin.ActionJoin, Channel: relay.ChannelAll}))
	denied := suite.readUntil(watcher, httpin.EventError)
	suite.Equal("forbidden", denied.Data.(map[string]any)["kind"])

	suite.Require().NoError(watcher.WriteJSON(httpin.ClientMessage{Action: httpin.ActionJoin, DeliveryID: d.ID}))
	joined := suite.readUntil(watcher, httpin.EventJoined)
	suite.Equal("delivery:"+d.ID, joined.Data.(map[string]any)["channel"])

	status, raw = suite.setStatus(suite.driver, d.ID, "on_route")
	suite.Require().Equal(http.StatusOK, status, string(raw))
	changed := suite.readUntil(watcher, "status-changed")
	suite.Equal("on_route", changed.Data.(map[string]any)["to"])

	driverConn := suite.dial(suite.driver)
	defer driverConn.Close()

	lat, lng := 52.53, 13.42
	suite.Require().NoError(driverConn.WriteJSON(httpin.ClientMessage{
		Action:     httpin.ActionPosition,
		DeliveryID: d.ID,
		Lat:        &lat,
		Lng:        &lng,
	}))
	suite.readUntil(driverConn, httpin.EventPositionAccepted)

	update := suite.readUntil(watcher, "tracking-update")
	suite.Equal("delivery:"+d.ID, update.Channel)
	suite.InDelta(lat, update.Data.(map[string]any)["current_lat"], 1e-9)
}

func TestAppIntegration(t *testing.T) {
	suite.Run(t, new(AppIntegrationTestSuite))
}
