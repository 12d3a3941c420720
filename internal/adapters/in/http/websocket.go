package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fleet/internal/adapters/relay"
	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/application/usecases/queries"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = 30 * time.Second
	wsMaxMessageSize = 4096
)

const (
	ActionJoin     = "join"
	ActionLeave    = "leave"
	ActionPosition = "position"

	EventJoined           = "joined"
	EventLeft             = "left"
	EventPositionAccepted = "position-accepted"
	EventError            = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ClientMessage is what a relay client sends. Channel is only used to join
// or leave relay.ChannelAll; otherwise DeliveryID names the channel.
type ClientMessage struct {
	Action     string   `json:"action"`
	Channel    string   `json:"channel,omitempty"`
	DeliveryID string   `json:"delivery_id,omitempty"`
	Lat        *float64 `json:"current_lat,omitempty"`
	Lng        *float64 `json:"current_lng,omitempty"`
	Speed      *float64 `json:"speed,omitempty"`
	Heading    *float64 `json:"heading,omitempty"`
}

// ServeWS handles GET /ws. The connection lives until the client leaves, stops
// answering pings, or is evicted by the hub for reading too slowly.
func (s *Server) ServeWS(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already answered with an HTTP error
		s.log.Debug("websocket upgrade failed", logger.Error(err))
		return nil
	}

	session := &wsSession{
		server: s,
		actor:  actor,
		conn:   conn,
		sub:    s.hub.Register(),
		log: s.log.With(
			logger.String("actor_id", actor.ID.String()),
			logger.String("role", actor.Role.String()),
		),
	}
	session.log.Debug("relay client connected", logger.String("subscriber_id", session.sub.ID()))

	go session.writePump()
	session.readPump(c.Request().Context())
	return nil
}

type wsSession struct {
	server *Server
	actor  kernel.Actor
	conn   *websocket.Conn
	sub    *relay.Subscriber
	log    logger.Logger
}

func (ws *wsSession) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = ws.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-ws.sub.C():
			_ = ws.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = ws.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "subscription closed"))
				return
			}
			if err := ws.conn.WriteJSON(msg); err != nil {
				ws.log.Debug("relay write failed", logger.Error(err))
				return
			}
		case <-ticker.C:
			if err := ws.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (ws *wsSession) readPump(ctx context.Context) {
	defer ws.server.hub.Unregister(ws.sub)

	ws.conn.SetReadLimit(wsMaxMessageSize)
	_ = ws.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	ws.conn.SetPongHandler(func(string) error {
		return ws.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var msg ClientMessage
		err := ws.conn.ReadJSON(&msg)
		if err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				ws.reply(EventError, Error{Kind: KindBadRequest, Message: "message is not valid JSON"})
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.log.Debug("relay client gone", logger.Error(err))
			}
			return
		}
		ws.handle(ctx, msg)
	}
}

func (ws *wsSession) handle(ctx context.Context, msg ClientMessage) {
	var err error
	switch msg.Action {
	case ActionJoin:
		err = ws.join(ctx, msg)
	case ActionLeave:
		err = ws.leave(msg)
	case ActionPosition:
		err = ws.position(ctx, msg)
	default:
		err = echo.NewHTTPError(http.StatusBadRequest, "unknown action "+msg.Action)
	}
	if err == nil {
		return
	}

	body := Classify(err)
	if body.Kind == KindInternal {
		ws.log.Error("relay action failed", logger.String("action", msg.Action), logger.Error(err))
	}
	ws.reply(EventError, body)
}

// channel resolves the target channel and checks the actor may watch it.
// Deliveries the actor cannot see are reported as not found.
func (ws *wsSession) channel(ctx context.Context, msg ClientMessage) (string, error) {
	if msg.Channel == relay.ChannelAll {
		if !ws.actor.IsAdmin() {
			return "", errs.NewAccessDeniedError("channel "+relay.ChannelAll, "admin role required")
		}
		return relay.ChannelAll, nil
	}

	id, err := deliveryID(msg)
	if err != nil {
		return "", err
	}
	query, err := queries.NewGetDeliveryQuery(ws.actor, id)
	if err != nil {
		return "", err
	}
	if _, err = ws.server.h.GetDelivery.Handle(ctx, query); err != nil {
		return "", err
	}
	return relay.DeliveryChannel(id), nil
}

func deliveryID(msg ClientMessage) (kernel.UUID, error) {
	if msg.DeliveryID == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredError("delivery_id")
	}
	id, err := kernel.UUIDFromString(msg.DeliveryID)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("delivery_id", err)
	}
	return id, nil
}

func (ws *wsSession) join(ctx context.Context, msg ClientMessage) error {
	channel, err := ws.channel(ctx, msg)
	if err != nil {
		return err
	}
	if !ws.server.hub.Join(ws.sub, channel) {
		return nil
	}
	ws.reply(EventJoined, map[string]string{"channel": channel})
	return nil
}

func (ws *wsSession) leave(msg ClientMessage) error {
	channel := relay.ChannelAll
	if msg.Channel != relay.ChannelAll {
		id, err := deliveryID(msg)
		if err != nil {
			return err
		}
		channel = relay.DeliveryChannel(id)
	}
	ws.server.hub.Leave(ws.sub, channel)
	ws.reply(EventLeft, map[string]string{"channel": channel})
	return nil
}

func (ws *wsSession) position(ctx context.Context, msg ClientMessage) error {
	id, err := deliveryID(msg)
	if err != nil {
		return err
	}
	if msg.Lat == nil || msg.Lng == nil {
		return errs.NewValueIsRequiredError("current_lat and current_lng")
	}

	cmd, err := commands.NewRecordPositionCommand(ws.actor, id, *msg.Lat, *msg.Lng, msg.Speed, msg.Heading)
	if err != nil {
		return err
	}
	payload, err := ws.server.h.RecordPosition.Handle(ctx, cmd)
	if err != nil {
		return err
	}
	ws.reply(EventPositionAccepted, payload)
	return nil
}

func (ws *wsSession) reply(event string, data any) {
	if !ws.server.hub.Notify(ws.sub, relay.Message{Event: event, Data: data}) {
		ws.log.Debug("relay reply dropped", logger.String("event", event))
	}
}
