// Package kafka publishes committed domain events to Kafka topics.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"
	"fleet/internal/core/ports"

	skafka "github.com/segmentio/kafka-go"
)

const (
	headerEvent = "event"

	writerBatchTimeout = 10 * time.Millisecond
	writerIOTimeout    = 5 * time.Second
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Writer is the subset of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

type Topics struct {
	DeliveryEvents string
	Tracking       string
}

// Envelope is the JSON value of every message.
type Envelope struct {
	Event      string      `json:"event"`
	DeliveryID kernel.UUID `json:"delivery_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       any         `json:"data"`
}

type Publisher struct {
	writer Writer
	topics Topics
}

// NewPublisher creates a publisher writing to the given brokers. Messages are
// keyed by delivery id so events for one delivery stay ordered within a partition.
// Publish blocks until the batch is written; wrap it in a BackgroundPublisher
// on request paths.
func NewPublisher(brokers []string, topics Topics) *Publisher {
	w := &skafka.Writer{
		Addr:                   skafka.TCP(brokers...),
		Balancer:               &skafka.Hash{},
		RequiredAcks:           skafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           writerBatchTimeout,
		WriteTimeout:           writerIOTimeout,
		ReadTimeout:            writerIOTimeout,
	}
	return NewPublisherWithWriter(w, topics)
}

// NewPublisherWithWriter allows injecting a test writer.
func NewPublisherWithWriter(w Writer, topics Topics) *Publisher {
	return &Publisher{writer: w, topics: topics}
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Publish writes all events in one batch.
func (p *Publisher) Publish(ctx context.Context, events ...kernel.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]skafka.Message, 0, len(events))
	for _, event := range events {
		msg, err := p.message(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *Publisher) message(event kernel.DomainEvent) (skafka.Message, error) {
	topic := p.topics.DeliveryEvents
	var data any = event
	if e, ok := event.(tracking.PositionRecordedEvent); ok {
		topic = p.topics.Tracking
		data = e.Sample
	}

	value, err := json.Marshal(Envelope{
		Event:      event.EventName(),
		DeliveryID: event.AggregateID(),
		OccurredAt: event.OccurredAt().UTC(),
		Data:       data,
	})
	if err != nil {
		return skafka.Message{}, fmt.Errorf("marshal %s: %w", event.EventName(), err)
	}

	return skafka.Message{
		Topic:   topic,
		Key:     []byte(event.AggregateID().String()),
		Value:   value,
		Headers: []skafka.Header{{Key: headerEvent, Value: []byte(event.EventName())}},
	}, nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
