package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/logger"
)

const (
	DefaultQueueSize      = 1024
	DefaultPublishTimeout = 5 * time.Second
)

var (
	ErrPublishQueueFull = errors.New("publish queue is full")
	ErrPublisherClosed  = errors.New("publisher is closed")
)

var _ ports.EventPublisher = (*BackgroundPublisher)(nil)

// BackgroundPublisher queues event batches and writes them from one goroutine,
// so Publish never waits for the broker. A full queue drops the batch.
// Batches are written in the order they were queued.
type BackgroundPublisher struct {
	next    ports.EventPublisher
	timeout time.Duration
	log     logger.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan []kernel.DomainEvent
	done   chan struct{}
}

// NewBackgroundPublisher starts the writer goroutine. Non-positive queueSize and
// timeout fall back to the defaults. Each batch gets its own timeout,
// independent of the caller's context.
func NewBackgroundPublisher(
	next ports.EventPublisher,
	queueSize int,
	timeout time.Duration,
	log logger.Logger,
) *BackgroundPublisher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}

	p := &BackgroundPublisher{
		next:    next,
		timeout: timeout,
		log:     log.With(logger.String("component", "kafka_publisher")),
		queue:   make(chan []kernel.DomainEvent, queueSize),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues a copy of events and returns immediately.
func (p *BackgroundPublisher) Publish(_ context.Context, events ...kernel.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := make([]kernel.DomainEvent, len(events))
	copy(batch, events)

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- batch:
		return nil
	default:
		return ErrPublishQueueFull
	}
}

func (p *BackgroundPublisher) run() {
	defer close(p.done)

	for batch := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.next.Publish(ctx, batch...); err != nil {
			p.log.Warn("domain events not published",
				logger.Int("count", len(batch)),
				logger.String("delivery_id", batch[0].AggregateID().String()),
				logger.Error(err),
			)
		}
		cancel()
	}
}

// Close stops accepting batches and waits until the queued ones are written
// or ctx ends.
func (p *BackgroundPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
