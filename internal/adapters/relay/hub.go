// Package relay fans committed domain events out to live subscribers.
//
// A Hub keeps an in-memory registry of subscribers and the channels they
// joined. Publishing never blocks: a subscriber whose buffer is full is
// evicted and its message stream is closed.
package relay

import (
	"sync"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/logger"
)

const (
	ChannelAll = "all"

	DefaultBuffer = 64

	deliveryChannelPrefix = "delivery:"
)

// DeliveryChannel names the channel that carries everything about one delivery.
func DeliveryChannel(id kernel.UUID) string {
	return deliveryChannelPrefix + id.String()
}

// Message is the envelope written to subscribers.
type Message struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Data    any    `json:"data"`
}

// Subscriber is one live connection. Messages are read from C until it is closed.
type Subscriber struct {
	id        string
	send      chan Message
	channels  map[string]struct{}
	closeOnce sync.Once
}

func (s *Subscriber) ID() string { return s.id }

// C returns the subscriber's message stream. It is closed on Unregister or eviction.
func (s *Subscriber) C() <-chan Message { return s.send }

func (s *Subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.send)
	})
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	channels    map[string]map[string]*Subscriber
	buffer      int
	log         logger.Logger
}

func NewHub(buffer int, log logger.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subscribers: make(map[string]*Subscriber),
		channels:    make(map[string]map[string]*Subscriber),
		buffer:      buffer,
		log:         log.With(logger.String("component", "relay_hub")),
	}
}

// Register adds a subscriber that has not joined any channel yet.
func (h *Hub) Register() *Subscriber {
	s := &Subscriber{
		id:       kernel.NewUUID().String(),
		send:     make(chan Message, h.buffer),
		channels: make(map[string]struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[s.id] = s
	return s
}

// Unregister drops the subscriber from every channel and closes its stream.
// Calling it more than once is harmless.
func (h *Hub) Unregister(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(s)
}

func (h *Hub) remove(s *Subscriber) {
	if _, ok := h.subscribers[s.id]; !ok {
		return
	}
	for channel := range s.channels {
		members := h.channels[channel]
		delete(members, s.id)
		if len(members) == 0 {
			delete(h.channels, channel)
		}
	}
	delete(h.subscribers, s.id)
	s.close()
}

// Join subscribes s to channel. It reports false when s is no longer registered.
func (h *Hub) Join(s *Subscriber, channel string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[s.id]; !ok {
		return false
	}
	members, ok := h.channels[channel]
	if !ok {
		members = make(map[string]*Subscriber)
		h.channels[channel] = members
	}
	members[s.id] = s
	s.channels[channel] = struct{}{}
	return true
}

func (h *Hub) Leave(s *Subscriber, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := s.channels[channel]; !ok {
		return
	}
	delete(s.channels, channel)
	members := h.channels[channel]
	delete(members, s.id)
	if len(members) == 0 {
		delete(h.channels, channel)
	}
}

// Publish delivers the payload to every member of channel without waiting.
func (h *Hub) Publish(channel, event string, payload any) {
	msg := Message{Channel: channel, Event: event, Data: payload}

	var slow []*Subscriber
	h.mu.RLock()
	for _, s := range h.channels[channel] {
		select {
		case s.send <- msg:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}

	h.mu.Lock()
	for _, s := range slow {
		h.remove(s)
	}
	h.mu.Unlock()

	for _, s := range slow {
		h.log.Warn("slow subscriber evicted",
			logger.String("subscriber_id", s.id),
			logger.String("channel", channel),
			logger.String("event", event),
		)
	}
}

// Notify sends msg to s alone, dropping it when the buffer is full.
func (h *Hub) Notify(s *Subscriber, msg Message) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.subscribers[s.id]; !ok {
		return false
	}
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

// Close unregisters every subscriber, ending their streams.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subscribers {
		h.remove(s)
	}
}

// Members returns how many subscribers joined channel.
func (h *Hub) Members(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// Len returns the number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
