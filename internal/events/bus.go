package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carelink/clinic-scheduler/internal/models"
)

const (
	TopicAppointmentCreated = "appointment-created"
	TopicAppointmentUpdated = "appointment-updated"
)

// Event carries the full updated appointment; subscribers refresh from
// the payload instead of re-querying.
type Event struct {
	ID          uuid.UUID          `json:"id"`
	Topic       string             `json:"topic"`
	Appointment models.Appointment `json:"appointment"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// Subscription is a handle with an explicit lifecycle: callers receive
// on C and must Unsubscribe when done.
type Subscription struct {
	C chan Event

	id    int
	topic string
	bus   *Bus
}

func (s *Subscription) Unsubscribe() {
	s.bus.unsubscribe(s)
}

// Bus fans events out to subscribers per topic. Delivery is
// non-blocking: a subscriber that stops draining its channel loses
// events rather than stalling the publisher.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan Event
	buffer int
	logger zerolog.Logger
}

func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		subs:   make(map[string]map[int]chan Event),
		buffer: 16,
		logger: logger,
	}
}

func (b *Bus) Subscribe(topic string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	ch := make(chan Event, b.buffer)

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan Event)
	}
	b.subs[topic][b.nextID] = ch

	return &Subscription{C: ch, id: b.nextID, topic: topic, bus: b}
}

func (b *Bus) unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if chans, ok := b.subs[s.topic]; ok {
		if ch, ok := chans[s.id]; ok {
			delete(chans, s.id)
			close(ch)
		}
	}
}

func (b *Bus) Publish(topic string, ap models.Appointment) {
	ev := Event{
		ID:          uuid.New(),
		Topic:       topic,
		Appointment: ap,
		OccurredAt:  time.Now(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs[topic] {
		select {
		case ch <- ev:
		default:
			// slow subscriber: drop, never block the request path
			b.logger.Warn().
				Str("topic", topic).
				Int("subscriber", id).
				Msg("event dropped, subscriber buffer full")
		}
	}
}
