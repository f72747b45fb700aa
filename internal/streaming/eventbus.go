package streaming

import (
	"context"
	"strconv"
	"sync"

	"phonetracer/pkg/logger"
)

// EventBus distributes phone events to NATS and local subscribers
type EventBus struct {
	nats   *NATSPublisher
	logger *logger.Logger

	mu          sync.RWMutex
	subscribers map[string]*subscriber
	nextID      int
	closed      bool
}

type subscriber struct {
	ch  chan *PhoneEvent
	sub *Subscription
}

// NewEventBus creates a new event bus. nats may be nil.
func NewEventBus(nats *NATSPublisher, log *logger.Logger) *EventBus {
	return &EventBus{
		nats:        nats,
		logger:      log.WithComponent("event-bus"),
		subscribers: make(map[string]*subscriber),
	}
}

// Publish publishes an event to NATS and all matching local subscribers
func (eb *EventBus) Publish(ctx context.Context, event *PhoneEvent) error {
	if eb.nats != nil && eb.nats.IsConnected() {
		if err := eb.nats.Publish(ctx, event); err != nil {
			eb.logger.Warn().Err(err).Msg("failed to publish to NATS, using local broadcast only")
		}
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for id, s := range eb.subscribers {
		if !s.sub.Matches(event) {
			continue
		}
		select {
		case s.ch <- event:
		default:
			eb.logger.Debug().Str("subscriber", id).Msg("subscriber channel full, dropping event")
		}
	}

	return nil
}

// Subscribe registers a subscriber and returns its channel and an unsubscribe func
func (eb *EventBus) Subscribe(sub *Subscription) (<-chan *PhoneEvent, func()) {
	eb.mu.Lock()
	eb.nextID++
	id := strconv.Itoa(eb.nextID)
	ch := make(chan *PhoneEvent, 100)
	if eb.closed {
		close(ch)
	} else {
		eb.subscribers[id] = &subscriber{ch: ch, sub: sub}
	}
	eb.mu.Unlock()

	eb.logger.Debug().Str("subscriber_id", id).Msg("new subscriber")

	unsubscribe := func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		if s, ok := eb.subscribers[id]; ok {
			close(s.ch)
			delete(eb.subscribers, id)
			eb.logger.Debug().Str("subscriber_id", id).Msg("subscriber removed")
		}
	}

	return ch, unsubscribe
}

// SubscriberCount returns the number of active subscribers
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// Close closes all subscriber channels and the NATS connection
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.closed = true
	for id, s := range eb.subscribers {
		close(s.ch)
		delete(eb.subscribers, id)
	}

	if eb.nats != nil {
		eb.nats.Close()
	}
}
