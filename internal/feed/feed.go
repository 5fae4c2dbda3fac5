// Package feed implements the change feed for data collections: a named
// channel carries insert/update/delete notifications to any number of
// subscribers. Events carry no row payload; consumers are expected to
// re-fetch whatever they care about.
package feed

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marks-app/marks/internal/metrics"
)

// Event classes.
const (
	EventInsert = "insert"
	EventUpdate = "update"
	EventDelete = "delete"
)

// Bookmarks is the channel name for the bookmarks collection.
const Bookmarks = "bookmarks"

// Event is a single change notification.
type Event struct {
	Type    string    `json:"type"`
	Channel string    `json:"channel"`
	ID      string    `json:"id"`
	At      time.Time `json:"at"`

	// Origin identifies the hub that first published the event. Used by the
	// redis bridge to avoid re-broadcasting events it injected itself.
	Origin string `json:"origin,omitempty"`
}

// subscriberBuffer bounds per-subscriber queues. A subscriber that falls
// this far behind starts losing its oldest queued events; the newest event
// is always kept so the subscriber converges on the latest state.
const subscriberBuffer = 64

// Hub fans change events out to subscribers, grouped by channel name.
type Hub struct {
	origin string
	log    *zap.Logger

	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		origin: uuid.New().String(),
		log:    log,
		subs:   make(map[string]map[*Subscription]struct{}),
	}
}

// Origin returns the hub's origin id, stamped on locally published events.
func (h *Hub) Origin() string { return h.origin }

// Publish stamps the event with the hub's origin and delivers it to every
// subscriber of the event's channel. Delivery never blocks: a full
// subscriber queue evicts its oldest event to make room, so the newest
// event is never the one lost.
func (h *Hub) Publish(ev Event) {
	if ev.Origin == "" {
		ev.Origin = h.origin
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	h.deliver(ev)
}

// Inject delivers an event that originated on another hub (via the redis
// bridge) without re-stamping its origin.
func (h *Hub) Inject(ev Event) {
	h.deliver(ev)
}

func (h *Hub) deliver(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	metrics.FeedEventsTotal.WithLabelValues(ev.Type).Inc()

	for sub := range h.subs[ev.Channel] {
		select {
		case sub.ch <- ev:
			continue
		default:
		}

		// Queue full. Evict the oldest queued event and retry once; events
		// carry no payload, so a lagging subscriber only needs the newest
		// one to know it must re-fetch.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- ev:
		default:
		}
		metrics.FeedEventsDroppedTotal.Inc()
		h.log.Warn("feed subscriber lagging, evicted oldest event",
			zap.String("channel", ev.Channel),
			zap.String("type", ev.Type))
	}
}

// Subscribe registers a new subscriber on the named channel.
func (h *Hub) Subscribe(channel string) *Subscription {
	sub := &Subscription{
		hub:     h,
		channel: channel,
		ch:      make(chan Event, subscriberBuffer),
	}

	h.mu.Lock()
	if h.subs[channel] == nil {
		h.subs[channel] = make(map[*Subscription]struct{})
	}
	h.subs[channel][sub] = struct{}{}
	h.mu.Unlock()

	metrics.FeedSubscribers.Inc()
	return sub
}

// Subscription is a live registration on a hub channel.
type Subscription struct {
	hub     *Hub
	channel string
	ch      chan Event
	once    sync.Once
}

// Events returns the subscriber's event channel. The channel is closed by
// Cancel.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Cancel detaches the subscription. It is synchronous (once Cancel returns,
// no further events are delivered) and idempotent.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs[s.channel], s)
		close(s.ch)
		s.hub.mu.Unlock()
		metrics.FeedSubscribers.Dec()
	})
}
