// Package bus provides the in-process publish/subscribe channel carrying
// live pipeline log events.
package bus

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/devteam/internal/domain"
)

// DefaultQueueSize is the per-subscriber event queue capacity.
const DefaultQueueSize = 256

// DefaultHeartbeatInterval is how often liveness pings are published.
const DefaultHeartbeatInterval = 30 * time.Second

// Subscriber is a live connection handle. Events arrive on Events() until
// the subscriber is unsubscribed or the bus is closed, at which point the
// channel is closed.
type Subscriber struct {
	id     string
	ch     chan domain.LogEvent
	mu     sync.Mutex
	closed bool
}

// ID returns the subscriber's id.
func (s *Subscriber) ID() string { return s.id }

// Events returns the subscriber's event channel. A fresh subscriber sees
// no history, only events published after subscription.
func (s *Subscriber) Events() <-chan domain.LogEvent { return s.ch }

// offer enqueues an event without ever blocking the publisher. When the
// queue is full the oldest unread events are dropped and a gap marker is
// inserted ahead of the new event.
func (s *Subscriber) offer(ev domain.LogEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.ch <- ev:
		return
	default:
	}

	// Queue full. Make room for the gap marker plus the new event.
	for i := 0; i < 2; i++ {
		select {
		case <-s.ch:
		default:
		}
	}
	gap := domain.NewLogEvent(domain.EventKindGap, domain.GapMarker+" events dropped for slow consumer")
	select {
	case s.ch <- gap:
	default:
	}
	select {
	case s.ch <- ev:
	default:
	}
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Bus fans published events out to all current subscribers. Publish never
// blocks on a slow subscriber and one subscriber's backlog never affects
// another's delivery. A heartbeat goroutine publishes liveness pings on a
// fixed schedule, independent of pipeline activity.
type Bus struct {
	mu        sync.RWMutex
	subs      map[string]*Subscriber
	queueSize int

	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Bus.
type Option func(*options)

type options struct {
	queueSize         int
	heartbeatInterval time.Duration
}

// WithQueueSize sets the per-subscriber queue capacity.
func WithQueueSize(n int) Option {
	return func(o *options) { o.queueSize = n }
}

// WithHeartbeatInterval sets the liveness ping interval.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(o *options) { o.heartbeatInterval = d }
}

// New creates a bus and starts its heartbeat timer.
func New(opts ...Option) *Bus {
	o := &options{
		queueSize:         DefaultQueueSize,
		heartbeatInterval: DefaultHeartbeatInterval,
	}
	for _, opt := range opts {
		opt(o)
	}

	b := &Bus{
		subs:      make(map[string]*Subscriber),
		queueSize: o.queueSize,
		done:      make(chan struct{}),
	}
	go b.heartbeatLoop(o.heartbeatInterval)
	return b
}

// Subscribe registers a new subscriber. The caller must eventually call
// Unsubscribe to release it.
func (b *Bus) Subscribe() *Subscriber {
	sub := &Subscriber{
		id: uuid.New().String(),
		ch: make(chan domain.LogEvent, b.queueSize),
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()

	log.Printf("INFO: subscriber %s connected to event bus", sub.id)
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call
// more than once.
func (b *Bus) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	_, ok := b.subs[sub.id]
	delete(b.subs, sub.id)
	b.mu.Unlock()

	if ok {
		sub.close()
		log.Printf("INFO: subscriber %s disconnected from event bus", sub.id)
	}
}

// Publish delivers the event to every currently-registered subscriber.
// Fire-and-forget: it never blocks and never fails.
func (b *Bus) Publish(ev domain.LogEvent) {
	b.mu.RLock()
	targets := make([]*Subscriber, 0, len(b.subs))
	for _, sub := range b.subs {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		sub.offer(ev)
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close stops the heartbeat timer and closes all subscriber channels.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.done)

		b.mu.Lock()
		subs := b.subs
		b.subs = make(map[string]*Subscriber)
		b.mu.Unlock()

		for _, sub := range subs {
			sub.close()
		}
	})
}

func (b *Bus) heartbeatLoop(interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.Publish(domain.NewLogEvent(domain.EventKindHeartbeat, domain.HeartbeatMarker+" Connection alive"))
		}
	}
}
