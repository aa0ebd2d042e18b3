// Package bus is a synchronous in-process event bus for collision lifecycle
// and contact events.
//
// Delivery happens on the publisher's goroutine in subscription order, so a
// single-threaded simulation sees the same handler sequence on every run.
package bus

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Subscription is a handler registered for one kind.
type Subscription struct {
	id      uuid.UUID
	kind    Kind
	handler Handler
	bus     *Bus

	mu     sync.Mutex
	active bool
}

func (s *Subscription) ID() uuid.UUID { return s.id }
func (s *Subscription) Kind() Kind    { return s.kind }

func (s *Subscription) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Cancel stops delivery. Multiple calls are safe.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()
	s.bus.remove(s)
}

// Bus is safe for concurrent use.
type Bus struct {
	mu        sync.RWMutex
	subs      map[Kind][]*Subscription
	observers []Observer
	metrics   Metrics
}

func New() *Bus {
	return &Bus{subs: make(map[Kind][]*Subscription)}
}

// Subscribe registers h for kind. KindAny receives every event after the
// kind-specific subscribers.
func (b *Bus) Subscribe(kind Kind, h Handler) *Subscription {
	s := &Subscription{id: uuid.New(), kind: kind, handler: h, bus: b, active: true}
	b.mu.Lock()
	b.subs[kind] = append(b.subs[kind], s)
	b.mu.Unlock()
	return s
}

// Unsubscribe cancels s. A nil subscription is ignored.
func (b *Bus) Unsubscribe(s *Subscription) {
	if s != nil {
		s.Cancel()
	}
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[s.kind]
	if i := slices.Index(list, s); i >= 0 {
		b.subs[s.kind] = slices.Delete(list, i, i+1)
	}
}

// Publish delivers e to every active subscriber of its kind, then to the
// KindAny subscribers.
func (b *Bus) Publish(e Event) error {
	start := time.Now()
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs[e.Kind])+len(b.subs[KindAny]))
	subs = append(subs, b.subs[e.Kind]...)
	if e.Kind != KindAny {
		subs = append(subs, b.subs[KindAny]...)
	}
	observers := slices.Clone(b.observers)
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnPublish(e)
	}

	var all error
	delivered := 0
	for _, s := range subs {
		if !s.Active() {
			continue
		}
		delivered++
		if err := s.handler(e); err != nil {
			all = errors.Join(all, err)
		}
	}

	if len(observers) > 0 {
		took := time.Since(start)
		for _, obs := range observers {
			obs.OnDelivered(e, delivered, all, took)
		}
		b.mu.Lock()
		b.metrics.Published++
		b.metrics.DeliveredHandlers += uint64(delivered)
		if all != nil {
			b.metrics.Errors++
		}
		var active uint64
		for _, list := range b.subs {
			active += uint64(len(list))
		}
		b.metrics.SubscribersActive = active
		b.mu.Unlock()
	}
	return all
}

// PublishWithFilters drops e without error when any filter rejects it.
func (b *Bus) PublishWithFilters(e Event, filters ...Filter) error {
	for _, f := range filters {
		if !f(e) {
			b.mu.Lock()
			if len(b.observers) > 0 {
				b.metrics.DroppedByFilters++
			}
			b.mu.Unlock()
			return nil
		}
	}
	return b.Publish(e)
}

// PublishBatch publishes events in order and joins their errors.
func (b *Bus) PublishBatch(events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.Publish(e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *Bus) AddObserver(obs Observer) {
	b.mu.Lock()
	b.observers = append(b.observers, obs)
	b.mu.Unlock()
}

func (b *Bus) RemoveObserver(obs Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := slices.Index(b.observers, obs); i >= 0 {
		b.observers = slices.Delete(b.observers, i, i+1)
	}
}

// Metrics returns a snapshot of the counters.
func (b *Bus) Metrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

// Subscribers returns the number of registered subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, list := range b.subs {
		n += len(list)
	}
	return n
}
