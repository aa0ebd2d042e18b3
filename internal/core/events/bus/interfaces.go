package bus

import (
	"time"

	"github.com/google/uuid"
)

// Kind routes an event to its subscribers.
type Kind uint8

const (
	// KindAny subscribes to every kind. Events never carry it.
	KindAny Kind = iota
	KindColliderAdded
	KindColliderRemoved
	KindContact
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindColliderAdded:
		return "collider.added"
	case KindColliderRemoved:
		return "collider.removed"
	case KindContact:
		return "collider.contact"
	default:
		return "unknown"
	}
}

// Event describes something that happened to a collider during a tick.
//
// Source is the collider the event is about. Target is the other party of
// a contact and uuid.Nil otherwise. Data carries a kind-specific payload and
// should be treated as read-only by subscribers.
type Event struct {
	Kind   Kind
	Tick   uint64
	Source uuid.UUID
	Target uuid.UUID
	Data   any
}

type (
	// Handler is invoked per delivered event. Errors are joined and returned
	// from Publish.
	Handler func(Event) error
	// Filter decides whether an event is delivered at all.
	Filter func(Event) bool
)

// Observer is notified about deliveries. Observers should return quickly.
type Observer interface {
	OnPublish(e Event)
	OnDelivered(e Event, handlers int, err error, took time.Duration)
}

// Metrics is updated only while at least one observer is registered.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	SubscribersActive uint64
}
