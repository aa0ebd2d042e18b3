package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	published int
	delivered int
	lastErr   error
}

func (o *testObserver) OnPublish(Event) { o.published++ }

func (o *testObserver) OnDelivered(_ Event, handlers int, err error, _ time.Duration) {
	o.delivered += handlers
	o.lastErr = err
}

func TestPublish_DeliversInSubscriptionOrder(t *testing.T) {
	b := New()
	var got []string
	b.Subscribe(KindAny, func(e Event) error { got = append(got, "any:"+e.Kind.String()); return nil })
	b.Subscribe(KindContact, func(Event) error { got = append(got, "first"); return nil })
	b.Subscribe(KindContact, func(Event) error { got = append(got, "second"); return nil })
	b.Subscribe(KindColliderAdded, func(Event) error { got = append(got, "added"); return nil })

	src := uuid.New()
	require.NoError(t, b.Publish(Event{Kind: KindContact, Tick: 3, Source: src}))
	assert.Equal(t, []string{"first", "second", "any:collider.contact"}, got)
}

func TestPublish_JoinsHandlerErrors(t *testing.T) {
	b := New()
	errA, errB := errors.New("a"), errors.New("b")
	b.Subscribe(KindColliderRemoved, func(Event) error { return errA })
	b.Subscribe(KindColliderRemoved, func(Event) error { return nil })
	b.Subscribe(KindColliderRemoved, func(Event) error { return errB })

	err := b.Publish(Event{Kind: KindColliderRemoved})
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	err = b.PublishBatch(Event{Kind: KindColliderAdded}, Event{Kind: KindColliderRemoved})
	assert.ErrorIs(t, err, errB)
}

func TestSubscription_Cancel(t *testing.T) {
	b := New()
	calls := 0
	s := b.Subscribe(KindContact, func(Event) error { calls++; return nil })
	assert.True(t, s.Active())
	assert.Equal(t, KindContact, s.Kind())
	assert.NotEqual(t, uuid.Nil, s.ID())

	require.NoError(t, b.Publish(Event{Kind: KindContact}))
	b.Unsubscribe(s)
	s.Cancel()
	b.Unsubscribe(nil)
	require.NoError(t, b.Publish(Event{Kind: KindContact}))

	assert.Equal(t, 1, calls)
	assert.False(t, s.Active())
	assert.Zero(t, b.Subscribers())
}

func TestPublishWithFilters(t *testing.T) {
	b := New()
	obs := &testObserver{}
	b.AddObserver(obs)
	calls := 0
	b.Subscribe(KindContact, func(Event) error { calls++; return nil })

	onlyTick := func(e Event) bool { return e.Tick%2 == 0 }
	require.NoError(t, b.PublishWithFilters(Event{Kind: KindContact, Tick: 1}, onlyTick))
	require.NoError(t, b.PublishWithFilters(Event{Kind: KindContact, Tick: 2}, onlyTick))

	assert.Equal(t, 1, calls)
	assert.EqualValues(t, 1, b.Metrics().DroppedByFilters)
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	b.Subscribe(KindColliderAdded, func(Event) error { return nil })
	require.NoError(t, b.Publish(Event{Kind: KindColliderAdded}))
	assert.Zero(t, b.Metrics().Published, "no observer, no metrics")

	obs := &testObserver{}
	b.AddObserver(obs)
	require.NoError(t, b.Publish(Event{Kind: KindColliderAdded}))
	m := b.Metrics()
	assert.EqualValues(t, 1, m.Published)
	assert.EqualValues(t, 1, m.DeliveredHandlers)
	assert.EqualValues(t, 1, m.SubscribersActive)
	assert.Equal(t, 1, obs.published)
	assert.Equal(t, 1, obs.delivered)

	b.RemoveObserver(obs)
	require.NoError(t, b.Publish(Event{Kind: KindColliderAdded}))
	assert.Equal(t, 1, obs.published)
}
