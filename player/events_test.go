package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriberHubBroadcast(t *testing.T) {
	hub := newSubscriberHub()
	a := hub.subscribe()
	b := hub.subscribe()

	hub.sendTrackAdded(TrackAddedEvent{Track: Track{Title: "one"}})

	for _, sub := range []*Subscription{a, b} {
		select {
		case e := <-sub.TrackAdded:
			assert.Equal(t, "one", e.Track.Title)
		default:
			t.Fatal("expected event on every subscription")
		}
	}
}

func TestSubscriberHubDropsWhenFull(t *testing.T) {
	hub := newSubscriberHub()
	sub := hub.subscribe()

	// A subscriber that never drains loses events instead of blocking.
	for i := 0; i < eventBufferSize*2; i++ {
		hub.sendQueueEnded(QueueEndedEvent{})
	}

	drained := 0
	for {
		select {
		case <-sub.QueueEnded:
			drained++
			continue
		default:
		}
		break
	}
	assert.Equal(t, eventBufferSize, drained)
}

func TestUnsubscribeClosesDone(t *testing.T) {
	hub := newSubscriberHub()
	sub := hub.subscribe()

	hub.unsubscribe(sub)

	select {
	case <-sub.Done:
	default:
		t.Fatal("expected Done to be closed")
	}

	// Events after unsubscribe are not delivered.
	hub.sendTrackAdded(TrackAddedEvent{Track: Track{Title: "late"}})
	select {
	case <-sub.TrackAdded:
		t.Fatal("unexpected delivery after unsubscribe")
	default:
	}

	// Double unsubscribe must not panic.
	require.NotPanics(t, func() { hub.unsubscribe(sub) })
}
