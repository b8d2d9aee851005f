package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyTargetUser(t *testing.T) {
	hub := NewHub()

	a, cleanupA := hub.Subscribe("user-a")
	defer cleanupA()
	b, cleanupB := hub.Subscribe("user-b")
	defer cleanupB()

	hub.Publish("user-a", Event{Event: "notification", Data: "hello"})

	select {
	case ev := <-a:
		assert.Equal(t, "hello", ev.Data)
	default:
		t.Fatal("expected event for user-a")
	}

	select {
	case <-b:
		t.Fatal("user-b must not receive user-a's event")
	default:
	}
}

func TestHub_PublishToMany(t *testing.T) {
	hub := NewHub()
	a, cleanupA := hub.Subscribe("a")
	defer cleanupA()
	b, cleanupB := hub.Subscribe("b")
	defer cleanupB()

	hub.PublishToMany([]string{"a", "b"}, Event{Event: "notification"})

	evA := <-a
	evB := <-b
	assert.Equal(t, "a", evA.UserID)
	assert.Equal(t, "b", evB.UserID)
}

func TestHub_CleanupAndCounts(t *testing.T) {
	hub := NewHub()
	_, c1 := hub.Subscribe("u")
	_, c2 := hub.Subscribe("u")
	_, c3 := hub.Subscribe("v")

	assert.Equal(t, 2, hub.SubscriberCount("u"))
	assert.Equal(t, 3, hub.TotalSubscribers())

	c1()
	c1() // idempotent
	assert.Equal(t, 1, hub.SubscriberCount("u"))

	c2()
	c3()
	assert.Equal(t, 0, hub.TotalSubscribers())
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("u")
	defer cleanup()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish("u", Event{Event: "notification"})
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestHub_Close(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("u")

	hub.Close()
	_, ok := <-ch
	require.False(t, ok, "channel must be closed")
	cleanup() // must not panic after Close

	late, _ := hub.Subscribe("u")
	_, ok = <-late
	assert.False(t, ok)
}
