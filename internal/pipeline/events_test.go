package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()

	first, cancelFirst := bus.Subscribe(4)
	defer cancelFirst()
	second, cancelSecond := bus.Subscribe(4)
	defer cancelSecond()

	bus.Publish(Event{Type: EventJobStarted, AssetID: "a1"})

	got := <-first
	assert.Equal(t, EventJobStarted, got.Type)
	assert.Equal(t, "a1", got.AssetID)
	assert.False(t, got.Timestamp.IsZero())

	got = <-second
	assert.Equal(t, "a1", got.AssetID)
}

func TestBusDoesNotBlockOnFullSubscriber(t *testing.T) {
	bus := NewBus()

	slow, cancel := bus.Subscribe(1)
	defer cancel()

	// Fill the buffer, then publish more. The extra events drop instead of
	// blocking the publisher.
	bus.Publish(Event{Type: EventChunkProcessed, AssetID: "a1", ChunkIndex: 0})
	bus.Publish(Event{Type: EventChunkProcessed, AssetID: "a1", ChunkIndex: 1})
	bus.Publish(Event{Type: EventChunkProcessed, AssetID: "a1", ChunkIndex: 2})

	require.Len(t, slow, 1)
	assert.Equal(t, 0, (<-slow).ChunkIndex)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()

	events, cancel := bus.Subscribe(4)
	cancel()

	// Channel is closed on cancel and later publishes go nowhere.
	_, open := <-events
	assert.False(t, open)

	bus.Publish(Event{Type: EventJobCompleted, AssetID: "a1"})
}
