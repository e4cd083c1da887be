package pipeline

import (
	"sync"
	"time"
)

// Event types emitted as an asset moves through the pipeline.
const (
	EventJobStarted     = "job.started"
	EventJobCompleted   = "job.completed"
	EventJobFailed      = "job.failed"
	EventChunkProcessed = "chunk.processed"
)

// Event is one pipeline lifecycle notification.
type Event struct {
	Type       string    `json:"type"`
	AssetID    string    `json:"asset_id"`
	ChunkIndex int       `json:"chunk_index,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Bus is an in-process publish/subscribe channel for pipeline events.
// Publishing never blocks: a subscriber that falls behind misses events
// rather than stalling the job.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[int]chan Event),
	}
}

// Subscribe registers a listener. The returned cancel func must be called to
// release the subscription.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, buffer)
	b.subscribers[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}

	return ch, cancel
}

// Publish delivers the event to all current subscribers without blocking.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
