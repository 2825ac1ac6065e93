package service

import "sync"

// EventAction names what happened to the dataset.
type EventAction string

const (
	ActionLoaded  EventAction = "loaded"
	ActionCleared EventAction = "cleared"
)

// Event is published whenever the dataset is replaced or cleared.
type Event struct {
	Action       EventAction
	Dataset      string
	FeatureCount int
}

// EventBus fans dataset events out to subscribers such as open viewer
// streams. Slow subscribers miss events rather than block loads.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish sends e to all subscribers without blocking.
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}
