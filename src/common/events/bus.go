package events

import "sync"

// Event is a broadcast signal. The concrete payload types below are the only
// events the engine emits.
type Event interface{ event() }

// JourneysChanged fires after any journey mutation has been persisted.
type JourneysChanged struct{}

// PreferencesChanged fires after a preference write takes effect.
type PreferencesChanged struct {
	Key string
}

// LocationAvailability fires whenever a location query resolves, carrying
// whether a position could be obtained.
type LocationAvailability struct {
	Available bool
}

// APIError carries the last upstream API failure. An empty message means the
// previous error has cleared. Last write wins; errors never accumulate.
type APIError struct {
	Message string
}

func (JourneysChanged) event()      {}
func (PreferencesChanged) event()   {}
func (LocationAvailability) event() {}
func (APIError) event()             {}

type subscriber struct {
	id int
	fn func(Event)
}

// Bus is a fire-and-forget in-process broadcast. Delivery is synchronous, to
// listeners in registration order; listeners kick off their own work if they
// need to do anything slow.
type Bus struct {
	mu   sync.Mutex
	subs []subscriber
	next int
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a listener and returns a cancel function that removes it.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.subs = append(b.subs, subscriber{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers the event to every current listener. Nil buses are allowed
// so components can be used standalone in tests.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(e)
	}
}
