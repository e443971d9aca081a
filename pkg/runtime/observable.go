// Package runtime is the notification runtime generated code depends on.
// A model embedding Observable gains the Notify method its generated
// setters call; the engine itself never imports this package, only
// emitted code and the programs that consume it do.
package runtime

import (
	"sync"

	"github.com/google/uuid"
)

// Notifier is the capability contract generated setters target. A setter
// calls Notify once per affected property after a stored value actually
// changed. Implementations must tolerate repeated calls with the same
// name and must not block the caller.
type Notifier interface {
	Notify(property string)
}

var _ Notifier = (*Observable)(nil)

type listener struct {
	id uuid.UUID
	fn func(property string)
}

// Observable is the embeddable notification hub. The zero value is ready
// to use; generated models embed it by value and inherit Notify through
// promotion.
type Observable struct {
	mu        sync.Mutex
	listeners []listener
}

// Subscribe registers a listener and returns the id that cancels it.
// Listeners fire in registration order on every notification.
func (o *Observable) Subscribe(fn func(property string)) uuid.UUID {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := uuid.New()
	o.listeners = append(o.listeners, listener{id: id, fn: fn})
	return id
}

// Unsubscribe removes the listener registered under id. Unknown ids are
// ignored, so cancelling twice is safe.
func (o *Observable) Unsubscribe(id uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, l := range o.listeners {
		if l.id == id {
			o.listeners = append(o.listeners[:i], o.listeners[i+1:]...)
			return
		}
	}
}

// Notify delivers a property change to every listener in registration
// order. The listener set is snapshotted under the lock and invoked
// outside it, so a listener may subscribe or unsubscribe from inside its
// own callback without deadlocking; such changes take effect on the next
// notification.
func (o *Observable) Notify(property string) {
	o.mu.Lock()
	snapshot := make([]func(string), len(o.listeners))
	for i, l := range o.listeners {
		snapshot[i] = l.fn
	}
	o.mu.Unlock()

	for _, fn := range snapshot {
		fn(property)
	}
}

// ListenerCount reports how many listeners are currently registered
func (o *Observable) ListenerCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.listeners)
}
