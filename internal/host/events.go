// Package host models the notifications a desktop host delivers to the
// background controller and the single-consumer queue that serializes them.
package host

import (
	"context"
	"sync"
)

// EventKind identifies a host notification.
type EventKind string

const (
	// MenuClicked fires when the user picks a registered menu entry.
	MenuClicked EventKind = "menu_clicked"
	// Launched fires when the user or OS asks the application to launch.
	Launched EventKind = "launched"
	// Suspend fires right before the host freezes or reclaims the process.
	Suspend EventKind = "suspend"
	// SuspendCanceled fires when a pending suspend was called off.
	SuspendCanceled EventKind = "suspend_canceled"
)

// Event is one host notification.
type Event struct {
	Kind       EventKind
	MenuItemID string // only for MenuClicked
}

// Listener handles an event. Listeners never run concurrently with each other.
type Listener func(Event)

// EventSource is where components subscribe to host notifications.
type EventSource interface {
	Subscribe(kind EventKind, fn Listener) *Subscription
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	bus  *Bus
	kind EventKind
	id   uint64
}

// Kind returns the event kind this subscription listens to.
func (s *Subscription) Kind() EventKind {
	return s.kind
}

// Remove detaches the listener. Safe to call more than once.
func (s *Subscription) Remove() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.unsubscribe(s.kind, s.id)
}

type entry struct {
	id uint64
	fn Listener
}

const defaultQueueSize = 64

// Bus delivers host events to listeners one at a time.
//
// Producers (tray goroutines, signal handlers, D-Bus watchers) call Post;
// exactly one goroutine calls Run and is the only place listeners execute.
type Bus struct {
	mu        sync.RWMutex
	listeners map[EventKind][]entry
	nextID    uint64
	queue     chan Event
	dispatch  sync.Mutex
}

// NewBus creates a bus with a queue of the given size (64 if size <= 0).
func NewBus(size int) *Bus {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Bus{
		listeners: make(map[EventKind][]entry),
		queue:     make(chan Event, size),
	}
}

// Subscribe registers fn for kind and returns its handle.
func (b *Bus) Subscribe(kind EventKind, fn Listener) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.listeners[kind] = append(b.listeners[kind], entry{id: b.nextID, fn: fn})
	return &Subscription{bus: b, kind: kind, id: b.nextID}
}

func (b *Bus) unsubscribe(kind EventKind, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.listeners[kind]
	for i, e := range list {
		if e.id == id {
			b.listeners[kind] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Listeners returns how many listeners are subscribed to kind.
func (b *Bus) Listeners(kind EventKind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[kind])
}

// Post enqueues an event for the consumer. It blocks while the queue is full
// or until ctx is done.
func (b *Bus) Post(ctx context.Context, ev Event) error {
	select {
	case b.queue <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch delivers ev synchronously on the calling goroutine, in
// subscription order. A panicking listener is not recovered.
func (b *Bus) Dispatch(ev Event) {
	b.dispatch.Lock()
	defer b.dispatch.Unlock()

	b.mu.RLock()
	list := make([]entry, len(b.listeners[ev.Kind]))
	copy(list, b.listeners[ev.Kind])
	b.mu.RUnlock()

	for _, e := range list {
		e.fn(ev)
	}
}

// Do runs fn on the calling goroutine, serialized with event delivery. It
// must not be called from a listener.
func (b *Bus) Do(fn func()) {
	b.dispatch.Lock()
	defer b.dispatch.Unlock()
	fn()
}

// Run consumes the queue until ctx is done. Only one Run may be active.
func (b *Bus) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-b.queue:
			b.Dispatch(ev)
		}
	}
}
