package events

import "sync"

// listener is a registered callback with its removal policy.
type listener struct {
	fn   func(payload any)
	once bool
}

// Bus is an in-process observer registry. Listeners are invoked synchronously,
// in registration order, on the goroutine that calls Emit.
type Bus struct {
	mu        sync.Mutex
	listeners map[string][]*listener
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{listeners: make(map[string][]*listener)}
}

// On registers fn for every future emission of event.
func (b *Bus) On(event string, fn func(payload any)) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[event] = append(b.listeners[event], &listener{fn: fn})
}

// Once registers fn for the next emission of event only.
// The listener is removed before fn runs, so a reentrant Emit cannot fire it twice.
func (b *Bus) Once(event string, fn func(payload any)) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[event] = append(b.listeners[event], &listener{fn: fn, once: true})
}

// Emit invokes all listeners registered for event.
// Callbacks run outside the registry lock, so they may register further listeners.
func (b *Bus) Emit(event string, payload any) {
	b.mu.Lock()
	registered := b.listeners[event]
	run := make([]*listener, 0, len(registered))
	remaining := registered[:0:0]
	for _, l := range registered {
		run = append(run, l)
		if !l.once {
			remaining = append(remaining, l)
		}
	}
	if len(remaining) == 0 {
		delete(b.listeners, event)
	} else {
		b.listeners[event] = remaining
	}
	b.mu.Unlock()

	for _, l := range run {
		l.fn(payload)
	}
}

// ListenerCount reports how many listeners are currently registered for event.
func (b *Bus) ListenerCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[event])
}
