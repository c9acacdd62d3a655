package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// Subscription identifies one registered handler. The zero value never
// matches a live handler.
type Subscription struct {
	id uint64
}

// Valid reports whether s was returned by On.
func (s Subscription) Valid() bool {
	return s.id != 0
}

type entry[T any] struct {
	id uint64
	fn func(T)
}

// Topic is a typed publish/subscribe channel. Handlers run synchronously on
// the emitting goroutine, in registration order.
type Topic[T any] struct {
	name   string
	logger *zerolog.Logger

	mu       sync.RWMutex
	nextID   uint64
	handlers []entry[T]
}

func NewTopic[T any](name string, logger *zerolog.Logger) *Topic[T] {
	return &Topic[T]{
		name:   name,
		logger: logger,
	}
}

// On registers fn and returns the handle needed to remove it.
func (t *Topic[T]) On(fn func(T)) Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	t.handlers = append(t.handlers, entry[T]{id: t.nextID, fn: fn})
	return Subscription{id: t.nextID}
}

// Off removes the handler registered under sub. It reports whether a
// handler was removed.
func (t *Topic[T]) Off(sub Subscription) bool {
	if !sub.Valid() {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i, h := range t.handlers {
		if h.id == sub.id {
			t.handlers = append(t.handlers[:i:i], t.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered handlers.
func (t *Topic[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.handlers)
}

// Emit delivers v to every handler registered at the time of the call.
// A panicking handler is logged and does not stop delivery to the rest.
func (t *Topic[T]) Emit(v T) {
	t.mu.RLock()
	handlers := make([]entry[T], len(t.handlers))
	copy(handlers, t.handlers)
	t.mu.RUnlock()

	for _, h := range handlers {
		t.dispatch(h, v)
	}
}

func (t *Topic[T]) dispatch(h entry[T], v T) {
	defer func() {
		if r := recover(); r != nil && t.logger != nil {
			t.logger.Error().
				Str("topic", t.name).
				Interface("panic", r).
				Msg("event handler panicked")
		}
	}()
	h.fn(v)
}
