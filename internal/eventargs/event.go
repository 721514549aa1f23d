package eventargs

import (
	"fmt"
	"sync"
)

// Logger defines the logging interface used by Event.
type Logger interface {
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}

type subscriber[A any] struct {
	id      uint64
	handler func(A)
}

// Event is a typed multicast event. The zero value is ready to use.
//
// Handlers run synchronously on the raising goroutine. A panicking handler
// is recovered and logged; the remaining handlers still run.
//
// All methods are thread-safe.
type Event[A any] struct {
	mu     sync.RWMutex
	subs   []subscriber[A]
	nextID uint64
	logger Logger
}

// SetLogger sets the logger used to report handler panics.
func (e *Event[A]) SetLogger(logger Logger) {
	e.mu.Lock()
	e.logger = logger
	e.mu.Unlock()
}

// Subscribe adds handler and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (e *Event[A]) Subscribe(handler func(A)) (unsubscribe func()) {
	if handler == nil {
		return func() {}
	}

	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscriber[A]{id: id, handler: handler})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(id) })
	}
}

func (e *Event[A]) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.subs {
		if s.id == id {
			// Copy so in-flight Raise snapshots are unaffected.
			subs := make([]subscriber[A], 0, len(e.subs)-1)
			subs = append(subs, e.subs[:i]...)
			e.subs = append(subs, e.subs[i+1:]...)
			return
		}
	}
}

// Raise calls every current subscriber with args. Subscriptions changed by
// a handler take effect from the next Raise.
func (e *Event[A]) Raise(args A) {
	e.mu.RLock()
	subs := e.subs
	logger := e.logger
	e.mu.RUnlock()

	if logger == nil {
		logger = noopLogger{}
	}
	for _, s := range subs {
		e.call(s.handler, args, logger)
	}
}

func (e *Event[A]) call(handler func(A), args A, logger Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event handler panicked", "panic", fmt.Sprint(r))
		}
	}()
	handler(args)
}

// Len returns the number of subscribers.
func (e *Event[A]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs)
}
