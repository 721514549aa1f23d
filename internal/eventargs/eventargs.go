// Package eventargs provides generic event payload carriers and a typed
// multicast event.
//
// The carriers hold data only:
//
//	eventargs.Args[T]     a single value
//	eventargs.Changed[T]  a value transition (Previous -> Current)
//	eventargs.Cancel[T]   a value a handler may veto
//
// Event[A] fans a payload out to its subscribers synchronously, in
// subscription order:
//
//	var changed eventargs.Event[eventargs.Changed[Setting]]
//	unsubscribe := changed.Subscribe(func(e eventargs.Changed[Setting]) {
//	    log.Info("setting changed", "id", e.Current.ID)
//	})
//	defer unsubscribe()
package eventargs

// Args carries a single value.
type Args[T any] struct {
	Data T `json:"data"`
}

// NewArgs wraps data.
func NewArgs[T any](data T) Args[T] {
	return Args[T]{Data: data}
}

// Changed carries a value transition.
type Changed[T any] struct {
	Previous T `json:"previous"`
	Current  T `json:"current"`
}

// NewChanged returns the transition from previous to current.
func NewChanged[T any](previous, current T) Changed[T] {
	return Changed[T]{Previous: previous, Current: current}
}

// Cancel carries a value that any handler may veto. Raise it through an
// Event[*Cancel[T]] so every handler sees the same flag.
type Cancel[T any] struct {
	Data      T    `json:"data"`
	Cancelled bool `json:"cancelled"`
}

// NewCancel wraps data in a cancellable payload.
func NewCancel[T any](data T) *Cancel[T] {
	return &Cancel[T]{Data: data}
}

// Veto marks the payload as cancelled.
func (c *Cancel[T]) Veto() {
	c.Cancelled = true
}
