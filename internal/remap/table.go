package remap

import (
	"fmt"
	"slices"
	"sync"

	"github.com/nerrad567/gray-logic-toolkit/internal/compare"
)

// Binding declares how one property converts between its engineering
// range and a wire kind.
type Binding struct {
	ID    string `json:"id" yaml:"id"`
	Range Range  `json:"range" yaml:"range"`
	Kind  Kind   `json:"kind" yaml:"kind"`
}

// Validate checks the binding is usable.
func (b Binding) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidBinding)
	}
	if !b.Kind.IsValid() {
		return fmt.Errorf("%w: %s: kind %s", ErrInvalidBinding, b.ID, b.Kind)
	}
	if _, err := NewRange(b.Range.Min, b.Range.Max); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidBinding, b.ID, err)
	}
	return nil
}

// Encode projects an engineering value onto the binding's wire kind.
func (b Binding) Encode(f float64) Value {
	return b.Range.ClampMinMaxThenRemap(floatValue(Float64, f), b.Kind)
}

// Decode projects a wire value back onto the engineering range.
// Values of another kind are first saturated into the binding's kind.
func (b Binding) Decode(v Value) float64 {
	return b.Range.Scale(ClampValue(v, b.Kind))
}

// Table is a concurrency-safe set of bindings keyed by property ID.
//
// It replaces per-property attribute metadata with an explicit
// declaration that is built once (typically from a schema) and then
// consulted on every conversion.
type Table struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

// NewTable creates an empty binding table.
func NewTable() *Table {
	return &Table{bindings: make(map[string]Binding)}
}

// Register adds a binding. Registering an ID twice fails with
// ErrDuplicateBinding.
func (t *Table) Register(b Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.bindings[b.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBinding, b.ID)
	}
	t.bindings[b.ID] = b
	return nil
}

// MustRegister is Register that panics on error. Intended for static
// tables built at init time.
func (t *Table) MustRegister(bindings ...Binding) *Table {
	for _, b := range bindings {
		if err := t.Register(b); err != nil {
			panic(err)
		}
	}
	return t
}

// Lookup returns the binding for id.
func (t *Table) Lookup(id string) (Binding, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	b, ok := t.bindings[id]
	if !ok {
		return Binding{}, fmt.Errorf("%w: %s", ErrUnknownBinding, id)
	}
	return b, nil
}

// Encode converts an engineering value for property id into its wire value.
func (t *Table) Encode(id string, f float64) (Value, error) {
	b, err := t.Lookup(id)
	if err != nil {
		return Value{}, err
	}
	return b.Encode(f), nil
}

// Decode converts a wire value for property id into its engineering value.
func (t *Table) Decode(id string, v Value) (float64, error) {
	b, err := t.Lookup(id)
	if err != nil {
		return 0, err
	}
	if !v.IsValid() {
		return 0, fmt.Errorf("%w: %s: empty value", ErrInvalidEncoding, id)
	}
	return b.Decode(v), nil
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.bindings)
}

// IDs returns all registered property IDs in natural order
// ("zone2" before "zone10").
func (t *Table) IDs() []string {
	t.mu.RLock()
	ids := make([]string, 0, len(t.bindings))
	for id := range t.bindings {
		ids = append(ids, id)
	}
	t.mu.RUnlock()

	slices.SortFunc(ids, compare.Natural)
	return ids
}
