package registry

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/nerrad567/gray-logic-toolkit/internal/compare"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// slot identifies one registration: a capability type plus an optional key.
// The empty key is the type's unkeyed slot.
type slot struct {
	typ reflect.Type
	key string
}

func (s slot) String() string {
	if s.key == "" {
		return typeName(s.typ)
	}
	return fmt.Sprintf("%s[%q]", typeName(s.typ), s.key)
}

// Entry is one registration in a Registry snapshot.
type Entry struct {
	Type     reflect.Type
	Key      string
	Instance any
}

// TypeName returns the registered type's name, e.g. "*settings.Service".
func (e Entry) TypeName() string { return typeName(e.Type) }

// Registry maps capability types (optionally qualified by a key) to
// service instances.
//
// All public methods are thread-safe.
type Registry struct {
	mu       sync.RWMutex
	services map[slot]any
	logger   Logger
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		services: make(map[slot]any),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
}

// Add registers instance under its dynamic type.
// Returns ErrDuplicateRegistration if that type already has an instance.
func (r *Registry) Add(instance any) error {
	if isNil(instance) {
		return fmt.Errorf("%w: nil instance", ErrInvalidService)
	}
	return r.add(slot{typ: reflect.TypeOf(instance)}, instance)
}

// AddKeyed registers instance under (t, key). t may be an interface type
// the instance implements.
func (r *Registry) AddKeyed(t reflect.Type, key string, instance any) error {
	if t == nil {
		return fmt.Errorf("%w: nil type", ErrInvalidService)
	}
	if isNil(instance) {
		return fmt.Errorf("%w: nil instance for %s", ErrInvalidService, slot{t, key})
	}
	if it := reflect.TypeOf(instance); !it.AssignableTo(t) {
		return fmt.Errorf("%w: %s is not assignable to %s", ErrInvalidService, typeName(it), typeName(t))
	}
	return r.add(slot{typ: t, key: key}, instance)
}

func (r *Registry) add(s slot, instance any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[s]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRegistration, s)
	}
	r.services[s] = instance

	r.logger.Debug("service registered", "type", typeName(s.typ), "key", s.key)
	return nil
}

// Lookup returns the instance in t's unkeyed slot.
// Returns ErrServiceNotFound if the slot is empty.
func (r *Registry) Lookup(t reflect.Type) (any, error) {
	return r.LookupKeyed(t, "")
}

// LookupKeyed returns the instance registered under (t, key).
// Returns ErrServiceNotFound if the slot is empty.
func (r *Registry) LookupKeyed(t reflect.Type, key string) (any, error) {
	instance, ok := r.TryLookupKeyed(t, key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, slot{t, key})
	}
	return instance, nil
}

// TryLookup is Lookup reporting absence as false instead of an error.
func (r *Registry) TryLookup(t reflect.Type) (any, bool) {
	return r.TryLookupKeyed(t, "")
}

// TryLookupKeyed is LookupKeyed reporting absence as false instead of an error.
func (r *Registry) TryLookupKeyed(t reflect.Type, key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instance, ok := r.services[slot{typ: t, key: key}]
	return instance, ok
}

// Remove deletes the unkeyed registration for instance's dynamic type, but
// only if the registered instance is identical to instance. Pointers,
// maps, channels, slices and funcs compare by address; other values by ==.
//
// Returns whether a registration was removed.
func (r *Registry) Remove(instance any) bool {
	if isNil(instance) {
		return false
	}
	return r.removeIdentical(slot{typ: reflect.TypeOf(instance)}, instance)
}

// RemoveKeyed deletes the registration under (t, key), whatever it holds.
// Returns whether a registration was removed.
func (r *Registry) RemoveKeyed(t reflect.Type, key string) bool {
	s := slot{typ: t, key: key}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[s]; !ok {
		return false
	}
	delete(r.services, s)

	r.logger.Debug("service removed", "type", typeName(t), "key", key)
	return true
}

func (r *Registry) removeIdentical(s slot, instance any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.services[s]
	if !ok || !identical(current, instance) {
		return false
	}
	delete(r.services, s)

	r.logger.Debug("service removed", "type", typeName(s.typ), "key", s.key)
	return true
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}

// entryOrder sorts by type name, then key in natural order.
var entryOrder = compare.Chain(
	compare.By(Entry.TypeName, compare.Ordered[string]),
	compare.By(func(e Entry) string { return e.Key }, compare.Natural),
)

// Entries returns a snapshot of all registrations, sorted by type name and
// then key.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	entries := make([]Entry, 0, len(r.services))
	for s, instance := range r.services {
		entries = append(entries, Entry{Type: s.typ, Key: s.key, Instance: instance})
	}
	r.mu.RUnlock()

	slices.SortFunc(entries, entryOrder)
	return entries
}

// identical reports whether a and b are the same instance.
func identical(a, b any) (same bool) {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if !va.Type().Comparable() {
		return false
	}
	// Structs and arrays holding interface fields can still panic on ==.
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// isNil reports whether v is nil or a typed nil of a nilable kind.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
