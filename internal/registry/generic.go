package registry

import (
	"fmt"
	"reflect"
)

// AddAs registers instance under the static type T and key. Use it to
// register against an interface:
//
//	registry.AddAs[settings.Publisher](reg, "", mqttPublisher)
func AddAs[T any](r *Registry, key string, instance T) error {
	return r.AddKeyed(reflect.TypeFor[T](), key, instance)
}

// Get returns the instance in T's unkeyed slot.
func Get[T any](r *Registry) (T, error) {
	return GetKeyed[T](r, "")
}

// GetKeyed returns the instance registered under (T, key).
func GetKeyed[T any](r *Registry, key string) (T, error) {
	var zero T
	instance, err := r.LookupKeyed(reflect.TypeFor[T](), key)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T stored under %s", ErrInvalidService, instance, reflect.TypeFor[T]())
	}
	return typed, nil
}

// TryGet is Get reporting absence as false.
func TryGet[T any](r *Registry) (T, bool) {
	return TryGetKeyed[T](r, "")
}

// TryGetKeyed is GetKeyed reporting absence as false.
func TryGetKeyed[T any](r *Registry, key string) (T, bool) {
	instance, ok := r.TryLookupKeyed(reflect.TypeFor[T](), key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := instance.(T)
	return typed, ok
}

// RemoveAs removes the registration under (T, key) if it holds instance.
func RemoveAs[T any](r *Registry, key string, instance T) bool {
	if isNil(instance) {
		return false
	}
	return r.removeIdentical(slot{typ: reflect.TypeFor[T](), key: key}, instance)
}

// MustGet is Get that panics when the service is missing. Intended for
// wiring code where a missing service is a programming error.
func MustGet[T any](r *Registry) T {
	v, err := Get[T](r)
	if err != nil {
		panic(err)
	}
	return v
}
