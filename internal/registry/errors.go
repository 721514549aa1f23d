package registry

import "errors"

// Domain errors for the service registry.
var (
	// ErrDuplicateRegistration is returned when a (type, key) slot is
	// already occupied.
	ErrDuplicateRegistration = errors.New("registry: service already registered")

	// ErrServiceNotFound is returned by the strict lookups when a
	// (type, key) slot is empty.
	ErrServiceNotFound = errors.New("registry: service not found")

	// ErrInvalidService is returned for a nil instance, a nil type, or an
	// instance that is not assignable to the declared type.
	ErrInvalidService = errors.New("registry: invalid service")
)
