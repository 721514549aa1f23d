package remap

import "errors"

// Domain errors for the remap package.
//
// The conversion functions themselves never fail; these errors come from
// constructors, parsing, wire decoding and the binding table.
var (
	// ErrInvalidKind is returned when a kind name or value is not recognised.
	ErrInvalidKind = errors.New("remap: invalid kind")

	// ErrUnsupportedType is returned when a dynamic value is not a number.
	ErrUnsupportedType = errors.New("remap: unsupported type")

	// ErrInvalidNumber is returned when text does not parse as a number.
	ErrInvalidNumber = errors.New("remap: invalid number")

	// ErrInvalidRange is returned when range bounds are not finite.
	ErrInvalidRange = errors.New("remap: invalid range")

	// ErrInvalidEncoding is returned when a wire frame has the wrong size.
	ErrInvalidEncoding = errors.New("remap: invalid encoding")

	// ErrDuplicateBinding is returned when a property ID is registered twice.
	ErrDuplicateBinding = errors.New("remap: binding already registered")

	// ErrUnknownBinding is returned when a property ID has no binding.
	ErrUnknownBinding = errors.New("remap: unknown binding")

	// ErrInvalidBinding is returned when a binding has an empty ID or an
	// invalid kind or range.
	ErrInvalidBinding = errors.New("remap: invalid binding")
)
