package remap

import (
	"fmt"
	"math"
)

// Range is a declared [Min, Max] domain for a numeric property, used to
// project engineering values onto the full range of a wire type and back.
//
// Range is an immutable value; all methods are pure.
//
// Min greater than Max describes an inverted scale: Min still maps onto
// the wire type's minimum and Max onto its maximum, and clamping uses the
// ordered interval between the two.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// NewRange returns the Range [min, max]. Non-finite bounds are rejected.
func NewRange(min, max float64) (Range, error) {
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return Range{}, fmt.Errorf("%w: bounds must be finite, got [%g, %g]", ErrInvalidRange, min, max)
	}
	return Range{Min: min, Max: max}, nil
}

// Lower returns the smaller bound.
func (r Range) Lower() float64 { return math.Min(r.Min, r.Max) }

// Upper returns the larger bound.
func (r Range) Upper() float64 { return math.Max(r.Min, r.Max) }

// Inverted reports whether Min is greater than Max.
func (r Range) Inverted() bool { return r.Min > r.Max }

// Contains reports whether f lies inside the range, bounds included.
func (r Range) Contains(f float64) bool {
	return f >= r.Lower() && f <= r.Upper()
}

// Clamp saturates f into the range. NaN is treated as 0 before clamping.
func (r Range) Clamp(f float64) float64 {
	if math.IsNaN(f) {
		f = 0
	}
	lo, hi := r.Lower(), r.Upper()
	switch {
	case f < lo:
		return lo
	case f > hi:
		return hi
	default:
		return f
	}
}

// ClampMinMaxThenRemap clamps v into [Min, Max] and linearly rescales the
// result onto the full range of k: Min lands on k's minimum, Max on k's
// maximum, both exactly.
//
// Example: Range{0, 100} with Uint16 maps 50 to 32767 and anything at or
// above 100 to 65535.
func (r Range) ClampMinMaxThenRemap(v Value, k Kind) Value {
	if !k.IsValid() {
		return Value{}
	}
	x := r.Clamp(v.Float64())
	switch x {
	case r.Min:
		return k.Min()
	case r.Max:
		return k.Max()
	}
	return Clamp(mapRange(r.Min, r.Max, k.MinFloat(), k.MaxFloat(), x), k)
}

// RemapMinMax takes v as a position in the full range of its own kind and
// rescales it onto [Min, Max]. The result is a Float64 value so bounds
// that lie outside v's kind, such as [0, 1000] for a uint8 input, are
// reached exactly.
func (r Range) RemapMinMax(v Value) Value {
	if !v.IsValid() {
		return Value{}
	}
	return floatValue(Float64, r.Scale(v))
}

// Scale is RemapMinMax as a plain float64.
// The kind's minimum maps to Min and its maximum to Max, exactly.
func (r Range) Scale(v Value) float64 {
	switch {
	case !v.IsValid():
		return r.Min
	case v.IsMin():
		return r.Min
	case v.IsMax():
		return r.Max
	}
	info := v.kind.info()
	return mapRange(info.minF, info.maxF, r.Min, r.Max, v.Float64())
}

// String formats the range as "[min, max]".
func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}
