package remap

import "math"

// RemapToDouble linearly maps v from the full range of its kind onto the
// full float64 range. The kind's minimum maps to -math.MaxFloat64 and its
// maximum to math.MaxFloat64, exactly.
//
// Float64 values are returned unchanged.
func RemapToDouble(v Value) float64 {
	return Remap(v, Float64).Float64()
}

// RemapFromDouble is the inverse of RemapToDouble: f is interpreted as a
// position in the full float64 range and projected onto the full range of
// k. Zero maps to the midpoint of k (truncated for integer kinds, so 0
// becomes 32767 for Uint16); the float64 sentinels map to k's exact
// minimum and maximum.
func RemapFromDouble(f float64, k Kind) Value {
	return Remap(floatValue(Float64, f), k)
}

// Remap reinterprets v, a position in the full range of its own kind, as
// the equivalent position in the full range of k.
//
// Sentinels map onto sentinels exactly, and a float zero maps onto the
// exact midpoint of k. Integer destinations truncate toward zero.
// Remapping onto the same kind is the identity.
func Remap(v Value, k Kind) Value {
	if !v.IsValid() || !k.IsValid() {
		return Value{}
	}
	if v.kind == k {
		return v
	}
	switch {
	case v.IsMin():
		return k.Min()
	case v.IsMax():
		return k.Max()
	}

	src := v.kind.info()
	if src.class == classFloat {
		if f := v.Float64(); f == 0 || math.IsNaN(f) {
			return k.midpoint()
		}
	}
	dst := k.info()
	return Clamp(mapRange(src.minF, src.maxF, dst.minF, dst.maxF, v.Float64()), k)
}

// Clamp converts f into k, saturating at k's bounds instead of wrapping.
// Integer kinds truncate toward zero. NaN is treated as 0.
func Clamp(f float64, k Kind) Value {
	if math.IsNaN(f) {
		f = 0
	}

	info := k.info()
	switch info.class {
	case classSigned:
		if f <= info.minF {
			return k.Min()
		}
		if f >= info.maxF {
			return k.Max()
		}
		return signedValue(k, int64(f))
	case classUnsigned:
		if f <= 0 {
			return k.Min()
		}
		if f >= info.maxF {
			return k.Max()
		}
		return unsignedValue(k, uint64(f))
	case classFloat:
		return floatValue(k, f)
	default:
		return Value{}
	}
}

// ClampValue converts v into k, saturating at k's bounds. Conversions
// between integer kinds are exact; no float64 round trip is involved.
func ClampValue(v Value, k Kind) Value {
	if !v.IsValid() || !k.IsValid() {
		return Value{}
	}
	if v.kind == k {
		return v
	}

	dst := k.info()
	switch v.kind.info().class {
	case classSigned:
		i := int64(v.bits)
		switch dst.class {
		case classSigned:
			if lo := int64(k.Min().bits); i < lo {
				return k.Min()
			}
			if hi := int64(k.Max().bits); i > hi {
				return k.Max()
			}
			return signedValue(k, i)
		case classUnsigned:
			if i <= 0 {
				return k.Min()
			}
			if uint64(i) > k.Max().bits {
				return k.Max()
			}
			return unsignedValue(k, uint64(i))
		default:
			return floatValue(k, float64(i))
		}
	case classUnsigned:
		u := v.bits
		switch dst.class {
		case classSigned:
			if u > uint64(int64(k.Max().bits)) {
				return k.Max()
			}
			return signedValue(k, int64(u))
		case classUnsigned:
			if u > k.Max().bits {
				return k.Max()
			}
			return unsignedValue(k, u)
		default:
			return floatValue(k, float64(u))
		}
	default:
		return Clamp(v.Float64(), k)
	}
}

// mapRange linearly maps x from [fromMin, fromMax] onto [toMin, toMax].
//
// Both ends map exactly. Spans wider than the float64 range (the full
// float64 domain itself) are handled by working on half-magnitudes so no
// intermediate overflows.
func mapRange(fromMin, fromMax, toMin, toMax, x float64) float64 {
	switch {
	case x == fromMin:
		return toMin
	case x == fromMax:
		return toMax
	case fromMin == toMin && fromMax == toMax:
		return x
	case fromMin == -fromMax && toMin == -toMax:
		// Symmetric ranges (the float kinds): pure scaling keeps small
		// magnitudes that the offset form below would absorb.
		return x / fromMax * toMax
	}

	fromSpan := fromMax - fromMin
	toSpan := toMax - toMin
	if !math.IsInf(fromSpan, 0) && !math.IsInf(toSpan, 0) {
		// Multiply before dividing: for integer ranges the product is
		// exact, so exact multiples land on whole numbers.
		if n := (x - fromMin) * toSpan; !math.IsInf(n, 0) {
			return toMin + n/fromSpan
		}
	}

	p := (x/2 - fromMin/2) / (fromMax/2 - fromMin/2)
	return 2 * (toMin/2 + p*(toMax/2-toMin/2))
}

// ToDouble is RemapToDouble for a typed number.
func ToDouble[T Number](v T) float64 {
	return RemapToDouble(Of(v))
}

// FromDouble is RemapFromDouble with the destination given as a type.
func FromDouble[T Number](f float64) T {
	return As[T](RemapFromDouble(f, KindFor[T]()))
}

// ClampTo is Clamp with the destination given as a type.
func ClampTo[T Number](f float64) T {
	return As[T](Clamp(f, KindFor[T]()))
}

// RemapTo is Remap between two typed numbers.
//
// Example:
//
//	level := remap.RemapTo[uint16](uint8(255)) // 65535
func RemapTo[To, From Number](v From) To {
	return As[To](Remap(Of(v), KindFor[To]()))
}
