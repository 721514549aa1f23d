package remap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Number is the set of primitive numeric types the remap functions accept.
type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint |
		~float32 | ~float64
}

// Value is an exact, kind-tagged number.
//
// Integers are held in their native 64-bit form so the extremes of int64
// and uint64 survive without the rounding a float64 would introduce.
// Float values are always finite: NaN is stored as 0 and infinities
// saturate at the kind's maximum magnitude.
//
// The zero Value is invalid (KindInvalid).
type Value struct {
	kind Kind
	bits uint64
}

func signedValue(k Kind, v int64) Value {
	return Value{kind: k, bits: uint64(v)}
}

func unsignedValue(k Kind, v uint64) Value {
	return Value{kind: k, bits: v}
}

func floatValue(k Kind, f float64) Value {
	limit := k.info().maxF
	switch {
	case math.IsNaN(f):
		f = 0
	case f > limit:
		f = limit
	case f < -limit:
		f = -limit
	}
	if k == Float32 {
		f = float64(float32(f))
	}
	return Value{kind: k, bits: math.Float64bits(f)}
}

// Of returns the exact Value of a typed number.
func Of[T Number](v T) Value {
	k := KindFor[T]()
	switch k.info().class {
	case classSigned:
		return signedValue(k, int64(v))
	case classUnsigned:
		return unsignedValue(k, uint64(v))
	default:
		return floatValue(k, float64(v))
	}
}

// ValueOf converts a dynamically typed number into a Value.
// Named types are accepted by their underlying kind.
func ValueOf(v any) (Value, error) {
	if val, ok := v.(Value); ok {
		return val, nil
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return Value{}, fmt.Errorf("%w: nil", ErrUnsupportedType)
	}
	k := KindOfType(rv.Type())
	switch k.info().class {
	case classSigned:
		return signedValue(k, rv.Int()), nil
	case classUnsigned:
		return unsignedValue(k, rv.Uint()), nil
	case classFloat:
		return floatValue(k, rv.Float()), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// ParseValue reads s as a number of kind k, saturating at k's bounds.
// Integers are parsed exactly so 64-bit extremes are not rounded.
func ParseValue(s string, k Kind) (Value, error) {
	if !k.IsValid() {
		return Value{}, fmt.Errorf("%w: %d", ErrInvalidKind, uint8(k))
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ClampValue(signedValue(Int64, i), k), nil
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return ClampValue(unsignedValue(Uint64, u), k), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return Clamp(f, k), nil
}

// As converts v into T, saturating at T's bounds.
func As[T Number](v Value) T {
	c := ClampValue(v, KindFor[T]())
	switch c.kind.info().class {
	case classSigned:
		return T(int64(c.bits))
	case classUnsigned:
		return T(c.bits)
	default:
		return T(math.Float64frombits(c.bits))
	}
}

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v carries a supported kind.
func (v Value) IsValid() bool { return v.kind.IsValid() }

// Float64 returns v as a float64. 64-bit integers beyond 2^53 are rounded.
func (v Value) Float64() float64 {
	switch v.kind.info().class {
	case classSigned:
		return float64(int64(v.bits))
	case classUnsigned:
		return float64(v.bits)
	case classFloat:
		return math.Float64frombits(v.bits)
	default:
		return 0
	}
}

// Int64 returns v as an int64, saturating and truncating toward zero.
func (v Value) Int64() int64 {
	return int64(ClampValue(v, Int64).bits)
}

// Uint64 returns v as a uint64, saturating and truncating toward zero.
func (v Value) Uint64() uint64 {
	return ClampValue(v, Uint64).bits
}

// Interface returns v as its native Go type (int8, uint16, float32, ...).
func (v Value) Interface() any {
	switch v.kind {
	case Int8:
		return int8(int64(v.bits))
	case Uint8:
		return uint8(v.bits)
	case Int16:
		return int16(int64(v.bits))
	case Uint16:
		return uint16(v.bits)
	case Int32:
		return int32(int64(v.bits))
	case Uint32:
		return uint32(v.bits)
	case Int64:
		return int64(v.bits)
	case Uint64:
		return v.bits
	case Float32:
		return float32(math.Float64frombits(v.bits))
	case Float64:
		return math.Float64frombits(v.bits)
	default:
		return nil
	}
}

// Equal reports whether v and o have the same kind and value.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.bits == o.bits
}

// IsMin reports whether v is the minimum sentinel of its kind.
func (v Value) IsMin() bool { return v.IsValid() && v.Equal(v.kind.Min()) }

// IsMax reports whether v is the maximum sentinel of its kind.
func (v Value) IsMax() bool { return v.IsValid() && v.Equal(v.kind.Max()) }

// String formats v without loss.
func (v Value) String() string {
	return string(v.appendNumber(nil))
}

func (v Value) appendNumber(b []byte) []byte {
	switch v.kind.info().class {
	case classSigned:
		return strconv.AppendInt(b, int64(v.bits), 10)
	case classUnsigned:
		return strconv.AppendUint(b, v.bits, 10)
	case classFloat:
		bitSize := 64
		if v.kind == Float32 {
			bitSize = 32
		}
		return strconv.AppendFloat(b, math.Float64frombits(v.bits), 'g', -1, bitSize)
	default:
		return append(b, "null"...)
	}
}

// MarshalJSON encodes v as a JSON number.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.appendNumber(nil), nil
}

// Bytes returns the big-endian wire encoding of v, Size() bytes long.
func (v Value) Bytes() []byte {
	size := v.kind.Size()
	buf := make([]byte, size)
	switch {
	case v.kind == Float32:
		binary.BigEndian.PutUint32(buf, math.Float32bits(float32(math.Float64frombits(v.bits))))
	case size > 0:
		// Integers and float64 share the same layout: the low size bytes.
		for i := 0; i < size; i++ {
			buf[size-1-i] = byte(v.bits >> (8 * uint(i)))
		}
	}
	return buf
}

// DecodeValue decodes a big-endian wire frame produced by Bytes.
func DecodeValue(k Kind, data []byte) (Value, error) {
	if !k.IsValid() {
		return Value{}, fmt.Errorf("%w: %s", ErrInvalidKind, k)
	}
	if len(data) != k.Size() {
		return Value{}, fmt.Errorf("%w: %s requires %d bytes, got %d", ErrInvalidEncoding, k, k.Size(), len(data))
	}

	switch k {
	case Int8:
		return signedValue(k, int64(int8(data[0]))), nil
	case Uint8:
		return unsignedValue(k, uint64(data[0])), nil
	case Int16:
		return signedValue(k, int64(int16(binary.BigEndian.Uint16(data)))), nil
	case Uint16:
		return unsignedValue(k, uint64(binary.BigEndian.Uint16(data))), nil
	case Int32:
		return signedValue(k, int64(int32(binary.BigEndian.Uint32(data)))), nil
	case Uint32:
		return unsignedValue(k, uint64(binary.BigEndian.Uint32(data))), nil
	case Int64:
		return signedValue(k, int64(binary.BigEndian.Uint64(data))), nil
	case Uint64:
		return unsignedValue(k, binary.BigEndian.Uint64(data)), nil
	case Float32:
		return floatValue(k, float64(math.Float32frombits(binary.BigEndian.Uint32(data)))), nil
	default:
		return floatValue(k, math.Float64frombits(binary.BigEndian.Uint64(data))), nil
	}
}
