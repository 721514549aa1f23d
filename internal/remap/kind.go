package remap

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind identifies a primitive numeric representation.
//
// Every Kind has a full representable range whose two ends are the
// sentinels used as interpolation anchors by the remap functions.
type Kind uint8

// Supported numeric kinds.
const (
	KindInvalid Kind = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
)

// class groups kinds by how their bits are interpreted.
type class uint8

const (
	classNone class = iota
	classSigned
	classUnsigned
	classFloat
)

// kindInfo describes one Kind.
type kindInfo struct {
	name  string
	size  int // wire size in bytes
	class class

	// minF and maxF are the float64 anchors of the representable range.
	// For 64-bit integers maxF is rounded up to the next power of two.
	minF float64
	maxF float64
}

var kinds = [...]kindInfo{
	KindInvalid: {name: "invalid"},
	Int8:        {"int8", 1, classSigned, math.MinInt8, math.MaxInt8},
	Uint8:       {"uint8", 1, classUnsigned, 0, math.MaxUint8},
	Int16:       {"int16", 2, classSigned, math.MinInt16, math.MaxInt16},
	Uint16:      {"uint16", 2, classUnsigned, 0, math.MaxUint16},
	Int32:       {"int32", 4, classSigned, math.MinInt32, math.MaxInt32},
	Uint32:      {"uint32", 4, classUnsigned, 0, math.MaxUint32},
	Int64:       {"int64", 8, classSigned, math.MinInt64, math.MaxInt64},
	Uint64:      {"uint64", 8, classUnsigned, 0, math.MaxUint64},
	Float32:     {"float32", 4, classFloat, -math.MaxFloat32, math.MaxFloat32},
	Float64:     {"float64", 8, classFloat, -math.MaxFloat64, math.MaxFloat64},
}

func (k Kind) info() kindInfo {
	if int(k) >= len(kinds) {
		return kinds[KindInvalid]
	}
	return kinds[k]
}

// IsValid reports whether k is one of the supported kinds.
func (k Kind) IsValid() bool {
	return k != KindInvalid && int(k) < len(kinds)
}

// String returns the Go type name of the kind (e.g. "uint16").
func (k Kind) String() string {
	if !k.IsValid() {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kinds[k].name
}

// Size returns the fixed wire size of the kind in bytes.
func (k Kind) Size() int {
	return k.info().size
}

// IsFloat reports whether k is a floating-point kind.
func (k Kind) IsFloat() bool { return k.info().class == classFloat }

// IsSigned reports whether k can hold negative values.
func (k Kind) IsSigned() bool {
	c := k.info().class
	return c == classSigned || c == classFloat
}

// MinFloat returns the lower interpolation anchor of k.
func (k Kind) MinFloat() float64 { return k.info().minF }

// MaxFloat returns the upper interpolation anchor of k.
func (k Kind) MaxFloat() float64 { return k.info().maxF }

// Min returns the exact minimum representable value of k.
func (k Kind) Min() Value {
	info := k.info()
	switch info.class {
	case classSigned:
		return signedValue(k, -1<<(uint(info.size)*8-1))
	case classUnsigned:
		return unsignedValue(k, 0)
	case classFloat:
		return floatValue(k, info.minF)
	default:
		return Value{}
	}
}

// Max returns the exact maximum representable value of k.
func (k Kind) Max() Value {
	info := k.info()
	switch info.class {
	case classSigned:
		return signedValue(k, 1<<(uint(info.size)*8-1)-1)
	case classUnsigned:
		return unsignedValue(k, math.MaxUint64>>(64-uint(info.size)*8))
	case classFloat:
		return floatValue(k, info.maxF)
	default:
		return Value{}
	}
}

// midpoint returns the centre of k's range, truncated toward zero for
// integer kinds. It is computed on the integer bits so 64-bit kinds stay
// exact.
func (k Kind) midpoint() Value {
	switch k.info().class {
	case classSigned:
		return signedValue(k, 0)
	case classUnsigned:
		return unsignedValue(k, k.Max().bits/2)
	case classFloat:
		return floatValue(k, 0)
	default:
		return Value{}
	}
}

// MarshalText implements encoding.TextMarshaler so kinds serialise by name
// in YAML and JSON.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// kindAliases maps accepted spellings onto kinds. Platform-width names
// ("int", "uint") are rejected: a wire schema must not change with GOARCH.
var kindAliases = map[string]Kind{
	"int8": Int8, "sbyte": Int8,
	"uint8": Uint8, "byte": Uint8,
	"int16": Int16, "short": Int16,
	"uint16": Uint16, "ushort": Uint16,
	"int32": Int32,
	"uint32": Uint32,
	"int64": Int64, "long": Int64,
	"uint64": Uint64, "ulong": Uint64,
	"float32": Float32, "single": Float32,
	"float64": Float64, "double": Float64,
}

// ParseKind parses a kind name such as "uint16" or "double".
// Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return KindInvalid, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// KindOfType returns the kind matching a reflect.Type's underlying numeric
// kind, or KindInvalid for non-numeric types.
func KindOfType(t reflect.Type) Kind {
	if t == nil {
		return KindInvalid
	}
	switch t.Kind() {
	case reflect.Int8:
		return Int8
	case reflect.Uint8:
		return Uint8
	case reflect.Int16:
		return Int16
	case reflect.Uint16:
		return Uint16
	case reflect.Int32:
		return Int32
	case reflect.Uint32:
		return Uint32
	case reflect.Int64:
		return Int64
	case reflect.Uint64:
		return Uint64
	case reflect.Int:
		return intKind()
	case reflect.Uint, reflect.Uintptr:
		return uintKind()
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	default:
		return KindInvalid
	}
}

// KindFor returns the kind of the type parameter T.
func KindFor[T Number]() Kind {
	return KindOfType(reflect.TypeFor[T]())
}

func intKind() Kind {
	if strconv.IntSize == 32 {
		return Int32
	}
	return Int64
}

func uintKind() Kind {
	if strconv.IntSize == 32 {
		return Uint32
	}
	return Uint64
}
