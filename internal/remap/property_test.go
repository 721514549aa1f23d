package remap

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

// Widening to a larger integer kind and narrowing back is lossless,
// because every source step lands on an exact multiple.
func TestProperty_WidenNarrowRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		u := uint8(rapid.IntRange(0, math.MaxUint8).Draw(t, "u"))
		wide := Remap(Of(u), Uint16)
		if got := As[uint8](Remap(wide, Uint8)); got != u {
			t.Fatalf("uint8 %d -> %v -> %d", u, wide, got)
		}

		s := int8(rapid.IntRange(math.MinInt8, math.MaxInt8).Draw(t, "s"))
		wideS := Remap(Of(s), Int16)
		if got := As[int8](Remap(wideS, Int8)); got != s {
			t.Fatalf("int8 %d -> %v -> %d", s, wideS, got)
		}
	})
}

func TestProperty_RemapToDoubleMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.IntRange(0, math.MaxUint16).Draw(t, "a")
		b := rapid.IntRange(a, math.MaxUint16).Draw(t, "b")

		fa := RemapToDouble(Of(uint16(a)))
		fb := RemapToDouble(Of(uint16(b)))
		if fa > fb {
			t.Fatalf("RemapToDouble(%d) = %g > RemapToDouble(%d) = %g", a, fa, b, fb)
		}
	})
}

func TestProperty_SameKindIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		i := rapid.IntRange(math.MinInt32, math.MaxInt32).Draw(t, "i")
		v := Of(int32(i))
		if got := Remap(v, Int32); !got.Equal(v) {
			t.Fatalf("Remap(%v, int32) = %v", v, got)
		}
	})
}

func TestProperty_ClampBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// Draw well past both ends so saturation is exercised.
		f := float64(rapid.IntRange(-1000, 1000).Draw(t, "f")) / 3
		got := Clamp(f, Uint8).Float64()
		if got < 0 || got > 255 {
			t.Fatalf("Clamp(%g, uint8) = %g outside [0, 255]", f, got)
		}
		if f >= 0 && f < 255 && got != math.Trunc(f) {
			t.Fatalf("Clamp(%g, uint8) = %g, want %g", f, got, math.Trunc(f))
		}
	})
}

func TestProperty_RangeEncodeMonotonicAndInvertible(t *testing.T) {
	r := Range{Min: 0, Max: 100}
	step := (r.Max - r.Min) / math.MaxUint16

	rapid.Check(t, func(t *rapid.T) {
		a := float64(rapid.IntRange(-100, 20000).Draw(t, "a")) / 100
		b := a + float64(rapid.IntRange(0, 5000).Draw(t, "delta"))/100

		ea := r.ClampMinMaxThenRemap(Of(a), Uint16)
		eb := r.ClampMinMaxThenRemap(Of(b), Uint16)
		if ea.Uint64() > eb.Uint64() {
			t.Fatalf("encode not monotonic: %g -> %v, %g -> %v", a, ea, b, eb)
		}

		back := r.Scale(ea)
		if diff := r.Clamp(a) - back; diff < -1e-9 || diff > step*1.0001 {
			t.Fatalf("%g -> %v -> %g, error %g exceeds one step", a, ea, back, diff)
		}
	})
}
