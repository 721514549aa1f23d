package remap

import (
	"errors"
	"math"
	"testing"
)

func TestNewRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		wantErr  bool
	}{
		{"ordered", 0, 100, false},
		{"inverted", 100, 0, false},
		{"degenerate", 5, 5, false},
		{"NaN min", math.NaN(), 1, true},
		{"Inf max", 0, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRange(tt.min, tt.max)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRange(%g, %g) error = %v, wantErr %v", tt.min, tt.max, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRange) {
				t.Errorf("error = %v, want ErrInvalidRange", err)
			}
		})
	}
}

func TestRange_ClampAndContains(t *testing.T) {
	r := Range{Min: -20, Max: 40}
	inv := Range{Min: 40, Max: -20}

	tests := []struct {
		name         string
		r            Range
		in           float64
		want         float64
		wantContains bool
	}{
		{"inside", r, 21.5, 21.5, true},
		{"lower bound", r, -20, -20, true},
		{"below", r, -30, -20, false},
		{"above", r, 45, 40, false},
		{"NaN is zero", r, math.NaN(), 0, false},
		{"inverted inside", inv, 0, 0, true},
		{"inverted above", inv, 100, 40, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Clamp(tt.in); got != tt.want {
				t.Errorf("%v.Clamp(%g) = %g, want %g", tt.r, tt.in, got, tt.want)
			}
			if got := tt.r.Contains(tt.in); got != tt.wantContains {
				t.Errorf("%v.Contains(%g) = %v, want %v", tt.r, tt.in, got, tt.wantContains)
			}
		})
	}
}

// ─── Engineering -> wire ───────────────────────────────────────────

func TestRange_ClampMinMaxThenRemap(t *testing.T) {
	pct := Range{Min: 0, Max: 100}

	tests := []struct {
		name string
		r    Range
		v    Value
		kind Kind
		want any
	}{
		{"midpoint uint16", pct, Of(50.0), Uint16, uint16(32767)},
		{"max uint16", pct, Of(100.0), Uint16, uint16(65535)},
		{"above max clamps", pct, Of(150.0), Uint16, uint16(65535)},
		{"below min clamps", pct, Of(-10.0), Uint16, uint16(0)},
		{"min uint16", pct, Of(0.0), Uint16, uint16(0)},
		{"integer input", pct, Of(int32(100)), Uint16, uint16(65535)},
		{"wire max input clamps to max", pct, Of(uint16(65535)), Uint16, uint16(65535)},
		{"midpoint uint8", pct, Of(50.0), Uint8, uint8(127)},
		{"midpoint int16", pct, Of(50.0), Int16, int16(0)},
		{"min int16", pct, Of(0.0), Int16, int16(-32768)},
		{"temperature uint8", Range{Min: -20, Max: 40}, Of(10.0), Uint8, uint8(127)},
		{"inverted min", Range{Min: 100, Max: 0}, Of(100.0), Uint8, uint8(0)},
		{"inverted max", Range{Min: 100, Max: 0}, Of(0.0), Uint8, uint8(255)},
		{"inverted quarter", Range{Min: 100, Max: 0}, Of(25.0), Uint8, uint8(191)},
		{"degenerate", Range{Min: 5, Max: 5}, Of(7.0), Uint8, uint8(0)},
		{"NaN is zero", Range{Min: -10, Max: 10}, Of(math.NaN()), Uint8, uint8(127)},
		{"float32 max", pct, Of(100.0), Float32, float32(math.MaxFloat32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.r.ClampMinMaxThenRemap(tt.v, tt.kind)
			if got.Interface() != tt.want {
				t.Errorf("%v.ClampMinMaxThenRemap(%v, %s) = %v, want %v",
					tt.r, tt.v, tt.kind, got.Interface(), tt.want)
			}
		})
	}
}

func TestRange_ClampMinMaxThenRemap_InvalidKind(t *testing.T) {
	r := Range{Min: 0, Max: 1}
	if got := r.ClampMinMaxThenRemap(Of(0.5), KindInvalid); got.IsValid() {
		t.Errorf("got %v, want invalid", got)
	}
}

// ─── Wire -> engineering ───────────────────────────────────────────

func TestRange_RemapMinMax(t *testing.T) {
	pct := Range{Min: 0, Max: 100}

	tests := []struct {
		name string
		r    Range
		v    Value
		want float64
		tol  float64
	}{
		{"uint8 max", pct, Of(uint8(255)), 100, 0},
		{"uint8 min", pct, Of(uint8(0)), 0, 0},
		{"uint16 midpoint", pct, Of(uint16(32767)), 49.99924, 1e-5},
		{"uint8 exact", pct, Of(uint8(51)), 20, 0},
		{"float32 max", pct, Of(float32(math.MaxFloat32)), 100, 0},
		{"signed range int16 min", Range{Min: -20, Max: 40}, Of(int16(-32768)), -20, 0},
		{"max beyond uint8", Range{Min: 0, Max: 1000}, Uint8.Max(), 1000, 0},
		{"min beyond uint8 min", Range{Min: -50, Max: 50}, Uint8.Min(), -50, 0},
		{"negative bound uint8 max", Range{Min: -50, Max: 50}, Uint8.Max(), 50, 0},
		{"wide range uint8 exact", Range{Min: 0, Max: 1000}, Of(uint8(51)), 200, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.r.RemapMinMax(tt.v)
			if got.Kind() != Float64 {
				t.Fatalf("kind = %s, want float64", got.Kind())
			}
			if math.Abs(got.Float64()-tt.want) > tt.tol {
				t.Errorf("%v.RemapMinMax(%v) = %v, want %g", tt.r, tt.v, got, tt.want)
			}
		})
	}

	if got := pct.RemapMinMax(Value{}); got.IsValid() {
		t.Errorf("RemapMinMax(invalid) = %v, want invalid", got)
	}
}

func TestRange_Scale(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		v    Value
		want float64
		tol  float64
	}{
		{"uint16 midpoint", Range{Min: 0, Max: 100}, Of(uint16(32767)), 49.99924, 1e-5},
		{"uint8 exact", Range{Min: 0, Max: 100}, Of(uint8(51)), 20, 0},
		{"int16 min", Range{Min: -20, Max: 40}, Of(int16(-32768)), -20, 0},
		{"int16 max", Range{Min: -20, Max: 40}, Of(int16(32767)), 40, 0},
		{"inverted max", Range{Min: 100, Max: 0}, Of(uint8(255)), 0, 0},
		{"invalid value", Range{Min: 3, Max: 9}, Value{}, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.r.Scale(tt.v)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("%v.Scale(%v) = %g, want %g ± %g", tt.r, tt.v, got, tt.want, tt.tol)
			}
		})
	}
}

func TestRange_String(t *testing.T) {
	if got := (Range{Min: -20, Max: 40.5}).String(); got != "[-20, 40.5]" {
		t.Errorf("String() = %q", got)
	}
}
