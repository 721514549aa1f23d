package remap

import "testing"

func BenchmarkRemapToDouble(b *testing.B) {
	v := Of(uint16(12345))
	for i := 0; i < b.N; i++ {
		RemapToDouble(v)
	}
}

func BenchmarkRemapFromDouble(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RemapFromDouble(1e300, Uint16)
	}
}

func BenchmarkRemap_Uint8ToInt16(b *testing.B) {
	v := Of(uint8(200))
	for i := 0; i < b.N; i++ {
		Remap(v, Int16)
	}
}

func BenchmarkClampMinMaxThenRemap(b *testing.B) {
	r := Range{Min: -20, Max: 40}
	v := Of(21.5)
	for i := 0; i < b.N; i++ {
		r.ClampMinMaxThenRemap(v, Int16)
	}
}

func BenchmarkTableEncode(b *testing.B) {
	table := NewTable().MustRegister(Binding{ID: "level", Range: Range{Max: 100}, Kind: Uint8})
	for i := 0; i < b.N; i++ {
		table.Encode("level", 42) //nolint:errcheck // benchmark
	}
}
