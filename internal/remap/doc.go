// Package remap converts numbers between primitive numeric kinds by their
// position in each kind's full representable range.
//
// A device property usually has an engineering range (0-100 %, -20-40 °C)
// and a wire representation (uint8, int16, float32). remap projects values
// between the two linearly, anchored on the sentinels of every kind:
//
//	uint16 0     -> float64 -MaxFloat64
//	uint16 65535 -> float64  MaxFloat64
//	float64 0    -> uint16 32767
//
// # Values and kinds
//
// Value is an exact, kind-tagged number. 64-bit integers are carried in
// native form so their extremes survive conversions that a float64 would
// round. Kind describes one of the ten supported representations.
//
// # Operations
//
//   - RemapToDouble / RemapFromDouble: kind range <-> float64 range
//   - Remap: kind range -> kind range
//   - Clamp / ClampValue: saturating conversion, no interpolation
//   - Range.ClampMinMaxThenRemap: engineering value -> wire value
//   - Range.RemapMinMax / Range.Scale: wire value -> engineering value
//
// None of these fail. NaN is treated as 0, infinities saturate and integer
// destinations truncate toward zero.
//
// # Bindings
//
// Table holds a Binding{Range, Kind} per property ID, so callers convert
// by name:
//
//	table := remap.NewTable().MustRegister(remap.Binding{
//	    ID:    "dimmer.level",
//	    Range: remap.Range{Min: 0, Max: 100},
//	    Kind:  remap.Uint8,
//	})
//	wire, _ := table.Encode("dimmer.level", 50) // uint8 127
//
// Thread Safety: all functions are pure; Table is safe for concurrent use.
package remap
