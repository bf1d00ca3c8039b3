// Package moremath packages numeric helpers the Go standard library doesn't expose with exactly
// the semantics the WebAssembly core specification requires: NaN-propagating min/max, ties-to-even
// rounding, and the float-to-integer truncation bounds used by the trunc and trunc_sat instruction
// families (spec.md §4.1).
package moremath

import "math"

// WasmCompatMin doesn't use math.Min because that doesn't comply with the Wasm spec: either
// operand being NaN must result in NaN even if the other is -Inf.
// https://github.com/golang/go/blob/1d20a362d0ca4898d77865e314ef6f73582daef0/src/math/dim.go#L74-L91
func WasmCompatMin(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case math.IsInf(x, -1) || math.IsInf(y, -1):
		return math.Inf(-1)
	case x == 0 && x == y:
		if math.Signbit(x) {
			return x
		}
		return y
	}
	if x < y {
		return x
	}
	return y
}

// WasmCompatMax doesn't use math.Max for the same reason WasmCompatMin doesn't use math.Min.
// https://github.com/golang/go/blob/1d20a362d0ca4898d77865e314ef6f73582daef0/src/math/dim.go#L42-L59
func WasmCompatMax(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case math.IsInf(x, 1) || math.IsInf(y, 1):
		return math.Inf(1)
	case x == 0 && x == y:
		if math.Signbit(x) {
			return y
		}
		return x
	}
	if x > y {
		return x
	}
	return y
}

// WasmCompatNearestF32 implements float32 "nearest" (round-to-nearest, ties-to-even), which
// differs from math.Round (ties away from zero).
func WasmCompatNearestF32(f float32) float32 {
	return float32(wasmCompatNearest(float64(f)))
}

// WasmCompatNearestF64 implements float64 "nearest" (round-to-nearest, ties-to-even).
func WasmCompatNearestF64(f float64) float64 {
	return wasmCompatNearest(f)
}

func wasmCompatNearest(f float64) float64 {
	// math.RoundToEven already implements ties-to-even, but must still special-case the values
	// where rounding is a no-op (NaN, ±Inf, ±0) to avoid losing the sign of zero.
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return f
	}
	return math.RoundToEven(f)
}

// Float32TruncBounds returns the open-interval bounds (lo, hi) for trunc-ing a float32 into an
// integer of the given bit width: the conversion traps (spec.md §4.1) unless lo < a < hi.
// Representable float32 boundaries don't coincide with the integer extremes, hence the odd
// constants (e.g. -0x1.000002p31 rather than -0x1p31 for the i32 signed lower bound).
func Float32TruncBounds(bits int, signed bool) (lo, hi float64) {
	switch {
	case bits == 32 && signed:
		return -0x1.000002p31, 0x1.0p31
	case bits == 32 && !signed:
		return -1.0, 0x1.0p32
	case bits == 64 && signed:
		return -0x1.000002p63, 0x1.0p63
	case bits == 64 && !signed:
		return -1.0, 0x1.0p64
	}
	panic("unsupported bit width")
}

// Float64TruncBounds is Float32TruncBounds for a float64 source operand.
func Float64TruncBounds(bits int, signed bool) (lo, hi float64) {
	switch {
	case bits == 32 && signed:
		return math.MinInt32 - 1.0, math.MaxInt32 + 1.0
	case bits == 32 && !signed:
		return -1.0, math.MaxUint32 + 1.0
	case bits == 64 && signed:
		return -0x1.0000000000001p63, 0x1.0p63
	case bits == 64 && !signed:
		return -1.0, 0x1.0p64
	}
	panic("unsupported bit width")
}
