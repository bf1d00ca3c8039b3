package interpreter

import (
	"math"
	"math/bits"

	"github.com/wasmlite/wasmlite/internal/moremath"
	"github.com/wasmlite/wasmlite/internal/wasm"
)

// execNumeric runs one of the comparison/arithmetic/conversion opcodes against s. Membership and
// arity both come from wasm.NumericOpcodeTable — the validator's own type-checking table — instead
// of being restated here, so the two passes cannot drift apart (spec.md §4.5's "interpreter
// sharing"). Only the arithmetic itself (evalNumeric) lives solely in this package, since
// NumericSignature carries no evaluation logic. Returns a non-nil Trap for the handful of opcodes
// that can fault at runtime (division, remainder, float-to-int conversion).
func execNumeric(s *valueStack, op byte) *wasm.Trap {
	sig, ok := wasm.NumericOpcodeTable[op]
	if !ok {
		return wasm.NewTrap(wasm.TrapKindUnreachable)
	}
	args := make([]uint64, len(sig.In))
	for i := len(args) - 1; i >= 0; i-- {
		args[i] = s.pop()
	}
	result, trap := evalNumeric(op, args)
	if trap != nil {
		return trap
	}
	s.push(result)
	return nil
}

// evalNumeric computes the single result cell an opcode in wasm.NumericOpcodeTable produces from
// its popped operands (args[0] is the deepest/first operand, matching wasm.NumericSignature.In's
// order). Every entry in that table has exactly one result cell, so a bare uint64 suffices.
func evalNumeric(op byte, args []uint64) (uint64, *wasm.Trap) {
	switch op {
	// i32 comparisons
	case 0x45: // i32.eqz
		return b2u(uint32(args[0]) == 0), nil
	case 0x46, 0x47, 0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4E, 0x4F:
		a, b := int32(uint32(args[0])), int32(uint32(args[1]))
		ua, ub := uint32(a), uint32(b)
		var r bool
		switch op {
		case 0x46:
			r = a == b
		case 0x47:
			r = a != b
		case 0x48:
			r = a < b
		case 0x49:
			r = ua < ub
		case 0x4A:
			r = a > b
		case 0x4B:
			r = ua > ub
		case 0x4C:
			r = a <= b
		case 0x4D:
			r = ua <= ub
		case 0x4E:
			r = a >= b
		case 0x4F:
			r = ua >= ub
		}
		return b2u(r), nil

	// i64 eqz + comparisons (result is an i32 slot)
	case 0x50:
		return b2u(args[0] == 0), nil
	case 0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58, 0x59, 0x5A:
		a, b := int64(args[0]), int64(args[1])
		ua, ub := uint64(a), uint64(b)
		var r bool
		switch op {
		case 0x51:
			r = a == b
		case 0x52:
			r = a != b
		case 0x53:
			r = a < b
		case 0x54:
			r = ua < ub
		case 0x55:
			r = a > b
		case 0x56:
			r = ua > ub
		case 0x57:
			r = a <= b
		case 0x58:
			r = ua <= ub
		case 0x59:
			r = a >= b
		case 0x5A:
			r = ua >= ub
		}
		return b2u(r), nil

	// f32 comparisons
	case 0x5B, 0x5C, 0x5D, 0x5E, 0x5F, 0x60:
		a, b := f32FromSlot(args[0]), f32FromSlot(args[1])
		return b2u(floatCompare(op, float64(a), float64(b), 0x5B)), nil
	// f64 comparisons
	case 0x61, 0x62, 0x63, 0x64, 0x65, 0x66:
		a, b := f64FromSlot(args[0]), f64FromSlot(args[1])
		return b2u(floatCompare(op, a, b, 0x61)), nil

	// i32 unary
	case 0x67:
		return uint64(bits.LeadingZeros32(uint32(args[0]))), nil
	case 0x68:
		return uint64(bits.TrailingZeros32(uint32(args[0]))), nil
	case 0x69:
		return uint64(bits.OnesCount32(uint32(args[0]))), nil

	// i32 binary
	case 0x6A, 0x6B, 0x6C, 0x6D, 0x6E, 0x6F, 0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78:
		r, trap := i32BinOp(op, uint32(args[0]), uint32(args[1]))
		if trap != nil {
			return 0, trap
		}
		return uint64(r), nil

	// i64 unary
	case 0x79:
		return uint64(bits.LeadingZeros64(args[0])), nil
	case 0x7A:
		return uint64(bits.TrailingZeros64(args[0])), nil
	case 0x7B:
		return uint64(bits.OnesCount64(args[0])), nil

	// i64 binary
	case 0x7C, 0x7D, 0x7E, 0x7F, 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87, 0x88, 0x89, 0x8A:
		return i64BinOp(op, args[0], args[1])

	// f32 unary
	case 0x8B, 0x8C, 0x8D, 0x8E, 0x8F, 0x90:
		return f32ToSlot(f32UnOp(op, f32FromSlot(args[0]))), nil
	// f32 binary
	case 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97, 0x98:
		return f32ToSlot(f32BinOp(op, f32FromSlot(args[0]), f32FromSlot(args[1]))), nil

	// f64 unary
	case 0x99, 0x9A, 0x9B, 0x9C, 0x9D, 0x9E:
		return f64ToSlot(f64UnOp(op, f64FromSlot(args[0]))), nil
	// f64 binary
	case 0x9F, 0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6:
		return f64ToSlot(f64BinOp(op, f64FromSlot(args[0]), f64FromSlot(args[1]))), nil

	// conversions
	case 0xA7: // i32.wrap_i64
		return uint64(uint32(args[0])), nil
	case 0xA8, 0xA9, 0xAA, 0xAB: // i32.trunc_f32_s/u, i32.trunc_f64_s/u
		return truncToInt(op, args[0])
	case 0xAC: // i64.extend_i32_s
		return uint64(int64(int32(uint32(args[0])))), nil
	case 0xAD: // i64.extend_i32_u
		return uint64(uint32(args[0])), nil
	case 0xAE, 0xAF, 0xB0, 0xB1: // i64.trunc_f32_s/u, i64.trunc_f64_s/u
		return truncToInt(op, args[0])
	case 0xB2: // f32.convert_i32_s
		return f32ToSlot(float32(int32(uint32(args[0])))), nil
	case 0xB3: // f32.convert_i32_u
		return f32ToSlot(float32(uint32(args[0]))), nil
	case 0xB4: // f32.convert_i64_s
		return f32ToSlot(float32(int64(args[0]))), nil
	case 0xB5: // f32.convert_i64_u
		return f32ToSlot(float32(args[0])), nil
	case 0xB6: // f32.demote_f64
		return f32ToSlot(float32(f64FromSlot(args[0]))), nil
	case 0xB7: // f64.convert_i32_s
		return f64ToSlot(float64(int32(uint32(args[0])))), nil
	case 0xB8: // f64.convert_i32_u
		return f64ToSlot(float64(uint32(args[0]))), nil
	case 0xB9: // f64.convert_i64_s
		return f64ToSlot(float64(int64(args[0]))), nil
	case 0xBA: // f64.convert_i64_u
		return f64ToSlot(float64(args[0])), nil
	case 0xBB: // f64.promote_f32
		return f64ToSlot(float64(f32FromSlot(args[0]))), nil
	case 0xBC: // i32.reinterpret_f32
		return uint64(uint32(args[0])), nil
	case 0xBD, 0xBE, 0xBF: // i64.reinterpret_f64, f32.reinterpret_i32, f64.reinterpret_i64: bit pattern unchanged
		return args[0], nil

	// sign-extension proposal
	case 0xC0: // i32.extend8_s
		return uint64(uint32(int32(int8(uint8(args[0]))))), nil
	case 0xC1: // i32.extend16_s
		return uint64(uint32(int32(int16(uint16(args[0]))))), nil
	case 0xC2: // i64.extend8_s
		return uint64(int64(int8(uint8(args[0])))), nil
	case 0xC3: // i64.extend16_s
		return uint64(int64(int16(uint16(args[0])))), nil
	case 0xC4: // i64.extend32_s
		return uint64(int64(int32(uint32(args[0])))), nil
	}
	return 0, nil
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func floatCompare(op byte, a, b float64, base byte) bool {
	switch op - base {
	case 0:
		return a == b
	case 1:
		return a != b
	case 2:
		return a < b
	case 3:
		return a > b
	case 4:
		return a <= b
	case 5:
		return a >= b
	}
	return false
}

func i32BinOp(op byte, a, b uint32) (uint32, *wasm.Trap) {
	sa, sb := int32(a), int32(b)
	switch op {
	case 0x6A:
		return a + b, nil
	case 0x6B:
		return a - b, nil
	case 0x6C:
		return a * b, nil
	case 0x6D: // div_s
		if b == 0 {
			return 0, wasm.NewTrap(wasm.TrapKindIntegerDivideByZero)
		}
		if sa == math.MinInt32 && sb == -1 {
			return 0, wasm.NewTrap(wasm.TrapKindIntegerOverflow)
		}
		return uint32(sa / sb), nil
	case 0x6E: // div_u
		if b == 0 {
			return 0, wasm.NewTrap(wasm.TrapKindIntegerDivideByZero)
		}
		return a / b, nil
	case 0x6F: // rem_s
		if b == 0 {
			return 0, wasm.NewTrap(wasm.TrapKindIntegerDivideByZero)
		}
		if sa == math.MinInt32 && sb == -1 {
			return 0, nil
		}
		return uint32(sa % sb), nil
	case 0x70: // rem_u
		if b == 0 {
			return 0, wasm.NewTrap(wasm.TrapKindIntegerDivideByZero)
		}
		return a % b, nil
	case 0x71:
		return a & b, nil
	case 0x72:
		return a | b, nil
	case 0x73:
		return a ^ b, nil
	case 0x74:
		return a << (b & 31), nil
	case 0x75:
		return uint32(sa >> (b & 31)), nil
	case 0x76:
		return a >> (b & 31), nil
	case 0x77:
		return bits.RotateLeft32(a, int(b&31)), nil
	case 0x78:
		return bits.RotateLeft32(a, -int(b&31)), nil
	}
	return 0, nil
}

func i64BinOp(op byte, a, b uint64) (uint64, *wasm.Trap) {
	sa, sb := int64(a), int64(b)
	switch op {
	case 0x7C:
		return a + b, nil
	case 0x7D:
		return a - b, nil
	case 0x7E:
		return a * b, nil
	case 0x7F: // div_s
		if b == 0 {
			return 0, wasm.NewTrap(wasm.TrapKindIntegerDivideByZero)
		}
		if sa == math.MinInt64 && sb == -1 {
			return 0, wasm.NewTrap(wasm.TrapKindIntegerOverflow)
		}
		return uint64(sa / sb), nil
	case 0x80: // div_u
		if b == 0 {
			return 0, wasm.NewTrap(wasm.TrapKindIntegerDivideByZero)
		}
		return a / b, nil
	case 0x81: // rem_s
		if b == 0 {
			return 0, wasm.NewTrap(wasm.TrapKindIntegerDivideByZero)
		}
		if sa == math.MinInt64 && sb == -1 {
			return 0, nil
		}
		return uint64(sa % sb), nil
	case 0x82: // rem_u
		if b == 0 {
			return 0, wasm.NewTrap(wasm.TrapKindIntegerDivideByZero)
		}
		return a % b, nil
	case 0x83:
		return a & b, nil
	case 0x84:
		return a | b, nil
	case 0x85:
		return a ^ b, nil
	case 0x86:
		return a << (b & 63), nil
	case 0x87:
		return uint64(sa >> (b & 63)), nil
	case 0x88:
		return a >> (b & 63), nil
	case 0x89:
		return bits.RotateLeft64(a, int(b&63)), nil
	case 0x8A:
		return bits.RotateLeft64(a, -int(b&63)), nil
	}
	return 0, nil
}

func f32UnOp(op byte, a float32) float32 {
	switch op {
	case 0x8B:
		return float32(math.Abs(float64(a)))
	case 0x8C:
		return -a
	case 0x8D:
		return float32(math.Ceil(float64(a)))
	case 0x8E:
		return float32(math.Floor(float64(a)))
	case 0x8F:
		return float32(math.Trunc(float64(a)))
	case 0x90:
		return moremath.WasmCompatNearestF32(a)
	}
	return a
}

func f32BinOp(op byte, a, b float32) float32 {
	switch op {
	case 0x91:
		return float32(math.Sqrt(float64(a)))
	case 0x92:
		return a + b
	case 0x93:
		return a - b
	case 0x94:
		return a * b
	case 0x95:
		return a / b
	case 0x96:
		return float32(moremath.WasmCompatMin(float64(a), float64(b)))
	case 0x97:
		return float32(moremath.WasmCompatMax(float64(a), float64(b)))
	case 0x98: // copysign
		return float32(math.Copysign(float64(a), float64(b)))
	}
	return 0
}

func f64UnOp(op byte, a float64) float64 {
	switch op {
	case 0x99:
		return math.Abs(a)
	case 0x9A:
		return -a
	case 0x9B:
		return math.Ceil(a)
	case 0x9C:
		return math.Floor(a)
	case 0x9D:
		return math.Trunc(a)
	case 0x9E:
		return moremath.WasmCompatNearestF64(a)
	}
	return a
}

func f64BinOp(op byte, a, b float64) float64 {
	switch op {
	case 0x9F:
		return math.Sqrt(a)
	case 0xA0:
		return a + b
	case 0xA1:
		return a - b
	case 0xA2:
		return a * b
	case 0xA3:
		return a / b
	case 0xA4:
		return moremath.WasmCompatMin(a, b)
	case 0xA5:
		return moremath.WasmCompatMax(a, b)
	case 0xA6:
		return math.Copysign(a, b)
	}
	return 0
}

// truncToInt implements the trapping (non-saturating) float-to-int conversions 0xA8-0xAB and
// 0xAE-0xB1, using moremath's exact trunc bounds to decide when the source is out of range.
func truncToInt(op byte, slot uint64) (uint64, *wasm.Trap) {
	var f float64
	var from32 bool
	if op == 0xA8 || op == 0xA9 || op == 0xAE || op == 0xAF {
		f = float64(f32FromSlot(slot))
		from32 = true
	} else {
		f = f64FromSlot(slot)
	}
	if math.IsNaN(f) {
		return 0, wasm.NewTrap(wasm.TrapKindInvalidConversionToInteger)
	}
	var bitsOut int
	var signed bool
	switch op {
	case 0xA8, 0xAA:
		bitsOut, signed = 32, true
	case 0xA9, 0xAB:
		bitsOut = 32
	case 0xAE, 0xB0:
		bitsOut, signed = 64, true
	case 0xAF, 0xB1:
		bitsOut = 64
	}
	var lo, hi float64
	if from32 {
		lo, hi = moremath.Float32TruncBounds(bitsOut, signed)
	} else {
		lo, hi = moremath.Float64TruncBounds(bitsOut, signed)
	}
	if !(f > lo && f < hi) {
		return 0, wasm.NewTrap(wasm.TrapKindIntegerOverflow)
	}
	t := math.Trunc(f)
	switch {
	case bitsOut == 32 && signed:
		return uint64(uint32(int32(t))), nil
	case bitsOut == 32 && !signed:
		return uint64(uint32(t)), nil
	case bitsOut == 64 && signed:
		return uint64(int64(t)), nil
	default:
		return uint64(t), nil
	}
}
