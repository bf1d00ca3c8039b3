package wasm

// NumericSignature is an opcode's static stack contract: the types it pops (in order, bottom to
// top as popped) and the types it pushes. Both the validator and the execution engine's stack
// bookkeeping are driven from this one table, so the two can never drift apart (spec.md §4.5's
// "Interpreter sharing" note).
type NumericSignature struct {
	In  []ValueType
	Out []ValueType
}

var (
	sigI32UnOp  = NumericSignature{In: []ValueType{ValueTypeI32}, Out: []ValueType{ValueTypeI32}}
	sigI32BinOp = NumericSignature{In: []ValueType{ValueTypeI32, ValueTypeI32}, Out: []ValueType{ValueTypeI32}}
	sigI32Test  = NumericSignature{In: []ValueType{ValueTypeI32}, Out: []ValueType{ValueTypeI32}}
	sigI32Rel   = NumericSignature{In: []ValueType{ValueTypeI32, ValueTypeI32}, Out: []ValueType{ValueTypeI32}}

	sigI64UnOp  = NumericSignature{In: []ValueType{ValueTypeI64}, Out: []ValueType{ValueTypeI64}}
	sigI64BinOp = NumericSignature{In: []ValueType{ValueTypeI64, ValueTypeI64}, Out: []ValueType{ValueTypeI64}}
	sigI64Test  = NumericSignature{In: []ValueType{ValueTypeI64}, Out: []ValueType{ValueTypeI32}}
	sigI64Rel   = NumericSignature{In: []ValueType{ValueTypeI64, ValueTypeI64}, Out: []ValueType{ValueTypeI32}}

	sigF32UnOp = NumericSignature{In: []ValueType{ValueTypeF32}, Out: []ValueType{ValueTypeF32}}
	sigF32BinOp = NumericSignature{In: []ValueType{ValueTypeF32, ValueTypeF32}, Out: []ValueType{ValueTypeF32}}
	sigF32Rel  = NumericSignature{In: []ValueType{ValueTypeF32, ValueTypeF32}, Out: []ValueType{ValueTypeI32}}

	sigF64UnOp = NumericSignature{In: []ValueType{ValueTypeF64}, Out: []ValueType{ValueTypeF64}}
	sigF64BinOp = NumericSignature{In: []ValueType{ValueTypeF64, ValueTypeF64}, Out: []ValueType{ValueTypeF64}}
	sigF64Rel  = NumericSignature{In: []ValueType{ValueTypeF64, ValueTypeF64}, Out: []ValueType{ValueTypeI32}}
)

// NumericOpcodeTable covers the comparison, arithmetic and conversion opcodes in 0x45-0xC4,
// including the sign-extension proposal's 0xC0-0xC4. Opcodes not present here are either
// control-flow/variable/memory/reference instructions (the latter 0xD0-0xD2) handled structurally
// by the validator, or belong to the 0xFC/0xFD/0xFE prefixed groups handled by their own tables.
var NumericOpcodeTable = map[byte]NumericSignature{
	0x45: sigI32Test, // i32.eqz
	0x46: sigI32Rel, 0x47: sigI32Rel, 0x48: sigI32Rel, 0x49: sigI32Rel, 0x4A: sigI32Rel,
	0x4B: sigI32Rel, 0x4C: sigI32Rel, 0x4D: sigI32Rel, 0x4E: sigI32Rel, 0x4F: sigI32Rel, // eq..ge_u

	0x50: sigI64Test, // i64.eqz
	0x51: sigI64Rel, 0x52: sigI64Rel, 0x53: sigI64Rel, 0x54: sigI64Rel, 0x55: sigI64Rel,
	0x56: sigI64Rel, 0x57: sigI64Rel, 0x58: sigI64Rel, 0x59: sigI64Rel, 0x5A: sigI64Rel,

	0x5B: sigF32Rel, 0x5C: sigF32Rel, 0x5D: sigF32Rel, 0x5E: sigF32Rel, 0x5F: sigF32Rel, 0x60: sigF32Rel,
	0x61: sigF64Rel, 0x62: sigF64Rel, 0x63: sigF64Rel, 0x64: sigF64Rel, 0x65: sigF64Rel, 0x66: sigF64Rel,

	0x67: sigI32UnOp, 0x68: sigI32UnOp, 0x69: sigI32UnOp, // clz/ctz/popcnt
	0x6A: sigI32BinOp, 0x6B: sigI32BinOp, 0x6C: sigI32BinOp, 0x6D: sigI32BinOp, 0x6E: sigI32BinOp,
	0x6F: sigI32BinOp, 0x70: sigI32BinOp, 0x71: sigI32BinOp, 0x72: sigI32BinOp, 0x73: sigI32BinOp,
	0x74: sigI32BinOp, 0x75: sigI32BinOp, 0x76: sigI32BinOp, 0x77: sigI32BinOp, 0x78: sigI32BinOp, // add..rotr

	0x79: sigI64UnOp, 0x7A: sigI64UnOp, 0x7B: sigI64UnOp,
	0x7C: sigI64BinOp, 0x7D: sigI64BinOp, 0x7E: sigI64BinOp, 0x7F: sigI64BinOp, 0x80: sigI64BinOp,
	0x81: sigI64BinOp, 0x82: sigI64BinOp, 0x83: sigI64BinOp, 0x84: sigI64BinOp, 0x85: sigI64BinOp,
	0x86: sigI64BinOp, 0x87: sigI64BinOp, 0x88: sigI64BinOp, 0x89: sigI64BinOp, 0x8A: sigI64BinOp,

	0x8B: sigF32UnOp, 0x8C: sigF32UnOp, 0x8D: sigF32UnOp, 0x8E: sigF32UnOp, 0x8F: sigF32UnOp, 0x90: sigF32UnOp,
	0x91: sigF32BinOp, 0x92: sigF32BinOp, 0x93: sigF32BinOp, 0x94: sigF32BinOp, 0x95: sigF32BinOp, 0x96: sigF32BinOp,
	0x97: sigF32BinOp, 0x98: sigF32BinOp,

	0x99: sigF64UnOp, 0x9A: sigF64UnOp, 0x9B: sigF64UnOp, 0x9C: sigF64UnOp, 0x9D: sigF64UnOp, 0x9E: sigF64UnOp,
	0x9F: sigF64BinOp, 0xA0: sigF64BinOp, 0xA1: sigF64BinOp, 0xA2: sigF64BinOp, 0xA3: sigF64BinOp, 0xA4: sigF64BinOp,
	0xA5: sigF64BinOp, 0xA6: sigF64BinOp,

	// Conversions.
	0xA7: {In: []ValueType{ValueTypeI64}, Out: []ValueType{ValueTypeI32}}, // i32.wrap_i64
	0xA8: {In: []ValueType{ValueTypeF32}, Out: []ValueType{ValueTypeI32}}, // i32.trunc_f32_s
	0xA9: {In: []ValueType{ValueTypeF32}, Out: []ValueType{ValueTypeI32}},
	0xAA: {In: []ValueType{ValueTypeF64}, Out: []ValueType{ValueTypeI32}},
	0xAB: {In: []ValueType{ValueTypeF64}, Out: []ValueType{ValueTypeI32}},
	0xAC: {In: []ValueType{ValueTypeI32}, Out: []ValueType{ValueTypeI64}}, // i64.extend_i32_s
	0xAD: {In: []ValueType{ValueTypeI32}, Out: []ValueType{ValueTypeI64}},
	0xAE: {In: []ValueType{ValueTypeF32}, Out: []ValueType{ValueTypeI64}},
	0xAF: {In: []ValueType{ValueTypeF32}, Out: []ValueType{ValueTypeI64}},
	0xB0: {In: []ValueType{ValueTypeF64}, Out: []ValueType{ValueTypeI64}},
	0xB1: {In: []ValueType{ValueTypeF64}, Out: []ValueType{ValueTypeI64}},
	0xB2: {In: []ValueType{ValueTypeI32}, Out: []ValueType{ValueTypeF32}}, // f32.convert_i32_s
	0xB3: {In: []ValueType{ValueTypeI32}, Out: []ValueType{ValueTypeF32}},
	0xB4: {In: []ValueType{ValueTypeI64}, Out: []ValueType{ValueTypeF32}},
	0xB5: {In: []ValueType{ValueTypeI64}, Out: []ValueType{ValueTypeF32}},
	0xB6: {In: []ValueType{ValueTypeF64}, Out: []ValueType{ValueTypeF32}}, // f32.demote_f64
	0xB7: {In: []ValueType{ValueTypeI32}, Out: []ValueType{ValueTypeF64}},
	0xB8: {In: []ValueType{ValueTypeI32}, Out: []ValueType{ValueTypeF64}},
	0xB9: {In: []ValueType{ValueTypeI64}, Out: []ValueType{ValueTypeF64}},
	0xBA: {In: []ValueType{ValueTypeI64}, Out: []ValueType{ValueTypeF64}},
	0xBB: {In: []ValueType{ValueTypeF32}, Out: []ValueType{ValueTypeF64}}, // f64.promote_f32
	0xBC: {In: []ValueType{ValueTypeF32}, Out: []ValueType{ValueTypeI32}}, // i32.reinterpret_f32
	0xBD: {In: []ValueType{ValueTypeF64}, Out: []ValueType{ValueTypeI64}}, // i64.reinterpret_f64
	0xBE: {In: []ValueType{ValueTypeI32}, Out: []ValueType{ValueTypeF32}}, // f32.reinterpret_i32
	0xBF: {In: []ValueType{ValueTypeI64}, Out: []ValueType{ValueTypeF64}}, // f64.reinterpret_i64

	// Sign-extension proposal (feature-gated by FeatureSignExtensionOps).
	0xC0: sigI32UnOp, // i32.extend8_s
	0xC1: sigI32UnOp, // i32.extend16_s
	0xC2: sigI64UnOp, // i64.extend8_s
	0xC3: sigI64UnOp, // i64.extend16_s
	0xC4: sigI64UnOp, // i64.extend32_s
}

// featureGatedNumeric reports the Features bit an opcode requires beyond the MVP, or 0 if none.
func featureGatedNumeric(op byte) Features {
	switch {
	case op >= 0xC0 && op <= 0xC4:
		return FeatureSignExtensionOps
	}
	return 0
}
