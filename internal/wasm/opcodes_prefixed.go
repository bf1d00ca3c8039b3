package wasm

// SIMD (0xFD-prefixed) sub-opcodes this runtime implements: a representative subset of the
// proposal covering load/store, splat, the common lane-wise arithmetic ops and bitwise ops, not
// the full ~240-opcode table; see DESIGN.md. Exported so the validator (stepFD) and the execution
// engine (execFD) dispatch off the same numbers instead of each declaring its own copy.
const (
	OpSimdV128Load   uint32 = 0x00
	OpSimdV128Store  uint32 = 0x0B
	OpSimdV128Const  uint32 = 0x0C
	OpSimdI8x16Splat uint32 = 0x0F
	OpSimdI16x8Splat uint32 = 0x10
	OpSimdI32x4Splat uint32 = 0x11
	OpSimdI64x2Splat uint32 = 0x12
	OpSimdF32x4Splat uint32 = 0x13
	OpSimdF64x2Splat uint32 = 0x14
	OpSimdV128Not    uint32 = 0x4D
	OpSimdV128And    uint32 = 0x4E
	OpSimdV128Or     uint32 = 0x50
	OpSimdV128Xor    uint32 = 0x51
	OpSimdI32x4Add   uint32 = 0xAE
	OpSimdI32x4Sub   uint32 = 0xB1
	OpSimdI32x4Mul   uint32 = 0xB5
	OpSimdF32x4Add   uint32 = 0xE4
	OpSimdF32x4Sub   uint32 = 0xE5
	OpSimdF32x4Mul   uint32 = 0xE6
	OpSimdF64x2Add   uint32 = 0xF0
	OpSimdF64x2Sub   uint32 = 0xF1
	OpSimdF64x2Mul   uint32 = 0xF2
)

// Threads/atomics (0xFE-prefixed) sub-opcodes this runtime implements: the wait/notify/fence
// primitives plus the i32/i64 read-modify-write family, including the 8/16-bit partial-width
// variants. Exported for the same reason as the SIMD block above: one numbering, shared by
// stepFE and execFE.
const (
	OpAtomicNotify uint32 = 0x00
	OpAtomicWait32 uint32 = 0x01
	OpAtomicWait64 uint32 = 0x02
	OpAtomicFence  uint32 = 0x03

	OpAtomicI32Load    uint32 = 0x10
	OpAtomicI64Load    uint32 = 0x11
	OpAtomicI32Load8U  uint32 = 0x12
	OpAtomicI32Load16U uint32 = 0x13
	OpAtomicI64Load8U  uint32 = 0x14
	OpAtomicI64Load16U uint32 = 0x15
	OpAtomicI64Load32U uint32 = 0x16

	OpAtomicI32Store    uint32 = 0x17
	OpAtomicI64Store    uint32 = 0x18
	OpAtomicI32Store8   uint32 = 0x19
	OpAtomicI32Store16  uint32 = 0x1A
	OpAtomicI64Store8   uint32 = 0x1B
	OpAtomicI64Store16  uint32 = 0x1C
	OpAtomicI64Store32  uint32 = 0x1D

	OpAtomicI32RmwAdd     uint32 = 0x1E
	OpAtomicI64RmwAdd     uint32 = 0x1F
	OpAtomicI32Rmw8AddU   uint32 = 0x20
	OpAtomicI32Rmw16AddU  uint32 = 0x21
	OpAtomicI64Rmw8AddU   uint32 = 0x22
	OpAtomicI64Rmw16AddU  uint32 = 0x23
	OpAtomicI64Rmw32AddU  uint32 = 0x24

	OpAtomicI32RmwSub     uint32 = 0x25
	OpAtomicI64RmwSub     uint32 = 0x26
	OpAtomicI32Rmw8SubU   uint32 = 0x27
	OpAtomicI32Rmw16SubU  uint32 = 0x28
	OpAtomicI64Rmw8SubU   uint32 = 0x29
	OpAtomicI64Rmw16SubU  uint32 = 0x2A
	OpAtomicI64Rmw32SubU  uint32 = 0x2B

	OpAtomicI32RmwAnd     uint32 = 0x2C
	OpAtomicI64RmwAnd     uint32 = 0x2D
	OpAtomicI32Rmw8AndU   uint32 = 0x2E
	OpAtomicI32Rmw16AndU  uint32 = 0x2F
	OpAtomicI64Rmw8AndU   uint32 = 0x30
	OpAtomicI64Rmw16AndU  uint32 = 0x31
	OpAtomicI64Rmw32AndU  uint32 = 0x32

	OpAtomicI32RmwOr     uint32 = 0x33
	OpAtomicI64RmwOr     uint32 = 0x34
	OpAtomicI32Rmw8OrU   uint32 = 0x35
	OpAtomicI32Rmw16OrU  uint32 = 0x36
	OpAtomicI64Rmw8OrU   uint32 = 0x37
	OpAtomicI64Rmw16OrU  uint32 = 0x38
	OpAtomicI64Rmw32OrU  uint32 = 0x39

	OpAtomicI32RmwXor     uint32 = 0x3A
	OpAtomicI64RmwXor     uint32 = 0x3B
	OpAtomicI32Rmw8XorU   uint32 = 0x3C
	OpAtomicI32Rmw16XorU  uint32 = 0x3D
	OpAtomicI64Rmw8XorU   uint32 = 0x3E
	OpAtomicI64Rmw16XorU  uint32 = 0x3F
	OpAtomicI64Rmw32XorU  uint32 = 0x40

	OpAtomicI32RmwXchg     uint32 = 0x41
	OpAtomicI64RmwXchg     uint32 = 0x42
	OpAtomicI32Rmw8XchgU   uint32 = 0x43
	OpAtomicI32Rmw16XchgU  uint32 = 0x44
	OpAtomicI64Rmw8XchgU   uint32 = 0x45
	OpAtomicI64Rmw16XchgU  uint32 = 0x46
	OpAtomicI64Rmw32XchgU  uint32 = 0x47

	OpAtomicI32RmwCmpxchg     uint32 = 0x48
	OpAtomicI64RmwCmpxchg     uint32 = 0x49
	OpAtomicI32Rmw8CmpxchgU   uint32 = 0x4A
	OpAtomicI32Rmw16CmpxchgU  uint32 = 0x4B
	OpAtomicI64Rmw8CmpxchgU   uint32 = 0x4C
	OpAtomicI64Rmw16CmpxchgU  uint32 = 0x4D
	OpAtomicI64Rmw32CmpxchgU  uint32 = 0x4E
)
