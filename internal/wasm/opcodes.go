package wasm

// Opcode constants for the subset of the instruction set referenced directly by this package
// (constant-expression evaluation) and re-exported for the engine/interpreter package's dispatch
// tables, so both are built from one declared list as spec.md §4.5's "Interpreter sharing" note
// allows.
const (
	OpUnreachable byte = 0x00
	OpNop         byte = 0x01
	OpBlock       byte = 0x02
	OpLoop        byte = 0x03
	OpIf          byte = 0x04
	OpElse        byte = 0x05
	OpEnd         byte = 0x0B
	OpBr          byte = 0x0C
	OpBrIf        byte = 0x0D
	OpBrTable     byte = 0x0E
	OpReturn      byte = 0x0F
	OpCall        byte = 0x10
	OpCallIndirect byte = 0x11
	OpReturnCall        byte = 0x12
	OpReturnCallIndirect byte = 0x13

	OpDrop   byte = 0x1A
	OpSelect byte = 0x1B
	OpSelectT byte = 0x1C

	OpLocalGet  byte = 0x20
	OpLocalSet  byte = 0x21
	OpLocalTee  byte = 0x22
	OpGlobalGet byte = 0x23
	OpGlobalSet byte = 0x24

	OpTableGet byte = 0x25
	OpTableSet byte = 0x26

	OpI32Load    byte = 0x28
	OpI64Load    byte = 0x29
	OpF32Load    byte = 0x2A
	OpF64Load    byte = 0x2B
	OpI32Load8S  byte = 0x2C
	OpI32Load8U  byte = 0x2D
	OpI32Load16S byte = 0x2E
	OpI32Load16U byte = 0x2F
	OpI64Load8S  byte = 0x30
	OpI64Load8U  byte = 0x31
	OpI64Load16S byte = 0x32
	OpI64Load16U byte = 0x33
	OpI64Load32S byte = 0x34
	OpI64Load32U byte = 0x35
	OpI32Store   byte = 0x36
	OpI64Store   byte = 0x37
	OpF32Store   byte = 0x38
	OpF64Store   byte = 0x39
	OpI32Store8  byte = 0x3A
	OpI32Store16 byte = 0x3B
	OpI64Store8  byte = 0x3C
	OpI64Store16 byte = 0x3D
	OpI64Store32 byte = 0x3E
	OpMemorySize byte = 0x3F
	OpMemoryGrow byte = 0x40

	OpI32Const byte = 0x41
	OpI64Const byte = 0x42
	OpF32Const byte = 0x43
	OpF64Const byte = 0x44

	// 0x45-0xC4 are comparisons, arithmetic and conversions; see the engine/interpreter package's
	// numeric kernel for the full table. Only the constants needed outside that package live here.

	OpRefNull   byte = 0xD0
	OpRefIsNull byte = 0xD1
	OpRefFunc   byte = 0xD2

	// OpPrefixFC gates the bulk-memory-operations / saturating-truncation / table.* opcode group,
	// whose real opcode is a second LEB128 u32 immediate following this byte.
	OpPrefixFC byte = 0xFC
	// OpPrefixFD gates the SIMD (v128) opcode group.
	OpPrefixFD byte = 0xFD
	// OpPrefixFE gates the threads/atomics opcode group.
	OpPrefixFE byte = 0xFE
)

// FC-prefixed sub-opcodes (bulk memory, saturating conversions, table ops).
const (
	OpFCI32TruncSatF32S byte = 0
	OpFCI32TruncSatF32U byte = 1
	OpFCI32TruncSatF64S byte = 2
	OpFCI32TruncSatF64U byte = 3
	OpFCI64TruncSatF32S byte = 4
	OpFCI64TruncSatF32U byte = 5
	OpFCI64TruncSatF64S byte = 6
	OpFCI64TruncSatF64U byte = 7

	OpFCMemoryInit byte = 8
	OpFCDataDrop   byte = 9
	OpFCMemoryCopy byte = 10
	OpFCMemoryFill byte = 11
	OpFCTableInit  byte = 12
	OpFCElemDrop   byte = 13
	OpFCTableCopy  byte = 14
	OpFCTableGrow  byte = 15
	OpFCTableSize  byte = 16
	OpFCTableFill  byte = 17
)
