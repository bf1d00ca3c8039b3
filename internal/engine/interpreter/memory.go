package interpreter

import (
	"math"

	"github.com/wasmlite/wasmlite/internal/wasm"
)

// boundsCheck validates that [addr, addr+size) lies within mem, returning the out-of-bounds trap
// spec.md §4.6 requires otherwise. The sum is computed in 64 bits so a pathological offset
// immediate near 2^32 can't wrap back into range before the comparison runs.
func boundsCheck(mem *wasm.MemoryInstance, base, offset, size uint32) (addr uint64, trap *wasm.Trap) {
	addr = uint64(base) + uint64(offset)
	if addr+uint64(size) > uint64(len(mem.Data)) {
		return 0, wasm.NewTrap(wasm.TrapKindOutOfBoundsMemoryAccess)
	}
	return addr, nil
}

func loadLE(mem *wasm.MemoryInstance, addr uint64, size int) uint64 {
	var v uint64
	for i := size - 1; i >= 0; i-- {
		v = v<<8 | uint64(mem.Data[addr+uint64(i)])
	}
	return v
}

func storeLE(mem *wasm.MemoryInstance, addr uint64, v uint64, size int) {
	for i := 0; i < size; i++ {
		mem.Data[addr+uint64(i)] = byte(v)
		v >>= 8
	}
}

// execLoad implements the i32/i64/f32/f64 load family (including the sign/zero-extending narrow
// loads), pushing a single slot.
func execLoad(mem *wasm.MemoryInstance, base uint32, offset uint32, op byte) (uint64, *wasm.Trap) {
	var size int
	var signed bool
	var resultIs64 bool
	switch op {
	case wasm.OpI32Load:
		size = 4
	case wasm.OpI64Load:
		size, resultIs64 = 8, true
	case wasm.OpF32Load:
		size = 4
	case wasm.OpF64Load:
		size, resultIs64 = 8, true
	case wasm.OpI32Load8S:
		size, signed = 1, true
	case wasm.OpI32Load8U:
		size = 1
	case wasm.OpI32Load16S:
		size, signed = 2, true
	case wasm.OpI32Load16U:
		size = 2
	case wasm.OpI64Load8S:
		size, signed, resultIs64 = 1, true, true
	case wasm.OpI64Load8U:
		size, resultIs64 = 1, true
	case wasm.OpI64Load16S:
		size, signed, resultIs64 = 2, true, true
	case wasm.OpI64Load16U:
		size, resultIs64 = 2, true
	case wasm.OpI64Load32S:
		size, signed, resultIs64 = 4, true, true
	case wasm.OpI64Load32U:
		size, resultIs64 = 4, true
	}
	addr, trap := boundsCheck(mem, base, offset, uint32(size))
	if trap != nil {
		return 0, trap
	}
	raw := loadLE(mem, addr, size)
	if !signed {
		return raw, nil
	}
	shift := uint(64 - size*8)
	if !resultIs64 {
		shift = uint(32 - size*8)
		return uint64(uint32(int32(uint32(raw)<<shift) >> shift)), nil
	}
	return uint64(int64(raw<<shift) >> shift), nil
}

// execStore implements the i32/i64/f32/f64 store family, writing byteWidth bytes of v.
func execStore(mem *wasm.MemoryInstance, base uint32, offset uint32, op byte, v uint64) *wasm.Trap {
	var size int
	switch op {
	case wasm.OpI32Store, wasm.OpF32Store, wasm.OpI32Store8, wasm.OpI32Store16:
		switch op {
		case wasm.OpI32Store8:
			size = 1
		case wasm.OpI32Store16:
			size = 2
		default:
			size = 4
		}
	case wasm.OpI64Store, wasm.OpF64Store, wasm.OpI64Store8, wasm.OpI64Store16, wasm.OpI64Store32:
		switch op {
		case wasm.OpI64Store8:
			size = 1
		case wasm.OpI64Store16:
			size = 2
		case wasm.OpI64Store32:
			size = 4
		default:
			size = 8
		}
	}
	addr, trap := boundsCheck(mem, base, offset, uint32(size))
	if trap != nil {
		return trap
	}
	storeLE(mem, addr, v, size)
	return nil
}

// memoryCopy implements memory.copy (spec.md's bulk-memory-operations supplement), correct for
// overlapping source/destination ranges.
func memoryCopy(dst, src *wasm.MemoryInstance, dstAddr, srcAddr, n uint32) *wasm.Trap {
	if uint64(dstAddr)+uint64(n) > uint64(len(dst.Data)) || uint64(srcAddr)+uint64(n) > uint64(len(src.Data)) {
		return wasm.NewTrap(wasm.TrapKindOutOfBoundsMemoryAccess)
	}
	copy(dst.Data[dstAddr:uint64(dstAddr)+uint64(n)], src.Data[srcAddr:uint64(srcAddr)+uint64(n)])
	return nil
}

// memoryFill implements memory.fill.
func memoryFill(mem *wasm.MemoryInstance, addr uint32, val byte, n uint32) *wasm.Trap {
	if uint64(addr)+uint64(n) > uint64(len(mem.Data)) {
		return wasm.NewTrap(wasm.TrapKindOutOfBoundsMemoryAccess)
	}
	region := mem.Data[addr : uint64(addr)+uint64(n)]
	for i := range region {
		region[i] = val
	}
	return nil
}

// memoryInit implements memory.init: copies from a (possibly already-dropped) passive data segment.
func memoryInit(mem *wasm.MemoryInstance, seg *wasm.DataSegmentInstance, dstAddr, srcAddr, n uint32) *wasm.Trap {
	bytes := seg.Bytes
	if seg.Dropped {
		bytes = nil // a dropped segment reads as zero-length
	}
	if uint64(srcAddr)+uint64(n) > uint64(len(bytes)) || uint64(dstAddr)+uint64(n) > uint64(len(mem.Data)) {
		return wasm.NewTrap(wasm.TrapKindOutOfBoundsMemoryAccess)
	}
	copy(mem.Data[dstAddr:uint64(dstAddr)+uint64(n)], bytes[srcAddr:uint64(srcAddr)+uint64(n)])
	return nil
}

// f32FromSlot/f32ToSlot/f64FromSlot/f64ToSlot convert the engine's uint64 stack slots to/from Go floats without going through
// api.Encode/DecodeF32/F64 on every numeric op, since the engine already owns the slot layout those
// helpers were written for the public Function.Call boundary, not the hot numeric loop.
func f32FromSlot(v uint64) float32 { return math.Float32frombits(uint32(v)) }
func f32ToSlot(f float32) uint64   { return uint64(math.Float32bits(f)) }
func f64FromSlot(v uint64) float64 { return math.Float64frombits(v) }
func f64ToSlot(f float64) uint64   { return math.Float64bits(f) }
