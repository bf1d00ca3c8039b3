package interpreter

import (
	"math"

	"github.com/wasmlite/wasmlite/internal/leb128"
	"github.com/wasmlite/wasmlite/internal/wasm"
)

// execFC runs one 0xFC-prefixed instruction (bulk memory, table ops, the saturating
// truncation family), mirroring validator.stepFC's opcode set and immediate layout exactly.
// Returns the program counter just past the instruction's immediates.
func execFC(f *frame, sub uint32, pc uint32) (uint32, *wasm.Trap) {
	body := f.fn.Code.Body
	mem := f.module.Memories
	switch byte(sub) {
	case wasm.OpFCI32TruncSatF32S:
		f.stack.push(uint64(uint32(satTruncI32(float64(f32FromSlot(f.stack.pop())), true))))
	case wasm.OpFCI32TruncSatF32U:
		f.stack.push(uint64(satTruncI32(float64(f32FromSlot(f.stack.pop())), false)))
	case wasm.OpFCI32TruncSatF64S:
		f.stack.push(uint64(uint32(satTruncI32(f64FromSlot(f.stack.pop()), true))))
	case wasm.OpFCI32TruncSatF64U:
		f.stack.push(uint64(satTruncI32(f64FromSlot(f.stack.pop()), false)))
	case wasm.OpFCI64TruncSatF32S:
		f.stack.push(uint64(satTruncI64(float64(f32FromSlot(f.stack.pop())), true)))
	case wasm.OpFCI64TruncSatF32U:
		f.stack.push(satTruncI64(float64(f32FromSlot(f.stack.pop())), false))
	case wasm.OpFCI64TruncSatF64S:
		f.stack.push(uint64(satTruncI64(f64FromSlot(f.stack.pop()), true)))
	case wasm.OpFCI64TruncSatF64U:
		f.stack.push(satTruncI64(f64FromSlot(f.stack.pop()), false))

	case wasm.OpFCMemoryInit:
		segIdx, n := leb128.UncheckedUint32(body, pc)
		pc += n + 1 // +1 for the reserved memory-index byte
		length := uint32(f.stack.pop())
		src := uint32(f.stack.pop())
		dst := uint32(f.stack.pop())
		if trap := memoryInit(mem[0], f.module.DataSegments[segIdx], dst, src, length); trap != nil {
			return pc, trap
		}
	case wasm.OpFCDataDrop:
		segIdx, n := leb128.UncheckedUint32(body, pc)
		pc += n
		f.module.DataSegments[segIdx].Dropped = true
	case wasm.OpFCMemoryCopy:
		pc += 2 // two reserved memory-index bytes
		length := uint32(f.stack.pop())
		src := uint32(f.stack.pop())
		dst := uint32(f.stack.pop())
		if trap := memoryCopy(mem[0], mem[0], dst, src, length); trap != nil {
			return pc, trap
		}
	case wasm.OpFCMemoryFill:
		pc++ // reserved memory-index byte
		length := uint32(f.stack.pop())
		val := byte(f.stack.pop())
		dst := uint32(f.stack.pop())
		if trap := memoryFill(mem[0], dst, val, length); trap != nil {
			return pc, trap
		}

	case wasm.OpFCTableInit:
		segIdx, n := leb128.UncheckedUint32(body, pc)
		pc += n
		tblIdx, n2 := leb128.UncheckedUint32(body, pc)
		pc += n2
		length := uint32(f.stack.pop())
		src := uint32(f.stack.pop())
		dst := uint32(f.stack.pop())
		if trap := tableInit(f.module.Tables[tblIdx], f.module.ElementSegments[segIdx], dst, src, length); trap != nil {
			return pc, trap
		}
	case wasm.OpFCElemDrop:
		segIdx, n := leb128.UncheckedUint32(body, pc)
		pc += n
		f.module.ElementSegments[segIdx].Dropped = true
	case wasm.OpFCTableCopy:
		dstIdx, n := leb128.UncheckedUint32(body, pc)
		pc += n
		srcIdx, n2 := leb128.UncheckedUint32(body, pc)
		pc += n2
		length := uint32(f.stack.pop())
		src := uint32(f.stack.pop())
		dst := uint32(f.stack.pop())
		if trap := tableCopy(f.module.Tables[dstIdx], f.module.Tables[srcIdx], dst, src, length); trap != nil {
			return pc, trap
		}
	case wasm.OpFCTableGrow:
		idx, n := leb128.UncheckedUint32(body, pc)
		pc += n
		delta := uint32(f.stack.pop())
		init := f.stack.pop()
		prev, ok := f.module.Tables[idx].Grow(delta, init)
		if !ok {
			f.stack.push(uint64(uint32(0xFFFFFFFF)))
		} else {
			f.stack.push(uint64(prev))
		}
	case wasm.OpFCTableSize:
		idx, n := leb128.UncheckedUint32(body, pc)
		pc += n
		f.stack.push(uint64(len(f.module.Tables[idx].Elements)))
	case wasm.OpFCTableFill:
		idx, n := leb128.UncheckedUint32(body, pc)
		pc += n
		length := uint32(f.stack.pop())
		val := f.stack.pop()
		dst := uint32(f.stack.pop())
		tbl := f.module.Tables[idx]
		if uint64(dst)+uint64(length) > uint64(len(tbl.Elements)) {
			return pc, wasm.NewTrap(wasm.TrapKindOutOfBoundsTableAccess)
		}
		for i := uint32(0); i < length; i++ {
			tbl.Elements[dst+i] = val
		}
	}
	return pc, nil
}

func tableInit(tbl *wasm.TableInstance, seg *wasm.ElementSegmentInstance, dst, src, n uint32) *wasm.Trap {
	elems := seg.Elements
	if seg.Dropped {
		elems = nil // a dropped segment reads as zero-length
	}
	if uint64(src)+uint64(n) > uint64(len(elems)) || uint64(dst)+uint64(n) > uint64(len(tbl.Elements)) {
		return wasm.NewTrap(wasm.TrapKindOutOfBoundsTableAccess)
	}
	copy(tbl.Elements[dst:uint64(dst)+uint64(n)], elems[src:uint64(src)+uint64(n)])
	return nil
}

func tableCopy(dst, src *wasm.TableInstance, dstAddr, srcAddr, n uint32) *wasm.Trap {
	if uint64(dstAddr)+uint64(n) > uint64(len(dst.Elements)) || uint64(srcAddr)+uint64(n) > uint64(len(src.Elements)) {
		return wasm.NewTrap(wasm.TrapKindOutOfBoundsTableAccess)
	}
	copy(dst.Elements[dstAddr:uint64(dstAddr)+uint64(n)], src.Elements[srcAddr:uint64(srcAddr)+uint64(n)])
	return nil
}

// satTruncI32/satTruncI64 implement the non-trapping-float-to-int proposal's saturating
// conversions: NaN becomes 0, out-of-range values clamp to the nearest representable extreme,
// rather than trapping as the plain trunc family does (wasm.TrapKindIntegerOverflow in numeric.go).
func satTruncI32(f float64, signed bool) uint32 {
	if math.IsNaN(f) {
		return 0
	}
	lo, hi := boundsI32(signed)
	if f <= lo {
		return uint32(minI32(signed))
	}
	if f >= hi {
		return uint32(maxI32(signed))
	}
	if signed {
		return uint32(int32(math.Trunc(f)))
	}
	return uint32(math.Trunc(f))
}

func satTruncI64(f float64, signed bool) uint64 {
	if math.IsNaN(f) {
		return 0
	}
	lo, hi := boundsI64(signed)
	if f <= lo {
		return uint64(minI64(signed))
	}
	if f >= hi {
		return uint64(maxI64(signed))
	}
	if signed {
		return uint64(int64(math.Trunc(f)))
	}
	return uint64(math.Trunc(f))
}

func boundsI32(signed bool) (lo, hi float64) {
	if signed {
		return -0x1.0p31 - 1, 0x1.0p31
	}
	return -1, 0x1.0p32
}

func boundsI64(signed bool) (lo, hi float64) {
	if signed {
		return -0x1.0p63 - 1024, 0x1.0p63
	}
	return -1, 0x1.0p64
}

func minI32(signed bool) int32 {
	if signed {
		return math.MinInt32
	}
	return 0
}
func maxI32(signed bool) uint32 {
	if signed {
		return uint32(math.MaxInt32)
	}
	return math.MaxUint32
}
func minI64(signed bool) int64 {
	if signed {
		return math.MinInt64
	}
	return 0
}
func maxI64(signed bool) uint64 {
	if signed {
		return uint64(math.MaxInt64)
	}
	return math.MaxUint64
}

func execFD(f *frame, sub uint32, pc uint32) (uint32, *wasm.Trap) {
	body := f.fn.Code.Body
	switch sub {
	case wasm.OpSimdV128Load:
		offset, n := readMemarg(body, pc)
		pc += n
		base := uint32(f.stack.pop())
		addr, trap := boundsCheck(f.module.Memories[0], base, offset, 16)
		if trap != nil {
			return pc, trap
		}
		lo := loadLE(f.module.Memories[0], addr, 8)
		hi := loadLE(f.module.Memories[0], addr+8, 8)
		f.stack.pushV128(lo, hi)
	case wasm.OpSimdV128Store:
		offset, n := readMemarg(body, pc)
		pc += n
		hi, lo := f.stack.popV128()
		base := uint32(f.stack.pop())
		addr, trap := boundsCheck(f.module.Memories[0], base, offset, 16)
		if trap != nil {
			return pc, trap
		}
		storeLE(f.module.Memories[0], addr, lo, 8)
		storeLE(f.module.Memories[0], addr+8, hi, 8)
	case wasm.OpSimdV128Const:
		lo := le64(body, pc)
		hi := le64(body, pc+8)
		pc += 16
		f.stack.pushV128(lo, hi)
	case wasm.OpSimdI8x16Splat:
		v := uint64(uint8(f.stack.pop())) * 0x0101010101010101
		f.stack.pushV128(v, v)
	case wasm.OpSimdI16x8Splat:
		v := uint64(uint16(f.stack.pop())) * 0x0001000100010001
		f.stack.pushV128(v, v)
	case wasm.OpSimdI32x4Splat:
		v32 := uint64(uint32(f.stack.pop()))
		v := v32 | v32<<32
		f.stack.pushV128(v, v)
	case wasm.OpSimdI64x2Splat:
		v := f.stack.pop()
		f.stack.pushV128(v, v)
	case wasm.OpSimdF32x4Splat:
		v32 := uint64(math.Float32bits(f32FromSlot(f.stack.pop())))
		v := v32 | v32<<32
		f.stack.pushV128(v, v)
	case wasm.OpSimdF64x2Splat:
		v := f64ToSlot(f64FromSlot(f.stack.pop()))
		f.stack.pushV128(v, v)
	case wasm.OpSimdV128Not:
		hi, lo := f.stack.popV128()
		f.stack.pushV128(^lo, ^hi)
	case wasm.OpSimdV128And:
		b1, a1 := f.stack.popV128()
		b0, a0 := f.stack.popV128()
		f.stack.pushV128(a0&a1, b0&b1)
	case wasm.OpSimdV128Or:
		b1, a1 := f.stack.popV128()
		b0, a0 := f.stack.popV128()
		f.stack.pushV128(a0|a1, b0|b1)
	case wasm.OpSimdV128Xor:
		b1, a1 := f.stack.popV128()
		b0, a0 := f.stack.popV128()
		f.stack.pushV128(a0^a1, b0^b1)
	case wasm.OpSimdI32x4Add, wasm.OpSimdI32x4Sub, wasm.OpSimdI32x4Mul:
		hiB, loB := f.stack.popV128()
		hiA, loA := f.stack.popV128()
		lo, hi := lanewiseI32x4(loA, hiA, loB, hiB, sub)
		f.stack.pushV128(lo, hi)
	case wasm.OpSimdF32x4Add, wasm.OpSimdF32x4Sub, wasm.OpSimdF32x4Mul:
		hiB, loB := f.stack.popV128()
		hiA, loA := f.stack.popV128()
		lo, hi := lanewiseF32x4(loA, hiA, loB, hiB, sub)
		f.stack.pushV128(lo, hi)
	case wasm.OpSimdF64x2Add, wasm.OpSimdF64x2Sub, wasm.OpSimdF64x2Mul:
		hiB, loB := f.stack.popV128()
		hiA, loA := f.stack.popV128()
		a0, a1 := math.Float64frombits(loA), math.Float64frombits(hiA)
		b0, b1 := math.Float64frombits(loB), math.Float64frombits(hiB)
		var r0, r1 float64
		switch sub {
		case wasm.OpSimdF64x2Add:
			r0, r1 = a0+b0, a1+b1
		case wasm.OpSimdF64x2Sub:
			r0, r1 = a0-b0, a1-b1
		case wasm.OpSimdF64x2Mul:
			r0, r1 = a0*b0, a1*b1
		}
		f.stack.pushV128(math.Float64bits(r0), math.Float64bits(r1))
	}
	return pc, nil
}

func lanewiseI32x4(loA, hiA, loB, hiB uint64, op uint32) (lo, hi uint64) {
	a := [4]uint32{uint32(loA), uint32(loA >> 32), uint32(hiA), uint32(hiA >> 32)}
	b := [4]uint32{uint32(loB), uint32(loB >> 32), uint32(hiB), uint32(hiB >> 32)}
	var r [4]uint32
	for i := 0; i < 4; i++ {
		switch op {
		case wasm.OpSimdI32x4Add:
			r[i] = a[i] + b[i]
		case wasm.OpSimdI32x4Sub:
			r[i] = a[i] - b[i]
		case wasm.OpSimdI32x4Mul:
			r[i] = a[i] * b[i]
		}
	}
	lo = uint64(r[0]) | uint64(r[1])<<32
	hi = uint64(r[2]) | uint64(r[3])<<32
	return
}

func lanewiseF32x4(loA, hiA, loB, hiB uint64, op uint32) (lo, hi uint64) {
	decode := func(lo, hi uint64) [4]float32 {
		return [4]float32{
			math.Float32frombits(uint32(lo)),
			math.Float32frombits(uint32(lo >> 32)),
			math.Float32frombits(uint32(hi)),
			math.Float32frombits(uint32(hi >> 32)),
		}
	}
	a, b := decode(loA, hiA), decode(loB, hiB)
	var r [4]float32
	for i := 0; i < 4; i++ {
		switch op {
		case wasm.OpSimdF32x4Add:
			r[i] = a[i] + b[i]
		case wasm.OpSimdF32x4Sub:
			r[i] = a[i] - b[i]
		case wasm.OpSimdF32x4Mul:
			r[i] = a[i] * b[i]
		}
	}
	lo = uint64(math.Float32bits(r[0])) | uint64(math.Float32bits(r[1]))<<32
	hi = uint64(math.Float32bits(r[2])) | uint64(math.Float32bits(r[3]))<<32
	return
}

// atomicWidth reports the byte width an atomic load/store/RMW/cmpxchg sub-opcode operates on (1,
// 2, 4 or 8), so the engine can drive MemoryInstance.AtomicRMW with the right size for both the
// full-width and 8/16-bit partial-width variants of the threads proposal off the same dispatch.
func atomicWidth(op uint32) int {
	switch op {
	case wasm.OpAtomicI32Load8U, wasm.OpAtomicI64Load8U, wasm.OpAtomicI32Store8, wasm.OpAtomicI64Store8,
		wasm.OpAtomicI32Rmw8AddU, wasm.OpAtomicI64Rmw8AddU, wasm.OpAtomicI32Rmw8SubU, wasm.OpAtomicI64Rmw8SubU,
		wasm.OpAtomicI32Rmw8AndU, wasm.OpAtomicI64Rmw8AndU, wasm.OpAtomicI32Rmw8OrU, wasm.OpAtomicI64Rmw8OrU,
		wasm.OpAtomicI32Rmw8XorU, wasm.OpAtomicI64Rmw8XorU, wasm.OpAtomicI32Rmw8XchgU, wasm.OpAtomicI64Rmw8XchgU,
		wasm.OpAtomicI32Rmw8CmpxchgU, wasm.OpAtomicI64Rmw8CmpxchgU:
		return 1
	case wasm.OpAtomicI32Load16U, wasm.OpAtomicI64Load16U, wasm.OpAtomicI32Store16, wasm.OpAtomicI64Store16,
		wasm.OpAtomicI32Rmw16AddU, wasm.OpAtomicI64Rmw16AddU, wasm.OpAtomicI32Rmw16SubU, wasm.OpAtomicI64Rmw16SubU,
		wasm.OpAtomicI32Rmw16AndU, wasm.OpAtomicI64Rmw16AndU, wasm.OpAtomicI32Rmw16OrU, wasm.OpAtomicI64Rmw16OrU,
		wasm.OpAtomicI32Rmw16XorU, wasm.OpAtomicI64Rmw16XorU, wasm.OpAtomicI32Rmw16XchgU, wasm.OpAtomicI64Rmw16XchgU,
		wasm.OpAtomicI32Rmw16CmpxchgU, wasm.OpAtomicI64Rmw16CmpxchgU:
		return 2
	case wasm.OpAtomicI64Load32U, wasm.OpAtomicI64Store32,
		wasm.OpAtomicI64Rmw32AddU, wasm.OpAtomicI64Rmw32SubU, wasm.OpAtomicI64Rmw32AndU, wasm.OpAtomicI64Rmw32OrU,
		wasm.OpAtomicI64Rmw32XorU, wasm.OpAtomicI64Rmw32XchgU, wasm.OpAtomicI64Rmw32CmpxchgU,
		wasm.OpAtomicI32Load, wasm.OpAtomicI32Store,
		wasm.OpAtomicI32RmwAdd, wasm.OpAtomicI32RmwSub, wasm.OpAtomicI32RmwAnd, wasm.OpAtomicI32RmwOr,
		wasm.OpAtomicI32RmwXor, wasm.OpAtomicI32RmwXchg, wasm.OpAtomicI32RmwCmpxchg:
		return 4
	default:
		return 8
	}
}

func execFE(f *frame, sub uint32, pc uint32) (uint32, *wasm.Trap) {
	body := f.fn.Code.Body
	mem := f.module.Memories[0]
	switch sub {
	case wasm.OpAtomicFence:
		pc++ // reserved byte
	case wasm.OpAtomicNotify:
		_, n := readMemarg(body, pc)
		pc += n
		count := uint32(f.stack.pop())
		addr := uint32(f.stack.pop())
		mem.Notify(addr, count)
		f.stack.push(uint64(count))
	case wasm.OpAtomicWait32:
		_, n := readMemarg(body, pc)
		pc += n
		timeout := int64(f.stack.pop())
		expected := uint32(f.stack.pop())
		addr := uint32(f.stack.pop())
		if loadLE(mem, uint64(addr), 4) != uint64(expected) {
			f.stack.push(1)
		} else {
			f.stack.push(uint64(mem.Wait(addr, timeout)))
		}
	case wasm.OpAtomicWait64:
		_, n := readMemarg(body, pc)
		pc += n
		timeout := int64(f.stack.pop())
		expected := f.stack.pop()
		addr := uint32(f.stack.pop())
		if loadLE(mem, uint64(addr), 8) != expected {
			f.stack.push(1)
		} else {
			f.stack.push(uint64(mem.Wait(addr, timeout)))
		}
	case wasm.OpAtomicI32Load, wasm.OpAtomicI32Load8U, wasm.OpAtomicI32Load16U,
		wasm.OpAtomicI64Load, wasm.OpAtomicI64Load8U, wasm.OpAtomicI64Load16U, wasm.OpAtomicI64Load32U:
		offset, n := readMemarg(body, pc)
		pc += n
		addr := uint32(f.stack.pop()) + offset
		f.stack.push(mem.AtomicRMW(addr, atomicWidth(sub), func(old uint64) uint64 { return old }))
	case wasm.OpAtomicI32Store, wasm.OpAtomicI32Store8, wasm.OpAtomicI32Store16:
		offset, n := readMemarg(body, pc)
		pc += n
		v := uint32(f.stack.pop())
		addr := uint32(f.stack.pop()) + offset
		mem.AtomicRMW(addr, atomicWidth(sub), func(uint64) uint64 { return uint64(v) })
	case wasm.OpAtomicI64Store, wasm.OpAtomicI64Store8, wasm.OpAtomicI64Store16, wasm.OpAtomicI64Store32:
		offset, n := readMemarg(body, pc)
		pc += n
		v := f.stack.pop()
		addr := uint32(f.stack.pop()) + offset
		mem.AtomicRMW(addr, atomicWidth(sub), func(uint64) uint64 { return v })
	case wasm.OpAtomicI32RmwAdd, wasm.OpAtomicI32RmwSub, wasm.OpAtomicI32RmwAnd, wasm.OpAtomicI32RmwOr, wasm.OpAtomicI32RmwXor, wasm.OpAtomicI32RmwXchg,
		wasm.OpAtomicI32Rmw8AddU, wasm.OpAtomicI32Rmw16AddU, wasm.OpAtomicI32Rmw8SubU, wasm.OpAtomicI32Rmw16SubU,
		wasm.OpAtomicI32Rmw8AndU, wasm.OpAtomicI32Rmw16AndU, wasm.OpAtomicI32Rmw8OrU, wasm.OpAtomicI32Rmw16OrU,
		wasm.OpAtomicI32Rmw8XorU, wasm.OpAtomicI32Rmw16XorU, wasm.OpAtomicI32Rmw8XchgU, wasm.OpAtomicI32Rmw16XchgU:
		offset, n := readMemarg(body, pc)
		pc += n
		v := uint32(f.stack.pop())
		addr := uint32(f.stack.pop()) + offset
		old := mem.AtomicRMW(addr, atomicWidth(sub), func(old uint64) uint64 { return uint64(rmw32(sub, uint32(old), v)) })
		f.stack.push(old)
	case wasm.OpAtomicI64RmwAdd, wasm.OpAtomicI64RmwSub, wasm.OpAtomicI64RmwAnd, wasm.OpAtomicI64RmwOr, wasm.OpAtomicI64RmwXor, wasm.OpAtomicI64RmwXchg,
		wasm.OpAtomicI64Rmw8AddU, wasm.OpAtomicI64Rmw16AddU, wasm.OpAtomicI64Rmw32AddU,
		wasm.OpAtomicI64Rmw8SubU, wasm.OpAtomicI64Rmw16SubU, wasm.OpAtomicI64Rmw32SubU,
		wasm.OpAtomicI64Rmw8AndU, wasm.OpAtomicI64Rmw16AndU, wasm.OpAtomicI64Rmw32AndU,
		wasm.OpAtomicI64Rmw8OrU, wasm.OpAtomicI64Rmw16OrU, wasm.OpAtomicI64Rmw32OrU,
		wasm.OpAtomicI64Rmw8XorU, wasm.OpAtomicI64Rmw16XorU, wasm.OpAtomicI64Rmw32XorU,
		wasm.OpAtomicI64Rmw8XchgU, wasm.OpAtomicI64Rmw16XchgU, wasm.OpAtomicI64Rmw32XchgU:
		offset, n := readMemarg(body, pc)
		pc += n
		v := f.stack.pop()
		addr := uint32(f.stack.pop()) + offset
		old := mem.AtomicRMW(addr, atomicWidth(sub), func(old uint64) uint64 { return rmw64(sub, old, v) })
		f.stack.push(old)
	case wasm.OpAtomicI32RmwCmpxchg, wasm.OpAtomicI32Rmw8CmpxchgU, wasm.OpAtomicI32Rmw16CmpxchgU:
		offset, n := readMemarg(body, pc)
		pc += n
		replacement := uint32(f.stack.pop())
		expected := uint32(f.stack.pop())
		addr := uint32(f.stack.pop()) + offset
		old := mem.AtomicRMW(addr, atomicWidth(sub), func(old uint64) uint64 {
			if uint32(old) == expected {
				return uint64(replacement)
			}
			return old
		})
		f.stack.push(old)
	case wasm.OpAtomicI64RmwCmpxchg, wasm.OpAtomicI64Rmw8CmpxchgU, wasm.OpAtomicI64Rmw16CmpxchgU, wasm.OpAtomicI64Rmw32CmpxchgU:
		offset, n := readMemarg(body, pc)
		pc += n
		replacement := f.stack.pop()
		expected := f.stack.pop()
		addr := uint32(f.stack.pop()) + offset
		old := mem.AtomicRMW(addr, atomicWidth(sub), func(old uint64) uint64 {
			if old == expected {
				return replacement
			}
			return old
		})
		f.stack.push(old)
	}
	return pc, nil
}

func rmw32(op uint32, old, v uint32) uint32 {
	switch op {
	case wasm.OpAtomicI32RmwAdd, wasm.OpAtomicI32Rmw8AddU, wasm.OpAtomicI32Rmw16AddU:
		return old + v
	case wasm.OpAtomicI32RmwSub, wasm.OpAtomicI32Rmw8SubU, wasm.OpAtomicI32Rmw16SubU:
		return old - v
	case wasm.OpAtomicI32RmwAnd, wasm.OpAtomicI32Rmw8AndU, wasm.OpAtomicI32Rmw16AndU:
		return old & v
	case wasm.OpAtomicI32RmwOr, wasm.OpAtomicI32Rmw8OrU, wasm.OpAtomicI32Rmw16OrU:
		return old | v
	case wasm.OpAtomicI32RmwXor, wasm.OpAtomicI32Rmw8XorU, wasm.OpAtomicI32Rmw16XorU:
		return old ^ v
	case wasm.OpAtomicI32RmwXchg, wasm.OpAtomicI32Rmw8XchgU, wasm.OpAtomicI32Rmw16XchgU:
		return v
	}
	return old
}

func rmw64(op uint32, old, v uint64) uint64 {
	switch op {
	case wasm.OpAtomicI64RmwAdd, wasm.OpAtomicI64Rmw8AddU, wasm.OpAtomicI64Rmw16AddU, wasm.OpAtomicI64Rmw32AddU:
		return old + v
	case wasm.OpAtomicI64RmwSub, wasm.OpAtomicI64Rmw8SubU, wasm.OpAtomicI64Rmw16SubU, wasm.OpAtomicI64Rmw32SubU:
		return old - v
	case wasm.OpAtomicI64RmwAnd, wasm.OpAtomicI64Rmw8AndU, wasm.OpAtomicI64Rmw16AndU, wasm.OpAtomicI64Rmw32AndU:
		return old & v
	case wasm.OpAtomicI64RmwOr, wasm.OpAtomicI64Rmw8OrU, wasm.OpAtomicI64Rmw16OrU, wasm.OpAtomicI64Rmw32OrU:
		return old | v
	case wasm.OpAtomicI64RmwXor, wasm.OpAtomicI64Rmw8XorU, wasm.OpAtomicI64Rmw16XorU, wasm.OpAtomicI64Rmw32XorU:
		return old ^ v
	case wasm.OpAtomicI64RmwXchg, wasm.OpAtomicI64Rmw8XchgU, wasm.OpAtomicI64Rmw16XchgU, wasm.OpAtomicI64Rmw32XchgU:
		return v
	}
	return old
}
