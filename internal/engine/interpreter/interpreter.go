package interpreter

import (
	"github.com/wasmlite/wasmlite/internal/leb128"
	"github.com/wasmlite/wasmlite/internal/wasm"
)

// labelEntry is one live entry of a frame's runtime label stack, mirroring the validator's ctrlFrame
// stack one-for-one: pushed on block/loop/if, popped on end. height is the value-stack slot count
// at the point the label's own params were pushed (i.e. excluding them), matching the base a branch
// unwinds back down to. paramSlots/resultSlots are this engine's own slot-unit counts, computed
// independently of wasm.JumpTarget.ResultCells/ParamCells: those are in api.CellsOf's 32-bit cell
// units (i64/f64 count 2, v128 counts 4), which don't translate to this engine's slot units (i64/f64
// take 1 slot, v128 takes 2) by a fixed ratio, so the engine tracks its own slot widths here instead
// of reinterpreting the validator's cell counts.
type labelEntry struct {
	height      int
	isLoop      bool
	paramSlots  int
	resultSlots int
}

// run drives f to completion, a trap, or a suspension, returning the function's result slots in
// FunctionType order. call/call_indirect invoke callFunction, which itself calls run again for a
// Wasm-defined callee, so call nesting is Go-recursive; callFunction's depth check keeps that
// bounded instead of letting unbounded Wasm recursion overflow the goroutine stack. The third
// return is non-nil only when a host function called directly from f (f.depth == 0) requested
// suspension via SuspendRequestFromContext: f's own position is saved for Engine.Resume, with the
// call instruction that invoked the host function rewound so resuming replays it.
func (e *Engine) run(f *frame) ([]uint64, *wasm.Trap, *RestartRecord) {
	body := f.fn.Code.Body
	info := f.fn.Code.Info
	labelCap := 1
	if info != nil {
		labelCap = info.MaxLabels + 1
	}
	labels := make([]labelEntry, 1, labelCap)
	labels[0] = labelEntry{height: 0, isLoop: false, resultSlots: typeCells(f.fn.Type.Results)}

	for {
		if f.pc >= uint32(len(body)) {
			return nil, wasm.NewTrap(wasm.TrapKindUnreachable), nil
		}
		opPC := f.pc
		op := body[f.pc]
		f.pc++

		switch {
		case op == wasm.OpUnreachable:
			return nil, wasm.NewTrap(wasm.TrapKindUnreachable), nil

		case op == wasm.OpNop:
			// no-op

		case op == wasm.OpBlock || op == wasm.OpLoop || op == wasm.OpIf:
			params, results, width := decodeBlockType(body, f.pc, f.module)
			f.pc += width
			skipBody := false
			if op == wasm.OpIf {
				if f.stack.pop() == 0 {
					jt := info.Jumps[opPC]
					if jt.HasElse {
						f.pc = jt.ElseTarget
					} else {
						f.pc = jt.Target
						skipBody = true
					}
				}
			}
			if !skipBody {
				labels = append(labels, labelEntry{
					height:      f.stack.len() - typeCells(params),
					isLoop:      op == wasm.OpLoop,
					paramSlots:  typeCells(params),
					resultSlots: typeCells(results),
				})
			}

		case op == wasm.OpElse:
			jt := info.Jumps[opPC]
			f.pc = jt.Target

		case op == wasm.OpEnd:
			labels = labels[:len(labels)-1]
			if len(labels) == 0 {
				return collectResults(f.stack, typeCells(f.fn.Type.Results)), nil, nil
			}

		case op == wasm.OpBr:
			depth, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			jt := info.Jumps[opPC]
			labels = takeBranch(f.stack, labels, depth, jt.Target, &f.pc)

		case op == wasm.OpBrIf:
			depth, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			if f.stack.pop() != 0 {
				jt := info.Jumps[opPC]
				labels = takeBranch(f.stack, labels, depth, jt.Target, &f.pc)
			}

		case op == wasm.OpBrTable:
			count, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			depths := make([]uint32, count)
			for i := range depths {
				d, w := leb128.UncheckedUint32(body, f.pc)
				f.pc += w
				depths[i] = d
			}
			defaultDepth, w := leb128.UncheckedUint32(body, f.pc)
			f.pc += w
			idx := uint32(f.stack.pop())
			var depth uint32
			var jt wasm.JumpTarget
			if idx < uint32(len(depths)) {
				depth = depths[idx]
				jt = info.BrTableTargets[opPC][idx]
			} else {
				depth = defaultDepth
				jt = info.BrTableTargets[opPC][len(depths)]
			}
			labels = takeBranch(f.stack, labels, depth, jt.Target, &f.pc)

		case op == wasm.OpReturn:
			return collectResults(f.stack, typeCells(f.fn.Type.Results)), nil, nil

		case op == wasm.OpCall:
			idx, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			callee := f.module.Functions[idx]
			args := popArgs(f.stack, typeCells(callee.Type.Params))
			results, trap, restart := e.dispatchCall(f, callee, opPC, args)
			if restart != nil {
				return nil, nil, restart
			}
			if trap != nil {
				return nil, trap, nil
			}
			for _, v := range results {
				f.stack.push(v)
			}

		case op == wasm.OpCallIndirect:
			typeIdx, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			tableIdx, n2 := leb128.UncheckedUint32(body, f.pc)
			f.pc += n2
			callee, trap := resolveIndirect(f.module, tableIdx, typeIdx, uint32(f.stack.pop()))
			if trap != nil {
				return nil, trap, nil
			}
			args := popArgs(f.stack, typeCells(callee.Type.Params))
			results, trap, restart := e.dispatchCall(f, callee, opPC, args)
			if restart != nil {
				return nil, nil, restart
			}
			if trap != nil {
				return nil, trap, nil
			}
			for _, v := range results {
				f.stack.push(v)
			}

		case op == wasm.OpReturnCall:
			idx, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			callee := f.module.Functions[idx]
			results, restart, trap, interrupted := e.callFunction(f.ctx, callee, popArgs(f.stack, typeCells(callee.Type.Params)), f.depth+1)
			if interrupted {
				return nil, wasm.NewTrap(wasm.TrapKindInterrupted), nil
			}
			return results, trap, restart

		case op == wasm.OpReturnCallIndirect:
			typeIdx, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			tableIdx, n2 := leb128.UncheckedUint32(body, f.pc)
			f.pc += n2
			callee, trap := resolveIndirect(f.module, tableIdx, typeIdx, uint32(f.stack.pop()))
			if trap != nil {
				return nil, trap, nil
			}
			results, restart, trap, interrupted := e.callFunction(f.ctx, callee, popArgs(f.stack, typeCells(callee.Type.Params)), f.depth+1)
			if interrupted {
				return nil, wasm.NewTrap(wasm.TrapKindInterrupted), nil
			}
			return results, trap, restart

		case op == wasm.OpDrop:
			if annotationSlots(info.Annotations[opPC].Cells) == 2 {
				f.stack.popV128()
			} else {
				f.stack.pop()
			}

		case op == wasm.OpSelect:
			cond := f.stack.pop()
			if annotationSlots(info.Annotations[opPC].Cells) == 2 {
				hi2, lo2 := f.stack.popV128()
				hi1, lo1 := f.stack.popV128()
				if cond != 0 {
					f.stack.pushV128(lo1, hi1)
				} else {
					f.stack.pushV128(lo2, hi2)
				}
			} else {
				v2 := f.stack.pop()
				v1 := f.stack.pop()
				if cond != 0 {
					f.stack.push(v1)
				} else {
					f.stack.push(v2)
				}
			}

		case op == wasm.OpSelectT:
			count, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			f.pc += count // one value-type byte per declared result, always 1 in practice
			cond := f.stack.pop()
			v2 := f.stack.pop()
			v1 := f.stack.pop()
			if cond != 0 {
				f.stack.push(v1)
			} else {
				f.stack.push(v2)
			}

		case op == wasm.OpLocalGet:
			idx, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			for _, v := range f.localSlots(idx) {
				f.stack.push(v)
			}

		case op == wasm.OpLocalSet:
			idx, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			slots := f.localSlots(idx)
			for i := len(slots) - 1; i >= 0; i-- {
				slots[i] = f.stack.pop()
			}

		case op == wasm.OpLocalTee:
			idx, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			slots := f.localSlots(idx)
			copy(slots, f.stack.topN(len(slots)))

		case op == wasm.OpGlobalGet:
			idx, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			f.stack.push(f.module.Globals[idx].Get())

		case op == wasm.OpGlobalSet:
			idx, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			f.module.Globals[idx].Set(f.stack.pop())

		case op == wasm.OpTableGet:
			idx, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			tbl := f.module.Tables[idx]
			i := uint32(f.stack.pop())
			if int(i) >= len(tbl.Elements) {
				return nil, wasm.NewTrap(wasm.TrapKindOutOfBoundsTableAccess), nil
			}
			f.stack.push(tbl.Elements[i])

		case op == wasm.OpTableSet:
			idx, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			tbl := f.module.Tables[idx]
			v := f.stack.pop()
			i := uint32(f.stack.pop())
			if int(i) >= len(tbl.Elements) {
				return nil, wasm.NewTrap(wasm.TrapKindOutOfBoundsTableAccess), nil
			}
			tbl.Elements[i] = v

		case op == wasm.OpRefNull:
			f.pc++ // reftype byte
			f.stack.push(0)

		case op == wasm.OpRefIsNull:
			f.stack.push(b2u(f.stack.pop() == 0))

		case op == wasm.OpRefFunc:
			idx, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			f.stack.push(uint64(idx) + 1)

		case op == wasm.OpI32Const:
			v, n := leb128.UncheckedInt32(body, f.pc)
			f.pc += n
			f.stack.push(uint64(uint32(v)))

		case op == wasm.OpI64Const:
			v, n := leb128.UncheckedInt64(body, f.pc)
			f.pc += n
			f.stack.push(uint64(v))

		case op == wasm.OpF32Const:
			f.stack.push(uint64(le32(body, f.pc)))
			f.pc += 4

		case op == wasm.OpF64Const:
			f.stack.push(le64(body, f.pc))
			f.pc += 8

		case op == wasm.OpMemorySize:
			f.pc++ // reserved memory index
			f.stack.push(uint64(f.module.Memories[0].PageCount()))

		case op == wasm.OpMemoryGrow:
			f.pc++
			delta := uint32(f.stack.pop())
			prev, ok := f.module.Memories[0].Grow(delta)
			if !ok {
				f.stack.push(uint64(uint32(0xFFFFFFFF)))
			} else {
				f.stack.push(uint64(prev))
			}

		case op == wasm.OpPrefixFC:
			sub, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			var trap *wasm.Trap
			f.pc, trap = execFC(f, sub, f.pc)
			if trap != nil {
				return nil, trap, nil
			}

		case op == wasm.OpPrefixFD:
			sub, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			var trap *wasm.Trap
			f.pc, trap = execFD(f, sub, f.pc)
			if trap != nil {
				return nil, trap, nil
			}

		case op == wasm.OpPrefixFE:
			sub, n := leb128.UncheckedUint32(body, f.pc)
			f.pc += n
			var trap *wasm.Trap
			f.pc, trap = execFE(f, sub, f.pc)
			if trap != nil {
				return nil, trap, nil
			}

		case isMemoryLoadOp(op):
			offset, n := readMemarg(body, f.pc)
			f.pc += n
			base := uint32(f.stack.pop())
			v, trap := execLoad(f.module.Memories[0], base, offset, op)
			if trap != nil {
				return nil, trap, nil
			}
			f.stack.push(v)

		case isMemoryStoreOp(op):
			offset, n := readMemarg(body, f.pc)
			f.pc += n
			v := f.stack.pop()
			base := uint32(f.stack.pop())
			if trap := execStore(f.module.Memories[0], base, offset, op, v); trap != nil {
				return nil, trap, nil
			}

		default:
			if trap := execNumeric(f.stack, op); trap != nil {
				return nil, trap, nil
			}
		}
	}
}

// dispatchCall invokes callee from the call/call_indirect at opPC in f, handling depth propagation
// and a context cancellation the same way every other call site does. When callee is a host
// function called directly from f (f.depth == 0) and it requested suspension, dispatchCall rewinds
// f.pc to opPC and restores args to the value stack so Resume replays this same call instruction,
// returning a RestartRecord in place of results.
func (e *Engine) dispatchCall(f *frame, callee *wasm.FunctionInstance, opPC uint32, args []uint64) ([]uint64, *wasm.Trap, *RestartRecord) {
	results, restart, trap, interrupted := e.callFunction(f.ctx, callee, args, f.depth+1)
	if interrupted {
		return nil, wasm.NewTrap(wasm.TrapKindInterrupted), nil
	}
	if trap != nil {
		return nil, trap, nil
	}
	if restart != nil {
		return nil, nil, restart
	}
	if f.depth == 0 && callee.IsHostFunction() {
		if rq := SuspendRequestFromContext(f.ctx); rq != nil && rq.requested {
			f.pc = opPC
			for _, v := range args {
				f.stack.push(v)
			}
			return nil, nil, &RestartRecord{Frame: f}
		}
	}
	return results, nil, nil
}

// takeBranch performs the value-stack unwind for a branch of the given depth and returns the label
// stack truncated to reflect which labels the branch closes: depth entries for the frames crossed,
// plus one more unless the target itself is a loop (branching back into a loop keeps it open). *pc
// is set to target on return.
func takeBranch(s *valueStack, labels []labelEntry, depth uint32, target uint32, pc *uint32) []labelEntry {
	entry := labels[len(labels)-1-int(depth)]
	width := entry.resultSlots
	if entry.isLoop {
		width = entry.paramSlots
	}
	s.unwindTo(entry.height, width)
	closes := int(depth) + 1
	if entry.isLoop {
		closes = int(depth)
	}
	*pc = target
	return labels[:len(labels)-closes]
}

func collectResults(s *valueStack, cells int) []uint64 {
	out := make([]uint64, cells)
	copy(out, s.slots[len(s.slots)-cells:])
	s.truncate(len(s.slots) - cells)
	return out
}

func popArgs(s *valueStack, cells int) []uint64 {
	args := make([]uint64, cells)
	copy(args, s.slots[len(s.slots)-cells:])
	s.truncate(len(s.slots) - cells)
	return args
}

// typeCells is this engine's slot-unit width of a type list, i.e. slotsOf summed, as distinct from
// wasm.JumpTarget's cell-unit counts (see the labelEntry doc comment above).
func typeCells(ts []wasm.ValueType) int {
	n := 0
	for _, t := range ts {
		n += slotsOf(t)
	}
	return n
}

// annotationSlots translates a wasm.CellAnnotation's 32-bit cell width (always describing one value)
// into this engine's slot count: only v128 (4 cells) needs 2 slots, every other width needs 1.
func annotationSlots(cells int) int {
	if cells == 4 {
		return 2
	}
	return 1
}

// decodeBlockType re-decodes a block/loop/if's blocktype immediate the same way
// validator.blockTypeOf does, returning the param/result type lists and the immediate's byte width.
func decodeBlockType(body []byte, pc uint32, module *wasm.ModuleInstance) (params, results []wasm.ValueType, width uint32) {
	s33, n, err := leb128.LoadInt33(body[pc:])
	if err != nil {
		return nil, nil, 1
	}
	width = uint32(n)
	if s33 == -64 {
		return nil, nil, width
	}
	if s33 < 0 {
		vt := wasm.ValueType((s33 + 128) & 0x7f)
		return nil, []wasm.ValueType{vt}, width
	}
	ft := module.Types[s33]
	return ft.Params, ft.Results, width
}

func resolveIndirect(module *wasm.ModuleInstance, tableIdx, typeIdx, elemIdx uint32) (*wasm.FunctionInstance, *wasm.Trap) {
	tbl := module.Tables[tableIdx]
	if int(elemIdx) >= len(tbl.Elements) {
		return nil, wasm.NewTrap(wasm.TrapKindOutOfBoundsTableAccess)
	}
	raw := tbl.Elements[elemIdx]
	if raw == 0 {
		return nil, wasm.NewTrap(wasm.TrapKindUninitializedElement)
	}
	callee := module.Functions[raw-1]
	want := module.Types[typeIdx]
	if !callee.Type.Equal(want) {
		return nil, wasm.NewTrap(wasm.TrapKindIndirectCallTypeMismatch)
	}
	return callee, nil
}

func le32(body []byte, pc uint32) uint32 {
	return uint32(body[pc]) | uint32(body[pc+1])<<8 | uint32(body[pc+2])<<16 | uint32(body[pc+3])<<24
}

func le64(body []byte, pc uint32) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(body[pc+uint32(i)]) << (8 * i)
	}
	return v
}

func readMemarg(body []byte, pc uint32) (offset uint32, n uint32) {
	_, na := leb128.UncheckedUint32(body, pc) // alignment hint, unused by this engine
	o, no := leb128.UncheckedUint32(body, pc+na)
	return o, na + no
}

func isMemoryLoadOp(op byte) bool {
	return op >= wasm.OpI32Load && op <= wasm.OpI64Load32U
}

func isMemoryStoreOp(op byte) bool {
	return op >= wasm.OpI32Store && op <= wasm.OpI64Store32
}
