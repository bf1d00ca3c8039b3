package wasm

import (
	"encoding/binary"
	"fmt"

	"github.com/wasmlite/wasmlite/internal/leb128"
)

func (v *validator) requireFeature(f Features) error {
	if !v.features.IsEnabled(f) {
		return fmt.Errorf("opcode requires the %s feature, which is disabled", f)
	}
	return nil
}

func (v *validator) readByte() (byte, error) {
	if v.pc >= uint32(len(v.body)) {
		return 0, fmt.Errorf("unexpected end of function body")
	}
	b := v.body[v.pc]
	v.pc++
	return b, nil
}

func (v *validator) readU32() (uint32, error) {
	val, n, err := leb128.LoadUint32(v.body[v.pc:])
	if err != nil {
		return 0, err
	}
	v.pc += uint32(n)
	return val, nil
}

func (v *validator) readI32() (int32, error) {
	val, n, err := leb128.LoadInt32(v.body[v.pc:])
	if err != nil {
		return 0, err
	}
	v.pc += uint32(n)
	return val, nil
}

func (v *validator) readI64() (int64, error) {
	val, n, err := leb128.LoadInt64(v.body[v.pc:])
	if err != nil {
		return 0, err
	}
	v.pc += uint32(n)
	return val, nil
}

func (v *validator) readS33() (int64, error) {
	val, n, err := leb128.LoadInt33(v.body[v.pc:])
	if err != nil {
		return 0, err
	}
	v.pc += uint32(n)
	return val, nil
}

func (v *validator) readF32Bits() (uint32, error) {
	if v.pc+4 > uint32(len(v.body)) {
		return 0, fmt.Errorf("unexpected end of function body reading f32.const")
	}
	bits := binary.LittleEndian.Uint32(v.body[v.pc:])
	v.pc += 4
	return bits, nil
}

func (v *validator) readF64Bits() (uint64, error) {
	if v.pc+8 > uint32(len(v.body)) {
		return 0, fmt.Errorf("unexpected end of function body reading f64.const")
	}
	bits := binary.LittleEndian.Uint64(v.body[v.pc:])
	v.pc += 8
	return bits, nil
}

func (v *validator) readMemarg() (align, offset uint32, err error) {
	if align, err = v.readU32(); err != nil {
		return
	}
	offset, err = v.readU32()
	return
}

// blockTypeOf decodes an s33 blocktype into params/results (spec.md §4.2 Blocktype).
func (v *validator) blockTypeOf(s33 int64) (params, results []ValueType, err error) {
	if s33 == -64 {
		return nil, nil, nil
	}
	if s33 < 0 {
		vt := ValueType((s33 + 128) & 0x7f)
		switch vt {
		case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64, ValueTypeV128, ValueTypeFuncref, ValueTypeExternref:
			return nil, []ValueType{vt}, nil
		}
		return nil, nil, fmt.Errorf("invalid inline block value type %#x", vt)
	}
	idx := int(s33)
	if idx >= len(v.mod.TypeSection) {
		return nil, nil, fmt.Errorf("block type index %d out of range", idx)
	}
	ft := v.mod.TypeSection[idx]
	return ft.Params, ft.Results, nil
}

// step decodes and validates one instruction at v.pc, advancing it past the opcode and its
// immediates.
func (v *validator) step() error {
	opPC := v.pc
	op, err := v.readByte()
	if err != nil {
		return err
	}

	if sig, ok := NumericOpcodeTable[op]; ok {
		if need := featureGatedNumeric(op); need != 0 {
			if err := v.requireFeature(need); err != nil {
				return err
			}
		}
		if err := v.popOperands(sig.In); err != nil {
			return err
		}
		v.pushOperands(sig.Out)
		return nil
	}

	switch op {
	case OpUnreachable:
		v.setUnreachable()
	case OpNop:
		// no-op

	case OpBlock, OpLoop, OpIf:
		s33, err := v.readS33()
		if err != nil {
			return err
		}
		bodyStartPC := v.pc // byte offset right after the blocktype immediate
		params, results, err := v.blockTypeOf(s33)
		if err != nil {
			return err
		}
		if op == OpIf {
			if _, err := v.popExpect(ValueTypeI32); err != nil {
				return err
			}
		} else {
			if err := v.popOperands(params); err != nil {
				return err
			}
		}
		v.frames = append(v.frames, ctrlFrame{
			opcode:  op,
			params:  params,
			results: results,
			height:  len(v.opStack),
			ownPC:   opPC,
		})
		if len(v.frames) > v.maxLabels {
			v.maxLabels = len(v.frames)
		}
		v.pushOperands(params)
		if op == OpLoop {
			v.resolveFrameTarget(&v.frames[len(v.frames)-1], bodyStartPC)
		}

	case OpElse:
		frame, err := v.popFrame()
		if err != nil {
			return err
		}
		if frame.opcode != OpIf {
			return fmt.Errorf("else without matching if")
		}
		// The `if`'s own false-branch jump is fully known now: on a false condition execution
		// jumps straight past the else opcode into the else-branch's body.
		v.info.Jumps[frame.ownPC] = JumpTarget{HasElse: true, ElseTarget: v.pc, ResultCells: cellsOfAll(frame.results), ParamCells: cellsOfAll(frame.params)}

		// else starts a sibling block sharing the if's label depth and result type, with a fresh
		// operand region. Its own byte position becomes an unconditional skip-to-end once the
		// matching end is reached, for when the then-branch falls through into it.
		v.frames = append(v.frames, ctrlFrame{
			opcode:  OpElse,
			params:  frame.params,
			results: frame.results,
			height:  frame.height,
			ownPC:   frame.ownPC,
			// branches out of the then-arm still wait for the matching end's position
			pendingBranches: frame.pendingBranches,
			pendingBrTable:  frame.pendingBrTable,
		})
		elseFrame := &v.frames[len(v.frames)-1]
		elseFrame.pendingBranches = append(elseFrame.pendingBranches, opPC)
		v.pushOperands(frame.params)

	case OpEnd:
		frame, err := v.popFrame()
		if err != nil {
			return err
		}
		if frame.opcode == OpBlock || frame.opcode == OpIf || frame.opcode == OpElse {
			v.resolveFrameTarget(&frame, v.pc)
			if frame.opcode == OpIf {
				// An `if` with no `else` falls straight through to its own end on a false condition.
				v.info.Jumps[frame.ownPC] = JumpTarget{Target: v.pc, ResultCells: cellsOfAll(frame.results), ParamCells: cellsOfAll(frame.params)}
			}
		}
		if len(v.frames) > 0 {
			v.pushOperands(frame.results)
		}

	case OpBr:
		depth, err := v.readU32()
		if err != nil {
			return err
		}
		frame, err := v.labelFrame(depth)
		if err != nil {
			return err
		}
		if err := v.popOperands(branchTypes(frame)); err != nil {
			return err
		}
		v.recordBranch(opPC, frame)
		v.setUnreachable()

	case OpBrIf:
		depth, err := v.readU32()
		if err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		frame, err := v.labelFrame(depth)
		if err != nil {
			return err
		}
		bt := branchTypes(frame)
		if err := v.popOperands(bt); err != nil {
			return err
		}
		v.recordBranch(opPC, frame)
		v.pushOperands(bt)

	case OpBrTable:
		count, err := v.readU32()
		if err != nil {
			return err
		}
		depths := make([]uint32, count)
		for i := range depths {
			if depths[i], err = v.readU32(); err != nil {
				return err
			}
		}
		defaultDepth, err := v.readU32()
		if err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		defaultFrame, err := v.labelFrame(defaultDepth)
		if err != nil {
			return err
		}
		arity := len(branchTypes(defaultFrame))
		targets := make([]JumpTarget, len(depths)+1)
		v.info.BrTableTargets[opPC] = targets
		for i, d := range depths {
			f, err := v.labelFrame(d)
			if err != nil {
				return err
			}
			if len(branchTypes(f)) != arity {
				return fmt.Errorf("br_table labels have inconsistent arity")
			}
			if err := v.popOperands(branchTypes(f)); err != nil {
				return err
			}
			v.pushOperands(branchTypes(f))
			v.recordBrTableTarget(opPC, i, f)
		}
		if err := v.popOperands(branchTypes(defaultFrame)); err != nil {
			return err
		}
		v.recordBrTableTarget(opPC, len(depths), defaultFrame)
		v.setUnreachable()

	case OpReturn:
		fn := &v.frames[0]
		if err := v.popOperands(fn.results); err != nil {
			return err
		}
		v.setUnreachable()

	case OpCall:
		idx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.spaces.funcs) {
			return fmt.Errorf("call: function index %d out of range", idx)
		}
		ft := v.spaces.funcs[idx]
		if err := v.popOperands(ft.Params); err != nil {
			return err
		}
		v.pushOperands(ft.Results)

	case OpCallIndirect:
		typeIdx, err := v.readU32()
		if err != nil {
			return err
		}
		tableIdx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(tableIdx) >= len(v.spaces.tables) {
			return fmt.Errorf("call_indirect: table index %d out of range", tableIdx)
		}
		if int(typeIdx) >= len(v.mod.TypeSection) {
			return fmt.Errorf("call_indirect: type index %d out of range", typeIdx)
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		ft := v.mod.TypeSection[typeIdx]
		if err := v.popOperands(ft.Params); err != nil {
			return err
		}
		v.pushOperands(ft.Results)

	case OpReturnCall:
		if err := v.requireFeature(FeatureTailCall); err != nil {
			return err
		}
		idx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.spaces.funcs) {
			return fmt.Errorf("return_call: function index %d out of range", idx)
		}
		ft := v.spaces.funcs[idx]
		fn := &v.frames[0]
		if !sameTypes(ft.Results, fn.results) {
			return fmt.Errorf("return_call: callee's result types must match the caller's")
		}
		if err := v.popOperands(ft.Params); err != nil {
			return err
		}
		v.setUnreachable()

	case OpReturnCallIndirect:
		if err := v.requireFeature(FeatureTailCall); err != nil {
			return err
		}
		typeIdx, err := v.readU32()
		if err != nil {
			return err
		}
		tableIdx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(tableIdx) >= len(v.spaces.tables) {
			return fmt.Errorf("return_call_indirect: table index %d out of range", tableIdx)
		}
		if int(typeIdx) >= len(v.mod.TypeSection) {
			return fmt.Errorf("return_call_indirect: type index %d out of range", typeIdx)
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		ft := v.mod.TypeSection[typeIdx]
		fn := &v.frames[0]
		if !sameTypes(ft.Results, fn.results) {
			return fmt.Errorf("return_call_indirect: callee's result types must match the caller's")
		}
		if err := v.popOperands(ft.Params); err != nil {
			return err
		}
		v.setUnreachable()

	case OpDrop:
		t, err := v.popOperand()
		if err != nil {
			return err
		}
		v.info.Annotations[opPC] = CellAnnotation{Cells: cellsOfOrOne(t)}

	case OpSelect:
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		t2, err := v.popOperand()
		if err != nil {
			return err
		}
		t1, err := v.popExpect(t2)
		if err != nil {
			return err
		}
		if !IsNumericOrVectorType(t1) && t1 != valueTypeUnknown {
			return fmt.Errorf("select without an explicit type requires a numeric or v128 operand")
		}
		v.pushOperand(t1)
		v.info.Annotations[opPC] = CellAnnotation{Cells: cellsOfOrOne(t1)}

	case OpSelectT:
		n, err := v.readU32()
		if err != nil {
			return err
		}
		if n != 1 {
			return fmt.Errorf("select with explicit types supports exactly one result type")
		}
		t, err := v.readByte()
		if err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		if err := v.popOperands([]ValueType{t, t}); err != nil {
			return err
		}
		v.pushOperand(t)
		v.info.Annotations[opPC] = CellAnnotation{Cells: cellsOf(t)}

	case OpLocalGet:
		idx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.locals) {
			return fmt.Errorf("local.get: index %d out of range", idx)
		}
		v.pushOperand(v.locals[idx])

	case OpLocalSet:
		idx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.locals) {
			return fmt.Errorf("local.set: index %d out of range", idx)
		}
		if _, err := v.popExpect(v.locals[idx]); err != nil {
			return err
		}

	case OpLocalTee:
		idx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.locals) {
			return fmt.Errorf("local.tee: index %d out of range", idx)
		}
		t, err := v.popExpect(v.locals[idx])
		if err != nil {
			return err
		}
		v.pushOperand(t)

	case OpGlobalGet:
		idx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.spaces.globals) {
			return fmt.Errorf("global.get: index %d out of range", idx)
		}
		v.pushOperand(v.spaces.globals[idx].ValType)

	case OpGlobalSet:
		idx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.spaces.globals) {
			return fmt.Errorf("global.set: index %d out of range", idx)
		}
		g := v.spaces.globals[idx]
		if !g.Mutable {
			return fmt.Errorf("global.set: global %d is immutable", idx)
		}
		if _, err := v.popExpect(g.ValType); err != nil {
			return err
		}

	case OpTableGet:
		idx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.spaces.tables) {
			return fmt.Errorf("table.get: index %d out of range", idx)
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		v.pushOperand(v.spaces.tables[idx].ElemType)

	case OpTableSet:
		idx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.spaces.tables) {
			return fmt.Errorf("table.set: index %d out of range", idx)
		}
		t := v.spaces.tables[idx]
		if _, err := v.popExpect(t.ElemType); err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}

	case OpRefNull:
		t, err := v.readByte()
		if err != nil {
			return err
		}
		if !IsReferenceType(t) {
			return fmt.Errorf("ref.null: not a reference type: %#x", t)
		}
		v.pushOperand(t)

	case OpRefIsNull:
		t, err := v.popOperand()
		if err != nil {
			return err
		}
		if t != valueTypeUnknown && !IsReferenceType(t) {
			return fmt.Errorf("ref.is_null: operand is not a reference type")
		}
		v.info.Annotations[opPC] = CellAnnotation{Cells: cellsOfOrOne(t)}
		v.pushOperand(ValueTypeI32)

	case OpRefFunc:
		idx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.spaces.funcs) {
			return fmt.Errorf("ref.func: index %d out of range", idx)
		}
		v.pushOperand(ValueTypeFuncref)

	case OpI32Const:
		if _, err := v.readI32(); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI32)
	case OpI64Const:
		if _, err := v.readI64(); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI64)
	case OpF32Const:
		if _, err := v.readF32Bits(); err != nil {
			return err
		}
		v.pushOperand(ValueTypeF32)
	case OpF64Const:
		if _, err := v.readF64Bits(); err != nil {
			return err
		}
		v.pushOperand(ValueTypeF64)

	case OpMemorySize:
		if _, err := v.readByte(); err != nil { // reserved memory index byte
			return err
		}
		if len(v.spaces.mems) == 0 {
			return fmt.Errorf("memory.size: module declares no memory")
		}
		v.pushOperand(ValueTypeI32)
	case OpMemoryGrow:
		if _, err := v.readByte(); err != nil {
			return err
		}
		if len(v.spaces.mems) == 0 {
			return fmt.Errorf("memory.grow: module declares no memory")
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI32)

	case OpPrefixFC:
		return v.stepFC(opPC)
	case OpPrefixFD:
		return v.stepFD(opPC)
	case OpPrefixFE:
		return v.stepFE(opPC)

	default:
		if isMemoryLoadOrStore(op) {
			return v.stepMemoryOp(op)
		}
		return fmt.Errorf("unsupported opcode %#x", op)
	}
	return nil
}

// recordBrTableTarget fills in BrTableTargets[pc][index] for one of a br_table's labels,
// immediately if frame's target is already known, or deferred via frame.pendingBrTable otherwise.
func (v *validator) recordBrTableTarget(pc uint32, index int, frame *ctrlFrame) {
	bt := branchTypes(frame)
	jt := JumpTarget{ResultCells: cellsOfAll(bt), ParamCells: cellsOfAll(frame.params)}
	if frame.resolvedTarget != nil {
		jt.Target = *frame.resolvedTarget
		v.info.BrTableTargets[pc][index] = jt
	} else {
		frame.pendingBrTable = append(frame.pendingBrTable, brTablePatch{pc: pc, index: index})
	}
}

func sameTypes(a, b []ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isMemoryLoadOrStore(op byte) bool {
	return op >= OpI32Load && op <= OpI64Store32
}

func (v *validator) stepMemoryOp(op byte) error {
	if len(v.spaces.mems) == 0 {
		return fmt.Errorf("memory instruction with no declared memory")
	}
	if _, _, err := v.readMemarg(); err != nil {
		return err
	}
	switch op {
	case OpI32Load, OpI32Load8S, OpI32Load8U, OpI32Load16S, OpI32Load16U:
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI32)
	case OpI64Load, OpI64Load8S, OpI64Load8U, OpI64Load16S, OpI64Load16U, OpI64Load32S, OpI64Load32U:
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI64)
	case OpF32Load:
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		v.pushOperand(ValueTypeF32)
	case OpF64Load:
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		v.pushOperand(ValueTypeF64)
	case OpI32Store, OpI32Store8, OpI32Store16:
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
	case OpI64Store, OpI64Store8, OpI64Store16, OpI64Store32:
		if _, err := v.popExpect(ValueTypeI64); err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
	case OpF32Store:
		if _, err := v.popExpect(ValueTypeF32); err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
	case OpF64Store:
		if _, err := v.popExpect(ValueTypeF64); err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
	}
	return nil
}
