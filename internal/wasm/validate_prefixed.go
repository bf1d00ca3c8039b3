package wasm

import "fmt"

// stepFC validates one 0xFC-prefixed instruction: the bulk-memory-operations proposal's
// memory.init/data.drop/memory.copy/memory.fill/table.init/elem.drop/table.copy/table.grow/
// table.size/table.fill, plus the nontrapping-float-to-int-conversion proposal's trunc_sat family.
func (v *validator) stepFC(opPC uint32) error {
	sub, err := v.readU32()
	if err != nil {
		return err
	}
	switch byte(sub) {
	case OpFCI32TruncSatF32S, OpFCI32TruncSatF32U:
		if err := v.requireFeature(FeatureNonTrappingFloatToIntConversion); err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeF32); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI32)
	case OpFCI32TruncSatF64S, OpFCI32TruncSatF64U:
		if err := v.requireFeature(FeatureNonTrappingFloatToIntConversion); err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeF64); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI32)
	case OpFCI64TruncSatF32S, OpFCI64TruncSatF32U:
		if err := v.requireFeature(FeatureNonTrappingFloatToIntConversion); err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeF32); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI64)
	case OpFCI64TruncSatF64S, OpFCI64TruncSatF64U:
		if err := v.requireFeature(FeatureNonTrappingFloatToIntConversion); err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeF64); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI64)

	case OpFCMemoryInit:
		if err := v.requireFeature(FeatureBulkMemoryOperations); err != nil {
			return err
		}
		if _, err := v.readU32(); err != nil { // data segment index
			return err
		}
		if _, err := v.readByte(); err != nil { // reserved memory index
			return err
		}
		return v.popOperands([]ValueType{ValueTypeI32, ValueTypeI32, ValueTypeI32})
	case OpFCDataDrop:
		if err := v.requireFeature(FeatureBulkMemoryOperations); err != nil {
			return err
		}
		_, err := v.readU32()
		return err
	case OpFCMemoryCopy:
		if err := v.requireFeature(FeatureBulkMemoryOperations); err != nil {
			return err
		}
		if _, err := v.readByte(); err != nil {
			return err
		}
		if _, err := v.readByte(); err != nil {
			return err
		}
		return v.popOperands([]ValueType{ValueTypeI32, ValueTypeI32, ValueTypeI32})
	case OpFCMemoryFill:
		if err := v.requireFeature(FeatureBulkMemoryOperations); err != nil {
			return err
		}
		if _, err := v.readByte(); err != nil {
			return err
		}
		return v.popOperands([]ValueType{ValueTypeI32, ValueTypeI32, ValueTypeI32})

	case OpFCTableInit:
		if err := v.requireFeature(FeatureBulkMemoryOperations); err != nil {
			return err
		}
		if _, err := v.readU32(); err != nil { // element segment index
			return err
		}
		if _, err := v.readU32(); err != nil { // table index
			return err
		}
		return v.popOperands([]ValueType{ValueTypeI32, ValueTypeI32, ValueTypeI32})
	case OpFCElemDrop:
		if err := v.requireFeature(FeatureBulkMemoryOperations); err != nil {
			return err
		}
		_, err := v.readU32()
		return err
	case OpFCTableCopy:
		if err := v.requireFeature(FeatureBulkMemoryOperations); err != nil {
			return err
		}
		if _, err := v.readU32(); err != nil {
			return err
		}
		if _, err := v.readU32(); err != nil {
			return err
		}
		return v.popOperands([]ValueType{ValueTypeI32, ValueTypeI32, ValueTypeI32})
	case OpFCTableGrow:
		if err := v.requireFeature(FeatureReferenceTypes); err != nil {
			return err
		}
		idx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.spaces.tables) {
			return fmt.Errorf("table.grow: index %d out of range", idx)
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		if _, err := v.popExpect(v.spaces.tables[idx].ElemType); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI32)
	case OpFCTableSize:
		if err := v.requireFeature(FeatureReferenceTypes); err != nil {
			return err
		}
		idx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.spaces.tables) {
			return fmt.Errorf("table.size: index %d out of range", idx)
		}
		v.pushOperand(ValueTypeI32)
	case OpFCTableFill:
		if err := v.requireFeature(FeatureReferenceTypes); err != nil {
			return err
		}
		idx, err := v.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.spaces.tables) {
			return fmt.Errorf("table.fill: index %d out of range", idx)
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		if _, err := v.popExpect(v.spaces.tables[idx].ElemType); err != nil {
			return err
		}
		return v.popOperands([]ValueType{ValueTypeI32})
	default:
		return fmt.Errorf("unsupported 0xFC sub-opcode %#x", sub)
	}
	return nil
}

func (v *validator) stepFD(opPC uint32) error {
	if err := v.requireFeature(FeatureSIMD); err != nil {
		return err
	}
	sub, err := v.readU32()
	if err != nil {
		return err
	}
	switch sub {
	case OpSimdV128Load:
		if len(v.spaces.mems) == 0 {
			return fmt.Errorf("v128.load with no declared memory")
		}
		if _, _, err := v.readMemarg(); err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		v.pushOperand(ValueTypeV128)
	case OpSimdV128Store:
		if len(v.spaces.mems) == 0 {
			return fmt.Errorf("v128.store with no declared memory")
		}
		if _, _, err := v.readMemarg(); err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeV128); err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
	case OpSimdV128Const:
		if v.pc+16 > uint32(len(v.body)) {
			return fmt.Errorf("unexpected end of function body reading v128.const")
		}
		v.pc += 16
		v.pushOperand(ValueTypeV128)
	case OpSimdI8x16Splat, OpSimdI16x8Splat, OpSimdI32x4Splat:
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		v.pushOperand(ValueTypeV128)
	case OpSimdI64x2Splat:
		if _, err := v.popExpect(ValueTypeI64); err != nil {
			return err
		}
		v.pushOperand(ValueTypeV128)
	case OpSimdF32x4Splat:
		if _, err := v.popExpect(ValueTypeF32); err != nil {
			return err
		}
		v.pushOperand(ValueTypeV128)
	case OpSimdF64x2Splat:
		if _, err := v.popExpect(ValueTypeF64); err != nil {
			return err
		}
		v.pushOperand(ValueTypeV128)
	case OpSimdV128Not:
		if _, err := v.popExpect(ValueTypeV128); err != nil {
			return err
		}
		v.pushOperand(ValueTypeV128)
	case OpSimdV128And, OpSimdV128Or, OpSimdV128Xor,
		OpSimdI32x4Add, OpSimdI32x4Sub, OpSimdI32x4Mul,
		OpSimdF32x4Add, OpSimdF32x4Sub, OpSimdF32x4Mul,
		OpSimdF64x2Add, OpSimdF64x2Sub, OpSimdF64x2Mul:
		if err := v.popOperands([]ValueType{ValueTypeV128, ValueTypeV128}); err != nil {
			return err
		}
		v.pushOperand(ValueTypeV128)
	default:
		return fmt.Errorf("unsupported 0xFD sub-opcode %#x", sub)
	}
	return nil
}

func (v *validator) stepFE(opPC uint32) error {
	if err := v.requireFeature(FeatureThreads); err != nil {
		return err
	}
	sub, err := v.readU32()
	if err != nil {
		return err
	}
	switch sub {
	case OpAtomicFence:
		if _, err := v.readByte(); err != nil { // reserved
			return err
		}
		return nil
	case OpAtomicNotify:
		if _, _, err := v.readMemarg(); err != nil {
			return err
		}
		if err := v.popOperands([]ValueType{ValueTypeI32, ValueTypeI32}); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI32)
	case OpAtomicWait32:
		if _, _, err := v.readMemarg(); err != nil {
			return err
		}
		if err := v.popOperands([]ValueType{ValueTypeI32, ValueTypeI32, ValueTypeI64}); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI32)
	case OpAtomicWait64:
		if _, _, err := v.readMemarg(); err != nil {
			return err
		}
		if err := v.popOperands([]ValueType{ValueTypeI32, ValueTypeI64, ValueTypeI64}); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI32)
	case OpAtomicI32Load, OpAtomicI32Load8U, OpAtomicI32Load16U:
		if _, _, err := v.readMemarg(); err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI32)
	case OpAtomicI64Load, OpAtomicI64Load8U, OpAtomicI64Load16U, OpAtomicI64Load32U:
		if _, _, err := v.readMemarg(); err != nil {
			return err
		}
		if _, err := v.popExpect(ValueTypeI32); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI64)
	case OpAtomicI32Store, OpAtomicI32Store8, OpAtomicI32Store16:
		if _, _, err := v.readMemarg(); err != nil {
			return err
		}
		if err := v.popOperands([]ValueType{ValueTypeI32, ValueTypeI32}); err != nil {
			return err
		}
	case OpAtomicI64Store, OpAtomicI64Store8, OpAtomicI64Store16, OpAtomicI64Store32:
		if _, _, err := v.readMemarg(); err != nil {
			return err
		}
		if err := v.popOperands([]ValueType{ValueTypeI32, ValueTypeI64}); err != nil {
			return err
		}
	case OpAtomicI32RmwAdd, OpAtomicI32RmwSub, OpAtomicI32RmwAnd, OpAtomicI32RmwOr, OpAtomicI32RmwXor, OpAtomicI32RmwXchg,
		OpAtomicI32Rmw8AddU, OpAtomicI32Rmw16AddU, OpAtomicI32Rmw8SubU, OpAtomicI32Rmw16SubU,
		OpAtomicI32Rmw8AndU, OpAtomicI32Rmw16AndU, OpAtomicI32Rmw8OrU, OpAtomicI32Rmw16OrU,
		OpAtomicI32Rmw8XorU, OpAtomicI32Rmw16XorU, OpAtomicI32Rmw8XchgU, OpAtomicI32Rmw16XchgU:
		if _, _, err := v.readMemarg(); err != nil {
			return err
		}
		if err := v.popOperands([]ValueType{ValueTypeI32, ValueTypeI32}); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI32)
	case OpAtomicI64RmwAdd, OpAtomicI64RmwSub, OpAtomicI64RmwAnd, OpAtomicI64RmwOr, OpAtomicI64RmwXor, OpAtomicI64RmwXchg,
		OpAtomicI64Rmw8AddU, OpAtomicI64Rmw16AddU, OpAtomicI64Rmw32AddU,
		OpAtomicI64Rmw8SubU, OpAtomicI64Rmw16SubU, OpAtomicI64Rmw32SubU,
		OpAtomicI64Rmw8AndU, OpAtomicI64Rmw16AndU, OpAtomicI64Rmw32AndU,
		OpAtomicI64Rmw8OrU, OpAtomicI64Rmw16OrU, OpAtomicI64Rmw32OrU,
		OpAtomicI64Rmw8XorU, OpAtomicI64Rmw16XorU, OpAtomicI64Rmw32XorU,
		OpAtomicI64Rmw8XchgU, OpAtomicI64Rmw16XchgU, OpAtomicI64Rmw32XchgU:
		if _, _, err := v.readMemarg(); err != nil {
			return err
		}
		if err := v.popOperands([]ValueType{ValueTypeI32, ValueTypeI64}); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI64)
	case OpAtomicI32RmwCmpxchg, OpAtomicI32Rmw8CmpxchgU, OpAtomicI32Rmw16CmpxchgU:
		if _, _, err := v.readMemarg(); err != nil {
			return err
		}
		if err := v.popOperands([]ValueType{ValueTypeI32, ValueTypeI32, ValueTypeI32}); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI32)
	case OpAtomicI64RmwCmpxchg, OpAtomicI64Rmw8CmpxchgU, OpAtomicI64Rmw16CmpxchgU, OpAtomicI64Rmw32CmpxchgU:
		if _, _, err := v.readMemarg(); err != nil {
			return err
		}
		if err := v.popOperands([]ValueType{ValueTypeI32, ValueTypeI64, ValueTypeI64}); err != nil {
			return err
		}
		v.pushOperand(ValueTypeI64)
	default:
		return fmt.Errorf("unsupported 0xFE sub-opcode %#x", sub)
	}
	return nil
}
