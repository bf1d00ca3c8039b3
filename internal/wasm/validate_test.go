package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func u32leb(v uint32) []byte { return leb(uint64(v)) }

func leb(v uint64) []byte {
	out := []byte{}
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}

func sleb(v int64) []byte {
	out := []byte{}
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBit := b&0x40 != 0
		if (v == 0 && !signBit) || (v == -1 && signBit) {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestValidateSimpleAddFunction(t *testing.T) {
	// (func (param i32 i32) (result i32) local.get 0 local.get 1 i32.add)
	mod := &Module{
		TypeSection:     []*FunctionType{{Params: []ValueType{ValueTypeI32, ValueTypeI32}, Results: []ValueType{ValueTypeI32}}},
		FunctionSection: []Index{0},
		CodeSection: []*Code{{
			Body: concat(
				[]byte{OpLocalGet}, u32leb(0),
				[]byte{OpLocalGet}, u32leb(1),
				[]byte{0x6A}, // i32.add
				[]byte{OpEnd},
			),
		}},
	}
	err := Validate(mod, FeaturesMVP)
	require.NoError(t, err)
	require.NotNil(t, mod.CodeSection[0].Info)
}

func TestValidateTypeMismatchFails(t *testing.T) {
	// (func (result i32) i64.const 0)  -- wrong result type
	mod := &Module{
		TypeSection:     []*FunctionType{{Results: []ValueType{ValueTypeI32}}},
		FunctionSection: []Index{0},
		CodeSection: []*Code{{
			Body: concat([]byte{OpI64Const}, sleb(0), []byte{OpEnd}),
		}},
	}
	err := Validate(mod, FeaturesMVP)
	require.Error(t, err)
}

func TestValidateStackUnderflowFails(t *testing.T) {
	mod := &Module{
		TypeSection:     []*FunctionType{{Results: []ValueType{ValueTypeI32}}},
		FunctionSection: []Index{0},
		CodeSection: []*Code{{
			Body: []byte{0x6A, OpEnd}, // i32.add with nothing on the stack
		}},
	}
	err := Validate(mod, FeaturesMVP)
	require.Error(t, err)
}

func TestValidateIfElseBranches(t *testing.T) {
	// (func (param i32) (result i32)
	//   local.get 0
	//   if (result i32)
	//     i32.const 1
	//   else
	//     i32.const 2
	//   end)
	mod := &Module{
		TypeSection:     []*FunctionType{{Params: []ValueType{ValueTypeI32}, Results: []ValueType{ValueTypeI32}}},
		FunctionSection: []Index{0},
		CodeSection: []*Code{{
			Body: concat(
				[]byte{OpLocalGet}, u32leb(0),
				[]byte{OpIf}, sleb(int64(ValueTypeI32)-128),
				[]byte{OpI32Const}, sleb(1),
				[]byte{OpElse},
				[]byte{OpI32Const}, sleb(2),
				[]byte{OpEnd},
				[]byte{OpEnd},
			),
		}},
	}
	err := Validate(mod, FeaturesMVP)
	require.NoError(t, err)
	info := mod.CodeSection[0].Info
	require.NotEmpty(t, info.Jumps)
}

func TestValidateBranchOutOfRangeFails(t *testing.T) {
	mod := &Module{
		TypeSection:     []*FunctionType{{}},
		FunctionSection: []Index{0},
		CodeSection: []*Code{{
			Body: concat([]byte{OpBr}, u32leb(5), []byte{OpEnd}),
		}},
	}
	err := Validate(mod, FeaturesMVP)
	require.Error(t, err)
}

func TestValidateSignExtensionGatedByFeature(t *testing.T) {
	mod := &Module{
		TypeSection:     []*FunctionType{{Results: []ValueType{ValueTypeI32}}},
		FunctionSection: []Index{0},
		CodeSection: []*Code{{
			Body: concat([]byte{OpI32Const}, sleb(1), []byte{0xC0}, []byte{OpEnd}), // i32.extend8_s
		}},
	}
	require.Error(t, Validate(mod, FeaturesMVP))
	mod.CodeSection[0].Info = nil
	require.NoError(t, Validate(mod, FeaturesMVP.With(FeatureSignExtensionOps)))
}
