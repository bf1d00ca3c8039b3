package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueTypeName(t *testing.T) {
	tests := []struct {
		name     string
		input    ValueType
		expected string
	}{
		{"i32", ValueTypeI32, "i32"},
		{"i64", ValueTypeI64, "i64"},
		{"f32", ValueTypeF32, "f32"},
		{"f64", ValueTypeF64, "f64"},
		{"v128", ValueTypeV128, "v128"},
		{"funcref", ValueTypeFuncref, "funcref"},
		{"externref", ValueTypeExternref, "externref"},
		{"unknown", 0, "unknown"},
	}
	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, ValueTypeName(tc.input))
		})
	}
}

func TestCellsOf(t *testing.T) {
	require.Equal(t, 1, CellsOf(ValueTypeI32))
	require.Equal(t, 1, CellsOf(ValueTypeF32))
	require.Equal(t, 2, CellsOf(ValueTypeI64))
	require.Equal(t, 2, CellsOf(ValueTypeF64))
	require.Equal(t, 4, CellsOf(ValueTypeV128))
	require.Equal(t, 1, CellsOf(ValueTypeFuncref))
}

func TestEncodeDecodeFloats(t *testing.T) {
	require.Equal(t, float32(1.5), DecodeF32(EncodeF32(1.5)))
	require.Equal(t, float64(1.5), DecodeF64(EncodeF64(1.5)))
}

func TestExternTypeName(t *testing.T) {
	require.Equal(t, "func", ExternTypeName(ExternTypeFunc))
	require.Equal(t, "table", ExternTypeName(ExternTypeTable))
	require.Equal(t, "memory", ExternTypeName(ExternTypeMemory))
	require.Equal(t, "global", ExternTypeName(ExternTypeGlobal))
	require.Equal(t, "0x64", ExternTypeName(100))
}

func TestReflectFunctionType(t *testing.T) {
	params, results, err := ReflectFunctionType(func(a int32, b int64) float64 { return 0 })
	require.NoError(t, err)
	require.Equal(t, []ValueType{ValueTypeI32, ValueTypeI64}, params)
	require.Equal(t, []ValueType{ValueTypeF64}, results)
}
