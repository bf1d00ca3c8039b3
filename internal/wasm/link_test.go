package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func constI32(v int64) ConstExpr {
	return ConstExpr{Opcode: OpI32Const, Body: sleb(v)}
}

func TestInstantiateResolvesImportsAndExports(t *testing.T) {
	hostFn := &FunctionInstance{Type: &FunctionType{}, GoFunc: nil, HostModule: "env", HostName: "noop"}
	imports := NewImports()
	imports.Define("env", "noop", ImportObject{Func: hostFn})

	one := uint32(1)
	mod := &Module{
		TypeSection: []*FunctionType{{}},
		ImportSection: []*Import{
			{Module: "env", Name: "noop", Kind: ExternTypeFunc, DescFunc: 0},
		},
		MemorySection: []*Memory{{Limits: Limits{Min: 1, Max: &one}}},
		ExportSection: []*Export{{Name: "memory", Kind: ExternTypeMemory, Index: 0}},
	}

	inst, err := Instantiate(mod, "main", imports)
	require.NoError(t, err)
	require.Len(t, inst.Functions, 1)
	require.Same(t, hostFn, inst.Functions[0])
	require.Len(t, inst.Memories, 1)
	require.NotNil(t, inst.LookupExport("memory"))
}

func TestInstantiateUnresolvedImportFails(t *testing.T) {
	mod := &Module{
		TypeSection:   []*FunctionType{{}},
		ImportSection: []*Import{{Module: "env", Name: "missing", Kind: ExternTypeFunc, DescFunc: 0}},
	}
	_, err := Instantiate(mod, "main", NewImports())
	require.Error(t, err)
	var linkErr *LinkError
	require.ErrorAs(t, err, &linkErr)
}

func TestInstantiateFunctionSignatureMismatchFails(t *testing.T) {
	hostFn := &FunctionInstance{Type: &FunctionType{Params: []ValueType{ValueTypeI32}}}
	imports := NewImports()
	imports.Define("env", "f", ImportObject{Func: hostFn})

	mod := &Module{
		TypeSection:   []*FunctionType{{}}, // no params, mismatches hostFn's one param
		ImportSection: []*Import{{Module: "env", Name: "f", Kind: ExternTypeFunc, DescFunc: 0}},
	}
	_, err := Instantiate(mod, "main", imports)
	require.Error(t, err)
}

func TestInstantiateActiveElementSegmentWritesTable(t *testing.T) {
	ten := uint32(10)
	mod := &Module{
		TypeSection:     []*FunctionType{{}},
		FunctionSection: []Index{0},
		CodeSection:     []*Code{{Body: []byte{OpEnd}}},
		TableSection:    []*Table{{ElemType: ValueTypeFuncref, Limits: Limits{Min: 4, Max: &ten}}},
		ElementSection: []*ElementSegment{{
			Mode:       ElementModeActive,
			TableIndex: 0,
			OffsetExpr: constI32(1),
			Type:       ValueTypeFuncref,
			Init:       []ConstExpr{{Opcode: OpRefFunc, Body: u32leb(0)}},
		}},
	}
	inst, err := Instantiate(mod, "main", NewImports())
	require.NoError(t, err)
	require.Equal(t, uint64(1), inst.Tables[0].Elements[1]) // func index 0 encodes as 1 (0 means null)
	require.True(t, inst.ElementSegments[0].Dropped)
}

func TestInstantiateActiveElementSegmentOutOfBoundsTraps(t *testing.T) {
	mod := &Module{
		TypeSection:     []*FunctionType{{}},
		FunctionSection: []Index{0},
		CodeSection:     []*Code{{Body: []byte{OpEnd}}},
		TableSection:    []*Table{{ElemType: ValueTypeFuncref, Limits: Limits{Min: 1}}},
		ElementSection: []*ElementSegment{{
			Mode:       ElementModeActive,
			TableIndex: 0,
			OffsetExpr: constI32(5),
			Type:       ValueTypeFuncref,
			Init:       []ConstExpr{{Opcode: OpRefFunc, Body: u32leb(0)}},
		}},
	}
	_, err := Instantiate(mod, "main", NewImports())
	require.Error(t, err)
	var trap *Trap
	require.ErrorAs(t, err, &trap)
	require.Equal(t, TrapKindOutOfBoundsTableAccess, trap.Kind)
}

func TestInstantiateStartFunctionResolved(t *testing.T) {
	start := Index(0)
	mod := &Module{
		TypeSection:     []*FunctionType{{}},
		FunctionSection: []Index{0},
		CodeSection:     []*Code{{Body: []byte{OpEnd}}},
		StartSection:    &start,
	}
	inst, err := Instantiate(mod, "main", NewImports())
	require.NoError(t, err)
	require.NotNil(t, inst.StartFunction)
	require.Same(t, inst.Functions[0], inst.StartFunction)
}

func TestDefineInstanceWiresAllExports(t *testing.T) {
	producer := &ModuleInstance{
		Functions: []*FunctionInstance{{Type: &FunctionType{}}},
		Exports:   map[string]*Export{"f": {Name: "f", Kind: ExternTypeFunc, Index: 0}},
	}
	imports := NewImports()
	imports.DefineInstance("producer", producer)

	obj, ok := imports.lookup("producer", "f")
	require.True(t, ok)
	require.Same(t, producer.Functions[0], obj.Func)
}
