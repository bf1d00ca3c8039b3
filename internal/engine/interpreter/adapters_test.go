package interpreter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmlite/wasmlite/api"
	"github.com/wasmlite/wasmlite/internal/wasm"
)

func newTestModuleInstance() *wasm.ModuleInstance {
	mem := wasm.NewMemoryInstance(1, 1, false)
	global := &wasm.GlobalInstance{Type: wasm.GlobalType{ValType: wasm.ValueTypeI32, Mutable: true}}
	global.Set(7)

	inst := &wasm.ModuleInstance{
		Name:     "test",
		Memories: []*wasm.MemoryInstance{mem},
		Globals:  []*wasm.GlobalInstance{global},
		Exports: map[string]*wasm.Export{
			"memory": {Name: "memory", Kind: api.ExternTypeMemory, Index: 0},
			"count":  {Name: "count", Kind: api.ExternTypeGlobal, Index: 0},
		},
	}
	fn := &wasm.FunctionInstance{
		Type:   &wasm.FunctionType{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}},
		Module: inst,
		GoFunc: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[1] = stack[0] + 1
		}),
	}
	inst.Functions = []*wasm.FunctionInstance{fn}
	inst.Exports["inc"] = &wasm.Export{Name: "inc", Kind: api.ExternTypeFunc, Index: 0}
	return inst
}

func TestModuleAdapterExportedLookups(t *testing.T) {
	inst := newTestModuleInstance()
	e := NewEngine(nil)
	mod := &moduleAdapter{engine: e, inst: inst}

	require.Equal(t, "test", mod.Name())
	require.NotNil(t, mod.ExportedMemory("memory"))
	require.Nil(t, mod.ExportedMemory("missing"))
	require.NotNil(t, mod.ExportedGlobal("count"))
	require.Nil(t, mod.ExportedGlobal("missing"))

	fn := mod.ExportedFunction("inc")
	require.NotNil(t, fn)
	results, err := fn.Call(context.Background(), 41)
	require.NoError(t, err)
	require.Equal(t, []uint64{42}, results)

	require.Nil(t, mod.ExportedFunction("missing"))
}

func TestModuleAdapterCloseWithExitCodeMarksExited(t *testing.T) {
	inst := newTestModuleInstance()
	mod := &moduleAdapter{inst: inst}
	require.NoError(t, mod.CloseWithExitCode(context.Background(), 3))

	exited, code := inst.Exited()
	require.True(t, exited)
	require.Equal(t, uint32(3), code)
}

func TestGlobalAdapterGetSet(t *testing.T) {
	inst := newTestModuleInstance()
	g := (&moduleAdapter{inst: inst}).ExportedGlobal("count")
	require.Equal(t, uint64(7), g.Get(context.Background()))

	mg, ok := g.(api.MutableGlobal)
	require.True(t, ok)
	mg.Set(context.Background(), 9)
	require.Equal(t, uint64(9), g.Get(context.Background()))
}

func TestMemoryAdapterBoundsChecking(t *testing.T) {
	inst := newTestModuleInstance()
	mem := (&moduleAdapter{inst: inst}).Memory()

	ok := mem.WriteUint32Le(context.Background(), 0, 0xdeadbeef)
	require.True(t, ok)
	v, ok := mem.ReadUint32Le(context.Background(), 0)
	require.True(t, ok)
	require.Equal(t, uint32(0xdeadbeef), v)

	_, ok = mem.ReadUint32Le(context.Background(), wasm.MemoryPageSize-2)
	require.False(t, ok, "read straddling the end of memory must fail, not panic")

	ok = mem.WriteByte(context.Background(), wasm.MemoryPageSize, 1)
	require.False(t, ok, "write at exactly the size boundary is out of bounds")
}

func TestMemoryAdapterFloatRoundTrip(t *testing.T) {
	inst := newTestModuleInstance()
	mem := (&moduleAdapter{inst: inst}).Memory()

	require.True(t, mem.WriteFloat64Le(context.Background(), 8, 3.5))
	v, ok := mem.ReadFloat64Le(context.Background(), 8)
	require.True(t, ok)
	require.Equal(t, 3.5, v)
}
