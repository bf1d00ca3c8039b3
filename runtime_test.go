package wasmlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmlite/wasmlite/api"
	"github.com/wasmlite/wasmlite/internal/wasi"
	"github.com/wasmlite/wasmlite/internal/wasm"
)

func noopGoFunc(context.Context, api.Module, []uint64) {}

// procExitModule builds a *wasm.Module that imports wasi_snapshot_preview1.proc_exit and exports
// it under "_start", so instantiating it exercises Runtime's automatic WASI wiring and its
// voluntary-exit-is-not-an-error start function handling without needing a real function body.
func procExitModule() *wasm.Module {
	return &wasm.Module{
		TypeSection: []*wasm.FunctionType{{Params: []wasm.ValueType{wasm.ValueTypeI32}}},
		ImportSection: []*wasm.Import{
			{Module: wasi.ModuleName, Name: "proc_exit", Kind: wasm.ExternTypeFunc, DescFunc: 0},
		},
		ExportSection: []*wasm.Export{{Name: "_start", Kind: wasm.ExternTypeFunc, Index: 0}},
	}
}

func TestRuntimeCompileModuleValidatesAgainstConfiguredFeatures(t *testing.T) {
	r := NewRuntime(NewRuntimeConfig())
	compiled, err := r.CompileModule(procExitModule())
	require.NoError(t, err)
	require.NotNil(t, compiled)
}

func TestRuntimeInstantiateModuleRunsStartFunctionsAndObservesVoluntaryExit(t *testing.T) {
	r := NewRuntime(nil)
	compiled, err := r.CompileModule(procExitModule())
	require.NoError(t, err)

	mod, err := r.InstantiateModule(context.Background(), compiled, NewModuleConfig().WithName("m"))
	require.NoError(t, err, "a module that voluntarily exits during its start function is not an instantiation error")
	require.NotNil(t, mod)

	// A second call against the same instance observes the exit the start function triggered.
	fn := mod.ExportedFunction("_start")
	require.NotNil(t, fn)
	_, callErr := fn.Call(context.Background())
	require.Error(t, callErr)
	trap, ok := callErr.(*wasm.Trap)
	require.True(t, ok)
	require.Equal(t, wasm.TrapKindVoluntaryExit, trap.Kind)
}

func TestRuntimeModuleLooksUpByInstantiationName(t *testing.T) {
	r := NewRuntime(nil)
	compiled, err := r.CompileModule(procExitModule())
	require.NoError(t, err)

	_, err = r.InstantiateModule(context.Background(), compiled, NewModuleConfig().WithName("named"))
	require.NoError(t, err)

	require.NotNil(t, r.Module("named"))
	require.Nil(t, r.Module("missing"))
}

func TestRuntimeInstantiateHostModuleExportsAreLinkable(t *testing.T) {
	r := NewRuntime(nil)

	hostInst := &wasm.ModuleInstance{
		Name:    "env",
		Exports: map[string]*wasm.Export{"noop": {Name: "noop", Kind: wasm.ExternTypeFunc, Index: 0}},
	}
	hostInst.Functions = []*wasm.FunctionInstance{{
		Type:       &wasm.FunctionType{},
		Module:     hostInst,
		HostModule: "env",
		HostName:   "noop",
		GoFunc:     api.GoModuleFunc(noopGoFunc),
	}}
	r.InstantiateHostModule("env", hostInst)

	mod := &wasm.Module{
		TypeSection:   []*wasm.FunctionType{{}},
		ImportSection: []*wasm.Import{{Module: "env", Name: "noop", Kind: wasm.ExternTypeFunc, DescFunc: 0}},
	}
	compiled, err := r.CompileModule(mod)
	require.NoError(t, err)

	_, err = r.InstantiateModule(context.Background(), compiled, NewModuleConfig().WithStartFunctions())
	require.NoError(t, err)
}
