// Package wasmlite is a validating WebAssembly interpreter: Runtime owns one Store and one
// execution Engine, CompileModule validates an already-decoded module structure against a
// RuntimeConfig's enabled proposals, and InstantiateModule links and runs it.
//
// This package's scope begins at the module-structure boundary, not at raw Wasm bytes: decoding a
// .wasm binary into a *wasm.Module is out of scope (spec.md §1), so every CompiledModule here is
// built from a *wasm.Module the caller already has in hand.
package wasmlite

import (
	"context"

	"github.com/wasmlite/wasmlite/api"
	"github.com/wasmlite/wasmlite/internal/engine/interpreter"
	"github.com/wasmlite/wasmlite/internal/wasi"
	"github.com/wasmlite/wasmlite/internal/wasm"
)

// Runtime is the top-level embedder handle: one Store, one execution Engine, and the set of host
// modules every guest it instantiates can import from.
type Runtime struct {
	config      *RuntimeConfig
	store       *wasm.Store
	engine      *interpreter.Engine
	hostModules map[string]*wasm.ModuleInstance
}

// NewRuntime creates a Runtime. A nil config behaves like NewRuntimeConfig().
func NewRuntime(config *RuntimeConfig) *Runtime {
	if config == nil {
		config = NewRuntimeConfig()
	}
	return &Runtime{
		config:      config,
		store:       wasm.NewStore(),
		engine:      interpreter.NewEngine(nil),
		hostModules: map[string]*wasm.ModuleInstance{},
	}
}

// CompiledModule is a decoded module that has passed Validate against its Runtime's enabled
// features, ready for InstantiateModule.
type CompiledModule struct {
	module *wasm.Module
}

// CompileModule validates mod against r's configured feature set. The caller is responsible for
// having already decoded the binary into mod.
func (r *Runtime) CompileModule(mod *wasm.Module) (*CompiledModule, error) {
	if err := wasm.Validate(mod, r.config.features); err != nil {
		return nil, err
	}
	return &CompiledModule{module: mod}, nil
}

// InstantiateHostModule makes inst's exports available to every module InstantiateModule
// subsequently instantiates, under the two-level name (name, exportName). Use this to wire
// embedder-defined host functions ahead of loading guest code; wasi_snapshot_preview1 is wired
// automatically per-instantiation from ModuleConfig and does not need to be registered this way.
func (r *Runtime) InstantiateHostModule(name string, inst *wasm.ModuleInstance) {
	r.hostModules[name] = inst
	r.store.Register(name, inst)
}

// InstantiateModule links compiled against r's registered host modules plus a
// wasi_snapshot_preview1 instance scoped to mc's args/environ/stdio, applies mc's import renames,
// runs the module's start section function (if any) and then mc's configured start functions in
// order, and returns the running instance.
//
// A module that calls proc_exit during either step is not treated as an error: its exit is
// recorded on the instance and observable via the returned api.Module's CloseWithExitCode having
// already been called, same as any other voluntary exit.
func (r *Runtime) InstantiateModule(ctx context.Context, compiled *CompiledModule, mc *ModuleConfig) (api.Module, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if mc == nil {
		mc = NewModuleConfig()
	}

	mod := mc.replaceImports(compiled.module)

	imports := wasm.NewImports()
	for name, inst := range r.hostModules {
		imports.DefineInstance(name, inst)
	}
	imports.DefineInstance(wasi.ModuleName, wasi.NewHostModule(mc.wasiConfig()))

	inst, err := wasm.Instantiate(mod, mc.name, imports)
	if err != nil {
		return nil, err
	}
	r.store.Register(mc.name, inst)

	if err := r.runStartFunctions(ctx, inst, mc); err != nil {
		return nil, err
	}

	return r.engine.NewModule(inst), nil
}

func (r *Runtime) runStartFunctions(ctx context.Context, inst *wasm.ModuleInstance, mc *ModuleConfig) error {
	if inst.StartFunction != nil {
		if _, err := r.engine.Call(ctx, inst.StartFunction, nil); err != nil {
			if isVoluntaryExit(err) {
				return nil
			}
			return err
		}
	}

	for _, name := range mc.startFunctions {
		exp := inst.LookupExport(name)
		if exp == nil || exp.Kind != api.ExternTypeFunc {
			continue
		}
		if _, err := r.engine.Call(ctx, inst.Functions[exp.Index], nil); err != nil {
			if isVoluntaryExit(err) {
				return nil
			}
			return err
		}
	}
	return nil
}

func isVoluntaryExit(err error) bool {
	trap, ok := err.(*wasm.Trap)
	return ok && trap.Kind == wasm.TrapKindVoluntaryExit
}

// Module looks up a previously instantiated module by the name it was instantiated under.
func (r *Runtime) Module(name string) api.Module {
	inst := r.store.Module(name)
	if inst == nil {
		return nil
	}
	return r.engine.NewModule(inst)
}
