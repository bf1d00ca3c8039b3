package wasi

import (
	"context"
	"io"

	"github.com/wasmlite/wasmlite/api"
	"github.com/wasmlite/wasmlite/internal/logging"
	"github.com/wasmlite/wasmlite/internal/wasm"
	"go.uber.org/zap"
)

// ModuleName is the two-level import namespace every function in this package is registered under.
const ModuleName = "wasi_snapshot_preview1"

// Config configures one instantiation of the wasi_snapshot_preview1 host module: the process-level
// facts a guest can observe (args, environment, clock, stdio) without ever touching a real file
// descriptor table, matching the reduced scope SPEC_FULL.md carries forward from libwasi.
type Config struct {
	Args    []string
	Environ []string

	Stdout io.Writer
	Stderr io.Writer

	// Walltime and Nanotime back clock_time_get's two supported clock IDs. Nil defaults to the
	// process's real wall clock and monotonic clock respectively.
	Walltime func() (sec int64, nsec uint32)
	Nanotime func() int64

	Logger *zap.Logger
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return logging.Logger()
	}
	return c.Logger
}

// NewHostModule builds a *wasm.ModuleInstance exposing the functions this package implements,
// ready to be passed to Imports.DefineInstance(wasi.ModuleName, ...) before instantiating a guest
// that imports from it.
func NewHostModule(cfg *Config) *wasm.ModuleInstance {
	if cfg == nil {
		cfg = &Config{}
	}
	inst := &wasm.ModuleInstance{
		Name:    ModuleName,
		Exports: map[string]*wasm.Export{},
	}

	def := func(name string, params, results []wasm.ValueType, fn api.GoModuleFunc) {
		idx := wasm.Index(len(inst.Functions))
		inst.Functions = append(inst.Functions, &wasm.FunctionInstance{
			Type:       &wasm.FunctionType{Params: params, Results: results},
			Module:     inst,
			GoFunc:     fn,
			HostModule: ModuleName,
			HostName:   name,
			DebugName:  ModuleName + "." + name,
		})
		inst.Exports[name] = &wasm.Export{Name: name, Kind: api.ExternTypeFunc, Index: idx}
	}

	i32, i64 := wasm.ValueTypeI32, wasm.ValueTypeI64

	def("args_get", []wasm.ValueType{i32, i32}, []wasm.ValueType{i32}, errnoFunc(2, argsGetFn(cfg)))
	def("args_sizes_get", []wasm.ValueType{i32, i32}, []wasm.ValueType{i32}, errnoFunc(2, argsSizesGetFn(cfg)))
	def("environ_get", []wasm.ValueType{i32, i32}, []wasm.ValueType{i32}, errnoFunc(2, environGetFn(cfg)))
	def("environ_sizes_get", []wasm.ValueType{i32, i32}, []wasm.ValueType{i32}, errnoFunc(2, environSizesGetFn(cfg)))
	def("clock_time_get", []wasm.ValueType{i32, i64, i32}, []wasm.ValueType{i32}, errnoFunc(3, clockTimeGetFn(cfg)))
	def("fd_write", []wasm.ValueType{i32, i32, i32, i32}, []wasm.ValueType{i32}, errnoFunc(4, fdWriteFn(cfg)))
	def("proc_exit", []wasm.ValueType{i32}, nil, procExitFn(cfg))

	return inst
}

// errnoFunc adapts a (ctx, mod, params)->Errno function to the api.GoModuleFunc stack ABI: params
// occupy stack[:paramCount], and the single uint32 errno result is written to stack[paramCount].
func errnoFunc(paramCount int, fn func(ctx context.Context, mod api.Module, params []uint64) Errno) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		stack[paramCount] = uint64(fn(ctx, mod, stack[:paramCount]))
	}
}
