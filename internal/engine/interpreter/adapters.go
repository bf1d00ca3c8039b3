package interpreter

import (
	"context"
	"fmt"

	"github.com/wasmlite/wasmlite/api"
	"github.com/wasmlite/wasmlite/internal/wasm"
)

// NewModule wraps inst as the api.Module view host functions and embedders see: the same shape
// callHost builds internally, exported so the root package can hand callers a Module after
// instantiating without reaching into this package's unexported adapter type.
func (e *Engine) NewModule(inst *wasm.ModuleInstance) api.Module {
	return &moduleAdapter{engine: e, inst: inst}
}

// moduleAdapter implements api.Module over a *wasm.ModuleInstance, the view a host function (or an
// embedder holding a Module after Instantiate) gets of a running instance (spec.md §6). It is the
// only place this engine constructs api.Function/api.Memory/api.Global values, so every lookup path
// (ExportedFunction, a table-held funcref, an imported global) produces the same adapter shape.
type moduleAdapter struct {
	engine *Engine
	inst   *wasm.ModuleInstance
}

func (m *moduleAdapter) String() string { return "module[" + m.inst.Name + "]" }

func (m *moduleAdapter) Name() string { return m.inst.Name }

func (m *moduleAdapter) Memory() api.Memory {
	if len(m.inst.Memories) == 0 {
		return nil
	}
	return &memoryAdapter{mem: m.inst.Memories[0]}
}

func (m *moduleAdapter) ExportedFunction(name string) api.Function {
	exp := m.inst.LookupExport(name)
	if exp == nil || exp.Kind != api.ExternTypeFunc {
		return nil
	}
	return &functionAdapter{engine: m.engine, fn: m.inst.Functions[exp.Index]}
}

func (m *moduleAdapter) ExportedMemory(name string) api.Memory {
	exp := m.inst.LookupExport(name)
	if exp == nil || exp.Kind != api.ExternTypeMemory {
		return nil
	}
	return &memoryAdapter{mem: m.inst.Memories[exp.Index]}
}

func (m *moduleAdapter) ExportedGlobal(name string) api.Global {
	exp := m.inst.LookupExport(name)
	if exp == nil || exp.Kind != api.ExternTypeGlobal {
		return nil
	}
	return &globalAdapter{g: m.inst.Globals[exp.Index]}
}

// CloseWithExitCode marks the instance exited, the same voluntary-exit path a WASI proc_exit call
// triggers, so host code and Wasm-defined code observe module teardown identically.
func (m *moduleAdapter) CloseWithExitCode(ctx context.Context, exitCode uint32) error {
	m.inst.SetExited(exitCode)
	return nil
}

func (m *moduleAdapter) Close(ctx context.Context) error {
	return m.CloseWithExitCode(ctx, 0)
}

// functionAdapter implements api.Function over a *wasm.FunctionInstance, routing Call back through
// the owning Engine so an embedder-held Function and an internal call opcode share one call path.
type functionAdapter struct {
	engine *Engine
	fn     *wasm.FunctionInstance
}

func (f *functionAdapter) Definition() api.FunctionDefinition {
	return &functionDefinitionAdapter{fn: f.fn}
}

func (f *functionAdapter) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return f.engine.Call(ctx, f.fn, params)
}

// restartHandleAdapter wraps this package's *RestartRecord as an opaque api.RestartHandle so an
// embedder can hold one without importing this package.
type restartHandleAdapter struct {
	record *RestartRecord
}

func (*restartHandleAdapter) isRestartHandle() {}

func statusToAPI(s Status) api.RestartStatus {
	if s == StatusRestartable {
		return api.RestartStatusRestartable
	}
	if s == StatusInterrupted {
		return api.RestartStatusInterrupted
	}
	return api.RestartStatusReturned
}

// CallWithRestart implements api.RestartableFunction, funneling through Engine.CallWithRestart the
// same way Call funnels through Engine.Call.
func (f *functionAdapter) CallWithRestart(ctx context.Context, params ...uint64) ([]uint64, api.RestartStatus, api.RestartHandle, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results, status, restart, err := f.engine.CallWithRestart(ctx, f.fn, params)
	if restart == nil {
		return results, statusToAPI(status), nil, err
	}
	return results, statusToAPI(status), &restartHandleAdapter{record: restart}, err
}

// Resume implements api.RestartableFunction.
func (f *functionAdapter) Resume(ctx context.Context, restart api.RestartHandle) ([]uint64, api.RestartStatus, api.RestartHandle, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	handle, ok := restart.(*restartHandleAdapter)
	if !ok {
		return nil, api.RestartStatusInterrupted, nil, fmt.Errorf("wasm: restart handle from a different engine")
	}
	results, status, next, err := f.engine.Resume(ctx, handle.record)
	if next == nil {
		return results, statusToAPI(status), nil, err
	}
	return results, statusToAPI(status), &restartHandleAdapter{record: next}, err
}

// functionDefinitionAdapter implements api.FunctionDefinition, the pre-instantiation view of a
// function's signature and naming used for introspection and trap backtraces.
type functionDefinitionAdapter struct {
	fn *wasm.FunctionInstance
}

func (d *functionDefinitionAdapter) ModuleName() string { return d.fn.HostModule }
func (d *functionDefinitionAdapter) Index() uint32       { return 0 }
func (d *functionDefinitionAdapter) Name() string {
	if d.fn.DebugName != "" {
		return d.fn.DebugName
	}
	return d.fn.HostName
}
func (d *functionDefinitionAdapter) DebugName() string { return d.fn.DebugName }
func (d *functionDefinitionAdapter) Import() (moduleName, name string, isImport bool) {
	return d.fn.HostModule, d.fn.HostName, d.fn.IsHostFunction()
}
func (d *functionDefinitionAdapter) ExportNames() []string    { return nil }
func (d *functionDefinitionAdapter) ParamTypes() []api.ValueType  { return d.fn.Type.Params }
func (d *functionDefinitionAdapter) ResultTypes() []api.ValueType { return d.fn.Type.Results }

// globalAdapter implements api.Global and api.MutableGlobal over a *wasm.GlobalInstance.
type globalAdapter struct {
	g *wasm.GlobalInstance
}

func (g *globalAdapter) String() string {
	return fmt.Sprintf("global(%s)", api.ValueTypeName(g.g.Type.ValType))
}
func (g *globalAdapter) Type() api.ValueType          { return g.g.Type.ValType }
func (g *globalAdapter) Get(context.Context) uint64   { return g.g.Get() }
func (g *globalAdapter) Set(_ context.Context, v uint64) { g.g.Set(v) }

// memoryAdapter implements api.Memory over a *wasm.MemoryInstance, bounds-checking every access the
// way execLoad/execStore do for Wasm-issued loads/stores so a host function can't read or write
// past the end of linear memory either.
type memoryAdapter struct {
	mem *wasm.MemoryInstance
}

func (m *memoryAdapter) Size(context.Context) uint32 {
	return uint32(len(m.mem.Data))
}

func (m *memoryAdapter) Grow(_ context.Context, deltaPages uint32) (uint32, bool) {
	return m.mem.Grow(deltaPages)
}

func (m *memoryAdapter) ReadByte(_ context.Context, offset uint32) (byte, bool) {
	if uint64(offset) >= uint64(len(m.mem.Data)) {
		return 0, false
	}
	return m.mem.Data[offset], true
}

func (m *memoryAdapter) ReadUint32Le(_ context.Context, offset uint32) (uint32, bool) {
	if uint64(offset)+4 > uint64(len(m.mem.Data)) {
		return 0, false
	}
	return uint32(loadLE(m.mem, uint64(offset), 4)), true
}

func (m *memoryAdapter) ReadUint64Le(_ context.Context, offset uint32) (uint64, bool) {
	if uint64(offset)+8 > uint64(len(m.mem.Data)) {
		return 0, false
	}
	return loadLE(m.mem, uint64(offset), 8), true
}

func (m *memoryAdapter) ReadFloat32Le(ctx context.Context, offset uint32) (float32, bool) {
	v, ok := m.ReadUint32Le(ctx, offset)
	return f32FromSlot(uint64(v)), ok
}

func (m *memoryAdapter) ReadFloat64Le(ctx context.Context, offset uint32) (float64, bool) {
	v, ok := m.ReadUint64Le(ctx, offset)
	return f64FromSlot(v), ok
}

func (m *memoryAdapter) Read(_ context.Context, offset, byteCount uint32) ([]byte, bool) {
	if uint64(offset)+uint64(byteCount) > uint64(len(m.mem.Data)) {
		return nil, false
	}
	return m.mem.Data[offset : offset+byteCount], true
}

func (m *memoryAdapter) WriteByte(_ context.Context, offset uint32, v byte) bool {
	if uint64(offset) >= uint64(len(m.mem.Data)) {
		return false
	}
	m.mem.Data[offset] = v
	return true
}

func (m *memoryAdapter) WriteUint32Le(_ context.Context, offset, v uint32) bool {
	if uint64(offset)+4 > uint64(len(m.mem.Data)) {
		return false
	}
	storeLE(m.mem, uint64(offset), uint64(v), 4)
	return true
}

func (m *memoryAdapter) WriteUint64Le(_ context.Context, offset uint32, v uint64) bool {
	if uint64(offset)+8 > uint64(len(m.mem.Data)) {
		return false
	}
	storeLE(m.mem, uint64(offset), v, 8)
	return true
}

func (m *memoryAdapter) WriteFloat32Le(ctx context.Context, offset uint32, v float32) bool {
	return m.WriteUint32Le(ctx, offset, uint32(f32ToSlot(v)))
}

func (m *memoryAdapter) WriteFloat64Le(ctx context.Context, offset uint32, v float64) bool {
	return m.WriteUint64Le(ctx, offset, f64ToSlot(v))
}

func (m *memoryAdapter) Write(_ context.Context, offset uint32, v []byte) bool {
	if uint64(offset)+uint64(len(v)) > uint64(len(m.mem.Data)) {
		return false
	}
	copy(m.mem.Data[offset:], v)
	return true
}
