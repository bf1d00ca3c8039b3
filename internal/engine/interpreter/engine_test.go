package interpreter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmlite/wasmlite/api"
	"github.com/wasmlite/wasmlite/internal/wasm"
)

func hostAdd(mod *wasm.ModuleInstance) *wasm.FunctionInstance {
	fn := &wasm.FunctionInstance{
		Type:   &wasm.FunctionType{Params: []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}},
		Module: mod,
		GoFunc: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[2] = stack[0] + stack[1]
		}),
	}
	return fn
}

func TestEngineCallHostFunction(t *testing.T) {
	mod := &wasm.ModuleInstance{Name: "m"}
	e := NewEngine(nil)

	results, err := e.Call(context.Background(), hostAdd(mod), []uint64{3, 4})
	require.NoError(t, err)
	require.Equal(t, []uint64{7}, results)
}

func TestEngineCallOnExitedModuleTraps(t *testing.T) {
	mod := &wasm.ModuleInstance{Name: "m"}
	mod.SetExited(5)
	e := NewEngine(nil)

	_, err := e.Call(context.Background(), hostAdd(mod), []uint64{1, 2})
	require.Error(t, err)
	trap, ok := err.(*wasm.Trap)
	require.True(t, ok)
	require.Equal(t, wasm.TrapKindVoluntaryExit, trap.Kind)
	require.Equal(t, uint32(5), trap.ExitCode)
}

func TestEngineCallHostFunctionThatExitsIsObservedByCaller(t *testing.T) {
	mod := &wasm.ModuleInstance{Name: "m"}
	exitFn := &wasm.FunctionInstance{
		Type:   &wasm.FunctionType{Params: []wasm.ValueType{wasm.ValueTypeI32}},
		Module: mod,
		GoFunc: api.GoModuleFunc(func(ctx context.Context, m api.Module, stack []uint64) {
			_ = m.CloseWithExitCode(ctx, uint32(stack[0]))
		}),
	}
	e := NewEngine(nil)

	_, err := e.Call(context.Background(), exitFn, []uint64{9})
	require.Error(t, err)
	trap, ok := err.(*wasm.Trap)
	require.True(t, ok)
	require.Equal(t, uint32(9), trap.ExitCode)

	// A subsequent call on the same module instance observes the exit too.
	_, err = e.Call(context.Background(), hostAdd(mod), []uint64{1, 2})
	require.Error(t, err)
}

func TestEngineCallTrapsOnUnboundedRecursion(t *testing.T) {
	mod := &wasm.ModuleInstance{Name: "m"}
	fn := &wasm.FunctionInstance{
		Type:   &wasm.FunctionType{},
		Module: mod,
		Code:   &wasm.Code{Body: []byte{wasm.OpCall, 0x00, wasm.OpEnd}},
	}
	mod.Functions = []*wasm.FunctionInstance{fn}
	e := NewEngine(nil)

	_, err := e.Call(context.Background(), fn, nil)
	require.Error(t, err)
	trap, ok := err.(*wasm.Trap)
	require.True(t, ok)
	require.Equal(t, wasm.TrapKindCallStackExhausted, trap.Kind)
}

func TestEngineCallWithRestartSuspendsAndResumes(t *testing.T) {
	mod := &wasm.ModuleInstance{Name: "m"}
	suspended := false
	waitFn := &wasm.FunctionInstance{
		Type:   &wasm.FunctionType{Results: []wasm.ValueType{wasm.ValueTypeI32}},
		Module: mod,
		GoFunc: api.GoModuleFunc(func(ctx context.Context, _ api.Module, stack []uint64) {
			if !suspended {
				suspended = true
				SuspendRequestFromContext(ctx).Request()
				return
			}
			stack[0] = 42
		}),
	}
	mod.Functions = []*wasm.FunctionInstance{waitFn}
	callerFn := &wasm.FunctionInstance{
		Type:   &wasm.FunctionType{Results: []wasm.ValueType{wasm.ValueTypeI32}},
		Module: mod,
		Code:   &wasm.Code{Body: []byte{wasm.OpCall, 0x00, wasm.OpEnd}},
	}

	e := NewEngine(nil)
	_, status, restart, err := e.CallWithRestart(context.Background(), callerFn, nil)
	require.NoError(t, err)
	require.Equal(t, StatusRestartable, status)
	require.NotNil(t, restart)

	results, status, restart, err := e.Resume(context.Background(), restart)
	require.NoError(t, err)
	require.Equal(t, StatusReturned, status)
	require.Nil(t, restart)
	require.Equal(t, []uint64{42}, results)
}

func TestEngineCallRespectsContextCancellation(t *testing.T) {
	mod := &wasm.ModuleInstance{Name: "m"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEngine(nil)
	_, err := e.Call(ctx, hostAdd(mod), []uint64{1, 2})
	require.Error(t, err)
	var interrupted *InterruptedError
	require.ErrorAs(t, err, &interrupted)
	require.ErrorIs(t, interrupted.Unwrap(), context.Canceled)
}
