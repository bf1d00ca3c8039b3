package interpreter

import (
	"context"

	"github.com/wasmlite/wasmlite/internal/logging"
	"github.com/wasmlite/wasmlite/internal/wasm"
	"go.uber.org/zap"
)

// Engine is the stateless execution driver: one instance is shared by every ModuleInstance a Store
// holds, since nothing here is per-module (spec.md §4.5's "Interpreter" component). The interpreter
// chosen is a direct, pc-byte-addressed walk of the validated function body rather than a
// compile-to-closures or compile-to-bytecode step, grounded on toywasm's own exec.c dispatch loop:
// simplicity over a second compilation pass, since the validator already did the expensive part.
type Engine struct {
	logger *zap.Logger
}

// maxCallDepth bounds Wasm-to-Wasm call nesting. The driver loop recurses in Go for every nested
// call (run calls callFunction, which calls run again), so unbounded recursion
// would eventually overflow the goroutine's own stack instead of producing a catchable trap; this
// cap turns that crash into an ordinary TrapKindCallStackExhausted.
const maxCallDepth = 4096

// NewEngine returns an Engine ready to run calls. A nil logger falls back to the shared
// internal/logging default (silent unless an embedder called logging.SetLogger).
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = logging.Logger()
	}
	return &Engine{logger: logger}
}

// Call invokes fn (host or Wasm-defined) with params laid out in FunctionType.Params order and
// returns its results in FunctionType.Results order, the Trap that aborted it, or an
// InterruptedError if ctx was canceled mid-call. A restart request from fn or one of its callees is
// discarded here: callers that need to resume a suspended call must use CallWithRestart instead.
func (e *Engine) Call(ctx context.Context, fn *wasm.FunctionInstance, params []uint64) ([]uint64, error) {
	results, _, trap, interrupted := e.callFunction(ctx, fn, params, 0)
	if interrupted {
		return nil, &InterruptedError{Cause: ctx.Err()}
	}
	return e.finish(fn, results, trap)
}

// CallWithRestart is Call's resumable counterpart: when a host function invoked directly by fn
// (i.e. at call depth 0) calls SuspendRequestFromContext(ctx).Request() instead of returning
// normally, CallWithRestart returns StatusRestartable and a RestartRecord the embedder can hand to
// Resume later instead of an error. Suspension requested by a host function nested deeper than one
// call is not honored: this runtime only supports single-level resumption.
func (e *Engine) CallWithRestart(ctx context.Context, fn *wasm.FunctionInstance, params []uint64) ([]uint64, Status, *RestartRecord, error) {
	ctx, _ = withSuspendRequest(ctx)
	results, restart, trap, interrupted := e.callFunction(ctx, fn, params, 0)
	interrupted = interrupted || (trap != nil && trap.Kind == wasm.TrapKindInterrupted)
	return e.resolveRestartable(fn, results, restart, trap, interrupted)
}

// Resume continues a call CallWithRestart or a prior Resume left suspended, re-entering the saved
// frame at the program counter and stack state RestartRecord captured.
func (e *Engine) Resume(ctx context.Context, restart *RestartRecord) ([]uint64, Status, *RestartRecord, error) {
	ctx, _ = withSuspendRequest(ctx)
	restart.Frame.ctx = ctx
	results, trap, next := e.run(restart.Frame)
	interrupted := trap != nil && trap.Kind == wasm.TrapKindInterrupted
	return e.resolveRestartable(restart.Frame.fn, results, next, trap, interrupted)
}

func (e *Engine) resolveRestartable(fn *wasm.FunctionInstance, results []uint64, restart *RestartRecord, trap *wasm.Trap, interrupted bool) ([]uint64, Status, *RestartRecord, error) {
	if restart != nil {
		return nil, StatusRestartable, restart, nil
	}
	if interrupted {
		return nil, StatusInterrupted, nil, &InterruptedError{Cause: context.Canceled}
	}
	results, err := e.finish(fn, results, trap)
	if err != nil {
		return nil, StatusTrapped, nil, err
	}
	return results, StatusReturned, nil, nil
}

func (e *Engine) finish(fn *wasm.FunctionInstance, results []uint64, trap *wasm.Trap) ([]uint64, error) {
	if trap == nil {
		return results, nil
	}
	if trap.Kind == wasm.TrapKindInterrupted {
		return nil, &InterruptedError{Cause: context.Canceled}
	}
	if trap.Kind == wasm.TrapKindVoluntaryExit {
		e.logger.Debug("module exited", zap.String("function", fn.DebugName), zap.Uint32("exitCode", trap.ExitCode))
	} else {
		e.logger.Debug("trap", zap.String("function", fn.DebugName), zap.Stringer("kind", trap.Kind))
	}
	return nil, trap
}

// callFunction is the single call boundary every call/call_indirect/return_call opcode and the
// embedder-facing Call funnel through. It checks for a voluntary WASI exit before doing any work so
// a module that called proc_exit on one goroutine stops every other in-flight call at its next
// call boundary, rather than only the one that issued the exit (spec.md §7). depth is this call's distance
// from the call CallWithRestart/Call started at; exceeding maxCallDepth traps instead of risking a
// Go stack overflow on unbounded Wasm recursion.
func (e *Engine) callFunction(ctx context.Context, fn *wasm.FunctionInstance, params []uint64, depth int) (results []uint64, restart *RestartRecord, trap *wasm.Trap, interrupted bool) {
	if exited, code := fn.Module.Exited(); exited {
		return nil, nil, wasm.NewExitTrap(code), false
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, true
	}
	if depth >= maxCallDepth {
		return nil, nil, wasm.NewTrap(wasm.TrapKindCallStackExhausted), false
	}
	if fn.IsHostFunction() {
		results, trap = e.callHost(ctx, fn, params)
		return results, nil, trap, false
	}
	f := newFrame(ctx, fn, params, depth)
	results, trap, restart = e.run(f)
	return results, restart, trap, false
}

// callHost invokes an embedder-supplied GoModuleFunction, marshaling through the api.Module adapter
// so it observes the calling instance the same way an exported Function.Call would (spec.md §6).
func (e *Engine) callHost(ctx context.Context, fn *wasm.FunctionInstance, params []uint64) ([]uint64, *wasm.Trap) {
	paramCells := typeCells(fn.Type.Params)
	resultCells := typeCells(fn.Type.Results)
	stack := make([]uint64, paramCells+resultCells)
	copy(stack, params) // param slots not supplied by the caller default to zero
	mod := &moduleAdapter{engine: e, inst: fn.Module}
	fn.GoFunc.Call(ctx, mod, stack)
	if exited, code := fn.Module.Exited(); exited {
		return nil, wasm.NewExitTrap(code)
	}
	return stack[paramCells:], nil
}
