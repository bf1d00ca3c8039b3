package interpreter

import (
	"context"

	"github.com/wasmlite/wasmlite/internal/wasm"
)

// frame is one Wasm-defined function activation: its locals (params followed by declared locals,
// each occupying slotsOf(type) slots), the shared operand stack it pushes/pops against, and the
// byte offset execution resumes at.
type frame struct {
	ctx    context.Context
	fn     *wasm.FunctionInstance
	module *wasm.ModuleInstance

	locals       []uint64
	localOffsets []int            // localOffsets[i] is locals' first slot for local variable i
	localTypes   []wasm.ValueType // localTypes[i] is local variable i's type

	stack *valueStack

	pc uint32

	// depth is this frame's position in the call stack: 0 for the function callFunction was handed
	// directly, incremented by one at every nested call/call_indirect. callFunction checks it against
	// maxCallDepth so unbounded Wasm recursion traps with TrapKindCallStackExhausted instead of
	// overflowing the Go goroutine stack it's hosted on. It also gates CallWithRestart's suspension
	// check: only a host call made directly from depth 0 can suspend the call.
	depth int
}

// localTypeList returns the full local-variable type list (params, then declared locals) used to
// compute each local's slot offset and to zero-initialize declared locals on entry.
func localTypeList(fn *wasm.FunctionInstance) []wasm.ValueType {
	types := make([]wasm.ValueType, 0, len(fn.Type.Params)+len(fn.Code.LocalTypes))
	types = append(types, fn.Type.Params...)
	types = append(types, fn.Code.LocalTypes...)
	return types
}

// newFrame builds a call frame for a Wasm-defined function, with params already laid out in the
// caller's value-stack slot order copied into the new frame's locals. depth is the frame's position
// in the call stack (see the depth field doc).
func newFrame(ctx context.Context, fn *wasm.FunctionInstance, params []uint64, depth int) *frame {
	types := localTypeList(fn)
	offsets := make([]int, len(types))
	total := 0
	for i, t := range types {
		offsets[i] = total
		total += slotsOf(t)
	}
	locals := make([]uint64, total)
	copy(locals, params) // declared locals beyond the param slots default to zero

	capacityHint := 16
	if fn.Code.Info != nil {
		capacityHint = fn.Code.Info.MaxCells
	}
	return &frame{
		ctx:          ctx,
		fn:           fn,
		module:       fn.Module,
		locals:       locals,
		localOffsets: offsets,
		localTypes:   types,
		stack:        newValueStack(capacityHint),
		depth:        depth,
	}
}

func (f *frame) localSlots(index uint32) []uint64 {
	off := f.localOffsets[index]
	return f.locals[off : off+slotsOf(f.localTypes[index])]
}
