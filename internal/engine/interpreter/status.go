// Package interpreter is the execution engine: a pc-byte-addressed driver loop that walks a
// validated function body directly, consulting the wasm.ExprInfo the validator already computed
// instead of re-deriving branch targets or operand widths (spec.md §4.5).
package interpreter

import "github.com/wasmlite/wasmlite/internal/wasm"

// Status is the outcome of one driver-loop run, the "first-class resumable status" spec.md §4.5
// and §7 call for instead of using a Go panic to unwind traps. Call never exposes this type and
// reports a trap only as a returned error; CallWithRestart and Resume return it alongside that
// error (StatusTrapped together with the *wasm.Trap).
type Status int

const (
	// StatusReturned means the function ran to completion; its results are valid.
	StatusReturned Status = iota
	// StatusTrapped means a Trap aborted execution; Call surfaces it as an error instead.
	StatusTrapped
	// StatusRestartable means a host call returned mid-body and a RestartRecord was saved; resuming
	// re-enters the driver loop at the saved pc with the saved stack instead of unwinding.
	StatusRestartable
	// StatusInterrupted means the call's context was canceled. It comes with an InterruptedError and
	// no RestartRecord, so the call cannot be resumed.
	StatusInterrupted
)

// RestartRecord captures everything Resume needs to continue a call that was suspended mid-body:
// the frame's program counter and its live value/local state at the point of suspension.
// Grounded on toywasm's restart.h design of saving just the interpreter's own working set rather
// than unwinding the Go call stack, which this package cannot do without its own trampoline anyway.
type RestartRecord struct {
	Frame *frame

	// Trap is always nil in records this engine hands out: a trapped call returns no RestartRecord.
	Trap *wasm.Trap
}
