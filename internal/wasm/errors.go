package wasm

import "fmt"

// TrapKind enumerates the reasons execution can abort involuntarily. A Trap is not a Go panic:
// it is a first-class Status the engine's driver loop returns to its caller (spec.md §4.5, §7).
type TrapKind int

const (
	TrapKindUnreachable TrapKind = iota
	TrapKindIntegerDivideByZero
	TrapKindIntegerOverflow
	TrapKindInvalidConversionToInteger
	TrapKindOutOfBoundsMemoryAccess
	TrapKindOutOfBoundsTableAccess
	TrapKindIndirectCallTypeMismatch
	TrapKindUninitializedElement
	TrapKindCallStackExhausted
	TrapKindUnalignedAtomic
	TrapKindDataSegmentDropped
	TrapKindElementSegmentDropped
	TrapKindVoluntaryExit
	// TrapKindInterrupted is never returned from Engine.Call: the engine's call boundary uses it
	// internally to unwind a context cancellation through the same trap-threading every call site
	// already does, then converts it to a dedicated InterruptedError before it reaches a caller.
	// TrapKindCallStackExhausted is reserved for genuine call-depth overflow.
	TrapKindInterrupted
)

var trapKindNames = [...]string{
	"unreachable executed",
	"integer divide by zero",
	"integer overflow",
	"invalid conversion to integer",
	"out of bounds memory access",
	"out of bounds table access",
	"indirect call type mismatch",
	"uninitialized element",
	"call stack exhausted",
	"unaligned atomic",
	"data segment dropped",
	"element segment dropped",
	"voluntary exit",
	"interrupted",
}

func (k TrapKind) String() string {
	if int(k) < len(trapKindNames) {
		return trapKindNames[k]
	}
	return "unknown trap"
}

// Trap is the error type returned when execution aborts involuntarily. ExitCode is only meaningful
// when Kind is TrapKindVoluntaryExit (a WASI proc_exit).
type Trap struct {
	Kind     TrapKind
	ExitCode uint32
	// Frames is the call-frame backtrace captured at the point of the trap, innermost first, for
	// diagnostics only.
	Frames []string
}

func (t *Trap) Error() string {
	if t.Kind == TrapKindVoluntaryExit {
		return fmt.Sprintf("wasm: exit code %d", t.ExitCode)
	}
	return fmt.Sprintf("wasm: trap: %s", t.Kind)
}

// NewTrap constructs a Trap of the given kind.
func NewTrap(kind TrapKind) *Trap { return &Trap{Kind: kind} }

// NewExitTrap constructs the special voluntary-exit Trap a WASI proc_exit host call raises.
func NewExitTrap(code uint32) *Trap { return &Trap{Kind: TrapKindVoluntaryExit, ExitCode: code} }

// ValidationError reports a module that failed static validation (spec.md §4.4). The offset is a
// byte offset into the relevant function body's expr, or -1 when not localized to one.
type ValidationError struct {
	Offset  int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("wasm: validation error at offset %#x: %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("wasm: validation error: %s", e.Message)
}

// NewValidationError constructs a ValidationError not localized to a particular offset.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Offset: -1, Message: fmt.Sprintf(format, args...)}
}

// NewValidationErrorAt constructs a ValidationError localized to a byte offset.
func NewValidationErrorAt(offset int, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}

// LinkError reports failure to instantiate a validated module: an import that could not be
// resolved, or a resolved import whose type doesn't match (spec.md §4.7).
type LinkError struct {
	Module string
	Name   string
	Reason string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("wasm: link error: %s.%s: %s", e.Module, e.Name, e.Reason)
}

// NewLinkError constructs a LinkError for the given two-level import name.
func NewLinkError(module, name, reason string) *LinkError {
	return &LinkError{Module: module, Name: name, Reason: reason}
}
