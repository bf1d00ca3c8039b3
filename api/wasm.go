// Package api includes constants and interfaces used by both end-users and internal implementations.
package api

import (
	"context"
	"fmt"
	"math"
	"reflect"
)

// ExternType classifies imports and exports with their respective types.
//
// See https://webassembly.github.io/spec/core/syntax/types.html#external-types
type ExternType = byte

const (
	ExternTypeFunc   ExternType = 0x00
	ExternTypeTable  ExternType = 0x01
	ExternTypeMemory ExternType = 0x02
	ExternTypeGlobal ExternType = 0x03
)

const (
	ExternTypeFuncName   = "func"
	ExternTypeTableName  = "table"
	ExternTypeMemoryName = "memory"
	ExternTypeGlobalName = "global"
)

// ExternTypeName returns the name of the text-format field for the given ExternType.
func ExternTypeName(et ExternType) string {
	switch et {
	case ExternTypeFunc:
		return ExternTypeFuncName
	case ExternTypeTable:
		return ExternTypeTableName
	case ExternTypeMemory:
		return ExternTypeMemoryName
	case ExternTypeGlobal:
		return ExternTypeGlobalName
	}
	return fmt.Sprintf("%#x", et)
}

// ValueType describes a numeric type used in the WebAssembly core specification, plus the
// reference types added by the reference-types and SIMD proposals this runtime implements.
//
// Conversion between Wasm and Go:
//
//   - ValueTypeI32 - uint64(uint32,int32)
//   - ValueTypeI64 - uint64(int64)
//   - ValueTypeF32 - EncodeF32 / DecodeF32 from float32
//   - ValueTypeF64 - EncodeF64 / DecodeF64 from float64
//   - ValueTypeV128 - two uint64 cells, see EncodeV128 / DecodeV128
//   - ValueTypeFuncref / ValueTypeExternref - uintptr(unsafe.Pointer(p))
//
// This is a type alias as it is easier to encode and decode in the binary format.
type ValueType = byte

const (
	ValueTypeI32 ValueType = 0x7f
	ValueTypeI64 ValueType = 0x7e
	ValueTypeF32 ValueType = 0x7d
	ValueTypeF64 ValueType = 0x7c
	// ValueTypeV128 is a 128-bit SIMD vector, gated by RuntimeConfig.WithFeatureSIMD.
	ValueTypeV128 ValueType = 0x7b
	// ValueTypeFuncref is a nullable reference to a function instance.
	ValueTypeFuncref ValueType = 0x70
	// ValueTypeExternref is a nullable, opaque reference to a host object.
	ValueTypeExternref ValueType = 0x6f
)

// ValueTypeName returns the WebAssembly text format name of the given ValueType, or "unknown".
func ValueTypeName(t ValueType) string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeV128:
		return "v128"
	case ValueTypeFuncref:
		return "funcref"
	case ValueTypeExternref:
		return "externref"
	}
	return "unknown"
}

// CellsOf returns the number of 32-bit stack cells a value of type t occupies. See the cell-index
// map in SPEC_FULL.md's Value & stack representation.
func CellsOf(t ValueType) int {
	switch t {
	case ValueTypeI64, ValueTypeF64:
		return 2
	case ValueTypeV128:
		return 4
	default:
		return 1
	}
}

// Module return functions exported in a module, post-instantiation.
//
// Note: This is an interface for decoupling, not third-party implementations. All implementations
// live in this module.
type Module interface {
	fmt.Stringer

	// Name is the name this module was instantiated with. Exported functions can be imported with this name.
	Name() string

	// Memory returns a memory defined in this module or nil if there are none.
	Memory() Memory

	// ExportedFunction returns a function exported from this module or nil if it wasn't.
	ExportedFunction(name string) Function

	// ExportedMemory returns a memory exported from this module or nil if it wasn't.
	ExportedMemory(name string) Memory

	// ExportedGlobal returns a global exported from this module or nil if it wasn't.
	ExportedGlobal(name string) Global

	// CloseWithExitCode releases resources allocated for this Module. Any exitCode, zero included,
	// causes ExportedFunction callers in flight to observe a voluntary-exit Trap carrying that code.
	CloseWithExitCode(ctx context.Context, exitCode uint32) error

	Closer
}

// Closer closes a resource.
type Closer interface {
	Close(context.Context) error
}

// FunctionDefinition is a WebAssembly function exported or imported by a module, pre-instantiation.
type FunctionDefinition interface {
	ModuleName() string
	Index() uint32
	Name() string
	DebugName() string
	Import() (moduleName, name string, isImport bool)
	ExportNames() []string
	ParamTypes() []ValueType
	ResultTypes() []ValueType
}

// Function is a WebAssembly function exported from an instantiated module.
type Function interface {
	Definition() FunctionDefinition

	// Call invokes the function with parameters encoded according to ParamTypes, returning results
	// encoded according to ResultTypes. When the context is nil, it defaults to context.Background.
	Call(ctx context.Context, params ...uint64) ([]uint64, error)
}

// RestartStatus is the outcome of a resumable call: whether it ran to completion, suspended mid-
// body awaiting a RestartHandle's resumption, or was interrupted by context cancellation.
type RestartStatus int

const (
	RestartStatusReturned RestartStatus = iota
	RestartStatusRestartable
	RestartStatusInterrupted
)

// RestartHandle captures a suspended call so an embedder can resume it later with Resume. It holds
// no exported fields: the engine that produced it is the only thing that can interpret it.
type RestartHandle interface {
	// unexported marker keeps RestartHandle implementable only by the engine that issues one.
	isRestartHandle()
}

// RestartableFunction is a Function whose calls can suspend instead of only returning or trapping:
// a host function it (transitively, one call deep) invokes can ask to suspend by calling
// Request on the SuspendRequest in its context, handing control back to the embedder to resume
// later with Resume instead of having to block the calling goroutine.
type RestartableFunction interface {
	Function

	// CallWithRestart is Call's resumable counterpart. When status is RestartStatusRestartable,
	// results and err are both zero-valued and the returned RestartHandle must be passed to Resume
	// to continue the call.
	CallWithRestart(ctx context.Context, params ...uint64) (results []uint64, status RestartStatus, restart RestartHandle, err error)

	// Resume continues a call suspended by CallWithRestart or a previous Resume.
	Resume(ctx context.Context, restart RestartHandle) (results []uint64, status RestartStatus, next RestartHandle, err error)
}

// Global is a WebAssembly global exported from an instantiated module.
type Global interface {
	fmt.Stringer

	Type() ValueType
	Get(context.Context) uint64
}

// MutableGlobal is a Global whose value can be updated at runtime.
type MutableGlobal interface {
	Global
	Set(ctx context.Context, v uint64)
}

// Memory allows restricted access to a module's linear memory. See SPEC_FULL.md's Memory & table model.
type Memory interface {
	// Size returns the size in bytes available.
	Size(context.Context) uint32

	// Grow increases memory by the delta in pages (65536 bytes per page). Returns the previous size
	// in pages, or false if the delta was ignored because it would exceed the configured maximum.
	Grow(ctx context.Context, deltaPages uint32) (previousPages uint32, ok bool)

	ReadByte(ctx context.Context, offset uint32) (byte, bool)
	ReadUint32Le(ctx context.Context, offset uint32) (uint32, bool)
	ReadUint64Le(ctx context.Context, offset uint32) (uint64, bool)
	ReadFloat32Le(ctx context.Context, offset uint32) (float32, bool)
	ReadFloat64Le(ctx context.Context, offset uint32) (float64, bool)
	Read(ctx context.Context, offset, byteCount uint32) ([]byte, bool)

	WriteByte(ctx context.Context, offset uint32, v byte) bool
	WriteUint32Le(ctx context.Context, offset, v uint32) bool
	WriteUint64Le(ctx context.Context, offset uint32, v uint64) bool
	WriteFloat32Le(ctx context.Context, offset uint32, v float32) bool
	WriteFloat64Le(ctx context.Context, offset uint32, v float64) bool
	Write(ctx context.Context, offset uint32, v []byte) bool
}

// EncodeExternref encodes the input as a ValueTypeExternref.
func EncodeExternref(input uintptr) uint64 { return uint64(input) }

// DecodeExternref decodes the input as a ValueTypeExternref.
func DecodeExternref(input uint64) uintptr { return uintptr(input) }

// EncodeI32 encodes the input as a ValueTypeI32.
func EncodeI32(input int32) uint64 { return uint64(uint32(input)) }

// EncodeI64 encodes the input as a ValueTypeI64.
func EncodeI64(input int64) uint64 { return uint64(input) }

// EncodeF32 encodes the input as a ValueTypeF32.
func EncodeF32(input float32) uint64 { return uint64(math.Float32bits(input)) }

// DecodeF32 decodes the input as a ValueTypeF32.
func DecodeF32(input uint64) float32 { return math.Float32frombits(uint32(input)) }

// EncodeF64 encodes the input as a ValueTypeF64.
func EncodeF64(input float64) uint64 { return math.Float64bits(input) }

// DecodeF64 decodes the input as a ValueTypeF64.
func DecodeF64(input uint64) float64 { return math.Float64frombits(input) }

// V128 is a 128-bit SIMD vector value, represented as two little-endian 64-bit cells (lo, hi).
type V128 [2]uint64

// EncodeV128 splits a 128-bit vector into its two stack cells.
func EncodeV128(v V128) (lo, hi uint64) { return v[0], v[1] }

// DecodeV128 assembles a V128 from its two stack cells.
func DecodeV128(lo, hi uint64) V128 { return V128{lo, hi} }

// GoModuleFunction is the signature of a function implemented by the embedder (a "host function"),
// given direct access to cell-packed parameters/results and the calling module's memory. See the
// Host function ABI in SPEC_FULL.md / spec.md §6.
type GoModuleFunction interface {
	Call(ctx context.Context, mod Module, stack []uint64)
}

// GoModuleFunc is a GoModuleFunction backed by a plain function value.
type GoModuleFunc func(ctx context.Context, mod Module, stack []uint64)

// Call implements GoModuleFunction.Call.
func (f GoModuleFunc) Call(ctx context.Context, mod Module, stack []uint64) { f(ctx, mod, stack) }

// ReflectFunctionType infers a FunctionType's param/result ValueTypes from a plain Go func value,
// used when the embedder registers a host function by value instead of by explicit signature.
func ReflectFunctionType(fn interface{}) (params, results []ValueType, err error) {
	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return nil, nil, fmt.Errorf("expected a function, got %T", fn)
	}
	params = make([]ValueType, fnType.NumIn())
	for i := range params {
		if params[i], err = goKindToValueType(fnType.In(i).Kind()); err != nil {
			return nil, nil, fmt.Errorf("param[%d]: %w", i, err)
		}
	}
	results = make([]ValueType, fnType.NumOut())
	for i := range results {
		if results[i], err = goKindToValueType(fnType.Out(i).Kind()); err != nil {
			return nil, nil, fmt.Errorf("result[%d]: %w", i, err)
		}
	}
	return
}

func goKindToValueType(kind reflect.Kind) (ValueType, error) {
	switch kind {
	case reflect.Float64:
		return ValueTypeF64, nil
	case reflect.Float32:
		return ValueTypeF32, nil
	case reflect.Int32, reflect.Uint32:
		return ValueTypeI32, nil
	case reflect.Int64, reflect.Uint64:
		return ValueTypeI64, nil
	case reflect.Uintptr:
		return ValueTypeExternref, nil
	default:
		return 0, fmt.Errorf("invalid type: %s", kind)
	}
}
