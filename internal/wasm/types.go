// Package wasm holds the core data model the validator, linker and execution engine operate over:
// the Module produced by the (out of scope) binary-format parser, and the runtime Instance types
// the linker allocates from it. See spec.md §3 Data Model.
package wasm

import (
	"bytes"
	"fmt"

	"github.com/wasmlite/wasmlite/api"
)

// Index is a position in one of a module's index spaces (types, funcs, tables, mems, globals).
type Index = uint32

// ValueType aliases api.ValueType so this package's exported signatures read naturally.
type ValueType = api.ValueType

const (
	ValueTypeI32       = api.ValueTypeI32
	ValueTypeI64       = api.ValueTypeI64
	ValueTypeF32       = api.ValueTypeF32
	ValueTypeF64       = api.ValueTypeF64
	ValueTypeV128      = api.ValueTypeV128
	ValueTypeFuncref   = api.ValueTypeFuncref
	ValueTypeExternref = api.ValueTypeExternref
)

// ExternType* re-export api.ExternType's members so callers working with Import/Export don't need
// a second import just to name an entity kind.
const (
	ExternTypeFunc   = api.ExternTypeFunc
	ExternTypeTable  = api.ExternTypeTable
	ExternTypeMemory = api.ExternTypeMemory
	ExternTypeGlobal = api.ExternTypeGlobal
)

// IsReferenceType reports whether t is funcref or externref.
func IsReferenceType(t ValueType) bool {
	return t == ValueTypeFuncref || t == ValueTypeExternref
}

// IsNumericOrVectorType reports whether t is a numeric or v128 type (used by the untyped `select`
// and `drop` contracts of spec.md §4.4, which admit any such type).
func IsNumericOrVectorType(t ValueType) bool {
	switch t {
	case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64, ValueTypeV128:
		return true
	}
	return false
}

// FunctionType is an ordered parameter/result type signature. Two FunctionTypes are equal iff both
// sequences are equal (spec.md §3).
type FunctionType struct {
	Params  []ValueType
	Results []ValueType

	// cachedKey memoizes String() for use as a map key during validation (function-type lookups by
	// structural equality, not just index identity).
	cachedKey string
}

// String renders the signature as "(params)->(results)" and is also used as the structural-equality key.
func (t *FunctionType) String() string {
	if t.cachedKey != "" {
		return t.cachedKey
	}
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i, p := range t.Params {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(api.ValueTypeName(p))
	}
	buf.WriteString(")->(")
	for i, r := range t.Results {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(api.ValueTypeName(r))
	}
	buf.WriteByte(')')
	t.cachedKey = buf.String()
	return t.cachedKey
}

// Equal reports structural equality: same parameter types in order, same result types in order.
func (t *FunctionType) Equal(o *FunctionType) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	return t.String() == o.String()
}

// ParamCells and ResultCells are the cell widths of the signature, used to size the call boundary
// of the value stack (spec.md §4.3).
func (t *FunctionType) ParamCells() int {
	n := 0
	for _, p := range t.Params {
		n += api.CellsOf(p)
	}
	return n
}

func (t *FunctionType) ResultCells() int {
	n := 0
	for _, r := range t.Results {
		n += api.CellsOf(r)
	}
	return n
}

// Limits is a resizable-storage extent: Min is mandatory, Max is optional (nil means unbounded up
// to the implementation's own ceiling).
type Limits struct {
	Min uint32
	Max *uint32
}

// MemoryPageSize is 64KiB, the fixed granularity of Wasm linear memory (spec.md §4.6).
const MemoryPageSize = uint32(65536)

// MemoryMaxPages is the absolute ceiling on Wasm memory: 2^16 pages = 4GiB.
const MemoryMaxPages = uint32(65536)

// TableMaxSize is this runtime's configured ceiling absent a module-declared max, large enough
// never to bind ordinary modules but small enough to fail fast on a malicious growth loop.
const TableMaxSize = uint32(10000000)

// fmtLimits is used by link-error messages.
func fmtLimits(l Limits) string {
	if l.Max == nil {
		return fmt.Sprintf("{min %d}", l.Min)
	}
	return fmt.Sprintf("{min %d, max %d}", l.Min, *l.Max)
}
