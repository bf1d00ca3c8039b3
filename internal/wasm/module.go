package wasm

import "github.com/wasmlite/wasmlite/api"

// Module is the decoded, but not yet validated or instantiated, representation of a single Wasm
// binary: the output of the (out of scope) binary-format decoder and the input to Validate and
// Instantiate (spec.md §3, §4.4, §4.7).
type Module struct {
	TypeSection     []*FunctionType
	ImportSection   []*Import
	FunctionSection []Index // type index per locally-defined function, parallel to CodeSection
	TableSection    []*Table
	MemorySection   []*Memory
	GlobalSection   []*Global
	ExportSection   []*Export
	StartSection    *Index
	ElementSection  []*ElementSegment
	CodeSection     []*Code
	DataSection     []*DataSegment

	// DataCountSection mirrors the bulk-memory-operations proposal's optional data count: when
	// present, memory.init/data.drop validation can check segment indices without a forward scan.
	DataCountSection *uint32

	// NameSection carries the optional debug names custom section, consulted only for error
	// messages and CLI output, never for semantics.
	NameSection *NameSection
}

// NameSection is the subset of the "name" custom section this runtime understands.
type NameSection struct {
	ModuleName    string
	FunctionNames map[Index]string
	LocalNames    map[Index]map[Index]string
}

// ImportKind mirrors api.ExternType for the four importable/exportable entity kinds.
type ImportKind = api.ExternType

// Import is one entry of the import section. Exactly one of the Desc* fields is meaningful,
// selected by Kind.
type Import struct {
	Module string
	Name   string
	Kind   ImportKind

	DescFunc   Index // index into TypeSection
	DescTable  *Table
	DescMem    *Memory
	DescGlobal *GlobalType
}

// GlobalType is a global's static type: its value type and whether it is mutable.
type GlobalType struct {
	ValType ValueType
	Mutable bool
}

// Export is one entry of the export section, naming an index-space member for the host.
type Export struct {
	Name  string
	Kind  ImportKind
	Index Index
}

// Table is a table's static type: element type plus growable-storage limits.
type Table struct {
	ElemType ValueType // ValueTypeFuncref or ValueTypeExternref
	Limits   Limits
}

// Memory is a linear memory's static type: limits counted in pages, plus the threads proposal's
// shared flag.
type Memory struct {
	Limits   Limits
	IsShared bool
}

// Global is a module-defined (non-imported) global, carrying its initializer constant expression.
type Global struct {
	Type GlobalType
	Init ConstExpr
}

// ConstExpr is the raw byte body of a constant expression (global initializer, or an active
// segment's offset), terminated by 0x0B. It is evaluated by EvalConstExpr during instantiation
// (spec.md §4.7 step 3), never by the validator's general expression evaluator.
type ConstExpr struct {
	Opcode byte // the single constant-forming opcode: one of const/global.get/ref.null/ref.func (+ the extended-const proposal's arithmetic, unsupported here)
	Body   []byte
}

// ElementMode classifies an element segment per the bulk-memory-operations / reference-types
// proposals: Active segments are applied to a table at instantiation, Passive ones are only
// consulted by table.init, and Declarative ones exist solely to satisfy validation of ref.func.
type ElementMode int

const (
	ElementModeActive ElementMode = iota
	ElementModePassive
	ElementModeDeclarative
)

// ElementSegment is one entry of the element section.
type ElementSegment struct {
	Mode        ElementMode
	TableIndex  Index // meaningful only when Mode == ElementModeActive
	OffsetExpr  ConstExpr
	Type        ValueType
	Init        []ConstExpr // one constant expression (ref.func or ref.null) per element
}

// DataMode classifies a data segment the same way ElementMode classifies element segments.
type DataMode int

const (
	DataModeActive DataMode = iota
	DataModePassive
)

// DataSegment is one entry of the data section.
type DataSegment struct {
	Mode       DataMode
	MemoryIndex Index
	OffsetExpr ConstExpr
	Init       []byte
}

// Code is one entry of the code section: a function body paired with its local-variable types and
// (after Validate) the precomputed dispatch metadata the engine executes against.
type Code struct {
	// LocalTypes is expanded so index i directly names the type of local variable
	// len(FunctionType.Params)+i; declaration run-lengths from the binary format are flattened here.
	LocalTypes []ValueType

	// Body is the raw expr bytes: the function's instruction sequence, terminated by the opcode
	// 0x0B (end) that closes the implicit outermost block.
	Body []byte

	// Info is filled in by Validate and consumed by the execution engine; nil until validated.
	Info *ExprInfo
}
