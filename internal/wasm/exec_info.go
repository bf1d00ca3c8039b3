package wasm

// ExprInfo is the dispatch metadata the validator computes once per function body and the engine
// replays on every call, so the hot execution path never re-derives control-flow targets or
// operand widths from the raw bytecode (spec.md §4.5's "exec_info" component).
type ExprInfo struct {
	// MaxCells is the peak number of value-stack cells this function's body can hold, sized so the
	// engine can preallocate one contiguous stack slice per call and never grow it mid-execution.
	MaxCells int

	// MaxLabels is the peak control-frame nesting depth, sizing the label stack the same way.
	MaxLabels int

	// Jumps maps the byte offset of a br, br_if, if or else opcode to the byte offset execution
	// continues at when the branch, the if's false condition, or the else's skip over the else-arm
	// is taken. br_table's targets live in BrTableTargets instead.
	Jumps map[uint32]JumpTarget

	// Annotations maps the byte offset of an opcode whose stack effect depends on runtime type
	// information (drop, select without an explicit type list, ref.is_null) to the cell width it
	// was resolved to at validation time.
	Annotations map[uint32]CellAnnotation

	// BrTableTargets maps a br_table opcode's own byte offset to its full target list: one entry
	// per explicit label in the immediate vector, followed by one trailing entry for the default
	// label, in that order.
	BrTableTargets map[uint32][]JumpTarget
}

// JumpTarget is the resolved destination(s) of a structured-control opcode.
type JumpTarget struct {
	// Target is the byte offset execution jumps to: for br/br_if/br_table entries this is past the
	// label's matching end (or back to the loop header for a loop label); for an else opcode it is
	// past the matching end; for an if without an else it is past the if's end.
	Target uint32

	// ElseTarget is only set on an `if` opcode's own offset: where to jump when the condition is
	// false and there is an else branch (0 with HasElse==false meaning "jump to End+1" instead).
	ElseTarget uint32
	HasElse    bool

	// ResultCells is the cell width of the label's result type, needed to shift result values down
	// to the label's base when a branch unwinds the stack.
	ResultCells int
	// ParamCells is the cell width of the label's parameter type (meaningful for a loop, whose
	// branch target is its own start and re-consumes its parameters).
	ParamCells int
}

// CellAnnotation records the resolved cell width for an opcode whose immediate operands alone
// don't determine it.
type CellAnnotation struct {
	Cells int
}

func newExprInfo() *ExprInfo {
	return &ExprInfo{
		Jumps:          make(map[uint32]JumpTarget),
		Annotations:    make(map[uint32]CellAnnotation),
		BrTableTargets: make(map[uint32][]JumpTarget),
	}
}
