package wasm

import (
	"fmt"

	"github.com/wasmlite/wasmlite/api"
	"github.com/wasmlite/wasmlite/internal/leb128"
)

// valueTypeUnknown is the abstract "don't care" type the polymorphic-stack algorithm below
// substitutes once a control frame has gone unreachable: no concrete ValueType is ever 0, so it
// doubles as the sentinel.
const valueTypeUnknown ValueType = 0

// Validate statically checks every function body, global initializer, and segment offset
// expression in mod against features, filling in each Code's ExprInfo on success (spec.md §4.4).
// It does not check the binary-format framing (section ordering, vector counts): that belongs to
// the (out of scope) decoder that produced mod.
func Validate(mod *Module, features Features) error {
	spaces := buildIndexSpaces(mod)
	for i, idx := range mod.FunctionSection {
		if int(idx) >= len(mod.TypeSection) {
			return NewValidationError("function %d: type index %d out of range", i, idx)
		}
		code := mod.CodeSection[i]
		ft := mod.TypeSection[idx]
		info, err := validateFunctionBody(mod, ft, code, features, spaces)
		if err != nil {
			return fmt.Errorf("function %d: %w", i, err)
		}
		code.Info = info
	}
	for i, g := range mod.GlobalSection {
		if err := validateConstExpr(mod, g.Init, g.Type.ValType); err != nil {
			return fmt.Errorf("global %d: %w", i, err)
		}
	}
	for i, seg := range mod.ElementSection {
		if seg.Mode == ElementModeActive {
			if err := validateConstExpr(mod, seg.OffsetExpr, ValueTypeI32); err != nil {
				return fmt.Errorf("element segment %d: %w", i, err)
			}
		}
	}
	for i, seg := range mod.DataSection {
		if seg.Mode == DataModeActive {
			if err := validateConstExpr(mod, seg.OffsetExpr, ValueTypeI32); err != nil {
				return fmt.Errorf("data segment %d: %w", i, err)
			}
		}
	}
	return nil
}

// validateConstExpr checks only that a constant expression's leading opcode is one of the forms
// the core spec admits in that position and that its static type matches want; it does not
// re-derive the full expression grammar (a constant expression is always exactly one
// constant-forming instruction), matching EvalConstExpr's contract.
func validateConstExpr(mod *Module, ce ConstExpr, want ValueType) error {
	var got ValueType
	switch ce.Opcode {
	case OpI32Const:
		got = ValueTypeI32
	case OpI64Const:
		got = ValueTypeI64
	case OpF32Const:
		got = ValueTypeF32
	case OpF64Const:
		got = ValueTypeF64
	case OpGlobalGet:
		idx, _, err := leb128.LoadUint32(ce.Body)
		if err != nil {
			return err
		}
		var imported []*GlobalType
		for _, imp := range mod.ImportSection {
			if imp.Kind == ExternTypeGlobal {
				imported = append(imported, imp.DescGlobal)
			}
		}
		if int(idx) >= len(imported) {
			return NewValidationError("constant expression's global.get %d must reference an imported global", idx)
		}
		got = imported[idx].ValType
	case OpRefNull:
		got = want // ref.null always matches any reference-type expectation
	case OpRefFunc:
		got = ValueTypeFuncref
	default:
		return NewValidationError("opcode %#x is not a valid constant expression", ce.Opcode)
	}
	if got != want {
		return NewValidationError("constant expression type mismatch: want %s, have %s", api.ValueTypeName(want), api.ValueTypeName(got))
	}
	return nil
}

// ctrlFrame is one entry of the validator's control-frame stack.
type ctrlFrame struct {
	opcode   byte
	params   []ValueType
	results  []ValueType
	height   int // operand-stack height (in values, not cells) when this frame was pushed
	unreachable bool

	ownPC           uint32 // byte offset of the block/loop/if opcode itself
	resolvedTarget  *uint32
	pendingBranches []uint32
	pendingBrTable  []brTablePatch
}

// brTablePatch records that BrTableTargets[pc][index] is still waiting on this frame's target.
type brTablePatch struct {
	pc    uint32
	index int
}

// indexSpaces is every module index space flattened across imports-then-locally-defined, the form
// the validator needs for bounds and type checks (spec.md §3's index space rule).
type indexSpaces struct {
	funcs   []*FunctionType
	globals []GlobalType
	tables  []*Table
	mems    []*Memory
}

func buildIndexSpaces(mod *Module) indexSpaces {
	var s indexSpaces
	for _, imp := range mod.ImportSection {
		switch imp.Kind {
		case ExternTypeFunc:
			s.funcs = append(s.funcs, mod.TypeSection[imp.DescFunc])
		case ExternTypeTable:
			s.tables = append(s.tables, imp.DescTable)
		case ExternTypeMemory:
			s.mems = append(s.mems, imp.DescMem)
		case ExternTypeGlobal:
			s.globals = append(s.globals, *imp.DescGlobal)
		}
	}
	for _, idx := range mod.FunctionSection {
		if int(idx) < len(mod.TypeSection) {
			s.funcs = append(s.funcs, mod.TypeSection[idx])
		} else {
			s.funcs = append(s.funcs, &FunctionType{})
		}
	}
	for _, t := range mod.TableSection {
		s.tables = append(s.tables, t)
	}
	for _, m := range mod.MemorySection {
		s.mems = append(s.mems, m)
	}
	for _, g := range mod.GlobalSection {
		s.globals = append(s.globals, g.Type)
	}
	return s
}

type validator struct {
	mod      *Module
	features Features
	locals   []ValueType
	spaces   indexSpaces

	opStack   []ValueType
	curCells  int
	maxCells  int
	frames    []ctrlFrame
	maxLabels int

	body []byte
	pc   uint32

	info *ExprInfo
}

func validateFunctionBody(mod *Module, ft *FunctionType, code *Code, features Features, spaces indexSpaces) (*ExprInfo, error) {
	locals := make([]ValueType, 0, len(ft.Params)+len(code.LocalTypes))
	locals = append(locals, ft.Params...)
	locals = append(locals, code.LocalTypes...)

	v := &validator{mod: mod, features: features, locals: locals, spaces: spaces, body: code.Body, info: newExprInfo()}
	v.pushFrame(0, nil, ft.Results)

	for v.pc < uint32(len(v.body)) && len(v.frames) > 0 {
		if err := v.step(); err != nil {
			return nil, &ValidationError{Offset: int(v.pc), Message: err.Error()}
		}
	}
	if len(v.frames) != 0 {
		return nil, NewValidationError("function body ends without closing every block")
	}
	v.info.MaxCells = v.maxCells
	v.info.MaxLabels = v.maxLabels
	return v.info, nil
}

func (v *validator) pushOperand(t ValueType) {
	v.opStack = append(v.opStack, t)
	if t != valueTypeUnknown {
		v.curCells += cellsOfOrOne(t)
		if v.curCells > v.maxCells {
			v.maxCells = v.curCells
		}
	}
}

func cellsOfOrOne(t ValueType) int {
	if t == valueTypeUnknown {
		return 1
	}
	return cellsOf(t)
}

func cellsOf(t ValueType) int { return api.CellsOf(t) }

func (v *validator) popOperand() (ValueType, error) {
	frame := &v.frames[len(v.frames)-1]
	if len(v.opStack) == frame.height {
		if frame.unreachable {
			return valueTypeUnknown, nil
		}
		return 0, fmt.Errorf("operand stack underflow")
	}
	t := v.opStack[len(v.opStack)-1]
	v.opStack = v.opStack[:len(v.opStack)-1]
	if t != valueTypeUnknown {
		v.curCells -= cellsOfOrOne(t)
	}
	return t, nil
}

func (v *validator) popExpect(want ValueType) (ValueType, error) {
	got, err := v.popOperand()
	if err != nil {
		return 0, err
	}
	if got == valueTypeUnknown {
		return want, nil
	}
	if want == valueTypeUnknown {
		return got, nil
	}
	if got != want {
		return 0, fmt.Errorf("type mismatch: expected %s, got %s", api.ValueTypeName(want), api.ValueTypeName(got))
	}
	return got, nil
}

func (v *validator) popOperands(want []ValueType) error {
	for i := len(want) - 1; i >= 0; i-- {
		if _, err := v.popExpect(want[i]); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) pushOperands(ts []ValueType) {
	for _, t := range ts {
		v.pushOperand(t)
	}
}

func (v *validator) setUnreachable() {
	frame := &v.frames[len(v.frames)-1]
	for len(v.opStack) > frame.height {
		v.popOperand()
	}
	frame.unreachable = true
}

func (v *validator) pushFrame(opcode byte, params, results []ValueType) {
	v.frames = append(v.frames, ctrlFrame{
		opcode:  opcode,
		params:  params,
		results: results,
		height:  len(v.opStack),
		ownPC:   v.pc,
	})
	if len(v.frames) > v.maxLabels {
		v.maxLabels = len(v.frames)
	}
	v.pushOperands(params)
}

func (v *validator) popFrame() (ctrlFrame, error) {
	frame := v.frames[len(v.frames)-1]
	if err := v.popOperands(frame.results); err != nil {
		return frame, err
	}
	if len(v.opStack) != frame.height {
		return frame, fmt.Errorf("operand stack not empty at end of block")
	}
	v.frames = v.frames[:len(v.frames)-1]
	return frame, nil
}

// labelFrame returns the control frame `depth` labels up from the innermost (depth 0 == innermost).
func (v *validator) labelFrame(depth uint32) (*ctrlFrame, error) {
	if int(depth) >= len(v.frames) {
		return nil, fmt.Errorf("branch depth %d exceeds label nesting", depth)
	}
	return &v.frames[len(v.frames)-1-int(depth)], nil
}

// branchTypes returns the types a branch to frame must have on the stack: a loop's own parameter
// types (branching to a loop re-enters at its start), or a block/if/function frame's result types.
func branchTypes(frame *ctrlFrame) []ValueType {
	if frame.opcode == OpLoop {
		return frame.params
	}
	return frame.results
}

// recordBranch resolves or defers the jump target for a branch at byte offset pc targeting frame.
func (v *validator) recordBranch(pc uint32, frame *ctrlFrame) JumpTarget {
	bt := branchTypes(frame)
	jt := JumpTarget{ResultCells: cellsOfAll(bt), ParamCells: cellsOfAll(frame.params)}
	if frame.resolvedTarget != nil {
		jt.Target = *frame.resolvedTarget
		v.info.Jumps[pc] = jt
	} else {
		frame.pendingBranches = append(frame.pendingBranches, pc)
	}
	return jt
}

func cellsOfAll(ts []ValueType) int {
	n := 0
	for _, t := range ts {
		n += cellsOf(t)
	}
	return n
}

// resolveFrameTarget is called once a frame's jump target becomes known (a loop's start, or a
// block/if's matching end), backpatching every branch recorded before resolution.
func (v *validator) resolveFrameTarget(frame *ctrlFrame, target uint32) {
	frame.resolvedTarget = &target
	bt := branchTypes(frame)
	jt := JumpTarget{Target: target, ResultCells: cellsOfAll(bt), ParamCells: cellsOfAll(frame.params)}
	for _, pc := range frame.pendingBranches {
		v.info.Jumps[pc] = jt
	}
	frame.pendingBranches = nil
	for _, patch := range frame.pendingBrTable {
		v.info.BrTableTargets[patch.pc][patch.index] = jt
	}
	frame.pendingBrTable = nil
}
