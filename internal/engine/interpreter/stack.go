package interpreter

import "github.com/wasmlite/wasmlite/internal/wasm"

// slotsOf is the number of uint64 value-stack slots a type occupies in this engine's
// representation. Every MVP type is a single 64-bit slot, including i32 and f32 (sign/zero-extended
// the same way api.EncodeI32/api.EncodeF32 already do at the Function.Call boundary); only v128
// needs two, matching api.EncodeV128/DecodeV128's (lo, hi) pair.
//
// spec.md's REDESIGN FLAGS note weighs this uniform-slot layout against a denser 32-bit "small
// cells" packing (the one wasm.ExprInfo.MaxCells/api.CellsOf count in, for sizing purposes only).
// This engine takes the uniform layout: GlobalInstance.Value, TableInstance.Elements and
// api.GoModuleFunction's stack parameter are already one uint64 per value, so a 32-bit-packed
// engine stack would need to repack at every global access, table op and host call boundary for a
// memory saving this engine doesn't otherwise need. MaxCells still safely upper-bounds the number
// of slots this layout needs, since no type here takes more slots than it takes 32-bit cells.
func slotsOf(t wasm.ValueType) int {
	if t == wasm.ValueTypeV128 {
		return 2
	}
	return 1
}

// valueStack is the per-call operand stack, preallocated from wasm.ExprInfo.MaxCells so ordinary
// execution never grows it.
type valueStack struct {
	slots []uint64
}

func newValueStack(capacityHint int) *valueStack {
	if capacityHint < 16 {
		capacityHint = 16
	}
	return &valueStack{slots: make([]uint64, 0, capacityHint)}
}

func (s *valueStack) push(v uint64)  { s.slots = append(s.slots, v) }
func (s *valueStack) pop() uint64 {
	top := len(s.slots) - 1
	v := s.slots[top]
	s.slots = s.slots[:top]
	return v
}
func (s *valueStack) peek() uint64   { return s.slots[len(s.slots)-1] }
func (s *valueStack) len() int       { return len(s.slots) }
func (s *valueStack) truncate(n int) { s.slots = s.slots[:n] }

// topN returns the top n slots without popping them, in stack order (index 0 is deepest of the n).
func (s *valueStack) topN(n int) []uint64 { return s.slots[len(s.slots)-n:] }

func (s *valueStack) pushV128(lo, hi uint64) { s.slots = append(s.slots, lo, hi) }
func (s *valueStack) popV128() (hi, lo uint64) {
	hi = s.pop()
	lo = s.pop()
	return
}

// unwindTo shifts the top resultCells slots down to base, discarding everything in between: the
// mechanics spec.md §4.5 describes for both a structured `end`'s fallthrough and a taken branch
// unwinding intervening operands.
func (s *valueStack) unwindTo(base, resultCells int) {
	top := len(s.slots)
	copy(s.slots[base:base+resultCells], s.slots[top-resultCells:top])
	s.slots = s.slots[:base+resultCells]
}
