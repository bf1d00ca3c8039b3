package wasm

import (
	"fmt"

	"github.com/wasmlite/wasmlite/internal/leb128"
)

// EvalConstExpr evaluates a global initializer or a segment's offset expression (spec.md §4.7 step
// 3). Per the core spec, a constant expression is always exactly one constant-forming instruction
// followed by `end`; it never uses the general execution engine. globals and funcs are the
// instance's index spaces built so far — only imported globals may be referenced by global.get
// here, which the validator already enforced.
func EvalConstExpr(expr ConstExpr, globals []*GlobalInstance, funcs []*FunctionInstance) (uint64, error) {
	body := expr.Body
	switch expr.Opcode {
	case OpI32Const:
		v, _, err := leb128.LoadInt32(body)
		return uint64(uint32(v)), err
	case OpI64Const:
		v, _, err := leb128.LoadInt64(body)
		return uint64(v), err
	case OpF32Const:
		if len(body) < 4 {
			return 0, fmt.Errorf("wasm: truncated f32.const in constant expression")
		}
		bits := uint32(body[0]) | uint32(body[1])<<8 | uint32(body[2])<<16 | uint32(body[3])<<24
		return uint64(bits), nil
	case OpF64Const:
		if len(body) < 8 {
			return 0, fmt.Errorf("wasm: truncated f64.const in constant expression")
		}
		var bits uint64
		for i := 0; i < 8; i++ {
			bits |= uint64(body[i]) << (8 * i)
		}
		return bits, nil
	case OpGlobalGet:
		idx, _, err := leb128.LoadUint32(body)
		if err != nil {
			return 0, err
		}
		if int(idx) >= len(globals) {
			return 0, fmt.Errorf("wasm: constant expression references out-of-range global %d", idx)
		}
		return globals[idx].Get(), nil
	case OpRefNull:
		return 0, nil
	case OpRefFunc:
		idx, _, err := leb128.LoadUint32(body)
		if err != nil {
			return 0, err
		}
		if int(idx) >= len(funcs) {
			return 0, fmt.Errorf("wasm: constant expression references out-of-range function %d", idx)
		}
		// Encode as index+1 so 0 is reserved for a null funcref, matching TableInstance's encoding.
		return uint64(idx) + 1, nil
	default:
		return 0, fmt.Errorf("wasm: opcode %#x is not valid in a constant expression", expr.Opcode)
	}
}
