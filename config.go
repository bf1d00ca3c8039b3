package wasmlite

import (
	"time"

	"github.com/wasmlite/wasmlite/internal/wasm"
)

// RuntimeConfig controls Runtime-wide behavior: which optional proposals the validator accepts,
// and the resource limits and diagnostics cadence every instantiated module is subject to. The
// default implementation is NewRuntimeConfig.
type RuntimeConfig struct {
	features wasm.Features

	// memoryBudgetBytes records a cap on the total bytes a Runtime's linear memories may grow to
	// across every module it instantiates, 0 meaning unlimited. The value is stored only: no memory
	// growth consults it, so it is not enforced.
	memoryBudgetBytes int64

	// interruptCheckInterval records how often a running call should recheck ctx.Err(). The value is
	// stored only: the engine checks ctx.Err() at every call boundary whatever it is set to, and has
	// no mid-function interrupt points.
	interruptCheckInterval time.Duration

	// smallCells, when true, asks the engine to pack operand-stack slots as native-width machine
	// words sized to each value's type (4 bytes for i32/f32) instead of always using 8-byte uint64
	// cells, mirroring toywasm's optional small-wasm-cells build mode. This interpreter always
	// stores every cell as a uint64 regardless of this flag today; the field is accepted and
	// threaded through so a future packed-cell engine can read it without a RuntimeConfig break.
	smallCells bool

	// useSeparateExecute, when true, asks CompileModule to run its dispatch-metadata precomputation
	// (ExprInfo) as a separate pass from Validate rather than inline, mirroring toywasm's
	// separate "validate" and "compile" phases when run with --disable-jit. This implementation
	// always computes ExprInfo as part of Validate; the flag is accepted for forward compatibility
	// and recorded in DESIGN.md as not yet load-bearing.
	useSeparateExecute bool
}

// engineLessConfig helps avoid copy/pasting the wrong defaults.
var engineLessConfig = &RuntimeConfig{
	features: wasm.FeaturesMVP,
}

// NewRuntimeConfig returns a RuntimeConfig with every optional proposal disabled and no resource
// limits, the WebAssembly 1.0 / MVP feature surface.
func NewRuntimeConfig() *RuntimeConfig {
	return engineLessConfig.clone()
}

// clone ensures all fields are copied even if zero-valued.
func (c *RuntimeConfig) clone() *RuntimeConfig {
	ret := *c
	return &ret
}

func (c *RuntimeConfig) withFeature(f wasm.Features, enabled bool) *RuntimeConfig {
	ret := c.clone()
	if enabled {
		ret.features = ret.features.With(f)
	} else {
		ret.features = ret.features.Without(f)
	}
	return ret
}

// WithEnableSIMD toggles the "simd" proposal (128-bit vector instructions and the v128 value
// type). Disabled by default.
func (c *RuntimeConfig) WithEnableSIMD(enabled bool) *RuntimeConfig {
	return c.withFeature(wasm.FeatureSIMD, enabled)
}

// WithEnableThreads toggles the "threads" proposal (shared memories and atomic instructions).
// Disabled by default.
func (c *RuntimeConfig) WithEnableThreads(enabled bool) *RuntimeConfig {
	return c.withFeature(wasm.FeatureThreads, enabled)
}

// WithEnableTailCall toggles the "tail-call" proposal (return_call, return_call_indirect).
// Disabled by default.
func (c *RuntimeConfig) WithEnableTailCall(enabled bool) *RuntimeConfig {
	return c.withFeature(wasm.FeatureTailCall, enabled)
}

// WithEnableMultiMemory toggles the "multi-memory" proposal. Accepted for configuration
// compatibility, but this runtime's validator and engine both address memory instructions against
// the sole implicit memory index 0 only; a module requiring a second memory fails to validate
// regardless of this setting. See DESIGN.md.
func (c *RuntimeConfig) WithEnableMultiMemory(enabled bool) *RuntimeConfig {
	return c.clone()
}

// WithSmallCells requests packed, natively-sized operand-stack cells instead of uniform 8-byte
// ones. See the smallCells field doc for the current state of this knob.
func (c *RuntimeConfig) WithSmallCells(enabled bool) *RuntimeConfig {
	ret := c.clone()
	ret.smallCells = enabled
	return ret
}

// WithUseSeparateExecute requests that dispatch-metadata precomputation run as a separate pass
// from validation. See the useSeparateExecute field doc for the current state of this knob.
func (c *RuntimeConfig) WithUseSeparateExecute(enabled bool) *RuntimeConfig {
	ret := c.clone()
	ret.useSeparateExecute = enabled
	return ret
}

// WithInterruptCheckInterval records how often a long-running call rechecks ctx.Err(). See the
// interruptCheckInterval field doc: the engine does not read it and checks only at call boundaries.
func (c *RuntimeConfig) WithInterruptCheckInterval(d time.Duration) *RuntimeConfig {
	ret := c.clone()
	ret.interruptCheckInterval = d
	return ret
}

// WithMemoryBudget records a cap on the total bytes this Runtime's linear memories may grow to,
// across every module it instantiates; zero (the default) is unlimited. See the memoryBudgetBytes
// field doc: the cap is not enforced.
func (c *RuntimeConfig) WithMemoryBudget(bytes int64) *RuntimeConfig {
	ret := c.clone()
	ret.memoryBudgetBytes = bytes
	return ret
}
