package main

import (
	"encoding/gob"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wasmlite/wasmlite"
	"github.com/wasmlite/wasmlite/internal/wasm"
)

var rootCmd = &cobra.Command{
	Use:   "wasmrun",
	Short: "Validate and run WebAssembly modules against a small interpreter",
	Long: `wasmrun drives wasmlite's validator and interpreter against already-decoded module
fixtures. It does not read .wasm binaries directly: see the --module flag's help text.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(wasiRunCmd)
}

// featureFlags is the RuntimeConfig surface every subcommand that instantiates a module exposes
// as flags, one per spec.md §6-recognized configuration option.
type featureFlags struct {
	enableSIMD            bool
	enableThreads         bool
	enableTailCall        bool
	enableMultiMemory     bool
	smallCells            bool
	useSeparateExecute    bool
	interruptCheckInterval time.Duration
	memoryBudget          int64
}

func (f *featureFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.enableSIMD, "enable-simd", false, "enable the simd proposal")
	fs.BoolVar(&f.enableThreads, "enable-threads", false, "enable the threads proposal")
	fs.BoolVar(&f.enableTailCall, "enable-tailcall", false, "enable the tail-call proposal")
	fs.BoolVar(&f.enableMultiMemory, "enable-multi-memory", false, "enable the multi-memory proposal (accepted, not yet load-bearing)")
	fs.BoolVar(&f.smallCells, "small-cells", false, "pack operand-stack cells to native width (accepted, not yet load-bearing)")
	fs.BoolVar(&f.useSeparateExecute, "use-separate-execute", false, "run dispatch precomputation as a separate pass from validation (accepted, not yet load-bearing)")
	fs.DurationVar(&f.interruptCheckInterval, "interrupt-check-interval", 0, "how often a long-running call rechecks ctx.Err() (recorded only: checks happen at call boundaries)")
	fs.Int64Var(&f.memoryBudget, "memory-budget", 0, "total bytes this runtime's linear memories may grow to; 0 is unlimited (recorded only, not enforced)")
}

func newRuntime(f *featureFlags) *wasmlite.Runtime {
	return wasmlite.NewRuntime(f.runtimeConfig())
}

func (f *featureFlags) runtimeConfig() *wasmlite.RuntimeConfig {
	return wasmlite.NewRuntimeConfig().
		WithEnableSIMD(f.enableSIMD).
		WithEnableThreads(f.enableThreads).
		WithEnableTailCall(f.enableTailCall).
		WithEnableMultiMemory(f.enableMultiMemory).
		WithSmallCells(f.smallCells).
		WithUseSeparateExecute(f.useSeparateExecute).
		WithInterruptCheckInterval(f.interruptCheckInterval).
		WithMemoryBudget(f.memoryBudget)
}

// envFlag is a repeatable pflag.Value accumulating "KEY=VALUE" pairs, the same shape
// wasmlite.ModuleConfig.WithEnv takes one pair at a time.
type envFlag struct {
	pairs [][2]string
}

func (e *envFlag) String() string {
	var parts []string
	for _, p := range e.pairs {
		parts = append(parts, p[0]+"="+p[1])
	}
	return strings.Join(parts, ",")
}

func (e *envFlag) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("invalid --env value %q: want KEY=VALUE", s)
	}
	e.pairs = append(e.pairs, [2]string{key, value})
	return nil
}

func (e *envFlag) Type() string { return "KEY=VALUE" }

const moduleFlagHelp = `path to a gob-encoded internal/wasm.Module fixture.

wasmrun has no .wasm-binary decoder: decoding a WebAssembly binary into a module structure is
out of scope for this repository (the validator and interpreter consume already-decoded
*wasm.Module values). This flag takes the path to a file produced by gob-encoding such a value,
not a real .wasm file.`

// loadModule decodes a gob-encoded *wasm.Module fixture from path.
func loadModule(path string) (*wasm.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening module fixture: %w", err)
	}
	defer f.Close()

	var mod wasm.Module
	if err := gob.NewDecoder(f).Decode(&mod); err != nil {
		return nil, fmt.Errorf("decoding module fixture (expected gob-encoded internal/wasm.Module, not a .wasm binary): %w", err)
	}
	return &mod, nil
}
