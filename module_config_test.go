package wasmlite

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmlite/wasmlite/internal/wasm"
)

func TestNewModuleConfigDefaultsStartFunctionToStart(t *testing.T) {
	c := NewModuleConfig()
	require.Equal(t, []string{"_start"}, c.startFunctions)
}

func TestModuleConfigWithEnvReplacesExistingKey(t *testing.T) {
	c := NewModuleConfig().WithEnv("A", "1").WithEnv("B", "2").WithEnv("A", "3")
	require.Equal(t, []string{"A", "3", "B", "2"}, c.environ)
}

func TestModuleConfigWasiConfigJoinsEnvironPairsAndDefaultsStdio(t *testing.T) {
	c := NewModuleConfig().WithArgs("prog", "arg0").WithEnv("K", "V")
	cfg := c.wasiConfig()

	require.Equal(t, []string{"prog", "arg0"}, cfg.Args)
	require.Equal(t, []string{"K=V"}, cfg.Environ)
	require.Equal(t, io.Discard, cfg.Stdout)
	require.Equal(t, io.Discard, cfg.Stderr)
}

func TestModuleConfigReplaceImportsRenamesModuleThenName(t *testing.T) {
	mod := &wasm.Module{
		ImportSection: []*wasm.Import{
			{Module: "wasi_unstable", Name: "fd_write"},
			{Module: "wasi_unstable", Name: "args_get"},
			{Module: "env", Name: "log"},
		},
	}

	c := NewModuleConfig().
		WithImportModule("wasi_unstable", "wasi_snapshot_preview1").
		WithImport("wasi_snapshot_preview1", "args_get", "go", "args_get")

	replaced := c.replaceImports(mod)
	require.NotSame(t, mod, replaced, "a module with applicable renames must not be mutated in place")

	require.Equal(t, "wasi_snapshot_preview1", replaced.ImportSection[0].Module)
	require.Equal(t, "fd_write", replaced.ImportSection[0].Name)

	require.Equal(t, "go", replaced.ImportSection[1].Module)
	require.Equal(t, "args_get", replaced.ImportSection[1].Name)

	require.Equal(t, "env", replaced.ImportSection[2].Module)

	// the original module's import section is untouched
	require.Equal(t, "wasi_unstable", mod.ImportSection[0].Module)
}

func TestModuleConfigReplaceImportsNoOpWhenNothingConfigured(t *testing.T) {
	mod := &wasm.Module{ImportSection: []*wasm.Import{{Module: "env", Name: "log"}}}
	replaced := NewModuleConfig().replaceImports(mod)
	require.Same(t, mod, replaced)
}
