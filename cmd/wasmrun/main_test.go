package main

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmlite/wasmlite/internal/wasi"
	"github.com/wasmlite/wasmlite/internal/wasm"
)

// writeProcExitFixture gob-encodes a module that imports wasi_snapshot_preview1.proc_exit and
// exports it under "_start", to a file under t.TempDir(), and returns the path.
func writeProcExitFixture(t *testing.T) string {
	t.Helper()
	mod := &wasm.Module{
		TypeSection: []*wasm.FunctionType{{Params: []wasm.ValueType{wasm.ValueTypeI32}}},
		ImportSection: []*wasm.Import{
			{Module: wasi.ModuleName, Name: "proc_exit", Kind: wasm.ExternTypeFunc, DescFunc: 0},
		},
		ExportSection: []*wasm.Export{{Name: "_start", Kind: wasm.ExternTypeFunc, Index: 0}},
	}

	path := filepath.Join(t.TempDir(), "proc_exit.gob")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, gob.NewEncoder(f).Encode(mod))
	return path
}

func TestValidateCommandAcceptsWellFormedFixture(t *testing.T) {
	path := writeProcExitFixture(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"validate", "--module", path})
	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "ok")
}

func TestValidateCommandRejectsUnreadableFixture(t *testing.T) {
	rootCmd.SetArgs([]string{"validate", "--module", filepath.Join(t.TempDir(), "missing.gob")})
	require.Error(t, rootCmd.Execute())
}

func TestRunCommandInstantiatesAndRunsStartFunction(t *testing.T) {
	path := writeProcExitFixture(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "--module", path, "--name", "m"})
	require.NoError(t, rootCmd.Execute(), "a module that voluntarily exits during its start function is not a CLI error")
	require.Contains(t, out.String(), "ok")
}
