// Command wasmrun is a thin CLI wrapper around the wasmlite package: validate, instantiate, and
// optionally run a module's start functions, with flags mirroring every RuntimeConfig toggle.
//
// wasmrun has no binary-format decoder (neither does wasmlite: decoding .wasm bytes into a module
// structure is out of scope for this repository). Every subcommand here loads its module from a
// gob-encoded *wasm.Module fixture file instead of a real .wasm binary; see loadModule's doc
// comment.
package main

import (
	"fmt"
	"os"

	"github.com/wasmlite/wasmlite/internal/logging"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	logger, err := zap.NewDevelopment()
	if err == nil {
		logging.SetLogger(logger)
	}
}
