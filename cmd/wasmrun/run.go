package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wasmlite/wasmlite"
)

var (
	runFeatures       featureFlags
	runModulePath     string
	runName           string
	runStartFunctions []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Instantiate a module fixture and run its start functions, discarding its output",
	Long: `run instantiates a module sandboxed from the calling process: stdout/stderr are
discarded and no command-line arguments or environment variables are visible to it unless passed
explicitly via wasi-run. Use this to smoke-test that a module links and starts without crashing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModule(cmd, &runFeatures, runModulePath, runName, runStartFunctions, io.Discard, io.Discard, nil, nil)
	},
}

func init() {
	runFeatures.register(runCmd.Flags())
	runCmd.Flags().StringVar(&runModulePath, "module", "", moduleFlagHelp)
	runCmd.Flags().StringVar(&runName, "name", "main", "name to instantiate the module under")
	runCmd.Flags().StringSliceVar(&runStartFunctions, "start", []string{"_start"}, "exported functions to call after instantiation, in order; missing names are skipped")
	_ = runCmd.MarkFlagRequired("module")
}

func runModule(cmd *cobra.Command, f *featureFlags, modulePath, name string, startFunctions []string, stdout, stderr io.Writer, wasiArgs []string, env *envFlag) error {
	mod, err := loadModule(modulePath)
	if err != nil {
		return err
	}

	rt := newRuntime(f)
	compiled, err := rt.CompileModule(mod)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	mc := wasmlite.NewModuleConfig().
		WithName(name).
		WithStartFunctions(startFunctions...).
		WithStdout(stdout).
		WithStderr(stderr).
		WithArgs(wasiArgs...)
	if env != nil {
		for _, kv := range env.pairs {
			mc = mc.WithEnv(kv[0], kv[1])
		}
	}

	if _, err := rt.InstantiateModule(context.Background(), compiled, mc); err != nil {
		return fmt.Errorf("instantiation failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}
