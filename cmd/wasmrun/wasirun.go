package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	wasiFeatures       featureFlags
	wasiModulePath     string
	wasiName           string
	wasiStartFunctions []string
	wasiArgs           []string
	wasiEnv            envFlag
)

var wasiRunCmd = &cobra.Command{
	Use:   "wasi-run",
	Short: "Instantiate a module fixture with real process stdio, args, and environment",
	Long: `wasi-run is like run, except fd_write to stdout/stderr goes to this process's own
stdout/stderr, and --arg/--env populate what wasi_snapshot_preview1's args_get and environ_get
return. Neither defaults from this process's own os.Args or environment: pass them explicitly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModule(cmd, &wasiFeatures, wasiModulePath, wasiName, wasiStartFunctions, os.Stdout, os.Stderr, wasiArgs, &wasiEnv)
	},
}

func init() {
	wasiFeatures.register(wasiRunCmd.Flags())
	wasiRunCmd.Flags().StringVar(&wasiModulePath, "module", "", moduleFlagHelp)
	wasiRunCmd.Flags().StringVar(&wasiName, "name", "main", "name to instantiate the module under")
	wasiRunCmd.Flags().StringSliceVar(&wasiStartFunctions, "start", []string{"_start"}, "exported functions to call after instantiation, in order; missing names are skipped")
	wasiRunCmd.Flags().StringArrayVar(&wasiArgs, "arg", nil, "argv entry visible to args_get; repeatable")
	wasiRunCmd.Flags().VarP(&wasiEnv, "env", "e", "KEY=VALUE environment entry visible to environ_get; repeatable")
	_ = wasiRunCmd.MarkFlagRequired("module")
}
