package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateFeatures featureFlags
var validateModulePath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a module fixture against a set of enabled proposals",
	RunE: func(cmd *cobra.Command, args []string) error {
		mod, err := loadModule(validateModulePath)
		if err != nil {
			return err
		}

		rt := newRuntime(&validateFeatures)
		if _, err := rt.CompileModule(mod); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	validateFeatures.register(validateCmd.Flags())
	validateCmd.Flags().StringVar(&validateModulePath, "module", "", moduleFlagHelp)
	_ = validateCmd.MarkFlagRequired("module")
}
