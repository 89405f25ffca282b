package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for gridlab
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gridlab",
		Short: "Planner experiments on a Grid Engine cluster",
		Long: `gridlab builds planner experiments, submits their steps to a Grid Engine
cluster as a chain of dependent jobs and parses the planner output of every
run into properties files.

An experiment is described by a YAML file listing the benchmark suite, the
planner algorithms and the grid environment. Tool settings are loaded from
.gridlab/config.yaml if present; CLI flags override them.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .gridlab/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().String("log-dir", "", "Directory for log files")
	cmd.PersistentFlags().String("db", "", "Path of the submission ledger")

	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewSubmitCommand())
	cmd.AddCommand(NewStepCommand())
	cmd.AddCommand(NewParseCommand())
	cmd.AddCommand(NewCollectCommand())
	cmd.AddCommand(NewFixStaticCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
