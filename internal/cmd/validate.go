package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/gridlab/internal/experiment"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <experiment.yaml>",
		Short: "Validate an experiment definition",
		Long: `Load an experiment definition and check it without touching the cluster:
  - Required fields, limits and step names
  - The grid environment (preset, queue, priority, host restriction)
  - The benchmark suite resolves to tasks with domain files
  - Run ids are unique

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateExperiment(args[0], cmd.OutOrStdout())
		},
	}

	return cmd
}

// validateExperiment validates the definition at path and reports to output.
func validateExperiment(path string, output io.Writer) error {
	exp, err := experiment.Open(path, experiment.Options{})
	if err != nil {
		fmt.Fprintf(output, "Validation failed:\n  %s\n", strings.ReplaceAll(err.Error(), "\n", "\n  "))
		return fmt.Errorf("invalid experiment %s", path)
	}

	runs, err := exp.Runs()
	if err != nil {
		fmt.Fprintf(output, "Validation failed:\n  %v\n", err)
		return fmt.Errorf("invalid experiment %s", path)
	}

	fmt.Fprintf(output, "Experiment %s is valid\n", exp.Def.Name)
	fmt.Fprintf(output, "  Runs: %d (%d algorithms)\n", len(runs), len(exp.Def.Algorithms))
	fmt.Fprintf(output, "  Steps: %s\n", strings.Join(exp.Def.Steps, ", "))
	fmt.Fprintf(output, "  Queue: %s, priority %d\n", exp.Env.Queue, exp.Env.Priority)
	fmt.Fprintf(output, "  Directory: %s\n", exp.Layout.ExpDir())
	return nil
}
