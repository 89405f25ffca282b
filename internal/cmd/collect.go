package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/gridlab/internal/properties"
)

// NewCollectCommand creates the collect command
func NewCollectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect <experiment-dir>",
		Short: "Merge the properties of all runs",
		Long: `Merge the properties of every run directory with its static properties
into one JSON file keyed by run id. Static properties win on conflicts.
Runs without a properties file are listed and skipped.

The default output is <experiment-dir>-eval/properties.`,
		Args: cobra.ExactArgs(1),
		RunE: runCollect,
	}

	cmd.Flags().StringP("output", "o", "", "Output file")

	return cmd
}

func runCollect(cmd *cobra.Command, args []string) error {
	expDir := filepath.Clean(args[0])
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = filepath.Join(expDir+"-eval", properties.FileName)
	}

	result, err := properties.Collect(expDir)
	if err != nil {
		return err
	}
	if err := properties.WriteCollected(output, result); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Collected %d runs into %s\n", len(result.Runs), output)
	if len(result.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped %d runs without properties:\n", len(result.Skipped))
		for _, dir := range result.Skipped {
			fmt.Fprintf(out, "  %s\n", dir)
		}
	}
	return nil
}

// NewFixStaticCommand creates the fix-static command
func NewFixStaticCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix-static <experiment-dir>",
		Short: "Make run ids of merged experiments distinct",
		Long: `Rewrite the static properties of every run so that runs of experiments
that used the same algorithm names can be merged: the value of --append-key
is appended to each run id and --algorithm-prefix is prepended to the
algorithm. The result is written to static-properties2 next to the original.`,
		Args: cobra.ExactArgs(1),
		RunE: runFixStatic,
	}

	cmd.Flags().String("append-key", "", "Property whose value is appended to the run id")
	cmd.Flags().String("algorithm-prefix", "", "Prefix for the algorithm name")
	cmd.MarkFlagRequired("append-key")

	return cmd
}

func runFixStatic(cmd *cobra.Command, args []string) error {
	appendKey, _ := cmd.Flags().GetString("append-key")
	prefix, _ := cmd.Flags().GetString("algorithm-prefix")

	n, err := properties.FixStatic(args[0], appendKey, prefix)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Fixed %d runs\n", n)
	return nil
}
