package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/gridlab/internal/parser"
)

// NewParseCommand creates the parse command executed at the end of every run.
func NewParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [--k N] <run-dir>...",
		Short: "Parse planner output into run properties",
		Long: `Parse the planner output of one or more run directories. For each run the
timing and memory lines of run.log, the costs of found_plans/sas_plan.N and
the coverage are written to the run's properties file.

A run is covered when it reports a total time and found fewer than k plans.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}

	cmd.Flags().Int("k", 0, "Plan-count bound for coverage (0 = use config default_k)")
	cmd.Flags().Int("concurrency", 0, "Run directories parsed at once (0 = use config)")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	k, _ := cmd.Flags().GetInt("k")
	if k < 0 {
		return fmt.Errorf("--k must be positive, got %d", k)
	}
	if k == 0 {
		k = s.cfg.DefaultK
	}

	for _, dir := range args {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("not a run directory: %s", dir)
		}
	}

	results, err := parser.ParseRuns(cmd.Context(), args, k, s.cfg.ParseConcurrency, s.log)
	if err != nil && results == nil {
		return err
	}

	covered := 0
	for _, r := range results {
		covered += r.Coverage
	}
	if len(results) > 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "Parsed %d runs, %d covered\n", len(results), covered)
	}
	return err
}
