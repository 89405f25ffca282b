package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/gridlab/internal/display"
	"github.com/harrison/gridlab/internal/experiment"
)

// NewSubmitCommand creates the submit command
func NewSubmitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <experiment.yaml> [step...]",
		Short: "Submit experiment steps to the grid",
		Long: `Write one job file per step into <dir>/<name>-grid-steps/ and submit them
with qsub as a chain: every job holds until its predecessor has finished.
Without step names the whole pipeline is submitted.

Examples:
  gridlab submit exp.yaml                  # build, start, fetch, parse-again, report
  gridlab submit exp.yaml start fetch      # rerun the planner and fetch
  gridlab submit --dry-run exp.yaml        # only write the job files`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSubmit,
	}

	cmd.Flags().Bool("dry-run", false, "Write job files without submitting them")

	return cmd
}

func runSubmit(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	s, err := openSession(cmd, sessionOptions{fileLog: true, ledger: !dryRun})
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	colored := useColor(out)

	def, err := experiment.Load(args[0])
	if err != nil {
		return err
	}
	stepNames := args[1:]
	steps, err := def.SelectSteps(stepNames)
	if err != nil {
		return err
	}

	opts := s.options()
	progress := display.NewProgressIndicator(out, len(steps), colored)
	if !dryRun {
		opts.Progress = progress
	}
	exp, err := experiment.New(def, args[0], opts)
	if err != nil {
		return err
	}

	if dryRun {
		set, err := exp.WriteJobs(steps)
		if err != nil {
			return err
		}
		for _, w := range set.Warnings {
			w.Display(out, colored)
		}
		fmt.Fprintf(out, "Wrote %d job files to %s\n", len(set.Jobs), exp.Layout.StepsDir())
		return nil
	}

	progress.Start(exp.Def.Name)
	result, err := exp.Submit(cmd.Context(), stepNames)
	if result != nil {
		for _, w := range result.Warnings {
			w.Display(out, colored)
		}
	}
	if err != nil {
		progress.Fail(err)
		return err
	}
	progress.Complete()
	fmt.Fprintf(out, "Chain %s\n", result.ChainID)
	return nil
}
