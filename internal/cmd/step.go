package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/gridlab/internal/experiment"
)

// NewStepCommand creates the step command run by step jobs.
func NewStepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step <step> <experiment.yaml>",
		Short: "Run one experiment step in this process",
		Long: `Run a single step of the experiment pipeline locally. Submitted step jobs
call this command on the cluster; it can also be used to run an experiment
without a grid:

  gridlab step build exp.yaml
  gridlab step start exp.yaml        # runs local_processes planner runs at a time
  gridlab step fetch exp.yaml
  gridlab step parse-again exp.yaml
  gridlab step report exp.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: runStep,
	}

	return cmd
}

func runStep(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, sessionOptions{fileLog: true, ledger: true})
	if err != nil {
		return err
	}
	defer s.Close()

	exp, err := experiment.Open(args[1], s.options())
	if err != nil {
		return err
	}
	return exp.RunStep(cmd.Context(), args[0])
}
