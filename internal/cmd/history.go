package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <experiment>",
		Short: "Show submitted chains and parse results of an experiment",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistory,
	}

	cmd.Flags().Int("limit", 50, "Maximum number of submissions to show (0 = all)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, sessionOptions{ledger: true})
	if err != nil {
		return err
	}
	defer s.Close()

	name := args[0]
	limit, _ := cmd.Flags().GetInt("limit")
	out := cmd.OutOrStdout()

	subs, err := s.store.ListSubmissions(cmd.Context(), name, limit)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Fprintf(out, "No submissions recorded for %s\n", name)
		fmt.Fprintf(out, "Database path: %s\n", s.store.Path())
		return nil
	}

	bold := color.New(color.Bold)
	if useColor(out) {
		bold.EnableColor()
	} else {
		bold.DisableColor()
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, bold.Sprint("SUBMITTED\tCHAIN\tSTEP\tJOB\tID\tAFTER"))
	for _, sub := range subs {
		after := sub.Dependency
		if after == "" {
			after = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%02d-%s\t%s\t%s\t%s\n",
			sub.SubmittedAt.Local().Format("2006-01-02 15:04:05"),
			shortChain(sub.ChainID), sub.Position, sub.Step, sub.JobName, sub.SchedulerID, after)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	cov, err := s.store.Coverage(cmd.Context(), name)
	if err != nil {
		return err
	}
	if cov.Runs > 0 {
		fmt.Fprintf(out, "\nLast parse: %d of %d runs covered, %d plans\n", cov.Solved, cov.Runs, cov.Plans)
	}
	return nil
}

func shortChain(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
