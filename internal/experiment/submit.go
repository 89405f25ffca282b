package experiment

import (
	"context"
	"fmt"

	"github.com/harrison/gridlab/internal/display"
	"github.com/harrison/gridlab/internal/filelock"
	"github.com/harrison/gridlab/internal/grid"
	"github.com/harrison/gridlab/internal/models"
	"github.com/harrison/gridlab/internal/store"
)

// SubmitResult describes one submitted chain.
type SubmitResult struct {
	ChainID     string
	Submissions []models.Submission
	Warnings    []display.Warning
}

// Submit writes the job files of the named steps (all steps when names is
// empty) and submits them as a dependency chain. Only one chain per
// experiment is submitted at a time; a concurrent Submit fails with
// filelock.ErrLocked. When the scheduler rejects a job, the result holds
// the submissions accepted before it and the error is returned alongside.
func (e *Experiment) Submit(ctx context.Context, names []string) (*SubmitResult, error) {
	steps, err := e.Def.SelectSteps(names)
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{ChainID: store.NewChainID()}
	err = filelock.TryWithLock(e.Layout.SubmitLock(), func() error {
		return e.submitLocked(ctx, steps, result)
	})
	return result, err
}

func (e *Experiment) submitLocked(ctx context.Context, steps []models.StepDescriptor, result *SubmitResult) error {
	stepsDir := e.Layout.StepsDir()
	stale, err := display.FindJobFiles(stepsDir)
	if err != nil {
		return err
	}
	if len(stale) > 0 {
		result.Warnings = append(result.Warnings, display.WarnStaleJobFiles(stepsDir, stale))
	}

	set, err := e.WriteJobs(steps)
	if err != nil {
		return err
	}
	result.Warnings = append(result.Warnings, set.Warnings...)

	sl := &submitLogger{exp: e, chainID: result.ChainID}
	submitter := grid.NewSubmitter(e.opts.Runner, e.opts.SubmitBinary, sl)
	subs, submitErr := submitter.SubmitChain(ctx, set.Jobs)
	for i := range subs {
		subs[i].ChainID = result.ChainID
		subs[i].Experiment = e.Def.Name
	}
	result.Submissions = subs

	if len(subs) > 0 && e.opts.Ledger != nil {
		if _, err := e.opts.Ledger.RecordChain(ctx, subs); err != nil {
			e.log.LogWarn(fmt.Sprintf("failed to record chain %s: %v", result.ChainID, err))
		}
	}
	if submitErr != nil {
		return fmt.Errorf("submit %s: %w", e.Def.Name, submitErr)
	}
	return nil
}

// submitLogger completes submissions with chain metadata before logging.
type submitLogger struct {
	exp     *Experiment
	chainID string
}

func (l *submitLogger) LogDebug(message string) {
	l.exp.log.LogDebug(message)
}

func (l *submitLogger) LogSubmission(sub models.Submission) {
	sub.ChainID = l.chainID
	sub.Experiment = l.exp.Def.Name
	l.exp.log.LogSubmission(sub)
	if l.exp.opts.Progress != nil {
		l.exp.opts.Progress.Step(sub.JobName)
	}
}
