package experiment

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harrison/gridlab/internal/grid"
	"github.com/harrison/gridlab/internal/logger"
	"github.com/harrison/gridlab/internal/models"
	"github.com/harrison/gridlab/internal/parser"
	"github.com/harrison/gridlab/internal/properties"
	"github.com/harrison/gridlab/internal/store"
)

// ErrNotBuilt is returned by steps that need run directories before build ran.
var ErrNotBuilt = errors.New("experiment has no run directories")

const progressWidth = 30

// RunStep executes one step of the pipeline in the current process. This is
// what step jobs run on the cluster.
func (e *Experiment) RunStep(ctx context.Context, name string) error {
	if _, err := e.Def.SelectSteps([]string{name}); err != nil {
		return err
	}
	e.log.LogInfo(fmt.Sprintf("running step %s of %s", name, e.Def.Name))

	switch name {
	case models.StepBuild:
		_, err := e.Build()
		return err
	case models.StepStart:
		return e.StartLocal(ctx)
	case models.StepFetch:
		_, err := e.Fetch()
		return err
	case models.StepParseAgain:
		_, err := e.ParseAgain(ctx)
		return err
	case models.StepReport:
		_, err := e.Report()
		return err
	}
	return fmt.Errorf("unknown step %q", name)
}

func (e *Experiment) runDirs() ([]string, error) {
	dirs, err := properties.RunDirs(e.Layout.ExpDir())
	if err != nil {
		return nil, err
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%s: %w", e.Layout.ExpDir(), ErrNotBuilt)
	}
	return dirs, nil
}

// StartLocal executes every dispatcher task on this machine, at most
// LocalProcesses at a time. A failing run is reported but does not stop the
// others; only a failure to launch the dispatcher is an error.
func (e *Experiment) StartLocal(ctx context.Context) error {
	dirs, err := e.runDirs()
	if err != nil {
		return err
	}

	bar := logger.NewProgressBar(len(dirs), progressWidth)
	bar.SetPrefix("runs ")

	expDir := e.Layout.ExpDir()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.LocalProcesses)
	for i := 1; i <= len(dirs); i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, stderr, exitCode, err := e.opts.Runner.Run(gctx, expDir, "./"+grid.DispatcherName, []string{strconv.Itoa(i)})
			if err != nil {
				return fmt.Errorf("task %d: %w", i, err)
			}
			if exitCode != 0 {
				e.log.LogWarn(fmt.Sprintf("task %d exited with code %d: %s", i, exitCode, stderr))
			}
			bar.Increment()
			e.log.LogProgress(bar)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Fetch merges the properties of all runs into the evaluation directory.
func (e *Experiment) Fetch() (*properties.CollectResult, error) {
	result, err := properties.Collect(e.Layout.ExpDir())
	if err != nil {
		return nil, err
	}
	if len(result.Skipped) > 0 {
		e.log.LogWarn(fmt.Sprintf("%d runs have no properties file and were skipped", len(result.Skipped)))
		for _, dir := range result.Skipped {
			e.log.LogDebug("no properties: " + dir)
		}
	}

	path := filepath.Join(e.Layout.EvalDir(), properties.FileName)
	if err := properties.WriteCollected(path, result); err != nil {
		return nil, err
	}
	e.log.LogInfo(fmt.Sprintf("fetched %d runs into %s", len(result.Runs), path))
	return result, nil
}

// ParseAgain reparses every run directory and records the results in the
// ledger when one is configured. Runs that parsed are recorded even when
// others failed; the failures are returned alongside them.
func (e *Experiment) ParseAgain(ctx context.Context) ([]*parser.RunResult, error) {
	dirs, err := e.runDirs()
	if err != nil {
		return nil, err
	}
	results, parseErr := parser.ParseRuns(ctx, dirs, e.K(), e.opts.ParseConcurrency, e.log)
	if parseErr != nil && results == nil {
		return nil, parseErr
	}

	if e.opts.Ledger != nil && len(results) > 0 {
		rows := e.ledgerRows(results, time.Now())
		if err := e.opts.Ledger.RecordRunResults(ctx, rows); err != nil {
			e.log.LogWarn(fmt.Sprintf("failed to record parse results: %v", err))
		}
	}
	return results, parseErr
}

func (e *Experiment) ledgerRows(results []*parser.RunResult, now time.Time) []store.RunResult {
	rows := make([]store.RunResult, 0, len(results))
	for _, res := range results {
		rel, err := filepath.Rel(e.Layout.ExpDir(), res.Dir)
		if err != nil {
			rel = res.Dir
		}
		id := properties.RunKey(res.Properties)
		if id == "" {
			if static, err := properties.Load(filepath.Join(res.Dir, properties.StaticFileName)); err == nil {
				id = properties.RunKey(static)
			}
		}
		row := store.RunResult{
			Experiment: e.Def.Name,
			RunDir:     rel,
			RunID:      id,
			Coverage:   res.Coverage,
			NumPlans:   len(res.PlanCosts),
			ParsedAt:   now,
		}
		if len(res.PlanCosts) > 0 {
			best := slices.Min(res.PlanCosts)
			row.BestCost = &best
		}
		rows = append(rows, row)
	}
	return rows
}
