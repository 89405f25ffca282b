package parser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/harrison/gridlab/internal/models"
	"github.com/harrison/gridlab/internal/properties"
)

// Logger is the subset of the gridlab logger the parser reports through.
type Logger interface {
	LogDebug(message string)
	LogParseSummary(dir string, coverage, numPlans, misses int)
}

// RunResult summarizes the properties written for one run directory.
type RunResult struct {
	Dir        string
	Coverage   int
	PlanCosts  []int
	Plans      []PlanCost
	Properties models.RunProperties
}

// Misses returns the plan files that produced no cost.
func (r *RunResult) Misses() []PlanCost {
	var misses []PlanCost
	for _, p := range r.Plans {
		if p.Status != CostFound {
			misses = append(misses, p)
		}
	}
	return misses
}

// ParseRun updates the properties file of the run in dir: it applies the log
// patterns to run.log, extracts plan costs from found_plans and evaluates
// coverage against the bound k. Existing properties are preserved unless
// overwritten. A missing run.log is not an error; the run simply has no
// timing attributes and therefore no coverage.
func ParseRun(dir string, k int) (*RunResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("plan bound k must be positive, got %d", k)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("run directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("run directory %s is not a directory", dir)
	}

	propsPath := filepath.Join(dir, properties.FileName)
	props, err := properties.Load(propsPath)
	if err != nil {
		return nil, err
	}

	logData, err := os.ReadFile(filepath.Join(dir, RunLogName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", RunLogName, err)
	}
	ApplyLogPatterns(string(logData), DefaultLogPatterns, props)

	plans := ScanPlans(filepath.Join(dir, PlansDirName))
	costs := []int{}
	for _, p := range plans {
		if p.Status == CostFound {
			costs = append(costs, p.Cost)
		}
	}
	props[models.PropPlanCosts] = costs
	props[models.PropNumPlans] = len(costs)

	coverage := EvaluateCoverage(props, k)
	props[models.PropCoverage] = coverage

	if err := properties.Save(propsPath, props); err != nil {
		return nil, err
	}

	return &RunResult{
		Dir:        dir,
		Coverage:   coverage,
		PlanCosts:  costs,
		Plans:      plans,
		Properties: props,
	}, nil
}

// ParseRuns parses dirs with at most concurrency runs in flight. A failing
// run does not stop the others: the successful results are returned in the
// order of dirs together with the joined per-run errors.
func ParseRuns(ctx context.Context, dirs []string, k, concurrency int, logger Logger) ([]*RunResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	parsed := make([]*RunResult, len(dirs))
	errs := make([]error, len(dirs))
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, dir := range dirs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res, err := ParseRun(dir, k)
			if err != nil {
				errs[i] = fmt.Errorf("parse %s: %w", dir, err)
				return nil
			}
			if logger != nil {
				for _, miss := range res.Misses() {
					logger.LogDebug(fmt.Sprintf("%s: no cost (%s)", miss.Path, miss.Status))
				}
				logger.LogParseSummary(dir, res.Coverage, len(res.PlanCosts), len(res.Plans)-len(res.PlanCosts))
			}
			parsed[i] = res
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]*RunResult, 0, len(dirs))
	for _, res := range parsed {
		if res != nil {
			results = append(results, res)
		}
	}
	return results, errors.Join(errs...)
}
