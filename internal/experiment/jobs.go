package experiment

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/gridlab/internal/display"
	"github.com/harrison/gridlab/internal/filelock"
	"github.com/harrison/gridlab/internal/grid"
	"github.com/harrison/gridlab/internal/models"
)

// Resources requested on top of the planner limits: the run script also
// parses the outputs once the planner exits.
const (
	runtimeMargin = 5 * time.Minute
	memoryMargin  = 512 // MiB
)

// RunStepCommand executes one array task from the experiment directory.
const RunStepCommand = `./` + grid.DispatcherName + ` "$SGE_TASK_ID"`

// JobSet is the rendered chain for a step selection.
type JobSet struct {
	Jobs     []grid.Job
	Warnings []display.Warning
}

// WriteJobs renders and writes one job file per step into the steps
// directory. The last step is the one that may notify by mail.
func (e *Experiment) WriteJobs(steps []models.StepDescriptor) (*JobSet, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("experiment %s: no steps selected", e.Def.Name)
	}

	numRuns := 0
	for _, s := range steps {
		if s.IsRun {
			runs, err := e.Runs()
			if err != nil {
				return nil, err
			}
			numRuns = len(runs)
			break
		}
	}

	stepsDir := e.Layout.StepsDir()
	set := &JobSet{Jobs: make([]grid.Job, 0, len(steps))}
	for i, step := range steps {
		params, err := grid.BuildJobParameters(e.Env, step, i == len(steps)-1)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", step.Name, err)
		}
		if params.Warning != "" {
			set.Warnings = append(set.Warnings, display.Warning{
				Title:   fmt.Sprintf("No mail for step %s", step.Name),
				Message: params.Warning,
			})
		}

		fileName := e.Layout.JobFile(step.Position, step.Name)
		spec := grid.JobFileSpec{
			Name:    grid.JobName(e.Def.Name, step),
			LogFile: strings.TrimSuffix(fileName, display.JobFileExt) + ".log",
			Params:  params,
			WorkDir: e.Def.Dir,
			Command: grid.ShellJoin([]string{e.opts.Binary, "step", step.Name, e.DefPath}),
		}
		if step.IsRun {
			spec.WorkDir = e.Layout.ExpDir()
			spec.NumTasks = numRuns
			spec.Runtime = e.Def.TimeLimit + runtimeMargin
			spec.Memory = e.Def.MemoryLimit + memoryMargin
			spec.Command = RunStepCommand
		}

		content, err := grid.RenderJobFile(spec)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(stepsDir, fileName)
		if err := filelock.AtomicWrite(path, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("write job file: %w", err)
		}
		e.log.LogDebug(fmt.Sprintf("wrote %s", path))

		set.Jobs = append(set.Jobs, grid.Job{
			Step: step,
			Name: spec.Name,
			File: fileName,
			Dir:  stepsDir,
		})
	}
	return set, nil
}
