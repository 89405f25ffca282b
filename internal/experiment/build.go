package experiment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/harrison/gridlab/internal/filelock"
	"github.com/harrison/gridlab/internal/grid"
	"github.com/harrison/gridlab/internal/models"
	"github.com/harrison/gridlab/internal/parser"
	"github.com/harrison/gridlab/internal/properties"
)

// RunScriptName is the executable written into every run directory.
const RunScriptName = "run"

// ErrExperimentExists is returned when the experiment directory is not empty.
var ErrExperimentExists = errors.New("experiment directory already exists")

var runScriptTemplate = template.Must(template.New(RunScriptName).Funcs(template.FuncMap{
	"quote": grid.ShellQuote,
}).Parse(`#!/bin/bash
# {{.Key}}
cd "$(dirname "$0")"

(
  ulimit -v {{.MemoryKiB}}
  exec timeout {{.Seconds}} {{.Command}}
) > {{.RunLog}} 2> run.err
status=$?

{{quote .Binary}} parse --k {{.K}} . 2>> run.err
exit "$status"
`))

type runScriptData struct {
	Key       string
	MemoryKiB int
	Seconds   int
	Command   string
	RunLog    string
	Binary    string
	K         int
}

// RenderRunScript returns the run script of run.
func (e *Experiment) RenderRunScript(run models.RunRecord) (string, error) {
	var b strings.Builder
	err := runScriptTemplate.Execute(&b, runScriptData{
		Key:       run.Key(),
		MemoryKiB: run.MemoryLimit * 1024,
		Seconds:   int(run.TimeLimit.Seconds()),
		Command:   grid.ShellJoin(run.Command),
		RunLog:    parser.RunLogName,
		Binary:    e.opts.Binary,
		K:         e.K(),
	})
	if err != nil {
		return "", fmt.Errorf("render run script for %s: %w", run.Key(), err)
	}
	return b.String(), nil
}

// Build writes the experiment directory: one directory per run holding
// its static properties, run script and task links, plus the dispatcher
// mapping array task indices to run directories. It refuses to touch an
// existing non-empty experiment directory and returns the number of runs.
func (e *Experiment) Build() (int, error) {
	runs, err := e.Runs()
	if err != nil {
		return 0, err
	}

	expDir := e.Layout.ExpDir()
	if entries, err := os.ReadDir(expDir); err == nil && len(entries) > 0 {
		return 0, fmt.Errorf("%s: %w", expDir, ErrExperimentExists)
	}

	dirs := make([]string, 0, len(runs))
	for _, run := range runs {
		if err := e.writeRun(expDir, run); err != nil {
			return 0, err
		}
		dirs = append(dirs, run.Dir)
	}

	script, err := grid.GenerateDispatcher(grid.TaskOrder(dirs, e.Def.RandomizeTaskOrder, e.Def.Seed))
	if err != nil {
		return 0, err
	}
	if err := filelock.AtomicWrite(filepath.Join(expDir, script.Name), []byte(script.Content), script.Mode); err != nil {
		return 0, fmt.Errorf("write %s: %w", script.Name, err)
	}

	e.log.LogInfo(fmt.Sprintf("built %d runs in %s", len(runs), expDir))
	return len(runs), nil
}

func (e *Experiment) writeRun(expDir string, run models.RunRecord) error {
	dir := filepath.Join(expDir, run.Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}

	static, err := properties.Encode(run.StaticProperties())
	if err != nil {
		return err
	}
	if err := filelock.AtomicWrite(filepath.Join(dir, properties.StaticFileName), static, 0644); err != nil {
		return fmt.Errorf("run %s: %w", run.Key(), err)
	}

	script, err := e.RenderRunScript(run)
	if err != nil {
		return err
	}
	if err := filelock.AtomicWrite(filepath.Join(dir, RunScriptName), []byte(script), 0755); err != nil {
		return fmt.Errorf("run %s: %w", run.Key(), err)
	}

	for link, target := range map[string]string{
		DomainLink:  run.DomainFile,
		ProblemLink: run.ProblemFile,
	} {
		if err := os.Symlink(target, filepath.Join(dir, link)); err != nil {
			return fmt.Errorf("run %s: link %s: %w", run.Key(), link, err)
		}
	}

	e.log.LogDebug(fmt.Sprintf("wrote %s (%s)", run.Dir, run.Key()))
	return nil
}
