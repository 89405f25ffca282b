package experiment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/gridlab/internal/grid"
	"github.com/harrison/gridlab/internal/logger"
	"github.com/harrison/gridlab/internal/models"
	"github.com/harrison/gridlab/internal/parser"
	"github.com/harrison/gridlab/internal/store"
	"github.com/harrison/gridlab/internal/suite"
)

// Logger is the logging surface used by experiment operations.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogSubmission(sub models.Submission)
	LogParseSummary(dir string, coverage, numPlans, misses int)
	LogProgress(bar *logger.ProgressBar)
}

// Ledger records submissions and parse results.
type Ledger interface {
	RecordChain(ctx context.Context, subs []models.Submission) (string, error)
	RecordRunResults(ctx context.Context, results []store.RunResult) error
}

// SubmitObserver is told about every accepted job, in chain order.
type SubmitObserver interface {
	Step(jobName string)
}

// Options wires an Experiment to its collaborators. Zero values select the
// production defaults.
type Options struct {
	Provider         suite.Provider
	Runner           grid.CommandRunner
	SubmitBinary     string
	Binary           string // gridlab executable referenced by job files and run scripts
	Logger           Logger
	Ledger           Ledger
	Progress         SubmitObserver
	DefaultK         int
	ParseConcurrency int
	LocalProcesses   int
}

// Experiment is a validated definition bound to its on-disk layout.
type Experiment struct {
	Def     *Definition
	DefPath string
	Layout  Layout
	Env     grid.EnvironmentConfig

	opts Options
	log  Logger
}

// New validates def and resolves its grid environment. defPath is the
// definition file, referenced by step jobs.
func New(def *Definition, defPath string, opts Options) (*Experiment, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("experiment %s: %w", def.Name, err)
	}
	env, err := def.EnvironmentConfig()
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(defPath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", defPath, err)
	}

	if opts.Provider == nil {
		opts.Provider = suite.FSProvider{}
	}
	if opts.Runner == nil {
		opts.Runner = grid.ExecRunner{}
	}
	if opts.Binary == "" {
		if exe, err := os.Executable(); err == nil {
			opts.Binary = exe
		} else {
			opts.Binary = "gridlab"
		}
	}
	if opts.DefaultK <= 0 {
		opts.DefaultK = parser.DefaultK
	}
	if opts.ParseConcurrency < 1 {
		opts.ParseConcurrency = 1
	}
	if opts.LocalProcesses < 1 {
		opts.LocalProcesses = 1
	}

	log := opts.Logger
	if log == nil {
		log = nopLogger{}
	}

	return &Experiment{
		Def:     def,
		DefPath: absPath,
		Layout:  Layout{Root: def.Dir, Name: def.Name},
		Env:     env,
		opts:    opts,
		log:     log,
	}, nil
}

// Open loads and validates the definition at path.
func Open(path string, opts Options) (*Experiment, error) {
	def, err := Load(path)
	if err != nil {
		return nil, err
	}
	return New(def, path, opts)
}

// K returns the plan-count bound used for coverage.
func (e *Experiment) K() int {
	if e.Def.K > 0 {
		return e.Def.K
	}
	return e.opts.DefaultK
}

// Runs resolves the suite into run records.
func (e *Experiment) Runs() ([]models.RunRecord, error) {
	return BuildRuns(e.Def, e.opts.Provider)
}

type nopLogger struct{}

func (nopLogger) LogDebug(string)                      {}
func (nopLogger) LogInfo(string)                       {}
func (nopLogger) LogWarn(string)                       {}
func (nopLogger) LogSubmission(models.Submission)      {}
func (nopLogger) LogParseSummary(string, int, int, int) {}
func (nopLogger) LogProgress(*logger.ProgressBar)      {}
