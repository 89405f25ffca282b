package grid

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/harrison/gridlab/internal/models"
)

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args []string) (stdout string, stderr string, exitCode int, err error)
}

// ExecRunner implements CommandRunner with os/exec.
type ExecRunner struct{}

// Run executes name with args in dir. A non-zero exit is reported through
// exitCode, not err; err is set only when the process could not run.
func (ExecRunner) Run(ctx context.Context, dir string, name string, args []string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdoutBuf.String(), stderrBuf.String(), exitErr.ExitCode(), nil
		}
		return stdoutBuf.String(), stderrBuf.String(), -1, fmt.Errorf("exec %s: %w", name, err)
	}
	return stdoutBuf.String(), stderrBuf.String(), 0, nil
}

// Logger receives submission events.
type Logger interface {
	LogDebug(message string)
	LogSubmission(sub models.Submission)
}

// Job is one chain link handed to SubmitChain.
type Job struct {
	Step models.StepDescriptor
	Name string
	File string
	Dir  string
}

// Submitter submits step jobs with qsub.
type Submitter struct {
	runner CommandRunner
	binary string
	logger Logger
	now    func() time.Time
}

// DefaultSubmitBinary is the scheduler submission command.
const DefaultSubmitBinary = "qsub"

// NewSubmitter creates a Submitter. An empty binary selects qsub; logger may be nil.
func NewSubmitter(runner CommandRunner, binary string, logger Logger) *Submitter {
	if binary == "" {
		binary = DefaultSubmitBinary
	}
	return &Submitter{
		runner: runner,
		binary: binary,
		logger: logger,
		now:    time.Now,
	}
}

// schedulerIDPattern matches "Your job 123 (...)" and "Your job-array 123.1-5:1 (...)".
var schedulerIDPattern = regexp.MustCompile(`Your job(?:-array)? (\d+)`)

// Submit hands jobFile to the scheduler, holding it until dependency
// completes when dependency is non-empty. It returns once the scheduler has
// accepted the job. The returned Submission's JobName is the identifier to
// pass as the next job's dependency.
func (s *Submitter) Submit(ctx context.Context, jobName, jobFile, jobDir, dependency string) (models.Submission, error) {
	args := make([]string, 0, 3)
	if dependency != "" {
		args = append(args, "-hold_jid", dependency)
	}
	args = append(args, jobFile)

	if s.logger != nil {
		s.logger.LogDebug(fmt.Sprintf("%s %s (cwd %s)", s.binary, strings.Join(args, " "), jobDir))
	}

	stdout, stderr, exitCode, err := s.runner.Run(ctx, jobDir, s.binary, args)
	if err != nil {
		return models.Submission{}, &SubmissionError{JobName: jobName, ExitCode: -1, Err: err}
	}
	if exitCode != 0 {
		return models.Submission{}, &SubmissionError{
			JobName:  jobName,
			ExitCode: exitCode,
			Output:   strings.TrimSpace(stderr + "\n" + stdout),
		}
	}

	sub := models.Submission{
		JobName:     jobName,
		JobFile:     jobFile,
		Dependency:  dependency,
		SubmittedAt: s.now(),
	}
	if m := schedulerIDPattern.FindStringSubmatch(stdout); m != nil {
		sub.SchedulerID = m[1]
	}
	return sub, nil
}

// SubmitChain submits jobs in order, each holding on its predecessor. It
// stops at the first failure and returns the submissions accepted so far.
func (s *Submitter) SubmitChain(ctx context.Context, jobs []Job) ([]models.Submission, error) {
	submissions := make([]models.Submission, 0, len(jobs))
	dependency := ""
	for _, job := range jobs {
		sub, err := s.Submit(ctx, job.Name, job.File, job.Dir, dependency)
		if err != nil {
			return submissions, fmt.Errorf("step %s: %w", job.Step.Name, err)
		}
		sub.Step = job.Step.Name
		sub.Position = job.Step.Position
		if s.logger != nil {
			s.logger.LogSubmission(sub)
		}
		submissions = append(submissions, sub)
		dependency = sub.JobName
	}
	return submissions, nil
}
