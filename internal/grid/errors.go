package grid

import (
	"errors"
	"fmt"
)

// Configuration error causes. They are fatal and never retried.
var (
	ErrMissingQueue           = errors.New("queue is required")
	ErrInvalidPriority        = errors.New("priority out of range")
	ErrUnknownHostRestriction = errors.New("unknown host restriction")
	ErrUnknownPreset          = errors.New("unknown environment preset")
)

// ConfigError reports an invalid grid environment setting.
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("grid config %s=%v: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SubmissionError reports a job the scheduler did not accept. The chain of
// dependent steps cannot continue past it.
type SubmissionError struct {
	JobName  string
	ExitCode int
	Output   string
	Err      error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submit job %s: %v", e.JobName, e.Err)
	}
	return fmt.Sprintf("submit job %s: exit code %d: %s", e.JobName, e.ExitCode, e.Output)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
