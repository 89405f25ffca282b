package models

import "time"

// Scheduler directives used in generated job files.
const (
	// HostSpecUnrestricted is the host spec placeholder when no restriction applies.
	HostSpecUnrestricted = "## (not used)"

	// ErrFileName is the error file shared by all step jobs.
	ErrFileName = "driver.err"
)

// NotificationMode controls scheduler mail for a job.
type NotificationMode string

const (
	NotifyNone NotificationMode = "none"
	NotifyEnd  NotificationMode = "end"
)

// Notification is the mail policy attached to one step job.
type Notification struct {
	Mode  NotificationMode
	Email string
}

// Directive renders the notification as Grid Engine header lines.
func (n Notification) Directive() string {
	if n.Mode == NotifyEnd && n.Email != "" {
		return "#$ -M " + n.Email + "\n#$ -m e"
	}
	return "#$ -m n"
}

// JobParameters are the step-scoped values substituted into a job file.
type JobParameters struct {
	Queue        string
	Priority     int
	HostSpec     string
	Notification Notification
	ErrFile      string
	Warning      string // Non-empty when the builder suppressed a requested notification
}

// Submission records one accepted scheduler submission.
type Submission struct {
	ChainID     string    // Shared by every step submitted in one invocation
	Experiment  string    // Experiment name
	Step        string    // Step name
	Position    int       // Step position in the chain
	JobName     string    // Identifier returned to the next chain link
	JobFile     string    // Submitted job file
	SchedulerID string    // Numeric id reported by the scheduler, if any
	Dependency  string    // Identifier of the predecessor job, empty for the first
	SubmittedAt time.Time // When the scheduler accepted the job
}
