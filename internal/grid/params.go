package grid

import (
	"github.com/harrison/gridlab/internal/models"
)

// runStepMailWarning explains why a run step never triggers the final mail.
const runStepMailWarning = "The cluster sends mails per run, not per step. " +
	"Since the last of the submitted steps would send too many mails, notification is disabled. " +
	"Submit the run step together with the fetch step to be notified once."

// BuildJobParameters derives the submission parameters of one step.
// Only an unknown host restriction key fails; the function has no side effects.
func BuildJobParameters(env EnvironmentConfig, step models.StepDescriptor, isLast bool) (models.JobParameters, error) {
	hostSpec, err := ResolveHostSpec(env.HostRestrictions, env.HostRestriction)
	if err != nil {
		return models.JobParameters{}, err
	}

	params := models.JobParameters{
		Queue:        env.Queue,
		Priority:     env.Priority,
		HostSpec:     hostSpec,
		Notification: models.Notification{Mode: models.NotifyNone},
		ErrFile:      models.ErrFileName,
	}

	if isLast && env.Email != "" {
		if step.IsRun {
			params.Warning = runStepMailWarning
		} else {
			params.Notification = models.Notification{Mode: models.NotifyEnd, Email: env.Email}
		}
	}

	return params, nil
}
