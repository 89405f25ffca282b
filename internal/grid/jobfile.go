package grid

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/harrison/gridlab/internal/models"
)

// JobFileSpec holds everything needed to render one step job file.
type JobFileSpec struct {
	Name     string
	LogFile  string
	Params   models.JobParameters
	WorkDir  string
	NumTasks int           // Array size; 0 for a single job
	Runtime  time.Duration // Per-task runtime limit (array jobs only)
	Memory   int           // Per-task memory limit in MiB (array jobs only)
	Command  string        // Shell line executed from WorkDir
}

var jobTemplate = template.Must(template.New("job").Funcs(template.FuncMap{
	"quote":   ShellQuote,
	"runtime": formatRuntime,
}).Parse(`#!/bin/bash -l
### Job name.
#$ -N {{.Name}}
### Output and error files.
#$ -o {{.LogFile}}
#$ -e {{.Params.ErrFile}}
### Queue and priority.
#$ -q {{.Params.Queue}}
#$ -p {{.Params.Priority}}
### Host restriction.
{{.Params.HostSpec}}
### Notification.
{{.Params.Notification.Directive}}
{{- if gt .NumTasks 0}}
### Array job, one task per run.
#$ -t 1-{{.NumTasks}}
#$ -l h_rt={{runtime .Runtime}},h_vmem={{.Memory}}M
{{- end}}
#$ -cwd

cd {{quote .WorkDir}}
{{.Command}}
`))

// RenderJobFile renders a Grid Engine job script.
func RenderJobFile(spec JobFileSpec) (string, error) {
	if spec.Name == "" {
		return "", errors.New("job name is required")
	}
	if strings.TrimSpace(spec.Command) == "" {
		return "", fmt.Errorf("job %s: command is required", spec.Name)
	}
	if spec.NumTasks > 0 && (spec.Runtime <= 0 || spec.Memory <= 0) {
		return "", fmt.Errorf("job %s: array jobs need runtime and memory limits", spec.Name)
	}

	var b strings.Builder
	if err := jobTemplate.Execute(&b, spec); err != nil {
		return "", fmt.Errorf("render job %s: %w", spec.Name, err)
	}
	return b.String(), nil
}

// JobName builds the scheduler job name of a step.
func JobName(experiment string, step models.StepDescriptor) string {
	return fmt.Sprintf("%s-%02d-%s", experiment, step.Position, step.Name)
}

// formatRuntime renders a duration as H:MM:SS, rounding up to whole seconds.
func formatRuntime(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}
