package models

// Step names used by the default experiment pipeline.
const (
	StepBuild      = "build"
	StepStart      = "start"
	StepFetch      = "fetch"
	StepParseAgain = "parse-again"
	StepReport     = "report"
)

// StepDescriptor is one phase of the experiment pipeline.
type StepDescriptor struct {
	Name     string // Step name (e.g. "build", "start", "fetch")
	IsRun    bool   // True for the step that executes the planner runs
	Position int    // 1-based position in the ordered step list
}

// DefaultSteps returns the pipeline build → start → fetch → parse-again → report.
func DefaultSteps() []StepDescriptor {
	return NewSteps([]string{StepBuild, StepStart, StepFetch, StepParseAgain, StepReport})
}

// NewSteps numbers the given step names in order. The "start" step is the run phase.
func NewSteps(names []string) []StepDescriptor {
	steps := make([]StepDescriptor, 0, len(names))
	for i, name := range names {
		steps = append(steps, StepDescriptor{
			Name:     name,
			IsRun:    name == StepStart,
			Position: i + 1,
		})
	}
	return steps
}
