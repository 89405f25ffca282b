package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/gridlab/internal/models"
)

// colorRole names a slot in the color scheme.
type colorRole int

const (
	roleSuccess colorRole = iota
	roleFail
	roleLabel
	roleValue
)

// colorScheme holds the colors shared by the console formatters.
// A nil scheme formats plain text.
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	label   *color.Color
	value   *color.Color
}

func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		label:   color.New(color.FgCyan),
		value:   color.New(color.Bold),
	}
}

func (s *colorScheme) sprint(role colorRole, text string) string {
	if s == nil {
		return text
	}
	switch role {
	case roleSuccess:
		return s.success.Sprint(text)
	case roleFail:
		return s.fail.Sprint(text)
	case roleLabel:
		return s.label.Sprint(text)
	case roleValue:
		return s.value.Sprint(text)
	}
	return text
}

func colorLevel(level string) string {
	switch strings.ToUpper(level) {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

// formatSubmission renders "submitted <job> (step N: name, id X) after <dep>".
func formatSubmission(sub models.Submission, scheme *colorScheme) string {
	var b strings.Builder
	fmt.Fprintf(&b, "submitted %s", scheme.sprint(roleValue, sub.JobName))

	var details []string
	if sub.Step != "" {
		details = append(details, fmt.Sprintf("step %d: %s", sub.Position, sub.Step))
	}
	if sub.SchedulerID != "" {
		details = append(details, "id "+sub.SchedulerID)
	}
	if len(details) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
	}
	if sub.Dependency != "" {
		fmt.Fprintf(&b, " after %s", scheme.sprint(roleLabel, sub.Dependency))
	}
	return b.String()
}

// formatParseSummary renders "parsed <dir>: coverage C, N plans[, M without cost]".
func formatParseSummary(dir string, coverage, numPlans, misses int, scheme *colorScheme) string {
	covText := fmt.Sprintf("coverage %d", coverage)
	if coverage == 1 {
		covText = scheme.sprint(roleSuccess, covText)
	} else {
		covText = scheme.sprint(roleFail, covText)
	}
	msg := fmt.Sprintf("parsed %s: %s, %d plans", dir, covText, numPlans)
	if misses > 0 {
		msg += fmt.Sprintf(", %d without cost", misses)
	}
	return msg
}
