package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ProgressIndicator prints one line per submitted step job.
type ProgressIndicator struct {
	writer   io.Writer
	total    int
	current  int
	useColor bool
}

// NewProgressIndicator creates a new progress indicator
func NewProgressIndicator(w io.Writer, total int, useColor bool) *ProgressIndicator {
	return &ProgressIndicator{
		writer:   w,
		total:    total,
		useColor: useColor,
	}
}

func (p *ProgressIndicator) paint(attr color.Attribute, text string) string {
	if !p.useColor {
		return text
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(text)
}

// Start displays the header message
func (p *ProgressIndicator) Start(experiment string) {
	fmt.Fprintf(p.writer, "Submitting %s:\n", experiment)
}

// Step displays "  [N/Total] job-name".
func (p *ProgressIndicator) Step(jobName string) {
	p.current++
	fmt.Fprintln(p.writer, p.paint(color.FgCyan, fmt.Sprintf("  [%d/%d] %s", p.current, p.total, jobName)))
}

// Complete displays the success line.
func (p *ProgressIndicator) Complete() {
	fmt.Fprintf(p.writer, "%s Submitted %d jobs\n", p.paint(color.FgGreen, "✓"), p.current)
}

// Fail reports how many jobs were accepted before the chain broke.
func (p *ProgressIndicator) Fail(err error) {
	fmt.Fprintf(p.writer, "%s Submission stopped after %d of %d jobs: %v\n",
		p.paint(color.FgRed, "✗"), p.current, p.total, err)
}
