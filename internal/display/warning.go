package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display writes the warning to out, in yellow when useColor is set.
func (w Warning) Display(out io.Writer, useColor bool) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		if len(w.Files) == 1 {
			b.WriteString("    Affected file:\n")
		} else {
			b.WriteString("    Affected files:\n")
		}
		for i, file := range w.Files {
			fmt.Fprintf(&b, "      %d. %s\n", i+1, file)
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	if useColor {
		c := color.New(color.FgYellow)
		c.EnableColor()
		fmt.Fprint(out, c.Sprint(b.String()))
		return
	}
	fmt.Fprint(out, b.String())
}

// WarnStaleJobFiles warns that job files from an earlier submission in dir
// will be overwritten.
func WarnStaleJobFiles(dir string, files []string) Warning {
	return Warning{
		Title:      "Existing job files will be overwritten",
		Message:    dir,
		Files:      files,
		Suggestion: "Check that no earlier chain of this experiment is still queued",
	}
}
