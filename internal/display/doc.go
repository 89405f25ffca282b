// Package display holds the user-facing terminal output of the gridlab CLI:
// submission progress, warnings and job file listings.
//
// # Progress
//
//	progress := display.NewProgressIndicator(os.Stdout, len(jobs), color)
//	progress.Start("topq")
//	for _, job := range jobs {
//	    progress.Step(job.Name)
//	}
//	progress.Complete()
//
// # Warnings
//
//	display.Warning{
//	    Title:      "Notification suppressed",
//	    Message:    params.Warning,
//	    Suggestion: "Move the email to a later step",
//	}.Display(os.Stderr, color)
//
// All functions write to an io.Writer; callers decide whether colors are
// enabled.
package display
