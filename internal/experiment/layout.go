package experiment

import (
	"fmt"
	"path/filepath"
)

// runsPerGroup is the number of run directories per runs-XXXXX-YYYYY group.
const runsPerGroup = 100

// Layout locates the directories of one experiment.
type Layout struct {
	Root string // Parent directory
	Name string // Experiment name
}

// ExpDir holds the run directories and the dispatcher.
func (l Layout) ExpDir() string {
	return filepath.Join(l.Root, l.Name)
}

// EvalDir holds fetched properties and reports.
func (l Layout) EvalDir() string {
	return filepath.Join(l.Root, l.Name+"-eval")
}

// StepsDir holds the generated job files and the submit lock.
func (l Layout) StepsDir() string {
	return filepath.Join(l.Root, l.Name+"-grid-steps")
}

// SubmitLock is held while a chain is being submitted.
func (l Layout) SubmitLock() string {
	return filepath.Join(l.StepsDir(), "submit.lock")
}

// JobFile is the job file name of the step at position.
func (l Layout) JobFile(position int, step string) string {
	return fmt.Sprintf("%02d-%s.job", position, step)
}

// RunDirName returns the directory of the n-th run (1-based) relative to
// ExpDir, e.g. runs-00101-00200/00123.
func RunDirName(n int) string {
	first := (n-1)/runsPerGroup*runsPerGroup + 1
	return filepath.Join(
		fmt.Sprintf("runs-%05d-%05d", first, first+runsPerGroup-1),
		fmt.Sprintf("%05d", n),
	)
}
