package experiment

import (
	"fmt"
	"strings"

	"github.com/harrison/gridlab/internal/models"
	"github.com/harrison/gridlab/internal/suite"
)

// Names of the task resources linked into every run directory.
const (
	DomainLink  = "domain.pddl"
	ProblemLink = "problem.pddl"
)

// BuildRuns expands the suite and the algorithms into run records, one per
// algorithm and task. Every run is identified by [algorithm, domain,
// problem]; a definition producing the same id twice is rejected.
func BuildRuns(def *Definition, provider suite.Provider) ([]models.RunRecord, error) {
	tasks, err := provider.Tasks(def.BenchmarksDir, def.Suite)
	if err != nil {
		return nil, fmt.Errorf("resolve suite: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("suite of %s is empty", def.Name)
	}

	runs := make([]models.RunRecord, 0, len(tasks)*len(def.Algorithms))
	for _, alg := range def.Algorithms {
		for _, task := range tasks {
			run := models.RunRecord{
				Domain:      task.Domain,
				Problem:     task.Problem,
				Algorithm:   alg.Name,
				Parameters:  alg.Properties,
				ID:          []string{alg.Name, task.Domain, task.Problem},
				Command:     plannerCommand(def.Planner, alg.Args),
				TimeLimit:   def.TimeLimit,
				MemoryLimit: def.MemoryLimit,
				DomainFile:  task.DomainFile,
				ProblemFile: task.ProblemFile,
				Dir:         RunDirName(len(runs) + 1),
			}
			if err := run.Validate(); err != nil {
				return nil, err
			}
			runs = append(runs, run)
		}
	}

	if err := models.CheckUniqueIDs(runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// plannerCommand substitutes the linked task files into the arguments.
func plannerCommand(planner string, args []string) []string {
	r := strings.NewReplacer(DomainPlaceholder, DomainLink, ProblemPlaceholder, ProblemLink)
	cmd := make([]string, 0, len(args)+1)
	cmd = append(cmd, planner)
	for _, a := range args {
		cmd = append(cmd, r.Replace(a))
	}
	return cmd
}
