// Package suite resolves benchmark suite entries into planning tasks.
package suite

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Task is one domain/problem pair of a benchmark suite.
type Task struct {
	Domain      string
	Problem     string
	DomainFile  string
	ProblemFile string
}

// Provider turns suite entries into tasks. Entries are either a domain
// ("gripper"), selecting every problem of that domain, or a single problem
// ("gripper:prob01.pddl").
type Provider interface {
	Tasks(benchmarksDir string, entries []string) ([]Task, error)
}

// FSProvider reads benchmarks laid out as <dir>/<domain>/<problem>.pddl.
type FSProvider struct{}

var _ Provider = FSProvider{}

// Tasks resolves entries in order. Duplicate entries are rejected so that
// runs stay unique.
func (FSProvider) Tasks(benchmarksDir string, entries []string) ([]Task, error) {
	if benchmarksDir == "" {
		return nil, errors.New("benchmarks directory not set")
	}

	var tasks []Task
	seen := make(map[string]bool)
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		domain, problem, single := strings.Cut(entry, ":")
		var problems []string
		if single {
			if problem == "" {
				return nil, fmt.Errorf("suite entry %q: empty problem", entry)
			}
			problems = []string{problem}
		} else {
			var err error
			problems, err = listProblems(filepath.Join(benchmarksDir, domain))
			if err != nil {
				return nil, fmt.Errorf("suite entry %q: %w", entry, err)
			}
		}

		for _, p := range problems {
			key := domain + ":" + p
			if seen[key] {
				return nil, fmt.Errorf("suite entry %q: task %s listed twice", entry, key)
			}
			seen[key] = true

			task, err := resolveTask(benchmarksDir, domain, p)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// listProblems returns the sorted problem files of a domain directory,
// skipping domain files.
func listProblems(domainDir string) ([]string, error) {
	entries, err := os.ReadDir(domainDir)
	if err != nil {
		return nil, err
	}
	var problems []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".pddl") || strings.Contains(name, "domain") {
			continue
		}
		problems = append(problems, name)
	}
	if len(problems) == 0 {
		return nil, fmt.Errorf("no problems in %s", domainDir)
	}
	sort.Strings(problems)
	return problems, nil
}

func resolveTask(benchmarksDir, domain, problem string) (Task, error) {
	domainDir := filepath.Join(benchmarksDir, domain)
	problemFile := filepath.Join(domainDir, problem)
	if _, err := os.Stat(problemFile); err != nil {
		return Task{}, fmt.Errorf("problem %s:%s: %w", domain, problem, err)
	}

	domainFile, err := findDomainFile(domainDir, problem)
	if err != nil {
		return Task{}, fmt.Errorf("problem %s:%s: %w", domain, problem, err)
	}

	return Task{
		Domain:      domain,
		Problem:     problem,
		DomainFile:  domainFile,
		ProblemFile: problemFile,
	}, nil
}

// DomainFileCandidates lists the domain file names tried for problem, in
// order of preference.
func DomainFileCandidates(problem string) []string {
	ext := filepath.Ext(problem)
	root := strings.TrimSuffix(problem, ext)
	candidates := []string{
		"domain.pddl",
		root + "-domain" + ext,
	}
	if len(problem) >= 3 {
		candidates = append(candidates, problem[:3]+"-domain.pddl")
	}
	return append(candidates, "domain_"+problem, "domain-"+problem)
}

func findDomainFile(domainDir, problem string) (string, error) {
	for _, name := range DomainFileCandidates(problem) {
		path := filepath.Join(domainDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("no domain file in %s", domainDir)
}
