// Package models holds the data shared by the grid, parser and experiment
// packages.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RunRecord describes one planner invocation against one domain/problem pair
// under one algorithm configuration.
type RunRecord struct {
	Domain      string                 // Benchmark domain name
	Problem     string                 // Problem file name within the domain
	Algorithm   string                 // Algorithm label used in reports
	Parameters  map[string]interface{} // Caller-supplied parameters (e.g. quality bound q)
	ID          []string               // Unique id path across the experiment
	Command     []string               // Planner command line, placeholders resolved
	TimeLimit   time.Duration          // Wall-clock limit declared to the cluster
	MemoryLimit int                    // Memory limit in MiB
	DomainFile  string                 // Absolute path of the domain file
	ProblemFile string                 // Absolute path of the problem file
	Dir         string                 // Run directory relative to the experiment root
}

// Validate checks that the run has everything needed to be written to disk.
func (r *RunRecord) Validate() error {
	if len(r.ID) == 0 {
		return errors.New("run id is required")
	}
	for _, part := range r.ID {
		if part == "" {
			return fmt.Errorf("run %s: id contains an empty component", r.Key())
		}
	}
	if len(r.Command) == 0 {
		return fmt.Errorf("run %s: command is required", r.Key())
	}
	if r.TimeLimit <= 0 {
		return fmt.Errorf("run %s: time limit must be positive", r.Key())
	}
	if r.MemoryLimit <= 0 {
		return fmt.Errorf("run %s: memory limit must be positive", r.Key())
	}
	return nil
}

// Key joins the id path into the string used to index merged properties.
func (r *RunRecord) Key() string {
	return strings.Join(r.ID, "-")
}

// StaticProperties returns the properties known before the run executes.
func (r *RunRecord) StaticProperties() RunProperties {
	props := RunProperties{
		"domain":       r.Domain,
		"problem":      r.Problem,
		"algorithm":    r.Algorithm,
		"domain_file":  r.DomainFile,
		"problem_file": r.ProblemFile,
		"id":           append([]string(nil), r.ID...),
		"time_limit":   int(r.TimeLimit.Seconds()),
		"memory_limit": r.MemoryLimit,
	}
	for k, v := range r.Parameters {
		props[k] = v
	}
	return props
}

// CheckUniqueIDs returns an error naming the first id path shared by two runs.
func CheckUniqueIDs(runs []RunRecord) error {
	seen := make(map[string]int, len(runs))
	for i := range runs {
		key := strings.Join(runs[i].ID, "\x00")
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("runs %d and %d share id %v", prev+1, i+1, runs[i].ID)
		}
		seen[key] = i
	}
	return nil
}
