// Package parser extracts plan costs, timing attributes and coverage from
// the output of one planner run.
package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// PlansDirName is the directory, relative to a run directory, where the
// planner stores the plans it finds.
const PlansDirName = "found_plans"

// planFilePrefix is followed by a 1-based counter.
const planFilePrefix = "sas_plan."

// costPattern matches the cost annotation planners write as the final line
// of every plan file.
var costPattern = regexp.MustCompile(`^; cost = (\d+) \((unit cost|general cost)\)$`)

// CostStatus classifies a single plan file.
type CostStatus int

const (
	// CostFound means the final line carried a well-formed cost annotation.
	CostFound CostStatus = iota
	// CostMismatch means the final line did not match the annotation format.
	CostMismatch
	// CostUnreadable means the file existed but could not be read.
	CostUnreadable
)

// String returns the status name used in log output.
func (s CostStatus) String() string {
	switch s {
	case CostFound:
		return "found"
	case CostMismatch:
		return "mismatch"
	case CostUnreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// PlanCost is the outcome of reading one plan file.
type PlanCost struct {
	Index  int
	Path   string
	Status CostStatus
	Cost   int
	// Kind is "unit cost" or "general cost" when Status is CostFound.
	Kind string
	Err  error
}

// PlanFileName returns the name of the i-th plan file (1-based).
func PlanFileName(i int) string {
	return planFilePrefix + strconv.Itoa(i)
}

// ScanPlans walks sas_plan.1, sas_plan.2, ... in plansDir and stops at the
// first counter whose file cannot be found. Files whose final line is not a
// cost annotation, or that cannot be read, are reported and skipped without
// ending the scan.
func ScanPlans(plansDir string) []PlanCost {
	var results []PlanCost
	for i := 1; ; i++ {
		path := filepath.Join(plansDir, PlanFileName(i))
		// Any stat failure ends the scan; an unreadable directory would
		// otherwise never terminate.
		if _, err := os.Stat(path); err != nil {
			return results
		}
		results = append(results, readPlanCost(i, path))
	}
}

// ExtractCosts returns the costs of the plans in plansDir in counter order,
// omitting files without a valid annotation.
func ExtractCosts(plansDir string) []int {
	costs := []int{}
	for _, pc := range ScanPlans(plansDir) {
		if pc.Status == CostFound {
			costs = append(costs, pc.Cost)
		}
	}
	return costs
}

func readPlanCost(index int, path string) PlanCost {
	pc := PlanCost{Index: index, Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		pc.Status = CostUnreadable
		pc.Err = err
		return pc
	}

	m := costPattern.FindStringSubmatch(lastLine(string(data)))
	if m == nil {
		pc.Status = CostMismatch
		return pc
	}

	cost, err := strconv.Atoi(m[1])
	if err != nil {
		// digits too large for int
		pc.Status = CostMismatch
		pc.Err = fmt.Errorf("cost %q: %w", m[1], err)
		return pc
	}
	pc.Status = CostFound
	pc.Cost = cost
	pc.Kind = m[2]
	return pc
}

// lastLine returns the final line of content. A single trailing line
// terminator belongs to that line.
func lastLine(content string) string {
	content = strings.TrimSuffix(content, "\n")
	content = strings.TrimSuffix(content, "\r")
	if i := strings.LastIndexByte(content, '\n'); i >= 0 {
		return content[i+1:]
	}
	return content
}
