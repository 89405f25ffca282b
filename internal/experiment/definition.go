// Package experiment turns an experiment definition into run directories,
// grid job files and a submitted step chain, and executes individual steps
// when a step job runs on the cluster.
package experiment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/gridlab/internal/grid"
	"github.com/harrison/gridlab/internal/models"
)

// Placeholders substituted in algorithm arguments.
const (
	DomainPlaceholder  = "{domain}"
	ProblemPlaceholder = "{problem}"
)

// Algorithm is one planner configuration compared in the experiment.
type Algorithm struct {
	Name       string                 `yaml:"name"`
	Args       []string               `yaml:"args"`
	Properties map[string]interface{} `yaml:"properties"`
}

// EnvironmentSpec selects a cluster preset and overrides its settings.
type EnvironmentSpec struct {
	Preset           string              `yaml:"preset"`
	Queue            *string             `yaml:"queue"`
	Priority         *int                `yaml:"priority"`
	HostRestriction  *string             `yaml:"host_restriction"`
	HostRestrictions map[string][]string `yaml:"host_restrictions"`
	Email            string              `yaml:"email"`
}

// Definition is the parsed experiment file.
type Definition struct {
	Name               string
	Date               string
	Dir                string // Parent directory of the experiment directories
	BenchmarksDir      string
	Suite              []string
	Planner            string
	Algorithms         []Algorithm
	TimeLimit          time.Duration
	MemoryLimit        int // MiB
	K                  int // 0 selects the configured default
	Attributes         []string
	Steps              []string
	RandomizeTaskOrder bool
	Seed               uint64
	Environment        EnvironmentSpec
}

// DefaultAttributes are reported when the definition lists none.
var DefaultAttributes = []string{
	models.PropCoverage,
	models.PropNumPlans,
	models.PropPlanCosts,
	models.PropTotalTime,
}

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)

// Load reads an experiment file. Path fields may reference environment
// variables as ${VAR}; an unset variable is an error. A relative dir is
// resolved against the file's directory, which is also the default.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment file: %w", err)
	}

	// Use a temporary struct to handle duration parsing
	type yamlExperiment struct {
		Name               string      `yaml:"name"`
		Date               string      `yaml:"date"`
		Dir                string      `yaml:"dir"`
		BenchmarksDir      string      `yaml:"benchmarks_dir"`
		Suite              []string    `yaml:"suite"`
		Planner            string      `yaml:"planner"`
		Algorithms         []Algorithm `yaml:"algorithms"`
		TimeLimit          string      `yaml:"time_limit"`
		MemoryLimit        int         `yaml:"memory_limit"`
		K                  int         `yaml:"k"`
		Attributes         []string    `yaml:"attributes"`
		Steps              []string    `yaml:"steps"`
		RandomizeTaskOrder bool        `yaml:"randomize_task_order"`
		Seed               uint64      `yaml:"seed"`
	}
	var doc struct {
		Experiment  yamlExperiment  `yaml:"experiment"`
		Environment EnvironmentSpec `yaml:"environment"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse experiment file: %w", err)
	}

	y := doc.Experiment
	def := &Definition{
		Name:               y.Name,
		Date:               y.Date,
		Suite:              y.Suite,
		Algorithms:         y.Algorithms,
		MemoryLimit:        y.MemoryLimit,
		K:                  y.K,
		Attributes:         y.Attributes,
		Steps:              y.Steps,
		RandomizeTaskOrder: y.RandomizeTaskOrder,
		Seed:               y.Seed,
		Environment:        doc.Environment,
	}

	if y.TimeLimit != "" {
		d, err := parseLimit(y.TimeLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid time_limit %q: %w", y.TimeLimit, err)
		}
		def.TimeLimit = d
	}

	for field, target := range map[string]*string{
		"dir":            &y.Dir,
		"benchmarks_dir": &y.BenchmarksDir,
		"planner":        &y.Planner,
	} {
		expanded, err := expandEnv(*target)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		*target = expanded
	}
	def.BenchmarksDir = y.BenchmarksDir
	def.Planner = y.Planner

	base := filepath.Dir(path)
	switch {
	case y.Dir == "":
		def.Dir = base
	case filepath.IsAbs(y.Dir):
		def.Dir = y.Dir
	default:
		def.Dir = filepath.Join(base, y.Dir)
	}
	if abs, err := filepath.Abs(def.Dir); err == nil {
		def.Dir = abs
	}
	if def.BenchmarksDir != "" && !filepath.IsAbs(def.BenchmarksDir) {
		def.BenchmarksDir = filepath.Join(base, def.BenchmarksDir)
	}

	if def.Date == "" {
		def.Date = time.Now().Format("2006-01-02")
	}
	if len(def.Steps) == 0 {
		for _, s := range models.DefaultSteps() {
			def.Steps = append(def.Steps, s.Name)
		}
	}
	if len(def.Attributes) == 0 {
		def.Attributes = append([]string(nil), DefaultAttributes...)
	}

	return def, nil
}

// parseLimit accepts a Go duration ("29m") or a plain number of seconds.
func parseLimit(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

func expandEnv(s string) (string, error) {
	var missing []string
	out := os.Expand(s, func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok {
			missing = append(missing, key)
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("environment variable %s is not set", strings.Join(missing, ", "))
	}
	return out, nil
}

// Validate checks the definition without touching the file system.
func (d *Definition) Validate() error {
	var errs []error
	if !namePattern.MatchString(d.Name) {
		errs = append(errs, fmt.Errorf("name %q must start with a letter and contain only letters, digits, '.', '_' or '-'", d.Name))
	}
	if d.BenchmarksDir == "" {
		errs = append(errs, errors.New("benchmarks_dir is required"))
	}
	if len(d.Suite) == 0 {
		errs = append(errs, errors.New("suite must list at least one domain or problem"))
	}
	if d.Planner == "" {
		errs = append(errs, errors.New("planner is required"))
	}
	if len(d.Algorithms) == 0 {
		errs = append(errs, errors.New("at least one algorithm is required"))
	}
	seen := make(map[string]bool)
	for i, a := range d.Algorithms {
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("algorithm %d: name is required", i+1))
			continue
		}
		if seen[a.Name] {
			errs = append(errs, fmt.Errorf("algorithm %q listed twice", a.Name))
		}
		seen[a.Name] = true
	}
	if d.TimeLimit <= 0 {
		errs = append(errs, errors.New("time_limit must be positive"))
	}
	if d.MemoryLimit <= 0 {
		errs = append(errs, errors.New("memory_limit must be positive"))
	}
	if d.K < 0 {
		errs = append(errs, fmt.Errorf("k must be positive, got %d", d.K))
	}
	if err := validateSteps(d.Steps); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

var knownSteps = map[string]bool{
	models.StepBuild:      true,
	models.StepStart:      true,
	models.StepFetch:      true,
	models.StepParseAgain: true,
	models.StepReport:     true,
}

func validateSteps(steps []string) error {
	seen := make(map[string]bool)
	for _, s := range steps {
		if !knownSteps[s] {
			return fmt.Errorf("unknown step %q", s)
		}
		if seen[s] {
			return fmt.Errorf("step %q listed twice", s)
		}
		seen[s] = true
	}
	return nil
}

// EnvironmentConfig resolves the grid environment of the definition.
func (d *Definition) EnvironmentConfig() (grid.EnvironmentConfig, error) {
	return grid.NewEnvironmentConfig(d.Environment.Preset, grid.Overrides{
		Queue:            d.Environment.Queue,
		Priority:         d.Environment.Priority,
		HostRestriction:  d.Environment.HostRestriction,
		HostRestrictions: d.Environment.HostRestrictions,
		Email:            d.Environment.Email,
	})
}

// SelectSteps returns the descriptors of the named steps, numbered by their
// position in the full step list. An empty selection returns every step.
func (d *Definition) SelectSteps(names []string) ([]models.StepDescriptor, error) {
	all := models.NewSteps(d.Steps)
	if len(names) == 0 {
		return all, nil
	}
	if err := validateSteps(names); err != nil {
		return nil, err
	}

	byName := make(map[string]models.StepDescriptor, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}
	selected := make([]models.StepDescriptor, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("step %q is not part of experiment %s", name, d.Name)
		}
		selected = append(selected, s)
	}
	for i := 1; i < len(selected); i++ {
		if selected[i].Position < selected[i-1].Position {
			return nil, fmt.Errorf("step %q must come after %q", selected[i-1].Name, selected[i].Name)
		}
	}
	return selected, nil
}
