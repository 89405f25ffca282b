package experiment

import (
	"fmt"
	"path/filepath"

	"github.com/harrison/gridlab/internal/filelock"
	"github.com/harrison/gridlab/internal/models"
	"github.com/harrison/gridlab/internal/properties"
)

// reportKeys are copied into every report row besides the attributes.
var reportKeys = []string{"domain", "problem", "algorithm"}

// Report is the attribute projection written by the report step.
type Report struct {
	Experiment string                          `json:"experiment"`
	Date       string                          `json:"date"`
	Attributes []string                        `json:"attributes"`
	Runs       map[string]models.RunProperties `json:"runs"`
}

// ReportPath is where the report step writes its output.
func (e *Experiment) ReportPath() string {
	return filepath.Join(e.Layout.EvalDir(), fmt.Sprintf("%s-%s.json", e.Def.Name, e.Def.Date))
}

// BuildReport projects the fetched properties onto the configured
// attributes. Attributes a run does not have are left out of its row.
func BuildReport(def *Definition, runs map[string]models.RunProperties) *Report {
	report := &Report{
		Experiment: def.Name,
		Date:       def.Date,
		Attributes: def.Attributes,
		Runs:       make(map[string]models.RunProperties, len(runs)),
	}
	for key, props := range runs {
		row := make(models.RunProperties, len(reportKeys)+len(def.Attributes))
		for _, k := range append(append([]string(nil), reportKeys...), def.Attributes...) {
			if v, ok := props[k]; ok {
				row[k] = v
			}
		}
		report.Runs[key] = row
	}
	return report
}

// Report reads the fetched properties and writes the report.
func (e *Experiment) Report() (string, error) {
	runs, err := properties.LoadCollected(filepath.Join(e.Layout.EvalDir(), properties.FileName))
	if err != nil {
		return "", fmt.Errorf("report needs fetched properties: %w", err)
	}

	data, err := properties.Encode(BuildReport(e.Def, runs))
	if err != nil {
		return "", err
	}
	path := e.ReportPath()
	if err := filelock.AtomicWrite(path, data, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	e.log.LogInfo(fmt.Sprintf("wrote report of %d runs to %s", len(runs), path))
	return path, nil
}
