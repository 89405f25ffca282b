package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/harrison/gridlab/internal/models"
)

// RunLogName is the planner's log inside a run directory.
const RunLogName = "run.log"

// ValueKind selects how a captured log value is converted.
type ValueKind int

const (
	KindFloat ValueKind = iota
	KindInt
)

// LogPattern extracts one property from the run log. The first match of the
// first capture group wins.
type LogPattern struct {
	Attribute string
	Regexp    *regexp.Regexp
	Kind      ValueKind
}

// DefaultLogPatterns are the planner timing and memory lines.
var DefaultLogPatterns = []LogPattern{
	{Attribute: models.PropSearchTime, Regexp: regexp.MustCompile(`Search time: (.+)s`), Kind: KindFloat},
	{Attribute: models.PropTotalTime, Regexp: regexp.MustCompile(`Total time: (.+)s`), Kind: KindFloat},
	{Attribute: models.PropRawMemory, Regexp: regexp.MustCompile(`Peak memory: (\d+) KB`), Kind: KindInt},
}

// ApplyLogPatterns records every pattern that matches content into props.
// Patterns that do not match, or whose value does not convert, leave props
// unchanged. It returns the attributes that were set.
func ApplyLogPatterns(content string, patterns []LogPattern, props models.RunProperties) []string {
	var set []string
	for _, p := range patterns {
		m := p.Regexp.FindStringSubmatch(content)
		if len(m) < 2 {
			continue
		}
		raw := strings.TrimSpace(m[1])
		switch p.Kind {
		case KindFloat:
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			props[p.Attribute] = v
		case KindInt:
			v, err := strconv.Atoi(raw)
			if err != nil {
				continue
			}
			props[p.Attribute] = v
		}
		set = append(set, p.Attribute)
	}
	return set
}
