package parser

import "github.com/harrison/gridlab/internal/models"

// DefaultK is the plan-count bound used when none is configured.
const DefaultK = 10000

// EvaluateCoverage returns 1 when the run finished (total_time recorded)
// without reaching the bound of k plans, and 0 otherwise.
func EvaluateCoverage(props models.RunProperties, k int) int {
	finished := props.Has(models.PropTotalTime)
	boundReached := len(props.PlanCosts()) >= k
	if finished && !boundReached {
		return 1
	}
	return 0
}
