package models

import "encoding/json"

// Property keys written by the output parser.
const (
	PropSearchTime = "search_time"
	PropTotalTime  = "total_time"
	PropRawMemory  = "raw_memory"
	PropPlanCosts  = "plan_costs"
	PropNumPlans   = "num_plans"
	PropCoverage   = "coverage"
)

// RunProperties is the mutable key/value record of one run. Values follow
// JSON decoding rules: numbers read from disk are float64.
type RunProperties map[string]interface{}

// Has reports whether key was recorded.
func (p RunProperties) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Float returns a numeric property as float64.
func (p RunProperties) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Int returns a numeric property truncated to int.
func (p RunProperties) Int(key string) (int, bool) {
	f, ok := p.Float(key)
	return int(f), ok
}

// PlanCosts returns the extracted plan costs, accepting both []int and the
// []interface{} shape produced by decoding a properties file.
func (p RunProperties) PlanCosts() []int {
	switch v := p[PropPlanCosts].(type) {
	case []int:
		return v
	case []interface{}:
		costs := make([]int, 0, len(v))
		for _, item := range v {
			if f, ok := item.(float64); ok {
				costs = append(costs, int(f))
			}
		}
		return costs
	}
	return nil
}

// Merge copies every key of other into p, overwriting existing values.
func (p RunProperties) Merge(other RunProperties) {
	for k, v := range other {
		p[k] = v
	}
}
