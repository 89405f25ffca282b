package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRunProperties_DecodedShapes(t *testing.T) {
	var props RunProperties
	data := []byte(`{"total_time": 0.33, "num_plans": 2, "plan_costs": [5, 7]}`)
	if err := json.Unmarshal(data, &props); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !props.Has(PropTotalTime) {
		t.Error("expected total_time to be present")
	}
	if props.Has(PropSearchTime) {
		t.Error("search_time should be absent")
	}
	if n, ok := props.Int(PropNumPlans); !ok || n != 2 {
		t.Errorf("expected num_plans 2, got %d (ok=%v)", n, ok)
	}
	if got := props.PlanCosts(); !reflect.DeepEqual(got, []int{5, 7}) {
		t.Errorf("expected plan costs [5 7], got %v", got)
	}
}

func TestRunProperties_Merge(t *testing.T) {
	props := RunProperties{"a": 1, "b": 2}
	props.Merge(RunProperties{"b": 3, "c": 4})

	want := RunProperties{"a": 1, "b": 3, "c": 4}
	if !reflect.DeepEqual(props, want) {
		t.Errorf("merge result %v, want %v", props, want)
	}
}

func TestRunProperties_FloatMissing(t *testing.T) {
	props := RunProperties{"name": "x"}
	if _, ok := props.Float("name"); ok {
		t.Error("string value must not convert to float")
	}
	if _, ok := props.Float("missing"); ok {
		t.Error("missing key must not convert to float")
	}
}
