package models

import "testing"

func TestNotification_Directive(t *testing.T) {
	tests := []struct {
		name string
		n    Notification
		want string
	}{
		{name: "default is no mail", n: Notification{}, want: "#$ -m n"},
		{name: "explicit none with email", n: Notification{Mode: NotifyNone, Email: "a@b.c"}, want: "#$ -m n"},
		{name: "end without email stays silent", n: Notification{Mode: NotifyEnd}, want: "#$ -m n"},
		{name: "end with email", n: Notification{Mode: NotifyEnd, Email: "a@b.c"}, want: "#$ -M a@b.c\n#$ -m e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.Directive(); got != tt.want {
				t.Errorf("Directive() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultSteps(t *testing.T) {
	steps := DefaultSteps()
	want := []string{StepBuild, StepStart, StepFetch, StepParseAgain, StepReport}
	if len(steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(steps))
	}
	for i, step := range steps {
		if step.Name != want[i] {
			t.Errorf("step %d: expected %q, got %q", i, want[i], step.Name)
		}
		if step.Position != i+1 {
			t.Errorf("step %s: expected position %d, got %d", step.Name, i+1, step.Position)
		}
		if step.IsRun != (step.Name == StepStart) {
			t.Errorf("step %s: unexpected IsRun=%v", step.Name, step.IsRun)
		}
	}
}
