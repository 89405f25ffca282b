package grid

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"text/template"
)

// DispatcherName is the file name of the generated dispatch script.
const DispatcherName = "run-dispatcher"

// DispatcherScript is a rendered dispatch script ready to be written to the
// experiment root.
type DispatcherScript struct {
	Name    string
	Content string
	Mode    os.FileMode
}

var dispatcherTemplate = template.Must(template.New(DispatcherName).Funcs(template.FuncMap{
	"quote": ShellQuote,
}).Parse(`#!/bin/bash
# Maps a grid array-job task index to the run directory it executes.
set -eu

TASK_ORDER=(
{{- range .TaskOrder}}
  {{quote .}}
{{- end}}
)

if [ "$#" -ne 1 ]; then
  echo "usage: $0 <task-index>" >&2
  exit 2
fi

INDEX="$1"
case "$INDEX" in
  ''|*[!0-9]*) echo "task index must be a positive integer: $INDEX" >&2; exit 2 ;;
esac
if [ "$INDEX" -lt 1 ] || [ "$INDEX" -gt "${#TASK_ORDER[@]}" ]; then
  echo "task index $INDEX out of range 1-${#TASK_ORDER[@]}" >&2
  exit 2
fi

cd "$(dirname "$0")/${TASK_ORDER[$((INDEX - 1))]}"
exec ./run
`))

// GenerateDispatcher renders the dispatch script for the given task order.
// Entry i (0-based) is executed for grid task index i+1.
func GenerateDispatcher(taskOrder []string) (DispatcherScript, error) {
	var b strings.Builder
	if err := dispatcherTemplate.Execute(&b, struct{ TaskOrder []string }{taskOrder}); err != nil {
		return DispatcherScript{}, fmt.Errorf("render %s: %w", DispatcherName, err)
	}
	return DispatcherScript{
		Name:    DispatcherName,
		Content: b.String(),
		Mode:    0o755,
	}, nil
}

// TaskOrder returns the order in which array tasks execute the given run
// directories. With randomize set the order is a seeded permutation so that
// slow domains are spread across the array.
func TaskOrder(runDirs []string, randomize bool, seed uint64) []string {
	order := append([]string(nil), runDirs...)
	if !randomize {
		return order
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}
