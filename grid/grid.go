// Package grid renders a fetched month as one line per punched day.
package grid

import (
	"fmt"
	"strings"

	"tangled.org/beats/reconcile"
	"tangled.org/beats/timesheet"
)

const predictionIndent = "    > "

// Build renders the month in the portal's row order. Days without punches
// are skipped; verbose appends the engine's predictions under each day.
func Build(month *timesheet.Month, engine *reconcile.Engine, verbose bool) string {
	var lines []string
	for _, r := range month.Records() {
		if len(r.Punches) == 0 {
			continue
		}
		lines = append(lines, Line(r))
		if verbose {
			lines = append(lines, predictions(engine, r)...)
		}
	}

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Line is the summary of a single day. An amendment is shown only when
// both of its sides carry a time.
func Line(r timesheet.DayRecord) string {
	line := fmt.Sprintf("%s - %s (%s)", r.Date, r.BeatsRaw, r.Total)
	if r.Patch.Wrong.Time != "" && r.Patch.Correct.Time != "" {
		line += fmt.Sprintf(" (%s -> %s)", r.Patch.Wrong.Time, r.Patch.Correct.Time)
	}
	return line
}

func predictions(engine *reconcile.Engine, r timesheet.DayRecord) []string {
	preds := engine.Reconcile(r.Punches, reconcile.ModeFull)
	out := make([]string, len(preds))
	for i, p := range preds {
		out[i] = predictionIndent + p.Line
	}
	return out
}
