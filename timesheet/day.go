// Package timesheet turns the cell text of a portal month into per-day
// punch records.
package timesheet

import (
	"strings"

	"tangled.org/beats/clock"
)

const punchSeparator = ", "

// forgotMarkers flag an amendment made because someone forgot to punch. In
// that case the amendment row holds the authoritative value.
var forgotMarkers = []string{
	"forgetting to punch",
	"esquecimento",
}

// PunchSet holds a day's valid punches in the order the portal lists them:
// entry, lunch out, lunch in, exit.
type PunchSet []clock.TimeOfDay

// ParsePunches splits a comma-joined punch string. Tokens that are not a
// valid HH:mm are dropped.
func ParsePunches(raw string) PunchSet {
	if raw == "" {
		return PunchSet{}
	}

	punches := PunchSet{}
	for _, token := range strings.Split(raw, punchSeparator) {
		t := clock.Parse(strings.TrimSpace(token))
		if !t.Valid() {
			continue
		}
		punches = append(punches, t)
	}
	return punches
}

func (p PunchSet) Strings() []string {
	out := make([]string, len(p))
	for i, t := range p {
		out[i] = t.String()
	}
	return out
}

type PatchEntry struct {
	Time     string
	Category string
	Reason   string
}

func (e PatchEntry) IsZero() bool {
	return e == PatchEntry{}
}

func (e PatchEntry) forgotten() bool {
	text := strings.ToLower(e.Category + " " + e.Reason)
	for _, marker := range forgotMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// CorrectionPatch is an amendment HR applied to a day. It is only shown,
// never used in reconciliation.
type CorrectionPatch struct {
	Correct PatchEntry
	Wrong   PatchEntry
}

func (p CorrectionPatch) IsZero() bool {
	return p.Correct.IsZero() && p.Wrong.IsZero()
}

// RawDay is the already extracted text of a day row and its optional
// amendment row. Patch cells are time, category, reason.
type RawDay struct {
	Date    string
	Beats   string
	Total   string
	Correct []string
	Wrong   []string
}

type DayRecord struct {
	Date     string
	Punches  PunchSet
	BeatsRaw string
	Total    string
	Patch    CorrectionPatch
}

// Build turns a raw day into a record.
func Build(raw RawDay) DayRecord {
	return DayRecord{
		Date:     raw.Date,
		Punches:  ParsePunches(raw.Beats),
		BeatsRaw: raw.Beats,
		Total:    raw.Total,
		Patch:    buildPatch(raw.Correct, raw.Wrong),
	}
}

func buildPatch(correct, wrong []string) CorrectionPatch {
	if len(wrong) == 0 {
		return CorrectionPatch{}
	}

	patch := CorrectionPatch{
		Correct: entryFromCells(correct),
		Wrong:   entryFromCells(wrong),
	}
	if patch.Correct.forgotten() || patch.Wrong.forgotten() {
		patch.Correct, patch.Wrong = patch.Wrong, patch.Correct
	}
	return patch
}

func entryFromCells(cells []string) PatchEntry {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	return PatchEntry{
		Time:     cell(0),
		Category: cell(1),
		Reason:   cell(2),
	}
}
