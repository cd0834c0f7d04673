// Package reconcile predicts missing punches and corrects days that ran
// over or under the configured work day.
//
// All arithmetic is field-wise (see clock.Offset): hours and minutes are
// subtracted independently and only normalized when a time of day is
// produced.
package reconcile

import (
	"fmt"
	"strings"

	"tangled.org/beats/clock"
	"tangled.org/beats/timesheet"
)

type Config struct {
	WorkDay      clock.Offset
	LunchAt      string
	LunchMinutes int
	Tolerance    int
}

type Mode int

const (
	// ModeToday predicts the next punch of a day still in progress.
	ModeToday Mode = iota
	// ModeFull predicts both ends of a three-punch day, for past days.
	ModeFull
)

type Kind int

const (
	KindReturn Kind = iota
	KindExit
	KindEntry
	KindCorrection
)

func (k Kind) String() string {
	switch k {
	case KindReturn:
		return "return"
	case KindExit:
		return "exit"
	case KindEntry:
		return "entry"
	case KindCorrection:
		return "correction"
	default:
		return "unknown"
	}
}

type Prediction struct {
	Kind Kind
	At   clock.TimeOfDay
	Line string
}

func (p Prediction) String() string {
	return p.Line
}

type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Reconcile dispatches on the number of valid punches. It never fails;
// inputs it cannot reason about produce no predictions.
func (e *Engine) Reconcile(punches timesheet.PunchSet, mode Mode) []Prediction {
	punches = valid(punches)

	switch len(punches) {
	case 2:
		if mode != ModeToday {
			return nil
		}
		return []Prediction{e.lunchReturn(punches)}
	case 3:
		if mode == ModeToday {
			return []Prediction{e.leaveAt(punches)}
		}
		return []Prediction{e.missingExit(punches), e.missingEntry(punches)}
	case 4:
		if p, ok := e.correction(punches); ok {
			return []Prediction{p}
		}
		return nil
	default:
		return nil
	}
}

// Worked is the field-wise sum of the morning and afternoon of a
// four-punch day. Shorter days have worked nothing.
func Worked(punches timesheet.PunchSet) clock.Offset {
	if len(punches) < 4 {
		return clock.Offset{}
	}
	morning := clock.Diff(punches[1], punches[0])
	afternoon := clock.Diff(punches[3], punches[2])
	return morning.Add(afternoon)
}

func (e *Engine) lunchReturn(p timesheet.PunchSet) Prediction {
	at := p[1].AddMinutes(e.cfg.LunchMinutes)
	return Prediction{
		Kind: KindReturn,
		At:   at,
		Line: fmt.Sprintf("You can come back from lunch at %s (±%d)", at, e.cfg.Tolerance),
	}
}

func (e *Engine) exitFor(p timesheet.PunchSet) clock.TimeOfDay {
	morning := clock.Diff(p[1], p[0])
	remaining := e.cfg.WorkDay.Sub(morning)
	return p[2].Add(remaining)
}

func (e *Engine) leaveAt(p timesheet.PunchSet) Prediction {
	at := e.exitFor(p)
	return Prediction{
		Kind: KindExit,
		At:   at,
		Line: fmt.Sprintf("You can leave at %s (±%d)", at, e.cfg.Tolerance),
	}
}

func (e *Engine) missingExit(p timesheet.PunchSet) Prediction {
	at := e.exitFor(p)
	return Prediction{
		Kind: KindExit,
		At:   at,
		Line: line(p[0], p[1], p[2], marked(at)),
	}
}

func (e *Engine) missingEntry(p timesheet.PunchSet) Prediction {
	afternoon := clock.Diff(p[2], p[1])
	budget := e.cfg.WorkDay.Sub(afternoon)
	at := p[0].Sub(budget)
	return Prediction{
		Kind: KindEntry,
		At:   at,
		Line: line(marked(at), p[0], p[1], p[2]),
	}
}

func (e *Engine) correction(p timesheet.PunchSet) (Prediction, bool) {
	worked := Worked(p)
	target := e.cfg.WorkDay.TotalMinutes()

	var at clock.TimeOfDay
	switch w := worked.TotalMinutes(); {
	case w > target+e.cfg.Tolerance:
		at = p[3].Sub(worked.Sub(e.cfg.WorkDay))
	case w < target-e.cfg.Tolerance:
		at = p[3].Add(e.cfg.WorkDay.Sub(worked))
	default:
		return Prediction{}, false
	}

	return Prediction{
		Kind: KindCorrection,
		At:   at,
		Line: line(p[0], p[1], p[2], marked(at)),
	}, true
}

func valid(punches timesheet.PunchSet) timesheet.PunchSet {
	out := make(timesheet.PunchSet, 0, len(punches))
	for _, t := range punches {
		if t.Valid() {
			out = append(out, t)
		}
	}
	return out
}

type marked clock.TimeOfDay

func (m marked) String() string {
	return "*" + clock.TimeOfDay(m).String() + "*"
}

func line(parts ...fmt.Stringer) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = p.String()
	}
	return strings.Join(s, " ")
}
