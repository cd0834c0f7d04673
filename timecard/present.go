package timecard

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"tangled.org/beats/clock"
	"tangled.org/beats/reconcile"
	"tangled.org/beats/timesheet"
)

const (
	msgNoPunches   = "No punches registered today"
	msgUnsupported = "No beats registered (unsupported punch count)"
	msgAllDone     = "All done for today!"
)

// Today renders the message for a single day. When the record is dated now,
// predictions carry a hint relative to the current time.
func Today(r timesheet.DayRecord, engine *reconcile.Engine, now time.Time) string {
	switch n := len(r.Punches); {
	case n == 0:
		return msgNoPunches
	case n == 1:
		return fmt.Sprintf("You can go to lunch at %s", engine.Config().LunchAt)
	case n == 4:
		preds := engine.Reconcile(r.Punches, reconcile.ModeToday)
		if len(preds) == 0 {
			return msgAllDone
		}
		return fmt.Sprintf("%s Expected exit: %s", msgAllDone, preds[0].Line)
	case n > 4:
		return msgUnsupported
	}

	preds := engine.Reconcile(r.Punches, reconcile.ModeToday)
	if len(preds) == 0 {
		return msgUnsupported
	}

	p := preds[0]
	if r.Date != now.Format(timesheet.DateLayout) {
		return p.Line
	}
	return fmt.Sprintf("%s, %s", p.Line, relative(p.At, now))
}

func relative(at clock.TimeOfDay, now time.Time) string {
	then := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	return humanize.RelTime(then, now, "ago", "from now")
}
