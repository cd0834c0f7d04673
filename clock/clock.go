// Package clock implements wall-clock times of day and the field-wise hour
// and minute offsets used to reconcile punches.
package clock

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

var layout = regexp.MustCompile(`^(\d{2}):(\d{2})$`)

// TimeOfDay is an hour and minute with no date. The zero value is invalid.
type TimeOfDay struct {
	hour   int
	minute int
	valid  bool
}

// Parse reads a strict HH:mm token. Anything else yields an invalid
// TimeOfDay rather than an error.
func Parse(s string) TimeOfDay {
	m := layout.FindStringSubmatch(s)
	if m == nil {
		return TimeOfDay{}
	}

	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h > 23 || mm > 59 {
		return TimeOfDay{}
	}

	return TimeOfDay{hour: h, minute: mm, valid: true}
}

// MustParse is like Parse but panics on invalid input.
func MustParse(s string) TimeOfDay {
	t := Parse(s)
	if !t.Valid() {
		panic(fmt.Sprintf("clock: invalid time of day %q", s))
	}
	return t
}

// New builds a TimeOfDay, normalizing out-of-range fields around the clock.
func New(hour, minute int) TimeOfDay {
	return fromMinutes(hour*minutesPerHour + minute)
}

func fromMinutes(total int) TimeOfDay {
	total %= minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}
	return TimeOfDay{
		hour:   total / minutesPerHour,
		minute: total % minutesPerHour,
		valid:  true,
	}
}

func (t TimeOfDay) Valid() bool { return t.valid }
func (t TimeOfDay) Hour() int   { return t.hour }
func (t TimeOfDay) Minute() int { return t.minute }

// Add applies a field-wise offset. Borrowing between hours and minutes only
// happens here, when the result is turned back into a time of day.
func (t TimeOfDay) Add(o Offset) TimeOfDay {
	return New(t.hour+o.Hours, t.minute+o.Minutes)
}

func (t TimeOfDay) Sub(o Offset) TimeOfDay {
	return New(t.hour-o.Hours, t.minute-o.Minutes)
}

func (t TimeOfDay) AddMinutes(n int) TimeOfDay {
	return New(t.hour, t.minute+n)
}

// Before reports whether t is earlier in the day than u.
func (t TimeOfDay) Before(u TimeOfDay) bool {
	return t.hour*minutesPerHour+t.minute < u.hour*minutesPerHour+u.minute
}

func (t TimeOfDay) Equal(u TimeOfDay) bool {
	return t == u
}

func (t TimeOfDay) String() string {
	if !t.valid {
		return "--:--"
	}
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}
