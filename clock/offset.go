package clock

import (
	"fmt"
	"regexp"
	"strconv"
)

// Offset is a signed hour and minute pair. Its fields are computed
// independently and are never normalized, so 09:15 - 08:45 is (1, -30).
type Offset struct {
	Hours   int
	Minutes int
}

// Diff returns a - b field by field.
func Diff(a, b TimeOfDay) Offset {
	return Offset{
		Hours:   a.hour - b.hour,
		Minutes: a.minute - b.minute,
	}
}

func (o Offset) Add(p Offset) Offset {
	return Offset{Hours: o.Hours + p.Hours, Minutes: o.Minutes + p.Minutes}
}

func (o Offset) Sub(p Offset) Offset {
	return Offset{Hours: o.Hours - p.Hours, Minutes: o.Minutes - p.Minutes}
}

func (o Offset) TotalMinutes() int {
	return o.Hours*minutesPerHour + o.Minutes
}

// String renders the offset as a signed, normalized H:mm.
func (o Offset) String() string {
	total := o.TotalMinutes()
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%d:%02d", sign, total/minutesPerHour, total%minutesPerHour)
}

var offsetLayout = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseOffset reads a work-day length as HH:mm or as a bare number of hours.
func ParseOffset(s string) (Offset, error) {
	if m := offsetLayout.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm > 59 {
			return Offset{}, fmt.Errorf("invalid minutes in %q", s)
		}
		return Offset{Hours: h, Minutes: mm}, nil
	}

	h, err := strconv.Atoi(s)
	if err != nil || h < 0 || h > 24 {
		return Offset{}, fmt.Errorf("invalid duration %q, expected HH:mm or hours", s)
	}
	return Offset{Hours: h}, nil
}
