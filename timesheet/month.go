package timesheet

import "time"

// DateLayout is how the portal writes a day's date.
const DateLayout = "02/01/2006"

// Month keeps a fetched month's records in the portal's row order.
type Month struct {
	records []DayRecord
	index   map[string]int
}

func NewMonth() *Month {
	return &Month{index: map[string]int{}}
}

// BuildMonth builds every raw day, preserving row order.
func BuildMonth(days []RawDay) *Month {
	m := NewMonth()
	for _, d := range days {
		m.Add(Build(d))
	}
	return m
}

// Add appends a record. A record for a date already present replaces the
// old one and keeps its position.
func (m *Month) Add(r DayRecord) {
	if i, ok := m.index[r.Date]; ok {
		m.records[i] = r
		return
	}
	m.index[r.Date] = len(m.records)
	m.records = append(m.records, r)
}

func (m *Month) Get(date string) (DayRecord, bool) {
	i, ok := m.index[date]
	if !ok {
		return DayRecord{}, false
	}
	return m.records[i], true
}

// Records returns a copy of the records in row order.
func (m *Month) Records() []DayRecord {
	out := make([]DayRecord, len(m.records))
	copy(out, m.records)
	return out
}

func (m *Month) Len() int {
	return len(m.records)
}

// Today returns the record dated now, falling back to the last row that
// has punches. Portal months list unpunched days too.
func (m *Month) Today(now time.Time) (DayRecord, bool) {
	if r, ok := m.Get(now.Format(DateLayout)); ok {
		return r, true
	}
	for i := len(m.records) - 1; i >= 0; i-- {
		if len(m.records[i].Punches) > 0 {
			return m.records[i], true
		}
	}
	return DayRecord{}, false
}
