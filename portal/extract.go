package portal

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"tangled.org/beats/timesheet"
)

// Columns of a day row in the punches table. Rows with fewer than
// minDayCells cells directly after a day row are its amendment.
const (
	colDate     = 0
	colBeats    = 2
	colAdjust   = 3
	adjustCells = 3
	minDayCells = 4
)

var (
	scheduleRange = regexp.MustCompile(`\d{2}:\d{2}~\d{2}:\d{2}`)
	punchToken    = regexp.MustCompile(`\d{2}:\d{2}`)
)

// ExtractRows reads the punches page and returns one raw day per day row,
// in page order.
func ExtractRows(r io.Reader) ([]timesheet.RawDay, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse punches page: %w", err)
	}

	doc.Find("#tableTotalize").Remove()

	table := doc.Find("#content table")
	if table.Length() == 0 {
		return nil, fmt.Errorf("punches table not found")
	}

	var days []timesheet.RawDay
	afterDay := false
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td").Map(func(_ int, td *goquery.Selection) string {
			return strings.TrimSpace(td.Text())
		})

		switch {
		case len(cells) >= minDayCells:
			days = append(days, dayFromCells(cells))
			afterDay = true
		case len(cells) > 0 && afterDay:
			days[len(days)-1].Wrong = cells
			afterDay = false
		default:
			afterDay = false
		}
	})

	return days, nil
}

func dayFromCells(cells []string) timesheet.RawDay {
	day := timesheet.RawDay{
		Date:  cells[colDate],
		Beats: cleanBeats(cells[colBeats]),
		Total: cells[len(cells)-1],
	}
	if len(cells) > colAdjust+adjustCells {
		day.Correct = cells[colAdjust : colAdjust+adjustCells]
	}
	return day
}

// cleanBeats drops schedule ranges such as 07:30~11:30 and joins what is
// left the way the portal lists punches.
func cleanBeats(text string) string {
	text = scheduleRange.ReplaceAllString(text, "")
	return strings.Join(punchToken.FindAllString(text, -1), ", ")
}
