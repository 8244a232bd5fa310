package calculator

import (
	"time"

	"FundLowDay/internal/model"
)

// WeeksOfYear returns every ISO week of year, in week order. Each range holds the
// first and last day of the week that fall inside the scan window
// [year-1-12-24, year-12-31], so a last week running into January is cut at Dec 31.
func WeeksOfYear(year int) []model.WeekRange {
	start := time.Date(year-1, time.December, 24, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	var weeks []model.WeekRange
	index := make(map[int]int) // week number -> position in weeks
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		y, w := d.ISOWeek()
		if y != year {
			continue
		}
		if i, ok := index[w]; ok {
			weeks[i].End = d
			continue
		}
		index[w] = len(weeks)
		weeks = append(weeks, model.WeekRange{Year: year, Number: w, Start: d, End: d})
	}
	return weeks
}
