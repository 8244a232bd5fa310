package model

import (
	"strconv"
	"strings"
)

// WeekdayFrequency maps a weekday name to the fraction of weeks where it was lowest.
type WeekdayFrequency map[string]float64

// Get returns the fraction recorded for a weekday.
func (f WeekdayFrequency) Get(d Weekday) float64 {
	return f[d.String()]
}

// String renders the table in Monday..Friday order, e.g. {Monday: 0.4, Tuesday: 0.2, ...}.
func (f WeekdayFrequency) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, d := range TradingDays {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.String())
		b.WriteString(": ")
		b.WriteString(strconv.FormatFloat(f.Get(d), 'g', -1, 64))
	}
	b.WriteByte('}')
	return b.String()
}

// RunSummary describes one aggregation run over a year range.
type RunSummary struct {
	Code            string
	StartYear       int
	EndYear         int
	TotalWeeks      int
	MatchedWeeks    int
	EmptyWeeks      int
	IncompleteWeeks int
	FailedWeeks     int
	Frequency       WeekdayFrequency
}
