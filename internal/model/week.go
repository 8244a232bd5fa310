package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyWeekData means the source returned no records for a week.
	ErrEmptyWeekData = errors.New("no records for week")
	// ErrIncompleteWeekData means the week did not have the required number of trading days.
	ErrIncompleteWeekData = errors.New("incomplete week")
)

// DateLayout is the date format used by the data source and in diagnostics.
const DateLayout = "2006-01-02"

// Weekday is a day index where Monday=0 and Sunday=6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// TradingDays lists the weekdays that appear in a frequency table, in display order.
var TradingDays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// WeekdayOf converts a date to a Monday-based weekday index.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// WeekRange is the part of one ISO week that belongs to a given ISO year.
type WeekRange struct {
	Year   int
	Number int
	Start  time.Time
	End    time.Time
}

// Days returns the number of calendar days covered by the range.
func (w WeekRange) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

func (w WeekRange) String() string {
	return fmt.Sprintf("%d-W%02d [%s, %s]", w.Year, w.Number, w.Start.Format(DateLayout), w.End.Format(DateLayout))
}

// WeekLow is the outcome of evaluating one week. Found is false when the week
// produced no result; Reason then says why.
type WeekLow struct {
	Week    WeekRange
	Weekday Weekday
	Found   bool
	Reason  error
}

// NoResult builds a WeekLow without a weekday.
func NoResult(week WeekRange, reason error) WeekLow {
	return WeekLow{Week: week, Reason: reason}
}

// Lowest builds a WeekLow for the given weekday.
func Lowest(week WeekRange, day Weekday) WeekLow {
	return WeekLow{Week: week, Weekday: day, Found: true}
}
