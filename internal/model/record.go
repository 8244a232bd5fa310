package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyRecord is one row of a fund's NAV history.
type DailyRecord struct {
	Date          time.Time
	NetAssetValue decimal.Decimal
	ChangePercent decimal.Decimal // 1.23 means +1.23%
}

// Weekday returns the record's weekday index (Monday=0).
func (r DailyRecord) Weekday() Weekday {
	return WeekdayOf(r.Date)
}
