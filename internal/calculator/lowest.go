package calculator

import (
	"errors"

	"FundLowDay/internal/model"
)

// LowestRecord returns the index of the record with the smallest net asset value.
// The scan uses a strict comparison, so the first of several equal minima wins.
func LowestRecord(records []model.DailyRecord) (int, error) {
	if len(records) == 0 {
		return 0, errors.New("no records provided")
	}
	lowest := 0
	for i := 1; i < len(records); i++ {
		if records[i].NetAssetValue.LessThan(records[lowest].NetAssetValue) {
			lowest = i
		}
	}
	return lowest, nil
}
