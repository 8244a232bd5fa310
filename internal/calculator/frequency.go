package calculator

import (
	"errors"
	"fmt"

	"FundLowDay/internal/model"
)

// ErrEmptyAggregateInput is returned when there are no weeks to compute frequencies over.
var ErrEmptyAggregateInput = errors.New("no weeks to aggregate")

// ToFrequencies converts per-week results into the share of weeks each trading day
// was the lowest. The denominator counts every week, including weeks without a
// result, so the fractions only sum to 1 when every week matched.
func ToFrequencies(results []model.WeekLow) (model.WeekdayFrequency, error) {
	total := len(results)
	if total == 0 {
		return nil, ErrEmptyAggregateInput
	}

	counts := make(map[model.Weekday]int, len(model.TradingDays))
	for _, r := range results {
		if r.Found {
			counts[r.Weekday]++
		}
	}

	freq := make(model.WeekdayFrequency, len(model.TradingDays))
	for _, d := range model.TradingDays {
		freq[d.String()] = float64(counts[d]) / float64(total)
	}
	return freq, nil
}

// Summarize computes frequencies and per-outcome week counts for a run.
func Summarize(code string, startYear, endYear int, results []model.WeekLow) (*model.RunSummary, error) {
	freq, err := ToFrequencies(results)
	if err != nil {
		return nil, fmt.Errorf("summarize %s %d-%d: %w", code, startYear, endYear, err)
	}
	s := &model.RunSummary{
		Code:       code,
		StartYear:  startYear,
		EndYear:    endYear,
		TotalWeeks: len(results),
		Frequency:  freq,
	}
	for _, r := range results {
		switch {
		case r.Found:
			s.MatchedWeeks++
		case errors.Is(r.Reason, model.ErrEmptyWeekData):
			s.EmptyWeeks++
		case errors.Is(r.Reason, model.ErrIncompleteWeekData):
			s.IncompleteWeeks++
		default:
			s.FailedWeeks++
		}
	}
	return s, nil
}
