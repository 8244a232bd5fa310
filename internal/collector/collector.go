package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"FundLowDay/internal/calculator"
	"FundLowDay/internal/model"
)

// MockFetcher serves fixed records for development and testing.
type MockFetcher struct {
	Records []model.DailyRecord
	// Errors fails requests whose start date (YYYY-MM-DD) is listed.
	Errors map[string]error
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchRecords(_ context.Context, code string, start, end time.Time) ([]model.DailyRecord, error) {
	m.Calls++
	if err, ok := m.Errors[start.Format(model.DateLayout)]; ok {
		return nil, &FetchError{Source: m.Name(), Code: code, Start: start, End: end, Err: err}
	}
	var out []model.DailyRecord
	for _, r := range m.Records {
		if !r.Date.Before(start) && !r.Date.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

// DefaultRequiredDays is the number of trading days a week needs to be counted.
const DefaultRequiredDays = 5

// Options controls how weeks are evaluated.
type Options struct {
	// RequiredDays is the exact record count a week must have; 0 accepts any non-empty week.
	RequiredDays int
	// SkipFailedWeeks turns a failed fetch into a week without a result instead of aborting.
	SkipFailedWeeks bool
}

// Collector drives the fetcher over weeks and years and reduces the results.
type Collector struct {
	Fetcher Fetcher
	Options Options
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, opts Options) *Collector {
	return &Collector{Fetcher: fetcher, Options: opts}
}

// LowestWeekday fetches one week and reports the weekday with the lowest NAV.
// Empty and incomplete weeks come back without a result; fetch errors are
// returned unless SkipFailedWeeks is set.
func (c *Collector) LowestWeekday(ctx context.Context, code string, week model.WeekRange) (model.WeekLow, error) {
	from, to := week.Start.Format(model.DateLayout), week.End.Format(model.DateLayout)

	records, err := c.Fetcher.FetchRecords(ctx, code, week.Start, week.End)
	if err != nil {
		if c.Options.SkipFailedWeeks && ctx.Err() == nil {
			log.Printf("[WARN] fetch failed between %s and %s, skipping week: %v", from, to, err)
			return model.NoResult(week, err), nil
		}
		return model.WeekLow{}, fmt.Errorf("evaluate week %d-W%02d: %w", week.Year, week.Number, err)
	}
	if len(records) == 0 {
		log.Printf("[WARN] no records between %s and %s", from, to)
		return model.NoResult(week, model.ErrEmptyWeekData), nil
	}
	if need := c.Options.RequiredDays; need > 0 && len(records) != need {
		log.Printf("[WARN] %d records between %s and %s, want %d", len(records), from, to, need)
		return model.NoResult(week, fmt.Errorf("%w: %d of %d records", model.ErrIncompleteWeekData, len(records), need)), nil
	}

	i, err := calculator.LowestRecord(records)
	if err != nil {
		return model.WeekLow{}, err
	}
	return model.Lowest(week, records[i].Weekday()), nil
}

// YearLow evaluates every ISO week of year in week order.
func (c *Collector) YearLow(ctx context.Context, code string, year int) ([]model.WeekLow, error) {
	weeks := calculator.WeeksOfYear(year)
	results := make([]model.WeekLow, 0, len(weeks))
	for _, w := range weeks {
		r, err := c.LowestWeekday(ctx, code, w)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
		results = append(results, r)
	}
	log.Printf("[INFO] %s %d: evaluated %d weeks", code, year, len(results))
	return results, nil
}

// RangeLow concatenates YearLow for every year from startYear to endYear inclusive.
func (c *Collector) RangeLow(ctx context.Context, code string, startYear, endYear int) ([]model.WeekLow, error) {
	var results []model.WeekLow
	for year := startYear; year <= endYear; year++ {
		lows, err := c.YearLow(ctx, code, year)
		if err != nil {
			return nil, err
		}
		results = append(results, lows...)
	}
	return results, nil
}

// Analyze runs the full pipeline for a fund and year range.
func (c *Collector) Analyze(ctx context.Context, code string, startYear, endYear int) (*model.RunSummary, error) {
	log.Printf("[INFO] analyzing %s %d-%d via %s", code, startYear, endYear, c.Fetcher.Name())
	results, err := c.RangeLow(ctx, code, startYear, endYear)
	if err != nil {
		return nil, err
	}
	return calculator.Summarize(code, startYear, endYear, results)
}
