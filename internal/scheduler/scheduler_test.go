package scheduler

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundLowDay/internal/collector"
	"FundLowDay/internal/model"
)

type recordingSender struct {
	texts []string
	err   error
}

func (r *recordingSender) Send(_ context.Context, text string) error {
	r.texts = append(r.texts, text)
	return r.err
}

func fridayLows(year int) []model.DailyRecord {
	var out []model.DailyRecord
	from := time.Date(year-1, 12, 24, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		wd := model.WeekdayOf(d)
		if wd > model.Friday {
			continue
		}
		nav := decimal.NewFromInt(2)
		if wd == model.Friday {
			nav = decimal.NewFromInt(1)
		}
		out = append(out, model.DailyRecord{Date: d, NetAssetValue: nav})
	}
	return out
}

func newScheduler(f collector.Fetcher, sender Sender, job Job) *Scheduler {
	col := collector.NewCollector(f, collector.Options{RequiredDays: collector.DefaultRequiredDays})
	return NewScheduler(context.Background(), col, sender, job)
}

func TestReportTask_SendsReport(t *testing.T) {
	sender := &recordingSender{}
	s := newScheduler(&collector.MockFetcher{Records: fridayLows(2019)}, sender, Job{Code: "110011", StartYear: 2019, EndYear: 2019})

	s.reportTask()
	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "110011 2019")
	assert.Contains(t, sender.texts[0], "Friday    100.0%")
}

func TestReportTask_SendsFailure(t *testing.T) {
	sender := &recordingSender{}
	f := &collector.MockFetcher{Errors: map[string]error{"2018-12-31": errors.New("connection reset")}}
	s := newScheduler(f, sender, Job{Code: "110011", StartYear: 2019, EndYear: 2019})

	s.reportTask()
	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "connection reset")
}

func TestReportTask_SendsFailureEscaped(t *testing.T) {
	sender := &recordingSender{}
	body := errors.New("status 502, body: <html><body>Bad Gateway</body></html>")
	f := &collector.MockFetcher{Errors: map[string]error{"2018-12-31": body}}
	s := newScheduler(f, sender, Job{Code: "110011", StartYear: 2019, EndYear: 2019})

	s.reportTask()
	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "&lt;html&gt;&lt;body&gt;Bad Gateway&lt;/body&gt;&lt;/html&gt;")
	assert.NotContains(t, sender.texts[0], "<html>")

	reply := s.HandleCommand(context.Background(), "/report")
	assert.Contains(t, reply, "&lt;html&gt;")
	assert.NotContains(t, reply, "<body>")
}

func TestReportTask_NilSender(t *testing.T) {
	f := &collector.MockFetcher{Records: fridayLows(2019)}
	s := newScheduler(f, nil, Job{Code: "110011", StartYear: 2019, EndYear: 2019})
	var out bytes.Buffer
	s.Out = &out

	s.reportTask()
	assert.Equal(t, 52, f.Calls)
	assert.Contains(t, out.String(), "Friday: 1")
	assert.Contains(t, out.String(), "weeks: 52 total, 52 with data, 0 empty, 0 incomplete, 0 failed")
}

func TestHandleCommand(t *testing.T) {
	s := newScheduler(&collector.MockFetcher{Records: fridayLows(2019)}, nil, Job{Code: "110011", StartYear: 2019, EndYear: 2019})

	assert.Contains(t, s.HandleCommand(context.Background(), "/report"), "Lowest NAV weekday")
	assert.Contains(t, s.HandleCommand(context.Background(), "hello"), "/report")

	empty := newScheduler(&collector.MockFetcher{}, nil, Job{Code: "110011", StartYear: 2020, EndYear: 2019})
	assert.Contains(t, empty.HandleCommand(context.Background(), "/report"), "no weeks to aggregate")
}

func TestRegister(t *testing.T) {
	s := newScheduler(&collector.MockFetcher{}, nil, Job{Code: "110011", StartYear: 2019, EndYear: 2019})
	require.NoError(t, s.Register("0 0 18 * * 5"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.Register("not a schedule"))

	s.Start()
	s.Stop()
}
