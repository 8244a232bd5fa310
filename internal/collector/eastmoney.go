package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"FundLowDay/internal/model"
)

// DefaultEastmoneyURL is the public fund data site.
const DefaultEastmoneyURL = "http://fund.eastmoney.com"

// EastmoneyFetcher implements Fetcher using the eastmoney NAV history page.
type EastmoneyFetcher struct {
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewEastmoneyFetcher creates a fetcher with optional proxy support. A
// requestsPerSecond of zero or less disables request pacing.
func NewEastmoneyFetcher(baseURL, proxyURL string, timeout time.Duration, requestsPerSecond float64) *EastmoneyFetcher {
	if baseURL == "" {
		baseURL = DefaultEastmoneyURL
	}
	return &EastmoneyFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(proxyURL, timeout),
		Limiter: newLimiter(requestsPerSecond),
	}
}

func (f *EastmoneyFetcher) Name() string { return "eastmoney" }

func (f *EastmoneyFetcher) FetchRecords(ctx context.Context, code string, start, end time.Time) ([]model.DailyRecord, error) {
	records, err := f.fetch(ctx, code, start, end)
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Code: code, Start: start, End: end, Err: err}
	}
	return records, nil
}

func (f *EastmoneyFetcher) fetch(ctx context.Context, code string, start, end time.Time) ([]model.DailyRecord, error) {
	if err := f.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("type", "lsjz")
	params.Set("code", code)
	params.Set("page", "1")
	params.Set("per", "65535")
	params.Set("sdate", start.Format(model.DateLayout))
	params.Set("edate", end.Format(model.DateLayout))
	u := f.BaseURL + "/f10/F10DataApi.aspx?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eastmoney request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("eastmoney read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eastmoney: status %d, body: %s", resp.StatusCode, string(body))
	}
	return parseHistoryTable(bytes.NewReader(body))
}

// historyColumns is the column count of a data row in the NAV history table:
// date, NAV, cumulative NAV, daily change, purchase status, redemption status, dividend.
const historyColumns = 7

// historyRow holds the cells of one data row that make up a DailyRecord.
type historyRow struct {
	Date          string // column 1
	NetAssetValue string // column 2
	ChangePercent string // column 4
}

func (r historyRow) record() (model.DailyRecord, error) {
	date, err := time.Parse(model.DateLayout, r.Date)
	if err != nil {
		return model.DailyRecord{}, fmt.Errorf("parse date %q: %w", r.Date, err)
	}
	nav, err := decimal.NewFromString(r.NetAssetValue)
	if err != nil {
		return model.DailyRecord{}, fmt.Errorf("parse net asset value %q on %s: %w", r.NetAssetValue, r.Date, err)
	}
	change := decimal.Zero
	if s := strings.TrimSuffix(r.ChangePercent, "%"); s != "" && s != "--" {
		if change, err = decimal.NewFromString(s); err != nil {
			return model.DailyRecord{}, fmt.Errorf("parse change percent %q on %s: %w", r.ChangePercent, r.Date, err)
		}
	}
	return model.DailyRecord{Date: date, NetAssetValue: nav, ChangePercent: change}, nil
}

// parseHistoryTable reads the records from the first table body of the page.
// Rows that do not have exactly historyColumns cells, such as the "no data"
// placeholder, are skipped.
func parseHistoryTable(r io.Reader) ([]model.DailyRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	tbody := doc.Find("tbody").First()
	if tbody.Length() == 0 {
		return nil, errors.New("no table body in response")
	}

	records := make([]model.DailyRecord, 0, 8)
	var rowErr error
	tbody.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() != historyColumns {
			return true
		}
		row := historyRow{
			Date:          strings.TrimSpace(cells.Eq(0).Text()),
			NetAssetValue: strings.TrimSpace(cells.Eq(1).Text()),
			ChangePercent: strings.TrimSpace(cells.Eq(3).Text()),
		}
		rec, err := row.record()
		if err != nil {
			rowErr = err
			return false
		}
		records = append(records, rec)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return records, nil
}
