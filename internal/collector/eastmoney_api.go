package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"FundLowDay/internal/model"
)

const (
	// DefaultEastmoneyAPIURL is the eastmoney JSON API host.
	DefaultEastmoneyAPIURL = "http://api.fund.eastmoney.com"
	eastmoneyAPIReferer    = "http://fundf10.eastmoney.com/"
	eastmoneyAPIPageSize   = 20
)

// EastmoneyAPIFetcher implements Fetcher using the eastmoney JSON NAV history API.
// It serves the same data as EastmoneyFetcher, paged.
type EastmoneyAPIFetcher struct {
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewEastmoneyAPIFetcher creates a new fetcher with optional proxy support.
func NewEastmoneyAPIFetcher(baseURL, proxyURL string, timeout time.Duration, requestsPerSecond float64) *EastmoneyAPIFetcher {
	if baseURL == "" {
		baseURL = DefaultEastmoneyAPIURL
	}
	return &EastmoneyAPIFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(proxyURL, timeout),
		Limiter: newLimiter(requestsPerSecond),
	}
}

func (f *EastmoneyAPIFetcher) Name() string { return "eastmoney-api" }

// lsjzPage is the JSON shape of one page of the history API.
type lsjzPage struct {
	Data struct {
		LSJZList []struct {
			FSRQ  string `json:"FSRQ"`  // date
			DWJZ  string `json:"DWJZ"`  // net asset value
			JZZZL string `json:"JZZZL"` // daily change, percent
		} `json:"LSJZList"`
	} `json:"Data"`
	ErrCode    int    `json:"ErrCode"`
	ErrMsg     string `json:"ErrMsg"`
	TotalCount int    `json:"TotalCount"`
}

func (f *EastmoneyAPIFetcher) FetchRecords(ctx context.Context, code string, start, end time.Time) ([]model.DailyRecord, error) {
	var records []model.DailyRecord
	for page := 1; ; page++ {
		p, err := f.fetchPage(ctx, code, start, end, page)
		if err != nil {
			return nil, &FetchError{Source: f.Name(), Code: code, Start: start, End: end, Err: err}
		}
		for _, item := range p.Data.LSJZList {
			rec, err := historyRow{Date: item.FSRQ, NetAssetValue: item.DWJZ, ChangePercent: item.JZZZL}.record()
			if err != nil {
				return nil, &FetchError{Source: f.Name(), Code: code, Start: start, End: end, Err: err}
			}
			records = append(records, rec)
		}
		if len(p.Data.LSJZList) == 0 || len(records) >= p.TotalCount {
			return records, nil
		}
	}
}

func (f *EastmoneyAPIFetcher) fetchPage(ctx context.Context, code string, start, end time.Time, page int) (*lsjzPage, error) {
	if err := f.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("fundCode", code)
	params.Set("pageIndex", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(eastmoneyAPIPageSize))
	params.Set("startDate", start.Format(model.DateLayout))
	params.Set("endDate", end.Format(model.DateLayout))
	endpoint := f.BaseURL + "/f10/lsjz?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	// The API rejects requests that do not come from the fund pages.
	req.Header.Set("Referer", eastmoneyAPIReferer)
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch page %d: status %d, body: %s", page, resp.StatusCode, string(body))
	}
	var p lsjzPage
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode page %d: %w", page, err)
	}
	if p.ErrCode != 0 {
		return nil, fmt.Errorf("eastmoney api error %d: %s", p.ErrCode, p.ErrMsg)
	}
	return &p, nil
}
