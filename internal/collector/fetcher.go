package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"FundLowDay/internal/model"
)

// Fetcher defines the interface for fetching fund NAV history.
type Fetcher interface {
	// FetchRecords returns the daily records of a fund between start and end
	// (inclusive), in the order the source lists them.
	FetchRecords(ctx context.Context, code string, start, end time.Time) ([]model.DailyRecord, error)
	Name() string
}

// FetchError reports a transport failure or an unusable response for one request.
type FetchError struct {
	Source string
	Code   string
	Start  time.Time
	End    time.Time
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch %s [%s, %s]: %v", e.Source, e.Code,
		e.Start.Format(model.DateLayout), e.End.Format(model.DateLayout), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// newLimiter paces requests; zero or less means no limit.
func newLimiter(requestsPerSecond float64) *rate.Limiter {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return rate.NewLimiter(limit, 1)
}
