package detail

import (
	"context"
	"fmt"

	"github.com/gocolly/colly/v2"
)

// Fetcher retrieves the raw HTML of a detail page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// CollyFetcher fetches server-rendered detail pages with a plain HTTP GET.
type CollyFetcher struct {
	collector *colly.Collector
}

// NewCollyFetcher creates a sequential fetcher. Pages may be fetched again,
// so an extraction can be restarted over the same links. Bodies are read in
// full: a truncated page would parse without error.
func NewCollyFetcher() *CollyFetcher {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(0),
	)
	return &CollyFetcher{collector: c}
}

// Fetch implements the Fetcher interface. Non-2xx responses are errors.
func (cf *CollyFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := cf.collector.Clone()

	var body []byte
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch %s: status %d: %w", url, r.StatusCode, err)
	})

	if err := c.Visit(url); err != nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	return body, nil
}
