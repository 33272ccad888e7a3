package detail

import (
	"bytes"
	"context"
	"iter"

	"afitower-scraper/models"
	"afitower-scraper/services"
	"afitower-scraper/utils"
)

// Result is the outcome for one link. Exactly one of Unit and Err is set.
// Index is the link's position and can be used as a resume cursor.
type Result struct {
	Index int
	Link  string
	Unit  *models.Unit
	Err   error
}

// Extractor fetches detail pages and turns each into a Unit.
type Extractor struct {
	fetcher Fetcher
	parser  *Parser
	cleaner *services.Cleaner
	logger  *utils.Logger
}

// NewExtractor wires the fetch, parse and clean steps together.
func NewExtractor(fetcher Fetcher, parser *Parser, cleaner *services.Cleaner, logger *utils.Logger) *Extractor {
	return &Extractor{fetcher: fetcher, parser: parser, cleaner: cleaner, logger: logger}
}

// Extract processes a single detail page.
func (e *Extractor) Extract(ctx context.Context, link string) (*models.Unit, error) {
	body, err := e.fetcher.Fetch(ctx, link)
	if err != nil {
		return nil, err
	}
	raw, err := e.parser.Parse(bytes.NewReader(body), link)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("[detail] %s parsed as %s", link, raw.Layout)
	return e.cleaner.Clean(raw)
}

// Records lazily processes links[start:], one fetch per step, yielding a
// Result per link. Iteration stops after yielding a context error.
func (e *Extractor) Records(ctx context.Context, links []string, start int) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		if start < 0 {
			start = 0
		}
		for i := start; i < len(links); i++ {
			if err := ctx.Err(); err != nil {
				yield(Result{Index: i, Link: links[i], Err: err})
				return
			}

			unit, err := e.Extract(ctx, links[i])
			if err == nil {
				e.logger.Info("[detail] Processed %d/%d", i+1, len(links))
			} else {
				e.logger.Warn("[detail] Failed %d/%d %s: %v", i+1, len(links), links[i], err)
			}

			if !yield(Result{Index: i, Link: links[i], Unit: unit, Err: err}) {
				return
			}
		}
	}
}

// ExtractAll returns one unit per link, or the first error and no units.
func (e *Extractor) ExtractAll(ctx context.Context, links []string) ([]*models.Unit, error) {
	units := make([]*models.Unit, 0, len(links))
	for r := range e.Records(ctx, links, 0) {
		if r.Err != nil {
			return nil, r.Err
		}
		units = append(units, r.Unit)
	}
	return units, nil
}

// Collect keeps going past bad pages: it returns the units that succeeded and
// the failed results separately.
func (e *Extractor) Collect(ctx context.Context, links []string, start int) ([]*models.Unit, []Result) {
	var units []*models.Unit
	var failures []Result
	for r := range e.Records(ctx, links, start) {
		if r.Err != nil {
			failures = append(failures, r)
			continue
		}
		units = append(units, r.Unit)
	}
	return units, failures
}
