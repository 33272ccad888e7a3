package listing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"afitower-scraper/config"
	"afitower-scraper/utils"
)

// Status tells why link discovery stopped.
type Status int

const (
	// Completed means the button list ran out: every page was loaded.
	Completed Status = iota
	// Blocked means a "load more" click was intercepted by an overlay.
	Blocked
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Blocked:
		return "blocked"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome is how a discovery run ended. Reason is set when Status is Blocked.
type Outcome struct {
	Status Status
	Reason string
	Clicks int
}

func (o Outcome) String() string {
	if o.Status == Blocked {
		return fmt.Sprintf("blocked after %d clicks: %s", o.Clicks, o.Reason)
	}
	return fmt.Sprintf("completed after %d clicks", o.Clicks)
}

// Discoverer collects detail-page links by clicking through "load more" buttons.
type Discoverer struct {
	cfg    *config.Config
	logger *utils.Logger
	launch Launcher
}

// New creates a Discoverer that opens browsers with launch.
func New(cfg *config.Config, logger *utils.Logger, launch Launcher) *Discoverer {
	return &Discoverer{cfg: cfg, logger: logger, launch: launch}
}

// Discover walks the listing page and returns every unique preview link.
//
// The "load more" control is one of many elements sharing a class; the one to
// click sits at Site.ButtonOffset and moves by Site.ButtonStride per page. When
// the cursor runs past the end of the button list the run is Completed. An
// intercepted click ends the run as Blocked with no error. Wait timeouts and
// other browser failures are returned together with the links found so far.
func (d *Discoverer) Discover(ctx context.Context) (*utils.LinkSet, Outcome, error) {
	links := utils.NewLinkSet()
	site := d.cfg.Site

	browser, err := d.launch(ctx)
	if err != nil {
		return links, Outcome{}, fmt.Errorf("listing: launch browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			d.logger.Warn("[listing] Closing browser: %v", err)
		}
	}()

	d.logger.Info("[listing] Opening %s", d.cfg.ListingURL)
	if err := browser.Navigate(d.cfg.ListingURL); err != nil {
		return links, Outcome{}, fmt.Errorf("listing: %w", err)
	}

	var outcome Outcome
	index := site.ButtonOffset
	for {
		if err := sleep(ctx, d.cfg.PageLoadWait); err != nil {
			return links, outcome, err
		}

		count, err := browser.WaitAll(site.ButtonSelector, d.cfg.WaitTimeout)
		if err != nil {
			return links, outcome, fmt.Errorf("listing: buttons: %w", err)
		}
		if index >= count {
			d.logger.Debug("[listing] Button index %d beyond %d buttons, no more pages", index, count)
			outcome.Status = Completed
			break
		}

		if err := browser.Hover(site.ButtonSelector, index); err != nil {
			return links, outcome, fmt.Errorf("listing: %w", err)
		}
		if err := sleep(ctx, d.cfg.PageLoadWait); err != nil {
			return links, outcome, err
		}

		err = browser.Click(site.ButtonSelector, index)
		var intercepted *InterceptedError
		if errors.As(err, &intercepted) {
			d.logger.Warn("[listing] Load-more click intercepted: %v", intercepted)
			outcome.Status = Blocked
			outcome.Reason = intercepted.Overlay
			break
		}
		if err != nil {
			return links, outcome, fmt.Errorf("listing: %w", err)
		}
		outcome.Clicks++

		if err := sleep(ctx, d.cfg.ClickSettleWait); err != nil {
			return links, outcome, err
		}

		hrefs, err := browser.Links(site.PreviewSelector, d.cfg.WaitTimeout)
		if err != nil {
			return links, outcome, fmt.Errorf("listing: previews: %w", err)
		}
		for _, href := range hrefs {
			if links.Add(href) {
				d.logger.Info("[listing] Found link: %s", href)
			}
		}

		index += site.ButtonStride
		d.logger.Info("[listing] Moving to next page (click %d, %d links so far)", outcome.Clicks, links.Size())
	}

	d.logger.Info("[listing] Discovery %s", outcome)
	d.logger.Info("[listing] Total links collected: %d", links.Size())
	return links, outcome, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
