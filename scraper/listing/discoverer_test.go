package listing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"afitower-scraper/config"
	"afitower-scraper/utils"
)

// fakeBrowser emulates a listing page whose "load more" control is the
// button at offset 14, with 7 more buttons appended per loaded page.
type fakeBrowser struct {
	buttons     int
	pages       int // pages revealed by clicks before buttons stop growing
	perPage     int
	interceptAt int
	failWaitAt  int // WaitAll call number that times out, 0 = never

	waits    int
	clicks   []int
	hovers   []int
	previews []string
	closed   bool
	visited  string
}

func newFakeBrowser(pages, perPage int) *fakeBrowser {
	return &fakeBrowser{buttons: 15, pages: pages, perPage: perPage, interceptAt: -1}
}

func (f *fakeBrowser) Navigate(url string) error {
	f.visited = url
	return nil
}

func (f *fakeBrowser) WaitAll(selector string, timeout time.Duration) (int, error) {
	f.waits++
	if f.failWaitAt == f.waits {
		return 0, fmt.Errorf("%w: %s", ErrWaitTimeout, selector)
	}
	return f.buttons, nil
}

func (f *fakeBrowser) Hover(selector string, index int) error {
	f.hovers = append(f.hovers, index)
	return nil
}

func (f *fakeBrowser) Click(selector string, index int) error {
	if index == f.interceptAt {
		return &InterceptedError{Selector: selector, Index: index, Overlay: "div.sticky-header"}
	}
	f.clicks = append(f.clicks, index)
	page := len(f.clicks)
	for i := 0; i < f.perPage; i++ {
		f.previews = append(f.previews, fmt.Sprintf("https://afitower.ru/flat/%d-%d", page, i))
	}
	if page < f.pages {
		f.buttons += 7
	}
	return nil
}

func (f *fakeBrowser) Links(selector string, timeout time.Duration) ([]string, error) {
	// The page keeps earlier previews, so every call repeats old links.
	out := make([]string, len(f.previews))
	copy(out, f.previews)
	return out, nil
}

func (f *fakeBrowser) Close() error {
	f.closed = true
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		ListingURL: "https://afitower.ru/?showMore=true",
		Site:       config.DefaultSite(),
	}
}

func launcherFor(b Browser) Launcher {
	return func(context.Context) (Browser, error) { return b, nil }
}

func TestDiscoverThreePages(t *testing.T) {
	fb := newFakeBrowser(3, 5)
	d := New(testConfig(), utils.NewLogger(), launcherFor(fb))

	links, outcome, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if links.Size() != 15 {
		t.Errorf("links: got %d, want 15", links.Size())
	}
	if outcome.Status != Completed || outcome.Clicks != 3 {
		t.Errorf("outcome: got %v, want completed after 3 clicks", outcome)
	}
	if got := fmt.Sprint(fb.clicks); got != "[14 21 28]" {
		t.Errorf("clicked indices: got %s, want [14 21 28]", got)
	}
	if fmt.Sprint(fb.hovers) != fmt.Sprint(fb.clicks) {
		t.Errorf("every click should be preceded by a hover: hovers %v clicks %v", fb.hovers, fb.clicks)
	}
	if !fb.closed {
		t.Error("browser not closed")
	}
	if fb.visited != testConfig().ListingURL {
		t.Errorf("navigated to %q", fb.visited)
	}
}

func TestDiscoverDeduplicatesAcrossClicks(t *testing.T) {
	fb := newFakeBrowser(2, 3)
	d := New(testConfig(), utils.NewLogger(), launcherFor(fb))

	links, _, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	// The second Links call returns all 6 previews, 3 of them already seen.
	if links.Size() != 6 {
		t.Errorf("links: got %d, want 6", links.Size())
	}
	if got := links.Links()[0]; got != "https://afitower.ru/flat/1-0" {
		t.Errorf("first link: got %q", got)
	}
}

func TestDiscoverCustomCalibration(t *testing.T) {
	fb := newFakeBrowser(2, 1)
	fb.buttons = 5
	cfg := testConfig()
	cfg.Site.ButtonOffset = 0
	cfg.Site.ButtonStride = 10

	_, outcome, err := New(cfg, utils.NewLogger(), launcherFor(fb)).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got := fmt.Sprint(fb.clicks); got != "[0 10]" {
		t.Errorf("clicked indices: got %s, want [0 10]", got)
	}
	if outcome.Status != Completed {
		t.Errorf("outcome: got %v", outcome)
	}
}

func TestDiscoverBlockedIsNotAnError(t *testing.T) {
	fb := newFakeBrowser(3, 5)
	fb.interceptAt = 21
	d := New(testConfig(), utils.NewLogger(), launcherFor(fb))

	links, outcome, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if outcome.Status != Blocked {
		t.Fatalf("outcome: got %v, want blocked", outcome)
	}
	if outcome.Reason != "div.sticky-header" {
		t.Errorf("reason: got %q", outcome.Reason)
	}
	if links.Size() != 5 {
		t.Errorf("links: got %d, want 5 from the first page", links.Size())
	}
	if !fb.closed {
		t.Error("browser not closed")
	}
}

func TestDiscoverTimeoutIsFatal(t *testing.T) {
	fb := newFakeBrowser(3, 5)
	fb.failWaitAt = 2
	d := New(testConfig(), utils.NewLogger(), launcherFor(fb))

	links, _, err := d.Discover(context.Background())
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("expected ErrWaitTimeout, got %v", err)
	}
	if links.Size() != 5 {
		t.Errorf("links gathered before the timeout: got %d, want 5", links.Size())
	}
	if !fb.closed {
		t.Error("browser must be closed on fatal errors too")
	}
}

func TestDiscoverNoLoadMoreButton(t *testing.T) {
	fb := newFakeBrowser(0, 5)
	fb.buttons = 10
	d := New(testConfig(), utils.NewLogger(), launcherFor(fb))

	links, outcome, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if links.Size() != 0 || outcome.Clicks != 0 || outcome.Status != Completed {
		t.Errorf("got %d links, outcome %v; want none, completed", links.Size(), outcome)
	}
}

func TestDiscoverLaunchFailure(t *testing.T) {
	boom := errors.New("no chrome")
	d := New(testConfig(), utils.NewLogger(), func(context.Context) (Browser, error) { return nil, boom })

	if _, _, err := d.Discover(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected launch error, got %v", err)
	}
}

func TestDiscoverCancelledContext(t *testing.T) {
	fb := newFakeBrowser(3, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(testConfig(), utils.NewLogger(), launcherFor(fb)).Discover(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if !fb.closed {
		t.Error("browser not closed after cancellation")
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{Outcome{Status: Completed, Clicks: 3}, "completed after 3 clicks"},
		{Outcome{Status: Blocked, Clicks: 1, Reason: "header.sticky"}, "blocked after 1 clicks: header.sticky"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("String() = %q; want %q", got, tt.want)
		}
	}
}
