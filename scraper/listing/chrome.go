package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"afitower-scraper/utils"
)

// lookupTimeout bounds re-resolving a node that WaitAll already saw.
const lookupTimeout = 10 * time.Second

// overlayJS returns a description of the element covering the centre of the
// target, or "" when the target itself would receive the click.
const overlayJS = `(function(sel, i) {
	var el = document.querySelectorAll(sel)[i];
	if (!el) return "";
	var r = el.getBoundingClientRect();
	var top = document.elementFromPoint(r.left + r.width / 2, r.top + r.height / 2);
	if (!top || top === el || el.contains(top)) return "";
	var cls = typeof top.className === "string" && top.className ? "." + top.className.trim().split(/\s+/).join(".") : "";
	return top.tagName.toLowerCase() + cls;
})(%s, %d)`

const linksJS = `Array.from(document.querySelectorAll(%s), function(e) {
	return e.href || e.getAttribute("href") || "";
})`

// ChromeBrowser drives a headless Chrome tab through chromedp.
type ChromeBrowser struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewChromeLauncher returns a Launcher starting headless Chrome from chromeBin,
// or from the first browser found on the system when chromeBin is empty.
func NewChromeLauncher(chromeBin string, logger *utils.Logger) Launcher {
	return func(ctx context.Context) (Browser, error) {
		return OpenChrome(ctx, chromeBin, logger)
	}
}

// OpenChrome starts the browser and its first tab.
func OpenChrome(ctx context.Context, chromeBin string, logger *utils.Logger) (*ChromeBrowser, error) {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[listing] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(1366, 900),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)

	// Suppress chromedp log noise
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("chrome: start: %w", err)
	}

	return &ChromeBrowser{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

func (b *ChromeBrowser) Navigate(url string) error {
	if err := chromedp.Run(b.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("chrome: navigate %s: %w", url, err)
	}
	return nil
}

func (b *ChromeBrowser) WaitAll(selector string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll)); err != nil {
		return 0, waitErr(selector, err)
	}
	return len(nodes), nil
}

func (b *ChromeBrowser) Hover(selector string, index int) error {
	ctx, cancel := context.WithTimeout(b.ctx, lookupTimeout)
	defer cancel()

	n, err := nodeAt(ctx, selector, index)
	if err != nil {
		return err
	}

	err = chromedp.Run(ctx,
		dom.ScrollIntoViewIfNeeded().WithNodeID(n.NodeID),
		chromedp.ActionFunc(func(ctx context.Context) error {
			box, err := dom.GetBoxModel().WithNodeID(n.NodeID).Do(ctx)
			if err != nil {
				return err
			}
			x, y := quadCenter(box.Content)
			return chromedp.MouseEvent(input.MouseMoved, x, y).Do(ctx)
		}),
	)
	if err != nil {
		return fmt.Errorf("chrome: hover %s[%d]: %w", selector, index, err)
	}
	return nil
}

func (b *ChromeBrowser) Click(selector string, index int) error {
	ctx, cancel := context.WithTimeout(b.ctx, lookupTimeout)
	defer cancel()

	n, err := nodeAt(ctx, selector, index)
	if err != nil {
		return err
	}

	var overlay string
	if err := chromedp.Run(ctx, chromedp.Evaluate(overlayScript(selector, index), &overlay)); err != nil {
		return fmt.Errorf("chrome: hit-test %s[%d]: %w", selector, index, err)
	}
	if overlay != "" {
		return &InterceptedError{Selector: selector, Index: index, Overlay: overlay}
	}

	if err := chromedp.Run(ctx, chromedp.MouseClickNode(n)); err != nil {
		return fmt.Errorf("chrome: click %s[%d]: %w", selector, index, err)
	}
	return nil
}

func (b *ChromeBrowser) Links(selector string, timeout time.Duration) ([]string, error) {
	ctx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()

	var hrefs []string
	err := chromedp.Run(ctx,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.Evaluate(linksScript(selector), &hrefs),
	)
	if err != nil {
		return nil, waitErr(selector, err)
	}
	return hrefs, nil
}

// Close shuts the tab and the browser process. Safe to call more than once.
func (b *ChromeBrowser) Close() error {
	if b.cancelTab != nil {
		b.cancelTab()
		b.cancelTab = nil
	}
	if b.cancelAlloc != nil {
		b.cancelAlloc()
		b.cancelAlloc = nil
	}
	return nil
}

func nodeAt(ctx context.Context, selector string, index int) (*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll)); err != nil {
		return nil, waitErr(selector, err)
	}
	if index < 0 || index >= len(nodes) {
		return nil, fmt.Errorf("chrome: %s[%d] out of range (%d matches)", selector, index, len(nodes))
	}
	return nodes[index], nil
}

// overlayScript and linksScript embed the selector as a JS string literal.
func overlayScript(selector string, index int) string {
	return fmt.Sprintf(overlayJS, jsString(selector), index)
}

func linksScript(selector string) string {
	return fmt.Sprintf(linksJS, jsString(selector))
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func waitErr(selector string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrWaitTimeout, selector)
	}
	return fmt.Errorf("chrome: wait %s: %w", selector, err)
}

func quadCenter(q dom.Quad) (float64, float64) {
	if len(q) < 8 {
		return 0, 0
	}
	return (q[0] + q[2] + q[4] + q[6]) / 4, (q[1] + q[3] + q[5] + q[7]) / 4
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
