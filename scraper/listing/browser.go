package listing

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrWaitTimeout is returned when elements do not appear within the wait window.
var ErrWaitTimeout = errors.New("timed out waiting for elements")

// InterceptedError reports a click that would land on another element
// covering the target, such as a sticky header.
type InterceptedError struct {
	Selector string
	Index    int
	Overlay  string
}

func (e *InterceptedError) Error() string {
	return fmt.Sprintf("click on %s[%d] intercepted by %s", e.Selector, e.Index, e.Overlay)
}

// Browser is the subset of a browser session the discoverer drives.
// Elements are addressed by CSS selector and position in document order.
type Browser interface {
	Navigate(url string) error
	// WaitAll waits until at least one element matches and returns how many do.
	WaitAll(selector string, timeout time.Duration) (int, error)
	// Hover scrolls the element into view and moves the pointer over it.
	Hover(selector string, index int) error
	// Click clicks the element, or returns *InterceptedError if something covers it.
	Click(selector string, index int) error
	// Links waits for at least one match and returns each element's href.
	Links(selector string, timeout time.Duration) ([]string, error)
	Close() error
}

// Launcher starts a browser session bound to ctx.
type Launcher func(ctx context.Context) (Browser, error)
