package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/Setiyoaryo/TicketAutomation/pkg/logging"
	"github.com/Setiyoaryo/TicketAutomation/pkg/workflow"
)

// typeDelay spaces out key events so dropdowns see them as real typing and
// re-filter their option lists.
const typeDelay = 30 * time.Millisecond

// Session adapts one Playwright page to the workflow.PageDriver interface.
// Not safe for concurrent use; the engine drives it strictly sequentially.
type Session struct {
	page playwright.Page
	log  *logging.Logger
}

var _ workflow.PageDriver = (*Session)(nil)

// Navigate loads the URL and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	return classify("navigation", err)
}

// Refresh reloads the current page and waits for the load event.
func (s *Session) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Reload(playwright.PageReloadOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	return classify("refresh", err)
}

// Click clicks the first element matching the selector.
func (s *Session) Click(selector string, timeout time.Duration) error {
	err := s.page.Click(pwSelector(selector), playwright.PageClickOptions{
		Timeout: pwTimeout(timeout),
	})
	return classify("click", err)
}

// Fill replaces the input's value.
func (s *Session) Fill(selector, value string, timeout time.Duration) error {
	err := s.page.Fill(pwSelector(selector), value, playwright.PageFillOptions{
		Timeout: pwTimeout(timeout),
	})
	return classify("fill", err)
}

// Type sends individual key events into the element.
func (s *Session) Type(selector, text string, timeout time.Duration) error {
	err := s.page.Type(pwSelector(selector), text, playwright.PageTypeOptions{
		Delay:   playwright.Float(float64(typeDelay.Milliseconds())),
		Timeout: pwTimeout(timeout),
	})
	return classify("type", err)
}

// Evaluate runs the script in the page context.
func (s *Session) Evaluate(script string) (interface{}, error) {
	result, err := s.page.Evaluate(script)
	if err != nil {
		return nil, classify("evaluate", err)
	}
	return result, nil
}

// WaitForSelector waits for a visible element matching the selector.
func (s *Session) WaitForSelector(selector string, timeout time.Duration) error {
	_, err := s.page.WaitForSelector(pwSelector(selector), playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: pwTimeout(timeout),
	})
	return classify("wait", err)
}

// WaitForHidden waits until no element matching the selector is visible.
func (s *Session) WaitForHidden(selector string, timeout time.Duration) error {
	_, err := s.page.WaitForSelector(pwSelector(selector), playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: pwTimeout(timeout),
	})
	return classify("wait hidden", err)
}

// QueryAll returns handles for every element matching the selector, in
// document order.
func (s *Session) QueryAll(selector string) ([]workflow.Element, error) {
	handles, err := s.page.QuerySelectorAll(pwSelector(selector))
	if err != nil {
		return nil, classify("query", err)
	}

	elements := make([]workflow.Element, 0, len(handles))
	for _, handle := range handles {
		elements = append(elements, &element{handle: handle})
	}
	return elements, nil
}

// Content returns the page's full HTML.
func (s *Session) Content() (string, error) {
	html, err := s.page.Content()
	if err != nil {
		return "", classify("content", err)
	}
	return html, nil
}

// CurrentURL returns the page's current URL.
func (s *Session) CurrentURL() string {
	return s.page.URL()
}

// Close closes the underlying page.
func (s *Session) Close() error {
	return s.page.Close()
}

// element adapts a Playwright element handle to workflow.Element.
type element struct {
	handle playwright.ElementHandle
}

func (e *element) Text() (string, error) {
	text, err := e.handle.TextContent()
	if err != nil {
		return "", classify("text", err)
	}
	return text, nil
}

func (e *element) Click() error {
	return classify("click", e.handle.Click())
}

func (e *element) Type(text string) error {
	err := e.handle.Type(text, playwright.ElementHandleTypeOptions{
		Delay: playwright.Float(float64(typeDelay.Milliseconds())),
	})
	return classify("type", err)
}

// pwSelector maps the selector profile convention to Playwright syntax:
// entries starting with // are XPath, everything else CSS.
func pwSelector(selector string) string {
	if strings.HasPrefix(selector, "//") {
		return "xpath=" + selector
	}
	return selector
}

func pwTimeout(timeout time.Duration) *float64 {
	return playwright.Float(float64(timeout.Milliseconds()))
}

// classify maps raw driver errors onto the engine's failure taxonomy so the
// supervisor can tell a retryable timeout from a dead session.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "target closed"),
		strings.Contains(msg, "browser has been closed"),
		strings.Contains(msg, "context or browser has been closed"),
		strings.Contains(msg, "connection refused"):
		return fmt.Errorf("%s: %w: %v", op, workflow.ErrSessionLost, err)
	case strings.Contains(msg, "timeout"):
		return fmt.Errorf("%s: %w: %v", op, workflow.ErrTimeout, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
