package workflow

import (
	"context"
	"time"
)

// Element is a handle to a live page element. Handles are only valid for the
// duration of the fill operation that produced them.
type Element interface {
	// Text returns the element's visible text content.
	Text() (string, error)

	// Click clicks the element.
	Click() error

	// Type types text into the element, character by character.
	Type(text string) error
}

// PageDriver is the narrow browser surface the engine depends on. The
// production implementation lives in pkg/browser; tests substitute fakes.
type PageDriver interface {
	// Navigate loads the given URL and waits for the page to settle.
	Navigate(ctx context.Context, url string) error

	// Refresh reloads the current page.
	Refresh(ctx context.Context) error

	// Click clicks the first element matching the selector.
	Click(selector string, timeout time.Duration) error

	// Fill sets an input's value, replacing any existing content.
	Fill(selector, value string, timeout time.Duration) error

	// Type focuses the element and types the text with key events, which
	// dynamic dropdowns need to trigger their filtering.
	Type(selector, text string, timeout time.Duration) error

	// Evaluate runs JavaScript in the page context and returns its value.
	Evaluate(script string) (interface{}, error)

	// WaitForSelector waits until an element matching the selector is visible.
	WaitForSelector(selector string, timeout time.Duration) error

	// WaitForHidden waits until no element matching the selector is visible.
	WaitForHidden(selector string, timeout time.Duration) error

	// QueryAll returns handles for all elements matching the selector,
	// in document order.
	QueryAll(selector string) ([]Element, error)

	// Content returns the full HTML of the current page.
	Content() (string, error)

	// CurrentURL returns the URL of the current page.
	CurrentURL() string
}
