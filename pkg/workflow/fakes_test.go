package workflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Setiyoaryo/TicketAutomation/pkg/config"
)

// testConfig returns a config with tight timeouts so failure paths settle fast.
func testConfig() *config.Config {
	return &config.Config{
		LoginURL:           "https://intranet.example.com/login",
		Username:           "operator",
		Password:           "secret",
		DefaultTimeout:     50 * time.Millisecond,
		ShortTimeout:       20 * time.Millisecond,
		LongTimeout:        100 * time.Millisecond,
		APIResponseTimeout: 200 * time.Millisecond,
		MaxRetries:         3,
		RetryDelay:         0,
		EndpointPattern:    "*/dp/create-ticket*",
	}
}

// fakeElement is a scriptable dropdown option handle.
type fakeElement struct {
	text     string
	clicked  bool
	clickErr error
	textErr  error
}

func (e *fakeElement) Text() (string, error)  { return e.text, e.textErr }
func (e *fakeElement) Click() error           { e.clicked = true; return e.clickErr }
func (e *fakeElement) Type(text string) error { return nil }

// fakeDriver implements PageDriver with overridable hooks; unset hooks succeed.
type fakeDriver struct {
	url string

	navigateFn   func(url string) error
	refreshFn    func() error
	clickFn      func(sel string) error
	fillFn       func(sel, value string) error
	typeFn       func(sel, text string) error
	evaluateFn   func(script string) (interface{}, error)
	waitFn       func(sel string) error
	waitHiddenFn func(sel string) error
	queryAllFn   func(sel string) ([]Element, error)
	contentFn    func() (string, error)

	navigations []string
	refreshes   int
	clicks      []string
	fills       map[string]string
	lastTyped   string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		url:   "https://intranet.example.com/dashboard",
		fills: make(map[string]string),
	}
}

func (d *fakeDriver) Navigate(_ context.Context, url string) error {
	d.navigations = append(d.navigations, url)
	if d.navigateFn != nil {
		return d.navigateFn(url)
	}
	return nil
}

func (d *fakeDriver) Refresh(context.Context) error {
	d.refreshes++
	if d.refreshFn != nil {
		return d.refreshFn()
	}
	return nil
}

func (d *fakeDriver) Click(sel string, _ time.Duration) error {
	d.clicks = append(d.clicks, sel)
	if d.clickFn != nil {
		return d.clickFn(sel)
	}
	return nil
}

func (d *fakeDriver) Fill(sel, value string, _ time.Duration) error {
	d.fills[sel] = value
	if d.fillFn != nil {
		return d.fillFn(sel, value)
	}
	return nil
}

func (d *fakeDriver) Type(sel, text string, _ time.Duration) error {
	d.lastTyped = text
	if d.typeFn != nil {
		return d.typeFn(sel, text)
	}
	return nil
}

func (d *fakeDriver) Evaluate(script string) (interface{}, error) {
	if d.evaluateFn != nil {
		return d.evaluateFn(script)
	}
	return nil, nil
}

func (d *fakeDriver) WaitForSelector(sel string, _ time.Duration) error {
	if d.waitFn != nil {
		return d.waitFn(sel)
	}
	return nil
}

func (d *fakeDriver) WaitForHidden(sel string, _ time.Duration) error {
	if d.waitHiddenFn != nil {
		return d.waitHiddenFn(sel)
	}
	return nil
}

func (d *fakeDriver) QueryAll(sel string) ([]Element, error) {
	if d.queryAllFn != nil {
		return d.queryAllFn(sel)
	}
	return nil, nil
}

func (d *fakeDriver) Content() (string, error) {
	if d.contentFn != nil {
		return d.contentFn()
	}
	return "", nil
}

func (d *fakeDriver) CurrentURL() string { return d.url }

// fakePage emulates the injected response hook: Arm bumps the generation and
// clears the capture list, drain returns whatever the test queued.
type fakePage struct {
	generation int
	captured   []capturedResponse
	evalErr    error
}

// record queues a response as if the page had completed a matching XHR.
func (p *fakePage) record(method, url string, status int, body string) {
	p.captured = append(p.captured, capturedResponse{
		Generation: p.generation,
		Method:     method,
		URL:        url,
		Status:     status,
		Body:       body,
	})
}

func (p *fakePage) evaluate(script string) (interface{}, error) {
	if p.evalErr != nil {
		return nil, p.evalErr
	}
	switch script {
	case hookScript:
		return nil, nil
	case armScript:
		p.generation++
		p.captured = nil
		return float64(p.generation), nil
	case drainScript:
		raw, err := json.Marshal(p.captured)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	default:
		return nil, nil
	}
}
