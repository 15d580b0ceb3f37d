package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// hookScript wraps XMLHttpRequest once per page so every completed request is
// recorded with its generation, method, URL, status, and body. Which requests
// matter is decided on the Go side; the page only records.
const hookScript = `(function() {
	if (window.__tbHookInstalled) { return; }
	window.__tbHookInstalled = true;
	window.__tbGeneration = 0;
	window.__tbCaptured = [];
	var open = XMLHttpRequest.prototype.open;
	var send = XMLHttpRequest.prototype.send;
	XMLHttpRequest.prototype.open = function(method, url) {
		this.__tbMethod = method;
		this.__tbURL = url;
		return open.apply(this, arguments);
	};
	XMLHttpRequest.prototype.send = function() {
		var xhr = this;
		this.addEventListener('load', function() {
			try {
				window.__tbCaptured.push({
					generation: window.__tbGeneration,
					method: String(xhr.__tbMethod || '').toUpperCase(),
					url: String(xhr.responseURL || xhr.__tbURL || ''),
					status: xhr.status,
					body: xhr.responseText
				});
				if (window.__tbCaptured.length > 50) { window.__tbCaptured.shift(); }
			} catch (e) {}
		});
		return send.apply(this, arguments);
	};
})();`

// armScript starts a fresh capture generation and discards anything recorded
// by a previous attempt.
const armScript = `(function() {
	window.__tbGeneration = (window.__tbGeneration || 0) + 1;
	window.__tbCaptured = [];
	return window.__tbGeneration;
})();`

const drainScript = `JSON.stringify(window.__tbCaptured || [])`

// capturedResponse mirrors the entries the page hook records.
type capturedResponse struct {
	Generation int    `json:"generation"`
	Method     string `json:"method"`
	URL        string `json:"url"`
	Status     int    `json:"status"`
	Body       string `json:"body"`
}

// APIResult is the parsed outcome of the intercepted create-ticket response:
// the server-declared status plus its message. The rest of the payload is
// opaque to the engine.
type APIResult struct {
	Succeeded bool
	Code      int
	Message   string
}

// Interceptor captures the body of the network call the page makes when
// creating a ticket. UI success indicators are unreliable (toasts can render
// before the server confirms, or look the same for partial failures), so the
// intercepted response is the only ground truth for success.
type Interceptor struct {
	driver       PageDriver
	matcher      glob.Glob
	method       string
	generation   int
	pollInterval time.Duration
}

// NewInterceptor compiles the endpoint glob pattern and prepares an
// interceptor bound to the driver. Method is matched case-insensitively;
// empty means any method.
func NewInterceptor(driver PageDriver, endpointPattern, method string) (*Interceptor, error) {
	matcher, err := glob.Compile(endpointPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint pattern %q: %w", endpointPattern, err)
	}
	return &Interceptor{
		driver:       driver,
		matcher:      matcher,
		method:       strings.ToUpper(method),
		pollInterval: 500 * time.Millisecond,
	}, nil
}

// Arm installs the page hook if needed and starts a fresh capture generation,
// discarding any stale capture from a prior attempt. Exactly one generation
// is live per attempt.
func (i *Interceptor) Arm() error {
	if _, err := i.driver.Evaluate(hookScript); err != nil {
		return fmt.Errorf("failed to install response hook: %w", err)
	}
	value, err := i.driver.Evaluate(armScript)
	if err != nil {
		return fmt.Errorf("failed to arm response hook: %w", err)
	}
	gen, err := toInt(value)
	if err != nil {
		return fmt.Errorf("unexpected arm result: %w", err)
	}
	i.generation = gen
	return nil
}

// Await polls for the first response of the current generation that matches
// the endpoint pattern and method, and parses its body. First matching
// response wins; later calls the page might make are ignored.
//
// Returns ErrTimeout (wrapped) when no matching response arrives in time.
func (i *Interceptor) Await(ctx context.Context, timeout time.Duration) (*APIResult, error) {
	if i.generation == 0 {
		return nil, fmt.Errorf("interceptor not armed")
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(i.pollInterval)
	defer ticker.Stop()

	for {
		captured, err := i.drain()
		if err != nil {
			return nil, err
		}
		for _, resp := range captured {
			if resp.Generation != i.generation {
				continue
			}
			if i.method != "" && resp.Method != i.method {
				continue
			}
			if !i.matcher.Match(resp.URL) {
				continue
			}
			return parseAPIResult(resp), nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: no create-ticket response within %s", ErrTimeout, timeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (i *Interceptor) drain() ([]capturedResponse, error) {
	value, err := i.driver.Evaluate(drainScript)
	if err != nil {
		return nil, fmt.Errorf("failed to read captured responses: %w", err)
	}
	raw, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected capture payload type %T", value)
	}
	var captured []capturedResponse
	if err := json.Unmarshal([]byte(raw), &captured); err != nil {
		return nil, fmt.Errorf("failed to decode captured responses: %w", err)
	}
	return captured, nil
}

// parseAPIResult extracts the server-declared status field from the response
// body. The endpoint reports success as code 200 inside the JSON payload; an
// unparseable body counts as a failure, never as success.
func parseAPIResult(resp capturedResponse) *APIResult {
	var payload struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(resp.Body), &payload); err != nil {
		return &APIResult{
			Succeeded: false,
			Code:      resp.Status,
			Message:   fmt.Sprintf("unparseable response body (http %d)", resp.Status),
		}
	}
	return &APIResult{
		Succeeded: payload.Code == 200,
		Code:      payload.Code,
		Message:   payload.Message,
	}
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
