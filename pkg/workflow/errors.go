package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure taxonomy. Per-attempt errors are converted
// to AttemptResult outcomes by the controller; only the session-lost class
// propagates past the orchestrator and aborts the run.
var (
	// ErrOptionNotFound means no dropdown option matched the target text exactly.
	ErrOptionNotFound = errors.New("option not found")

	// ErrAmbiguousOption means more than one dropdown option normalized to the
	// target text. Never silently resolved by picking one.
	ErrAmbiguousOption = errors.New("ambiguous option")

	// ErrTimeout covers navigation, element, and API-response waits that
	// expired. Retryable.
	ErrTimeout = errors.New("timeout")

	// ErrSessionLost means the authenticated session is unusable
	// (auth expired, connectivity broken). Fatal for the whole run.
	ErrSessionLost = errors.New("session lost")

	// ErrNoData means the listing filter returned no rows for the item.
	ErrNoData = errors.New("no data in listing")
)

// APIFailure is a server-declared failure from the create-ticket endpoint.
// Retryable: the server processed the request and said no.
type APIFailure struct {
	Code    int
	Message string
}

func (e *APIFailure) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api failure (code %d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("api failure (code %d)", e.Code)
}

// IsSessionLost reports whether err belongs to the run-fatal class.
// Driver errors that look like a dead session (target closed, disconnected)
// are classified here as well, since the adapter cannot always tag them.
func IsSessionLost(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSessionLost) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"target closed", "browser has been closed", "context was destroyed", "connection refused"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
