package workflow

import (
	"fmt"
	"time"

	"github.com/Setiyoaryo/TicketAutomation/pkg/config"
)

// waitAny resolves the first selector of the fallback set that becomes
// visible. Selector sets exist because the intranet frontend gets rebuilt
// without notice; the specific selector is tried first, generic ones after.
func waitAny(d PageDriver, set config.SelectorSet, timeout time.Duration) (string, error) {
	var lastErr error
	for _, sel := range set {
		if err := d.WaitForSelector(sel, timeout); err != nil {
			lastErr = err
			continue
		}
		return sel, nil
	}
	if lastErr == nil {
		return "", fmt.Errorf("%w: empty selector set", ErrTimeout)
	}
	if IsSessionLost(lastErr) {
		return "", lastErr
	}
	return "", fmt.Errorf("%w: no selector resolved: %v", ErrTimeout, lastErr)
}

// clickAny waits for the first resolvable selector of the set and clicks it.
func clickAny(d PageDriver, set config.SelectorSet, waitTimeout, clickTimeout time.Duration) error {
	sel, err := waitAny(d, set, waitTimeout)
	if err != nil {
		return err
	}
	return d.Click(sel, clickTimeout)
}

// waitLoadingSettled waits for the loading overlay to clear. Best effort: a
// missing overlay is fine, a stuck one surfaces later as an element timeout.
func waitLoadingSettled(d PageDriver, overlays config.SelectorSet, timeout time.Duration) {
	for _, sel := range overlays {
		if err := d.WaitForHidden(sel, timeout); err == nil {
			return
		}
	}
}
