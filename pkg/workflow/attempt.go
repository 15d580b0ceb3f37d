package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Setiyoaryo/TicketAutomation/pkg/config"
	"github.com/Setiyoaryo/TicketAutomation/pkg/logging"
)

// filterAttempts bounds how often the filter button is re-clicked when the
// listing shows stale results.
const filterAttempts = 3

// Controller runs one submission attempt for one work item: fill the filter
// form, validate the listing, click through the create-ticket modal, and
// classify the intercepted response. Each call is self-contained given a
// live session and fresh page state.
type Controller struct {
	driver      PageDriver
	cfg         *config.Config
	sel         *config.Selectors
	schema      []FormField
	interceptor *Interceptor
	log         *logging.Logger
}

// NewController builds the attempt controller, compiling the endpoint
// pattern and fixing the form schema up front.
func NewController(driver PageDriver, cfg *config.Config, sel *config.Selectors, log *logging.Logger) (*Controller, error) {
	interceptor, err := NewInterceptor(driver, cfg.EndpointPattern, "POST")
	if err != nil {
		return nil, err
	}
	return &Controller{
		driver:      driver,
		cfg:         cfg,
		sel:         sel,
		schema:      FilterFormSchema(sel),
		interceptor: interceptor,
		log:         log,
	}, nil
}

// RunAttempt performs one submission attempt. All errors are converted to an
// AttemptResult outcome; nothing panics or propagates except through Err.
func (c *Controller) RunAttempt(ctx context.Context, item InputItem, attempt int) AttemptResult {
	c.log.Debugf("attempt %d for %s: filling form", attempt, item.Code)

	for _, field := range c.schema {
		var err error
		switch field.Kind {
		case FieldText:
			err = c.fillText(field, field.Value(item))
		case FieldDropdown:
			err = c.fillDropdown(field, field.Value(item))
		}
		if err != nil {
			return c.classify(item, attempt, fmt.Errorf("field %s: %w", field.Name, err))
		}
	}

	if err := c.runFilter(ctx, item); err != nil {
		return c.classify(item, attempt, err)
	}

	if err := c.openCreateModal(); err != nil {
		return c.classify(item, attempt, err)
	}

	// Arm before the confirm click so the hook is live when the page fires
	// the create-ticket call. One generation per attempt; stale captures
	// from earlier attempts are discarded here.
	if err := c.interceptor.Arm(); err != nil {
		return c.classify(item, attempt, err)
	}

	if err := clickAny(c.driver, c.sel.ConfirmCreateButton, c.cfg.DefaultTimeout, c.cfg.ShortTimeout); err != nil {
		return c.classify(item, attempt, fmt.Errorf("confirm button: %w", err))
	}

	c.log.Debugf("attempt %d for %s: awaiting create-ticket response", attempt, item.Code)
	apiResult, err := c.interceptor.Await(ctx, c.cfg.APIResponseTimeout)
	if err != nil {
		return c.classify(item, attempt, err)
	}

	if !apiResult.Succeeded {
		failure := &APIFailure{Code: apiResult.Code, Message: apiResult.Message}
		return c.result(item, attempt, OutcomeFailure, failure.Error(), failure)
	}
	return c.result(item, attempt, OutcomeSuccess, apiResult.Message, nil)
}

// classify maps an attempt-level error to the outcome taxonomy.
func (c *Controller) classify(item InputItem, attempt int, err error) AttemptResult {
	switch {
	case IsSessionLost(err):
		return c.result(item, attempt, OutcomeError, "session lost: "+err.Error(), err)
	case errors.Is(err, ErrOptionNotFound), errors.Is(err, ErrAmbiguousOption):
		return c.result(item, attempt, OutcomeError, err.Error(), err)
	default:
		// Timeouts, listing failures, and element errors are retryable failures
		return c.result(item, attempt, OutcomeFailure, err.Error(), err)
	}
}

func (c *Controller) result(item InputItem, attempt int, outcome Outcome, message string, err error) AttemptResult {
	return AttemptResult{
		Code:      item.Code,
		Attempt:   attempt,
		Outcome:   outcome,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// fillText types a value into a static input.
func (c *Controller) fillText(field FormField, value string) error {
	sel, err := waitAny(c.driver, field.Input, c.cfg.DefaultTimeout)
	if err != nil {
		return err
	}
	return c.driver.Fill(sel, value, c.cfg.ShortTimeout)
}

// fillDropdown opens a dynamic dropdown, types the target to narrow the
// option list, reads the live menu, and clicks the exact match.
func (c *Controller) fillDropdown(field FormField, target string) error {
	inputSel, err := waitAny(c.driver, field.Input, c.cfg.DefaultTimeout)
	if err != nil {
		return err
	}
	if err := c.driver.Click(inputSel, c.cfg.ShortTimeout); err != nil {
		return fmt.Errorf("failed to open dropdown: %w", err)
	}
	// Clear any previous selection text before narrowing
	_ = c.driver.Fill(inputSel, "", c.cfg.ShortTimeout)
	if err := c.driver.Type(inputSel, target, c.cfg.ShortTimeout); err != nil {
		return fmt.Errorf("failed to type filter text: %w", err)
	}

	menuSel, err := waitAny(c.driver, c.sel.DropdownMenu, c.cfg.ShortTimeout)
	if err != nil {
		return fmt.Errorf("menu did not open: %w", err)
	}

	handles, err := c.driver.QueryAll(menuSel)
	if err != nil {
		return fmt.Errorf("failed to read menu options: %w", err)
	}
	options := make([]DropdownOption, 0, len(handles))
	for _, handle := range handles {
		text, terr := handle.Text()
		if terr != nil {
			continue
		}
		options = append(options, DropdownOption{
			Text:       text,
			Normalized: NormalizeText(text),
			Handle:     handle,
		})
	}

	option, err := ResolveOption(options, target)
	if err != nil {
		return err
	}
	if err := option.Handle.Click(); err != nil {
		return fmt.Errorf("failed to select option %q: %w", option.Text, err)
	}
	return nil
}

// runFilter clicks the filter button and validates that the listing shows
// exactly the expected DP code, re-clicking on stale results.
func (c *Controller) runFilter(ctx context.Context, item InputItem) error {
	filterSel, err := waitAny(c.driver, c.sel.FilterButton, c.cfg.DefaultTimeout)
	if err != nil {
		return fmt.Errorf("filter button: %w", err)
	}

	last := FilterPending
	for try := 0; try < filterAttempts; try++ {
		if err := c.driver.Click(filterSel, c.cfg.ShortTimeout); err != nil {
			return fmt.Errorf("filter click: %w", err)
		}
		waitLoadingSettled(c.driver, c.sel.LoadingOverlay, c.cfg.DefaultTimeout)

		validation, got, err := c.pollListing(ctx, item.Code)
		if err != nil {
			return err
		}
		switch validation {
		case FilterMatch:
			return nil
		case FilterNoData:
			return fmt.Errorf("%w for %s", ErrNoData, item.Code)
		case FilterMismatch:
			c.log.Debugf("listing shows %q, expected %q, re-running filter", got, item.Code)
		}
		last = validation
	}
	return fmt.Errorf("listing validation failed for %s after %d filter attempts (last state: %s)",
		item.Code, filterAttempts, last)
}

// pollListing re-reads the page until the table settles into a decisive state.
func (c *Controller) pollListing(ctx context.Context, expectedCode string) (FilterValidation, string, error) {
	tableSel := c.sel.ListingTable[0]
	deadline := time.Now().Add(c.cfg.ShortTimeout)
	interval := 500 * time.Millisecond

	last := FilterPending
	lastGot := ""
	for {
		html, err := c.driver.Content()
		if err != nil {
			return FilterPending, "", fmt.Errorf("failed to read listing page: %w", err)
		}
		validation, got, err := ValidateFilterResult(html, tableSel, expectedCode)
		if err != nil {
			return FilterPending, "", err
		}
		if validation != FilterPending {
			return validation, got, nil
		}
		last, lastGot = validation, got

		if time.Now().After(deadline) {
			return last, lastGot, nil
		}
		select {
		case <-ctx.Done():
			return last, lastGot, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// openCreateModal clicks from the listing row into the final create button.
func (c *Controller) openCreateModal() error {
	if err := clickAny(c.driver, c.sel.CreateTicketIcon, c.cfg.DefaultTimeout, c.cfg.ShortTimeout); err != nil {
		return fmt.Errorf("create ticket icon: %w", err)
	}
	waitLoadingSettled(c.driver, c.sel.LoadingOverlay, c.cfg.DefaultTimeout)
	if err := clickAny(c.driver, c.sel.FinalCreateButton, c.cfg.DefaultTimeout, c.cfg.ShortTimeout); err != nil {
		return fmt.Errorf("create button: %w", err)
	}
	return nil
}
