package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Setiyoaryo/TicketAutomation/pkg/config"
	"github.com/Setiyoaryo/TicketAutomation/pkg/logging"
)

// loginAttempts bounds the initial login. Login happens once per run; the
// supervisor may refresh the page but never re-authenticates mid-run.
const loginAttempts = 3

// ItemSubmitter drives one item to its final outcome. Satisfied by
// *Supervisor; substituted with fakes in tests.
type ItemSubmitter interface {
	SubmitWithRetry(ctx context.Context, item InputItem) (AttemptResult, error)
}

// Orchestrator owns the full run: login, navigation to the DP listing page,
// the sequential item loop, and report accumulation. It also implements
// Recoverer for the supervisor, restoring page state between attempts.
type Orchestrator struct {
	driver    PageDriver
	cfg       *config.Config
	sel       *config.Selectors
	submitter ItemSubmitter
	log       *logging.Logger
}

// NewOrchestrator wires the attempt controller and retry supervisor around
// the given driver.
func NewOrchestrator(driver PageDriver, cfg *config.Config, sel *config.Selectors, log *logging.Logger) (*Orchestrator, error) {
	o := &Orchestrator{
		driver: driver,
		cfg:    cfg,
		sel:    sel,
		log:    log,
	}

	controller, err := NewController(driver, cfg, sel, log)
	if err != nil {
		return nil, err
	}
	o.submitter = NewSupervisor(controller, o, cfg.MaxRetries, cfg.RetryDelay, log)
	return o, nil
}

// Run processes every item strictly sequentially and always returns a report
// covering all of them. A failed item never aborts the run; a lost session
// does, with the remaining items marked and the report flushed as-is.
func (o *Orchestrator) Run(ctx context.Context, items []InputItem) (*RunReport, error) {
	report := NewRunReport(o.log.RunID())
	o.log.Infof("starting run: %d items", len(items))

	if err := o.Login(ctx); err != nil {
		o.failRemaining(report, items, 0, "login failed")
		report.Finalize()
		return report, err
	}
	if err := o.NavigateToListing(ctx); err != nil {
		o.failRemaining(report, items, 0, "navigation failed")
		report.Finalize()
		return report, fmt.Errorf("initial navigation: %w", err)
	}

	for i, item := range items {
		// Cancellation is honored between items only, so no intercept
		// hook is ever left armed without a matching await.
		if err := ctx.Err(); err != nil {
			o.log.Warnf("run cancelled before item %s", item.Code)
			o.failRemaining(report, items, i, "run cancelled")
			report.Finalize()
			return report, err
		}

		if item.Missing {
			o.log.Warnf("[%d/%d] skipping %s: not in master data", i+1, len(items), item.Code)
			report.AddError(item.Code, "not in master data")
			continue
		}

		o.log.Infof("[%d/%d] processing %s", i+1, len(items), item.Code)
		res, err := o.submitter.SubmitWithRetry(ctx, item)
		report.Add(res)
		if err != nil {
			o.log.Errorf("session lost while processing %s: %v", item.Code, err)
			o.failRemaining(report, items, i+1, "session lost")
			report.Finalize()
			return report, fmt.Errorf("%w: %v", ErrSessionLost, err)
		}
	}

	report.Finalize()
	o.log.Infof("run complete: %s", report.Summary())
	return report, nil
}

// Login authenticates the session, retrying a bounded number of times.
func (o *Orchestrator) Login(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= loginAttempts; attempt++ {
		o.log.Infof("login attempt %d/%d", attempt, loginAttempts)
		if lastErr = o.tryLogin(ctx); lastErr == nil {
			o.log.Infof("login successful")
			return nil
		}
		o.log.Warnf("login attempt %d failed: %v", attempt, lastErr)

		if attempt < loginAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.cfg.RetryDelay):
			}
		}
	}
	return fmt.Errorf("%w: login failed after %d attempts: %v", ErrSessionLost, loginAttempts, lastErr)
}

func (o *Orchestrator) tryLogin(ctx context.Context) error {
	if err := o.driver.Navigate(ctx, o.cfg.LoginURL); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}

	userSel, err := waitAny(o.driver, o.sel.UsernameInput, o.cfg.DefaultTimeout)
	if err != nil {
		return fmt.Errorf("username field: %w", err)
	}
	if err := o.driver.Fill(userSel, o.cfg.Username, o.cfg.ShortTimeout); err != nil {
		return fmt.Errorf("username field: %w", err)
	}

	passSel, err := waitAny(o.driver, o.sel.PasswordInput, o.cfg.DefaultTimeout)
	if err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	if err := o.driver.Fill(passSel, o.cfg.Password, o.cfg.ShortTimeout); err != nil {
		return fmt.Errorf("password field: %w", err)
	}

	if err := clickAny(o.driver, o.sel.LoginButton, o.cfg.DefaultTimeout, o.cfg.ShortTimeout); err != nil {
		return fmt.Errorf("login button: %w", err)
	}

	if _, err := waitAny(o.driver, o.sel.Sidebar, o.cfg.LongTimeout); err != nil {
		return fmt.Errorf("sidebar never appeared: %w", err)
	}
	if strings.Contains(strings.ToLower(o.driver.CurrentURL()), "login") {
		return fmt.Errorf("still on login page after submit")
	}
	return nil
}

// NavigateToListing walks the sidebar to the DP listing page and confirms
// the filter form is present.
func (o *Orchestrator) NavigateToListing(ctx context.Context) error {
	if err := clickAny(o.driver, o.sel.ConfiguringMenu, o.cfg.DefaultTimeout, o.cfg.ShortTimeout); err != nil {
		return fmt.Errorf("configuring menu: %w", err)
	}
	if err := clickAny(o.driver, o.sel.DPMenu, o.cfg.DefaultTimeout, o.cfg.ShortTimeout); err != nil {
		return fmt.Errorf("dp menu: %w", err)
	}
	waitLoadingSettled(o.driver, o.sel.LoadingOverlay, o.cfg.LongTimeout)

	if _, err := waitAny(o.driver, o.sel.CityInput, o.cfg.ShortTimeout); err != nil {
		return fmt.Errorf("dp listing page did not load: %w", err)
	}
	return nil
}

// Recover restores fresh page state between attempts: refresh the current
// page and walk back to the listing form. Never re-authenticates; a session
// that fails recovery is lost.
func (o *Orchestrator) Recover(ctx context.Context) error {
	o.log.Infof("recovering page state")
	if err := o.driver.Refresh(ctx); err != nil {
		if IsSessionLost(err) {
			return fmt.Errorf("%w: refresh failed: %v", ErrSessionLost, err)
		}
		return fmt.Errorf("refresh failed: %w", err)
	}
	waitLoadingSettled(o.driver, o.sel.LoadingOverlay, o.cfg.LongTimeout)

	if err := o.NavigateToListing(ctx); err != nil {
		if IsSessionLost(err) {
			return fmt.Errorf("%w: %v", ErrSessionLost, err)
		}
		return err
	}
	return nil
}

func (o *Orchestrator) failRemaining(report *RunReport, items []InputItem, from int, message string) {
	for _, item := range items[from:] {
		report.AddError(item.Code, message)
	}
}
