package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/Setiyoaryo/TicketAutomation/pkg/logging"
)

// AttemptRunner runs one submission attempt. Satisfied by *Controller;
// substituted with fakes in tests.
type AttemptRunner interface {
	RunAttempt(ctx context.Context, item InputItem, attempt int) AttemptResult
}

// Recoverer restores the page to a fresh form state between attempts:
// refresh, re-navigate to the listing page, re-open the form context.
// Satisfied by *Orchestrator.
type Recoverer interface {
	Recover(ctx context.Context) error
}

// supervisorState enumerates the per-item retry state machine.
type supervisorState int

const (
	stateAttempting supervisorState = iota
	stateSucceeded
	stateFailedRetryable
	stateExhausted
)

// Supervisor wraps the attempt runner with bounded retry. Recovery happens
// strictly between consecutive attempts, never after the last one.
type Supervisor struct {
	runner      AttemptRunner
	recoverer   Recoverer
	maxAttempts int
	retryDelay  time.Duration
	log         *logging.Logger
}

// NewSupervisor builds a supervisor with the given retry budget.
func NewSupervisor(runner AttemptRunner, recoverer Recoverer, maxAttempts int, retryDelay time.Duration, log *logging.Logger) *Supervisor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Supervisor{
		runner:      runner,
		recoverer:   recoverer,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		log:         log,
	}
}

// SubmitWithRetry drives one item through the state machine and returns the
// final AttemptResult. Every attempt is logged for the audit trail; only the
// last result is returned. A non-nil error means the session is lost and the
// run must abort.
func (s *Supervisor) SubmitWithRetry(ctx context.Context, item InputItem) (AttemptResult, error) {
	attempt := 1
	state := stateAttempting
	var last AttemptResult

	for {
		switch state {
		case stateAttempting:
			last = s.runner.RunAttempt(ctx, item, attempt)
			s.log.Infof("item %s attempt %d/%d: %s (%s)",
				item.Code, attempt, s.maxAttempts, last.Outcome, last.Message)

			switch {
			case last.Outcome == OutcomeSuccess:
				state = stateSucceeded
			case IsSessionLost(last.Err):
				return last, fmt.Errorf("aborting run: %w", last.Err)
			case attempt >= s.maxAttempts:
				state = stateExhausted
			default:
				state = stateFailedRetryable
			}

		case stateFailedRetryable:
			// Recovery before the next attempt, never after the final one
			if err := s.recoverer.Recover(ctx); err != nil {
				if IsSessionLost(err) {
					last.Err = err
					return last, fmt.Errorf("recovery failed: %w", err)
				}
				s.log.Warnf("item %s: recovery failed, finalizing after attempt %d: %v", item.Code, attempt, err)
				return last, nil
			}
			if err := s.sleep(ctx); err != nil {
				return last, nil
			}
			attempt++
			state = stateAttempting

		case stateSucceeded, stateExhausted:
			return last, nil
		}
	}
}

func (s *Supervisor) sleep(ctx context.Context) error {
	if s.retryDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.retryDelay):
		return nil
	}
}
