package workflow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Setiyoaryo/TicketAutomation/pkg/logging"
)

// scriptedRunner replays a fixed sequence of outcomes and records the
// interleaving of attempts and recoveries through the shared event log.
type scriptedRunner struct {
	outcomes []AttemptResult
	calls    int
	events   *[]string
}

func (r *scriptedRunner) RunAttempt(_ context.Context, item InputItem, attempt int) AttemptResult {
	*r.events = append(*r.events, fmt.Sprintf("attempt-%d", attempt))
	res := r.outcomes[r.calls]
	r.calls++
	res.Code = item.Code
	res.Attempt = attempt
	res.Timestamp = time.Now()
	return res
}

type scriptedRecoverer struct {
	err    error
	calls  int
	events *[]string
}

func (r *scriptedRecoverer) Recover(context.Context) error {
	r.calls++
	*r.events = append(*r.events, "recover")
	return r.err
}

func newTestSupervisor(outcomes []AttemptResult, recoverErr error) (*Supervisor, *scriptedRunner, *scriptedRecoverer, *[]string) {
	events := &[]string{}
	runner := &scriptedRunner{outcomes: outcomes, events: events}
	recoverer := &scriptedRecoverer{err: recoverErr, events: events}
	return NewSupervisor(runner, recoverer, 3, 0, logging.Discard()), runner, recoverer, events
}

func failure(msg string) AttemptResult {
	return AttemptResult{Outcome: OutcomeFailure, Message: msg, Err: fmt.Errorf("%s", msg)}
}

func success() AttemptResult {
	return AttemptResult{Outcome: OutcomeSuccess, Message: "Ticket created"}
}

func TestSubmitWithRetry_FirstAttemptSucceeds(t *testing.T) {
	sup, runner, recoverer, _ := newTestSupervisor([]AttemptResult{success()}, nil)

	res, err := sup.SubmitWithRetry(context.Background(), InputItem{Code: "DP-001"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, 1, res.Attempt)
	assert.Equal(t, 1, runner.calls)
	assert.Zero(t, recoverer.calls, "no recovery when the first attempt succeeds")
}

func TestSubmitWithRetry_RecoversBetweenAttempts(t *testing.T) {
	sup, runner, _, events := newTestSupervisor(
		[]AttemptResult{failure("api failure"), success()}, nil)

	res, err := sup.SubmitWithRetry(context.Background(), InputItem{Code: "DP-001"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, 2, res.Attempt)
	assert.Equal(t, 2, runner.calls)
	assert.Equal(t, []string{"attempt-1", "recover", "attempt-2"}, *events)
}

func TestSubmitWithRetry_ExhaustsAfterMaxAttempts(t *testing.T) {
	sup, runner, recoverer, events := newTestSupervisor(
		[]AttemptResult{failure("f1"), failure("f2"), failure("f3")}, nil)

	res, err := sup.SubmitWithRetry(context.Background(), InputItem{Code: "DP-002"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.Equal(t, 3, res.Attempt)
	assert.Equal(t, "f3", res.Message, "only the last result is returned")
	assert.Equal(t, 3, runner.calls)
	// recovery strictly between attempts, never after the final one
	assert.Equal(t, 2, recoverer.calls)
	assert.Equal(t, []string{"attempt-1", "recover", "attempt-2", "recover", "attempt-3"}, *events)
}

func TestSubmitWithRetry_AttemptCountBounds(t *testing.T) {
	for scripted := 1; scripted <= 5; scripted++ {
		outcomes := make([]AttemptResult, 0, scripted)
		for i := 0; i < scripted-1; i++ {
			outcomes = append(outcomes, failure("fail"))
		}
		outcomes = append(outcomes, success())

		sup, _, _, _ := newTestSupervisor(outcomes, nil)
		res, err := sup.SubmitWithRetry(context.Background(), InputItem{Code: "DP-001"})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Attempt, 1)
		assert.LessOrEqual(t, res.Attempt, 3)
	}
}

func TestSubmitWithRetry_OptionNotFoundIsRetriedAtItemLevel(t *testing.T) {
	notFound := AttemptResult{
		Outcome: OutcomeError,
		Message: "option not found",
		Err:     fmt.Errorf("field city: %w", ErrOptionNotFound),
	}
	sup, runner, _, _ := newTestSupervisor(
		[]AttemptResult{notFound, success()}, nil)

	res, err := sup.SubmitWithRetry(context.Background(), InputItem{Code: "DP-003"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, 2, runner.calls)
}

func TestSubmitWithRetry_SessionLostAbortsImmediately(t *testing.T) {
	lost := AttemptResult{
		Outcome: OutcomeError,
		Message: "session lost",
		Err:     fmt.Errorf("navigation: %w", ErrSessionLost),
	}
	sup, runner, recoverer, _ := newTestSupervisor(
		[]AttemptResult{lost, success()}, nil)

	res, err := sup.SubmitWithRetry(context.Background(), InputItem{Code: "DP-004"})
	require.Error(t, err)
	assert.True(t, IsSessionLost(err))
	assert.Equal(t, 1, runner.calls, "no retry once the session is gone")
	assert.Zero(t, recoverer.calls)
	assert.Equal(t, OutcomeError, res.Outcome)
}

func TestSubmitWithRetry_RecoveryFailureWithLostSession(t *testing.T) {
	sup, runner, _, _ := newTestSupervisor(
		[]AttemptResult{failure("f1"), success()},
		fmt.Errorf("refresh: %w", ErrSessionLost))

	_, err := sup.SubmitWithRetry(context.Background(), InputItem{Code: "DP-005"})
	require.Error(t, err)
	assert.True(t, IsSessionLost(err))
	assert.Equal(t, 1, runner.calls, "no further attempt after failed recovery")
}

func TestSubmitWithRetry_NonFatalRecoveryFailureFinalizes(t *testing.T) {
	sup, runner, _, _ := newTestSupervisor(
		[]AttemptResult{failure("f1"), success()},
		fmt.Errorf("listing page did not load"))

	res, err := sup.SubmitWithRetry(context.Background(), InputItem{Code: "DP-006"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailure, res.Outcome, "last attempt result stands when recovery cannot restore the page")
	assert.Equal(t, 1, runner.calls)
}

func TestNewSupervisor_ClampsMaxAttempts(t *testing.T) {
	sup := NewSupervisor(nil, nil, 0, 0, logging.Discard())
	assert.Equal(t, 1, sup.maxAttempts)
}
