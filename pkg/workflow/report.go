package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ItemResult is the final outcome recorded for one work item.
type ItemResult struct {
	Code       string    `json:"code"`
	Outcome    Outcome   `json:"outcome"`
	Attempts   int       `json:"attempts"`
	Message    string    `json:"message,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// RunReport aggregates the final per-item outcomes of a run. Built
// incrementally in input order, finalized and written exactly once.
type RunReport struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Total      int          `json:"total"`
	Succeeded  int          `json:"succeeded"`
	Failed     int          `json:"failed"`
	Errored    int          `json:"errored"`
	Items      []ItemResult `json:"items"`
}

// NewRunReport starts an empty report for the given run.
func NewRunReport(runID string) *RunReport {
	return &RunReport{
		RunID:     runID,
		StartedAt: time.Now(),
	}
}

// Add records the final AttemptResult for one item.
func (r *RunReport) Add(res AttemptResult) {
	r.Items = append(r.Items, ItemResult{
		Code:       res.Code,
		Outcome:    res.Outcome,
		Attempts:   res.Attempt,
		Message:    res.Message,
		FinishedAt: res.Timestamp,
	})
}

// AddError records a terminal error outcome for an item that never reached
// the browser (missing master data, session lost, run cancelled).
func (r *RunReport) AddError(code, message string) {
	r.Items = append(r.Items, ItemResult{
		Code:       code,
		Outcome:    OutcomeError,
		Message:    message,
		FinishedAt: time.Now(),
	})
}

// Finalize computes the aggregate counts and stamps the end time.
// Idempotent on counts; the end time is only set once.
func (r *RunReport) Finalize() {
	r.Total = len(r.Items)
	r.Succeeded, r.Failed, r.Errored = 0, 0, 0
	for _, item := range r.Items {
		switch item.Outcome {
		case OutcomeSuccess:
			r.Succeeded++
		case OutcomeFailure:
			r.Failed++
		default:
			r.Errored++
		}
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
}

// Summary renders the human-readable closing lines for the run log.
func (r *RunReport) Summary() string {
	duration := r.FinishedAt.Sub(r.StartedAt).Round(time.Second)
	summary := fmt.Sprintf("total: %d | succeeded: %d | failed: %d | errored: %d | duration: %s",
		r.Total, r.Succeeded, r.Failed, r.Errored, duration)

	attempted := r.Total - r.Errored
	if attempted > 0 {
		rate := float64(r.Succeeded) / float64(attempted) * 100
		summary += fmt.Sprintf(" | success rate: %.1f%%", rate)
	}
	if minutes := duration.Minutes(); minutes > 0 && r.Succeeded > 0 {
		summary += fmt.Sprintf(" | %.1f tickets/minute", float64(r.Succeeded)/minutes)
	}
	return summary
}

// WriteFile writes the report artifact as indented JSON under dir and
// returns the path.
func (r *RunReport) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-report.json", r.RunID))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return path, nil
}
