// Package workflow implements the ticket-creation execution engine: the
// per-attempt form controller, the retry/recovery supervisor, response
// interception, and the run orchestrator. It talks to the browser only
// through the PageDriver interface.
package workflow

import (
	"time"

	"github.com/Setiyoaryo/TicketAutomation/pkg/config"
	"github.com/Setiyoaryo/TicketAutomation/pkg/data"
)

// InputItem is one unit of work: a DP code together with the dropdown target
// texts configured for it in the master data. Immutable once built; retries
// reuse the same item.
type InputItem struct {
	Code string
	City string
	RK   string

	// Missing marks codes from the daily input that have no master data
	// entry. They are reported without touching the browser.
	Missing bool
}

// Outcome classifies the result of one submission attempt.
type Outcome string

const (
	// OutcomeSuccess means the intercepted create-ticket response declared success.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailure means the attempt completed but did not succeed
	// (server-declared failure, listing mismatch, or response timeout).
	OutcomeFailure Outcome = "failure"

	// OutcomeError means the attempt aborted before submission
	// (option not found, session lost, item missing from master data).
	OutcomeError Outcome = "error"
)

// AttemptResult records the outcome of a single submission attempt.
// Append-only: never mutated after creation.
type AttemptResult struct {
	Code      string
	Attempt   int
	Outcome   Outcome
	Message   string
	Timestamp time.Time

	// Err carries the underlying error for classification by the
	// supervisor and orchestrator. Not part of the report artifact.
	Err error `json:"-"`
}

// DropdownOption is one entry of an open dropdown menu. Ephemeral: the handle
// is only valid while the menu is open.
type DropdownOption struct {
	Text       string
	Normalized string
	Handle     Element
}

// FieldKind distinguishes the fill strategies a form field can need.
type FieldKind int

const (
	// FieldText is a static input that just receives typed text.
	FieldText FieldKind = iota

	// FieldDropdown is a client-rendered selection menu whose options are
	// populated asynchronously and resolved by exact text match.
	FieldDropdown
)

// FormField describes one field of the filter form. The fill strategy is
// fixed when the schema is built, not inspected at fill time.
type FormField struct {
	Name  string
	Kind  FieldKind
	Input config.SelectorSet

	// Value extracts the text to fill from the work item.
	Value func(item InputItem) string
}

// FilterFormSchema builds the field schema for the DP listing filter form.
// All three fields are dynamic dropdowns on the current intranet build.
func FilterFormSchema(sel *config.Selectors) []FormField {
	return []FormField{
		{Name: "city", Kind: FieldDropdown, Input: sel.CityInput, Value: func(it InputItem) string { return it.City }},
		{Name: "rk", Kind: FieldDropdown, Input: sel.RKInput, Value: func(it InputItem) string { return it.RK }},
		{Name: "dp", Kind: FieldDropdown, Input: sel.DPInput, Value: func(it InputItem) string { return it.Code }},
	}
}

// BuildWorkItems pairs daily input codes with their master data entries,
// preserving input order. Codes without a master entry are marked Missing.
func BuildWorkItems(codes []string, master map[string]data.MasterEntry) []InputItem {
	items := make([]InputItem, 0, len(codes))
	for _, code := range codes {
		entry, ok := master[code]
		if !ok {
			items = append(items, InputItem{Code: code, Missing: true})
			continue
		}
		items = append(items, InputItem{Code: code, City: entry.City, RK: entry.RK})
	}
	return items
}
