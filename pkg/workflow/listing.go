package workflow

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FilterValidation classifies the listing table state after the filter runs.
type FilterValidation int

const (
	// FilterMatch: the first row shows the expected DP code.
	FilterMatch FilterValidation = iota

	// FilterNoData: the table reports no rows for the filter.
	FilterNoData

	// FilterMismatch: the first row shows a different code, usually a stale
	// result from before the filter finished.
	FilterMismatch

	// FilterPending: no rows and no empty-state message yet; the table is
	// still loading.
	FilterPending
)

func (v FilterValidation) String() string {
	switch v {
	case FilterMatch:
		return "match"
	case FilterNoData:
		return "no data"
	case FilterMismatch:
		return "mismatch"
	case FilterPending:
		return "pending"
	default:
		return "unknown"
	}
}

// ValidateFilterResult parses the page HTML and checks the listing table
// against the expected DP code. The DP code is the second column of the
// first result row.
func ValidateFilterResult(html, tableSelector, expectedCode string) (FilterValidation, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return FilterPending, "", fmt.Errorf("failed to parse listing page: %w", err)
	}

	table := doc.Find(tableSelector).First()
	if table.Length() == 0 {
		return FilterPending, "", nil
	}

	// DataTables renders its empty state as a single cell
	empty := table.Find("td.dataTables_empty")
	if empty.Length() > 0 {
		return FilterNoData, strings.TrimSpace(empty.Text()), nil
	}
	noData := false
	table.Find("tbody td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if strings.Contains(cell.Text(), "No data available in table") {
			noData = true
			return false
		}
		return true
	})
	if noData {
		return FilterNoData, "No data available in table", nil
	}

	firstRow := table.Find("tbody tr").First()
	if firstRow.Length() == 0 {
		return FilterPending, "", nil
	}

	codeCell := firstRow.Find("td").Eq(1)
	got := strings.TrimSpace(codeCell.Text())
	if got == "" {
		return FilterPending, "", nil
	}
	if got != expectedCode {
		return FilterMismatch, got, nil
	}
	return FilterMatch, got, nil
}
