package workflow

import (
	"fmt"
	"strings"
)

// NormalizeText collapses runs of whitespace to single spaces and trims the
// ends, matching how the browser renders option labels.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ResolveOption finds the menu option whose normalized text exactly equals
// the normalized target. Substring and prefix matches never count: dynamic
// menus routinely contain entries that are prefixes of each other (DP-1 vs
// DP-10) and a fuzzy match would pick the wrong one.
//
// Zero matches returns ErrOptionNotFound. Multiple identical matches returns
// the first in document order together with ErrAmbiguousOption; callers must
// treat that as a failure, not a resolution.
func ResolveOption(options []DropdownOption, target string) (*DropdownOption, error) {
	want := NormalizeText(target)

	var first *DropdownOption
	matches := 0
	for i := range options {
		norm := options[i].Normalized
		if norm == "" {
			norm = NormalizeText(options[i].Text)
		}
		if norm == want {
			if first == nil {
				first = &options[i]
			}
			matches++
		}
	}

	if first == nil {
		return nil, fmt.Errorf("%w: %q among %d options", ErrOptionNotFound, target, len(options))
	}
	if matches > 1 {
		return first, fmt.Errorf("%w: %q matched %d options", ErrAmbiguousOption, target, matches)
	}
	return first, nil
}
