package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SelectorSet is an ordered list of fallback selectors for one element.
// Entries starting with "//" are treated as XPath by the browser layer,
// everything else as CSS. The first selector that resolves wins.
type SelectorSet []string

// Selectors is the per-deployment selector profile for the intranet pages.
// The built-in defaults target the current intranet markup; a YAML file can
// override any subset when the frontend changes.
type Selectors struct {
	UsernameInput SelectorSet `yaml:"username_input"`
	PasswordInput SelectorSet `yaml:"password_input"`
	LoginButton   SelectorSet `yaml:"login_button"`
	Sidebar       SelectorSet `yaml:"sidebar"`

	ConfiguringMenu SelectorSet `yaml:"configuring_menu"`
	DPMenu          SelectorSet `yaml:"dp_menu"`

	CityInput    SelectorSet `yaml:"city_input"`
	RKInput      SelectorSet `yaml:"rk_input"`
	DPInput      SelectorSet `yaml:"dp_input"`
	DropdownMenu SelectorSet `yaml:"dropdown_menu"`

	FilterButton     SelectorSet `yaml:"filter_button"`
	ListingTable     SelectorSet `yaml:"listing_table"`
	CreateTicketIcon SelectorSet `yaml:"create_ticket_icon"`

	FinalCreateButton   SelectorSet `yaml:"final_create_button"`
	ConfirmCreateButton SelectorSet `yaml:"confirm_create_button"`

	LoadingOverlay SelectorSet `yaml:"loading_overlay"`
}

// DefaultSelectors returns the selector profile for the current intranet build.
func DefaultSelectors() *Selectors {
	return &Selectors{
		UsernameInput: SelectorSet{"input[name='username']", "#username", "input[type='text']"},
		PasswordInput: SelectorSet{"input[name='password']", "#password", "input[type='password']"},
		LoginButton:   SelectorSet{"form button[type='submit']", ".btn-primary"},
		Sidebar:       SelectorSet{"#sidebar"},

		ConfiguringMenu: SelectorSet{"#sidebar > ul > li:nth-child(3) > ul > li:nth-child(1) > a", "a[href*='configuring']"},
		DPMenu:          SelectorSet{"#menu_0_1 > ul > li:nth-child(4) > a", "a[href*='dp']"},

		CityInput:    SelectorSet{"#vs1__combobox .vs__selected-options input", "[id*='vs1'] input", ".vs__search"},
		RKInput:      SelectorSet{"#vs2__combobox .vs__selected-options input", "[id*='vs2'] input"},
		DPInput:      SelectorSet{"#vs3__combobox .vs__selected-options input", "[id*='vs3'] input"},
		DropdownMenu: SelectorSet{"ul.vs__dropdown-menu li"},

		FilterButton:     SelectorSet{"#dp_comp a.btn.btn-primary", "button[type='submit']"},
		ListingTable:     SelectorSet{"#lists_dp"},
		CreateTicketIcon: SelectorSet{"#lists_dp > tbody > tr:first-child .btn-success i", ".btn-success"},

		FinalCreateButton:   SelectorSet{".v--modal-box .modal-body .row.justify-content-center a", ".modal-body .btn-primary"},
		ConfirmCreateButton: SelectorSet{".swal2-actions button.swal2-confirm", ".swal2-confirm"},

		LoadingOverlay: SelectorSet{"div.vld-background", ".loading"},
	}
}

// LoadSelectors returns the default profile merged with overrides from the
// given YAML file. An empty path returns the defaults unchanged.
func LoadSelectors(path string) (*Selectors, error) {
	sel := DefaultSelectors()
	if path == "" {
		return sel, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selector profile: %w", err)
	}

	var overrides Selectors
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse selector profile: %w", err)
	}

	sel.merge(&overrides)
	return sel, nil
}

// merge overwrites any field for which the override provides selectors.
func (s *Selectors) merge(o *Selectors) {
	mergeSet(&s.UsernameInput, o.UsernameInput)
	mergeSet(&s.PasswordInput, o.PasswordInput)
	mergeSet(&s.LoginButton, o.LoginButton)
	mergeSet(&s.Sidebar, o.Sidebar)
	mergeSet(&s.ConfiguringMenu, o.ConfiguringMenu)
	mergeSet(&s.DPMenu, o.DPMenu)
	mergeSet(&s.CityInput, o.CityInput)
	mergeSet(&s.RKInput, o.RKInput)
	mergeSet(&s.DPInput, o.DPInput)
	mergeSet(&s.DropdownMenu, o.DropdownMenu)
	mergeSet(&s.FilterButton, o.FilterButton)
	mergeSet(&s.ListingTable, o.ListingTable)
	mergeSet(&s.CreateTicketIcon, o.CreateTicketIcon)
	mergeSet(&s.FinalCreateButton, o.FinalCreateButton)
	mergeSet(&s.ConfirmCreateButton, o.ConfirmCreateButton)
	mergeSet(&s.LoadingOverlay, o.LoadingOverlay)
}

func mergeSet(dst *SelectorSet, src SelectorSet) {
	if len(src) > 0 {
		*dst = src
	}
}
