// Package model defines the records exchanged between the waitlist
// import pipeline, the matching engine, and the store.
package model

// WaitlistEntry is one normalized waitlist row awaiting a match.
// Built once by the entry builder and immutable afterward.
type WaitlistEntry struct {
	ID            string `json:"id"`
	WaitlistType  string `json:"waitlist_type"`
	WaitlistLabel string `json:"waitlist_label"`

	// Position is unique per waitlist type; duplicates are demoted to nil.
	Position *int `json:"position,omitempty"`

	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`

	// Derived canonical keys. CombinedKey covers line 1 + line 2;
	// Line1StrippedKey has unit designators removed before keying.
	Line1Key          string   `json:"line1_key"`
	Line2Key          string   `json:"line2_key,omitempty"`
	CombinedKey       string   `json:"combined_key"`
	Line1StrippedKey  string   `json:"line1_stripped_key"`
	StreetKey         string   `json:"street_key"`
	StreetStrippedKey string   `json:"street_stripped_key"`
	StreetSuffix      string   `json:"street_suffix,omitempty"`
	UnitKeys          []string `json:"unit_keys,omitempty"`
	StreetUnitKeys    []string `json:"street_unit_keys,omitempty"`
	ComplexHints      []string `json:"complex_hints,omitempty"`
	BuildingCodes     []string `json:"building_codes,omitempty"`

	// Provenance for diagnostics.
	SourceFile string `json:"source_file,omitempty"`
	SourceRow  int    `json:"source_row,omitempty"`
}

// HasUnitHints reports whether the entry carries any unit hint at all.
func (e *WaitlistEntry) HasUnitHints() bool {
	return len(e.UnitKeys) > 0
}

// DigitUnitKeys returns the all-digit subset of the entry's unit hints.
func (e *WaitlistEntry) DigitUnitKeys() []string {
	var digits []string
	for _, k := range e.UnitKeys {
		if isAllDigits(k) {
			digits = append(digits, k)
		}
	}
	return digits
}

// AlphaUnitKeys returns the purely alphabetic subset of the entry's
// unit hints.
func (e *WaitlistEntry) AlphaUnitKeys() []string {
	var alphas []string
	for _, k := range e.UnitKeys {
		if isAllLetters(k) {
			alphas = append(alphas, k)
		}
	}
	return alphas
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isAllLetters(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
