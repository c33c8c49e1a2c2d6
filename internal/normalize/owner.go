package normalize

import (
	"regexp"
	"strings"
)

// businessKeywords flags owner names that are entities rather than
// people. Matching is substring over the upper-cased name, with
// trailing-boundary forms included so "CO " does not fire inside
// ordinary words.
var businessKeywords = []string{
	" LLC", " L.L.C", " LLP", " L.L.P", " INC", " CO ", " COMPANY",
	" CORPORATION", " CORP", " LP", " L.P", " LLLP", " PLLC", " PC",
	" TRUST", " TR ", " FOUNDATION", " ASSOCIATES", " HOLDINGS",
	" ENTERPRISE", " ENTERPRISES", " PROPERTIES", " PROPERTY", " GROUP",
	" INVEST", " PARTNERSHIP", " PARTNERS", " LIVING TRUST",
	" REVOCABLE", " FAMILY", " MANAGEMENT", " FUND", " ESTATE",
}

// legalSuffixes are trailing entity designators stripped during owner
// name normalization.
var legalSuffixes = []string{
	" LLC", " L.L.C.", " L.L.C",
	" INC", " INC.", " INCORPORATED",
	" CORP", " CORP.", " CORPORATION",
	" LTD", " LTD.", " LIMITED",
	" LP", " L.P.", " L.P",
	" LLP", " L.L.P.", " L.L.P",
	" LLLP", " PLLC",
	" CO", " CO.",
	" TRUST",
}

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// OwnerKey standardizes an owner name for equality comparison during
// disambiguation: upper-cased, one trailing legal suffix removed,
// punctuation stripped, spaces collapsed.
func OwnerKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = strings.ToUpper(name)

	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}

	name = strings.NewReplacer(
		",", "",
		".", "",
		"'", "",
		"\"", "",
		"&", "AND",
		"-", " ",
	).Replace(name)

	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// IsBusinessName reports whether an owner name refers to an entity
// rather than a person.
func IsBusinessName(name string) bool {
	upper := " " + strings.ToUpper(strings.TrimSpace(name)) + " "
	for _, kw := range businessKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}
