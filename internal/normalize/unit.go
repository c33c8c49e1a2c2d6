package normalize

import (
	"regexp"
	"strings"
)

var (
	designatorAlt    = strings.Join(unitDesignators, "|")
	unitPhraseRe     = regexp.MustCompile(`(?i)\b(?:` + designatorAlt + `)\.?\s*#?\s*([a-z0-9][a-z0-9-]*)`)
	hashUnitRe       = regexp.MustCompile(`#\s*([a-zA-Z0-9-]+)`)
	letterDigitRe    = regexp.MustCompile(`(?i)\b([a-z]{1,2})[- ]?(\d+)\b`)
	bareDigitsRe     = regexp.MustCompile(`\b(\d+)\b`)
	poBoxRe          = regexp.MustCompile(`(?i)\bp\.?\s*o\.?\s*box\b`)
	buildingPhraseRe = regexp.MustCompile(`(?i)\b(?:bldg|building)\.?\s*#?\s*([a-z0-9][a-z0-9-]*)`)
	stripUnitRe      = regexp.MustCompile(`(?i)\b(?:` + designatorAlt + `)\.?\s*#?\s*[a-z0-9][a-z0-9-]*`)
)

// UnitKey canonicalizes a unit value: non-alphanumerics stripped,
// lower-cased, and leading zeros removed when the remainder is all
// digits, so "04" and "#4" and "Unit 4" all share one key.
func UnitKey(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	key := b.String()
	if isDigits(key) {
		key = leadingZeroRe.ReplaceAllString(key, "$1")
	}
	return key
}

// CollectUnitTokens scans free text for unit hints and adds each
// canonical form to set. It recognizes designator phrases ("Unit B2",
// "Apt 4"), hash forms ("#12"), adjacent letter-digit pairs (yielding
// both "b2" and "2", since some buildings drop the letter prefix),
// bare digit runs, and the whole field itself when it is a short
// alphanumeric token that is not a PO-box reference.
func CollectUnitTokens(text string, set map[string]struct{}) {
	if strings.TrimSpace(text) == "" {
		return
	}

	add := func(raw string) {
		if key := UnitKey(raw); key != "" {
			set[key] = struct{}{}
		}
	}

	for _, m := range unitPhraseRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range hashUnitRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range letterDigitRe.FindAllStringSubmatch(text, -1) {
		add(m[1] + m[2])
		add(m[2])
	}
	for _, m := range bareDigitsRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}

	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= 8 && !strings.ContainsAny(trimmed, " \t") && !poBoxRe.MatchString(trimmed) {
		if key := UnitKey(trimmed); key != "" {
			set[key] = struct{}{}
		}
	}
}

// CollectInlineUnitTokens is the narrower scan used on full street
// lines: designator phrases, hash forms, and letter-digit pairs only.
// Bare digit runs are excluded so house numbers never become unit
// hints.
func CollectInlineUnitTokens(text string, set map[string]struct{}) {
	if strings.TrimSpace(text) == "" {
		return
	}
	add := func(raw string) {
		if key := UnitKey(raw); key != "" {
			set[key] = struct{}{}
		}
	}
	for _, m := range unitPhraseRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range hashUnitRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range letterDigitRe.FindAllStringSubmatch(text, -1) {
		add(m[1] + m[2])
		add(m[2])
	}
}

// StripUnitDesignators removes unit and building phrases ("Unit B2",
// "Bldg 3", "#12") from free text, returning the street-only remainder
// with whitespace collapsed.
func StripUnitDesignators(text string) string {
	out := stripUnitRe.ReplaceAllString(text, " ")
	out = hashUnitRe.ReplaceAllString(out, " ")
	return strings.Join(strings.Fields(out), " ")
}

// BuildingCodes returns the canonical building tokens referenced by
// "Bldg"/"Building" phrases in text.
func BuildingCodes(text string) []string {
	var codes []string
	seen := map[string]bool{}
	for _, m := range buildingPhraseRe.FindAllStringSubmatch(text, -1) {
		key := UnitKey(m[1])
		if key != "" && !seen[key] {
			seen[key] = true
			codes = append(codes, key)
		}
	}
	return codes
}
