// Package normalize provides the deterministic, pure text transforms
// that turn raw address and unit strings into canonical lookup keys.
// Every function here is side-effect-free; the waitlist entry builder
// and the listing enricher compose the same functions so that both
// sides of a match derive identical keys from equivalent text.
package normalize

import (
	"regexp"
	"strings"
)

var (
	smartQuoteReplacer = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
	)
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	nonAlnumRe      = regexp.MustCompile(`[^a-z0-9]+`)
	countyRoadRe    = regexp.MustCompile(`(?i)\b(?:CR|CO\.?\s+RD)\b\.?`)
	leadingZeroRe   = regexp.MustCompile(`^0+(\d)`)
)

// SanitizeLine trims a raw cell value, normalizes curly quotes to
// straight quotes, and strips one layer of surrounding matching quotes.
func SanitizeLine(raw string) string {
	s := strings.TrimSpace(smartQuoteReplacer.Replace(raw))
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// CorrectKnownTypos replaces known misspellings whole-word, preserving
// the casing of the original token. Runs before every other transform
// so downstream steps only see corrected spellings.
func CorrectKnownTypos(text string) string {
	if text == "" {
		return ""
	}
	fields := strings.FieldsSeq(text)
	var out []string
	changed := false
	for field := range fields {
		word := strings.Trim(field, ".,")
		corrected, ok := typoCorrections[strings.ToLower(word)]
		if !ok {
			out = append(out, field)
			continue
		}
		changed = true
		out = append(out, strings.Replace(field, word, matchCase(word, corrected), 1))
	}
	if !changed {
		return text
	}
	return strings.Join(out, " ")
}

// matchCase renders correction in the casing style of the original
// token: all upper, title, or lower.
func matchCase(original, correction string) string {
	switch {
	case original == strings.ToUpper(original):
		return strings.ToUpper(correction)
	case len(original) > 0 && original[:1] == strings.ToUpper(original[:1]):
		return strings.ToUpper(correction[:1]) + correction[1:]
	default:
		return correction
	}
}

// ExpandStreetAbbreviations rewrites the short county-road forms
// ("CR 213", "CO RD 213") to "county road 213" so the later alias
// mapping, which only recognizes expanded or already-canonical forms,
// produces the same key as a spelled-out mailing line.
func ExpandStreetAbbreviations(text string) string {
	return countyRoadRe.ReplaceAllString(text, "county road")
}

// StripParentheticals removes (...) spans. Parenthetical text is
// secondary description and must not affect address identity.
func StripParentheticals(text string) string {
	if !strings.Contains(text, "(") {
		return text
	}
	return strings.TrimSpace(parentheticalRe.ReplaceAllString(text, " "))
}

// CleanLine runs the pre-tokenization pipeline shared by the entry and
// listing sides: sanitize, correct typos, expand county-road forms,
// strip parentheticals.
func CleanLine(raw string) string {
	return StripParentheticals(ExpandStreetAbbreviations(CorrectKnownTypos(SanitizeLine(raw))))
}

// tokenize lower-cases text, collapses every non-alphanumeric run to a
// single space, splits into tokens, drops ignore-set tokens, maps each
// through the alias table, and strips leading zeros from numeric
// tokens. This is the shared core under AddressKey and StreetKey.
func tokenize(text string) []string {
	lowered := nonAlnumRe.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(lowered)
	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		if ignoreTokens[tok] {
			continue
		}
		if alias, ok := tokenAliases[tok]; ok {
			tok = alias
		}
		if isDigits(tok) {
			tok = leadingZeroRe.ReplaceAllString(tok, "$1")
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// AddressKey converts free address text into its canonical key: the
// alias-mapped, ignore-filtered token stream concatenated with no
// separator. Equivalent addresses modulo abbreviation, case, and
// punctuation normalize to the same key, and re-normalizing a
// canonical key returns it unchanged.
func AddressKey(text string) string {
	return strings.Join(tokenize(text), "")
}

// PrimaryLine returns only the first line and first comma segment of a
// multi-line or comma-joined physical-address field. Reference data
// often embeds city/state after a comma on the same field.
func PrimaryLine(text string) string {
	if i := strings.IndexAny(text, "\n\r"); i >= 0 {
		text = text[:i]
	}
	if i := strings.Index(text, ","); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

func isDigits(s string) bool {
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

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
