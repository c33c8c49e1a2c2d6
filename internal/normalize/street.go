package normalize

import "strings"

// StreetKey converts address text into a street-identity key, stricter
// than AddressKey: leading directional tokens are dropped, a trailing
// street-suffix token is dropped, and directionals appearing after the
// first numeric token are suppressed (house-number-adjacent
// directionals are noise for street comparison). The result lets a
// mailing line and a physical-address line that format the same street
// differently land on one key.
func StreetKey(text string) string {
	tokens := tokenize(text)

	for len(tokens) > 0 && directionals[tokens[0]] {
		tokens = tokens[1:]
	}

	seenNumeric := false
	kept := tokens[:0]
	for _, tok := range tokens {
		if seenNumeric && directionals[tok] {
			continue
		}
		if isDigits(tok) {
			seenNumeric = true
		}
		kept = append(kept, tok)
	}
	tokens = kept

	if n := len(tokens); n > 0 && streetSuffixes[tokens[n-1]] {
		tokens = tokens[:n-1]
	}

	return strings.Join(tokens, "")
}

// SuffixToken returns the last token of the normalized token stream
// that belongs to the street-suffix set, or "" when none is present.
func SuffixToken(text string) string {
	tokens := tokenize(text)
	for i := len(tokens) - 1; i >= 0; i-- {
		if streetSuffixes[tokens[i]] {
			return tokens[i]
		}
	}
	return ""
}

// StreetUnitKey combines a street key and a unit key into the
// composite lookup key used by the street-unit index. A composite is
// only meaningful when both halves are present.
func StreetUnitKey(streetKey, unitKey string) string {
	if streetKey == "" || unitKey == "" {
		return ""
	}
	return streetKey + "|" + unitKey
}
