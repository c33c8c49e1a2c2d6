package normalize

// ComplexTokens extracts the word tokens usable as complex or
// subdivision name hints: alphabetic, at least three characters, and
// not a street suffix or directional. Both the entry builder (from
// address line 2) and the listing enricher (from the subdivision name)
// use this, so hint tokens compare across the two sides.
func ComplexTokens(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, tok := range tokenize(text) {
		if len(tok) < 3 || !isLetters(tok) {
			continue
		}
		if streetSuffixes[tok] || directionals[tok] {
			continue
		}
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}
