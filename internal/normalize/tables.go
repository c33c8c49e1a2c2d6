package normalize

import "strings"

// The tables below are fixed configuration data. They are populated at
// package init and must not be mutated after startup; ApplyTypoOverrides
// swaps in a merged copy once during config load.

// typoCorrections maps known misspellings to their corrected form.
// Applied whole-word and case-preserving before any other step so the
// rest of the pipeline only ever sees corrected spellings.
var typoCorrections = map[string]string{
	"mountian":     "mountain",
	"moutain":      "mountain",
	"streeet":      "street",
	"circel":       "circle",
	"penninsula":   "peninsula",
	"silverthore":  "silverthorne",
	"breckenride":  "breckenridge",
	"breckinridge": "breckenridge",
	"dillion":      "dillon",
}

// tokenAliases maps long-form road-type and directional words to the
// standard abbreviation used in canonical keys. Tokens already in
// abbreviated form pass through untouched, so both sides of a match
// converge on the same key.
var tokenAliases = map[string]string{
	"avenue":    "ave",
	"av":        "ave",
	"boulevard": "blvd",
	"circle":    "cir",
	"court":     "ct",
	"crt":       "ct",
	"drive":     "dr",
	"drv":       "dr",
	"highway":   "hwy",
	"lane":      "ln",
	"loop":      "loop",
	"mount":     "mt",
	"mountain":  "mtn",
	"parkway":   "pkwy",
	"pky":       "pkwy",
	"place":     "pl",
	"point":     "pt",
	"road":      "rd",
	"square":    "sq",
	"street":    "st",
	"str":       "st",
	"terrace":   "ter",
	"trail":     "trl",
	"crossing":  "xing",
	"heights":   "hts",
	"north":     "n",
	"south":     "s",
	"east":      "e",
	"west":      "w",
	"northeast": "ne",
	"northwest": "nw",
	"southeast": "se",
	"southwest": "sw",
}

// ignoreTokens lists tokens that never distinguish one street address
// from another and are dropped from canonical keys.
var ignoreTokens = map[string]bool{
	"unit":      true,
	"apt":       true,
	"apartment": true,
	"suite":     true,
	"ste":       true,
	"lot":       true,
	"room":      true,
	"rm":        true,
	"bldg":      true,
	"building":  true,
	"trlr":      true,
	"po":        true,
	"box":       true,
	"county":    true,
}

// streetSuffixes is the fixed set of canonical street-suffix tokens
// (post alias mapping) recognized by getStreetSuffixToken and dropped
// from the tail of street-only keys.
var streetSuffixes = map[string]bool{
	"rd":   true,
	"dr":   true,
	"st":   true,
	"ave":  true,
	"blvd": true,
	"ln":   true,
	"ct":   true,
	"cir":  true,
	"pl":   true,
	"trl":  true,
	"ter":  true,
	"pkwy": true,
	"hwy":  true,
	"way":  true,
	"loop": true,
	"sq":   true,
	"pt":   true,
	"xing": true,
	"run":  true,
	"pass": true,
}

// directionals is the set of canonical directional tokens (post alias
// mapping).
var directionals = map[string]bool{
	"n":  true,
	"s":  true,
	"e":  true,
	"w":  true,
	"ne": true,
	"nw": true,
	"se": true,
	"sw": true,
}

// unitDesignators lists the words that introduce a unit, apartment,
// suite, or building token inside free address text.
var unitDesignators = []string{
	"unit", "apt", "apartment", "suite", "ste", "lot", "trlr", "room", "bldg", "building",
}

// ApplyTypoOverrides merges operator-supplied corrections over the
// built-in table. Must be called at most once, during startup, before
// any normalization runs.
func ApplyTypoOverrides(overrides map[string]string) {
	if len(overrides) == 0 {
		return
	}
	merged := make(map[string]string, len(typoCorrections)+len(overrides))
	for k, v := range typoCorrections {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[strings.ToLower(k)] = strings.ToLower(v)
	}
	typoCorrections = merged
}
