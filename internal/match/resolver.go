package match

import (
	"strings"

	"github.com/summit-housing/waitlist-cli/internal/model"
)

// attempt describes one rung of the cascade: which index to consult,
// which entry keys to look up, and the type tag a success carries.
type attempt struct {
	typ   model.MatchType
	index func(ix *Index) map[string][]*model.EnrichedListing
	keys  func(e *model.WaitlistEntry) []string
}

func one(key string) []string {
	if key == "" {
		return nil
	}
	return []string{key}
}

// cascade is evaluated strictly in order; the first attempt whose key
// finds candidates and disambiguates to a single listing wins.
var cascade = []attempt{
	{
		typ:   model.MatchMailingAddress,
		index: func(ix *Index) map[string][]*model.EnrichedListing { return ix.mailingExact },
		keys:  func(e *model.WaitlistEntry) []string { return one(e.CombinedKey) },
	},
	{
		typ:   model.MatchMailingLine1,
		index: func(ix *Index) map[string][]*model.EnrichedListing { return ix.mailingLine1 },
		keys:  func(e *model.WaitlistEntry) []string { return one(e.Line1Key) },
	},
	{
		typ:   model.MatchMailingStreet,
		index: func(ix *Index) map[string][]*model.EnrichedListing { return ix.mailingStreet },
		keys:  func(e *model.WaitlistEntry) []string { return one(e.StreetKey) },
	},
	{
		typ:   model.MatchPhysicalStreetUnit,
		index: func(ix *Index) map[string][]*model.EnrichedListing { return ix.streetUnit },
		keys:  func(e *model.WaitlistEntry) []string { return e.StreetUnitKeys },
	},
	{
		typ:   model.MatchPhysicalPrimary,
		index: func(ix *Index) map[string][]*model.EnrichedListing { return ix.physicalPrimary },
		keys:  func(e *model.WaitlistEntry) []string { return one(e.Line1Key) },
	},
	{
		typ:   model.MatchPhysicalStreet,
		index: func(ix *Index) map[string][]*model.EnrichedListing { return ix.physicalStreet },
		keys:  func(e *model.WaitlistEntry) []string { return one(e.Line1StrippedKey) },
	},
	{
		typ:   model.MatchPhysicalStreetCanon,
		index: func(ix *Index) map[string][]*model.EnrichedListing { return ix.streetCanonical },
		keys:  func(e *model.WaitlistEntry) []string { return one(e.StreetStrippedKey) },
	},
	{
		typ:   model.MatchPhysicalStreetCanonFul,
		index: func(ix *Index) map[string][]*model.EnrichedListing { return ix.streetCanonical },
		keys:  func(e *model.WaitlistEntry) []string { return one(e.StreetKey) },
	},
}

// Resolve runs the cascade for one entry. It returns the match, if
// any, and at most one low-confidence sample describing the first
// attempt that found candidates but could not narrow them to one.
func Resolve(e *model.WaitlistEntry, ix *Index) (*model.Match, *model.LowConfidenceSample) {
	var sample *model.LowConfidenceSample

	for _, a := range cascade {
		idx := a.index(ix)
		for _, key := range a.keys(e) {
			candidates := idx[key]
			if len(candidates) == 0 {
				continue
			}
			chosen := candidates[0]
			if len(candidates) > 1 {
				chosen = disambiguate(e, candidates)
			}
			if chosen != nil {
				return &model.Match{
					EntryID:   e.ID,
					ListingID: chosen.ID,
					Type:      a.typ,
					Score:     a.typ.Score(),
				}, sample
			}
			if sample == nil {
				sample = &model.LowConfidenceSample{
					EntryID:      e.ID,
					AddressLine1: e.AddressLine1,
					AddressLine2: e.AddressLine2,
					Attempt:      a.typ,
					Key:          key,
					CandidateIDs: candidateIDs(candidates),
				}
			}
		}
	}
	return nil, sample
}

// disambiguate narrows a multi-candidate list through a fixed ladder
// of heuristics. Each step replaces the list only when it keeps at
// least one candidate; a step that narrows to exactly one terminates
// the ladder. The step order is tuned and must not be reordered.
func disambiguate(e *model.WaitlistEntry, candidates []*model.EnrichedListing) *model.EnrichedListing {
	steps := []func(*model.WaitlistEntry, []*model.EnrichedListing) []*model.EnrichedListing{
		narrowByUnitOverlap,
		narrowByUnitText,
		narrowByAlphaHint,
		narrowByMutualNoUnit,
		narrowBySuffix,
		narrowByBuildingCode,
		narrowByComplexTokens,
	}
	for _, step := range steps {
		if kept := step(e, candidates); len(kept) > 0 {
			candidates = kept
			if len(candidates) == 1 {
				return candidates[0]
			}
		}
	}
	return ownerConvergence(candidates)
}

// narrowByUnitOverlap keeps candidates whose unit variants overlap the
// entry's unit hints, exactly, digits-only, or where the shorter digit
// run is a suffix of the longer.
func narrowByUnitOverlap(e *model.WaitlistEntry, candidates []*model.EnrichedListing) []*model.EnrichedListing {
	if !e.HasUnitHints() {
		return nil
	}
	var kept []*model.EnrichedListing
	for _, c := range candidates {
		for _, hint := range e.UnitKeys {
			if unitHintMatches(c, hint) {
				kept = append(kept, c)
				break
			}
		}
	}
	return kept
}

func unitHintMatches(c *model.EnrichedListing, hint string) bool {
	if _, ok := c.UnitVariants[hint]; ok {
		return true
	}
	if _, ok := c.UnitDigitVariants[hint]; ok {
		return true
	}
	digits := digitsOnly(hint)
	if digits == "" {
		return false
	}
	if _, ok := c.UnitDigitVariants[digits]; ok {
		return true
	}
	for v := range c.UnitDigitVariants {
		if v == "" {
			continue
		}
		if len(v) > len(digits) && strings.HasSuffix(v, digits) {
			return true
		}
		if len(digits) > len(v) && strings.HasSuffix(digits, v) {
			return true
		}
	}
	return false
}

// narrowByUnitText keeps candidates whose display address textually
// contains the entry's raw line 2 or a "unit <digits>" phrase built
// from the entry's digit hints.
func narrowByUnitText(e *model.WaitlistEntry, candidates []*model.EnrichedListing) []*model.EnrichedListing {
	line2 := strings.ToLower(strings.TrimSpace(e.AddressLine2))
	digits := e.DigitUnitKeys()
	if line2 == "" && len(digits) == 0 {
		return nil
	}
	var kept []*model.EnrichedListing
	for _, c := range candidates {
		display := strings.ToLower(c.PhysicalDisplay)
		if display == "" {
			continue
		}
		if line2 != "" && strings.Contains(display, line2) {
			kept = append(kept, c)
			continue
		}
		for _, d := range digits {
			if strings.Contains(display, "unit "+d) || strings.Contains(display, "unit #"+d) {
				kept = append(kept, c)
				break
			}
		}
	}
	return kept
}

// narrowByAlphaHint applies only when the entry's hints are purely
// alphabetic, as with a building letter and no apartment number.
func narrowByAlphaHint(e *model.WaitlistEntry, candidates []*model.EnrichedListing) []*model.EnrichedListing {
	if len(e.DigitUnitKeys()) > 0 {
		return nil
	}
	alphas := e.AlphaUnitKeys()
	if len(alphas) == 0 {
		return nil
	}
	var kept []*model.EnrichedListing
	for _, c := range candidates {
		for _, a := range alphas {
			if _, ok := c.UnitVariants[a]; ok {
				kept = append(kept, c)
				break
			}
		}
	}
	return kept
}

// narrowByMutualNoUnit keeps unit-less candidates when the entry
// itself carries no unit hints. Mutual absence is a signal.
func narrowByMutualNoUnit(e *model.WaitlistEntry, candidates []*model.EnrichedListing) []*model.EnrichedListing {
	if e.HasUnitHints() {
		return nil
	}
	var kept []*model.EnrichedListing
	for _, c := range candidates {
		if !c.HasUnit() {
			kept = append(kept, c)
		}
	}
	return kept
}

func narrowBySuffix(e *model.WaitlistEntry, candidates []*model.EnrichedListing) []*model.EnrichedListing {
	if e.StreetSuffix == "" {
		return nil
	}
	var kept []*model.EnrichedListing
	for _, c := range candidates {
		if c.StreetSuffix == e.StreetSuffix {
			kept = append(kept, c)
		}
	}
	return kept
}

func narrowByBuildingCode(e *model.WaitlistEntry, candidates []*model.EnrichedListing) []*model.EnrichedListing {
	if len(e.BuildingCodes) == 0 {
		return nil
	}
	var kept []*model.EnrichedListing
	for _, c := range candidates {
		for _, code := range e.BuildingCodes {
			if _, ok := c.BuildingCodes[code]; ok {
				kept = append(kept, c)
				break
			}
		}
	}
	return kept
}

// narrowByComplexTokens keeps candidates whose complex tokens cover
// every complex hint on the entry.
func narrowByComplexTokens(e *model.WaitlistEntry, candidates []*model.EnrichedListing) []*model.EnrichedListing {
	if len(e.ComplexHints) == 0 {
		return nil
	}
	var kept []*model.EnrichedListing
	for _, c := range candidates {
		if len(c.ComplexTokens) == 0 {
			continue
		}
		covered := true
		for _, hint := range e.ComplexHints {
			if _, ok := c.ComplexTokens[hint]; !ok {
				covered = false
				break
			}
		}
		if covered {
			kept = append(kept, c)
		}
	}
	return kept
}

// ownerConvergence accepts the first candidate when every remaining
// candidate resolves to the same owner. Identical ownership across the
// residual ambiguity is sufficient evidence.
func ownerConvergence(candidates []*model.EnrichedListing) *model.EnrichedListing {
	owner := candidates[0].OwnerKey
	if owner == "" {
		return nil
	}
	for _, c := range candidates[1:] {
		if c.OwnerKey != owner {
			return nil
		}
	}
	return candidates[0]
}

func candidateIDs(candidates []*model.EnrichedListing) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	return ids
}

func digitsOnly(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
