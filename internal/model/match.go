package model

// MatchType identifies which cascade attempt produced a match.
type MatchType string

const (
	MatchMailingAddress         MatchType = "mailing_address"
	MatchMailingLine1           MatchType = "mailing_line1"
	MatchMailingStreet          MatchType = "mailing_street"
	MatchPhysicalStreetUnit     MatchType = "physical_street_unit"
	MatchPhysicalPrimary        MatchType = "physical_primary"
	MatchPhysicalStreet         MatchType = "physical_street"
	MatchPhysicalStreetCanon    MatchType = "physical_street_canonical"
	MatchPhysicalStreetCanonFul MatchType = "physical_street_canonical_full"
)

// matchScores fixes the confidence constant per match type. Scores are
// not computed; they identify how strict the successful attempt was.
var matchScores = map[MatchType]float64{
	MatchMailingAddress:         1.0,
	MatchMailingLine1:           0.95,
	MatchMailingStreet:          0.94,
	MatchPhysicalStreetUnit:     0.93,
	MatchPhysicalPrimary:        0.90,
	MatchPhysicalStreet:         0.88,
	MatchPhysicalStreetCanon:    0.90,
	MatchPhysicalStreetCanonFul: 0.88,
}

// Score returns the fixed confidence constant for the match type.
func (t MatchType) Score() float64 {
	return matchScores[t]
}

// Match links one waitlist entry to exactly one listing.
type Match struct {
	EntryID   string    `json:"entry_id"`
	ListingID string    `json:"listing_id"`
	Type      MatchType `json:"match_type"`
	Score     float64   `json:"match_score"`
}

// LowConfidenceSample records the first attempt for an entry that
// found candidates but could not disambiguate to one. Diagnostic only.
type LowConfidenceSample struct {
	EntryID      string    `json:"entry_id"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	Attempt      MatchType `json:"attempt"`
	Key          string    `json:"key"`
	CandidateIDs []string  `json:"candidate_ids"`
}

// UnmatchedEntry is a snapshot of one entry that matched nothing,
// retained for operator review.
type UnmatchedEntry struct {
	EntryID      string `json:"entry_id"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	CombinedKey  string `json:"combined_key"`
	StreetKey    string `json:"street_key"`
	SourceFile   string `json:"source_file,omitempty"`
	SourceRow    int    `json:"source_row,omitempty"`
}

// MatchStats aggregates one orchestrator run. Exact counts matches
// with score >= 0.99; Close is the remainder of matched entries.
type MatchStats struct {
	Total  int `json:"total"`
	Exact  int `json:"exact"`
	Close  int `json:"close"`
	Missed int `json:"missed"`

	LowConfidence  []LowConfidenceSample `json:"low_confidence,omitempty"`
	FirstUnmatched *UnmatchedEntry       `json:"first_unmatched,omitempty"`
}
