// Package listing projects raw reference property records into the
// normalized EnrichedListing form the match indexes are built from.
// The projection runs the exact same normalize pipeline as the
// waitlist entry builder; keeping the two sides symmetric is what
// makes key-equality matching correct.
package listing

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/summit-housing/waitlist-cli/internal/model"
	"github.com/summit-housing/waitlist-cli/internal/normalize"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// Enrich projects one reference record. Returns nil when the record
// yields no usable lookup key on any field; such listings can never be
// a match target and are excluded from every index.
func Enrich(l model.Listing) *model.EnrichedListing {
	mailing1 := normalize.CleanLine(l.MailingLine1)
	mailing2 := normalize.CleanLine(l.MailingLine2)
	physical := normalize.CleanLine(l.PhysicalAddress)
	primary := normalize.PrimaryLine(physical)
	primaryStripped := normalize.StripUnitDesignators(primary)

	e := &model.EnrichedListing{
		ID: l.ScheduleNumber,

		MailingKey:       normalize.AddressKey(strings.TrimSpace(mailing1 + " " + mailing2)),
		MailingLine1Key:  normalize.AddressKey(mailing1),
		MailingStreetKey: normalize.StreetKey(mailing1),

		PhysicalPrimaryKey: normalize.AddressKey(primary),
		PhysicalStreetKey:  normalize.AddressKey(primaryStripped),
		PrimaryStreetKey:   normalize.StreetKey(primary),
		StreetCanonical:    normalize.StreetKey(primaryStripped),
		StreetSuffix:       normalize.SuffixToken(primary),

		OwnerName: displayOwner(l.OwnerName),
		OwnerKey:  normalize.OwnerKey(l.OwnerName),

		MailingLine1Raw: normalize.SanitizeLine(l.MailingLine1),
		PhysicalDisplay: displayText(primary),
	}

	e.UnitKey = normalize.UnitKey(l.Unit)

	// A listing's unit may live in its unit field, its physical text,
	// or both; every derivable variant goes into the set.
	variants := map[string]struct{}{}
	if l.Unit != "" {
		normalize.CollectUnitTokens(l.Unit, variants)
	}
	normalize.CollectInlineUnitTokens(physical, variants)
	e.UnitVariants = variants

	digits := map[string]struct{}{}
	for v := range variants {
		if d := digitsOf(v); d != "" {
			digits[d] = struct{}{}
		}
	}
	e.UnitDigitVariants = digits

	streetForUnit := e.StreetCanonical
	if streetForUnit == "" {
		streetForUnit = e.MailingStreetKey
	}
	unitForStreet := e.UnitKey
	if unitForStreet == "" {
		for v := range variants {
			if unitForStreet == "" || v < unitForStreet {
				unitForStreet = v
			}
		}
	}
	e.StreetUnitKey = normalize.StreetUnitKey(streetForUnit, unitForStreet)

	complexTokens := map[string]struct{}{}
	for _, tok := range normalize.ComplexTokens(l.Subdivision) {
		complexTokens[tok] = struct{}{}
	}
	e.ComplexTokens = complexTokens

	codes := map[string]struct{}{}
	for _, c := range normalize.BuildingCodes(physical) {
		codes[c] = struct{}{}
	}
	e.BuildingCodes = codes

	if !e.Usable() {
		return nil
	}
	return e
}

// EnrichAll projects the full reference set, dropping unusable records.
func EnrichAll(listings []model.Listing) []*model.EnrichedListing {
	log := zap.L().With(zap.String("component", "listing_enricher"))

	enriched := make([]*model.EnrichedListing, 0, len(listings))
	skipped := 0
	for _, l := range listings {
		e := Enrich(l)
		if e == nil {
			skipped++
			continue
		}
		enriched = append(enriched, e)
	}

	log.Info("enriched reference listings",
		zap.Int("usable", len(enriched)),
		zap.Int("skipped", skipped),
	)
	return enriched
}

// displayOwner title-cases personal owner names for operator-facing
// output. Entity names keep the county's casing so acronyms like LLC
// survive.
func displayOwner(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || normalize.IsBusinessName(name) {
		return name
	}
	return displayText(name)
}

func displayText(s string) string {
	if s == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(s))
}

func digitsOf(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	out := b.String()
	if out == "" {
		return ""
	}
	if trimmed := strings.TrimLeft(out, "0"); trimmed != "" {
		return trimmed
	}
	return "0"
}
