// Package match resolves waitlist entries against enriched listings
// through a fixed cascade of keyed lookups with deterministic
// disambiguation.
package match

import (
	"go.uber.org/zap"

	"github.com/summit-housing/waitlist-cli/internal/model"
)

// Index holds the seven keyed lookups the resolver consults. Built
// once per run and read-only during resolution.
type Index struct {
	mailingExact    map[string][]*model.EnrichedListing
	mailingLine1    map[string][]*model.EnrichedListing
	mailingStreet   map[string][]*model.EnrichedListing
	physicalPrimary map[string][]*model.EnrichedListing
	physicalStreet  map[string][]*model.EnrichedListing
	streetCanonical map[string][]*model.EnrichedListing
	streetUnit      map[string][]*model.EnrichedListing
}

// BuildIndex groups listings under every non-empty key they expose.
// Candidate order within a key follows input order, so identical input
// produces identical candidate lists.
func BuildIndex(listings []*model.EnrichedListing) *Index {
	ix := &Index{
		mailingExact:    map[string][]*model.EnrichedListing{},
		mailingLine1:    map[string][]*model.EnrichedListing{},
		mailingStreet:   map[string][]*model.EnrichedListing{},
		physicalPrimary: map[string][]*model.EnrichedListing{},
		physicalStreet:  map[string][]*model.EnrichedListing{},
		streetCanonical: map[string][]*model.EnrichedListing{},
		streetUnit:      map[string][]*model.EnrichedListing{},
	}

	skipped := 0
	for _, l := range listings {
		if !l.Usable() {
			skipped++
			continue
		}
		insert(ix.mailingExact, l.MailingKey, l)
		insert(ix.mailingLine1, l.MailingLine1Key, l)
		insert(ix.mailingStreet, l.MailingStreetKey, l)
		insert(ix.physicalPrimary, l.PhysicalPrimaryKey, l)
		insert(ix.physicalStreet, l.PhysicalStreetKey, l)
		insert(ix.streetCanonical, l.StreetCanonical, l)
		// Some reference records store a unit-free address as the
		// primary line; indexing the full-line street form alongside
		// the stripped one lets either side of that variance hit.
		if l.PrimaryStreetKey != l.StreetCanonical {
			insert(ix.streetCanonical, l.PrimaryStreetKey, l)
		}
		insert(ix.streetUnit, l.StreetUnitKey, l)
	}

	zap.L().Info("match indexes built",
		zap.String("component", "match_index"),
		zap.Int("listings", len(listings)),
		zap.Int("skipped", skipped),
		zap.Int("mailing_exact_keys", len(ix.mailingExact)),
		zap.Int("street_unit_keys", len(ix.streetUnit)),
	)
	return ix
}

func insert(m map[string][]*model.EnrichedListing, key string, l *model.EnrichedListing) {
	if key == "" {
		return
	}
	m[key] = append(m[key], l)
}
