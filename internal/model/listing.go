package model

import "time"

// Listing is one raw reference property record, keyed by the county
// schedule number.
type Listing struct {
	ScheduleNumber  string    `json:"schedule_number"`
	OwnerName       string    `json:"owner_name,omitempty"`
	MailingLine1    string    `json:"mailing_line1,omitempty"`
	MailingLine2    string    `json:"mailing_line2,omitempty"`
	PhysicalAddress string    `json:"physical_address,omitempty"`
	Unit            string    `json:"unit,omitempty"`
	Subdivision     string    `json:"subdivision,omitempty"`
	Registration    string    `json:"registration,omitempty"`
	DetailURL       string    `json:"detail_url,omitempty"`
	SyncedAt        time.Time `json:"synced_at,omitempty"`
}

// EnrichedListing is the read-only normalized projection of a Listing
// that the match indexes and resolver operate on. Never persisted.
type EnrichedListing struct {
	ID string `json:"id"` // schedule number

	// Mailing-side keys.
	MailingKey       string `json:"mailing_key,omitempty"`
	MailingLine1Key  string `json:"mailing_line1_key,omitempty"`
	MailingStreetKey string `json:"mailing_street_key,omitempty"`

	// Physical-side keys. PrimaryStreetKey is the street-canonical
	// form of the full primary line; StreetCanonical is the same after
	// unit designators are stripped.
	PhysicalPrimaryKey string `json:"physical_primary_key,omitempty"`
	PhysicalStreetKey  string `json:"physical_street_key,omitempty"`
	PrimaryStreetKey   string `json:"primary_street_key,omitempty"`
	StreetCanonical    string `json:"street_canonical,omitempty"`
	StreetSuffix       string `json:"street_suffix,omitempty"`

	UnitKey           string              `json:"unit_key,omitempty"`
	UnitVariants      map[string]struct{} `json:"-"`
	UnitDigitVariants map[string]struct{} `json:"-"`
	StreetUnitKey     string              `json:"street_unit_key,omitempty"`

	ComplexTokens map[string]struct{} `json:"-"`
	BuildingCodes map[string]struct{} `json:"-"`

	OwnerName string `json:"owner_name,omitempty"`
	OwnerKey  string `json:"-"`

	// Human-readable values retained only for diagnostics.
	MailingLine1Raw string `json:"mailing_line1_raw,omitempty"`
	PhysicalDisplay string `json:"physical_display,omitempty"`
}

// Usable reports whether the listing contributes at least one lookup
// key. Listings with no usable key are excluded from every index.
func (l *EnrichedListing) Usable() bool {
	return l.MailingKey != "" || l.MailingLine1Key != "" ||
		l.PhysicalPrimaryKey != "" || l.PhysicalStreetKey != ""
}

// HasUnit reports whether the listing carries any unit information.
func (l *EnrichedListing) HasUnit() bool {
	return l.UnitKey != "" || len(l.UnitVariants) > 0
}
