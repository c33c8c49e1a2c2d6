package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summit-housing/waitlist-cli/internal/model"
)

func TestEnrich_MailingKeys(t *testing.T) {
	e := Enrich(model.Listing{
		ScheduleNumber: "6512345",
		MailingLine1:   "123 MAIN STREET",
		MailingLine2:   "Unit 4",
	})
	require.NotNil(t, e)
	assert.Equal(t, "6512345", e.ID)
	assert.Equal(t, "123mainst4", e.MailingKey)
	assert.Equal(t, "123mainst", e.MailingLine1Key)
	assert.Equal(t, "123main", e.MailingStreetKey)
}

func TestEnrich_PhysicalKeys(t *testing.T) {
	e := Enrich(model.Listing{
		ScheduleNumber:  "6512346",
		PhysicalAddress: "45 Aspen Dr Unit B2, Breckenridge, CO",
	})
	require.NotNil(t, e)
	assert.Equal(t, "45aspendrb2", e.PhysicalPrimaryKey)
	assert.Equal(t, "45aspendr", e.PhysicalStreetKey)
	assert.Equal(t, "45aspendrb2", e.PrimaryStreetKey)
	assert.Equal(t, "45aspen", e.StreetCanonical)
	assert.Equal(t, "dr", e.StreetSuffix)
}

func TestEnrich_UnitVariantsFromBothSources(t *testing.T) {
	e := Enrich(model.Listing{
		ScheduleNumber:  "6512347",
		Unit:            "B2",
		PhysicalAddress: "45 Aspen Dr Unit B2",
	})
	require.NotNil(t, e)
	assert.Equal(t, "b2", e.UnitKey)
	assert.Contains(t, e.UnitVariants, "b2")
	assert.Contains(t, e.UnitDigitVariants, "2")
	assert.Equal(t, "45aspen|b2", e.StreetUnitKey)
}

func TestEnrich_UnitEmbeddedOnlyInPhysicalText(t *testing.T) {
	// The unit field may be absent while the unit lives in the situs text.
	e := Enrich(model.Listing{
		ScheduleNumber:  "6512348",
		PhysicalAddress: "45 Aspen Dr Unit 7",
	})
	require.NotNil(t, e)
	assert.Empty(t, e.UnitKey)
	assert.Contains(t, e.UnitVariants, "7")
	assert.Equal(t, "45aspen|7", e.StreetUnitKey)
}

func TestEnrich_LeadingZeroUnit(t *testing.T) {
	e := Enrich(model.Listing{
		ScheduleNumber: "6512349",
		Unit:           "04",
		MailingLine1:   "45 Aspen Dr",
	})
	require.NotNil(t, e)
	assert.Equal(t, "4", e.UnitKey)
}

func TestEnrich_OwnerDisplayCasing(t *testing.T) {
	person := Enrich(model.Listing{
		ScheduleNumber: "6512355",
		OwnerName:      "SMITH JANE",
		MailingLine1:   "123 Main St",
	})
	require.NotNil(t, person)
	assert.Equal(t, "Smith Jane", person.OwnerName)

	entity := Enrich(model.Listing{
		ScheduleNumber: "6512356",
		OwnerName:      "ALPINE VISTA HOLDINGS LLC",
		MailingLine1:   "123 Main St",
	})
	require.NotNil(t, entity)
	assert.Equal(t, "ALPINE VISTA HOLDINGS LLC", entity.OwnerName)
}

func TestEnrich_UnusableListingExcluded(t *testing.T) {
	assert.Nil(t, Enrich(model.Listing{ScheduleNumber: "6512350"}))
	assert.Nil(t, Enrich(model.Listing{ScheduleNumber: "6512351", OwnerName: "Jane Smith"}))
}

func TestEnrich_ComplexAndBuilding(t *testing.T) {
	e := Enrich(model.Listing{
		ScheduleNumber:  "6512352",
		Subdivision:     "MOUNTAIN THUNDER LODGE CONDO",
		PhysicalAddress: "50 Mountain Thunder Dr Bldg 3",
	})
	require.NotNil(t, e)
	assert.Contains(t, e.ComplexTokens, "thunder")
	assert.Contains(t, e.BuildingCodes, "3")
}

func TestEnrich_DisplayFieldsForDiagnostics(t *testing.T) {
	e := Enrich(model.Listing{
		ScheduleNumber:  "6512353",
		MailingLine1:    "  123 MAIN ST  ",
		PhysicalAddress: "45 ASPEN DR UNIT B2",
	})
	require.NotNil(t, e)
	assert.Equal(t, "123 MAIN ST", e.MailingLine1Raw)
	assert.Equal(t, "45 Aspen Dr Unit B2", e.PhysicalDisplay)
}

func TestEnrichAll_DropsUnusable(t *testing.T) {
	enriched := EnrichAll([]model.Listing{
		{ScheduleNumber: "1", MailingLine1: "123 Main St"},
		{ScheduleNumber: "2"},
	})
	require.Len(t, enriched, 1)
	assert.Equal(t, "1", enriched[0].ID)
}

func TestEnrich_SymmetryWithEntrySide(t *testing.T) {
	// The same text keyed through the listing path and through the
	// entry path must be identical; divergence breaks matching.
	e := Enrich(model.Listing{ScheduleNumber: "3", MailingLine1: "123 Main Street"})
	require.NotNil(t, e)
	assert.Equal(t, "123mainst", e.MailingLine1Key)
}
