package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summit-housing/waitlist-cli/internal/listing"
	"github.com/summit-housing/waitlist-cli/internal/model"
	"github.com/summit-housing/waitlist-cli/internal/waitlist"
)

func enriched(t *testing.T, l model.Listing) *model.EnrichedListing {
	t.Helper()
	e := listing.Enrich(l)
	require.NotNil(t, e, "listing %s should be usable", l.ScheduleNumber)
	return e
}

func buildEntries(t *testing.T, rows [][]string) []model.WaitlistEntry {
	t.Helper()
	src := waitlist.Source{WaitlistType: "housing", WaitlistLabel: "Housing", Filename: "test.csv"}
	header := []string{"Address Line 1", "Address Line 2", "Position"}
	entries, err := waitlist.BuildEntries(src, header, rows)
	require.NoError(t, err)
	return entries
}

func oneEntry(t *testing.T, line1, line2 string) model.WaitlistEntry {
	t.Helper()
	entries := buildEntries(t, [][]string{{line1, line2, ""}})
	require.Len(t, entries, 1)
	return entries[0]
}

func TestBuildIndex_RoutesKeys(t *testing.T) {
	ix := BuildIndex([]*model.EnrichedListing{
		enriched(t, model.Listing{
			ScheduleNumber:  "S1",
			MailingLine1:    "123 Main Street",
			PhysicalAddress: "123 Main St, Frisco, CO",
		}),
	})

	assert.Len(t, ix.mailingExact["123mainst"], 1)
	assert.Len(t, ix.mailingLine1["123mainst"], 1)
	assert.Len(t, ix.physicalPrimary["123mainst"], 1)
	assert.Len(t, ix.physicalStreet["123mainst"], 1)
	assert.Len(t, ix.streetCanonical["123main"], 1)
}

func TestBuildIndex_InsertsFullStreetFormWhenItDiffers(t *testing.T) {
	ix := BuildIndex([]*model.EnrichedListing{
		enriched(t, model.Listing{
			ScheduleNumber:  "S1",
			PhysicalAddress: "45 Aspen Dr Unit B2",
		}),
	})

	// Stripped and full-line street forms both hit the same listing.
	assert.Len(t, ix.streetCanonical["45aspen"], 1)
	assert.Len(t, ix.streetCanonical["45aspendrb2"], 1)
}

func TestBuildIndex_SkipsUnusableListings(t *testing.T) {
	ix := BuildIndex([]*model.EnrichedListing{{ID: "empty"}})
	assert.Empty(t, ix.mailingExact)
	assert.Empty(t, ix.physicalStreet)
}

func TestResolve_MailingExactWinsOverPhysical(t *testing.T) {
	ix := BuildIndex([]*model.EnrichedListing{
		enriched(t, model.Listing{ScheduleNumber: "MAIL", MailingLine1: "123 Main Street"}),
		enriched(t, model.Listing{ScheduleNumber: "PHYS", PhysicalAddress: "123 Main St"}),
	})
	e := oneEntry(t, "123 Main St", "")

	m, sample := Resolve(&e, ix)
	require.NotNil(t, m)
	assert.Nil(t, sample)
	assert.Equal(t, "MAIL", m.ListingID)
	assert.Equal(t, model.MatchMailingAddress, m.Type)
	assert.Equal(t, 1.0, m.Score)
}

func TestResolve_StreetUnitComposite(t *testing.T) {
	ix := BuildIndex([]*model.EnrichedListing{
		enriched(t, model.Listing{ScheduleNumber: "B2", PhysicalAddress: "45 Aspen Dr", Unit: "B2"}),
		enriched(t, model.Listing{ScheduleNumber: "C1", PhysicalAddress: "45 Aspen Dr", Unit: "C1"}),
	})
	e := oneEntry(t, "45 Aspen Dr Unit B2", "")

	m, _ := Resolve(&e, ix)
	require.NotNil(t, m)
	assert.Equal(t, "B2", m.ListingID)
	assert.Equal(t, model.MatchPhysicalStreetUnit, m.Type)
	assert.Equal(t, 0.93, m.Score)
}

func TestResolve_UnitOverlapDisambiguates(t *testing.T) {
	ix := BuildIndex([]*model.EnrichedListing{
		enriched(t, model.Listing{ScheduleNumber: "B2", PhysicalAddress: "45 Aspen Dr", Unit: "B2"}),
		enriched(t, model.Listing{ScheduleNumber: "C1", PhysicalAddress: "45 Aspen Dr", Unit: "C1"}),
	})
	// "Apt 2" shares no composite key but its digit hint overlaps B2.
	e := oneEntry(t, "45 Aspen Dr Apt 2", "")

	m, _ := Resolve(&e, ix)
	require.NotNil(t, m)
	assert.Equal(t, "B2", m.ListingID)
	assert.Equal(t, model.MatchPhysicalStreet, m.Type)
}

func TestResolve_MutualNoUnit(t *testing.T) {
	ix := BuildIndex([]*model.EnrichedListing{
		enriched(t, model.Listing{ScheduleNumber: "UNIT", PhysicalAddress: "45 Aspen Dr", Unit: "B2"}),
		enriched(t, model.Listing{ScheduleNumber: "BARE", PhysicalAddress: "45 Aspen Dr"}),
	})
	e := oneEntry(t, "45 Aspen Dr", "")

	m, _ := Resolve(&e, ix)
	require.NotNil(t, m)
	assert.Equal(t, "BARE", m.ListingID)
}

func TestResolve_OwnerConvergenceAcceptsFirst(t *testing.T) {
	ix := BuildIndex([]*model.EnrichedListing{
		enriched(t, model.Listing{ScheduleNumber: "O1", PhysicalAddress: "45 Aspen Dr", OwnerName: "Alpine Holdings LLC"}),
		enriched(t, model.Listing{ScheduleNumber: "O2", PhysicalAddress: "45 Aspen Dr", OwnerName: "Alpine Holdings, LLC"}),
	})
	e := oneEntry(t, "45 Aspen Dr", "Unit B2")

	m, _ := Resolve(&e, ix)
	require.NotNil(t, m)
	assert.Equal(t, "O1", m.ListingID)
	assert.Equal(t, model.MatchPhysicalPrimary, m.Type)
}

func TestResolve_DivergentOwnersStayAmbiguous(t *testing.T) {
	ix := BuildIndex([]*model.EnrichedListing{
		enriched(t, model.Listing{ScheduleNumber: "O1", PhysicalAddress: "45 Aspen Dr", OwnerName: "Alpine Holdings LLC"}),
		enriched(t, model.Listing{ScheduleNumber: "O2", PhysicalAddress: "45 Aspen Dr", OwnerName: "Peak Trust"}),
	})
	e := oneEntry(t, "45 Aspen Dr", "Unit B2")

	m, sample := Resolve(&e, ix)
	assert.Nil(t, m)
	require.NotNil(t, sample)
	assert.Equal(t, model.MatchPhysicalPrimary, sample.Attempt)
	assert.Equal(t, "45aspendr", sample.Key)
	assert.ElementsMatch(t, []string{"O1", "O2"}, sample.CandidateIDs)
}

func TestResolve_NoCandidates(t *testing.T) {
	ix := BuildIndex([]*model.EnrichedListing{
		enriched(t, model.Listing{ScheduleNumber: "S1", PhysicalAddress: "45 Aspen Dr"}),
	})
	e := oneEntry(t, "999 Nowhere Ln", "")

	m, sample := Resolve(&e, ix)
	assert.Nil(t, m)
	assert.Nil(t, sample)
}

func TestRun_AggregatesStats(t *testing.T) {
	ix := BuildIndex([]*model.EnrichedListing{
		enriched(t, model.Listing{ScheduleNumber: "MAIL", MailingLine1: "123 Main Street"}),
		enriched(t, model.Listing{ScheduleNumber: "PHYS", PhysicalAddress: "45 Aspen Dr"}),
	})
	entries := buildEntries(t, [][]string{
		{"123 Main St", "", "1"},
		{"45 Aspen Drive", "", "2"},
		{"999 Nowhere Ln", "", "3"},
	})

	matches, stats, err := Run(context.Background(), entries, ix)
	require.NoError(t, err)

	assert.Len(t, matches, 2)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Exact)
	assert.Equal(t, 1, stats.Close)
	assert.Equal(t, 1, stats.Missed)
	require.NotNil(t, stats.FirstUnmatched)
	assert.Equal(t, "999 Nowhere Ln", stats.FirstUnmatched.AddressLine1)
	assert.Equal(t, 4, stats.FirstUnmatched.SourceRow)
}

func TestRun_Deterministic(t *testing.T) {
	ix := BuildIndex([]*model.EnrichedListing{
		enriched(t, model.Listing{ScheduleNumber: "B2", PhysicalAddress: "45 Aspen Dr", Unit: "B2"}),
		enriched(t, model.Listing{ScheduleNumber: "C1", PhysicalAddress: "45 Aspen Dr", Unit: "C1"}),
		enriched(t, model.Listing{ScheduleNumber: "MAIL", MailingLine1: "123 Main Street"}),
	})
	entries := buildEntries(t, [][]string{
		{"45 Aspen Dr Unit B2", "", ""},
		{"123 Main St", "", ""},
		{"999 Nowhere Ln", "", ""},
	})

	first, firstStats, err := Run(context.Background(), entries, ix)
	require.NoError(t, err)
	second, secondStats, err := Run(context.Background(), entries, ix)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstStats, secondStats)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries := buildEntries(t, [][]string{{"45 Aspen Dr", "", ""}})
	_, _, err := Run(ctx, entries, BuildIndex(nil))
	assert.Error(t, err)
}
