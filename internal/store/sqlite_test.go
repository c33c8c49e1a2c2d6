package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summit-housing/waitlist-cli/internal/model"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "waitlist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleListing(schedule string) model.Listing {
	return model.Listing{
		ScheduleNumber:  schedule,
		OwnerName:       "Alpine Holdings LLC",
		MailingLine1:    "123 Main St",
		PhysicalAddress: "45 Aspen Dr",
		Unit:            "B2",
		Subdivision:     "Aspen Ridge",
		Registration:    schedule + "-A",
		SyncedAt:        time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLite_UpsertAndLoadListings(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	n, err := s.UpsertListings(ctx, []model.Listing{sampleListing("100"), sampleListing("200")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	updated := sampleListing("100")
	updated.OwnerName = "Peak Trust"
	_, err = s.UpsertListings(ctx, []model.Listing{updated})
	require.NoError(t, err)

	listings, err := s.LoadListings(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "100", listings[0].ScheduleNumber)
	assert.Equal(t, "Peak Trust", listings[0].OwnerName)
	assert.Equal(t, "100-A", listings[0].Registration)
}

func TestSQLite_ReplaceWaitlistSwapsRows(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	pos := 1
	first := model.WaitlistEntry{
		ID: "e1", WaitlistType: "housing", Position: &pos,
		AddressLine1: "123 Main St", CombinedKey: "123mainst",
		UnitKeys: []string{"4"},
	}
	require.NoError(t, s.ReplaceWaitlist(ctx, "housing",
		[]model.WaitlistEntry{first},
		[]model.Match{{EntryID: "e1", ListingID: "100", Type: model.MatchMailingAddress, Score: 1.0}},
	))

	second := model.WaitlistEntry{
		ID: "e2", WaitlistType: "housing",
		AddressLine1: "45 Aspen Dr", CombinedKey: "45aspendr",
	}
	require.NoError(t, s.ReplaceWaitlist(ctx, "housing", []model.WaitlistEntry{second}, nil))

	var entryCount, matchCount int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM waitlist_entries`).Scan(&entryCount))
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM matches`).Scan(&matchCount))
	assert.Equal(t, 1, entryCount)
	assert.Equal(t, 0, matchCount, "cascade should remove the old entry's match")

	var id string
	require.NoError(t, s.db.QueryRow(`SELECT id FROM waitlist_entries`).Scan(&id))
	assert.Equal(t, "e2", id)
}

func TestSQLite_ReplaceWaitlistLeavesOtherTypes(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceWaitlist(ctx, "housing", []model.WaitlistEntry{
		{ID: "e1", WaitlistType: "housing", AddressLine1: "123 Main St"},
	}, nil))
	require.NoError(t, s.ReplaceWaitlist(ctx, "parking", []model.WaitlistEntry{
		{ID: "e2", WaitlistType: "parking", AddressLine1: "45 Aspen Dr"},
	}, nil))

	require.NoError(t, s.ReplaceWaitlist(ctx, "housing", nil, nil))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM waitlist_entries`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLite_ReplaceRoster(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceRoster(ctx, "Frisco", []model.MunicipalLicense{
		{Municipality: "Frisco", LicenseID: "STR-1", ScheduleNumber: "100", Status: "Approved", NormalizedStatus: "active"},
		{Municipality: "Frisco", LicenseID: "STR-2", ScheduleNumber: "200", Status: "Expired", NormalizedStatus: "expired"},
	}))
	require.NoError(t, s.ReplaceRoster(ctx, "Frisco", []model.MunicipalLicense{
		{Municipality: "Frisco", LicenseID: "STR-3", ScheduleNumber: "300", Status: "Approved", NormalizedStatus: "active"},
	}))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM municipal_licenses`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"})
	assert.Error(t, err)
}
