package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/summit-housing/waitlist-cli/internal/db"
	"github.com/summit-housing/waitlist-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool, used by tests with
// pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS listings (
	schedule_number  TEXT PRIMARY KEY,
	owner_name       TEXT NOT NULL DEFAULT '',
	mailing_line1    TEXT NOT NULL DEFAULT '',
	mailing_line2    TEXT NOT NULL DEFAULT '',
	physical_address TEXT NOT NULL DEFAULT '',
	unit             TEXT NOT NULL DEFAULT '',
	subdivision      TEXT NOT NULL DEFAULT '',
	registration     TEXT NOT NULL DEFAULT '',
	detail_url       TEXT NOT NULL DEFAULT '',
	synced_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS waitlist_entries (
	id                  TEXT PRIMARY KEY,
	waitlist_type       TEXT NOT NULL,
	waitlist_label      TEXT NOT NULL DEFAULT '',
	position            INTEGER,
	address_line1       TEXT NOT NULL,
	address_line2       TEXT NOT NULL DEFAULT '',
	line1_key           TEXT NOT NULL DEFAULT '',
	combined_key        TEXT NOT NULL DEFAULT '',
	street_key          TEXT NOT NULL DEFAULT '',
	unit_keys           JSONB NOT NULL DEFAULT '[]',
	source_file         TEXT NOT NULL DEFAULT '',
	source_row          INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS matches (
	entry_id    TEXT PRIMARY KEY REFERENCES waitlist_entries(id) ON DELETE CASCADE,
	listing_id  TEXT NOT NULL,
	match_type  TEXT NOT NULL,
	match_score DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS municipal_licenses (
	municipality      TEXT NOT NULL,
	license_id        TEXT NOT NULL,
	schedule_number   TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT '',
	normalized_status TEXT NOT NULL DEFAULT 'unknown',
	expiration_date   TEXT NOT NULL DEFAULT '',
	updated_at        TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (municipality, license_id)
);

CREATE INDEX IF NOT EXISTS idx_entries_waitlist_type ON waitlist_entries(waitlist_type);
CREATE INDEX IF NOT EXISTS idx_entries_combined_key ON waitlist_entries(combined_key);
CREATE INDEX IF NOT EXISTS idx_matches_listing ON matches(listing_id);
CREATE INDEX IF NOT EXISTS idx_licenses_schedule ON municipal_licenses(schedule_number);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

var listingColumns = []string{
	"schedule_number", "owner_name", "mailing_line1", "mailing_line2",
	"physical_address", "unit", "subdivision", "registration", "detail_url", "synced_at",
}

func (s *PostgresStore) UpsertListings(ctx context.Context, listings []model.Listing) (int64, error) {
	rows := make([][]any, len(listings))
	for i, l := range listings {
		rows[i] = []any{
			l.ScheduleNumber, l.OwnerName, l.MailingLine1, l.MailingLine2,
			l.PhysicalAddress, l.Unit, l.Subdivision, l.Registration, l.DetailURL, l.SyncedAt,
		}
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "listings",
		Columns:      listingColumns,
		ConflictKeys: []string{"schedule_number"},
	}, rows)
}

func (s *PostgresStore) LoadListings(ctx context.Context) ([]model.Listing, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT schedule_number, owner_name, mailing_line1, mailing_line2,
		       physical_address, unit, subdivision, registration, detail_url, synced_at
		FROM listings ORDER BY schedule_number`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load listings")
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		var l model.Listing
		if err := rows.Scan(
			&l.ScheduleNumber, &l.OwnerName, &l.MailingLine1, &l.MailingLine2,
			&l.PhysicalAddress, &l.Unit, &l.Subdivision, &l.Registration, &l.DetailURL, &l.SyncedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan listing")
		}
		listings = append(listings, l)
	}
	return listings, eris.Wrap(rows.Err(), "postgres: iterate listings")
}

var entryColumns = []string{
	"id", "waitlist_type", "waitlist_label", "position",
	"address_line1", "address_line2", "line1_key", "combined_key",
	"street_key", "unit_keys", "source_file", "source_row",
}

func entryRow(e model.WaitlistEntry) ([]any, error) {
	unitKeys, err := json.Marshal(orEmpty(e.UnitKeys))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal unit keys")
	}
	return []any{
		e.ID, e.WaitlistType, e.WaitlistLabel, e.Position,
		e.AddressLine1, e.AddressLine2, e.Line1Key, e.CombinedKey,
		e.StreetKey, unitKeys, e.SourceFile, e.SourceRow,
	}, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *PostgresStore) ReplaceWaitlist(ctx context.Context, waitlistType string, entries []model.WaitlistEntry, matches []model.Match) error {
	entryRows := make([][]any, len(entries))
	for i, e := range entries {
		row, err := entryRow(e)
		if err != nil {
			return err
		}
		entryRows[i] = row
	}
	matchRows := make([][]any, len(matches))
	for i, m := range matches {
		matchRows[i] = []any{m.EntryID, m.ListingID, string(m.Type), m.Score}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin replace waitlist")
	}
	defer tx.Rollback(ctx)

	// Matches go with their entries via ON DELETE CASCADE.
	if _, err := tx.Exec(ctx, `DELETE FROM waitlist_entries WHERE waitlist_type = $1`, waitlistType); err != nil {
		return eris.Wrapf(err, "postgres: delete waitlist %s", waitlistType)
	}
	if _, err := db.CopyFromTx(ctx, tx, "waitlist_entries", entryColumns, entryRows); err != nil {
		return err
	}
	if _, err := db.CopyFromTx(ctx, tx, "matches", []string{"entry_id", "listing_id", "match_type", "match_score"}, matchRows); err != nil {
		return err
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit replace waitlist")
}

func (s *PostgresStore) ReplaceRoster(ctx context.Context, municipality string, licenses []model.MunicipalLicense) error {
	rows := make([][]any, len(licenses))
	for i, l := range licenses {
		rows[i] = []any{
			l.Municipality, l.LicenseID, l.ScheduleNumber,
			l.Status, l.NormalizedStatus, l.ExpirationDate, l.UpdatedAt,
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin replace roster")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM municipal_licenses WHERE municipality = $1`, municipality); err != nil {
		return eris.Wrapf(err, "postgres: delete roster %s", municipality)
	}
	cols := []string{"municipality", "license_id", "schedule_number", "status", "normalized_status", "expiration_date", "updated_at"}
	if _, err := db.CopyFromTx(ctx, tx, "municipal_licenses", cols, rows); err != nil {
		return err
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit replace roster")
}
