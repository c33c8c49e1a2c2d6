package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/summit-housing/waitlist-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures
// WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	synced_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS waitlist_entries (
	id             TEXT PRIMARY KEY,
	waitlist_type  TEXT NOT NULL,
	waitlist_label TEXT NOT NULL DEFAULT '',
	position       INTEGER,
	address_line1  TEXT NOT NULL,
	address_line2  TEXT NOT NULL DEFAULT '',
	line1_key      TEXT NOT NULL DEFAULT '',
	combined_key   TEXT NOT NULL DEFAULT '',
	street_key     TEXT NOT NULL DEFAULT '',
	unit_keys      TEXT NOT NULL DEFAULT '[]',
	source_file    TEXT NOT NULL DEFAULT '',
	source_row     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS matches (
	entry_id    TEXT PRIMARY KEY REFERENCES waitlist_entries(id) ON DELETE CASCADE,
	listing_id  TEXT NOT NULL,
	match_type  TEXT NOT NULL,
	match_score REAL NOT NULL
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

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertListings(ctx context.Context, listings []model.Listing) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert listings")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO listings
			(schedule_number, owner_name, mailing_line1, mailing_line2,
			 physical_address, unit, subdivision, registration, detail_url, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (schedule_number) DO UPDATE SET
			owner_name = excluded.owner_name,
			mailing_line1 = excluded.mailing_line1,
			mailing_line2 = excluded.mailing_line2,
			physical_address = excluded.physical_address,
			unit = excluded.unit,
			subdivision = excluded.subdivision,
			registration = excluded.registration,
			detail_url = excluded.detail_url,
			synced_at = excluded.synced_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert listing")
	}
	defer stmt.Close()

	var n int64
	for _, l := range listings {
		if _, err := stmt.ExecContext(ctx,
			l.ScheduleNumber, l.OwnerName, l.MailingLine1, l.MailingLine2,
			l.PhysicalAddress, l.Unit, l.Subdivision, l.Registration, l.DetailURL, l.SyncedAt,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert listing %s", l.ScheduleNumber)
		}
		n++
	}
	return n, eris.Wrap(tx.Commit(), "sqlite: commit upsert listings")
}

func (s *SQLiteStore) LoadListings(ctx context.Context) ([]model.Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT schedule_number, owner_name, mailing_line1, mailing_line2,
		       physical_address, unit, subdivision, registration, detail_url, synced_at
		FROM listings ORDER BY schedule_number`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load listings")
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		var l model.Listing
		if err := rows.Scan(
			&l.ScheduleNumber, &l.OwnerName, &l.MailingLine1, &l.MailingLine2,
			&l.PhysicalAddress, &l.Unit, &l.Subdivision, &l.Registration, &l.DetailURL, &l.SyncedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan listing")
		}
		listings = append(listings, l)
	}
	return listings, eris.Wrap(rows.Err(), "sqlite: iterate listings")
}

func (s *SQLiteStore) ReplaceWaitlist(ctx context.Context, waitlistType string, entries []model.WaitlistEntry, matches []model.Match) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace waitlist")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM waitlist_entries WHERE waitlist_type = ?`, waitlistType,
	); err != nil {
		return eris.Wrapf(err, "sqlite: delete waitlist %s", waitlistType)
	}

	entryStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO waitlist_entries
			(id, waitlist_type, waitlist_label, position, address_line1,
			 address_line2, line1_key, combined_key, street_key, unit_keys,
			 source_file, source_row)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert entry")
	}
	defer entryStmt.Close()

	for _, e := range entries {
		unitKeys, err := json.Marshal(orEmpty(e.UnitKeys))
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal unit keys")
		}
		if _, err := entryStmt.ExecContext(ctx,
			e.ID, e.WaitlistType, e.WaitlistLabel, e.Position, e.AddressLine1,
			e.AddressLine2, e.Line1Key, e.CombinedKey, e.StreetKey, string(unitKeys),
			e.SourceFile, e.SourceRow,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert entry row %d", e.SourceRow)
		}
	}

	matchStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO matches (entry_id, listing_id, match_type, match_score)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert match")
	}
	defer matchStmt.Close()

	for _, m := range matches {
		if _, err := matchStmt.ExecContext(ctx, m.EntryID, m.ListingID, string(m.Type), m.Score); err != nil {
			return eris.Wrapf(err, "sqlite: insert match for entry %s", m.EntryID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit replace waitlist")
}

func (s *SQLiteStore) ReplaceRoster(ctx context.Context, municipality string, licenses []model.MunicipalLicense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace roster")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM municipal_licenses WHERE municipality = ?`, municipality,
	); err != nil {
		return eris.Wrapf(err, "sqlite: delete roster %s", municipality)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO municipal_licenses
			(municipality, license_id, schedule_number, status,
			 normalized_status, expiration_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert license")
	}
	defer stmt.Close()

	for _, l := range licenses {
		if _, err := stmt.ExecContext(ctx,
			l.Municipality, l.LicenseID, l.ScheduleNumber, l.Status,
			l.NormalizedStatus, l.ExpirationDate, l.UpdatedAt,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert license %s", l.LicenseID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit replace roster")
}
