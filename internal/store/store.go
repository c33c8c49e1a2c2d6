// Package store persists listings, waitlist entries, matches, and
// municipal licenses behind a driver-selectable interface.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/summit-housing/waitlist-cli/internal/model"
)

// Store is the persistence surface the CLI commands depend on.
type Store interface {
	// Listings
	UpsertListings(ctx context.Context, listings []model.Listing) (int64, error)
	LoadListings(ctx context.Context) ([]model.Listing, error)

	// Waitlists. ReplaceWaitlist atomically deletes the prior entries
	// and matches for the waitlist type and inserts the new ones.
	ReplaceWaitlist(ctx context.Context, waitlistType string, entries []model.WaitlistEntry, matches []model.Match) error

	// Municipal rosters
	ReplaceRoster(ctx context.Context, municipality string, licenses []model.MunicipalLicense) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Driver string      `mapstructure:"driver" yaml:"driver"` // "postgres" or "sqlite"
	DSN    string      `mapstructure:"dsn" yaml:"dsn"`
	Pool   *PoolConfig `mapstructure:"pool" yaml:"pool"`
}

// Open builds the configured Store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgres(ctx, cfg.DSN, cfg.Pool)
	case "sqlite", "":
		return NewSQLite(cfg.DSN)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
