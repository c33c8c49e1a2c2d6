package main

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/summit-housing/waitlist-cli/internal/arcgis"
	"github.com/summit-housing/waitlist-cli/internal/fetcher"
	"github.com/summit-housing/waitlist-cli/internal/listing"
	"github.com/summit-housing/waitlist-cli/internal/match"
	"github.com/summit-housing/waitlist-cli/internal/model"
	"github.com/summit-housing/waitlist-cli/internal/store"
	"github.com/summit-housing/waitlist-cli/internal/waitlist"
)

// openStore opens the configured backend and applies migrations.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.ToStoreConfig())
	if err != nil {
		return nil, eris.Wrap(err, "cmd: open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "cmd: migrate store")
	}
	return st, nil
}

func newArcGISClient() *arcgis.Client {
	opts := []arcgis.Option{
		arcgis.WithReferer(cfg.ArcGIS.Referer),
		arcgis.WithRateLimit(cfg.ArcGIS.RateLimit),
	}
	if cfg.ArcGIS.APIKey != "" {
		opts = append(opts, arcgis.WithAPIKey(cfg.ArcGIS.APIKey))
	}
	return arcgis.NewClient(opts...)
}

// matchRun is the output of one file-to-matches pipeline pass.
type matchRun struct {
	Entries []model.WaitlistEntry
	Matches []model.Match
	Stats   model.MatchStats
}

// runMatchPipeline reads one waitlist file, builds entries, and
// resolves them against the listings currently in the store.
func runMatchPipeline(ctx context.Context, st store.Store, path, waitlistType, label string) (*matchRun, error) {
	table, err := fetcher.ReadFile(path)
	if err != nil {
		return nil, err
	}

	src := waitlist.Source{
		WaitlistType:  waitlistType,
		WaitlistLabel: label,
		Filename:      filepath.Base(path),
	}
	entries, err := waitlist.BuildEntries(src, table.Header, table.Rows)
	if err != nil {
		return nil, err
	}

	listings, err := st.LoadListings(ctx)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		zap.L().Warn("no listings in store; run listings sync first",
			zap.String("component", "cmd"),
		)
	}

	ix := match.BuildIndex(listing.EnrichAll(listings))
	matches, stats, err := match.Run(ctx, entries, ix)
	if err != nil {
		return nil, err
	}

	return &matchRun{Entries: entries, Matches: matches, Stats: stats}, nil
}

func logStats(waitlistType string, stats model.MatchStats) {
	zap.L().Info("match run complete",
		zap.String("component", "cmd"),
		zap.String("waitlist_type", waitlistType),
		zap.Int("total", stats.Total),
		zap.Int("exact", stats.Exact),
		zap.Int("close", stats.Close),
		zap.Int("missed", stats.Missed),
	)
}
