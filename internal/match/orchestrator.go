package match

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/summit-housing/waitlist-cli/internal/model"
)

const maxLowConfidenceSamples = 10

// Run resolves every entry against the indexes and aggregates the
// results. Entries are independent, so resolution fans out across
// CPUs; results land in per-entry slots and are folded in input order,
// which keeps the output deterministic.
func Run(ctx context.Context, entries []model.WaitlistEntry, ix *Index) ([]model.Match, model.MatchStats, error) {
	type result struct {
		match  *model.Match
		sample *model.LowConfidenceSample
	}
	results := make([]result, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, s := Resolve(&entries[i], ix)
			results[i] = result{match: m, sample: s}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, model.MatchStats{}, err
	}

	var matches []model.Match
	stats := model.MatchStats{Total: len(entries)}
	for i, r := range results {
		if r.match != nil {
			matches = append(matches, *r.match)
			if r.match.Score >= 0.99 {
				stats.Exact++
			} else {
				stats.Close++
			}
		} else {
			stats.Missed++
			if stats.FirstUnmatched == nil {
				e := &entries[i]
				stats.FirstUnmatched = &model.UnmatchedEntry{
					EntryID:      e.ID,
					AddressLine1: e.AddressLine1,
					AddressLine2: e.AddressLine2,
					CombinedKey:  e.CombinedKey,
					StreetKey:    e.StreetKey,
					SourceFile:   e.SourceFile,
					SourceRow:    e.SourceRow,
				}
			}
		}
		if r.sample != nil && len(stats.LowConfidence) < maxLowConfidenceSamples {
			stats.LowConfidence = append(stats.LowConfidence, *r.sample)
		}
	}

	zap.L().Info("matching run complete",
		zap.String("component", "match_orchestrator"),
		zap.Int("total", stats.Total),
		zap.Int("exact", stats.Exact),
		zap.Int("close", stats.Close),
		zap.Int("missed", stats.Missed),
		zap.Int("low_confidence", len(stats.LowConfidence)),
	)
	return matches, stats, nil
}
