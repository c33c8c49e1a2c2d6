package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importFile  string
	importType  string
	importLabel string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a waitlist file and persist entries plus matches",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if importType == "" {
			return eris.New("waitlist type is required (--type)")
		}
		label := importLabel
		if label == "" {
			label = importType
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := runMatchPipeline(ctx, st, importFile, importType, label)
		if err != nil {
			return eris.Wrap(err, "import waitlist")
		}

		if err := st.ReplaceWaitlist(ctx, importType, run.Entries, run.Matches); err != nil {
			return eris.Wrap(err, "persist waitlist")
		}

		logStats(importType, run.Stats)
		for _, s := range run.Stats.LowConfidence {
			zap.L().Warn("ambiguous entry",
				zap.String("component", "cmd"),
				zap.String("entry_id", s.EntryID),
				zap.String("address", s.AddressLine1),
				zap.String("attempt", string(s.Attempt)),
				zap.Strings("candidates", s.CandidateIDs),
			)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to waitlist CSV/TSV/XLSX (required)")
	importCmd.Flags().StringVar(&importType, "type", "", "waitlist type, e.g. housing (required)")
	importCmd.Flags().StringVar(&importLabel, "label", "", "human-readable waitlist label (default: type)")
	_ = importCmd.MarkFlagRequired("file")
	_ = importCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(importCmd)
}
