package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	matchFile string
	matchType string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Dry-run a waitlist file against stored listings without persisting",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := runMatchPipeline(ctx, st, matchFile, matchType, matchType)
		if err != nil {
			return eris.Wrap(err, "match waitlist")
		}

		logStats(matchType, run.Stats)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run.Stats)
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchFile, "file", "", "path to waitlist CSV/TSV/XLSX (required)")
	matchCmd.Flags().StringVar(&matchType, "type", "housing", "waitlist type")
	_ = matchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(matchCmd)
}
