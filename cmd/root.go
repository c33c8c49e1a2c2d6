package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/summit-housing/waitlist-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "waitlist-cli",
	Short: "Housing waitlist address matching",
	Long:  "Imports spreadsheet-exported waitlist rows, normalizes addresses, and links them to county property records and municipal license rosters.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		if err := config.ApplyNormalizeOverrides(cfg.Normalize); err != nil {
			return fmt.Errorf("apply normalize overrides: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
