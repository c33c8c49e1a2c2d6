package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rostersTown string

var rostersCmd = &cobra.Command{
	Use:   "rosters",
	Short: "Fetch municipal STR license rosters and replace them in the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		sources := cfg.ArcGIS.RosterSources()
		if rostersTown != "" {
			filtered := sources[:0:0]
			for _, src := range sources {
				if src.Municipality == rostersTown {
					filtered = append(filtered, src)
				}
			}
			if len(filtered) == 0 {
				return eris.Errorf("no roster source configured for town %q", rostersTown)
			}
			sources = filtered
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		client := newArcGISClient()
		for _, src := range sources {
			licenses, err := client.FetchRoster(ctx, src)
			if err != nil {
				return eris.Wrapf(err, "fetch roster for %s", src.Municipality)
			}
			if err := st.ReplaceRoster(ctx, src.Municipality, licenses); err != nil {
				return eris.Wrapf(err, "replace roster for %s", src.Municipality)
			}
			zap.L().Info("roster replaced",
				zap.String("component", "cmd"),
				zap.String("municipality", src.Municipality),
				zap.Int("licenses", len(licenses)),
			)
		}
		return nil
	},
}

func init() {
	rostersCmd.Flags().StringVar(&rostersTown, "town", "", "only sync this municipality")
	rootCmd.AddCommand(rostersCmd)
}
