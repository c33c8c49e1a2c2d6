package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/summit-housing/waitlist-cli/internal/arcgis"
)

var (
	listingsWhere  string
	listingsLat    float64
	listingsLng    float64
	listingsRadius float64
	listingsMax    int
)

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Manage reference property listings",
}

var listingsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch county parcel records and upsert them into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.ArcGIS.LayerURL == "" {
			return eris.New("arcgis layer URL is required (WAITLIST_ARCGIS_LAYER_URL)")
		}

		q := arcgis.Query{Where: listingsWhere, MaxRecords: listingsMax}
		if listingsRadius > 0 {
			env, err := arcgis.SearchEnvelope(listingsLat, listingsLng, listingsRadius)
			if err != nil {
				return eris.Wrap(err, "build search envelope")
			}
			q.Geometry = env
		}

		listings, err := newArcGISClient().FetchListings(ctx, cfg.ArcGIS.LayerURL, q)
		if err != nil {
			return eris.Wrap(err, "fetch listings")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.UpsertListings(ctx, listings)
		if err != nil {
			return eris.Wrap(err, "upsert listings")
		}

		zap.L().Info("listings sync complete",
			zap.String("component", "cmd"),
			zap.Int("fetched", len(listings)),
			zap.Int64("upserted", n),
		)
		return nil
	},
}

func init() {
	listingsSyncCmd.Flags().StringVar(&listingsWhere, "where", "", "layer where clause (default 1=1)")
	listingsSyncCmd.Flags().Float64Var(&listingsLat, "lat", 0, "envelope center latitude")
	listingsSyncCmd.Flags().Float64Var(&listingsLng, "lng", 0, "envelope center longitude")
	listingsSyncCmd.Flags().Float64Var(&listingsRadius, "radius", 0, "envelope radius in meters (0 disables the spatial filter)")
	listingsSyncCmd.Flags().IntVar(&listingsMax, "max", 0, "stop after this many features (0 means all)")
	listingsCmd.AddCommand(listingsSyncCmd)
	rootCmd.AddCommand(listingsCmd)
}
