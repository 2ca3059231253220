package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chriskorol/nyctaxi/internal/pipeline"
	"github.com/chriskorol/nyctaxi/internal/report"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Load trips, join them to neighborhoods, and write the enriched table",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := pipeline.New(cfg).Enrich(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "enrich")
		}

		dir := cfg.Output.Dir
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "create output dir %s", dir)
		}
		if err := report.WriteEnrichedCSV(filepath.Join(dir, "trips_enriched.csv"), res.Trips); err != nil {
			return err
		}
		if err := report.WriteNeighborhoodCSV(filepath.Join(dir, "neighborhood_fares.csv"), res.Fares); err != nil {
			return err
		}

		zap.L().Info("enrichment complete",
			zap.Int("files", res.Stats.Files),
			zap.Int("rows", res.Stats.Rows),
			zap.Int("loaded", res.Stats.Loaded),
			zap.Int("dropped", res.Stats.Dropped),
			zap.Int("neighborhoods", len(res.Fares)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}
