package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chriskorol/nyctaxi/internal/pipeline"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the analysis and write tables, charts, and the map",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := pipeline.New(cfg).Run(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("report written",
			zap.String("output", cfg.Output.Dir),
			zap.Int("trips", len(res.Trips)),
			zap.Int("models", len(res.Scores)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
