package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chriskorol/nyctaxi/internal/pipeline"
)

var runSkipExport bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full analysis: load, enrich, fit, report, export",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p := pipeline.New(cfg)
		res, err := p.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		if !runSkipExport && cfg.Export.Driver != "" {
			if err := p.Export(ctx, res); err != nil {
				return eris.Wrap(err, "export")
			}
		}

		zap.L().Info("analysis complete",
			zap.Int("trips", len(res.Trips)),
			zap.Int("neighborhoods", len(res.Fares)),
			zap.Int("models", len(res.Scores)),
			zap.String("output", cfg.Output.Dir),
		)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runSkipExport, "skip-export", false, "skip the relational export stage")
	rootCmd.AddCommand(runCmd)
}
