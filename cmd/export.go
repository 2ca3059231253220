package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chriskorol/nyctaxi/internal/pipeline"
)

var (
	exportDriver string
	exportDSN    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Push a trip sample and aggregates into the relational sink",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if exportDriver != "" {
			cfg.Export.Driver = exportDriver
		}
		if exportDSN != "" {
			cfg.Export.DSN = exportDSN
		}

		p := pipeline.New(cfg)
		res, err := p.Enrich(ctx)
		if err != nil {
			return eris.Wrap(err, "enrich")
		}
		if err := p.Export(ctx, res); err != nil {
			return eris.Wrap(err, "export")
		}

		zap.L().Info("export complete",
			zap.String("driver", cfg.Export.Driver),
			zap.String("dsn", cfg.Export.DSN),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDriver, "driver", "", "sink driver: sqlite or postgres (default from config)")
	exportCmd.Flags().StringVar(&exportDSN, "dsn", "", "sink connection string (default from config)")
	rootCmd.AddCommand(exportCmd)
}
