package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/chriskorol/nyctaxi/internal/pipeline"
	"github.com/chriskorol/nyctaxi/internal/report"
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit the fare regressions and print the run summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pipeline.New(cfg)

		res, err := p.Enrich(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "enrich")
		}
		if err := p.FitModels(res); err != nil {
			return eris.Wrap(err, "fit models")
		}

		fmt.Print(report.FormatSummary(res.Trips, res.Scores, res.OLS))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fitCmd)
}
