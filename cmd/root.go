package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chriskorol/nyctaxi/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "nyctaxi",
	Short: "NYC taxi fare analysis pipeline",
	Long:  "Loads yellow-cab trip records, joins pickups to NTA neighborhood polygons, fits fare regressions, and renders tables, charts, and an interactive map.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
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
