package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/turkology-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "turkology-cli",
	Short: "Citation parser for the Turkologischer Anzeiger",
	Long:  "Reads OCR'd volumes of the Turkologischer Anzeiger, classifies paragraphs, extracts structured citations and stores or exports them.",
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
