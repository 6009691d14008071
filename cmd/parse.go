package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/turkology-cli/internal/export"
	"github.com/sells-group/turkology-cli/internal/pipeline"
)

var parseCmd = &cobra.Command{
	Use:   "parse [volume files, directories or zip archives...]",
	Short: "Parse volumes into citations",
	Long: "Reads each volume, applies paragraph corrections, classifies paragraphs, extracts citation fields, " +
		"reinforces known authors, then links repetitions. Results are stored and exported.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if noAuthors, _ := cmd.Flags().GetBool("no-authors"); noAuthors {
			cfg.Pipeline.FindAuthors = false
		}
		if noReps, _ := cmd.Flags().GetBool("no-repetitions"); noReps {
			cfg.Pipeline.ResolveRepetitions = false
		}
		if cmd.Flags().Changed("concurrency") {
			cfg.Pipeline.Concurrency, _ = cmd.Flags().GetInt("concurrency")
		}
		if err := cfg.Validate("parse"); err != nil {
			return err
		}

		inputs := args
		if len(inputs) == 0 {
			inputs = cfg.Input
		}
		if len(inputs) == 0 {
			return fmt.Errorf("no input volumes given (args or config input)")
		}

		formats, err := exportFormats(cmd)
		if err != nil {
			return err
		}
		outDir, _ := cmd.Flags().GetString("out")
		if outDir == "" {
			outDir = cfg.Export.Dir
		}

		p, err := newPipeline(ctx)
		if err != nil {
			return err
		}

		var result *pipeline.Result
		if noStore, _ := cmd.Flags().GetBool("no-store"); noStore {
			result, err = p.Run(ctx, inputs)
			if err != nil {
				return err
			}
		} else {
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			run, res, err := p.RunAndPersist(ctx, st, inputs)
			if err != nil {
				return err
			}
			zap.L().Info("parse: run stored", zap.String("run_id", run.ID))
			result = res
		}

		if len(formats) > 0 {
			if _, err := export.WriteFiles(outDir, formats, result.Citations, result.Rejected); err != nil {
				return err
			}
		}

		formatRunSummary(os.Stdout, result.Stats)
		return nil
	},
}

// exportFormats reads --formats, falling back to export.formats.
func exportFormats(cmd *cobra.Command) ([]export.Format, error) {
	names, _ := cmd.Flags().GetStringSlice("formats")
	if !cmd.Flags().Changed("formats") {
		names = cfg.Export.Formats
	}
	return export.ParseFormats(names)
}

func init() {
	parseCmd.Flags().String("out", "", "export directory (default from config)")
	parseCmd.Flags().StringSlice("formats", nil, "export formats: json, jsonl, xlsx, zip (default from config)")
	parseCmd.Flags().Bool("no-store", false, "do not write the run to the store")
	parseCmd.Flags().Bool("no-authors", false, "skip known-author reinforcement")
	parseCmd.Flags().Bool("no-repetitions", false, "skip repetition linking")
	parseCmd.Flags().Int("concurrency", 0, "volumes parsed in parallel (default from config)")
	rootCmd.AddCommand(parseCmd)
}
