package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/turkology-cli/internal/export"
	"github.com/sells-group/turkology-cli/internal/repetitions"
)

var repetitionsCmd = &cobra.Command{
	Use:   "repetitions <citations.json>",
	Short: "Link repeated citations of a citation export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		citations, err := export.ReadJSONFile(ctx, args[0])
		if err != nil {
			return err
		}

		out, links := repetitions.Link(citations)
		zap.L().Info("repetitions: done", zap.Int("citations", len(out)), zap.Int("links", links))

		outPath, _ := cmd.Flags().GetString("out")
		w, err := outputWriter(outPath)
		if err != nil {
			return err
		}
		if err := export.WriteJSON(w, out); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	},
}

func init() {
	repetitionsCmd.Flags().String("out", "", "output file (default stdout)")
	rootCmd.AddCommand(repetitionsCmd)
}
