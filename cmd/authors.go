package main

import (
	"bufio"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/turkology-cli/internal/export"
	"github.com/sells-group/turkology-cli/internal/pipeline"
)

var authorsCmd = &cobra.Command{
	Use:   "authors <citations.json>",
	Short: "Reinforce authors of a citation export",
	Long: "Harvests the author names of a JSON export and matches them at the start of citations " +
		"that have no authors yet. Extra names can be given one per line with --known.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		citations, err := export.ReadJSONFile(ctx, args[0])
		if err != nil {
			return err
		}

		var extra []string
		if known, _ := cmd.Flags().GetString("known"); known != "" {
			if extra, err = readLines(known); err != nil {
				return err
			}
		}

		out, n, err := pipeline.FindAuthors(ctx, citations, extra, cfg.Pipeline.Concurrency)
		if err != nil {
			return err
		}
		zap.L().Info("authors: done", zap.Int("citations", len(out)), zap.Int("updated", n))

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

// readLines returns the non-blank lines of a file.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, eris.Wrapf(sc.Err(), "read %s", path)
}

func init() {
	authorsCmd.Flags().String("out", "", "output file (default stdout)")
	authorsCmd.Flags().String("known", "", "file with additional known author names, one per line")
	rootCmd.AddCommand(authorsCmd)
}
