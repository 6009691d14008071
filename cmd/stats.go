package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show parse statistics of the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stats, err := st.Stats(ctx)
		if err != nil {
			return eris.Wrap(err, "stats")
		}
		volumes, err := st.ListVolumes(ctx)
		if err != nil {
			return eris.Wrap(err, "stats: volumes")
		}

		formatStoreStats(os.Stdout, stats, volumes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

// formatStoreStats writes totals, the per-type counts and a per-volume
// table to w.
func formatStoreStats(out io.Writer, s *store.Stats, volumes []store.VolumeSummary) {
	_, _ = fmt.Fprintf(out, "Volumes:       %d\n", s.Volumes)
	_, _ = fmt.Fprintf(out, "Paragraphs:    %d\n", s.Paragraphs)
	_, _ = fmt.Fprintf(out, "Citations:     %d\n", s.Citations)
	_, _ = fmt.Fprintf(out, "Fully parsed:  %d (%.1f%%)\n", s.FullyParsed, 100*s.ParseRate())
	_, _ = fmt.Fprintf(out, "Rejected:      %d\n", s.Rejected)

	types := make([]string, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, t)
	}
	slices.Sort(types)
	if len(types) > 0 {
		_, _ = fmt.Fprintln(out, "\nBy type:")
		for _, t := range types {
			_, _ = fmt.Fprintf(out, "  %-12s %d\n", t, s.ByType[t])
		}
	}

	if len(volumes) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VOLUME\tCITATIONS\tFULLY_PARSED\tRATE")
	for _, v := range volumes {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\n", v.Volume, v.Citations, v.FullyParsed, percent(v.FullyParsed, v.Citations))
	}
	_ = w.Flush()
}

// formatRunSummary writes the stats of a finished parse run to w.
func formatRunSummary(out io.Writer, s model.RunStats) {
	_, _ = fmt.Fprintf(out, "Volumes:          %d\n", s.Volumes)
	for _, f := range s.FailedVolumes {
		_, _ = fmt.Fprintf(out, "  failed:         %s\n", f)
	}
	_, _ = fmt.Fprintf(out, "Paragraphs:       %d\n", s.Paragraphs)
	_, _ = fmt.Fprintf(out, "Citations:        %d\n", s.Citations)
	_, _ = fmt.Fprintf(out, "Fully parsed:     %d (%.1f%%)\n", s.FullyParsed, 100*s.ParseRate())
	_, _ = fmt.Fprintf(out, "Rejected:         %d\n", s.Rejected)
	_, _ = fmt.Fprintf(out, "Authors added:    %d\n", s.AuthorsAdded)
	_, _ = fmt.Fprintf(out, "Repetition links: %d\n", s.RepetitionLinks)
}
