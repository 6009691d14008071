package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/turkology-cli/internal/ingest"
	"github.com/sells-group/turkology-cli/internal/model"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <volume file>",
	Short: "Dump the classified paragraphs of one volume",
	Long: "Applies corrections and classification to one volume and prints every paragraph with its role. " +
		"With --json the paragraphs are written as JSON, which parse accepts as input.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, err := newPipeline(ctx)
		if err != nil {
			return err
		}

		paragraphs, err := ingest.ReadVolume(ctx, args[0])
		if err != nil {
			return err
		}
		volume, err := ingest.VolumeID(args[0])
		if err != nil {
			return err
		}
		classified := p.Classify(volume, paragraphs)

		asJSON, _ := cmd.Flags().GetBool("json")
		out, _ := cmd.Flags().GetString("out")
		if asJSON {
			return writeJSON(out, classified)
		}

		w, err := outputWriter(out)
		if err != nil {
			return err
		}
		onlyRoles, _ := cmd.Flags().GetBool("roles-only")
		formatParagraphs(w, classified, onlyRoles)
		return w.Close()
	},
}

// formatParagraphs writes one line per paragraph: index, role and text.
// With onlyRoles, unclassified paragraphs are skipped.
func formatParagraphs(out io.Writer, paragraphs []model.Paragraph, onlyRoles bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "INDEX\tROLE\tTEXT")
	for _, p := range paragraphs {
		if onlyRoles && p.Role == model.RoleNone {
			continue
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", p.OriginalIndex, p.Role, truncate(p.Text, 100))
	}
	_ = w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	classifyCmd.Flags().Bool("json", false, "write paragraphs as JSON")
	classifyCmd.Flags().String("out", "", "output file (default stdout)")
	classifyCmd.Flags().Bool("roles-only", false, "skip paragraphs without a role")
	rootCmd.AddCommand(classifyCmd)
}
