package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/turkology-cli/internal/export"
	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/store"
)

// exportPageSize is the number of citations read from the store per query.
const exportPageSize = 1000

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored citations to files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		formats, err := exportFormats(cmd)
		if err != nil {
			return err
		}
		outDir, _ := cmd.Flags().GetString("out")
		if outDir == "" {
			outDir = cfg.Export.Dir
		}
		volume, _ := cmd.Flags().GetString("volume")

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		citations, err := listAllCitations(cmd, st, store.CitationFilter{Volume: volume})
		if err != nil {
			return err
		}
		rejected, err := st.ListRejected(ctx, volume)
		if err != nil {
			return eris.Wrap(err, "export: list rejected")
		}

		_, err = export.WriteFiles(outDir, formats, citations, rejected)
		return err
	},
}

// listAllCitations pages through the store until a short page comes back.
func listAllCitations(cmd *cobra.Command, st store.Store, filter store.CitationFilter) ([]model.Citation, error) {
	var all []model.Citation
	filter.Limit = exportPageSize
	for {
		page, err := st.ListCitations(cmd.Context(), filter)
		if err != nil {
			return nil, eris.Wrap(err, "export: list citations")
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			return all, nil
		}
		filter.Offset += len(page)
	}
}

func init() {
	exportCmd.Flags().String("out", "", "export directory (default from config)")
	exportCmd.Flags().StringSlice("formats", nil, "export formats: json, jsonl, xlsx, zip (default from config)")
	exportCmd.Flags().String("volume", "", "only export this volume")
	rootCmd.AddCommand(exportCmd)
}
