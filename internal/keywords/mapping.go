// Package keywords loads the keyword code mapping of the annual and turns
// the raw section headings attached to citations into coded keywords.
package keywords

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/turkology-cli/internal/ingest"
	"github.com/sells-group/turkology-cli/internal/model"
)

// Load reads a keyword mapping file. CSV files are ';' separated with
// '"' quoting; XLSX files are read from their first sheet. Both hold the
// columns code, German name, English name.
func Load(ctx context.Context, path string) (model.KeywordMapping, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "keywords: open %s", path)
		}
		defer f.Close() //nolint:errcheck

		rows, err := ingest.CollectRows(ingest.StreamCSV(ctx, f, ingest.CSVOptions{
			Delimiter: ';',
			TrimSpace: true,
		}))
		if err != nil {
			return nil, eris.Wrapf(err, "keywords: read %s", path)
		}
		return FromRows(rows), nil

	case ".xlsx":
		rows, err := ingest.ReadXLSX(path, ingest.XLSXOptions{})
		if err != nil {
			return nil, eris.Wrapf(err, "keywords: read %s", path)
		}
		return FromRows(rows), nil
	}
	return nil, eris.Errorf("keywords: unsupported mapping file %q", path)
}

// FromRows builds a mapping from code/de/en rows. A header row whose first
// cell is "code" is skipped, as are rows with fewer than three cells.
func FromRows(rows [][]string) model.KeywordMapping {
	mapping := make(model.KeywordMapping, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			zap.L().Debug("keywords: skipping short mapping row", zap.Int("row", i), zap.Strings("cells", row))
			continue
		}
		code := strings.TrimSpace(row[0])
		if code == "" || (i == 0 && strings.EqualFold(code, "code")) {
			continue
		}
		mapping[code] = model.KeywordName{
			DE: strings.TrimSpace(row[1]),
			EN: strings.TrimSpace(row[2]),
		}
	}
	return mapping
}
