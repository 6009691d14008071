// Package export writes parsed citations to files: a JSON array, JSON
// lines, an XLSX review sheet and a ZIP bundle of all of them.
package export

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/turkology-cli/internal/ingest"
	"github.com/sells-group/turkology-cli/internal/model"
)

// Format identifies an export file format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatXLSX  Format = "xlsx"
	FormatZIP   Format = "zip"
)

// ErrUnknownFormat is returned for format names ParseFormats does not know.
var ErrUnknownFormat = eris.New("export: unknown format")

// ParseFormats converts format names into Formats, dropping duplicates.
func ParseFormats(names []string) ([]Format, error) {
	seen := make(map[Format]bool, len(names))
	var out []Format
	for _, n := range names {
		f := Format(strings.ToLower(strings.TrimSpace(n)))
		switch f {
		case FormatJSON, FormatJSONL, FormatXLSX, FormatZIP:
		default:
			return nil, eris.Wrapf(ErrUnknownFormat, "%q", n)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// FileName returns the name of the file written for f.
func FileName(f Format) string {
	switch f {
	case FormatXLSX:
		return "review.xlsx"
	case FormatZIP:
		return "bundle.zip"
	default:
		return "citations." + string(f)
	}
}

// WriteJSON writes citations as one indented JSON array. A nil slice is
// written as an empty array.
func WriteJSON(w io.Writer, citations []model.Citation) error {
	if citations == nil {
		citations = []model.Citation{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(citations), "export: encode json")
}

// WriteJSONL writes one citation per line.
func WriteJSONL(w io.Writer, citations []model.Citation) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range citations {
		if err := enc.Encode(citations[i]); err != nil {
			return eris.Wrapf(err, "export: encode citation %s", citations[i].ID)
		}
	}
	return nil
}

// ReadJSON reads citations written by WriteJSON.
func ReadJSON(ctx context.Context, r io.Reader) ([]model.Citation, error) {
	outCh, errCh := ingest.DecodeJSONArray[model.Citation](ctx, r)

	var citations []model.Citation
	for c := range outCh {
		citations = append(citations, c)
	}
	for err := range errCh {
		if err != nil {
			return nil, eris.Wrap(err, "export: read json")
		}
	}
	return citations, nil
}

// ReadJSONFile reads a citation JSON export from disk.
func ReadJSONFile(ctx context.Context, path string) ([]model.Citation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return ReadJSON(ctx, f)
}

// WriteFiles writes every requested format into dir and returns the paths
// written, in format order.
func WriteFiles(dir string, formats []Format, citations []model.Citation, rejected []model.Rejected) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "export: create dir %s", dir)
	}

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := filepath.Join(dir, FileName(f))
		if err := writeFile(path, f, citations, rejected); err != nil {
			return paths, err
		}
		zap.L().Info("export: wrote file",
			zap.String("format", string(f)),
			zap.String("path", path),
			zap.Int("citations", len(citations)),
		)
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, f Format, citations []model.Citation, rejected []model.Rejected) error {
	out, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}

	switch f {
	case FormatJSON:
		err = WriteJSON(out, citations)
	case FormatJSONL:
		err = WriteJSONL(out, citations)
	case FormatXLSX:
		err = WriteXLSX(out, citations)
	case FormatZIP:
		err = WriteBundle(out, citations, rejected)
	default:
		err = eris.Wrapf(ErrUnknownFormat, "%q", f)
	}
	if cerr := out.Close(); err == nil && cerr != nil {
		err = eris.Wrapf(cerr, "export: close %s", path)
	}
	return err
}
