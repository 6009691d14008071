package export

import (
	"archive/zip"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/turkology-cli/internal/model"
)

// WriteBundle writes a ZIP archive holding the JSON, JSONL and XLSX exports
// plus the rejected paragraphs as rejected.json.
func WriteBundle(w io.Writer, citations []model.Citation, rejected []model.Rejected) error {
	zw := zip.NewWriter(w)

	entries := []struct {
		name  string
		write func(io.Writer) error
	}{
		{FileName(FormatJSON), func(w io.Writer) error { return WriteJSON(w, citations) }},
		{FileName(FormatJSONL), func(w io.Writer) error { return WriteJSONL(w, citations) }},
		{FileName(FormatXLSX), func(w io.Writer) error { return WriteXLSX(w, citations) }},
		{"rejected.json", func(w io.Writer) error { return writeRejected(w, rejected) }},
	}

	for _, e := range entries {
		fw, err := zw.Create(e.name)
		if err != nil {
			return eris.Wrapf(err, "export: create zip entry %s", e.name)
		}
		if err := e.write(fw); err != nil {
			return err
		}
	}
	return eris.Wrap(zw.Close(), "export: close zip")
}

func writeRejected(w io.Writer, rejected []model.Rejected) error {
	if rejected == nil {
		rejected = []model.Rejected{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(rejected), "export: encode rejected")
}
