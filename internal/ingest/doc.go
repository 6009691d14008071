package ingest

import (
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/rotisserie/eris"
)

// ReadDocument converts a DOC or DOCX file to plain text and returns one
// paragraph per line. Conversion of legacy .doc files needs the external
// converters docconv shells out to.
func ReadDocument(path string) ([]string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return nil, eris.Wrap(err, "doc: convert")
	}
	return splitLines(res.Body), nil
}

func splitLines(body string) []string {
	body = strings.TrimRight(body, "\r\n")
	if body == "" {
		return nil
	}
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}
