package ingest

import (
	"context"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// ReadHTML returns the text of every <p> element of an HTML export of a
// volume, in document order.
func ReadHTML(ctx context.Context, r io.Reader) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "html: context cancelled")
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "html: parse document")
	}

	var texts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, s.Text())
	})
	return texts, nil
}
