package ingest

import (
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// WordMLNamespace is the namespace of Word 2003 XML documents.
const WordMLNamespace = "http://schemas.microsoft.com/office/word/2003/wordml"

// wmlParagraph is a w:p element. Only the text of direct w:r/w:t children
// counts; text inside hyperlinks, fields or drawings is OCR debris.
type wmlParagraph struct {
	Runs []struct {
		Texts []string `xml:"http://schemas.microsoft.com/office/word/2003/wordml t"`
	} `xml:"http://schemas.microsoft.com/office/word/2003/wordml r"`
}

func (p wmlParagraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Texts {
			b.WriteString(t)
		}
	}
	return b.String()
}

// ReadWML returns the text of every w:p paragraph of a Word 2003 XML
// document in document order, empty paragraphs included so that the
// position of a paragraph is its original index.
func ReadWML(ctx context.Context, r io.Reader) ([]string, error) {
	outCh, errCh := StreamXML[wmlParagraph](ctx, r, xml.Name{Space: WordMLNamespace, Local: "p"})

	var texts []string
	for p := range outCh {
		texts = append(texts, p.text())
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}
	return texts, nil
}

// StreamXML decodes XML elements matching name and sends them to a
// channel. An empty name.Space matches any namespace.
// Both channels are closed when processing completes.
func StreamXML[T any](ctx context.Context, r io.Reader, name xml.Name) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		decoder := xml.NewDecoder(r)
		decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
			enc, err := htmlindex.Get(charset)
			if err != nil {
				return nil, eris.Wrapf(err, "xml: unsupported charset %q", charset)
			}
			return enc.NewDecoder().Reader(input), nil
		}

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "xml: context cancelled")
				return
			}

			tok, err := decoder.Token()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "xml: read token")
				return
			}

			se, ok := tok.(xml.StartElement)
			if !ok || se.Name.Local != name.Local {
				continue
			}
			if name.Space != "" && se.Name.Space != name.Space {
				continue
			}

			var item T
			if err := decoder.DecodeElement(&item, &se); err != nil {
				errCh <- eris.Wrap(err, "xml: decode element")
				return
			}

			select {
			case outCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "xml: context cancelled")
				return
			}
		}
	}()

	return outCh, errCh
}
