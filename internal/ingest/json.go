package ingest

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/turkology-cli/internal/model"
)

// DecodeJSONArray decodes a JSON array streaming, sending each element to a channel.
// Expects input in the form [{...},{...}].
// Both channels are closed when processing completes.
func DecodeJSONArray[T any](ctx context.Context, r io.Reader) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		decoder := json.NewDecoder(r)

		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			errCh <- eris.Wrap(err, "json: read opening token")
			return
		}

		delim, ok := tok.(json.Delim)
		if !ok || delim != '[' {
			errCh <- eris.Errorf("json: expected '[', got %v", tok)
			return
		}

		for decoder.More() {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}

			var item T
			if err := decoder.Decode(&item); err != nil {
				errCh <- eris.Wrap(err, "json: decode element")
				return
			}

			select {
			case outCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}
		}

		if _, err := decoder.Token(); err != nil && err != io.EOF {
			errCh <- eris.Wrap(err, "json: read closing token")
		}
	}()

	return outCh, errCh
}

// ReadParagraphs decodes a JSON array of paragraphs as written by the
// classify command. Roles are cleared; classification always runs again.
// Paragraphs without a volume get the given one.
func ReadParagraphs(ctx context.Context, r io.Reader, volume string) ([]model.Paragraph, error) {
	outCh, errCh := DecodeJSONArray[model.Paragraph](ctx, r)

	var paragraphs []model.Paragraph
	for p := range outCh {
		if p.Volume == "" {
			p.Volume = volume
		}
		p.Text = normalizeText(p.Text)
		p.Role = model.RoleNone
		paragraphs = append(paragraphs, p)
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}
	return paragraphs, nil
}

func readParagraphFile(ctx context.Context, path, volume string) ([]model.Paragraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	paragraphs, err := ReadParagraphs(ctx, f, volume)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}
	return paragraphs, nil
}
