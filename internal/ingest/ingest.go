// Package ingest reads OCR volume files into paragraphs. Word 2003 XML is
// the primary format; JSON paragraph dumps, HTML exports and DOC/DOCX
// files are accepted as alternates, and zip archives of any of them are
// unpacked first.
package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/turkology-cli/internal/model"
)

// ErrUnsupportedFormat is returned for files whose extension has no reader.
var ErrUnsupportedFormat = eris.New("ingest: unsupported file format")

// volumeName matches the "TA<volume>_" prefix of the OCR file names.
var volumeName = regexp.MustCompile(`^TA(\d+(?:-\d+)?)_`)

// VolumeID derives the volume id from a file name: "TA06_02_x.xml" is
// volume "6", "TA22-23_x.xml" is volume "22-23".
func VolumeID(path string) (string, error) {
	m := volumeName.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return "", eris.Errorf("ingest: no volume id in file name %q", filepath.Base(path))
	}
	if n, err := strconv.Atoi(m[1]); err == nil {
		return strconv.Itoa(n), nil
	}
	return m[1], nil
}

// ReadVolume reads every paragraph of one volume file. The reader is
// chosen by file extension.
func ReadVolume(ctx context.Context, path string) ([]model.Paragraph, error) {
	volume, err := VolumeID(path)
	if err != nil {
		return nil, err
	}

	var texts []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		texts, err = readFile(ctx, path, ReadWML)
	case ".html", ".htm":
		texts, err = readFile(ctx, path, ReadHTML)
	case ".doc", ".docx":
		texts, err = ReadDocument(path)
	case ".json":
		return readParagraphFile(ctx, path, volume)
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "ingest: %s", path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}

	paragraphs := make([]model.Paragraph, len(texts))
	for i, text := range texts {
		paragraphs[i] = model.Paragraph{
			OriginalIndex: i,
			Volume:        volume,
			Text:          normalizeText(text),
		}
	}

	zap.L().Debug("ingest: read volume",
		zap.String("path", path),
		zap.String("volume", volume),
		zap.Int("paragraphs", len(paragraphs)),
	)
	return paragraphs, nil
}

// Expand resolves the input arguments into volume files. Directories are
// listed (non-recursively, sorted by name) and zip archives are extracted
// into tmpDir.
func Expand(inputs []string, tmpDir string) ([]string, error) {
	var files []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: stat %s", input)
		}

		if info.IsDir() {
			entries, err := os.ReadDir(input)
			if err != nil {
				return nil, eris.Wrapf(err, "ingest: list %s", input)
			}
			for _, e := range entries {
				if e.IsDir() || !isVolumeFile(e.Name()) {
					continue
				}
				files = append(files, filepath.Join(input, e.Name()))
			}
			continue
		}

		if strings.EqualFold(filepath.Ext(input), ".zip") {
			dest := filepath.Join(tmpDir, strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)))
			extracted, err := ExtractZIP(input, dest, isVolumeFile)
			if err != nil {
				return nil, err
			}
			files = append(files, extracted...)
			continue
		}

		files = append(files, input)
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

func isVolumeFile(name string) bool {
	if !volumeName.MatchString(name) {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml", ".html", ".htm", ".doc", ".docx", ".json":
		return true
	}
	return false
}

func readFile(ctx context.Context, path string, read func(context.Context, io.Reader) ([]string, error)) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open file")
	}
	defer f.Close() //nolint:errcheck
	return read(ctx, f)
}

// normalizeText composes the OCR text into NFC so that precomposed and
// decomposed diacritics compare equal.
func normalizeText(s string) string {
	return norm.NFC.String(s)
}
