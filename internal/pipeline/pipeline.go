// Package pipeline runs the parse of one or more annual volumes: ingest,
// corrections, classification, assembly, field extraction and the
// cross-volume passes.
package pipeline

import (
	"context"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/turkology-cli/internal/assemble"
	"github.com/sells-group/turkology-cli/internal/authors"
	"github.com/sells-group/turkology-cli/internal/cascade"
	"github.com/sells-group/turkology-cli/internal/classify"
	"github.com/sells-group/turkology-cli/internal/corrections"
	"github.com/sells-group/turkology-cli/internal/fields"
	"github.com/sells-group/turkology-cli/internal/ids"
	"github.com/sells-group/turkology-cli/internal/ingest"
	"github.com/sells-group/turkology-cli/internal/keywords"
	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/repetitions"
)

// ErrNoVolumes is returned when the inputs resolve to no volume files.
var ErrNoVolumes = eris.New("pipeline: no volume files")

// Options configures a Pipeline.
type Options struct {
	Concurrency        int
	FindAuthors        bool
	ResolveRepetitions bool
	Corrections        []corrections.Correction
	TempDir            string
}

// Pipeline parses volumes. It holds only read-only state and may run
// several volumes at once.
type Pipeline struct {
	opts       Options
	classifier *classify.Classifier
	normalizer *keywords.Normalizer
}

// New creates a Pipeline for the given keyword mapping.
func New(mapping model.KeywordMapping, opts Options, classifyOpts ...classify.Option) *Pipeline {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Pipeline{
		opts:       opts,
		classifier: classify.New(mapping, classifyOpts...),
		normalizer: keywords.NewNormalizer(mapping),
	}
}

// VolumeResult is the outcome of parsing one volume file.
type VolumeResult struct {
	Volume     string            `json:"volume"`
	Path       string            `json:"path,omitempty"`
	Paragraphs []model.Paragraph `json:"paragraphs"`
	Citations  []model.Citation  `json:"citations"`
	Rejected   []model.Rejected  `json:"rejected,omitempty"`
}

// Result is the outcome of a run over several volumes.
type Result struct {
	Volumes   []*VolumeResult
	Citations []model.Citation
	Rejected  []model.Rejected
	Stats     model.RunStats
}

// Classify applies the paragraph corrections of the volume and assigns
// paragraph roles.
func (p *Pipeline) Classify(volume string, paragraphs []model.Paragraph) []model.Paragraph {
	if p.opts.Corrections != nil {
		paragraphs = corrections.Apply(volume, paragraphs, p.opts.Corrections)
	} else {
		paragraphs = corrections.FixBullets(paragraphs)
	}
	return p.classifier.Classify(paragraphs)
}

// ParseParagraphs turns the paragraphs of one volume into citations.
// Records that cannot be turned into a citation are returned as rejected.
func (p *Pipeline) ParseParagraphs(volume string, paragraphs []model.Paragraph) *VolumeResult {
	log := zap.L().With(zap.String("volume", volume))
	res := &VolumeResult{Volume: volume}

	res.Paragraphs = p.Classify(volume, paragraphs)
	records := assemble.Assemble(res.Paragraphs)

	citations := make([]model.Citation, 0, len(records))
	for _, rec := range records {
		extracted, err := cascade.Extract(rec)
		if err == nil {
			var c model.Citation
			if c, err = fields.Build(extracted); err == nil {
				citations = append(citations, p.normalizer.Apply(c))
				continue
			}
		}
		log.Debug("pipeline: rejected record", zap.Int("index", rec.OriginalIndex), zap.Error(err))
		res.Rejected = append(res.Rejected, model.Rejected{
			Volume:        volume,
			OriginalIndex: rec.OriginalIndex,
			Text:          rec.RawText,
			Reason:        err.Error(),
		})
	}
	res.Citations = ids.Assign(citations)

	log.Info("pipeline: volume parsed",
		zap.Int("paragraphs", len(res.Paragraphs)),
		zap.Int("citations", len(res.Citations)),
		zap.Int("fully_parsed", countFullyParsed(res.Citations)),
		zap.Int("rejected", len(res.Rejected)),
	)
	return res
}

// ParseFile reads one volume file and parses it.
func (p *Pipeline) ParseFile(ctx context.Context, path string) (*VolumeResult, error) {
	paragraphs, err := ingest.ReadVolume(ctx, path)
	if err != nil {
		return nil, err
	}
	volume, err := ingest.VolumeID(path)
	if err != nil {
		return nil, err
	}
	res := p.ParseParagraphs(volume, paragraphs)
	res.Path = path
	return res, nil
}

// Run parses every volume the inputs resolve to, then runs the
// cross-volume passes. A volume that fails is logged and listed in
// Stats.FailedVolumes; it does not stop the others.
func (p *Pipeline) Run(ctx context.Context, inputs []string) (*Result, error) {
	start := time.Now()

	tmpDir := p.opts.TempDir
	if tmpDir == "" {
		dir, err := os.MkdirTemp("", "turkology-*")
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: create temp dir")
		}
		defer os.RemoveAll(dir) //nolint:errcheck
		tmpDir = dir
	}

	files, err := ingest.Expand(inputs, tmpDir)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: expand inputs")
	}
	if len(files) == 0 {
		return nil, ErrNoVolumes
	}

	zap.L().Info("pipeline: starting run",
		zap.Int("files", len(files)),
		zap.Int("concurrency", p.opts.Concurrency),
	)

	var (
		mu      sync.Mutex
		volumes []*VolumeResult
		failed  []string
		nFailed atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for _, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.ParseFile(gctx, file)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				nFailed.Add(1)
				zap.L().Error("pipeline: volume failed", zap.String("path", file), zap.Error(err))
				mu.Lock()
				failed = append(failed, file)
				mu.Unlock()
				return nil // don't abort the run on one bad volume
			}
			mu.Lock()
			volumes = append(volumes, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: run")
	}

	slices.SortFunc(volumes, func(a, b *VolumeResult) int {
		if c := model.CompareVolumes(a.Volume, b.Volume); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	slices.Sort(failed)

	result := &Result{Volumes: volumes}
	for _, v := range volumes {
		result.Citations = append(result.Citations, v.Citations...)
		result.Rejected = append(result.Rejected, v.Rejected...)
		result.Stats.Paragraphs += len(v.Paragraphs)
	}

	if err := p.crossVolume(ctx, result); err != nil {
		return nil, err
	}

	result.Stats.Volumes = len(volumes)
	result.Stats.FailedVolumes = failed
	result.Stats.Citations = len(result.Citations)
	result.Stats.FullyParsed = countFullyParsed(result.Citations)
	result.Stats.Rejected = len(result.Rejected)

	zap.L().Info("pipeline: run complete",
		zap.Int("volumes", result.Stats.Volumes),
		zap.Int64("failed_volumes", nFailed.Load()),
		zap.Int("citations", result.Stats.Citations),
		zap.Int("fully_parsed", result.Stats.FullyParsed),
		zap.Float64("parse_rate", result.Stats.ParseRate()),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return result, nil
}

// crossVolume runs the passes that need every volume: known-author
// reinforcement and repetition linking.
func (p *Pipeline) crossVolume(ctx context.Context, result *Result) error {
	if p.opts.FindAuthors {
		citations, n, err := FindAuthors(ctx, result.Citations, nil, p.opts.Concurrency)
		if err != nil {
			return err
		}
		result.Citations = citations
		result.Stats.AuthorsAdded = n
	}
	if p.opts.ResolveRepetitions {
		result.Citations, result.Stats.RepetitionLinks = repetitions.Link(result.Citations)
	}
	return nil
}

// FindAuthors harvests the author names of citations, adds extra, and
// reinforces the citations that have none.
func FindAuthors(ctx context.Context, citations []model.Citation, extra []string, concurrency int) ([]model.Citation, int, error) {
	known := append(authors.Harvest(citations), extra...)
	out, n, err := authors.Reinforce(ctx, citations, known, concurrency)
	if err != nil {
		return nil, 0, eris.Wrap(err, "pipeline: find authors")
	}
	return out, n, nil
}

func countFullyParsed(citations []model.Citation) int {
	n := 0
	for _, c := range citations {
		if c.FullyParsed {
			n++
		}
	}
	return n
}
