// Package store persists parse runs, paragraphs, citations and rejected
// records in SQLite or Postgres.
package store

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/turkology-cli/internal/model"
)

// ErrNotFound is returned when a run or citation does not exist.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// CitationFilter specifies criteria for listing citations. A nil
// FullyParsed matches both states.
type CitationFilter struct {
	Volume      string `json:"volume,omitempty"`
	FullyParsed *bool  `json:"fully_parsed,omitempty"`
	Type        string `json:"type,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

// VolumeSummary counts the citations of one volume.
type VolumeSummary struct {
	Volume      string `json:"volume"`
	Citations   int    `json:"citations"`
	FullyParsed int    `json:"fully_parsed"`
}

// Stats summarises the stored corpus.
type Stats struct {
	Volumes     int            `json:"volumes"`
	Citations   int            `json:"citations"`
	FullyParsed int            `json:"fully_parsed"`
	Rejected    int            `json:"rejected"`
	Paragraphs  int            `json:"paragraphs"`
	ByType      map[string]int `json:"by_type"`
}

// ParseRate returns the share of fully parsed citations.
func (s Stats) ParseRate() float64 {
	if s.Citations == 0 {
		return 0
	}
	return float64(s.FullyParsed) / float64(s.Citations)
}

// Store defines the persistence interface for the citation pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, inputs []string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunStats(ctx context.Context, runID string, stats *model.RunStats) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Paragraphs
	SaveParagraphs(ctx context.Context, runID string, paragraphs []model.Paragraph) (int64, error)

	// Citations
	SaveCitations(ctx context.Context, runID string, citations []model.Citation) (int64, error)
	GetCitation(ctx context.Context, id string) (*model.Citation, error)
	ListCitations(ctx context.Context, filter CitationFilter) ([]model.Citation, error)
	ListVolumes(ctx context.Context) ([]VolumeSummary, error)
	DistinctAuthors(ctx context.Context) ([]string, error)

	// Rejected records
	SaveRejected(ctx context.Context, runID string, rejected []model.Rejected) (int64, error)
	ListRejected(ctx context.Context, volume string) ([]model.Rejected, error)

	Stats(ctx context.Context) (*Stats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// citationColumns are the columns of the citations table. doc holds the
// full citation as JSON; the others are copies for filtering and sorting.
var citationColumns = []string{
	"id", "run_id", "volume", "volume_first", "number", "type", "fully_parsed", "doc", "updated_at",
}

const defaultLimit = 100

func limitOf(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	return n
}

func volumeFirst(volume string) int {
	first, _ := model.VolumeBounds(volume)
	return first
}

func marshalCitation(c model.Citation) ([]byte, error) {
	doc, err := json.Marshal(c)
	if err != nil {
		return nil, eris.Wrapf(err, "store: marshal citation %s", c.ID)
	}
	return doc, nil
}

func unmarshalCitation(doc []byte) (model.Citation, error) {
	var c model.Citation
	if err := json.Unmarshal(doc, &c); err != nil {
		return c, eris.Wrap(err, "store: unmarshal citation")
	}
	return c, nil
}

func validateCitations(citations []model.Citation) error {
	for _, c := range citations {
		if c.ID == "" {
			return eris.Errorf("store: citation %s-%d has no id", c.Volume, c.Number)
		}
	}
	return nil
}
