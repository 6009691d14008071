package model

import "time"

// RunStatus represents the current state of a parse run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one invocation of the parser over a set of volume files.
type Run struct {
	ID        string    `json:"id"`
	Inputs    []string  `json:"inputs"`
	Status    RunStatus `json:"status"`
	Stats     *RunStats `json:"stats,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunStats summarises the outcome of a run.
type RunStats struct {
	Volumes         int      `json:"volumes"`
	FailedVolumes   []string `json:"failed_volumes,omitempty"`
	Paragraphs      int      `json:"paragraphs"`
	Citations       int      `json:"citations"`
	FullyParsed     int      `json:"fully_parsed"`
	Rejected        int      `json:"rejected"`
	AuthorsAdded    int      `json:"authors_added"`
	RepetitionLinks int      `json:"repetition_links"`
}

// ParseRate returns the share of fully parsed citations.
func (s RunStats) ParseRate() float64 {
	if s.Citations == 0 {
		return 0
	}
	return float64(s.FullyParsed) / float64(s.Citations)
}
