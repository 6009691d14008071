package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/turkology-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleCitations() []model.Citation {
	return []model.Citation{
		{
			ID: "10-1", Volume: "10", Number: 1, Type: model.CitationTypeMonograph,
			Title: "Zehn", FullyParsed: true,
			Authors: []model.Person{{First: "Hans", Last: "Müller", Raw: "Müller, Hans"}},
		},
		{
			ID: "2-5", Volume: "2", Number: 5, Type: model.CitationTypeArticle,
			Authors: []model.Person{
				{Last: "Landau", Raw: "Landau, Jakob M."},
				{Last: "Müller", Raw: "Müller, Hans"},
			},
			RemainingText: "{{{ authors }}} Rest",
		},
		{ID: "2-3", Volume: "2", Number: 3, FullyParsed: true},
		{ID: "22-23-7", Volume: "22-23", Number: 7, Type: model.CitationTypeCollection},
	}
}

func TestStoreSuite_SQLite(t *testing.T) {
	storeTestSuite(t, func(t *testing.T) Store { return newTestSQLite(t) })
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("RunLifecycle", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, []string{"TA06_x.xml"})
		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
		assert.Equal(t, model.RunStatusRunning, run.Status)

		stats := &model.RunStats{Volumes: 1, Citations: 10, FullyParsed: 7}
		require.NoError(t, s.UpdateRunStats(ctx, run.ID, stats))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusComplete, got.Status)
		assert.Equal(t, []string{"TA06_x.xml"}, got.Inputs)
		require.NotNil(t, got.Stats)
		assert.Equal(t, 7, got.Stats.FullyParsed)
	})

	t.Run("RunNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.GetRun(ctx, "missing")
		assert.True(t, eris.Is(err, ErrNotFound))
		assert.True(t, eris.Is(s.UpdateRunStatus(ctx, "missing", model.RunStatusFailed), ErrNotFound))
	})

	t.Run("ListRuns", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.CreateRun(ctx, []string{"a"})
		require.NoError(t, err)
		_, err = s.CreateRun(ctx, []string{"b"})
		require.NoError(t, err)
		require.NoError(t, s.UpdateRunStatus(ctx, a.ID, model.RunStatusFailed))

		all, err := s.ListRuns(ctx, RunFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		failed, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, a.ID, failed[0].ID)
	})

	t.Run("CitationsRoundTrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		n, err := s.SaveCitations(ctx, "run-1", sampleCitations())
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)

		got, err := s.GetCitation(ctx, "2-5")
		require.NoError(t, err)
		assert.Equal(t, sampleCitations()[1], *got)

		_, err = s.GetCitation(ctx, "9-9")
		assert.True(t, eris.Is(err, ErrNotFound))
	})

	t.Run("CitationsUpsert", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.SaveCitations(ctx, "run-1", sampleCitations())
		require.NoError(t, err)

		updated := sampleCitations()[1]
		updated.Title = "Neu"
		updated.FullyParsed = true
		_, err = s.SaveCitations(ctx, "run-2", []model.Citation{updated})
		require.NoError(t, err)

		got, err := s.GetCitation(ctx, "2-5")
		require.NoError(t, err)
		assert.Equal(t, "Neu", got.Title)

		all, err := s.ListCitations(ctx, CitationFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("CitationsRequireID", func(t *testing.T) {
		s := newStore(t)
		_, err := s.SaveCitations(context.Background(), "run-1", []model.Citation{{Volume: "1", Number: 1}})
		assert.Error(t, err)
	})

	t.Run("ListCitationsOrderAndFilters", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		_, err := s.SaveCitations(ctx, "run-1", sampleCitations())
		require.NoError(t, err)

		all, err := s.ListCitations(ctx, CitationFilter{})
		require.NoError(t, err)
		ids := make([]string, len(all))
		for i, c := range all {
			ids[i] = c.ID
		}
		assert.Equal(t, []string{"2-3", "2-5", "10-1", "22-23-7"}, ids)

		vol2, err := s.ListCitations(ctx, CitationFilter{Volume: "2"})
		require.NoError(t, err)
		assert.Len(t, vol2, 2)

		parsed := false
		open, err := s.ListCitations(ctx, CitationFilter{FullyParsed: &parsed})
		require.NoError(t, err)
		require.Len(t, open, 2)
		assert.Equal(t, "2-5", open[0].ID)

		collections, err := s.ListCitations(ctx, CitationFilter{Type: "collection"})
		require.NoError(t, err)
		require.Len(t, collections, 1)

		page, err := s.ListCitations(ctx, CitationFilter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "2-5", page[0].ID)
	})

	t.Run("ListVolumes", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		_, err := s.SaveCitations(ctx, "run-1", sampleCitations())
		require.NoError(t, err)

		volumes, err := s.ListVolumes(ctx)
		require.NoError(t, err)
		assert.Equal(t, []VolumeSummary{
			{Volume: "2", Citations: 2, FullyParsed: 1},
			{Volume: "10", Citations: 1, FullyParsed: 1},
			{Volume: "22-23", Citations: 1, FullyParsed: 0},
		}, volumes)
	})

	t.Run("DistinctAuthors", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		_, err := s.SaveCitations(ctx, "run-1", sampleCitations())
		require.NoError(t, err)

		authors, err := s.DistinctAuthors(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Landau, Jakob M.", "Müller, Hans"}, authors)
	})

	t.Run("ParagraphsAndRejected", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, []string{"TA03_x.xml"})
		require.NoError(t, err)

		paragraphs := []model.Paragraph{
			{OriginalIndex: 0, Volume: "3", Text: "A. Allgemeines", Role: model.RoleKeyword},
			{OriginalIndex: 701, MergedFrom: []int{701, 702}, Volume: "3", Text: "1. Titel", Role: model.RoleCitationStart},
			{OriginalIndex: 703, Volume: "3", Text: "• Rez.", OriginalText: "φ Rez.", Role: model.RoleAmendment},
		}
		n, err := s.SaveParagraphs(ctx, run.ID, paragraphs)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		rejected := []model.Rejected{
			{Volume: "3", OriginalIndex: 900, Text: "ohne Nummer", Reason: "no number"},
			{Volume: "4", OriginalIndex: 5, Text: "x", Reason: "no number"},
		}
		n, err = s.SaveRejected(ctx, run.ID, rejected)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		vol3, err := s.ListRejected(ctx, "3")
		require.NoError(t, err)
		require.Len(t, vol3, 1)
		assert.Equal(t, 900, vol3[0].OriginalIndex)
		assert.Equal(t, run.ID, vol3[0].RunID)
		assert.NotEmpty(t, vol3[0].ID)

		all, err := s.ListRejected(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("Stats", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		empty, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, empty.Citations)
		assert.Zero(t, empty.ParseRate())

		_, err = s.SaveCitations(ctx, "run-1", sampleCitations())
		require.NoError(t, err)

		st, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, st.Volumes)
		assert.Equal(t, 4, st.Citations)
		assert.Equal(t, 2, st.FullyParsed)
		assert.InDelta(t, 0.5, st.ParseRate(), 1e-9)
		assert.Equal(t, map[string]int{"monograph": 1, "article": 1, "collection": 1, "unknown": 1}, st.ByType)
	})

	t.Run("EmptyBatches", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, f := range []func() (int64, error){
			func() (int64, error) { return s.SaveCitations(ctx, "r", nil) },
			func() (int64, error) { return s.SaveParagraphs(ctx, "r", nil) },
			func() (int64, error) { return s.SaveRejected(ctx, "r", nil) },
		} {
			n, err := f()
			require.NoError(t, err)
			assert.Zero(t, n)
		}
	})
}
