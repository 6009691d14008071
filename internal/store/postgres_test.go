package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/turkology-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return &PostgresStore{pool: mock}, mock
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, inputs, status, stats, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	stats, err := json.Marshal(model.RunStats{Citations: 3})
	require.NoError(t, err)
	mock.ExpectQuery(`FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "inputs", "status", "stats", "created_at", "updated_at"}).
			AddRow("run-1", []byte(`["TA06_x.xml"]`), model.RunStatusComplete, &stats, now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"TA06_x.xml"}, run.Inputs)
	require.NotNil(t, run.Stats)
	assert.Equal(t, 3, run.Stats.Citations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs(string(model.RunStatusFailed), pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunStatus(context.Background(), "missing", model.RunStatusFailed)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveCitations_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_citations"}, citationColumns).WillReturnResult(2)
	mock.ExpectExec(`DELETE FROM`).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO "citations" .* ON CONFLICT \("id"\)`).WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := s.SaveCitations(context.Background(), "run-1", sampleCitations()[:2])
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveParagraphs_Copy(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"paragraphs"}, paragraphColumns).WillReturnResult(2)

	n, err := s.SaveParagraphs(context.Background(), "run-1", []model.Paragraph{
		{OriginalIndex: 0, Volume: "6", Text: "ZEITSCHRIFTEN UND"},
		{OriginalIndex: 1964, MergedFrom: []int{1964, 1968}, Volume: "6", Text: "1. a b"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRejected_Copy(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"rejected"}, rejectedColumns).WillReturnResult(1)

	n, err := s.SaveRejected(context.Background(), "run-1", []model.Rejected{{Volume: "6", Text: "x", Reason: "no number"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCitation(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	doc, err := json.Marshal(sampleCitations()[0])
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT doc FROM citations WHERE id = \$1`).
		WithArgs("10-1").
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).AddRow(doc))
	mock.ExpectQuery(`SELECT doc FROM citations WHERE id = \$1`).
		WithArgs("9-9").
		WillReturnError(pgx.ErrNoRows)

	c, err := s.GetCitation(context.Background(), "10-1")
	require.NoError(t, err)
	assert.Equal(t, sampleCitations()[0], *c)

	_, err = s.GetCitation(context.Background(), "9-9")
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCitations_Filters(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	parsed := true
	mock.ExpectQuery(`SELECT doc FROM citations WHERE true AND volume = \$1 AND fully_parsed = \$2 ORDER BY volume_first, volume, number, id LIMIT \$3 OFFSET \$4`).
		WithArgs("2", true, 10, 20).
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).AddRow([]byte(`{"id":"2-3","volume":"2","number":3,"rawText":"","fullyParsed":true}`)))

	got, err := s.ListCitations(context.Background(), CitationFilter{Volume: "2", FullyParsed: &parsed, Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2-3", got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DistinctAuthors(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`jsonb_array_elements`).
		WillReturnRows(pgxmock.NewRows([]string{"raw"}).AddRow("Landau, Jakob M.").AddRow("Müller, Hans"))

	authors, err := s.DistinctAuthors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Landau, Jakob M.", "Müller, Hans"}, authors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS runs`).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
