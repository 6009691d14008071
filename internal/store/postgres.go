package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/turkology-cli/internal/db"
	"github.com/sells-group/turkology-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection.
// The API serves these on every request.
var preparedStatements = map[string]string{
	"get_run":      `SELECT id, inputs, status, stats, created_at, updated_at FROM runs WHERE id = $1`,
	"get_citation": `SELECT doc FROM citations WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	inputs     JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	stats      JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS paragraphs (
	run_id         TEXT NOT NULL REFERENCES runs(id),
	volume         TEXT NOT NULL,
	position       INTEGER NOT NULL,
	original_index INTEGER NOT NULL,
	merged_from    JSONB,
	text           TEXT NOT NULL,
	original_text  TEXT,
	role           TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, volume, position)
);

CREATE TABLE IF NOT EXISTS citations (
	id           TEXT PRIMARY KEY,
	run_id       TEXT,
	volume       TEXT NOT NULL,
	volume_first INTEGER NOT NULL,
	number       INTEGER NOT NULL,
	type         TEXT NOT NULL DEFAULT '',
	fully_parsed BOOLEAN NOT NULL DEFAULT false,
	doc          JSONB NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS rejected (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id         TEXT NOT NULL,
	volume         TEXT NOT NULL,
	original_index INTEGER NOT NULL,
	text           TEXT NOT NULL,
	reason         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_citations_volume ON citations(volume_first, volume, number);
CREATE INDEX IF NOT EXISTS idx_citations_fully_parsed ON citations(fully_parsed);
CREATE INDEX IF NOT EXISTS idx_citations_authors ON citations USING GIN ((doc->'authors'));
CREATE INDEX IF NOT EXISTS idx_rejected_volume ON rejected(volume);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, inputs []string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal inputs")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, inputs, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, inputsJSON, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Inputs:    inputs,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) UpdateRunStats(ctx context.Context, runID string, stats *model.RunStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal stats")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET stats = $1, status = $2, updated_at = $3 WHERE id = $4`,
		statsJSON, string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run stats %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	r, err := scanPostgresRun(s.pool.QueryRow(ctx,
		`SELECT id, inputs, status, stats, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, inputs, status, stats, created_at, updated_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, limitOf(filter.Limit))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanPostgresRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func scanPostgresRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var inputsJSON []byte
	var statsJSON *[]byte

	if err := row.Scan(&r.ID, &inputsJSON, &r.Status, &statsJSON, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(inputsJSON, &r.Inputs); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal inputs")
	}
	if statsJSON != nil {
		r.Stats = &model.RunStats{}
		if err := json.Unmarshal(*statsJSON, r.Stats); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal stats")
		}
	}
	return &r, nil
}

var paragraphColumns = []string{
	"run_id", "volume", "position", "original_index", "merged_from", "text", "original_text", "role",
}

func (s *PostgresStore) SaveParagraphs(ctx context.Context, runID string, paragraphs []model.Paragraph) (int64, error) {
	rows := make([][]any, len(paragraphs))
	for i, p := range paragraphs {
		var mergedFrom []byte
		if len(p.MergedFrom) > 0 {
			b, err := json.Marshal(p.MergedFrom)
			if err != nil {
				return 0, eris.Wrap(err, "postgres: marshal merged_from")
			}
			mergedFrom = b
		}
		rows[i] = []any{runID, p.Volume, i, p.OriginalIndex, mergedFrom, p.Text, nullString(p.OriginalText), string(p.Role)}
	}
	n, err := db.CopyFrom(ctx, s.pool, "paragraphs", paragraphColumns, rows)
	return n, eris.Wrap(err, "postgres: save paragraphs")
}

func (s *PostgresStore) SaveCitations(ctx context.Context, runID string, citations []model.Citation) (int64, error) {
	if err := validateCitations(citations); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	rows := make([][]any, len(citations))
	for i, c := range citations {
		doc, err := marshalCitation(c)
		if err != nil {
			return 0, err
		}
		rows[i] = []any{c.ID, runID, c.Volume, volumeFirst(c.Volume), c.Number, string(c.Type), c.FullyParsed, doc, now}
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "citations",
		Columns:      citationColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	return n, eris.Wrap(err, "postgres: save citations")
}

func (s *PostgresStore) GetCitation(ctx context.Context, id string) (*model.Citation, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM citations WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "citation %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get citation %s", id)
	}
	c, err := unmarshalCitation(doc)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) ListCitations(ctx context.Context, filter CitationFilter) ([]model.Citation, error) {
	query := `SELECT doc FROM citations WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Volume != "" {
		query += fmt.Sprintf(` AND volume = $%d`, argIdx)
		args = append(args, filter.Volume)
		argIdx++
	}
	if filter.FullyParsed != nil {
		query += fmt.Sprintf(` AND fully_parsed = $%d`, argIdx)
		args = append(args, *filter.FullyParsed)
		argIdx++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(` AND type = $%d`, argIdx)
		args = append(args, filter.Type)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY volume_first, volume, number, id LIMIT $%d`, argIdx)
	args = append(args, limitOf(filter.Limit))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list citations")
	}
	defer rows.Close()

	var citations []model.Citation
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "postgres: scan citation")
		}
		c, err := unmarshalCitation(doc)
		if err != nil {
			return nil, err
		}
		citations = append(citations, c)
	}
	return citations, eris.Wrap(rows.Err(), "postgres: list citations iterate")
}

func (s *PostgresStore) ListVolumes(ctx context.Context) ([]VolumeSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT volume, COUNT(*), COUNT(*) FILTER (WHERE fully_parsed)
		 FROM citations GROUP BY volume ORDER BY MIN(volume_first), volume`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list volumes")
	}
	defer rows.Close()

	var volumes []VolumeSummary
	for rows.Next() {
		var v VolumeSummary
		if err := rows.Scan(&v.Volume, &v.Citations, &v.FullyParsed); err != nil {
			return nil, eris.Wrap(err, "postgres: scan volume")
		}
		volumes = append(volumes, v)
	}
	return volumes, eris.Wrap(rows.Err(), "postgres: list volumes iterate")
}

func (s *PostgresStore) DistinctAuthors(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT a->>'raw'
		 FROM citations, jsonb_array_elements(COALESCE(doc->'authors', '[]'::jsonb)) AS a
		 WHERE COALESCE(a->>'raw', '') <> ''
		 ORDER BY 1`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: distinct authors")
	}
	defer rows.Close()

	var authors []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, eris.Wrap(err, "postgres: scan author")
		}
		authors = append(authors, raw)
	}
	return authors, eris.Wrap(rows.Err(), "postgres: distinct authors iterate")
}

var rejectedColumns = []string{"id", "run_id", "volume", "original_index", "text", "reason", "created_at"}

func (s *PostgresStore) SaveRejected(ctx context.Context, runID string, rejected []model.Rejected) (int64, error) {
	now := time.Now().UTC()
	rows := make([][]any, len(rejected))
	for i, r := range rejected {
		rows[i] = []any{uuid.New().String(), runID, r.Volume, r.OriginalIndex, r.Text, r.Reason, now}
	}
	n, err := db.CopyFrom(ctx, s.pool, "rejected", rejectedColumns, rows)
	return n, eris.Wrap(err, "postgres: save rejected")
}

func (s *PostgresStore) ListRejected(ctx context.Context, volume string) ([]model.Rejected, error) {
	query := `SELECT id, run_id, volume, original_index, text, reason FROM rejected`
	args := []any{}
	if volume != "" {
		query += ` WHERE volume = $1`
		args = append(args, volume)
	}
	query += ` ORDER BY volume, original_index`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list rejected")
	}
	defer rows.Close()

	var out []model.Rejected
	for rows.Next() {
		var r model.Rejected
		if err := rows.Scan(&r.ID, &r.RunID, &r.Volume, &r.OriginalIndex, &r.Text, &r.Reason); err != nil {
			return nil, eris.Wrap(err, "postgres: scan rejected")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list rejected iterate")
}

func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByType: map[string]int{}}

	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT volume), COUNT(*), COUNT(*) FILTER (WHERE fully_parsed) FROM citations`,
	).Scan(&st.Volumes, &st.Citations, &st.FullyParsed)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: citation stats")
	}
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rejected`).Scan(&st.Rejected); err != nil {
		return nil, eris.Wrap(err, "postgres: rejected stats")
	}
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM paragraphs`).Scan(&st.Paragraphs); err != nil {
		return nil, eris.Wrap(err, "postgres: paragraph stats")
	}

	rows, err := s.pool.Query(ctx, `SELECT type, COUNT(*) FROM citations GROUP BY type`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: type stats")
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan type stats")
		}
		st.ByType[typeLabel(typ)] = n
	}
	return st, eris.Wrap(rows.Err(), "postgres: type stats iterate")
}
