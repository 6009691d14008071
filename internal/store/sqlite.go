package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/turkology-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	inputs     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	stats      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS paragraphs (
	run_id         TEXT NOT NULL REFERENCES runs(id),
	volume         TEXT NOT NULL,
	position       INTEGER NOT NULL,
	original_index INTEGER NOT NULL,
	merged_from    TEXT,
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
	fully_parsed BOOLEAN NOT NULL DEFAULT 0,
	doc          TEXT NOT NULL,
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS rejected (
	id             TEXT PRIMARY KEY,
	run_id         TEXT NOT NULL,
	volume         TEXT NOT NULL,
	original_index INTEGER NOT NULL,
	text           TEXT NOT NULL,
	reason         TEXT NOT NULL,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_citations_volume ON citations(volume_first, volume, number);
CREATE INDEX IF NOT EXISTS idx_citations_fully_parsed ON citations(fully_parsed);
CREATE INDEX IF NOT EXISTS idx_rejected_volume ON rejected(volume);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, inputs []string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal inputs")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, inputs, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(inputsJSON), string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Inputs:    inputs,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) UpdateRunStats(ctx context.Context, runID string, stats *model.RunStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal stats")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET stats = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(statsJSON), string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run stats %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, inputs, status, stats, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, inputs, status, stats, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limitOf(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveParagraphs(ctx context.Context, runID string, paragraphs []model.Paragraph) (int64, error) {
	if len(paragraphs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin paragraphs tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO paragraphs (run_id, volume, position, original_index, merged_from, text, original_text, role)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare paragraph insert")
	}
	defer stmt.Close() //nolint:errcheck

	for i, p := range paragraphs {
		mergedFrom, err := mergedFromJSON(p.MergedFrom)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx,
			runID, p.Volume, i, p.OriginalIndex, mergedFrom, p.Text, nullString(p.OriginalText), string(p.Role),
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert paragraph %s/%d", p.Volume, p.OriginalIndex)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit paragraphs")
	}
	return int64(len(paragraphs)), nil
}

func (s *SQLiteStore) SaveCitations(ctx context.Context, runID string, citations []model.Citation) (int64, error) {
	if len(citations) == 0 {
		return 0, nil
	}
	if err := validateCitations(citations); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin citations tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO citations (id, run_id, volume, volume_first, number, type, fully_parsed, doc, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			run_id = excluded.run_id,
			volume = excluded.volume,
			volume_first = excluded.volume_first,
			number = excluded.number,
			type = excluded.type,
			fully_parsed = excluded.fully_parsed,
			doc = excluded.doc,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare citation upsert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	for _, c := range citations {
		doc, err := marshalCitation(c)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID, runID, c.Volume, volumeFirst(c.Volume), c.Number, string(c.Type), c.FullyParsed, string(doc), now,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert citation %s", c.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit citations")
	}
	return int64(len(citations)), nil
}

func (s *SQLiteStore) GetCitation(ctx context.Context, id string) (*model.Citation, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM citations WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "citation %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get citation %s", id)
	}
	c, err := unmarshalCitation([]byte(doc))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) ListCitations(ctx context.Context, filter CitationFilter) ([]model.Citation, error) {
	query := `SELECT doc FROM citations WHERE 1=1`
	var args []any

	if filter.Volume != "" {
		query += ` AND volume = ?`
		args = append(args, filter.Volume)
	}
	if filter.FullyParsed != nil {
		query += ` AND fully_parsed = ?`
		args = append(args, *filter.FullyParsed)
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, filter.Type)
	}
	query += ` ORDER BY volume_first, volume, number, id LIMIT ?`
	args = append(args, limitOf(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list citations")
	}
	defer rows.Close() //nolint:errcheck

	var citations []model.Citation
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan citation")
		}
		c, err := unmarshalCitation([]byte(doc))
		if err != nil {
			return nil, err
		}
		citations = append(citations, c)
	}
	return citations, eris.Wrap(rows.Err(), "sqlite: list citations iterate")
}

func (s *SQLiteStore) ListVolumes(ctx context.Context) ([]VolumeSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT volume, COUNT(*), COALESCE(SUM(CASE WHEN fully_parsed THEN 1 ELSE 0 END), 0)
		 FROM citations GROUP BY volume ORDER BY MIN(volume_first), volume`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list volumes")
	}
	defer rows.Close() //nolint:errcheck

	var volumes []VolumeSummary
	for rows.Next() {
		var v VolumeSummary
		if err := rows.Scan(&v.Volume, &v.Citations, &v.FullyParsed); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan volume")
		}
		volumes = append(volumes, v)
	}
	return volumes, eris.Wrap(rows.Err(), "sqlite: list volumes iterate")
}

func (s *SQLiteStore) DistinctAuthors(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT json_extract(a.value, '$.raw')
		 FROM citations, json_each(citations.doc, '$.authors') AS a
		 WHERE COALESCE(json_extract(a.value, '$.raw'), '') != ''
		 ORDER BY 1`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: distinct authors")
	}
	defer rows.Close() //nolint:errcheck

	var authors []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan author")
		}
		authors = append(authors, raw)
	}
	return authors, eris.Wrap(rows.Err(), "sqlite: distinct authors iterate")
}

func (s *SQLiteStore) SaveRejected(ctx context.Context, runID string, rejected []model.Rejected) (int64, error) {
	if len(rejected) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin rejected tx")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for _, r := range rejected {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rejected (id, run_id, volume, original_index, text, reason, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), runID, r.Volume, r.OriginalIndex, r.Text, r.Reason, now,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert rejected %s/%d", r.Volume, r.OriginalIndex)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit rejected")
	}
	return int64(len(rejected)), nil
}

func (s *SQLiteStore) ListRejected(ctx context.Context, volume string) ([]model.Rejected, error) {
	query := `SELECT id, run_id, volume, original_index, text, reason FROM rejected`
	var args []any
	if volume != "" {
		query += ` WHERE volume = ?`
		args = append(args, volume)
	}
	query += ` ORDER BY volume, original_index`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list rejected")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Rejected
	for rows.Next() {
		var r model.Rejected
		if err := rows.Scan(&r.ID, &r.RunID, &r.Volume, &r.OriginalIndex, &r.Text, &r.Reason); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan rejected")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list rejected iterate")
}

func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByType: map[string]int{}}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT volume), COUNT(*), COALESCE(SUM(CASE WHEN fully_parsed THEN 1 ELSE 0 END), 0) FROM citations`,
	).Scan(&st.Volumes, &st.Citations, &st.FullyParsed)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: citation stats")
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rejected`).Scan(&st.Rejected); err != nil {
		return nil, eris.Wrap(err, "sqlite: rejected stats")
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM paragraphs`).Scan(&st.Paragraphs); err != nil {
		return nil, eris.Wrap(err, "sqlite: paragraph stats")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM citations GROUP BY type`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: type stats")
	}
	defer rows.Close() //nolint:errcheck
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan type stats")
		}
		st.ByType[typeLabel(typ)] = n
	}
	return st, eris.Wrap(rows.Err(), "sqlite: type stats iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var inputsJSON string
	var statsJSON sql.NullString

	err := row.Scan(&r.ID, &inputsJSON, &r.Status, &statsJSON, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "run")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(inputsJSON), &r.Inputs); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal inputs")
	}
	if statsJSON.Valid {
		r.Stats = &model.RunStats{}
		if err := json.Unmarshal([]byte(statsJSON.String), r.Stats); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal stats")
		}
	}
	return &r, nil
}

func mergedFromJSON(mergedFrom []int) (any, error) {
	if len(mergedFrom) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(mergedFrom)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal merged_from")
	}
	return string(b), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// typeLabel names the empty citation type in stats output.
func typeLabel(typ string) string {
	if typ == "" {
		return "unknown"
	}
	return typ
}
