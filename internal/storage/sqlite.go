package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matsen/lfreval/internal/sweep"
)

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("run not found")

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// RunSummary is a run without its points.
type RunSummary struct {
	ID           string        `json:"id"`
	Name         string        `json:"name,omitempty"`
	Mixing       string        `json:"mixing,omitempty"`
	GroundTruth  string        `json:"ground_truth"`
	UniverseSize int           `json:"universe_size"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration_ns"`
	Evaluations  int           `json:"evaluations"`
	Failures     int           `json:"failures"`
}

// PointRow is a stored point together with its query node.
type PointRow struct {
	Node int `json:"node"`
	sweep.Point
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			name TEXT,
			mixing TEXT,
			ground_truth TEXT NOT NULL,
			universe_size INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			duration_ns INTEGER NOT NULL,
			evaluations INTEGER NOT NULL,
			failures INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS points (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			node INTEGER NOT NULL,
			k INTEGER NOT NULL,
			precision REAL NOT NULL,
			recall REAL NOT NULL,
			f1 REAL NOT NULL,
			true_size INTEGER NOT NULL,
			proposed_size INTEGER NOT NULL,
			sym_diff_size INTEGER NOT NULL,
			path TEXT NOT NULL,
			error TEXT,
			PRIMARY KEY (run_id, node, k)
		);

		CREATE INDEX IF NOT EXISTS idx_points_node ON points(node);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveRun inserts a run and all its points, replacing any run with the same ID.
func (d *DB) SaveRun(run Run) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRun(tx, run); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", run.ID, err)
	}
	return nil
}

// insertRun writes one run inside tx.
func insertRun(tx *sql.Tx, run Run) error {
	if _, err := tx.Exec(`DELETE FROM points WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("clearing points of %s: %w", run.ID, err)
	}

	_, err := tx.Exec(`
		INSERT OR REPLACE INTO runs (
			id, name, mixing, ground_truth, universe_size,
			started_at, duration_ns, evaluations, failures
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.Mixing, run.GroundTruth, run.UniverseSize,
		run.StartedAt.UTC().Format(time.RFC3339Nano), int64(run.Duration), run.Evaluations, run.Failures,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO points (
			run_id, node, k, precision, recall, f1,
			true_size, proposed_size, sym_diff_size, path, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing points insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range run.Series {
		for _, p := range s.Points {
			_, err := stmt.Exec(
				run.ID, s.Node, p.K, p.Precision, p.Recall, p.F1,
				p.TrueSize, p.ProposedSize, p.SymDiffSize, p.Path, nullableString(p.Error),
			)
			if err != nil {
				return fmt.Errorf("inserting point node=%d k=%d: %w", s.Node, p.K, err)
			}
		}
	}
	return nil
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL runs log.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	runs, err := ReadRuns(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM points"); err != nil {
		return 0, fmt.Errorf("clearing points table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM runs"); err != nil {
		return 0, fmt.Errorf("clearing runs table: %w", err)
	}

	for _, run := range runs {
		if err := insertRun(tx, run); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(runs), nil
}

// ListRuns returns all runs, most recent first.
func (d *DB) ListRuns() ([]RunSummary, error) {
	rows, err := d.db.Query(`
		SELECT id, name, mixing, ground_truth, universe_size,
			started_at, duration_ns, evaluations, failures
		FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		r, err := scanRunSummary(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the summary of one run.
func (d *DB) GetRun(id string) (RunSummary, error) {
	row := d.db.QueryRow(`
		SELECT id, name, mixing, ground_truth, universe_size,
			started_at, duration_ns, evaluations, failures
		FROM runs WHERE id = ?`, id)
	r, err := scanRunSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRunSummary(s scanner) (RunSummary, error) {
	var (
		r         RunSummary
		name      sql.NullString
		mixing    sql.NullString
		startedAt string
		duration  int64
	)
	if err := s.Scan(&r.ID, &name, &mixing, &r.GroundTruth, &r.UniverseSize,
		&startedAt, &duration, &r.Evaluations, &r.Failures); err != nil {
		return RunSummary{}, err
	}
	r.Name = name.String
	r.Mixing = mixing.String
	r.Duration = time.Duration(duration)

	t, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return RunSummary{}, fmt.Errorf("parsing started_at of %s: %w", r.ID, err)
	}
	r.StartedAt = t
	return r, nil
}

// GetRunPoints returns the points of a run ordered by node and k.
// A node of 0 returns every node.
func (d *DB) GetRunPoints(runID string, node int) ([]PointRow, error) {
	if _, err := d.GetRun(runID); err != nil {
		return nil, err
	}

	query := `SELECT node, k, precision, recall, f1, true_size, proposed_size,
		sym_diff_size, path, error FROM points WHERE run_id = ?`
	args := []any{runID}
	if node != 0 {
		query += ` AND node = ?`
		args = append(args, node)
	}
	query += ` ORDER BY node, k`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}
	defer rows.Close()

	var points []PointRow
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// BestK returns, for each node of a run, the successful point with the highest
// F1. Ties go to the smaller k.
func (d *DB) BestK(runID string) ([]PointRow, error) {
	if _, err := d.GetRun(runID); err != nil {
		return nil, err
	}

	rows, err := d.db.Query(`
		SELECT node, k, precision, recall, f1, true_size, proposed_size,
			sym_diff_size, path, error
		FROM (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY node ORDER BY f1 DESC, k ASC) AS rn
			FROM points
			WHERE run_id = ? AND error IS NULL
		)
		WHERE rn = 1
		ORDER BY node`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying best k: %w", err)
	}
	defer rows.Close()

	var best []PointRow
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		best = append(best, p)
	}
	return best, rows.Err()
}

func scanPoint(s scanner) (PointRow, error) {
	var (
		p      PointRow
		errMsg sql.NullString
	)
	if err := s.Scan(&p.Node, &p.K, &p.Precision, &p.Recall, &p.F1, &p.TrueSize,
		&p.ProposedSize, &p.SymDiffSize, &p.Path, &errMsg); err != nil {
		return PointRow{}, fmt.Errorf("scanning point: %w", err)
	}
	p.Error = errMsg.String
	return p, nil
}

// nullableString returns nil for an empty string so it is stored as NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
