// Package history keeps a queryable record of past analysis runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/h2cf/core/capacity"
	"github.com/kilianp07/h2cf/core/model"
)

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("run not found")

// Run summarises one stored report.
type Run struct {
	RunID           string          `json:"run_id"`
	Created         time.Time       `json:"created"`
	Period          string          `json:"period"`
	HoursInWindow   int             `json:"hours_in_window"`
	Computed        int             `json:"computed"`
	Excluded        int             `json:"excluded"`
	RawMean         model.NullFloat `json:"raw_mean"`
	ConstrainedMean model.NullFloat `json:"constrained_mean"`
}

// Query filters List. Zero values match everything.
type Query struct {
	Period string
	Unit   string
	Limit  int
}

// SQLiteStore persists reports in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    created INTEGER,
    period TEXT,
    hours INTEGER,
    computed INTEGER,
    excluded INTEGER,
    raw_mean REAL,
    constrained_mean REAL,
    report TEXT
);
CREATE TABLE IF NOT EXISTS unit_results (
    run_id TEXT,
    unit TEXT,
    status TEXT,
    raw_cf REAL,
    constrained_cf REAL,
    PRIMARY KEY(run_id, unit)
);
CREATE INDEX IF NOT EXISTS runs_period ON runs(period);`

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// RecordReport stores r. It lets the store act as a metrics sink.
func (s *SQLiteStore) RecordReport(r *capacity.Report) error {
	return s.Save(context.Background(), r)
}

// Save writes the report and its unit results in one transaction. Saving
// the same run twice replaces it.
func (s *SQLiteStore) Save(ctx context.Context, r *capacity.Report) (err error) {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	md := r.Metadata
	if _, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO runs
        (run_id, created, period, hours, computed, excluded, raw_mean, constrained_mean, report)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		md.RunID, s.now().UTC().Unix(), md.Period, md.HoursInWindow, r.Computed, r.Excluded,
		nullable(r.Raw.Mean), nullable(r.Constrained.Mean), string(b)); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM unit_results WHERE run_id = ?`, md.RunID); err != nil {
		return err
	}
	for _, u := range r.Units {
		if _, err = tx.ExecContext(ctx, `INSERT INTO unit_results (run_id, unit, status, raw_cf, constrained_cf)
            VALUES (?, ?, ?, ?, ?)`,
			md.RunID, u.Unit, string(u.Status), nullable(u.RawCF), nullable(u.ConstrainedCF)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns stored runs, newest first.
func (s *SQLiteStore) List(ctx context.Context, q Query) ([]Run, error) {
	var args []any
	query := `SELECT DISTINCT r.run_id, r.created, r.period, r.hours, r.computed, r.excluded, r.raw_mean, r.constrained_mean
        FROM runs r LEFT JOIN unit_results u ON u.run_id = r.run_id WHERE 1=1`
	if q.Period != "" {
		query += ` AND r.period = ?`
		args = append(args, q.Period)
	}
	if q.Unit != "" {
		query += ` AND u.unit = ?`
		args = append(args, q.Unit)
	}
	query += ` ORDER BY r.created DESC, r.run_id`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Run
	for rows.Next() {
		var run Run
		var created int64
		var rawMean, consMean sql.NullFloat64
		if err := rows.Scan(&run.RunID, &created, &run.Period, &run.HoursInWindow, &run.Computed, &run.Excluded, &rawMean, &consMean); err != nil {
			return nil, err
		}
		run.Created = time.Unix(created, 0).UTC()
		run.RawMean = fromNullable(rawMean)
		run.ConstrainedMean = fromNullable(consMean)
		res = append(res, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Get loads the full report of one run.
func (s *SQLiteStore) Get(ctx context.Context, runID string) (*capacity.Report, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM runs WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	var r capacity.Report
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &r, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func nullable(n model.NullFloat) sql.NullFloat64 {
	return sql.NullFloat64{Float64: n.Float64, Valid: n.Valid}
}

func fromNullable(n sql.NullFloat64) model.NullFloat {
	if !n.Valid {
		return model.Null()
	}
	return model.Float(n.Float64)
}
