package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"MarketSeries/internal/ingest"
)

// SQLiteRecorder journals ingestion runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ingest_runs (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at      INTEGER NOT NULL,
			finished_at     INTEGER NOT NULL,
			source          TEXT,
			status          TEXT,
			rows_read       INTEGER,
			rows_ingested   INTEGER,
			skip_malformed  INTEGER,
			skip_conversion INTEGER,
			skip_filtered   INTEGER,
			series          INTEGER,
			observations    INTEGER,
			fatal           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ingest_runs_started ON ingest_runs(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(rep *ingest.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := FromReport(rep)
	_, err := r.db.Exec(`INSERT INTO ingest_runs
		(started_at, finished_at, source, status, rows_read, rows_ingested,
		 skip_malformed, skip_conversion, skip_filtered, series, observations, fatal)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.Started.UnixMilli(), rec.Finished.UnixMilli(), rec.Source, rec.Status,
		rec.Rows, rec.Ingested, rec.Malformed, rec.Conversion, rec.Filtered,
		rec.Series, rec.Observations, rec.Fatal,
	)
	return err
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT started_at, finished_at, source, status, rows_read, rows_ingested,
		skip_malformed, skip_conversion, skip_filtered, series, observations, fatal
		FROM ingest_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started, finished int64
		if err := rows.Scan(&started, &finished, &rec.Source, &rec.Status, &rec.Rows, &rec.Ingested,
			&rec.Malformed, &rec.Conversion, &rec.Filtered, &rec.Series, &rec.Observations, &rec.Fatal); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Started = time.UnixMilli(started).UTC()
		rec.Finished = time.UnixMilli(finished).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
