package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"PriceLineup/internal/model"
)

// SQLiteRecorder persists sweep summaries to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so `lineup runs` can read while a scheduled sweep writes.
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
		`CREATE TABLE IF NOT EXISTS sweep_runs (
			id          TEXT PRIMARY KEY,
			mode        TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			saved       INTEGER NOT NULL,
			skipped     INTEGER NOT NULL,
			failed      INTEGER NOT NULL,
			records     INTEGER NOT NULL,
			aborted     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON sweep_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS sweep_categories (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   TEXT NOT NULL REFERENCES sweep_runs(id),
			position INTEGER NOT NULL,
			category TEXT NOT NULL,
			saved    INTEGER NOT NULL,
			skipped  INTEGER NOT NULL,
			failed   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_run ON sweep_categories(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores a run and its per-category counts. A run without an ID
// gets a fresh one.
func (r *SQLiteRecorder) RecordRun(run *model.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO sweep_runs
		(id, mode, started_at, finished_at, saved, skipped, failed, records, aborted)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Mode, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
		run.Saved, run.Skipped, run.Failed, run.Records, run.Aborted,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, c := range run.Categories {
		if _, err := tx.Exec(`INSERT INTO sweep_categories
			(run_id, position, category, saved, skipped, failed)
			VALUES (?,?,?,?,?,?)`,
			run.ID, i, c.Category, c.Saved, c.Skipped, c.Failed,
		); err != nil {
			return fmt.Errorf("insert category %s: %w", c.Category, err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]model.RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, mode, started_at, finished_at, saved, skipped, failed, records, aborted
		FROM sweep_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	var runs []model.RunSummary
	for rows.Next() {
		var run model.RunSummary
		var started, finished int64
		if err := rows.Scan(&run.ID, &run.Mode, &started, &finished,
			&run.Saved, &run.Skipped, &run.Failed, &run.Records, &run.Aborted); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = time.UnixMilli(started)
		run.FinishedAt = time.UnixMilli(finished)
		runs = append(runs, run)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		cats, err := r.categories(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Categories = cats
	}
	return runs, nil
}

func (r *SQLiteRecorder) categories(runID string) ([]model.CategorySummary, error) {
	rows, err := r.db.Query(`SELECT category, saved, skipped, failed
		FROM sweep_categories WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []model.CategorySummary
	for rows.Next() {
		var c model.CategorySummary
		if err := rows.Scan(&c.Category, &c.Saved, &c.Skipped, &c.Failed); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
