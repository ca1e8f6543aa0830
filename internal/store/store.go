// Package store persists analysis runs into SQLite so external
// timeline tooling can query reconstructed transactions without
// re-parsing the archive.
package store

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/termlens/termlens/internal/report"
)

// Store wraps the run database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
// The path ":memory:" yields a throwaway in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		archive    TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		discarded  INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id     TEXT NOT NULL REFERENCES runs(id),
		source     TEXT NOT NULL,
		txn_id     TEXT NOT NULL,
		start_time TEXT NOT NULL DEFAULT '',
		end_time   TEXT NOT NULL DEFAULT '',
		duration   REAL NOT NULL DEFAULT 0,
		type       TEXT NOT NULL DEFAULT '',
		end_state  TEXT NOT NULL DEFAULT '',
		log        TEXT NOT NULL DEFAULT '',
		order_idx  INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS flow_entries (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id    TEXT NOT NULL REFERENCES runs(id),
		source    TEXT NOT NULL,
		screen    TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		duration  REAL NOT NULL DEFAULT 0,
		order_idx INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS counter_rows (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id     TEXT NOT NULL REFERENCES runs(id),
		source     TEXT NOT NULL,
		block_time TEXT NOT NULL,
		no         TEXT NOT NULL DEFAULT '',
		ty         TEXT NOT NULL DEFAULT '',
		unit_id    TEXT NOT NULL DEFAULT '',
		unit_name  TEXT NOT NULL DEFAULT '',
		currency   TEXT NOT NULL DEFAULT '',
		val        TEXT NOT NULL DEFAULT '',
		init_val   TEXT NOT NULL DEFAULT '',
		actn       TEXT NOT NULL DEFAULT '',
		rej        TEXT NOT NULL DEFAULT '',
		safe       TEXT NOT NULL DEFAULT '',
		min        TEXT NOT NULL DEFAULT '',
		max        TEXT NOT NULL DEFAULT '',
		status1    TEXT NOT NULL DEFAULT '',
		status2    TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_run ON transactions(run_id);
	CREATE INDEX IF NOT EXISTS idx_flow_entries_run ON flow_entries(run_id);
	CREATE INDEX IF NOT EXISTS idx_counter_rows_run ON counter_rows(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun writes a full bundle inside one database transaction and
// returns the run ID. A bundle without an ID gets a fresh UUID.
func (s *Store) SaveRun(b *report.Bundle) (string, error) {
	id := b.RunID
	if id == "" {
		id = uuid.NewString()
	}
	created := b.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO runs (id, archive, created_at, discarded) VALUES (?, ?, ?, ?)",
		id, b.Archive, created, b.Discarded,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	if err := insertTransactions(tx, id, b.Transactions); err != nil {
		return "", err
	}
	if err := insertFlows(tx, id, b.Flows); err != nil {
		return "", err
	}
	if err := insertCounters(tx, id, b.Counters); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func insertTransactions(tx *sql.Tx, runID string, byFile map[string][]report.TransactionRecord) error {
	stmt, err := tx.Prepare(
		`INSERT INTO transactions
		 (run_id, source, txn_id, start_time, end_time, duration, type, end_state, log, order_idx)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare transactions: %w", err)
	}
	defer stmt.Close()

	for _, source := range sortedKeys(byFile) {
		for i, r := range byFile[source] {
			if _, err := stmt.Exec(runID, source, r.ID, r.Start, r.End, r.Duration, r.Type, r.State, r.Log, i); err != nil {
				return fmt.Errorf("insert transaction: %w", err)
			}
		}
	}
	return nil
}

func insertFlows(tx *sql.Tx, runID string, byFile map[string][]report.ScreenFlowRecord) error {
	stmt, err := tx.Prepare(
		`INSERT INTO flow_entries (run_id, source, screen, timestamp, duration, order_idx)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare flow entries: %w", err)
	}
	defer stmt.Close()

	for _, source := range sortedKeys(byFile) {
		for i, r := range byFile[source] {
			if _, err := stmt.Exec(runID, source, r.Screen, r.Timestamp, r.Duration, i); err != nil {
				return fmt.Errorf("insert flow entry: %w", err)
			}
		}
	}
	return nil
}

func insertCounters(tx *sql.Tx, runID string, byFile map[string][]report.CounterBlockRecord) error {
	stmt, err := tx.Prepare(
		`INSERT INTO counter_rows
		 (run_id, source, block_time, no, ty, unit_id, unit_name, currency, val,
		  init_val, actn, rej, safe, min, max, status1, status2)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare counter rows: %w", err)
	}
	defer stmt.Close()

	for _, source := range sortedKeys(byFile) {
		for _, block := range byFile[source] {
			for _, r := range block.Data {
				_, err := stmt.Exec(runID, source, block.Timestamp,
					r.No, r.Ty, r.ID, r.UnitName, r.Currency, r.Val,
					r.Init, r.Actn, r.Rej, r.Safe, r.Min, r.Max, r.Status1, r.Status2)
				if err != nil {
					return fmt.Errorf("insert counter row: %w", err)
				}
			}
		}
	}
	return nil
}

// Run is one persisted analysis run.
type Run struct {
	ID        string
	Archive   string
	CreatedAt time.Time
	Discarded int64
}

// Runs lists persisted runs, newest first.
func (s *Store) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		"SELECT id, archive, created_at, discarded FROM runs ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Archive, &r.CreatedAt, &r.Discarded); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Transactions reads a run's transactions back, grouped by source file
// in their original order.
func (s *Store) Transactions(runID string) (map[string][]report.TransactionRecord, error) {
	rows, err := s.db.Query(
		`SELECT source, txn_id, start_time, end_time, duration, type, end_state, log
		 FROM transactions WHERE run_id = ? ORDER BY source, order_idx`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byFile := make(map[string][]report.TransactionRecord)
	for rows.Next() {
		var source string
		var r report.TransactionRecord
		if err := rows.Scan(&source, &r.ID, &r.Start, &r.End, &r.Duration, &r.Type, &r.State, &r.Log); err != nil {
			return nil, err
		}
		r.Source = source
		byFile[source] = append(byFile[source], r)
	}
	return byFile, rows.Err()
}

// FlowEntryCount counts persisted flow entries for a run.
func (s *Store) FlowEntryCount(runID string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM flow_entries WHERE run_id = ?", runID).Scan(&count)
	return count, err
}

// CounterRowCount counts persisted counter rows for a run.
func (s *Store) CounterRowCount(runID string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM counter_rows WHERE run_id = ?", runID).Scan(&count)
	return count, err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
